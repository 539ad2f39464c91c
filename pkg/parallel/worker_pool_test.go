package parallel

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dd0wney/barriersim/pkg/logging"
)

func newPool(t testing.TB, workers int, opts ...Option) *WorkerPool {
	t.Helper()
	pool, err := NewWorkerPool(workers, opts...)
	if err != nil {
		t.Fatalf("NewWorkerPool(%d): %v", workers, err)
	}
	return pool
}

// TestWorkerPoolBasicOperations tests basic worker pool functionality
func TestWorkerPoolBasicOperations(t *testing.T) {
	pool := newPool(t, 4)

	executed := false
	if !pool.Submit(func() { executed = true }) {
		t.Error("Task submission failed")
	}

	pool.Close()

	if !executed {
		t.Error("Task was not executed")
	}
}

// TestWorkerPoolDefaultWorkers tests that a non-positive count picks a default
func TestWorkerPoolDefaultWorkers(t *testing.T) {
	pool := newPool(t, 0)
	defer pool.Close()
	if pool.Workers() < 1 {
		t.Errorf("Workers() = %d, want at least 1", pool.Workers())
	}
}

// TestWorkerPoolTooManyWorkers tests the overflow guard
func TestWorkerPoolTooManyWorkers(t *testing.T) {
	_, err := NewWorkerPool(MaxWorkers + 1)
	if !errors.Is(err, ErrTooManyWorkers) {
		t.Errorf("expected ErrTooManyWorkers, got %v", err)
	}
}

// TestWorkerPoolConcurrentSubmissions tests concurrent task submissions
func TestWorkerPoolConcurrentSubmissions(t *testing.T) {
	pool := newPool(t, 10)

	numTasks := 100
	var counter int64

	var wg sync.WaitGroup
	for i := 0; i < numTasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Submit(func() {
				atomic.AddInt64(&counter, 1)
			})
		}()
	}

	wg.Wait()
	pool.Close()

	if counter != int64(numTasks) {
		t.Errorf("Expected counter %d, got %d", numTasks, counter)
	}
}

// TestWorkerPoolCloseRace tests that closing while submitting never panics
func TestWorkerPoolCloseRace(t *testing.T) {
	for iteration := 0; iteration < 50; iteration++ {
		pool := newPool(t, 4)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					pool.Submit(func() {
						time.Sleep(100 * time.Microsecond)
					})
				}
			}()
		}

		time.Sleep(time.Millisecond)
		pool.Close()
		wg.Wait()
	}
}

// TestWorkerPoolSubmitAfterClose tests that submissions after close return false
func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool := newPool(t, 4)
	pool.Close()

	if pool.Submit(func() { t.Error("This task should never execute") }) {
		t.Error("Task submission after close should return false")
	}
	// Closing again is safe.
	pool.Close()
	pool.Wait()
}

// TestWorkerPoolWithPanic tests that panics are recovered and logged
func TestWorkerPoolWithPanic(t *testing.T) {
	var buf bytes.Buffer
	pool := newPool(t, 2, WithLogger(logging.NewJSONLogger(&buf, logging.InfoLevel)))

	var counter int64
	for i := 0; i < 3; i++ {
		pool.Submit(func() { panic("intentional panic") })
	}
	for i := 0; i < 10; i++ {
		pool.Submit(func() { atomic.AddInt64(&counter, 1) })
	}
	pool.Close()

	if counter != 10 {
		t.Errorf("Expected counter 10, got %d", counter)
	}
	if !strings.Contains(buf.String(), "worker panic recovered") {
		t.Errorf("panic was not logged: %q", buf.String())
	}
}

// TestMapPreservesOrder tests that results come back in index order
func TestMapPreservesOrder(t *testing.T) {
	pool := newPool(t, 4)
	defer pool.Close()

	results, err := Map(pool, 50, func(i int) int {
		if i%7 == 0 {
			time.Sleep(time.Millisecond)
		}
		return i * i
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	for i, r := range results {
		if r != i*i {
			t.Errorf("results[%d] = %d, want %d", i, r, i*i)
		}
	}

	// The pool is still usable after Map.
	again, err := Map(pool, 3, func(i int) string { return strings.Repeat("x", i) })
	if err != nil || len(again) != 3 || again[2] != "xx" {
		t.Errorf("second Map = %v, %v", again, err)
	}
}

// TestMapEmpty tests the zero-job case
func TestMapEmpty(t *testing.T) {
	pool := newPool(t, 2)
	defer pool.Close()

	results, err := Map(pool, 0, func(int) int { return 1 })
	if err != nil || len(results) != 0 {
		t.Errorf("Map(0) = %v, %v", results, err)
	}
}

// TestMapPanic tests that a panicking job surfaces as an error
func TestMapPanic(t *testing.T) {
	pool := newPool(t, 2)
	defer pool.Close()

	_, err := Map(pool, 5, func(i int) int {
		if i == 3 {
			panic("bad trial")
		}
		return i
	})
	if !errors.Is(err, ErrTaskPanicked) {
		t.Errorf("expected ErrTaskPanicked, got %v", err)
	}
}

// TestMapClosedPool tests Map on a closed pool
func TestMapClosedPool(t *testing.T) {
	pool := newPool(t, 2)
	pool.Close()

	_, err := Map(pool, 3, func(i int) int { return i })
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

// BenchmarkMap benchmarks indexed fan-out
func BenchmarkMap(b *testing.B) {
	pool := newPool(b, 8)
	defer pool.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Map(pool, 16, func(j int) int {
			sum := 0
			for k := 0; k < 100; k++ {
				sum += j * k
			}
			return sum
		}); err != nil {
			b.Fatal(err)
		}
	}
}
