package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

// TestLevelString tests level names
func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

// TestParseLevel tests case-insensitive parsing with an INFO fallback
func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"DEBUG":   DebugLevel,
		" info ":  InfoLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"Error":   ErrorLevel,
		"bogus":   InfoLevel,
		"":        InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

// TestFieldConstructors tests the domain field helpers
func TestFieldConstructors(t *testing.T) {
	tests := []struct {
		field Field
		key   string
		value any
	}{
		{NodeID(7), "node_id", 7},
		{Neighbor(3), "neighbor_id", 3},
		{Depth(2), "depth", 2},
		{Seed(42), "seed", uint64(42)},
		{Victims(10), "victims", 10},
		{RunID("abc"), "run_id", "abc"},
		{Relation("side"), "relation", "side"},
		{Component("attack"), "component", "attack"},
		{Operation("vgrow"), "operation", "vgrow"},
		{Count(5), "count", 5},
		{Latency(time.Second), "latency", "1s"},
		{Error(errors.New("boom")), "error", "boom"},
		{Error(nil), "error", nil},
	}
	for _, tt := range tests {
		if tt.field.Key != tt.key {
			t.Errorf("key = %q, want %q", tt.field.Key, tt.key)
		}
		if tt.field.Value != tt.value {
			t.Errorf("%s value = %v, want %v", tt.key, tt.field.Value, tt.value)
		}
	}
}

// TestBasicLogging tests that one JSON object is written per call
func TestBasicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Info("network grown", NodeID(4), Depth(1))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Level != "INFO" || e.Message != "network grown" {
		t.Errorf("unexpected entry %+v", e)
	}
	// JSON numbers decode as float64
	if e.Fields["node_id"] != float64(4) || e.Fields["depth"] != float64(1) {
		t.Errorf("unexpected fields %v", e.Fields)
	}
	if _, err := time.Parse(time.RFC3339Nano, e.Time); err != nil {
		t.Errorf("bad timestamp %q: %v", e.Time, err)
	}
}

// TestLevelFiltering tests that messages below the level are dropped
func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("unexpected levels %s, %s", entries[0].Level, entries[1].Level)
	}
}

// TestNoFieldsOmitted tests that an entry without fields has no fields key
func TestNoFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	NewJSONLogger(&buf, InfoLevel).Info("bare")
	if strings.Contains(buf.String(), `"fields"`) {
		t.Errorf("fields key should be omitted: %s", buf.String())
	}
}

// TestWith tests that child loggers carry preset fields without touching the parent
func TestWith(t *testing.T) {
	var buf bytes.Buffer
	parent := NewJSONLogger(&buf, InfoLevel)
	child := parent.With(RunID("r1"), Component("attack"))

	child.Info("resolved", NodeID(2))
	parent.Info("plain")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Fields["run_id"] != "r1" || entries[0].Fields["component"] != "attack" {
		t.Errorf("child fields missing: %v", entries[0].Fields)
	}
	if entries[1].Fields != nil {
		t.Errorf("parent should have no fields: %v", entries[1].Fields)
	}
}

// TestSetLevel tests changing the level at runtime
func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, ErrorLevel)
	logger.Info("hidden")
	logger.SetLevel(DebugLevel)
	logger.Debug("shown")

	if logger.GetLevel() != DebugLevel {
		t.Errorf("GetLevel = %v, want DEBUG", logger.GetLevel())
	}
	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0].Message != "shown" {
		t.Errorf("unexpected entries %+v", entries)
	}
}

// TestNopLogger tests that the nop logger is usable and silent
func TestNopLogger(t *testing.T) {
	var logger Logger = NewNopLogger()
	logger.Info("x", NodeID(1))
	logger.With(Depth(1)).Error("y")
	logger.SetLevel(DebugLevel)
	if logger.GetLevel() <= ErrorLevel {
		t.Errorf("nop logger should report a level above ERROR")
	}
}

// TestDefaultLogger tests the process-wide logger accessors
func TestDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	old := DefaultLogger()
	defer SetDefaultLogger(old)

	SetDefaultLogger(NewJSONLogger(&buf, InfoLevel))
	DefaultLogger().Info("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("default logger not replaced: %q", buf.String())
	}
}

// TestTimedOperation tests latency reporting on End and EndError
func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	timer := StartTimer(logger, "attack", Victims(3))
	if d := timer.End(Count(9)); d < 0 {
		t.Errorf("negative duration %v", d)
	}
	StartTimer(logger, "grow").EndError(errors.New("bad params"))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	first := entries[0]
	if first.Fields["victims"] != float64(3) || first.Fields["count"] != float64(9) {
		t.Errorf("timer fields missing: %v", first.Fields)
	}
	if _, ok := first.Fields["latency"]; !ok {
		t.Errorf("latency missing: %v", first.Fields)
	}
	second := entries[1]
	if second.Level != "ERROR" || second.Fields["error"] != "bad params" {
		t.Errorf("unexpected error entry %+v", second)
	}
}

func BenchmarkJSONLogger(b *testing.B) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		logger.Info("bench", NodeID(i), Depth(2))
	}
}

func BenchmarkFilteredOut(b *testing.B) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, ErrorLevel)
	for i := 0; i < b.N; i++ {
		logger.Debug("skipped", NodeID(i))
	}
}
