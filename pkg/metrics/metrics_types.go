package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for a simulation process
type Registry struct {
	// Network Metrics
	NetworkVertices  prometheus.Gauge
	NetworkEdges     prometheus.Gauge
	NetworkLeaves    prometheus.Gauge
	NetworkHeight    prometheus.Gauge
	GrowthStepsTotal *prometheus.CounterVec
	SanityFailures   prometheus.Counter
	PhaseDuration    *prometheus.HistogramVec
	PhaseErrorsTotal *prometheus.CounterVec

	// Simulation Metrics
	RepetitionsTotal   prometheus.Counter
	VictimsPlacedTotal *prometheus.CounterVec
	UnresolvedNodes    prometheus.Counter
	RelCatch           *prometheus.HistogramVec
	Misdistribution    *prometheus.HistogramVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.Mutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initNetworkMetrics()
	r.initSimulationMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
