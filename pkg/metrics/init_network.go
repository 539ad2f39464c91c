package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initNetworkMetrics() {
	r.NetworkVertices = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "barriersim_network_vertices",
			Help: "Physical nodes of the most recently grown network",
		},
	)

	r.NetworkEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "barriersim_network_edges",
			Help: "Links between physical nodes of the most recently grown network",
		},
	)

	r.NetworkLeaves = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "barriersim_network_leaves",
			Help: "Physical nodes of the deepest level of the most recently grown network",
		},
	)

	r.NetworkHeight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "barriersim_network_height",
			Help: "Deepest level index of the most recently grown network",
		},
	)

	r.GrowthStepsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "barriersim_growth_steps_total",
			Help: "Growth operations applied to networks",
		},
		[]string{"kind"}, // hgrow, vgrow, grow
	)

	r.SanityFailures = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "barriersim_sanity_check_failures_total",
			Help: "Consistency checks that found an invariant violation",
		},
	)

	r.PhaseDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barriersim_phase_duration_seconds",
			Help:    "Duration of simulation phases in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12), // 100us to ~7min
		},
		[]string{"phase"}, // growth, placement, attack
	)

	r.PhaseErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "barriersim_phase_errors_total",
			Help: "Simulation phases that returned an error",
		},
		[]string{"phase"},
	)
}
