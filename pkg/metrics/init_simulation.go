package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.RepetitionsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "barriersim_repetitions_total",
			Help: "Completed simulation repetitions",
		},
	)

	r.VictimsPlacedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "barriersim_victims_placed_total",
			Help: "Victims placed on leaves",
		},
		[]string{"strategy"}, // random, hierarchical
	)

	r.UnresolvedNodes = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "barriersim_unresolved_nodes_total",
			Help: "Physical nodes an attack left without a target",
		},
	)

	r.RelCatch = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barriersim_relcatch_ratio",
			Help:    "Share of leaves drawn to the busiest victim",
			Buckets: prometheus.LinearBuckets(0.05, 0.05, 20),
		},
		[]string{"victims"},
	)

	r.Misdistribution = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barriersim_misdistribution_factor",
			Help:    "Busiest victim load relative to an even split",
			Buckets: prometheus.ExponentialBuckets(1, 1.5, 12),
		},
		[]string{"victims"},
	)
}
