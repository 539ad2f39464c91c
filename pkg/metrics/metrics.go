// Package metrics exposes simulation counters, gauges and histograms on a
// dedicated Prometheus registry.
package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Phase labels
const (
	PhaseGrowth    = "growth"
	PhasePlacement = "placement"
	PhaseAttack    = "attack"
)

// RecordNetwork publishes the size of a freshly grown network
func (r *Registry) RecordNetwork(vertices, edges, leaves, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.NetworkVertices.Set(float64(vertices))
	r.NetworkEdges.Set(float64(edges))
	r.NetworkLeaves.Set(float64(leaves))
	r.NetworkHeight.Set(float64(height))
}

// RecordGrowthStep counts one growth operation of the given kind
func (r *Registry) RecordGrowthStep(kind string) {
	r.GrowthStepsTotal.WithLabelValues(kind).Inc()
}

// RecordSanityFailure counts a failed consistency check
func (r *Registry) RecordSanityFailure() {
	r.SanityFailures.Inc()
}

// RecordPhase records the duration of a phase and counts it as failed when
// err is non-nil
func (r *Registry) RecordPhase(phase string, duration time.Duration, err error) {
	r.PhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
	if err != nil {
		r.PhaseErrorsTotal.WithLabelValues(phase).Inc()
	}
}

// RecordPlacement counts placed victims per strategy
func (r *Registry) RecordPlacement(strategy string, placed int) {
	r.VictimsPlacedTotal.WithLabelValues(strategy).Add(float64(placed))
}

// RecordUnresolved counts physical nodes an attack could not resolve
func (r *Registry) RecordUnresolved(nodes int) {
	r.UnresolvedNodes.Add(float64(nodes))
}

// RecordOutcome observes the catch statistics of one attack with the
// requested victim count
func (r *Registry) RecordOutcome(victims int, relcatch, misdistribution float64) {
	label := strconv.Itoa(victims)
	r.RelCatch.WithLabelValues(label).Observe(relcatch)
	r.Misdistribution.WithLabelValues(label).Observe(misdistribution)
}

// RecordRepetition counts a finished repetition
func (r *Registry) RecordRepetition() {
	r.RepetitionsTotal.Inc()
}

// UpdateSystemMetrics refreshes runtime gauges
func (r *Registry) UpdateSystemMetrics(start time.Time) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(start).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}

// WriteTextfile writes every metric in the text exposition format to path
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
