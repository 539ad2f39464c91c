package simulation

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a sample. Percentiles are read off the sorted sample at
// index floor(p*n), without interpolation.
type Stats struct {
	N      int     `json:"n" yaml:"n"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Max    float64 `json:"max" yaml:"max"`
	P90    float64 `json:"p90" yaml:"p90"`
	P75    float64 `json:"p75" yaml:"p75"`
	P50    float64 `json:"p50" yaml:"p50"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
	// IQD is the interquartile distance P75 - P25.
	IQD float64 `json:"iqd" yaml:"iqd"`
}

// Summarize computes Stats for xs. The input is not modified. The standard
// deviation uses the n-1 denominator and is zero for fewer than two values.
func Summarize(xs []float64) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	at := func(p float64) float64 {
		return sorted[min(int(p*float64(n)), n-1)]
	}
	s := Stats{
		N:    n,
		Mean: stat.Mean(sorted, nil),
		Max:  floats.Max(sorted),
		P90:  at(0.9),
		P75:  sorted[3*n/4],
		P50:  sorted[n/2],
	}
	if n > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
		if math.IsNaN(s.StdDev) {
			s.StdDev = 0
		}
	}
	s.IQD = s.P75 - sorted[n/4]
	return s
}
