// Package hrv derives time-domain heart-rate-variability statistics from
// noisy RR-interval streams. All statistics operate on cleaned data: raw
// device output routinely contains missed or doubled beats, and a single
// artifact interval can dominate SDNN or RMSSD.
package hrv

import (
	"github.com/banshee-data/pulse.report/internal/units"
)

// CleanRR filters an RR-interval sequence for physiological plausibility and
// removes abrupt artifacts. Intervals outside [300ms, 2000ms] are dropped.
// Once a first interval has been accepted, any interval differing from the
// last accepted interval by more than 250ms is dropped as an artifact; the
// comparison baseline is always the previous accepted value, not the
// previous raw value. Output preserves input order and is a subsequence of
// the input. An empty input yields an empty output.
func CleanRR(rrIntervalsMs []float64) []float64 {
	cleaned := make([]float64, 0, len(rrIntervalsMs))
	var lastAccepted float64
	haveAccepted := false

	for _, rr := range rrIntervalsMs {
		if !units.ValidRR(rr) {
			continue
		}
		if haveAccepted && abs(rr-lastAccepted) > units.MaxRRJumpMs {
			continue
		}
		cleaned = append(cleaned, rr)
		lastAccepted = rr
		haveAccepted = true
	}
	return cleaned
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
