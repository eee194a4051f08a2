// Package units provides shared constants and conversions for heart-rate
// quantities. RR intervals are stored in milliseconds; rates in beats per
// minute (BPM).
package units

// Physiological bounds shared by the cleaning and ingestion layers.
const (
	// MinRRMs and MaxRRMs bound a plausible RR interval (30-200 BPM).
	MinRRMs = 300.0
	MaxRRMs = 2000.0

	// MinHRBPM and MaxHRBPM bound a plausible device-reported heart rate.
	MinHRBPM = 30.0
	MaxHRBPM = 300.0

	// MaxRRJumpMs is the largest accepted difference between successive
	// RR intervals before the later one is treated as an artifact.
	MaxRRJumpMs = 250.0
)

const msPerMinute = 60000.0

// BPMFromRRMs converts an RR interval in milliseconds to beats per minute.
// Returns 0 for non-positive input.
func BPMFromRRMs(rrMs float64) float64 {
	if rrMs <= 0 {
		return 0
	}
	return msPerMinute / rrMs
}

// RRMsFromBPM converts a heart rate in BPM to the equivalent RR interval in
// milliseconds. Returns 0 for non-positive input.
func RRMsFromBPM(bpm float64) float64 {
	if bpm <= 0 {
		return 0
	}
	return msPerMinute / bpm
}

// ValidHR reports whether a device-reported heart rate is within the
// accepted ingestion range.
func ValidHR(bpm float64) bool {
	return bpm >= MinHRBPM && bpm <= MaxHRBPM
}

// ValidRR reports whether a single RR interval is physiologically plausible.
func ValidRR(rrMs float64) bool {
	return rrMs >= MinRRMs && rrMs <= MaxRRMs
}
