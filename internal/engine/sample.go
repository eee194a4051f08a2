// Package engine orchestrates streaming emotion inference: a sliding window
// of biosignal samples, throttled feature extraction, and classification.
package engine

import (
	"time"

	"github.com/banshee-data/pulse.report/internal/hrv"
)

// Sample is one timestamped biosignal observation. Timestamps are supplied
// by the caller (device clocks may lag wall clock), so buffered samples are
// ordered by insertion, not necessarily by timestamp. A Sample is immutable
// once pushed; the buffer owns it afterwards.
type Sample struct {
	Timestamp     time.Time
	HR            float64
	RRIntervalsMs []float64
	Motion        map[string]float64
}

// EmotionResult is one successful inference. Value-compared by all fields;
// created fresh per emission and never mutated afterwards.
type EmotionResult struct {
	Timestamp     time.Time
	Emotion       string
	Confidence    float64
	Probabilities map[string]float64
	Features      hrv.FeatureVector
	ModelMetadata map[string]interface{}
}

// BufferStats is a point-in-time summary of the sample window.
type BufferStats struct {
	Count        int
	SpanMs       int64
	HRMin        float64
	HRMax        float64
	TotalRRCount int
}
