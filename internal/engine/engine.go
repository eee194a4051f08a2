package engine

import (
	"sync"
	"time"

	"github.com/banshee-data/pulse.report/internal/emotion"
	"github.com/banshee-data/pulse.report/internal/hrv"
	"github.com/banshee-data/pulse.report/internal/monitoring"
	"github.com/banshee-data/pulse.report/internal/timeutil"
	"github.com/banshee-data/pulse.report/internal/units"
)

// InferenceEngine is the long-lived pipeline owner: it ingests samples into
// the sliding window and emits at most one classified result per step
// interval. A single RWMutex guards the buffer and throttle marker; Push,
// Clear and ConsumeReady take the write lock (ConsumeReady advances the
// throttle marker on emission), BufferStats takes the read lock.
//
// Steady-state faults never propagate: an invalid sample is dropped with a
// warning and an inference failure produces an empty result list. Only
// construction fails loudly.
type InferenceEngine struct {
	cfg        Config
	classifier *emotion.LinearClassifier
	clock      timeutil.Clock

	mu         sync.RWMutex
	buffer     *SlidingWindowBuffer
	lastEmit   time.Time
	hasEmitted bool
}

// New constructs an engine around the given model. A nil model selects the
// built-in default. Construction fails with *emotion.ModelIncompatibleError
// unless the model exposes exactly the three required HRV feature names.
func New(cfg Config, model *emotion.ModelParameters) (*InferenceEngine, error) {
	return NewWithClock(cfg, model, timeutil.RealClock{})
}

// NewWithClock is New with an injected clock for deterministic tests.
func NewWithClock(cfg Config, model *emotion.ModelParameters, clock timeutil.Clock) (*InferenceEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if model == nil {
		model = emotion.DefaultModel()
	}

	classifier, err := emotion.NewClassifier(model)
	if err != nil {
		return nil, err
	}

	if !sameFeatureSet(model.FeatureNames, hrv.RequiredFeatures) {
		return nil, &emotion.ModelIncompatibleError{
			ExpectedFeatures: hrv.RequiredFeatures,
			ActualFeatures:   model.FeatureNames,
		}
	}

	return &InferenceEngine{
		cfg:        cfg,
		classifier: classifier,
		clock:      clock,
		buffer:     NewSlidingWindowBuffer(cfg.WindowDuration),
	}, nil
}

func sameFeatureSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, name := range a {
		set[name] = true
	}
	for _, name := range b {
		if !set[name] {
			return false
		}
	}
	return true
}

// Config returns the engine configuration.
func (e *InferenceEngine) Config() Config {
	return e.cfg
}

// Model returns the classifier's model parameters.
func (e *InferenceEngine) Model() *emotion.ModelParameters {
	return e.classifier.Model()
}

// Push ingests one observation. Samples with a heart rate outside [30, 300]
// BPM or with no RR intervals are dropped with a warning; Push never fails.
// The buffer is trimmed against the push instant, so trimming tracks wall
// clock even when sample timestamps lag.
func (e *InferenceEngine) Push(hr float64, rrIntervalsMs []float64, timestamp time.Time, motion map[string]float64) {
	if !units.ValidHR(hr) {
		monitoring.Warn("dropping sample: heart rate out of range", map[string]interface{}{
			"hr": hr,
		})
		return
	}
	if len(rrIntervalsMs) == 0 {
		monitoring.Warn("dropping sample: no RR intervals", map[string]interface{}{
			"hr": hr,
		})
		return
	}

	rr := make([]float64, len(rrIntervalsMs))
	copy(rr, rrIntervalsMs)
	var m map[string]float64
	if len(motion) > 0 {
		m = make(map[string]float64, len(motion))
		for k, v := range motion {
			m[k] = v
		}
	}
	sample := Sample{Timestamp: timestamp, HR: hr, RRIntervalsMs: rr, Motion: m}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffer.Push(sample, e.clock.Now())
}

// ConsumeReady runs one throttled inference pass and returns zero or one
// results. An empty slice means a gate did not pass or the classifier
// rejected the window; both are expected streaming conditions and are never
// surfaced as errors.
func (e *InferenceEngine) ConsumeReady() []EmotionResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()

	// Throttle gate.
	if e.hasEmitted && now.Sub(e.lastEmit) < e.cfg.StepInterval {
		return nil
	}

	e.buffer.Trim(now)

	// Sufficiency gate.
	samples := e.buffer.Snapshot()
	if len(samples) < 2 {
		return nil
	}

	// Aggregate the window: every HR value, every RR interval, motion
	// summed per key.
	var hrValues []float64
	var rrAll []float64
	motion := map[string]float64{}
	for _, s := range samples {
		hrValues = append(hrValues, s.HR)
		rrAll = append(rrAll, s.RRIntervalsMs...)
		for k, v := range s.Motion {
			motion[k] += v
		}
	}

	// Minimum-data gate against the raw aggregated count. Cleaning may
	// reduce the usable set further; that is tolerated downstream.
	if len(rrAll) < e.cfg.MinRRCount {
		monitoring.Warn("skipping inference: too few RR intervals in window", map[string]interface{}{
			"have": len(rrAll),
			"need": e.cfg.MinRRCount,
		})
		return nil
	}

	features := hrv.Extract(hrValues, rrAll, motion)
	if e.cfg.HRBaseline != nil {
		features[hrv.FeatureHRMean] -= *e.cfg.HRBaseline
	}

	probs, err := e.classifier.Predict(features)
	if err != nil {
		monitoring.Error("classifier rejected window", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	label, confidence := e.classifier.Argmax(probs)

	resultProbs := probs
	if !e.cfg.ReturnAllProbabilities {
		resultProbs = map[string]float64{label: confidence}
	}

	e.lastEmit = now
	e.hasEmitted = true

	return []EmotionResult{{
		Timestamp:     now,
		Emotion:       label,
		Confidence:    confidence,
		Probabilities: resultProbs,
		Features:      features,
		ModelMetadata: e.classifier.Metadata(),
	}}
}

// BufferStats returns a consistent point-in-time summary of the window.
func (e *InferenceEngine) BufferStats() BufferStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	samples := e.buffer.Snapshot()
	stats := BufferStats{Count: len(samples)}
	if len(samples) == 0 {
		return stats
	}

	minTS, maxTS := samples[0].Timestamp, samples[0].Timestamp
	stats.HRMin, stats.HRMax = samples[0].HR, samples[0].HR
	for _, s := range samples {
		if s.Timestamp.Before(minTS) {
			minTS = s.Timestamp
		}
		if s.Timestamp.After(maxTS) {
			maxTS = s.Timestamp
		}
		if s.HR < stats.HRMin {
			stats.HRMin = s.HR
		}
		if s.HR > stats.HRMax {
			stats.HRMax = s.HR
		}
		stats.TotalRRCount += len(s.RRIntervalsMs)
	}
	stats.SpanMs = maxTS.Sub(minTS).Milliseconds()
	return stats
}

// Clear empties the buffer and resets the throttle marker to never-emitted.
func (e *InferenceEngine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffer.Clear()
	e.lastEmit = time.Time{}
	e.hasEmitted = false
}
