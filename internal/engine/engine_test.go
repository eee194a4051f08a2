package engine

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pulse.report/internal/emotion"
	"github.com/banshee-data/pulse.report/internal/monitoring"
	"github.com/banshee-data/pulse.report/internal/timeutil"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, cfg Config) (*InferenceEngine, *timeutil.MockClock) {
	t.Helper()
	clock := timeutil.NewMockClock(testStart)
	e, err := NewWithClock(cfg, nil, clock)
	require.NoError(t, err)
	return e, clock
}

// captureLogs redirects leveled emission for the duration of a test and
// returns the collected (level, message) pairs.
func captureLogs(t *testing.T) *[]string {
	t.Helper()
	var logs []string
	monitoring.SetEmitter(func(level monitoring.Level, msg string, context map[string]interface{}) {
		logs = append(logs, string(level)+": "+msg)
	})
	t.Cleanup(func() { monitoring.SetEmitter(nil) })
	return &logs
}

// steadyRR returns n RR intervals around 840ms that survive cleaning.
func steadyRR(n int) []float64 {
	rr := make([]float64, n)
	for i := range rr {
		rr[i] = 840.0 + float64(i%3)*10.0 // 840, 850, 860, ...
	}
	return rr
}

func TestNewValidation(t *testing.T) {
	t.Run("default model accepted", func(t *testing.T) {
		e, err := New(DefaultConfig(), nil)
		require.NoError(t, err)
		assert.Equal(t, "builtin-default", e.Model().ModelID)
	})

	t.Run("wrong feature set rejected", func(t *testing.T) {
		model := emotion.DefaultModel()
		model.FeatureNames = []string{"hr_mean", "sdnn"}
		model.Weights = [][]float64{{1, 0}, {0, 1}, {1, 1}}

		_, err := New(DefaultConfig(), model)
		var mi *emotion.ModelIncompatibleError
		assert.ErrorAs(t, err, &mi)
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.StepInterval = 0
		_, err := New(cfg, nil)
		require.Error(t, err)
	})
}

func TestPushRejection(t *testing.T) {
	logs := captureLogs(t)
	e, _ := newTestEngine(t, DefaultConfig())

	t.Run("out of range HR dropped with warning", func(t *testing.T) {
		e.Push(400, []float64{850, 840}, testStart, nil)

		assert.Equal(t, 0, e.BufferStats().Count)
		require.NotEmpty(t, *logs)
		assert.Contains(t, (*logs)[len(*logs)-1], "warn: dropping sample")
	})

	t.Run("empty RR list dropped with warning", func(t *testing.T) {
		before := len(*logs)
		e.Push(72, nil, testStart, nil)

		assert.Equal(t, 0, e.BufferStats().Count)
		assert.Greater(t, len(*logs), before)
	})

	t.Run("valid sample accepted", func(t *testing.T) {
		e.Push(72, []float64{850, 840}, testStart, nil)
		assert.Equal(t, 1, e.BufferStats().Count)
	})
}

func TestPushCopiesInput(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())

	rr := []float64{850, 840}
	e.Push(72, rr, testStart, nil)
	rr[0] = 9999

	stats := e.BufferStats()
	assert.Equal(t, 2, stats.TotalRRCount)
	results := e.ConsumeReady()
	_ = results // mutation of caller slice must not corrupt the window
}

func TestConsumeReadyScenario(t *testing.T) {
	cfg := DefaultConfig()
	e, clock := newTestEngine(t, cfg)

	// Two samples, 30+ raw RR intervals in total, all cleanable.
	e.Push(72, steadyRR(18), testStart, nil)
	clock.Advance(time.Second)
	e.Push(73, steadyRR(18), clock.Now(), nil)

	results := e.ConsumeReady()
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, clock.Now(), r.Timestamp)

	// Probability keys are exactly the default labels.
	require.Len(t, r.Probabilities, 3)
	for _, label := range []string{"Amused", "Calm", "Stressed"} {
		assert.Contains(t, r.Probabilities, label)
	}

	// Confidence equals the maximum probability, and emotion names it.
	maxP := 0.0
	for _, p := range r.Probabilities {
		if p > maxP {
			maxP = p
		}
	}
	assert.InDelta(t, maxP, r.Confidence, 1e-12)
	assert.InDelta(t, maxP, r.Probabilities[r.Emotion], 1e-12)

	sum := 0.0
	for _, p := range r.Probabilities {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	assert.Equal(t, "builtin-default", r.ModelMetadata["model_id"])
	assert.Contains(t, r.Features, "hr_mean")
	assert.Contains(t, r.Features, "sdnn")
	assert.Contains(t, r.Features, "rmssd")
}

func TestConsumeReadyThrottle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StepInterval = 5 * time.Second
	e, clock := newTestEngine(t, cfg)

	push := func() {
		e.Push(72, steadyRR(20), clock.Now(), nil)
		e.Push(73, steadyRR(20), clock.Now(), nil)
	}
	push()

	first := e.ConsumeReady()
	require.Len(t, first, 1)

	// Within stepInterval: at most one non-empty result across both calls.
	clock.Advance(2 * time.Second)
	push()
	assert.Empty(t, e.ConsumeReady())

	// After the interval elapses the gate opens again.
	clock.Advance(3 * time.Second)
	second := e.ConsumeReady()
	require.Len(t, second, 1)
	assert.True(t, second[0].Timestamp.After(first[0].Timestamp))
}

func TestConsumeReadyGates(t *testing.T) {
	t.Run("fewer than two samples", func(t *testing.T) {
		e, clock := newTestEngine(t, DefaultConfig())
		e.Push(72, steadyRR(40), clock.Now(), nil)
		assert.Empty(t, e.ConsumeReady())
	})

	t.Run("too few raw RR intervals", func(t *testing.T) {
		logs := captureLogs(t)
		cfg := DefaultConfig()
		cfg.MinRRCount = 30
		e, clock := newTestEngine(t, cfg)

		e.Push(72, steadyRR(5), clock.Now(), nil)
		e.Push(73, steadyRR(5), clock.Now(), nil)

		assert.Empty(t, e.ConsumeReady())
		require.NotEmpty(t, *logs)
		assert.Contains(t, (*logs)[len(*logs)-1], "warn: skipping inference")
	})

	t.Run("raw count gates even when cleaning would fail", func(t *testing.T) {
		// 40 raw intervals, none plausible: the raw-count gate passes and
		// the statistics degrade to zero rather than erroring.
		cfg := DefaultConfig()
		e, clock := newTestEngine(t, cfg)

		junk := make([]float64, 20)
		for i := range junk {
			junk[i] = 50 // below physiological range
		}
		e.Push(72, junk, clock.Now(), nil)
		e.Push(73, junk, clock.Now(), nil)

		results := e.ConsumeReady()
		require.Len(t, results, 1)
		assert.Equal(t, 0.0, results[0].Features["sdnn"])
		assert.Equal(t, 0.0, results[0].Features["rmssd"])
	})
}

func TestConsumeReadyEvictsBeforeAggregation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowDuration = 10 * time.Second
	e, clock := newTestEngine(t, cfg)

	e.Push(72, steadyRR(20), clock.Now(), nil)
	e.Push(73, steadyRR(20), clock.Now(), nil)

	// Both samples age out before the pull; sufficiency gate fails.
	clock.Advance(time.Minute)
	assert.Empty(t, e.ConsumeReady())
	assert.Equal(t, 0, e.BufferStats().Count)
}

func TestHRBaselinePersonalization(t *testing.T) {
	baseline := 60.0
	cfg := DefaultConfig()
	cfg.HRBaseline = &baseline
	e, clock := newTestEngine(t, cfg)

	e.Push(72, steadyRR(20), clock.Now(), nil)
	e.Push(74, steadyRR(20), clock.Now(), nil)

	results := e.ConsumeReady()
	require.Len(t, results, 1)
	assert.InDelta(t, 13.0, results[0].Features["hr_mean"], 1e-9) // mean 73 - 60
}

func TestMotionAggregationIsAdditive(t *testing.T) {
	e, clock := newTestEngine(t, DefaultConfig())

	e.Push(72, steadyRR(20), clock.Now(), map[string]float64{"steps": 10})
	e.Push(73, steadyRR(20), clock.Now(), map[string]float64{"steps": 5})

	results := e.ConsumeReady()
	require.Len(t, results, 1)
	assert.Equal(t, 15.0, results[0].Features["steps"])
}

func TestReturnAllProbabilitiesDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReturnAllProbabilities = false
	e, clock := newTestEngine(t, cfg)

	e.Push(72, steadyRR(20), clock.Now(), nil)
	e.Push(73, steadyRR(20), clock.Now(), nil)

	results := e.ConsumeReady()
	require.Len(t, results, 1)
	require.Len(t, results[0].Probabilities, 1)
	assert.InDelta(t, results[0].Confidence, results[0].Probabilities[results[0].Emotion], 1e-12)
}

func TestWindowEvictionRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowDuration = 10 * time.Second
	e, clock := newTestEngine(t, cfg)

	// Push one sample per second for 30 seconds; the buffer must never
	// hold more than the trailing window's worth.
	maxWindow := int(cfg.WindowDuration/time.Second) + 1
	for i := 0; i < 30; i++ {
		e.Push(70+float64(i%5), steadyRR(3), clock.Now(), nil)
		stats := e.BufferStats()
		assert.LessOrEqual(t, stats.Count, maxWindow, "at push %d", i)
		clock.Advance(time.Second)
	}
}

func TestBufferStats(t *testing.T) {
	e, clock := newTestEngine(t, DefaultConfig())

	e.Push(65, []float64{850, 840, 830}, clock.Now(), nil)
	clock.Advance(2 * time.Second)
	e.Push(80, []float64{700, 710}, clock.Now(), nil)

	stats := e.BufferStats()
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, int64(2000), stats.SpanMs)
	assert.Equal(t, 65.0, stats.HRMin)
	assert.Equal(t, 80.0, stats.HRMax)
	assert.Equal(t, 5, stats.TotalRRCount)
}

func TestClearResetsThrottle(t *testing.T) {
	e, clock := newTestEngine(t, DefaultConfig())

	e.Push(72, steadyRR(20), clock.Now(), nil)
	e.Push(73, steadyRR(20), clock.Now(), nil)
	require.Len(t, e.ConsumeReady(), 1)

	e.Clear()
	assert.Equal(t, 0, e.BufferStats().Count)

	// After Clear the throttle marker is reset: a fresh window can emit
	// immediately, without waiting out stepInterval.
	e.Push(72, steadyRR(20), clock.Now(), nil)
	e.Push(73, steadyRR(20), clock.Now(), nil)
	assert.Len(t, e.ConsumeReady(), 1)
}

// Two identical windows classified at the same instant produce results that
// compare equal field by field.
func TestResultsValueComparable(t *testing.T) {
	run := func() EmotionResult {
		e, clock := newTestEngine(t, DefaultConfig())
		e.Push(72, steadyRR(20), clock.Now(), nil)
		e.Push(73, steadyRR(20), clock.Now(), nil)
		results := e.ConsumeReady()
		require.Len(t, results, 1)
		return results[0]
	}

	a, b := run(), run()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("results differ (-a +b):\n%s", diff)
	}
}

func TestConcurrentPushAndConsume(t *testing.T) {
	e, err := New(DefaultConfig(), nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			e.Push(72, steadyRR(5), time.Now(), nil)
		}
	}()

	for i := 0; i < 200; i++ {
		e.ConsumeReady()
		e.BufferStats()
	}
	<-done

	stats := e.BufferStats()
	assert.Greater(t, stats.Count, 0)
}
