package engine

import (
	"fmt"
	"time"
)

// Config is the immutable engine configuration supplied at construction.
type Config struct {
	// ModelID names the model expected by the host; informational.
	ModelID string

	// WindowDuration is how far back the sample buffer reaches.
	WindowDuration time.Duration

	// StepInterval is the minimum spacing between emitted results.
	StepInterval time.Duration

	// MinRRCount is the minimum aggregated RR-interval count required
	// before inference runs. Deliberately checked against the raw
	// (pre-cleaning) count: cleaning may reduce the usable set further,
	// and downstream statistics degrade to zero rather than fail.
	MinRRCount int

	// ReturnAllProbabilities includes the full per-label map on results;
	// when false only the winning label's probability is attached.
	ReturnAllProbabilities bool

	// HRBaseline, when set, is subtracted from hr_mean before
	// classification to personalize against a resting rate.
	HRBaseline *float64

	// Priors carries per-label prior weights for future calibration
	// layers. The linear path does not consume them.
	Priors map[string]float64
}

// DefaultConfig returns the engine defaults: a one-minute window stepped
// every five seconds, requiring 30 raw RR intervals.
func DefaultConfig() Config {
	return Config{
		WindowDuration:         60 * time.Second,
		StepInterval:           5 * time.Second,
		MinRRCount:             30,
		ReturnAllProbabilities: true,
	}
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.WindowDuration <= 0 {
		return fmt.Errorf("window duration must be positive, got %v", c.WindowDuration)
	}
	if c.StepInterval <= 0 {
		return fmt.Errorf("step interval must be positive, got %v", c.StepInterval)
	}
	if c.MinRRCount < 0 {
		return fmt.Errorf("min RR count must be non-negative, got %d", c.MinRRCount)
	}
	return nil
}
