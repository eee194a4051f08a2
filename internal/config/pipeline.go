// Package config loads the pipeline configuration file. The schema uses
// pointer fields so a partial JSON file only overrides what it names; the
// Get* accessors supply defaults for everything else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/pulse.report/internal/engine"
)

// PipelineConfig is the root configuration for the inference pipeline and
// its host daemon.
type PipelineConfig struct {
	// Engine params
	ModelID                *string            `json:"model_id,omitempty"`
	WindowDuration         *string            `json:"window_duration,omitempty"` // duration string like "60s"
	StepInterval           *string            `json:"step_interval,omitempty"`   // duration string like "5s"
	MinRRCount             *int               `json:"min_rr_count,omitempty"`
	ReturnAllProbabilities *bool              `json:"return_all_probabilities,omitempty"`
	HRBaseline             *float64           `json:"hr_baseline,omitempty"`
	Priors                 map[string]float64 `json:"priors,omitempty"`

	// Host params
	ModelPath *string `json:"model_path,omitempty"` // JSON model file; empty selects the built-in default
	DBPath    *string `json:"db_path,omitempty"`
	Listen    *string `json:"listen,omitempty"`
}

// EmptyPipelineConfig returns a PipelineConfig with all fields unset.
func EmptyPipelineConfig() *PipelineConfig {
	return &PipelineConfig{}
}

// LoadPipelineConfig loads a PipelineConfig from a JSON file. The file must
// have a .json extension and stay under the max file size. Fields omitted
// from the file retain their defaults, so partial configs are safe.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPipelineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *PipelineConfig) Validate() error {
	if c.WindowDuration != nil && *c.WindowDuration != "" {
		if _, err := time.ParseDuration(*c.WindowDuration); err != nil {
			return fmt.Errorf("invalid window_duration '%s': %w", *c.WindowDuration, err)
		}
	}
	if c.StepInterval != nil && *c.StepInterval != "" {
		if _, err := time.ParseDuration(*c.StepInterval); err != nil {
			return fmt.Errorf("invalid step_interval '%s': %w", *c.StepInterval, err)
		}
	}
	if c.MinRRCount != nil && *c.MinRRCount < 0 {
		return fmt.Errorf("min_rr_count must be non-negative, got %d", *c.MinRRCount)
	}
	if c.HRBaseline != nil && (*c.HRBaseline < 0 || *c.HRBaseline > 300) {
		return fmt.Errorf("hr_baseline must be within [0, 300], got %f", *c.HRBaseline)
	}
	return nil
}

// GetWindowDuration parses and returns the WindowDuration as a time.Duration.
func (c *PipelineConfig) GetWindowDuration() time.Duration {
	if c.WindowDuration == nil || *c.WindowDuration == "" {
		return 60 * time.Second // default
	}
	d, err := time.ParseDuration(*c.WindowDuration)
	if err != nil {
		return 60 * time.Second // default on parse error
	}
	return d
}

// GetStepInterval parses and returns the StepInterval as a time.Duration.
func (c *PipelineConfig) GetStepInterval() time.Duration {
	if c.StepInterval == nil || *c.StepInterval == "" {
		return 5 * time.Second // default
	}
	d, err := time.ParseDuration(*c.StepInterval)
	if err != nil {
		return 5 * time.Second // default on parse error
	}
	return d
}

// GetMinRRCount returns the minimum raw RR-interval count per window.
func (c *PipelineConfig) GetMinRRCount() int {
	if c.MinRRCount == nil {
		return 30 // default
	}
	return *c.MinRRCount
}

// GetReturnAllProbabilities returns whether results carry the full
// probability map.
func (c *PipelineConfig) GetReturnAllProbabilities() bool {
	if c.ReturnAllProbabilities == nil {
		return true // default
	}
	return *c.ReturnAllProbabilities
}

// GetModelPath returns the model file path, or empty for the built-in model.
func (c *PipelineConfig) GetModelPath() string {
	if c.ModelPath == nil {
		return ""
	}
	return *c.ModelPath
}

// GetDBPath returns the results database path.
func (c *PipelineConfig) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return "pulse_data.db" // default
	}
	return *c.DBPath
}

// GetListen returns the HTTP listen address.
func (c *PipelineConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return ":8080" // default
	}
	return *c.Listen
}

// EngineConfig converts the file configuration into an engine.Config.
func (c *PipelineConfig) EngineConfig() engine.Config {
	cfg := engine.Config{
		WindowDuration:         c.GetWindowDuration(),
		StepInterval:           c.GetStepInterval(),
		MinRRCount:             c.GetMinRRCount(),
		ReturnAllProbabilities: c.GetReturnAllProbabilities(),
		HRBaseline:             c.HRBaseline,
		Priors:                 c.Priors,
	}
	if c.ModelID != nil {
		cfg.ModelID = *c.ModelID
	}
	return cfg
}
