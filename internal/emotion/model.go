// Package emotion classifies heart-rate-variability feature vectors into
// coarse emotional states with a linear model and softmax calibration.
package emotion

import (
	"fmt"
	"math"
)

// ModelParameters holds a validated linear model: per-label weight rows over
// a fixed feature ordering, biases, and z-score normalization parameters.
// Treat a constructed value as immutable; the classifier holds it for its
// lifetime.
type ModelParameters struct {
	ModelID      string             `json:"model_id"`
	Version      string             `json:"version"`
	Labels       []string           `json:"labels"`
	FeatureNames []string           `json:"feature_names"`
	Weights      [][]float64        `json:"weights"`
	Biases       []float64          `json:"biases"`
	Mu           map[string]float64 `json:"mu"`
	Sigma        map[string]float64 `json:"sigma"`
}

// Validate checks dimensional consistency and numeric sanity: one weight row
// per label, one weight column per feature name (when names are declared),
// one bias per label, and no NaN or infinite weight or bias.
func (m *ModelParameters) Validate() error {
	if len(m.Labels) == 0 {
		return &ModelIncompatibleError{Reason: "model declares no labels"}
	}
	if len(m.Weights) != len(m.Labels) {
		return &ModelIncompatibleError{
			Reason: fmt.Sprintf("weight rows (%d) != labels (%d)", len(m.Weights), len(m.Labels)),
		}
	}
	if len(m.Biases) != len(m.Labels) {
		return &ModelIncompatibleError{
			Reason: fmt.Sprintf("biases (%d) != labels (%d)", len(m.Biases), len(m.Labels)),
		}
	}
	for i, row := range m.Weights {
		if len(m.FeatureNames) > 0 && len(row) != len(m.FeatureNames) {
			return &ModelIncompatibleError{
				Reason: fmt.Sprintf("weight row %d has %d columns, want %d", i, len(row), len(m.FeatureNames)),
			}
		}
		for j, w := range row {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return &ModelIncompatibleError{
					Reason: fmt.Sprintf("weight[%d][%d] is not finite", i, j),
				}
			}
		}
	}
	for i, b := range m.Biases {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return &ModelIncompatibleError{
				Reason: fmt.Sprintf("bias[%d] is not finite", i),
			}
		}
	}
	return nil
}

// Metadata returns static descriptive fields for attachment to results. It
// plays no part in inference.
func (m *ModelParameters) Metadata() map[string]interface{} {
	labels := make([]string, len(m.Labels))
	copy(labels, m.Labels)
	features := make([]string, len(m.FeatureNames))
	copy(features, m.FeatureNames)

	return map[string]interface{}{
		"model_id":      m.ModelID,
		"version":       m.Version,
		"labels":        labels,
		"feature_names": features,
		"label_count":   len(m.Labels),
		"feature_count": len(m.FeatureNames),
	}
}

// DefaultModel returns the built-in fallback model: three labels over the
// three core HRV features with fixed placeholder parameters. The weights are
// hand-set to give directionally plausible output for demos and tests; they
// are NOT trained on any dataset and carry no clinical meaning. Substitute a
// real model through the same supply boundary (see LoadModelFile).
func DefaultModel() *ModelParameters {
	return &ModelParameters{
		ModelID:      "builtin-default",
		Version:      "0.1.0",
		Labels:       []string{"Amused", "Calm", "Stressed"},
		FeatureNames: []string{"hr_mean", "sdnn", "rmssd"},
		Weights: [][]float64{
			{0.6, 0.2, 0.1},   // Amused: elevated HR with retained variability
			{-0.8, 0.5, 0.6},  // Calm: low HR, high HRV
			{0.9, -0.7, -0.8}, // Stressed: elevated HR, suppressed HRV
		},
		Biases: []float64{0.0, 0.2, -0.1},
		Mu: map[string]float64{
			"hr_mean": 72.0,
			"sdnn":    45.0,
			"rmssd":   38.0,
		},
		Sigma: map[string]float64{
			"hr_mean": 12.0,
			"sdnn":    20.0,
			"rmssd":   18.0,
		},
	}
}
