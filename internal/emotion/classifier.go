package emotion

import (
	"fmt"
	"math"

	"github.com/banshee-data/pulse.report/internal/hrv"
)

// LinearClassifier normalizes feature vectors against the model's mu/sigma,
// computes per-label margins W·x + b, and converts them to probabilities
// with a numerically stable softmax.
type LinearClassifier struct {
	model *ModelParameters
}

// NewClassifier validates the model and returns a classifier holding it.
// Returns a *ModelIncompatibleError when dimensions are inconsistent or any
// weight or bias is non-finite.
func NewClassifier(model *ModelParameters) (*LinearClassifier, error) {
	if model == nil {
		return nil, &ModelIncompatibleError{Reason: "nil model"}
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return &LinearClassifier{model: model}, nil
}

// Model returns the classifier's parameters.
func (c *LinearClassifier) Model() *ModelParameters {
	return c.model
}

// Metadata returns the model's descriptive fields for attachment to results.
func (c *LinearClassifier) Metadata() map[string]interface{} {
	return c.model.Metadata()
}

// Predict maps a feature vector to a probability per label. The vector must
// contain a finite value for every model feature name; otherwise a
// *BadInputError is returned. The output sums to 1.0 within floating
// tolerance for any finite margins, including large-magnitude ones.
func (c *LinearClassifier) Predict(features hrv.FeatureVector) (map[string]float64, error) {
	if !hrv.Validate(features, c.model.FeatureNames) {
		return nil, &BadInputError{
			Reason: fmt.Sprintf("missing or non-finite features, need %v", c.model.FeatureNames),
		}
	}

	normalized := hrv.Normalize(features, c.model.Mu, c.model.Sigma)

	// Assemble the ordered vector the weight matrix expects.
	x := make([]float64, len(c.model.FeatureNames))
	for j, name := range c.model.FeatureNames {
		v, ok := normalized[name]
		if !ok {
			return nil, &BadInputError{Reason: fmt.Sprintf("feature %q absent after normalization", name)}
		}
		x[j] = v
	}

	margins := make([]float64, len(c.model.Labels))
	for i := range c.model.Labels {
		m := c.model.Biases[i]
		for j, w := range c.model.Weights[i] {
			m += w * x[j]
		}
		margins[i] = m
	}

	return softmax(c.model.Labels, margins), nil
}

// softmax converts margins to a probability simplex. Subtracting the maximum
// margin before exponentiating keeps every exponent <= 0, so no overflow is
// possible regardless of margin magnitude.
func softmax(labels []string, margins []float64) map[string]float64 {
	maxMargin := math.Inf(-1)
	for _, m := range margins {
		if m > maxMargin {
			maxMargin = m
		}
	}

	exps := make([]float64, len(margins))
	var sum float64
	for i, m := range margins {
		exps[i] = math.Exp(m - maxMargin)
		sum += exps[i]
	}

	probs := make(map[string]float64, len(labels))
	for i, label := range labels {
		probs[label] = exps[i] / sum
	}
	return probs
}

// Argmax returns the label with the highest probability and that
// probability. Ties resolve to the first label in the model's order.
func (c *LinearClassifier) Argmax(probs map[string]float64) (string, float64) {
	best := ""
	bestP := math.Inf(-1)
	for _, label := range c.model.Labels {
		if p, ok := probs[label]; ok && p > bestP {
			best = label
			bestP = p
		}
	}
	return best, bestP
}
