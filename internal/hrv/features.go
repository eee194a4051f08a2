package hrv

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Reserved feature names always present in an extracted FeatureVector.
const (
	FeatureHRMean = "hr_mean"
	FeatureSDNN   = "sdnn"
	FeatureRMSSD  = "rmssd"
)

// RequiredFeatures lists the names every classifier model consumed by the
// engine must expose, in canonical order.
var RequiredFeatures = []string{FeatureHRMean, FeatureSDNN, FeatureRMSSD}

// FeatureVector maps feature names to values. Vectors produced by Extract
// never contain NaN or infinite values.
type FeatureVector map[string]float64

// HRMean returns the arithmetic mean of the heart-rate values, or 0.0 for an
// empty input.
func HRMean(hrValues []float64) float64 {
	if len(hrValues) == 0 {
		return 0.0
	}
	return stat.Mean(hrValues, nil)
}

// SDNN returns the sample standard deviation (n-1 denominator) of the
// cleaned RR intervals. Fewer than 2 cleaned intervals yields 0.0; that is
// an expected streaming condition, not an error.
func SDNN(rrIntervalsMs []float64) float64 {
	cleaned := CleanRR(rrIntervalsMs)
	if len(cleaned) < 2 {
		return 0.0
	}
	return stat.StdDev(cleaned, nil)
}

// RMSSD returns the root mean square of successive differences of the
// cleaned RR intervals, with the squared-difference sum divided by n-1 where
// n is the cleaned count. Fewer than 2 cleaned intervals yields 0.0.
func RMSSD(rrIntervalsMs []float64) float64 {
	cleaned := CleanRR(rrIntervalsMs)
	n := len(cleaned)
	if n < 2 {
		return 0.0
	}
	var sumSq float64
	for i := 1; i < n; i++ {
		d := cleaned[i] - cleaned[i-1]
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// Extract combines the three core statistics with any caller-supplied motion
// features. A motion key colliding with a reserved name overwrites it
// (last-writer-wins); avoiding such collisions is the caller's
// responsibility.
func Extract(hrValues, rrIntervalsMs []float64, motion map[string]float64) FeatureVector {
	features := FeatureVector{
		FeatureHRMean: HRMean(hrValues),
		FeatureSDNN:   SDNN(rrIntervalsMs),
		FeatureRMSSD:  RMSSD(rrIntervalsMs),
	}
	for k, v := range motion {
		features[k] = v
	}
	return features
}

// Validate reports whether every required name is present in features with a
// finite value.
func Validate(features FeatureVector, requiredNames []string) bool {
	for _, name := range requiredNames {
		v, ok := features[name]
		if !ok {
			return false
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Normalize z-scores each feature present in both the input and mu/sigma:
// (value - mu) / sigma when sigma > 0, else 0.0. Features absent from
// mu/sigma pass through unchanged.
func Normalize(features FeatureVector, mu, sigma map[string]float64) FeatureVector {
	normalized := make(FeatureVector, len(features))
	for name, v := range features {
		m, hasMu := mu[name]
		s, hasSigma := sigma[name]
		if !hasMu || !hasSigma {
			normalized[name] = v
			continue
		}
		if s > 0 {
			normalized[name] = (v - m) / s
		} else {
			normalized[name] = 0.0
		}
	}
	return normalized
}
