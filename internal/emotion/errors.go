package emotion

import "fmt"

// BadInputError reports malformed or non-finite feature data reaching the
// classifier. Steady-state callers are expected to log and continue.
type BadInputError struct {
	Reason string
}

func (e *BadInputError) Error() string {
	return fmt.Sprintf("bad classifier input: %s", e.Reason)
}

// ModelIncompatibleError reports a dimensional mismatch at model or engine
// construction. Construction errors are fatal to the construction call.
type ModelIncompatibleError struct {
	ExpectedFeatures []string
	ActualFeatures   []string
	Reason           string
}

func (e *ModelIncompatibleError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("model incompatible: %s", e.Reason)
	}
	return fmt.Sprintf("model incompatible: expected features %v, got %v",
		e.ExpectedFeatures, e.ActualFeatures)
}

// TooFewRRError reports that a window held fewer RR intervals than required.
// The streaming engine prefers silent suppression over raising this; it is
// exported for strict-mode callers that want the gate as an error.
type TooFewRRError struct {
	MinExpected int
	Actual      int
}

func (e *TooFewRRError) Error() string {
	return fmt.Sprintf("too few RR intervals: need %d, have %d", e.MinExpected, e.Actual)
}

// FeatureExtractionError reports an extraction-layer fault. Reserved: the
// current extraction path degrades to zero values instead of failing.
type FeatureExtractionError struct {
	Reason string
}

func (e *FeatureExtractionError) Error() string {
	return fmt.Sprintf("feature extraction failed: %s", e.Reason)
}
