// Package dataset builds labelled training data, either sampled from a target
// function or parsed from an uploaded CSV file.
package dataset

import (
	"fmt"

	"mlp-playground/internal/apperr"
)

// ErrMalformed is returned for datasets that cannot be used for training.
var ErrMalformed = fmt.Errorf("%w: dataset", apperr.ErrInput)

// Dataset pairs feature vectors with target vectors by index.
type Dataset struct {
	Inputs  [][]float64 `json:"inputs"`
	Targets [][]float64 `json:"targets"`
}

// Len returns the number of records.
func (d Dataset) Len() int {
	return len(d.Inputs)
}

// FeatureWidth is the width of the first feature vector, or 0 when empty.
func (d Dataset) FeatureWidth() int {
	if len(d.Inputs) == 0 {
		return 0
	}
	return len(d.Inputs[0])
}

// TargetWidth is the width of the first target vector, or 0 when empty.
func (d Dataset) TargetWidth() int {
	if len(d.Targets) == 0 {
		return 0
	}
	return len(d.Targets[0])
}

// Validate checks the dataset is non-empty, parallel and rectangular.
func (d Dataset) Validate() error {
	if len(d.Inputs) == 0 {
		return fmt.Errorf("%w: no records", ErrMalformed)
	}
	if len(d.Inputs) != len(d.Targets) {
		return fmt.Errorf("%w: %d inputs but %d targets", ErrMalformed, len(d.Inputs), len(d.Targets))
	}
	fw, tw := d.FeatureWidth(), d.TargetWidth()
	if fw == 0 || tw == 0 {
		return fmt.Errorf("%w: empty feature or target vector", ErrMalformed)
	}
	for i := range d.Inputs {
		if len(d.Inputs[i]) != fw {
			return fmt.Errorf("%w: record %d has %d features, want %d", ErrMalformed, i+1, len(d.Inputs[i]), fw)
		}
		if len(d.Targets[i]) != tw {
			return fmt.Errorf("%w: record %d has %d targets, want %d", ErrMalformed, i+1, len(d.Targets[i]), tw)
		}
	}
	return nil
}
