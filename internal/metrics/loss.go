package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// LossTrace holds one loss value per completed epoch of a single run.
type LossTrace []float64

// Final returns the last epoch's loss, or 0 for an empty trace.
func (t LossTrace) Final() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1]
}

// Summary condenses a trace for logs and run history.
type Summary struct {
	Epochs    int     `json:"epochs"`
	First     float64 `json:"first"`
	Final     float64 `json:"final"`
	Min       float64 `json:"min"`
	MinEpoch  int     `json:"min_epoch"`
	Mean      float64 `json:"mean"`
	Monotonic bool    `json:"monotonic"`
}

// Summarize computes Summary. Non-monotonic traces are valid; Monotonic only
// reports whether the loss never rose between epochs.
func (t LossTrace) Summarize() Summary {
	if len(t) == 0 {
		return Summary{}
	}
	values := []float64(t)
	return Summary{
		Epochs:    len(t),
		First:     t[0],
		Final:     t.Final(),
		Min:       floats.Min(values),
		MinEpoch:  floats.MinIdx(values) + 1,
		Mean:      stat.Mean(values, nil),
		Monotonic: nonIncreasing(values),
	}
}

func nonIncreasing(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] > values[i-1] {
			return false
		}
	}
	return true
}
