package model

import (
	"fmt"

	"mlp-playground/internal/apperr"
)

// ErrShapeMismatch is returned when weights do not fit an architecture.
var ErrShapeMismatch = fmt.Errorf("%w: weights do not match architecture", apperr.ErrInput)

// LayerWeights connects layer l to layer l+1. Weights is indexed [from][to].
type LayerWeights struct {
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

// Weights is the portable form of a network's parameters.
type Weights struct {
	Layers []LayerWeights `json:"layers"`
}

// Clone returns a deep copy.
func (w Weights) Clone() Weights {
	out := Weights{Layers: make([]LayerWeights, len(w.Layers))}
	for l, lw := range w.Layers {
		rows := make([][]float64, len(lw.Weights))
		for i, row := range lw.Weights {
			rows[i] = append([]float64(nil), row...)
		}
		out.Layers[l] = LayerWeights{Weights: rows, Biases: append([]float64(nil), lw.Biases...)}
	}
	return out
}

// Fits reports whether w has the shape implied by arch.
func (w Weights) Fits(arch Architecture) error {
	if len(w.Layers) != len(arch)-1 {
		return fmt.Errorf("%w: %d weight layers for architecture %s", ErrShapeMismatch, len(w.Layers), arch)
	}
	for l, lw := range w.Layers {
		if len(lw.Weights) != arch[l] {
			return fmt.Errorf("%w: layer %d has %d rows, want %d", ErrShapeMismatch, l, len(lw.Weights), arch[l])
		}
		for i, row := range lw.Weights {
			if len(row) != arch[l+1] {
				return fmt.Errorf("%w: layer %d row %d has %d columns, want %d", ErrShapeMismatch, l, i, len(row), arch[l+1])
			}
		}
		if len(lw.Biases) != arch[l+1] {
			return fmt.Errorf("%w: layer %d has %d biases, want %d", ErrShapeMismatch, l, len(lw.Biases), arch[l+1])
		}
	}
	return nil
}
