package model

// Batch represents a minibatch of feature vectors and their target vectors.
type Batch struct {
	Inputs  [][]float64
	Targets [][]float64
}

// Hyper carries the knobs fixed when an engine is constructed.
type Hyper struct {
	LearningRate float64
	Momentum     float64
	Activation   Activation
	// Seed drives weight initialisation. Zero picks a time-based seed.
	Seed uint64
}

// Engine is the network capability the trainer drives. Implementations own
// their weights; callers only see copies through Weights and SetWeights.
type Engine interface {
	// Train runs epochs passes over the dataset and returns one loss per epoch.
	Train(inputs, targets [][]float64, epochs, batchSize int) ([]float64, error)
	Predict(input []float64) ([]float64, error)
	Weights() Weights
	SetWeights(w Weights) error
}

// Builder constructs a fresh engine for an architecture.
type Builder func(arch Architecture, hp Hyper) (Engine, error)
