package model

import (
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"mlp-playground/internal/apperr"
)

// ErrDiverged is returned when an epoch's loss is no longer finite.
var ErrDiverged = errors.New("mlp: loss diverged")

// MLP is a fully connected network trained with mini-batch SGD and momentum
// on mean squared error.
type MLP struct {
	arch     Architecture
	hp       Hyper
	weights  []*mat.Dense // arch[l] x arch[l+1]
	biases   []*mat.VecDense
	vWeights []*mat.Dense
	vBiases  []*mat.VecDense
}

// NewMLP constructs the network with Xavier-uniform weights and zero biases.
func NewMLP(arch Architecture, hp Hyper) (*MLP, error) {
	if err := arch.Validate(); err != nil {
		return nil, err
	}
	if !(hp.LearningRate > 0) || math.IsInf(hp.LearningRate, 0) {
		return nil, fmt.Errorf("mlp: learning rate must be a positive finite number (got %v)", hp.LearningRate)
	}
	if !(hp.Momentum >= 0 && hp.Momentum < 1) {
		return nil, fmt.Errorf("mlp: momentum must be in [0,1) (got %v)", hp.Momentum)
	}
	if _, ok := activationNames[hp.Activation]; !ok {
		return nil, fmt.Errorf("mlp: unsupported activation %v", hp.Activation)
	}
	seed := hp.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))

	m := &MLP{arch: append(Architecture(nil), arch...), hp: hp}
	for l := 0; l < len(arch)-1; l++ {
		in, out := arch[l], arch[l+1]
		limit := math.Sqrt(6 / float64(in+out))
		data := make([]float64, in*out)
		for i := range data {
			data[i] = (rng.Float64()*2 - 1) * limit
		}
		m.weights = append(m.weights, mat.NewDense(in, out, data))
		m.biases = append(m.biases, mat.NewVecDense(out, nil))
		m.vWeights = append(m.vWeights, mat.NewDense(in, out, nil))
		m.vBiases = append(m.vBiases, mat.NewVecDense(out, nil))
	}
	return m, nil
}

// BuildMLP adapts NewMLP to the Builder signature.
func BuildMLP(arch Architecture, hp Hyper) (Engine, error) {
	return NewMLP(arch, hp)
}

// Architecture returns the layer widths the network was built with.
func (m *MLP) Architecture() Architecture {
	return append(Architecture(nil), m.arch...)
}

// Train runs epochs passes over the data. A batchSize that is <= 0 or larger
// than the dataset trains on the full batch. Each returned value is the mean
// per-sample loss of that epoch.
func (m *MLP) Train(inputs, targets [][]float64, epochs, batchSize int) ([]float64, error) {
	n := len(inputs)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty dataset", apperr.ErrInput)
	}
	if len(targets) != n {
		return nil, fmt.Errorf("%w: %d inputs but %d targets", apperr.ErrInput, n, len(targets))
	}
	for i := range inputs {
		if len(inputs[i]) != m.arch.Inputs() {
			return nil, fmt.Errorf("%w: sample %d has %d features, network expects %d", apperr.ErrInput, i, len(inputs[i]), m.arch.Inputs())
		}
		if len(targets[i]) != m.arch.Outputs() {
			return nil, fmt.Errorf("%w: sample %d has %d targets, network expects %d", apperr.ErrInput, i, len(targets[i]), m.arch.Outputs())
		}
	}
	if batchSize <= 0 || batchSize > n {
		batchSize = n
	}

	losses := make([]float64, 0, epochs)
	for e := 0; e < epochs; e++ {
		total := 0.0
		for start := 0; start < n; start += batchSize {
			end := min(start+batchSize, n)
			total += m.TrainStep(Batch{Inputs: inputs[start:end], Targets: targets[start:end]}) * float64(end-start)
		}
		loss := total / float64(n)
		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return nil, fmt.Errorf("%w at epoch %d", ErrDiverged, e+1)
		}
		losses = append(losses, loss)
	}
	return losses, nil
}

// TrainStep executes one momentum update over batch and returns its average
// loss. Samples are assumed to match the architecture.
func (m *MLP) TrainStep(batch Batch) float64 {
	if len(batch.Inputs) == 0 {
		return 0
	}
	gradW := make([]*mat.Dense, len(m.weights))
	gradB := make([]*mat.VecDense, len(m.biases))
	for l := range m.weights {
		gradW[l] = mat.NewDense(m.arch[l], m.arch[l+1], nil)
		gradB[l] = mat.NewVecDense(m.arch[l+1], nil)
	}

	totalLoss := 0.0
	for s, input := range batch.Inputs {
		acts := m.forward(input)
		out := acts[len(acts)-1]
		target := batch.Targets[s]

		delta := mat.NewVecDense(out.Len(), nil)
		sampleLoss := 0.0
		for j := 0; j < out.Len(); j++ {
			diff := out.AtVec(j) - target[j]
			sampleLoss += diff * diff
			delta.SetVec(j, diff*m.hp.Activation.derivative(out.AtVec(j)))
		}
		totalLoss += sampleLoss / float64(out.Len())

		for l := len(m.weights) - 1; l >= 0; l-- {
			gradW[l].RankOne(gradW[l], 1, acts[l], delta)
			gradB[l].AddVec(gradB[l], delta)
			if l == 0 {
				break
			}
			prev := mat.NewVecDense(m.arch[l], nil)
			prev.MulVec(m.weights[l], delta)
			for i := 0; i < prev.Len(); i++ {
				prev.SetVec(i, prev.AtVec(i)*m.hp.Activation.derivative(acts[l].AtVec(i)))
			}
			delta = prev
		}
	}

	step := -m.hp.LearningRate / float64(len(batch.Inputs))
	for l := range m.weights {
		v := m.vWeights[l].RawMatrix().Data
		floats.Scale(m.hp.Momentum, v)
		floats.AddScaled(v, step, gradW[l].RawMatrix().Data)
		floats.Add(m.weights[l].RawMatrix().Data, v)

		vb := m.vBiases[l].RawVector().Data
		floats.Scale(m.hp.Momentum, vb)
		floats.AddScaled(vb, step, gradB[l].RawVector().Data)
		floats.Add(m.biases[l].RawVector().Data, vb)
	}
	return totalLoss / float64(len(batch.Inputs))
}

// Predict runs a forward pass.
func (m *MLP) Predict(input []float64) ([]float64, error) {
	if len(input) != m.arch.Inputs() {
		return nil, fmt.Errorf("%w: input has %d features, network expects %d", apperr.ErrInput, len(input), m.arch.Inputs())
	}
	acts := m.forward(input)
	out := acts[len(acts)-1]
	return append([]float64(nil), out.RawVector().Data...), nil
}

func (m *MLP) forward(input []float64) []*mat.VecDense {
	acts := make([]*mat.VecDense, len(m.weights)+1)
	acts[0] = mat.NewVecDense(len(input), append([]float64(nil), input...))
	for l, w := range m.weights {
		z := mat.NewVecDense(m.arch[l+1], nil)
		z.MulVec(w.T(), acts[l])
		z.AddVec(z, m.biases[l])
		for j := 0; j < z.Len(); j++ {
			z.SetVec(j, m.hp.Activation.apply(z.AtVec(j)))
		}
		acts[l+1] = z
	}
	return acts
}

// Weights returns a copy of the current parameters.
func (m *MLP) Weights() Weights {
	w := Weights{Layers: make([]LayerWeights, len(m.weights))}
	for l, dense := range m.weights {
		rows, _ := dense.Dims()
		lw := LayerWeights{Weights: make([][]float64, rows)}
		for i := 0; i < rows; i++ {
			lw.Weights[i] = mat.Row(nil, i, dense)
		}
		lw.Biases = append([]float64(nil), m.biases[l].RawVector().Data...)
		w.Layers[l] = lw
	}
	return w
}

// SetWeights replaces the parameters and clears momentum.
func (m *MLP) SetWeights(w Weights) error {
	if err := w.Fits(m.arch); err != nil {
		return err
	}
	for l, lw := range w.Layers {
		for i, row := range lw.Weights {
			m.weights[l].SetRow(i, row)
		}
		copy(m.biases[l].RawVector().Data, lw.Biases)
		m.vWeights[l].Zero()
		m.vBiases[l].Zero()
	}
	return nil
}

var _ Engine = (*MLP)(nil)
