package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlp-playground/internal/apperr"
)

var (
	xorInputs  = [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	xorTargets = [][]float64{{0}, {1}, {1}, {0}}
)

func TestMLPTrainStepReducesLoss(t *testing.T) {
	m, err := NewMLP(Architecture{2, 3, 1}, Hyper{LearningRate: 0.1, Activation: Sigmoid, Seed: 1})
	require.NoError(t, err)
	batch := Batch{Inputs: xorInputs, Targets: xorTargets}
	loss1 := m.TrainStep(batch)
	loss2 := m.TrainStep(batch)
	if loss2 > loss1 {
		t.Fatalf("expected loss to decrease; loss1=%f loss2=%f", loss1, loss2)
	}
}

func TestMLPTrainReturnsOneLossPerEpoch(t *testing.T) {
	m, err := NewMLP(Architecture{2, 8, 1}, Hyper{LearningRate: 0.5, Momentum: 0.9, Activation: Sigmoid, Seed: 7})
	require.NoError(t, err)

	losses, err := m.Train(xorInputs, xorTargets, 2000, 0)
	require.NoError(t, err)
	require.Len(t, losses, 2000)
	assert.Less(t, losses[len(losses)-1], losses[0], "loss should fall on XOR")
}

func TestMLPTrainBatchSizes(t *testing.T) {
	for _, bs := range []int{-1, 1, 3, 4, 100} {
		m, err := NewMLP(Architecture{2, 4, 1}, Hyper{LearningRate: 0.1, Activation: Tanh, Seed: 3})
		require.NoError(t, err)
		losses, err := m.Train(xorInputs, xorTargets, 5, bs)
		require.NoError(t, err, "batch size %d", bs)
		assert.Len(t, losses, 5, "batch size %d", bs)
	}
}

func TestMLPTrainRejectsMismatchedData(t *testing.T) {
	m, err := NewMLP(Architecture{2, 4, 1}, Hyper{LearningRate: 0.1, Seed: 3})
	require.NoError(t, err)

	_, err = m.Train(nil, nil, 1, 1)
	assert.ErrorIs(t, err, apperr.ErrInput)

	_, err = m.Train([][]float64{{1, 2, 3}}, [][]float64{{1}}, 1, 1)
	assert.ErrorIs(t, err, apperr.ErrInput)

	_, err = m.Train([][]float64{{1, 2}}, [][]float64{{1, 0}}, 1, 1)
	assert.ErrorIs(t, err, apperr.ErrInput)
}

func TestNewMLPRejectsBadHyperparameters(t *testing.T) {
	_, err := NewMLP(Architecture{2, 1}, Hyper{LearningRate: 0})
	require.Error(t, err)
	assert.Equal(t, "engine", apperr.Kind(err))

	_, err = NewMLP(Architecture{2, 1}, Hyper{LearningRate: 0.1, Momentum: 1.5})
	require.Error(t, err)

	_, err = NewMLP(Architecture{2}, Hyper{LearningRate: 0.1})
	assert.ErrorIs(t, err, ErrInvalidArchitecture)
}

func TestMLPPredict(t *testing.T) {
	m, err := NewMLP(Architecture{2, 4, 3}, Hyper{LearningRate: 0.1, Activation: Sigmoid, Seed: 11})
	require.NoError(t, err)

	out, err := m.Predict([]float64{0.3, 0.7})
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, v := range out {
		assert.True(t, v > 0 && v < 1, "sigmoid output %f out of range", v)
	}

	_, err = m.Predict([]float64{0.3})
	assert.ErrorIs(t, err, apperr.ErrInput)
}

func TestMLPWeightsRoundTrip(t *testing.T) {
	m, err := NewMLP(Architecture{2, 5, 1}, Hyper{LearningRate: 0.3, Momentum: 0.5, Activation: Sigmoid, Seed: 5})
	require.NoError(t, err)
	_, err = m.Train(xorInputs, xorTargets, 20, 2)
	require.NoError(t, err)

	before := m.Weights()
	raw, err := json.Marshal(before)
	require.NoError(t, err)

	other, err := NewMLP(Architecture{2, 5, 1}, Hyper{LearningRate: 0.3, Activation: Sigmoid, Seed: 99})
	require.NoError(t, err)
	var decoded Weights
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.NoError(t, other.SetWeights(decoded))

	assert.Equal(t, before, other.Weights())
	for _, in := range xorInputs {
		want, err := m.Predict(in)
		require.NoError(t, err)
		got, err := other.Predict(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestMLPWeightsAreCopies(t *testing.T) {
	m, err := NewMLP(Architecture{2, 2, 1}, Hyper{LearningRate: 0.1, Seed: 2})
	require.NoError(t, err)
	w := m.Weights()
	w.Layers[0].Weights[0][0] = 42
	assert.NotEqual(t, 42.0, m.Weights().Layers[0].Weights[0][0])
}

func TestMLPSetWeightsShapeMismatch(t *testing.T) {
	m, err := NewMLP(Architecture{2, 3, 1}, Hyper{LearningRate: 0.1, Seed: 2})
	require.NoError(t, err)
	other, err := NewMLP(Architecture{2, 4, 1}, Hyper{LearningRate: 0.1, Seed: 2})
	require.NoError(t, err)

	before := m.Weights()
	err = m.SetWeights(other.Weights())
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.ErrorIs(t, err, apperr.ErrInput)
	assert.Equal(t, before, m.Weights())
}
