package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	s := LossTrace{0.5, 0.3, 0.4, 0.2}.Summarize()
	assert.Equal(t, 4, s.Epochs)
	assert.Equal(t, 0.5, s.First)
	assert.Equal(t, 0.2, s.Final)
	assert.Equal(t, 0.2, s.Min)
	assert.Equal(t, 4, s.MinEpoch)
	assert.InDelta(t, 0.35, s.Mean, 1e-12)
	assert.False(t, s.Monotonic)

	assert.True(t, LossTrace{0.5, 0.5, 0.1}.Summarize().Monotonic)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, LossTrace(nil).Summarize())
	assert.Equal(t, 0.0, LossTrace(nil).Final())
}
