package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlp-playground/internal/apperr"
	"mlp-playground/internal/dataset"
	"mlp-playground/internal/model"
	"mlp-playground/internal/target"
	"mlp-playground/internal/trainer"
)

func trainedSession(t *testing.T, arch model.Architecture) *trainer.Session {
	t.Helper()
	s := trainer.NewSession(context.Background(), trainer.Static(model.BuildMLP))
	ds := dataset.Synthetic(target.XOR, 32, dataset.NewRand(7))
	_, err := s.Train(context.Background(), trainer.Request{
		Architecture: arch,
		Activation:   model.Sigmoid,
		LearningRate: 0.5,
		Momentum:     0.9,
		Epochs:       5,
		BatchSize:    8,
		Dataset:      ds,
		Seed:         7,
	})
	require.NoError(t, err)
	return s
}

func TestExportWithoutSession(t *testing.T) {
	s := trainer.NewSession(context.Background(), trainer.Static(model.BuildMLP))
	_, err := Export(s)
	assert.ErrorIs(t, err, ErrNothingToExport)
	assert.Equal(t, "state", apperr.Kind(err))
}

func TestImportWithoutSessionChecksBeforeParsing(t *testing.T) {
	s := trainer.NewSession(context.Background(), trainer.Static(model.BuildMLP))
	err := Import([]byte("not json"), s)
	assert.ErrorIs(t, err, trainer.ErrNoSession)
}

func TestRoundTripIsExact(t *testing.T) {
	s := trainedSession(t, model.Architecture{2, 4, 3, 1})
	before, err := s.Weights()
	require.NoError(t, err)

	data, err := Export(s)
	require.NoError(t, err)
	require.NoError(t, Import(data, s))

	after, err := s.Weights()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestImportRejectsBadArtifacts(t *testing.T) {
	s := trainedSession(t, model.Architecture{2, 3, 1})
	before, err := s.Weights()
	require.NoError(t, err)

	err = Import([]byte("{"), s)
	assert.ErrorIs(t, err, ErrMalformedArtifact)
	assert.Equal(t, "input", apperr.Kind(err))

	other := trainedSession(t, model.Architecture{2, 5, 1})
	data, err := Export(other)
	require.NoError(t, err)
	err = Import(data, s)
	assert.ErrorIs(t, err, model.ErrShapeMismatch)

	after, err := s.Weights()
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed imports leave weights untouched")
}

func TestSaveAndLoadFile(t *testing.T) {
	dir := t.TempDir()
	s := trainedSession(t, model.Architecture{2, 4, 1})

	path, err := SaveFile(dir, s)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultFileName), path)

	explicit := filepath.Join(dir, "nested", "w.json")
	path, err = SaveFile(explicit, s)
	require.NoError(t, err)
	assert.Equal(t, explicit, path)
	_, err = os.Stat(explicit)
	require.NoError(t, err)

	require.NoError(t, LoadFile(explicit, s))

	err = LoadFile(filepath.Join(dir, "missing.json"), s)
	assert.ErrorIs(t, err, ErrArtifactNotFound)
	assert.NotErrorIs(t, err, ErrMalformedArtifact)
	assert.Equal(t, "input", apperr.Kind(err))
}
