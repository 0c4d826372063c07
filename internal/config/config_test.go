package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlp-playground/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "epochs: 10\ntarget: spiral\nactivation: relu\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Epochs)
	assert.Equal(t, "SPIRAL", cfg.Target)
	assert.Equal(t, "RELU", cfg.Activation)
	assert.Equal(t, "2,4,1", cfg.Architecture)
	assert.Equal(t, 0.9, cfg.Momentum)
	assert.Equal(t, 30, cfg.Resolution)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, "\n"))
	require.NoError(t, err)
	assert.Equal(t, Default().Epochs, cfg.Epochs)
}

func TestLoadDemoConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "demo.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "2,8,8,1", cfg.Architecture)
	assert.Equal(t, "TANH", cfg.Activation)
	assert.Equal(t, uint64(42), cfg.Seed)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "steps: 3\n",
		"bad arch":       "architecture: \"2,x,1\"\n",
		"short arch":     "architecture: \"2\"\n",
		"bad act":        "activation: softmax\n",
		"zero epochs":    "epochs: 0\n",
		"bad momentum":   "momentum: 1.5\n",
		"bad lr":         "learning_rate: -0.1\n",
		"bad yaml":       "epochs: [\n",
		"bad resolution": "resolution: 1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides(Overrides{Architecture: "2,3,1", Epochs: 7, Target: "XOR", Listen: ":9000"})
	assert.Equal(t, "2,3,1", cfg.Architecture)
	assert.Equal(t, 7, cfg.Epochs)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, 16, cfg.BatchSize)
	assert.Equal(t, 0.9, cfg.Momentum)
	assert.Equal(t, 0.1, cfg.LearningRate)
}

func TestApplyOverridesZeroMomentum(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "demo.yaml"))
	require.NoError(t, err)
	require.Equal(t, 0.9, cfg.Momentum)

	zero, lr := 0.0, 0.25
	cfg.ApplyOverrides(Overrides{Momentum: &zero, LearningRate: &lr})
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.0, cfg.Momentum)
	assert.Equal(t, 0.25, cfg.LearningRate)

	neg := -0.5
	cfg.ApplyOverrides(Overrides{LearningRate: &neg})
	assert.Error(t, cfg.Validate())
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Seed = 99
	cfg.Activation = model.ReLU.String()
	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))

	got, err := Load(writeConfig(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
