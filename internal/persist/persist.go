// Package persist exports and imports a session's network parameters as a
// JSON artifact.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"mlp-playground/internal/apperr"
	"mlp-playground/internal/model"
	"mlp-playground/internal/trainer"
)

// DefaultFileName is the artifact name offered for downloads and CLI saves.
const DefaultFileName = "model_weights.json"

var (
	// ErrNothingToExport is returned when there is no trained network to save.
	ErrNothingToExport = fmt.Errorf("%w: no model to save, train a model first", apperr.ErrState)
	// ErrMalformedArtifact is returned when an artifact is not valid JSON weights.
	ErrMalformedArtifact = fmt.Errorf("%w: malformed weight artifact", apperr.ErrInput)
	// ErrArtifactNotFound is returned by LoadFile for a path that does not exist.
	ErrArtifactNotFound = fmt.Errorf("%w: weight file not found", apperr.ErrInput)
)

// Session is the part of trainer.Session persistence needs.
type Session interface {
	Active() bool
	Weights() (model.Weights, error)
	SetWeights(model.Weights) error
}

var _ Session = (*trainer.Session)(nil)

// Export serializes the active network's weights.
func Export(s Session) ([]byte, error) {
	if !s.Active() {
		return nil, ErrNothingToExport
	}
	w, err := s.Weights()
	if err != nil {
		if errors.Is(err, trainer.ErrNoSession) {
			return nil, ErrNothingToExport
		}
		return nil, err
	}
	return json.MarshalIndent(w, "", "  ")
}

// Import replaces the active network's weights with the artifact in data.
// The session must already hold a network; the artifact never creates one.
func Import(data []byte, s Session) error {
	if !s.Active() {
		return trainer.ErrNoSession
	}
	var w model.Weights
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedArtifact, err)
	}
	return s.SetWeights(w)
}

// SaveFile writes the artifact to path, or to DefaultFileName in path when
// path is a directory.
func SaveFile(path string, s Session) (string, error) {
	data, err := Export(s)
	if err != nil {
		return "", err
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create artifact dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// LoadFile reads an artifact from path and imports it.
func LoadFile(path string, s Session) error {
	if !s.Active() {
		return trainer.ErrNoSession
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return fmt.Errorf("read artifact: %w", err)
	}
	return Import(data, s)
}
