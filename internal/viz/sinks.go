package viz

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Memory keeps the latest chart data in memory.
type Memory struct {
	mu       sync.RWMutex
	loss     *LossSeries
	surfaces []SurfaceSeries
	created  int
	replaced int
	rendered int
}

// CreateLoss implements LossSink.
func (m *Memory) CreateLoss(s LossSeries) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loss = &s
	m.created++
	return nil
}

// ReplaceLoss implements LossSink.
func (m *Memory) ReplaceLoss(s LossSeries) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loss = &s
	m.replaced++
	return nil
}

// RenderSurfaces implements SurfaceSink.
func (m *Memory) RenderSurfaces(series []SurfaceSeries) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surfaces = append([]SurfaceSeries(nil), series...)
	m.rendered++
	return nil
}

// Loss returns the latest loss series.
func (m *Memory) Loss() (LossSeries, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.loss == nil {
		return LossSeries{}, false
	}
	return *m.loss, true
}

// Surfaces returns the latest surface series.
func (m *Memory) Surfaces() ([]SurfaceSeries, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.surfaces == nil {
		return nil, false
	}
	return append([]SurfaceSeries(nil), m.surfaces...), true
}

// Counts reports how many creates, replaces and surface renders were received.
func (m *Memory) Counts() (created, replaced, rendered int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.created, m.replaced, m.rendered
}

const (
	LossFile    = "loss.json"
	SurfaceFile = "surface.json"
)

// JSONDir writes chart payloads into a directory, overwriting on each refresh.
type JSONDir struct {
	Dir string
}

// CreateLoss implements LossSink.
func (d JSONDir) CreateLoss(s LossSeries) error {
	return d.write(LossFile, LossChart(s))
}

// ReplaceLoss implements LossSink.
func (d JSONDir) ReplaceLoss(s LossSeries) error {
	return d.write(LossFile, LossChart(s))
}

// RenderSurfaces implements SurfaceSink.
func (d JSONDir) RenderSurfaces(series []SurfaceSeries) error {
	return d.write(SurfaceFile, SurfacesChart(series))
}

func (d JSONDir) write(name string, v any) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	b, err := json.MarshalIndent(v, "", " ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(d.Dir, name), b)
}

// Multi fans refreshes out to several sinks.
type Multi struct {
	Loss     []LossSink
	Surfaces []SurfaceSink
}

// CreateLoss implements LossSink.
func (m Multi) CreateLoss(s LossSeries) error {
	var errs []error
	for _, sink := range m.Loss {
		errs = append(errs, sink.CreateLoss(s))
	}
	return errors.Join(errs...)
}

// ReplaceLoss implements LossSink.
func (m Multi) ReplaceLoss(s LossSeries) error {
	var errs []error
	for _, sink := range m.Loss {
		errs = append(errs, sink.ReplaceLoss(s))
	}
	return errors.Join(errs...)
}

// RenderSurfaces implements SurfaceSink.
func (m Multi) RenderSurfaces(series []SurfaceSeries) error {
	var errs []error
	for _, sink := range m.Surfaces {
		errs = append(errs, sink.RenderSurfaces(series))
	}
	return errors.Join(errs...)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
