// Package trainer owns the training session: the single network instance a
// user trains, queries, exports and reloads.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"mlp-playground/internal/apperr"
	"mlp-playground/internal/dataset"
	"mlp-playground/internal/metrics"
	"mlp-playground/internal/model"
)

var (
	// ErrNoSession is returned when an operation needs a trained or loaded network.
	ErrNoSession = fmt.Errorf("%w: no active session, train a model first", apperr.ErrState)
	// ErrBusy is returned when a training run is already in flight.
	ErrBusy = fmt.Errorf("%w: a training run is already in progress", apperr.ErrState)
	// ErrInvalidRequest wraps training parameters rejected before the engine is built.
	ErrInvalidRequest = fmt.Errorf("%w: training request", apperr.ErrInput)
)

// Loader resolves the engine builder. It runs once, in the background.
type Loader func(ctx context.Context) (model.Builder, error)

// Static returns a Loader that resolves to b immediately.
func Static(b model.Builder) Loader {
	return func(context.Context) (model.Builder, error) {
		return b, nil
	}
}

// Request captures everything a training run needs.
type Request struct {
	Architecture model.Architecture
	Activation   model.Activation
	LearningRate float64
	Momentum     float64
	Epochs       int
	BatchSize    int
	Dataset      dataset.Dataset
	Seed         uint64
}

// Config describes the network currently held by a session.
type Config struct {
	Architecture model.Architecture `json:"architecture"`
	Activation   model.Activation   `json:"activation"`
	LearningRate float64            `json:"learning_rate"`
	Momentum     float64            `json:"momentum"`
}

// Result is delivered by TrainAsync.
type Result struct {
	Loss metrics.LossTrace
	Err  error
}

// Session holds at most one engine instance. Train replaces it; SetWeights
// mutates it in place.
type Session struct {
	ready   chan struct{}
	builder model.Builder
	loadErr error

	busy   atomic.Bool
	window metrics.Window

	mu     sync.RWMutex
	engine model.Engine
	cfg    Config
}

// NewSession starts resolving the engine with load and returns immediately.
// Train waits for the loader before building anything.
func NewSession(ctx context.Context, load Loader) *Session {
	s := &Session{ready: make(chan struct{})}
	go func() {
		defer close(s.ready)
		b, err := load(ctx)
		if err == nil && b == nil {
			err = errors.New("trainer: loader returned no builder")
		}
		s.builder, s.loadErr = b, err
	}()
	return s
}

// Ready is closed once the engine loader has finished.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Train builds a new engine, trains it on req.Dataset and, only on success,
// makes it the session's instance. Overlapping calls are rejected with ErrBusy.
func (s *Session) Train(ctx context.Context, req Request) (metrics.LossTrace, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	select {
	case <-s.ready:
	case <-ctx.Done():
		return nil, fmt.Errorf("trainer: waiting for engine: %w", ctx.Err())
	}
	if s.loadErr != nil {
		return nil, fmt.Errorf("trainer: load engine: %w", s.loadErr)
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	startBuild := time.Now()
	eng, err := s.builder(req.Architecture, model.Hyper{
		LearningRate: req.LearningRate,
		Momentum:     req.Momentum,
		Activation:   req.Activation,
		Seed:         req.Seed,
	})
	if err != nil {
		return nil, err
	}
	buildTime := time.Since(startBuild)

	startCompute := time.Now()
	losses, err := eng.Train(req.Dataset.Inputs, req.Dataset.Targets, req.Epochs, req.BatchSize)
	if err != nil {
		return nil, err
	}
	computeTime := time.Since(startCompute)
	trace := metrics.LossTrace(losses)

	s.mu.Lock()
	s.engine = eng
	s.cfg = Config{
		Architecture: append(model.Architecture(nil), req.Architecture...),
		Activation:   req.Activation,
		LearningRate: req.LearningRate,
		Momentum:     req.Momentum,
	}
	s.mu.Unlock()

	s.window.Record(req.Dataset.Len()*req.Epochs, buildTime, computeTime, trace.Final())
	snap := s.window.Snapshot()
	log.Printf("train arch=%s activation=%s epochs=%d records=%d build_ms=%.2f train_ms=%.2f samples_per_sec=%.1f avg_train_ms=%.2f runs=%d loss=%.6f",
		req.Architecture,
		req.Activation,
		req.Epochs,
		req.Dataset.Len(),
		float64(buildTime)/float64(time.Millisecond),
		float64(computeTime)/float64(time.Millisecond),
		snap.SamplesPerSec,
		snap.AvgTrainMS,
		snap.Runs,
		snap.LastLoss,
	)
	return trace, nil
}

// Restore builds a network for cfg, loads w into it and makes it the session's
// instance. It is how a stored run comes back without retraining.
func (s *Session) Restore(ctx context.Context, cfg Config, w model.Weights) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	select {
	case <-s.ready:
	case <-ctx.Done():
		return fmt.Errorf("trainer: waiting for engine: %w", ctx.Err())
	}
	if s.loadErr != nil {
		return fmt.Errorf("trainer: load engine: %w", s.loadErr)
	}
	if err := cfg.Architecture.Validate(); err != nil {
		return err
	}
	if err := w.Fits(cfg.Architecture); err != nil {
		return err
	}
	eng, err := s.builder(cfg.Architecture, model.Hyper{
		LearningRate: cfg.LearningRate,
		Momentum:     cfg.Momentum,
		Activation:   cfg.Activation,
	})
	if err != nil {
		return err
	}
	if err := eng.SetWeights(w); err != nil {
		return err
	}

	s.mu.Lock()
	s.engine = eng
	s.cfg = cfg
	s.cfg.Architecture = append(model.Architecture(nil), cfg.Architecture...)
	s.mu.Unlock()
	log.Printf("restore arch=%s activation=%s", cfg.Architecture, cfg.Activation)
	return nil
}

// TrainAsync runs Train on its own goroutine and delivers exactly one Result.
func (s *Session) TrainAsync(ctx context.Context, req Request) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		loss, err := s.Train(ctx, req)
		out <- Result{Loss: loss, Err: err}
	}()
	return out
}

// Active reports whether the session holds an engine instance.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine != nil
}

// InputWidth returns the active network's input layer width, or 0 without one.
func (s *Session) InputWidth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil {
		return 0
	}
	return s.cfg.Architecture.Inputs()
}

// Config returns the active network configuration.
func (s *Session) Config() (Config, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil {
		return Config{}, false
	}
	cfg := s.cfg
	cfg.Architecture = append(model.Architecture(nil), s.cfg.Architecture...)
	return cfg, true
}

// Predict runs the active engine on input.
func (s *Session) Predict(input []float64) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil {
		return nil, ErrNoSession
	}
	return s.engine.Predict(input)
}

// Weights returns a copy of the active engine's parameters.
func (s *Session) Weights() (model.Weights, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil {
		return model.Weights{}, ErrNoSession
	}
	return s.engine.Weights(), nil
}

// SetWeights replaces the active engine's parameters.
func (s *Session) SetWeights(w model.Weights) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return ErrNoSession
	}
	return s.engine.SetWeights(w)
}

func validate(req Request) error {
	if err := req.Architecture.Validate(); err != nil {
		return err
	}
	if req.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be > 0 (got %d)", ErrInvalidRequest, req.Epochs)
	}
	if err := req.Dataset.Validate(); err != nil {
		return err
	}
	if w := req.Dataset.FeatureWidth(); w != req.Architecture.Inputs() {
		return fmt.Errorf("%w: dataset has %d features but the input layer has %d", ErrInvalidRequest, w, req.Architecture.Inputs())
	}
	if w := req.Dataset.TargetWidth(); w != req.Architecture.Outputs() {
		return fmt.Errorf("%w: dataset has %d targets but the output layer has %d", ErrInvalidRequest, w, req.Architecture.Outputs())
	}
	return nil
}
