// Package playground composes the session, the chart sync and the run store
// into the actions a user can take: train, save, load.
package playground

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/exp/rand"

	"mlp-playground/internal/apperr"
	"mlp-playground/internal/dataset"
	"mlp-playground/internal/metrics"
	"mlp-playground/internal/model"
	"mlp-playground/internal/persist"
	"mlp-playground/internal/store"
	"mlp-playground/internal/target"
	"mlp-playground/internal/trainer"
	"mlp-playground/internal/viz"
)

// ErrNoStore is returned by run-history actions when no store is configured.
var ErrNoStore = fmt.Errorf("%w: run history is not enabled", apperr.ErrState)

// Params are the user's training inputs, as typed.
type Params struct {
	Architecture string  `json:"architecture"`
	Activation   string  `json:"activation"`
	LearningRate float64 `json:"learning_rate"`
	Momentum     float64 `json:"momentum"`
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	Target       string  `json:"target"`
	// Dataset is uploaded CSV text. Empty means sample the target function.
	Dataset string `json:"dataset,omitempty"`
	// Samples overrides dataset.DefaultTrainSamples for synthetic data.
	Samples int    `json:"samples,omitempty"`
	Seed    uint64 `json:"seed,omitempty"`
}

// Outcome reports a finished training run.
type Outcome struct {
	RunID   string            `json:"run_id,omitempty"`
	Target  target.Kind       `json:"target"`
	Samples int               `json:"samples"`
	Loss    metrics.LossTrace `json:"loss"`
	Summary metrics.Summary   `json:"summary"`
}

// RunStore is the part of store.Store the playground records runs in.
type RunStore interface {
	SaveRun(ctx context.Context, r store.Run) (string, error)
	GetRun(ctx context.Context, id string) (store.Run, error)
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
}

var _ RunStore = (*store.Store)(nil)

// Playground wires one session to its charts. Store may be nil.
type Playground struct {
	Session *trainer.Session
	Sync    *viz.Sync
	Store   RunStore

	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Playground. A nil rng draws from a clock-seeded generator.
func New(s *trainer.Session, vs *viz.Sync, runs RunStore, rng *rand.Rand) *Playground {
	if rng == nil {
		rng = dataset.NewRand(0)
	}
	if vs == nil {
		vs = viz.NewSync(nil, nil, viz.DefaultResolution)
	}
	return &Playground{Session: s, Sync: vs, Store: runs, rng: rng}
}

// Train runs a full training action: parse inputs, build the dataset, train,
// refresh both charts and record the run.
func (p *Playground) Train(ctx context.Context, in Params) (Outcome, error) {
	req, kind, err := p.request(in)
	if err != nil {
		return Outcome{}, err
	}
	loss, err := p.Session.Train(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{
		Target:  kind,
		Samples: req.Dataset.Len(),
		Loss:    loss,
		Summary: loss.Summarize(),
	}
	if _, err := p.Sync.RefreshLoss(loss); err != nil {
		return out, err
	}
	if _, err := p.Sync.RefreshSurfaces(kind, p.Session); err != nil {
		return out, err
	}
	if p.Store != nil {
		id, err := p.record(ctx, req, kind, loss)
		if err != nil {
			return out, err
		}
		out.RunID = id
	}
	log.Printf("playground run=%s target=%s samples=%d epochs=%d final_loss=%.6f min_loss=%.6f",
		out.RunID, kind, out.Samples, out.Summary.Epochs, out.Summary.Final, out.Summary.Min)
	return out, nil
}

func (p *Playground) request(in Params) (trainer.Request, target.Kind, error) {
	arch, err := model.ParseArchitecture(in.Architecture)
	if err != nil {
		return trainer.Request{}, "", err
	}
	act := model.Sigmoid
	if strings.TrimSpace(in.Activation) != "" {
		if act, err = model.ParseActivation(in.Activation); err != nil {
			return trainer.Request{}, "", err
		}
	}
	kind := target.ParseKind(in.Target)

	var ds dataset.Dataset
	if strings.TrimSpace(in.Dataset) != "" {
		if ds, err = dataset.Parse(strings.NewReader(in.Dataset)); err != nil {
			return trainer.Request{}, "", err
		}
	} else {
		n := in.Samples
		if n <= 0 {
			n = dataset.DefaultTrainSamples
		}
		ds = p.synthetic(kind, n, in.Seed)
	}
	return trainer.Request{
		Architecture: arch,
		Activation:   act,
		LearningRate: in.LearningRate,
		Momentum:     in.Momentum,
		Epochs:       in.Epochs,
		BatchSize:    in.BatchSize,
		Dataset:      ds,
		Seed:         in.Seed,
	}, kind, nil
}

func (p *Playground) synthetic(kind target.Kind, n int, seed uint64) dataset.Dataset {
	if seed != 0 {
		return dataset.Synthetic(kind, n, dataset.NewRand(seed))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return dataset.Synthetic(kind, n, p.rng)
}

func (p *Playground) record(ctx context.Context, req trainer.Request, kind target.Kind, loss metrics.LossTrace) (string, error) {
	cfg, _ := p.Session.Config()
	w, err := p.Session.Weights()
	if err != nil {
		return "", err
	}
	return p.Store.SaveRun(ctx, store.Run{
		Target:    kind,
		Config:    cfg,
		Epochs:    req.Epochs,
		BatchSize: req.BatchSize,
		Samples:   req.Dataset.Len(),
		Loss:      loss,
		Host:      metrics.CurrentHost(),
		Weights:   w,
	})
}

// Save exports the active network.
func (p *Playground) Save() ([]byte, error) {
	return persist.Export(p.Session)
}

// Load imports an artifact into the active network and redraws the surfaces.
func (p *Playground) Load(data []byte, kind target.Kind) error {
	if err := persist.Import(data, p.Session); err != nil {
		return err
	}
	_, err := p.Sync.RefreshSurfaces(kind, p.Session)
	return err
}

// LoadRun reinstates a stored run's network and redraws both charts. An empty
// kind uses the run's own target.
func (p *Playground) LoadRun(ctx context.Context, id string, kind target.Kind) (store.Run, error) {
	if p.Store == nil {
		return store.Run{}, ErrNoStore
	}
	run, err := p.Store.GetRun(ctx, id)
	if err != nil {
		return store.Run{}, err
	}
	if err := p.Session.Restore(ctx, run.Config, run.Weights); err != nil {
		return store.Run{}, err
	}
	if kind == "" {
		kind = run.Target
	}
	if _, err := p.Sync.RefreshLoss(run.Loss); err != nil {
		return run, err
	}
	_, err = p.Sync.RefreshSurfaces(kind, p.Session)
	return run, err
}

// Runs lists stored runs, newest first.
func (p *Playground) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	if p.Store == nil {
		return nil, ErrNoStore
	}
	return p.Store.ListRuns(ctx, limit)
}
