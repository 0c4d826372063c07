// Package store records training runs in a sqlite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/sqlite" // pure Go driver, registers "sqlite"
	"github.com/google/uuid"

	"mlp-playground/internal/apperr"
	"mlp-playground/internal/metrics"
	"mlp-playground/internal/model"
	"mlp-playground/internal/target"
	"mlp-playground/internal/trainer"
)

// DefaultListLimit caps ListRuns when limit <= 0.
const DefaultListLimit = 50

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = fmt.Errorf("%w: run not found", apperr.ErrInput)

// Run is one completed training run.
type Run struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Target    target.Kind       `json:"target"`
	Config    trainer.Config    `json:"config"`
	Epochs    int               `json:"epochs"`
	BatchSize int               `json:"batch_size"`
	Samples   int               `json:"samples"`
	Loss      metrics.LossTrace `json:"loss"`
	Host      metrics.Host      `json:"host"`
	// Weights is left empty by ListRuns.
	Weights model.Weights `json:"weights"`
}

// Store is a handle on the runs database.
type Store struct {
	db *sql.DB
}

const schema = `CREATE TABLE IF NOT EXISTS runs (
	"id" TEXT PRIMARY KEY,
	"created_at" INTEGER NOT NULL,
	"target" TEXT NOT NULL,
	"config" TEXT NOT NULL,
	"epochs" INTEGER NOT NULL,
	"batch_size" INTEGER NOT NULL,
	"samples" INTEGER NOT NULL,
	"loss" TEXT NOT NULL,
	"host" TEXT NOT NULL,
	"weights" TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);`

// Open creates the database at path, and its parent directory, if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	log.Printf("store path=%s", path)
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts r under a fresh id and returns it. A zero CreatedAt is set
// to the current time.
func (s *Store) SaveRun(ctx context.Context, r Run) (string, error) {
	r.ID = uuid.NewString()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	cfg, err := json.Marshal(r.Config)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	loss, err := json.Marshal(r.Loss)
	if err != nil {
		return "", fmt.Errorf("encode loss: %w", err)
	}
	host, err := json.Marshal(r.Host)
	if err != nil {
		return "", fmt.Errorf("encode host: %w", err)
	}
	weights, err := json.Marshal(r.Weights)
	if err != nil {
		return "", fmt.Errorf("encode weights: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs(id, created_at, target, config, epochs, batch_size, samples, loss, host, weights) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.UnixNano(), string(r.Target), string(cfg), r.Epochs, r.BatchSize, r.Samples, string(loss), string(host), string(weights))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return r.ID, nil
}

// GetRun returns the run with id, weights included.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, target, config, epochs, batch_size, samples, loss, host, weights FROM runs WHERE id = ?`, id)
	var (
		r       Run
		weights string
	)
	err := scanRun(row, &r, &weights)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(weights), &r.Weights); err != nil {
		return Run{}, fmt.Errorf("decode weights for run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns up to limit runs, newest first, without weights.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, target, config, epochs, batch_size, samples, loss, host FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := scanRun(rows, &r, nil); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner, r *Run, weights *string) error {
	var (
		created int64
		kind    string
		cfg     string
		loss    string
		host    string
	)
	dest := []any{&r.ID, &created, &kind, &cfg, &r.Epochs, &r.BatchSize, &r.Samples, &loss, &host}
	if weights != nil {
		dest = append(dest, weights)
	}
	if err := sc.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("scan run: %w", err)
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	r.Target = target.Kind(kind)
	if err := json.Unmarshal([]byte(cfg), &r.Config); err != nil {
		return fmt.Errorf("decode config for run %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(loss), &r.Loss); err != nil {
		return fmt.Errorf("decode loss for run %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(host), &r.Host); err != nil {
		return fmt.Errorf("decode host for run %s: %w", r.ID, err)
	}
	return nil
}
