package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mlp-playground/internal/config"
	"mlp-playground/internal/dataset"
	"mlp-playground/internal/metrics"
	"mlp-playground/internal/model"
	"mlp-playground/internal/persist"
	"mlp-playground/internal/playground"
	"mlp-playground/internal/server"
	"mlp-playground/internal/store"
	"mlp-playground/internal/target"
	"mlp-playground/internal/trainer"
	"mlp-playground/internal/viz"
)

func main() {
	cfgPath := flag.String("config", "configs/demo.yaml", "Path to YAML config (empty for built-in defaults)")
	arch := flag.String("arch", "", "Override architecture, e.g. 2,8,1")
	activation := flag.String("activation", "", "Override activation (SIGMOID, RELU, TANH)")
	learningRate := flag.Float64("lr", 0, "Override learning rate (only when set)")
	momentum := flag.Float64("momentum", 0, "Override momentum (only when set, 0 disables momentum)")
	epochs := flag.Int("epochs", 0, "Override number of epochs")
	batchSize := flag.Int("batch-size", 0, "Override batch size")
	targetName := flag.String("target", "", "Override target function")
	samples := flag.Int("samples", 0, "Synthetic sample count")
	seed := flag.Uint64("seed", 0, "PRNG seed (0 for time based)")
	datasetPath := flag.String("dataset", "", "CSV dataset to train on instead of synthetic samples")
	outputDir := flag.String("out", "", "Directory for chart JSON and the HTML page")
	weightsOut := flag.String("save", "", "Write trained weights to this path")
	weightsIn := flag.String("load", "", "Load weights into the trained network from this path")
	dbPath := flag.String("db", "", "sqlite run history path")
	runID := flag.String("run", "", "Restore a stored run instead of training")
	listRuns := flag.Bool("list-runs", false, "List stored runs and exit")
	serve := flag.Bool("serve", false, "Serve the playground over HTTP")
	listen := flag.String("listen", "", "Override listen address")

	flag.Parse()

	var lrOverride, momentumOverride *float64
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lr":
			lrOverride = learningRate
		case "momentum":
			momentumOverride = momentum
		}
	})

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	cfg.ApplyOverrides(config.Overrides{
		Architecture: *arch,
		Activation:   *activation,
		LearningRate: lrOverride,
		Momentum:     momentumOverride,
		Epochs:       *epochs,
		BatchSize:    *batchSize,
		Target:       *targetName,
		Samples:      *samples,
		Seed:         *seed,
		DatasetPath:  *datasetPath,
		OutputDir:    *outputDir,
		WeightsOut:   *weightsOut,
		WeightsIn:    *weightsIn,
		DBPath:       *dbPath,
		Listen:       *listen,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("host %s", metrics.CurrentHost())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runs playground.RunStore
	if cfg.DBPath != "" {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			log.Fatalf("open run store: %v", err)
		}
		defer st.Close()
		runs = st
	}

	mem := &viz.Memory{}
	sinks := viz.Multi{Loss: []viz.LossSink{mem}, Surfaces: []viz.SurfaceSink{mem}}
	if cfg.OutputDir != "" {
		page := &viz.HTMLPage{Dir: cfg.OutputDir}
		jsonDir := viz.JSONDir{Dir: cfg.OutputDir}
		sinks.Loss = append(sinks.Loss, jsonDir, page)
		sinks.Surfaces = append(sinks.Surfaces, jsonDir, page)
	}

	session := trainer.NewSession(ctx, trainer.Static(model.BuildMLP))
	pg := playground.New(session, viz.NewSync(sinks, sinks, cfg.Resolution), runs, dataset.NewRand(cfg.Seed))

	switch {
	case *listRuns:
		if err := printRuns(ctx, pg); err != nil {
			log.Fatalf("list runs: %v", err)
		}
	case *serve:
		if err := serveHTTP(ctx, cfg, pg, mem); err != nil {
			log.Fatalf("serve: %v", err)
		}
	default:
		if err := runOnce(ctx, cfg, pg, *runID); err != nil {
			log.Fatalf("run failed: %v", err)
		}
	}
}

func runOnce(ctx context.Context, cfg *config.Config, pg *playground.Playground, runID string) error {
	kind := target.ParseKind(cfg.Target)
	if runID != "" {
		run, err := pg.LoadRun(ctx, runID, kind)
		if err != nil {
			return err
		}
		log.Printf("restored run=%s arch=%s epochs=%d final_loss=%.6f", run.ID, run.Config.Architecture, run.Epochs, run.Loss.Final())
	} else {
		params := playground.Params{
			Architecture: cfg.Architecture,
			Activation:   cfg.Activation,
			LearningRate: cfg.LearningRate,
			Momentum:     cfg.Momentum,
			Epochs:       cfg.Epochs,
			BatchSize:    cfg.BatchSize,
			Target:       cfg.Target,
			Samples:      cfg.Samples,
			Seed:         cfg.Seed,
		}
		if cfg.DatasetPath != "" {
			data, err := os.ReadFile(cfg.DatasetPath)
			if err != nil {
				return err
			}
			params.Dataset = string(data)
		}
		out, err := pg.Train(ctx, params)
		if err != nil {
			return err
		}
		log.Printf("trained run=%s samples=%d epochs=%d first_loss=%.6f final_loss=%.6f min_epoch=%d",
			out.RunID, out.Samples, out.Summary.Epochs, out.Summary.First, out.Summary.Final, out.Summary.MinEpoch)
	}

	if cfg.WeightsIn != "" {
		data, err := os.ReadFile(cfg.WeightsIn)
		if err != nil {
			return err
		}
		if err := pg.Load(data, kind); err != nil {
			return err
		}
		log.Printf("loaded weights path=%s", cfg.WeightsIn)
	}
	if cfg.WeightsOut != "" {
		path, err := persist.SaveFile(cfg.WeightsOut, pg.Session)
		if err != nil {
			return err
		}
		log.Printf("saved weights path=%s", path)
	}
	return nil
}

func printRuns(ctx context.Context, pg *playground.Playground) error {
	runs, err := pg.Runs(ctx, 0)
	if err != nil {
		return err
	}
	for _, r := range runs {
		log.Printf("run=%s created=%s target=%s arch=%s activation=%s epochs=%d final_loss=%.6f %s",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.Target, r.Config.Architecture, r.Config.Activation, r.Epochs, r.Loss.Final(), r.Host)
	}
	return nil
}

func serveHTTP(ctx context.Context, cfg *config.Config, pg *playground.Playground, mem *viz.Memory) error {
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(pg, mem, cfg.DatasetDir),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening addr=%s", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
