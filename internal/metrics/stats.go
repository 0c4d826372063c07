package metrics

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultWindowSize is the number of recent runs a zero Window keeps.
const DefaultWindowSize = 16

type runTiming struct {
	samples int
	buildMS float64
	trainMS float64
}

// Window keeps timing for the most recent training runs. The zero value is
// ready to use.
type Window struct {
	Size int

	recent   []runTiming
	total    int
	lastLoss float64
}

// Record adds one run. samples counts sample visits (records × epochs).
func (w *Window) Record(samples int, buildTime, trainTime time.Duration, loss float64) {
	size := w.Size
	if size <= 0 {
		size = DefaultWindowSize
	}
	w.recent = append(w.recent, runTiming{
		samples: samples,
		buildMS: float64(buildTime) / float64(time.Millisecond),
		trainMS: float64(trainTime) / float64(time.Millisecond),
	})
	if len(w.recent) > size {
		w.recent = w.recent[len(w.recent)-size:]
	}
	w.total++
	w.lastLoss = loss
}

// Snapshot aggregates the runs currently in the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{Runs: w.total, LastLoss: w.lastLoss}
	if len(w.recent) == 0 {
		return snap
	}
	build := make([]float64, len(w.recent))
	train := make([]float64, len(w.recent))
	samples, elapsedMS := 0, 0.0
	for i, r := range w.recent {
		build[i], train[i] = r.buildMS, r.trainMS
		samples += r.samples
		elapsedMS += r.buildMS + r.trainMS
	}
	if elapsedMS > 0 {
		snap.SamplesPerSec = float64(samples) / (elapsedMS / 1000)
	}
	snap.AvgBuildMS = stat.Mean(build, nil)
	snap.AvgTrainMS, snap.StdTrainMS = stat.MeanStdDev(train, nil)
	if len(train) < 2 {
		snap.StdTrainMS = 0
	}
	return snap
}

// Snapshot is the loggable view of a Window.
type Snapshot struct {
	Runs          int     `json:"runs"`
	SamplesPerSec float64 `json:"samples_per_sec"`
	AvgBuildMS    float64 `json:"avg_build_ms"`
	AvgTrainMS    float64 `json:"avg_train_ms"`
	StdTrainMS    float64 `json:"std_train_ms"`
	LastLoss      float64 `json:"last_loss"`
}
