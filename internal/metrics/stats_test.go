package metrics

import (
	"math"
	"testing"
	"time"
)

func TestWindowSnapshot(t *testing.T) {
	var w Window
	w.Record(64, 20*time.Millisecond, 10*time.Millisecond, 1.2)
	w.Record(64, 10*time.Millisecond, 20*time.Millisecond, 0.8)
	snap := w.Snapshot()
	if math.Abs(snap.SamplesPerSec-2133.3333) > 1 {
		t.Fatalf("unexpected throughput %.2f", snap.SamplesPerSec)
	}
	if math.Abs(snap.AvgBuildMS-15) > 1e-9 || math.Abs(snap.AvgTrainMS-15) > 1e-9 {
		t.Fatalf("unexpected averages build=%.2f train=%.2f", snap.AvgBuildMS, snap.AvgTrainMS)
	}
	if math.Abs(snap.StdTrainMS-math.Sqrt(50)) > 1e-9 {
		t.Fatalf("unexpected train stddev %.4f", snap.StdTrainMS)
	}
	if snap.Runs != 2 || snap.LastLoss != 0.8 {
		t.Fatalf("unexpected runs=%d last loss=%.2f", snap.Runs, snap.LastLoss)
	}
}

func TestWindowKeepsMostRecentRuns(t *testing.T) {
	w := Window{Size: 2}
	w.Record(10, 0, 100*time.Millisecond, 3)
	w.Record(10, 0, 10*time.Millisecond, 2)
	w.Record(10, 0, 30*time.Millisecond, 1)
	snap := w.Snapshot()
	if snap.Runs != 3 {
		t.Fatalf("expected 3 runs recorded, got %d", snap.Runs)
	}
	if math.Abs(snap.AvgTrainMS-20) > 1e-9 {
		t.Fatalf("expected the oldest run to be dropped, avg=%.2f", snap.AvgTrainMS)
	}
}

func TestSingleRunHasNoSpread(t *testing.T) {
	var w Window
	w.Record(5, time.Millisecond, 4*time.Millisecond, 0.5)
	if snap := w.Snapshot(); snap.StdTrainMS != 0 {
		t.Fatalf("expected zero stddev, got %v", snap.StdTrainMS)
	}
}

func TestEmptyWindowSnapshot(t *testing.T) {
	var w Window
	if snap := w.Snapshot(); snap != (Snapshot{}) {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
}
