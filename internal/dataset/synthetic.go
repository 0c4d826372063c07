package dataset

import (
	"time"

	"golang.org/x/exp/rand"

	"mlp-playground/internal/target"
)

const (
	// DefaultSamples is used for ad-hoc generation when no count is given.
	DefaultSamples = 100
	// DefaultTrainSamples is the sample count drawn for a training run.
	DefaultTrainSamples = 200
)

// NewRand returns a generator seeded from seed, or from the clock when seed is 0.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

// Synthetic draws n uniform points from [0,1)² and labels them with kind.
// n <= 0 draws DefaultSamples. A nil rng uses a fresh clock-seeded generator.
func Synthetic(kind target.Kind, n int, rng *rand.Rand) Dataset {
	if n <= 0 {
		n = DefaultSamples
	}
	if rng == nil {
		rng = NewRand(0)
	}
	d := Dataset{
		Inputs:  make([][]float64, 0, n),
		Targets: make([][]float64, 0, n),
	}
	for i := 0; i < n; i++ {
		x := rng.Float64()
		y := rng.Float64()
		d.Inputs = append(d.Inputs, []float64{x, y})
		d.Targets = append(d.Targets, []float64{target.Value(x, y, kind)})
	}
	return d
}
