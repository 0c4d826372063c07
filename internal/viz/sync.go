// Package viz keeps the loss chart and the target/model surface chart in step
// with the session's network. Every refresh is a full recompute.
package viz

import (
	"encoding/json"
	"fmt"
	"sync"

	"mlp-playground/internal/metrics"
	"mlp-playground/internal/target"
)

// DefaultResolution is the number of grid samples along each axis.
const DefaultResolution = 30

const (
	TargetSeriesName = "Target Function"
	ModelSeriesName  = "Model Prediction"
)

// LossSeries binds loss values to 1-based epoch labels.
type LossSeries struct {
	Labels []int     `json:"labels"`
	Values []float64 `json:"values"`
}

// Point is one (x, y, z) sample. It encodes as a JSON triple.
type Point struct {
	X, Y, Z float64
}

// MarshalJSON implements json.Marshaler.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{p.X, p.Y, p.Z})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Point) UnmarshalJSON(b []byte) error {
	var v [3]float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	p.X, p.Y, p.Z = v[0], v[1], v[2]
	return nil
}

// SurfaceSeries is one named point cloud.
type SurfaceSeries struct {
	Name   string  `json:"name"`
	Points []Point `json:"data"`
}

// SurfaceGrid samples the unit square on a Resolution×Resolution grid.
type SurfaceGrid struct {
	Resolution int
	Target     []Point
	Model      []Point
}

// Series returns the target and model clouds in render order.
func (g SurfaceGrid) Series() []SurfaceSeries {
	return []SurfaceSeries{
		{Name: TargetSeriesName, Points: g.Target},
		{Name: ModelSeriesName, Points: g.Model},
	}
}

// LossSink receives the loss chart. CreateLoss is called once, ReplaceLoss
// for every later refresh.
type LossSink interface {
	CreateLoss(s LossSeries) error
	ReplaceLoss(s LossSeries) error
}

// SurfaceSink receives both surfaces on every refresh.
type SurfaceSink interface {
	RenderSurfaces(series []SurfaceSeries) error
}

// Predictor is the part of a session the surface refresh needs.
type Predictor interface {
	Active() bool
	// InputWidth is the width of the network's input layer.
	InputWidth() int
	Predict(input []float64) ([]float64, error)
}

// Sync pushes freshly computed chart data to the sinks.
type Sync struct {
	loss       LossSink
	surface    SurfaceSink
	resolution int

	mu          sync.Mutex
	lossCreated bool
}

// NewSync wires the sinks. A resolution below 2 uses DefaultResolution.
func NewSync(loss LossSink, surface SurfaceSink, resolution int) *Sync {
	if resolution < 2 {
		resolution = DefaultResolution
	}
	return &Sync{loss: loss, surface: surface, resolution: resolution}
}

// RefreshLoss replaces the loss chart's data with trace.
func (s *Sync) RefreshLoss(trace metrics.LossTrace) (LossSeries, error) {
	series := BuildLossSeries(trace)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loss == nil {
		return series, nil
	}
	if !s.lossCreated {
		if err := s.loss.CreateLoss(series); err != nil {
			return series, fmt.Errorf("create loss chart: %w", err)
		}
		s.lossCreated = true
		return series, nil
	}
	if err := s.loss.ReplaceLoss(series); err != nil {
		return series, fmt.Errorf("replace loss chart: %w", err)
	}
	return series, nil
}

// RefreshSurfaces recomputes the target and model surfaces for kind.
func (s *Sync) RefreshSurfaces(kind target.Kind, p Predictor) (SurfaceGrid, error) {
	grid, err := BuildSurfaceGrid(kind, p, s.resolution)
	if err != nil {
		return SurfaceGrid{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.surface == nil {
		return grid, nil
	}
	if err := s.surface.RenderSurfaces(grid.Series()); err != nil {
		return grid, fmt.Errorf("render surfaces: %w", err)
	}
	return grid, nil
}

// BuildLossSeries labels trace with epochs 1..len(trace).
func BuildLossSeries(trace metrics.LossTrace) LossSeries {
	s := LossSeries{
		Labels: make([]int, len(trace)),
		Values: append([]float64{}, trace...),
	}
	for i := range trace {
		s.Labels[i] = i + 1
	}
	return s
}

// BuildSurfaceGrid samples the target function and the predictor. Without an
// active network, or when the network does not take (x, y) inputs, every model
// point has z = 0.
func BuildSurfaceGrid(kind target.Kind, p Predictor, resolution int) (SurfaceGrid, error) {
	if resolution < 2 {
		return SurfaceGrid{}, fmt.Errorf("viz: resolution must be >= 2 (got %d)", resolution)
	}
	active := p != nil && p.Active() && p.InputWidth() == 2
	grid := SurfaceGrid{
		Resolution: resolution,
		Target:     make([]Point, 0, resolution*resolution),
		Model:      make([]Point, 0, resolution*resolution),
	}
	step := float64(resolution - 1)
	for i := 0; i < resolution; i++ {
		for j := 0; j < resolution; j++ {
			x := float64(i) / step
			y := float64(j) / step
			grid.Target = append(grid.Target, Point{X: x, Y: y, Z: target.Value(x, y, kind)})
			z := 0.0
			if active {
				out, err := p.Predict([]float64{x, y})
				if err != nil {
					return SurfaceGrid{}, fmt.Errorf("predict (%g,%g): %w", x, y, err)
				}
				if len(out) > 0 {
					z = out[0]
				}
			}
			grid.Model = append(grid.Model, Point{X: x, Y: y, Z: z})
		}
	}
	return grid, nil
}
