package viz

// Colours follow the Google palette used by the page.
const (
	lossColor   = "#4285F4"
	targetColor = "#34A853"
	modelColor  = "#4285F4"
)

// LineChart is a Chart.js configuration for the loss curve.
type LineChart struct {
	Type    string         `json:"type"`
	Data    LineData       `json:"data"`
	Options map[string]any `json:"options"`
}

// LineData is the data block of a Chart.js line chart.
type LineData struct {
	Labels   []int         `json:"labels"`
	Datasets []LineDataset `json:"datasets"`
}

// LineDataset is one Chart.js line.
type LineDataset struct {
	Label       string    `json:"label"`
	Data        []float64 `json:"data"`
	BorderColor string    `json:"borderColor"`
	Fill        bool      `json:"fill"`
	Tension     float64   `json:"tension"`
}

// LossChart builds the Chart.js configuration for s on a logarithmic loss axis.
func LossChart(s LossSeries) LineChart {
	return LineChart{
		Type: "line",
		Data: LineData{
			Labels: s.Labels,
			Datasets: []LineDataset{{
				Label:       "Loss",
				Data:        s.Values,
				BorderColor: lossColor,
				Tension:     0.2,
			}},
		},
		Options: map[string]any{
			"animation": false,
			"scales": map[string]any{
				"x": map[string]any{"title": map[string]any{"display": true, "text": "Epoch"}},
				"y": map[string]any{
					"type":  "logarithmic",
					"title": map[string]any{"display": true, "text": "Loss (Log Scale)"},
					"min":   0.0001,
				},
			},
		},
	}
}

// SurfaceChart is an ECharts GL option with two surfaces.
type SurfaceChart struct {
	Tooltip struct{}         `json:"tooltip"`
	XAxis3D Axis3D           `json:"xAxis3D"`
	YAxis3D Axis3D           `json:"yAxis3D"`
	ZAxis3D Axis3D           `json:"zAxis3D"`
	Grid3D  map[string]any   `json:"grid3D"`
	Legend  map[string]any   `json:"legend"`
	Series  []SurfaceOptions `json:"series"`
}

// Axis3D names one ECharts GL axis.
type Axis3D struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// SurfaceOptions is one ECharts GL surface series.
type SurfaceOptions struct {
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Data      []Point        `json:"data"`
	Shading   string         `json:"shading"`
	ItemStyle map[string]any `json:"itemStyle"`
	Label     map[string]any `json:"label"`
}

// SurfacesChart builds the ECharts option for the target and model surfaces.
func SurfacesChart(series []SurfaceSeries) SurfaceChart {
	c := SurfaceChart{
		XAxis3D: Axis3D{Type: "value", Name: "Input X"},
		YAxis3D: Axis3D{Type: "value", Name: "Input Y"},
		ZAxis3D: Axis3D{Type: "value", Name: "Output"},
		Grid3D:  map[string]any{"viewControl": map[string]any{"projection": "perspective"}},
		Legend:  map[string]any{"data": seriesNames(series)},
		Series:  make([]SurfaceOptions, 0, len(series)),
	}
	for _, s := range series {
		color := modelColor
		if s.Name == TargetSeriesName {
			color = targetColor
		}
		c.Series = append(c.Series, SurfaceOptions{
			Name:      s.Name,
			Type:      "surface",
			Data:      s.Points,
			Shading:   "lambert",
			ItemStyle: map[string]any{"opacity": 0.7, "color": color},
			Label:     map[string]any{"show": false},
		})
	}
	return c
}

func seriesNames(series []SurfaceSeries) []string {
	names := make([]string, len(series))
	for i, s := range series {
		names[i] = s.Name
	}
	return names
}
