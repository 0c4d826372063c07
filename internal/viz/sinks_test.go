package viz

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlp-playground/internal/metrics"
	"mlp-playground/internal/target"
)

type failingSink struct{ err error }

func (f failingSink) CreateLoss(LossSeries) error          { return f.err }
func (f failingSink) ReplaceLoss(LossSeries) error         { return f.err }
func (f failingSink) RenderSurfaces([]SurfaceSeries) error { return f.err }

func TestLossChartConfig(t *testing.T) {
	c := LossChart(BuildLossSeries(metrics.LossTrace{0.5, 0.1}))
	b, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "line", decoded["type"])
	y := decoded["options"].(map[string]any)["scales"].(map[string]any)["y"].(map[string]any)
	assert.Equal(t, "logarithmic", y["type"])
	assert.Equal(t, 0.0001, y["min"])
	ds := decoded["data"].(map[string]any)["datasets"].([]any)[0].(map[string]any)
	assert.Equal(t, "#4285F4", ds["borderColor"])
}

func TestSurfacesChartColours(t *testing.T) {
	grid, err := BuildSurfaceGrid(target.XOR, nil, 3)
	require.NoError(t, err)
	c := SurfacesChart(grid.Series())
	require.Len(t, c.Series, 2)
	assert.Equal(t, "#34A853", c.Series[0].ItemStyle["color"])
	assert.Equal(t, "#4285F4", c.Series[1].ItemStyle["color"])
	for _, s := range c.Series {
		assert.Equal(t, "surface", s.Type)
		assert.Equal(t, "lambert", s.Shading)
		assert.Equal(t, 0.7, s.ItemStyle["opacity"])
	}
	assert.Equal(t, []string{TargetSeriesName, ModelSeriesName}, c.Legend["data"])
}

func TestJSONDirWritesChartFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	sink := JSONDir{Dir: dir}
	vs := NewSync(sink, sink, 4)

	_, err := vs.RefreshLoss(metrics.LossTrace{1, 0.5})
	require.NoError(t, err)
	_, err = vs.RefreshLoss(metrics.LossTrace{0.3})
	require.NoError(t, err)
	_, err = vs.RefreshSurfaces(target.XOR, nil)
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, LossFile))
	require.NoError(t, err)
	var loss LineChart
	require.NoError(t, json.Unmarshal(b, &loss))
	assert.Equal(t, []int{1}, loss.Data.Labels)

	b, err = os.ReadFile(filepath.Join(dir, SurfaceFile))
	require.NoError(t, err)
	var surface SurfaceChart
	require.NoError(t, json.Unmarshal(b, &surface))
	require.Len(t, surface.Series, 2)
	assert.Len(t, surface.Series[0].Data, 16)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestMultiJoinsErrors(t *testing.T) {
	mem := &Memory{}
	boom := errors.New("boom")
	m := Multi{
		Loss:     []LossSink{mem, failingSink{err: boom}},
		Surfaces: []SurfaceSink{failingSink{err: boom}, mem},
	}
	assert.ErrorIs(t, m.CreateLoss(LossSeries{}), boom)
	assert.ErrorIs(t, m.RenderSurfaces(nil), boom)

	created, _, rendered := mem.Counts()
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, rendered)
}

func TestRenderPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, Page{Title: "demo"}))
	out := buf.String()
	assert.Contains(t, out, "<title>demo</title>")
	assert.Contains(t, out, "let lossConfig")
	assert.NotContains(t, out, `"logarithmic"`)
	assert.NotContains(t, out, `id="train"`)

	buf.Reset()
	loss := BuildLossSeries(metrics.LossTrace{0.2})
	require.NoError(t, RenderPage(&buf, Page{
		Live:        true,
		Targets:     []string{"XOR", "SPIRAL"},
		Activations: []string{"SIGMOID"},
		Loss:        &loss,
	}))
	out = buf.String()
	assert.Contains(t, out, `id="train"`)
	assert.Contains(t, out, "<option>SPIRAL</option>")
	assert.Contains(t, out, `"logarithmic"`)
}

func TestHTMLPageSink(t *testing.T) {
	dir := t.TempDir()
	page := &HTMLPage{Dir: dir, Title: "run"}
	vs := NewSync(page, page, 3)

	_, err := vs.RefreshLoss(metrics.LossTrace{0.9, 0.4})
	require.NoError(t, err)
	_, err = vs.RefreshSurfaces(target.Spiral, nil)
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, PageFile))
	require.NoError(t, err)
	out := string(b)
	assert.True(t, strings.Contains(out, TargetSeriesName))
	assert.Contains(t, out, `"surface"`)
	assert.Contains(t, out, `"labels":[1,2]`)
}
