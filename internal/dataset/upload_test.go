package dataset

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlp-playground/internal/apperr"
)

func TestParse(t *testing.T) {
	d, err := Parse(strings.NewReader("0.1,0.2,1\n0.3,0.4,0"))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.1, 0.2}, {0.3, 0.4}}, d.Inputs)
	assert.Equal(t, [][]float64{{1}, {0}}, d.Targets)
	require.NoError(t, d.Validate())
}

func TestParseTrailingBlankLinesAndCRLF(t *testing.T) {
	d, err := Parse(strings.NewReader("0.5, 0.25 ,1\r\n1,2,0\r\n\n  \n"))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.5, 0.25}, {1, 2}}, d.Inputs)
	assert.Equal(t, [][]float64{{1}, {0}}, d.Targets)
}

func TestParseSingleFeature(t *testing.T) {
	d, err := Parse(strings.NewReader("3,9\n4,16\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, d.FeatureWidth())
	assert.Equal(t, 1, d.TargetWidth())
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"single field":    "0.1,0.2,1\n0.7\n",
		"non numeric":     "0.1,abc,1\n",
		"blank in middle": "0.1,0.2,1\n\n0.3,0.4,0\n",
		"ragged widths":   "0.1,0.2,1\n0.3,0",
		"empty":           "\n\n",
		"empty field":     "0.1,,1\n",
		"nan":             "NaN,0.2,1\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			d, err := Parse(strings.NewReader(in))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.ErrorIs(t, err, apperr.ErrInput)
			assert.Zero(t, d.Len())
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	mustWrite(t, path, "0,0,0\n0,1,1\n1,0,1\n1,1,0\n")

	d, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Len())

	_, err = LoadFile(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, apperr.ErrInput)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Dataset{}.Validate(), ErrMalformed)
	assert.ErrorIs(t, Dataset{Inputs: [][]float64{{1}}, Targets: nil}.Validate(), ErrMalformed)
	assert.ErrorIs(t, Dataset{
		Inputs:  [][]float64{{1, 2}, {1}},
		Targets: [][]float64{{1}, {0}},
	}.Validate(), ErrMalformed)
	assert.ErrorIs(t, Dataset{
		Inputs:  [][]float64{{1, 2}, {1, 3}},
		Targets: [][]float64{{1}, {0, 1}},
	}.Validate(), ErrMalformed)
}
