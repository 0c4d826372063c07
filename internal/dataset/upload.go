package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
)

const maxLineBytes = 1 << 20

// Parse reads one record per line: comma separated numbers with the label in
// the last field. Trailing blank lines are ignored; any other malformed line
// fails the whole parse.
func Parse(r io.Reader) (Dataset, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Dataset{}, fmt.Errorf("read dataset: %w", err)
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return Dataset{}, fmt.Errorf("%w: no records", ErrMalformed)
	}

	d := Dataset{
		Inputs:  make([][]float64, 0, len(lines)),
		Targets: make([][]float64, 0, len(lines)),
	}
	for i, line := range lines {
		lineNo := i + 1
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			return Dataset{}, fmt.Errorf("%w: line %d: need at least 2 fields, got %d", ErrMalformed, lineNo, len(fields))
		}
		values := make([]float64, len(fields))
		for j, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return Dataset{}, fmt.Errorf("%w: line %d field %d: %q is not a number", ErrMalformed, lineNo, j+1, field)
			}
			values[j] = v
		}
		features := values[:len(values)-1]
		if len(d.Inputs) > 0 && len(features) != d.FeatureWidth() {
			return Dataset{}, fmt.Errorf("%w: line %d: %d features, previous lines have %d", ErrMalformed, lineNo, len(features), d.FeatureWidth())
		}
		d.Inputs = append(d.Inputs, features)
		d.Targets = append(d.Targets, []float64{values[len(values)-1]})
	}
	return d, nil
}

// LoadFile parses the dataset stored at path.
func LoadFile(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Dataset{}, fmt.Errorf("%w: file %s not found", ErrMalformed, path)
		}
		return Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	d, err := Parse(f)
	if err != nil {
		return Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
