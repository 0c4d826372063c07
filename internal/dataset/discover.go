package dataset

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
)

var datasetRegexp = regexp.MustCompile(`(?i)^[^.].*\.(csv|txt)$`)

// Discover returns the paths of dataset files (.csv, .txt) beneath root, sorted.
func Discover(root string) ([]string, error) {
	entries := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if datasetRegexp.MatchString(d.Name()) {
			entries = append(entries, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover datasets: %w", err)
	}
	sort.Strings(entries)
	return entries, nil
}
