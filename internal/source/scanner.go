package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir walks dir and discovers meter export files (.jsonl and .csv).
// A missing directory yields no files and no error.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		df, ok := Discover(dir)
		if !ok {
			return nil, nil
		}
		return []DiscoveredFile{df}, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			return nil
		}
		if df, ok := Discover(path); ok {
			files = append(files, df)
		}
		return nil
	})

	// Exports are usually named by date, so path order is reading order.
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// Discover classifies a single path by its extension.
func Discover(path string) (DiscoveredFile, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return DiscoveredFile{Path: path, Format: FormatJSONL}, true
	case ".csv":
		return DiscoveredFile{Path: path, Format: FormatCSV}, true
	}
	return DiscoveredFile{}, false
}
