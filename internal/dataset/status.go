package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Status is what is on disk for one dataset
type Status struct {
	Name       string
	Dir        string
	Present    bool
	Files      int
	PairsFound bool
}

// Check walks the dataset directory and counts regular files
func Check(ds Dataset) (Status, error) {
	st := Status{Name: ds.Name, Dir: ds.Dir}

	info, err := os.Stat(ds.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("stat %s: %w", ds.Dir, err)
	}
	if !info.IsDir() {
		return st, fmt.Errorf("%s is not a directory", ds.Dir)
	}
	st.Present = true

	err = filepath.WalkDir(ds.Dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			st.Files++
		}
		return nil
	})
	if err != nil {
		return st, fmt.Errorf("walk %s: %w", ds.Dir, err)
	}

	if _, err := os.Stat(ds.PairsFile); err == nil {
		st.PairsFound = true
	}

	return st, nil
}

// ModelFile describes a model file on disk
type ModelFile struct {
	Path    string
	Present bool
	Size    int64
}

// CheckModel reports whether the model at path exists
func CheckModel(path string) (ModelFile, error) {
	m := ModelFile{Path: path}
	if path == "" {
		return m, nil
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("stat model: %w", err)
	}
	if info.IsDir() {
		return m, fmt.Errorf("model path %s is a directory", path)
	}

	m.Present = true
	m.Size = info.Size()
	return m, nil
}
