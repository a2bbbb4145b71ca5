package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/faceverify/faceverify/internal/domain"
)

// Results maps dataset name to its latest evaluation
type Results map[string]domain.EvaluationResult

// LoadResults reads a results file. A missing file yields empty results.
func LoadResults(path string) (Results, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Results{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	results := Results{}
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse results %s: %w", path, err)
	}
	return results, nil
}

// SaveResults writes results as indented JSON, replacing the file atomically.
func SaveResults(path string, results Results) error {
	data, err := json.MarshalIndent(results, "", "    ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".results-*.json")
	if err != nil {
		return fmt.Errorf("create temp results: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close results: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace results: %w", err)
	}
	return nil
}

// MergeResult stores result under its dataset name, keeping other datasets.
func MergeResult(path string, result domain.EvaluationResult) error {
	results, err := LoadResults(path)
	if err != nil {
		return err
	}
	results[result.Dataset] = result
	return SaveResults(path, results)
}

// Datasets returns the dataset names in sorted order
func (r Results) Datasets() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteReport prints a human-readable summary of one result
func WriteReport(w io.Writer, r domain.EvaluationResult) error {
	_, err := fmt.Fprintf(w, `Results for %s
Total pairs:       %d
Evaluated pairs:   %d
Failed pairs:      %d
AUC:               %.4f
%s%s`,
		r.Dataset, r.TotalPairs, r.EvaluatedPairs, r.FailedPairs, r.AUC,
		formatThreshold("Optimal threshold", r.OptimalThreshold),
		formatThreshold("Default threshold", r.DefaultThreshold),
	)
	return err
}

func formatThreshold(title string, m domain.ThresholdMetrics) string {
	return fmt.Sprintf(`
%s (%.2f%%)
  Accuracy:   %.2f%%
  Precision:  %.2f%%
  Recall:     %.2f%%
  TAR:        %.2f%%
  FAR:        %.2f%%
  TP=%d FP=%d TN=%d FN=%d
`, title, m.Threshold, m.Accuracy, m.Precision, m.Recall, m.TAR, m.FAR, m.TP, m.FP, m.TN, m.FN)
}
