// Package report persists and formats comparison results: per-model JSON
// records, a flat CSV for spreadsheets, the combined archival JSON, and the
// human-readable console views.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/go-voice-eval/internal/eval"
	"github.com/example/go-voice-eval/internal/metrics"
)

// File names emitted under the output directory.
const (
	CSVName  = "comparison.csv"
	FullName = "comparison_full.json"
)

const naCell = "N/A"

// WriteAll persists every view of the comparison under dir: one
// <model>_metrics.json per model, comparison.csv, and comparison_full.json.
func WriteAll(dir string, report *eval.ComparisonReport) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for i := range report.Models {
		if _, err := WriteModelJSON(dir, &report.Models[i]); err != nil {
			return err
		}
	}
	if err := WriteCSV(dir, report); err != nil {
		return err
	}
	return report.WriteFile(filepath.Join(dir, FullName))
}

// WriteModelJSON writes one model's pairs and aggregates as indented JSON
// and returns the file path.
func WriteModelJSON(dir string, model *eval.ModelReport) (string, error) {
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode model report %s: %w", model.Model, err)
	}

	path := filepath.Join(dir, sanitizeModelID(model.Model)+"_metrics.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write model report: %w", err)
	}
	return path, nil
}

// WriteCSV writes the flat comparison table: one row per model, one column
// per metric mean. Models without data carry N/A cells.
func WriteCSV(dir string, report *eval.ComparisonReport) error {
	f, err := os.Create(filepath.Join(dir, CSVName))
	if err != nil {
		return fmt.Errorf("create %s: %w", CSVName, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"model"}, metrics.Names()...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for i := range report.Models {
		model := &report.Models[i]
		row := []string{model.Model}
		for _, name := range metrics.Names() {
			if summary, ok := model.Summary(name); ok {
				row = append(row, strconv.FormatFloat(summary.Mean, 'f', 4, 64))
			} else {
				row = append(row, naCell)
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write CSV row for %s: %w", model.Model, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", CSVName, err)
	}
	return nil
}

// sanitizeModelID makes a model identifier safe as a file name stem.
func sanitizeModelID(id string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")
	out := replacer.Replace(id)
	if out == "" {
		return "model"
	}
	return out
}
