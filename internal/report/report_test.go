package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-voice-eval/internal/eval"
	"github.com/example/go-voice-eval/internal/metrics"
)

func sampleReport() *eval.ComparisonReport {
	return &eval.ComparisonReport{
		RunID:     "run-123",
		Reference: "ref.wav",
		Models: []eval.ModelReport{
			{
				Model:      "xtts",
				Successful: 2,
				Pairs: []eval.PairEvaluation{
					{
						Reference: "ref.wav",
						Synthetic: "a.wav",
						Metrics: []metrics.Result{
							{Name: metrics.SpeakerSimilarity, Value: 0.82, HigherBetter: true, Rating: metrics.RatingExcellent},
						},
					},
				},
				Summaries: map[string]eval.Summary{
					metrics.SpeakerSimilarity: {Mean: 0.82, Min: 0.80, Max: 0.84, Count: 2},
					metrics.MCD:               {Mean: 5.5, Min: 5.0, Max: 6.0, Count: 2},
				},
			},
			{Model: "broken/model"},
		},
		Rankings: []eval.Ranking{
			{Metric: metrics.SpeakerSimilarity, HigherBetter: true, BestModel: "xtts", Value: 0.82},
			{Metric: metrics.MCD, HigherBetter: false, BestModel: "xtts", Value: 5.5},
		},
	}
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	report := sampleReport()

	if err := WriteAll(dir, report); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	for _, name := range []string{"xtts_metrics.json", "broken_model_metrics.json", CSVName, FullName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}

	loaded, err := eval.ReadReport(filepath.Join(dir, FullName))
	if err != nil {
		t.Fatalf("read back full report: %v", err)
	}
	if loaded.RunID != report.RunID {
		t.Errorf("run ID = %s, want %s", loaded.RunID, report.RunID)
	}
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	if err := WriteCSV(dir, sampleReport()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, CSVName))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 models", len(rows))
	}

	wantHeader := append([]string{"model"}, metrics.Names()...)
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %s, want %s", i, rows[0][i], col)
		}
	}
	if rows[1][0] != "xtts" || rows[1][1] != "0.8200" {
		t.Errorf("xtts row = %v", rows[1])
	}
	// Model without data carries N/A cells for every metric.
	for i := 1; i < len(rows[2]); i++ {
		if rows[2][i] != naCell {
			t.Errorf("empty model cell[%d] = %s, want %s", i, rows[2][i], naCell)
		}
	}
}

func TestFormatTable(t *testing.T) {
	var sb strings.Builder
	FormatTable(sampleReport(), &sb)
	out := sb.String()

	for _, want := range []string{"xtts", "broken/model", "0.8200", naCell, "Best model per metric", "Interpretation"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatModel(t *testing.T) {
	t.Run("successful pairs show ratings and aggregates", func(t *testing.T) {
		var sb strings.Builder
		FormatModel(&sampleReport().Models[0], &sb)
		out := sb.String()

		for _, want := range []string{"a.wav", metrics.RatingExcellent, "mean=0.8200", "Interpretation"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("failed pair reports kind and message", func(t *testing.T) {
		model := &eval.ModelReport{
			Model:  "xtts",
			Failed: 1,
			Pairs: []eval.PairEvaluation{
				{Synthetic: "bad.wav", Failed: true, ErrorKind: eval.KindAudioLoad, Error: "no such file"},
			},
		}

		var sb strings.Builder
		FormatModel(model, &sb)
		out := sb.String()

		for _, want := range []string{"FAILED", eval.KindAudioLoad, "no such file", "1 pair(s) failed"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}

func TestSanitizeModelID(t *testing.T) {
	cases := map[string]string{
		"xtts":        "xtts",
		"my model:v2": "my_model_v2",
		"a/b\\c":      "a_b_c",
		"":            "model",
	}
	for in, want := range cases {
		if got := sanitizeModelID(in); got != want {
			t.Errorf("sanitizeModelID(%q) = %q, want %q", in, got, want)
		}
	}
}
