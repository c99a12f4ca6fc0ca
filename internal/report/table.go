package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/example/go-voice-eval/internal/eval"
	"github.com/example/go-voice-eval/internal/metrics"
)

// FormatTable writes a human-readable ASCII comparison table to w: one row
// per model, one column per metric mean, followed by a best-model summary
// and the threshold legend.
func FormatTable(report *eval.ComparisonReport, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "Reference: %s\n", report.Reference)
	fmt.Fprintf(sb, "Run:       %s\n\n", report.RunID)

	fmt.Fprintf(sb, "%-20s", "Model")
	for _, name := range metrics.Names() {
		fmt.Fprintf(sb, "  %18s", name)
	}
	fmt.Fprintf(sb, "  %6s\n", "pairs")
	fmt.Fprintln(sb, strings.Repeat("-", 20+len(metrics.Names())*20+8))

	for i := range report.Models {
		model := &report.Models[i]
		fmt.Fprintf(sb, "%-20s", model.Model)
		for _, name := range metrics.Names() {
			if summary, ok := model.Summary(name); ok {
				fmt.Fprintf(sb, "  %18.4f", summary.Mean)
			} else {
				fmt.Fprintf(sb, "  %18s", naCell)
			}
		}
		fmt.Fprintf(sb, "  %6d\n", model.Successful)
	}

	if len(report.Rankings) > 0 {
		fmt.Fprintln(sb)
		FormatBest(report, sb)
	}

	fmt.Fprintln(sb)
	formatLegend(sb)

	fmt.Fprint(w, sb.String())
}

// FormatBest writes the per-metric winners to w.
func FormatBest(report *eval.ComparisonReport, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintln(sb, "Best model per metric:")
	for _, r := range report.Rankings {
		direction := "higher is better"
		if !r.HigherBetter {
			direction = "lower is better"
		}
		fmt.Fprintf(sb, "  %-20s %-16s %10.4f  (%s)\n", r.Metric, r.BestModel, r.Value, direction)
	}

	fmt.Fprint(w, sb.String())
}

// FormatModel writes the per-pair detail of a single model evaluation to w,
// used by the evaluate command where only one model is scored.
func FormatModel(model *eval.ModelReport, w io.Writer) {
	sb := &strings.Builder{}

	for i := range model.Pairs {
		pair := &model.Pairs[i]
		fmt.Fprintf(sb, "%s\n", pair.Synthetic)
		if pair.Failed {
			fmt.Fprintf(sb, "  FAILED (%s): %s\n", pair.ErrorKind, pair.Error)
			continue
		}
		for _, m := range pair.Metrics {
			fmt.Fprintf(sb, "  %-20s %10.4f  [%s]\n", m.Name, m.Value, m.Rating)
		}
	}

	if model.HasData() {
		fmt.Fprintln(sb)
		fmt.Fprintf(sb, "Aggregates over %d successful pair(s):\n", model.Successful)
		for _, name := range metrics.Names() {
			if summary, ok := model.Summary(name); ok {
				fmt.Fprintf(sb, "  %-20s mean=%.4f  min=%.4f  max=%.4f\n",
					name, summary.Mean, summary.Min, summary.Max)
			}
		}
	}
	if model.Failed > 0 {
		fmt.Fprintf(sb, "%d pair(s) failed.\n", model.Failed)
	}

	fmt.Fprintln(sb)
	formatLegend(sb)

	fmt.Fprint(w, sb.String())
}

// formatLegend writes the rating threshold interpretation guide.
func formatLegend(w io.Writer) {
	fmt.Fprintln(w, "Interpretation:")
	fmt.Fprintf(w, "  %-20s excellent >= 0.80, good >= 0.70, fair >= 0.60, else poor\n", metrics.SpeakerSimilarity)
	fmt.Fprintf(w, "  %-20s excellent <= 6 dB, good <= 8 dB, fair <= 10 dB, else poor\n", metrics.MCD)
	fmt.Fprintf(w, "  %-20s excellent >= 0.90, good >= 0.85, fair >= 0.75, else poor\n", metrics.MelCorrelation)
}
