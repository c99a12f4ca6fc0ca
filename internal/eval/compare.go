package eval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/go-voice-eval/internal/audio"
	"github.com/example/go-voice-eval/internal/metrics"
)

// ModelSpec names one candidate model and its synthetic outputs (audio files
// or directories of audio files).
type ModelSpec struct {
	ID     string
	Inputs []string
}

// Compare evaluates every candidate model against the reference audio and
// ranks them per metric. Model order in the report follows the caller's
// order. Only structural problems are fatal: an unloadable reference, zero
// models, or zero successful pairs across every model. A model failing in
// isolation stays in the report with its failures recorded.
func Compare(ctx context.Context, engine *metrics.Engine, referencePath string, specs []ModelSpec) (*ComparisonReport, error) {
	if len(specs) == 0 {
		return nil, errors.New("no models supplied for comparison")
	}

	reference, err := audio.Load(referencePath)
	if err != nil {
		return nil, fmt.Errorf("load reference audio: %w", err)
	}

	evaluator := NewEvaluator(engine)
	report := &ComparisonReport{
		RunID:       uuid.NewString(),
		Reference:   referencePath,
		GeneratedAt: time.Now().UTC(),
	}

	anyValid := false
	for _, spec := range specs {
		slog.Info("evaluating model", "model", spec.ID, "inputs", len(spec.Inputs))
		modelReport := evaluator.EvaluateModel(ctx, spec.ID, reference, referencePath, spec.Inputs)
		if modelReport.HasData() {
			anyValid = true
		}
		report.Models = append(report.Models, modelReport)
	}

	if !anyValid {
		return nil, fmt.Errorf("%w (reference %s, %d models)", ErrNoValidPairs, referencePath, len(specs))
	}

	report.Rankings = rankModels(report.Models)
	return report, nil
}

// rankModels selects the best model per metric among models with data for
// that metric. Direction comes from the metric's declaration; ties keep the
// model supplied first.
func rankModels(models []ModelReport) []Ranking {
	var rankings []Ranking
	for _, name := range metrics.Names() {
		higher := metrics.HigherIsBetter(name)

		var best *ModelReport
		var bestValue float64
		for i := range models {
			summary, ok := models[i].Summary(name)
			if !ok || summary.Count == 0 {
				continue
			}
			if best == nil || better(summary.Mean, bestValue, higher) {
				best = &models[i]
				bestValue = summary.Mean
			}
		}
		if best == nil {
			continue
		}

		rankings = append(rankings, Ranking{
			Metric:       name,
			HigherBetter: higher,
			BestModel:    best.Model,
			Value:        bestValue,
		})
	}
	return rankings
}

// better reports whether candidate strictly beats incumbent in the given
// direction. Strict comparison implements the first-supplied-wins tie-break.
func better(candidate, incumbent float64, higher bool) bool {
	if higher {
		return candidate > incumbent
	}
	return candidate < incumbent
}
