package eval

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/example/go-voice-eval/internal/audio"
	"github.com/example/go-voice-eval/internal/metrics"
)

// Evaluator resolves a model's synthetic outputs and scores each against one
// reference waveform.
type Evaluator struct {
	engine *metrics.Engine
}

func NewEvaluator(engine *metrics.Engine) *Evaluator {
	return &Evaluator{engine: engine}
}

// EvaluateModel scores every synthetic input of one model against the
// reference. Inputs that fail to resolve or load become failed pairs, never
// silent drops: successful + failed always equals the discovered input
// count. Pair failures are isolated; they abort neither sibling pairs nor
// the run.
func (ev *Evaluator) EvaluateModel(
	ctx context.Context,
	modelID string,
	reference *audio.Waveform,
	referencePath string,
	inputs []string,
) ModelReport {
	report := ModelReport{Model: modelID, Pairs: []PairEvaluation{}}

	files, unresolved := resolveInputs(inputs)
	for _, u := range unresolved {
		report.Pairs = append(report.Pairs, PairEvaluation{
			Reference: referencePath,
			Synthetic: u.path,
			Failed:    true,
			ErrorKind: KindAudioLoad,
			Error:     u.reason,
		})
		report.Failed++
	}

	for _, path := range files {
		pair := ev.evaluatePair(ctx, reference, referencePath, path)
		if pair.Failed {
			slog.Warn("pair evaluation failed",
				"model", modelID,
				"synthetic", path,
				"kind", pair.ErrorKind,
				"error", pair.Error,
			)
			report.Failed++
		} else {
			report.Successful++
		}
		report.Pairs = append(report.Pairs, pair)
	}

	report.Summaries = summarize(report.Pairs)
	return report
}

func (ev *Evaluator) evaluatePair(ctx context.Context, reference *audio.Waveform, referencePath, syntheticPath string) PairEvaluation {
	pair := PairEvaluation{Reference: referencePath, Synthetic: syntheticPath}

	synthetic, err := audio.Load(syntheticPath)
	if err != nil {
		pair.Failed = true
		pair.ErrorKind = classifyError(err)
		pair.Error = err.Error()
		return pair
	}

	results, err := ev.engine.Evaluate(ctx, reference, synthetic, referencePath)
	if err != nil {
		pair.Failed = true
		pair.ErrorKind = classifyError(err)
		pair.Error = err.Error()
		return pair
	}

	pair.Metrics = results
	return pair
}

type unresolvedInput struct {
	path   string
	reason string
}

// resolveInputs expands each entry into synthetic audio files. A directory
// contributes every audio file directly inside it (no recursion), sorted by
// name for deterministic evaluation order. Entries that cannot be resolved
// are reported rather than skipped.
func resolveInputs(inputs []string) ([]string, []unresolvedInput) {
	var files []string
	var unresolved []unresolvedInput

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			unresolved = append(unresolved, unresolvedInput{path: input, reason: "input not found: " + err.Error()})
			continue
		}

		if !info.IsDir() {
			files = append(files, input)
			continue
		}

		entries, err := os.ReadDir(input)
		if err != nil {
			unresolved = append(unresolved, unresolvedInput{path: input, reason: "read directory: " + err.Error()})
			continue
		}

		var found []string
		for _, entry := range entries {
			if entry.IsDir() || !audio.IsAudioFile(entry.Name()) {
				continue
			}
			found = append(found, filepath.Join(input, entry.Name()))
		}
		sort.Strings(found)
		files = append(files, found...)
	}

	return files, unresolved
}

// summarize computes per-metric mean/min/max over successful pairs only.
// Failed pairs stay visible through the pair list and counters but never
// bias the aggregates.
func summarize(pairs []PairEvaluation) map[string]Summary {
	sums := make(map[string]*Summary)
	for _, pair := range pairs {
		if pair.Failed {
			continue
		}
		for _, m := range pair.Metrics {
			s, ok := sums[m.Name]
			if !ok {
				s = &Summary{Min: m.Value, Max: m.Value}
				sums[m.Name] = s
			}
			if m.Value < s.Min {
				s.Min = m.Value
			}
			if m.Value > s.Max {
				s.Max = m.Value
			}
			s.Mean += m.Value
			s.Count++
		}
	}

	if len(sums) == 0 {
		return nil
	}
	out := make(map[string]Summary, len(sums))
	for name, s := range sums {
		s.Mean /= float64(s.Count)
		out[name] = *s
	}
	return out
}
