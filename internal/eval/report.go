// Package eval turns (reference, synthetic) audio pairs into per-model
// reports and ranks candidate models against each other.
package eval

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/example/go-voice-eval/internal/audio"
	"github.com/example/go-voice-eval/internal/encoder"
	"github.com/example/go-voice-eval/internal/metrics"
)

// ErrNoValidPairs is returned when a comparison produced no successful pair
// across every model, so no ranking can be computed.
var ErrNoValidPairs = errors.New("no model produced a valid evaluation pair")

// Failure kinds recorded on failed pairs. Stable strings so serialized
// reports stay readable across versions.
const (
	KindAudioLoad           = "audio_load"
	KindInvalidAudio        = "invalid_audio"
	KindEmbeddingExtraction = "embedding_extraction"
	KindInternal            = "internal"
)

// classifyError maps a pair failure to its report kind.
func classifyError(err error) string {
	switch {
	case errors.Is(err, audio.ErrInvalid):
		return KindInvalidAudio
	case errors.Is(err, audio.ErrLoad):
		return KindAudioLoad
	case errors.Is(err, encoder.ErrExtraction):
		return KindEmbeddingExtraction
	default:
		return KindInternal
	}
}

// PairEvaluation is one (reference, synthetic) comparison. Either Metrics is
// populated, or Failed is set with the error kind and message. Immutable
// once computed.
type PairEvaluation struct {
	Reference string           `json:"reference"`
	Synthetic string           `json:"synthetic"`
	Metrics   []metrics.Result `json:"metrics,omitempty"`
	Failed    bool             `json:"failed,omitempty"`
	ErrorKind string           `json:"error_kind,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Summary aggregates one metric across the successful pairs of a model.
type Summary struct {
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// ModelReport aggregates every pair evaluated for one candidate model.
type ModelReport struct {
	Model      string             `json:"model"`
	Pairs      []PairEvaluation   `json:"pairs"`
	Summaries  map[string]Summary `json:"summaries,omitempty"`
	Successful int                `json:"successful_pairs"`
	Failed     int                `json:"failed_pairs"`
}

// HasData reports whether at least one pair succeeded. A report without
// data carries no summaries and is excluded from every ranking.
func (r *ModelReport) HasData() bool { return r.Successful > 0 }

// Discovered returns the number of synthetic inputs found for the model.
func (r *ModelReport) Discovered() int { return r.Successful + r.Failed }

// Summary returns the aggregate for one metric, if any successful pair
// produced it.
func (r *ModelReport) Summary(metric string) (Summary, bool) {
	s, ok := r.Summaries[metric]
	return s, ok
}

// Ranking names the best model for one metric, in the metric's declared
// direction.
type Ranking struct {
	Metric       string  `json:"metric"`
	HigherBetter bool    `json:"higher_better"`
	BestModel    string  `json:"best_model"`
	Value        float64 `json:"value"`
}

// ComparisonReport is the terminal artifact of a comparison run: every pair,
// every model, and the per-metric rankings.
type ComparisonReport struct {
	RunID       string        `json:"run_id"`
	Reference   string        `json:"reference"`
	GeneratedAt time.Time     `json:"generated_at"`
	Models      []ModelReport `json:"models"`
	Rankings    []Ranking     `json:"rankings"`
}

// Model returns the report for the named model, if present.
func (r *ComparisonReport) Model(id string) (*ModelReport, bool) {
	for i := range r.Models {
		if r.Models[i].Model == id {
			return &r.Models[i], true
		}
	}
	return nil, false
}

// WriteFile serializes the full report as indented JSON.
func (r *ComparisonReport) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode comparison report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write comparison report: %w", err)
	}
	return nil
}

// ReadReport loads a serialized ComparisonReport. Values and rankings
// round-trip bit-identically through WriteFile/ReadReport.
func ReadReport(path string) (*ComparisonReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read comparison report: %w", err)
	}
	var report ComparisonReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode comparison report: %w", err)
	}
	return &report, nil
}
