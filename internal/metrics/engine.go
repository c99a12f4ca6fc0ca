package metrics

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/example/go-voice-eval/internal/audio"
	"github.com/example/go-voice-eval/internal/encoder"
)

// Engine scores a (reference, synthetic) waveform pair. One Engine instance
// serves a whole run so every pair goes through the same provider and the
// same embedding dimensionality.
type Engine struct {
	provider encoder.Provider
	cache    *encoder.Cache
}

// NewEngine wires a similarity engine to an embedding provider. cache may be
// nil to disable reference embedding reuse.
func NewEngine(provider encoder.Provider, cache *encoder.Cache) *Engine {
	return &Engine{provider: provider, cache: cache}
}

// Evaluate computes every metric for one pair. refKey identifies the
// reference waveform for embedding reuse across pairs (typically its path);
// pass "" to skip caching.
//
// The synthetic waveform is resampled to the reference rate before spectral
// analysis, never the reverse: the reference is the ground truth the user
// supplied. The metric is directional (reference → synthetic); swapping the
// arguments is not guaranteed to produce identical values.
func (e *Engine) Evaluate(ctx context.Context, reference, synthetic *audio.Waveform, refKey string) ([]Result, error) {
	if reference == nil || len(reference.Samples) == 0 {
		return nil, fmt.Errorf("%w: empty reference waveform", audio.ErrInvalid)
	}
	if synthetic == nil || len(synthetic.Samples) == 0 {
		return nil, fmt.Errorf("%w: empty synthetic waveform", audio.ErrInvalid)
	}

	aligned, err := audio.Resample(synthetic, reference.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("resample synthetic to %d Hz: %w", reference.SampleRate, err)
	}

	similarity, err := e.speakerSimilarity(ctx, reference, aligned, refKey)
	if err != nil {
		return nil, err
	}
	results := []Result{newResult(SpeakerSimilarity, similarity)}

	spectral, err := e.spectralMetrics(reference, aligned)
	if err != nil {
		return nil, err
	}
	results = append(results, spectral...)

	for _, r := range results {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			return nil, fmt.Errorf("metric %s produced a non-finite value", r.Name)
		}
	}
	return results, nil
}

func (e *Engine) speakerSimilarity(ctx context.Context, reference, synthetic *audio.Waveform, refKey string) (float64, error) {
	rate := e.provider.SampleRate()

	refAtRate, err := audio.Resample(reference, rate)
	if err != nil {
		return 0, fmt.Errorf("resample reference for encoder: %w", err)
	}
	synAtRate, err := audio.Resample(synthetic, rate)
	if err != nil {
		return 0, fmt.Errorf("resample synthetic for encoder: %w", err)
	}

	refEmbed, err := e.cache.Embed(ctx, e.provider, refKey, refAtRate)
	if err != nil {
		return 0, fmt.Errorf("reference embedding: %w", err)
	}
	synEmbed, err := e.provider.Embed(ctx, synAtRate)
	if err != nil {
		return 0, fmt.Errorf("synthetic embedding: %w", err)
	}

	similarity, err := cosineSimilarity(refEmbed, synEmbed)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", encoder.ErrExtraction, err)
	}

	// Voices are never meaningfully anti-correlated; clip the mildly
	// negative cosines that noise can produce to 0.
	if similarity < 0 {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}
	return similarity, nil
}

// spectralMetrics computes the mel-based metrics. Waveforms shorter than one
// analysis window carry no spectral frames, so the metrics are omitted for
// them rather than failing the pair.
func (e *Engine) spectralMetrics(reference, synthetic *audio.Waveform) ([]Result, error) {
	refMel, err := logMelSpectrogram(reference)
	if errors.Is(err, errTooShort) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reference mel spectrogram: %w", err)
	}

	synMel, err := logMelSpectrogram(synthetic)
	if errors.Is(err, errTooShort) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("synthetic mel spectrogram: %w", err)
	}

	mcd := melCepstralDistortion(cepstra(refMel), cepstra(synMel))
	correlation := melSpectrogramCorrelation(refMel, synMel)

	return []Result{
		newResult(MCD, mcd),
		newResult(MelCorrelation, correlation),
	}, nil
}
