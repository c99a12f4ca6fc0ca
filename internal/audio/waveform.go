// Package audio loads audio files into normalized in-memory waveforms and
// provides the sample-rate conversion every downstream metric depends on.
package audio

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two load-time failure classes. Callers classify
// failed pairs with errors.Is against these.
var (
	// ErrLoad marks a file that is missing, unreadable, or in an
	// unsupported container format.
	ErrLoad = errors.New("audio load failed")

	// ErrInvalid marks a file that decoded but yielded a degenerate
	// waveform (zero samples or a non-positive sample rate).
	ErrInvalid = errors.New("invalid audio")
)

// Waveform is a mono PCM signal. Immutable once loaded: no function in this
// package mutates Samples in place.
type Waveform struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the playback length in seconds.
func (w *Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

func (w *Waveform) validate() error {
	if w.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalid, w.SampleRate)
	}
	if len(w.Samples) == 0 {
		return fmt.Errorf("%w: no samples", ErrInvalid)
	}
	return nil
}

// Resample converts w to the target rate using linear interpolation and
// returns a new waveform. The input is returned unchanged when the rates
// already match.
func Resample(w *Waveform, rate int) (*Waveform, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	if rate <= 0 {
		return nil, fmt.Errorf("invalid target rate: %d", rate)
	}
	if w.SampleRate == rate {
		return w, nil
	}

	ratio := float64(w.SampleRate) / float64(rate)
	n := int(float64(len(w.Samples)) / ratio)
	if n < 1 {
		n = 1
	}

	out := make([]float32, n)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(w.Samples)-1 {
			out[i] = w.Samples[len(w.Samples)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = w.Samples[idx]*(1-frac) + w.Samples[idx+1]*frac
	}

	return &Waveform{Samples: out, SampleRate: rate}, nil
}

// downmix averages interleaved multi-channel samples into mono.
func downmix(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}
	frames := len(samples) / channels
	out := make([]float32, frames)
	for i := range frames {
		var sum float32
		for c := range channels {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}
