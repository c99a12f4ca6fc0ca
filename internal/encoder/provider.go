// Package encoder maps waveforms to fixed-length speaker embedding vectors.
//
// The embedding network itself is an external capability: the ONNX backend
// runs a pretrained speaker encoder graph, the pocket-tts backend shells out
// to the pocket-tts CLI. Both present the same Provider contract, so the
// similarity engine never knows which one is underneath.
package encoder

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/go-voice-eval/internal/audio"
)

// ErrExtraction marks an embedding extraction failure from the external
// provider. Pairs hitting it are recorded as failed, not dropped.
var ErrExtraction = errors.New("embedding extraction failed")

// DefaultSampleRate is the input rate speaker encoders are trained on.
const DefaultSampleRate = 16000

// Supported backend identifiers.
const (
	BackendONNX      = "onnx"
	BackendPocketTTS = "pocket-tts"
)

// Provider maps a waveform to a speaker embedding vector. One Provider
// instance serves a whole comparison run, which keeps the embedding
// dimensionality constant across every pair it touches.
type Provider interface {
	// Embed returns a fixed-length embedding for the waveform. The caller
	// keeps ownership of the waveform; implementations must not retain it.
	Embed(ctx context.Context, w *audio.Waveform) ([]float32, error)

	// SampleRate reports the input rate the provider expects. Callers
	// resample before Embed.
	SampleRate() int

	Close() error
}

// Options selects and configures a Provider backend.
type Options struct {
	Backend string

	// ONNX backend.
	ModelPath      string
	ORTLibraryPath string
	ORTAPIVersion  uint32
	InputName      string
	OutputName     string

	// pocket-tts CLI backend.
	CLIPath       string
	CLIConfigPath string
	Quiet         bool

	SampleRate int
}

// New constructs the Provider named by opts.Backend.
func New(opts Options) (Provider, error) {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}

	switch opts.Backend {
	case BackendONNX, "":
		return newONNXProvider(opts)
	case BackendPocketTTS:
		return newPocketTTSProvider(opts), nil
	default:
		return nil, fmt.Errorf("unknown encoder backend %q (want %s or %s)",
			opts.Backend, BackendONNX, BackendPocketTTS)
	}
}

// meanPool collapses a [T, D] frame sequence into a single D-length vector.
func meanPool(data []float32, frames, dim int) ([]float32, error) {
	if frames <= 0 || dim <= 0 || len(data) < frames*dim {
		return nil, fmt.Errorf("cannot pool %d values into %d frames of dim %d", len(data), frames, dim)
	}
	out := make([]float32, dim)
	for t := range frames {
		row := data[t*dim : (t+1)*dim]
		for i, v := range row {
			out[i] += v
		}
	}
	inv := 1 / float32(frames)
	for i := range out {
		out[i] *= inv
	}
	return out, nil
}

// poolEmbedding normalizes the raw tensor shapes providers emit ([D],
// [1, D], [T, D] or [1, T, D]) into a single fixed-length vector.
func poolEmbedding(data []float32, shape []int64) ([]float32, error) {
	switch len(shape) {
	case 1:
		return data, nil
	case 2:
		if shape[0] == 1 {
			return data, nil
		}
		return meanPool(data, int(shape[0]), int(shape[1]))
	case 3:
		if shape[0] != 1 {
			return nil, fmt.Errorf("embedding batch dim = %d, want 1", shape[0])
		}
		return meanPool(data, int(shape[1]), int(shape[2]))
	default:
		return nil, fmt.Errorf("unexpected embedding shape %v", shape)
	}
}
