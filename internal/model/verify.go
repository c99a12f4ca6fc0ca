package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/example/go-voice-eval/internal/audio"
	"github.com/example/go-voice-eval/internal/encoder"
)

type VerifyOptions struct {
	ModelPath      string
	ORTLibraryPath string
	ORTAPIVersion  uint32
	InputName      string
	OutputName     string
	SampleRate     int
	Stdout         io.Writer
}

// embedSilence is swappable in tests to avoid a real ONNX Runtime.
var embedSilence = embedSilenceImpl

// Verify smoke-tests the speaker encoder: it loads the model, runs one
// second of silence through it and checks that a non-empty embedding comes
// back. This catches a missing runtime library, a corrupt model file, and
// wrong graph node names before a long comparison run does.
func Verify(ctx context.Context, opts VerifyOptions) error {
	if opts.ModelPath == "" {
		return errors.New("model path is required")
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}

	if _, err := os.Stat(opts.ModelPath); err != nil {
		return fmt.Errorf("stat model: %w", err)
	}

	sum, err := FileSHA256(opts.ModelPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(opts.Stdout, "model %s (sha256=%s)\n", opts.ModelPath, sum)

	dim, err := embedSilence(ctx, opts)
	if err != nil {
		return fmt.Errorf("encoder smoke run: %w", err)
	}

	fmt.Fprintf(opts.Stdout, "PASS embedding dim=%d\n", dim)
	return nil
}

func embedSilenceImpl(ctx context.Context, opts VerifyOptions) (int, error) {
	provider, err := encoder.New(encoder.Options{
		Backend:        encoder.BackendONNX,
		ModelPath:      opts.ModelPath,
		ORTLibraryPath: opts.ORTLibraryPath,
		ORTAPIVersion:  opts.ORTAPIVersion,
		InputName:      opts.InputName,
		OutputName:     opts.OutputName,
		SampleRate:     opts.SampleRate,
	})
	if err != nil {
		return 0, err
	}
	defer provider.Close()

	rate := provider.SampleRate()
	silence := &audio.Waveform{Samples: make([]float32, rate), SampleRate: rate}

	embedding, err := provider.Embed(ctx, silence)
	if err != nil {
		return 0, err
	}
	if len(embedding) == 0 {
		return 0, errors.New("encoder produced an empty embedding")
	}
	return len(embedding), nil
}
