package encoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	pockettts "github.com/cwbudde/go-call-pocket-tts"

	"github.com/example/go-voice-eval/internal/audio"
	"github.com/example/go-voice-eval/internal/safetensors"
)

// pocketTTSProvider extracts speaker embeddings by shelling out to the
// pocket-tts CLI export-voice command and reading back the exported
// .safetensors tensor. Per-frame conditioning vectors are mean-pooled into
// one utterance-level embedding.
type pocketTTSProvider struct {
	cliPath    string
	configPath string
	quiet      bool
	sampleRate int

	// exportVoice is swapped in tests to avoid requiring the CLI.
	exportVoice func(ctx context.Context, audioPath, outPath string, opts *pockettts.ExportVoiceOptions) error
}

func newPocketTTSProvider(opts Options) *pocketTTSProvider {
	return &pocketTTSProvider{
		cliPath:     opts.CLIPath,
		configPath:  opts.CLIConfigPath,
		quiet:       opts.Quiet,
		sampleRate:  opts.SampleRate,
		exportVoice: pockettts.ExportVoice,
	}
}

func (p *pocketTTSProvider) SampleRate() int { return p.sampleRate }

func (p *pocketTTSProvider) Embed(ctx context.Context, w *audio.Waveform) ([]float32, error) {
	if len(w.Samples) == 0 {
		return nil, fmt.Errorf("%w: empty waveform", ErrExtraction)
	}

	dir, err := os.MkdirTemp("", "voiceeval-embed-*")
	if err != nil {
		return nil, fmt.Errorf("%w: temp dir: %v", ErrExtraction, err)
	}
	defer os.RemoveAll(dir)

	wavPath := filepath.Join(dir, "prompt.wav")
	wavData, err := audio.EncodeWAV(w)
	if err != nil {
		return nil, fmt.Errorf("%w: encode prompt WAV: %v", ErrExtraction, err)
	}
	if err := os.WriteFile(wavPath, wavData, 0o644); err != nil {
		return nil, fmt.Errorf("%w: write prompt WAV: %v", ErrExtraction, err)
	}

	outPath := filepath.Join(dir, "voice.safetensors")
	err = p.exportVoice(ctx, wavPath, outPath, &pockettts.ExportVoiceOptions{
		Config:         p.configPath,
		Quiet:          p.quiet,
		ExecutablePath: p.cliPath,
		LogWriter:      os.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: pocket-tts export-voice: %v", ErrExtraction, err)
	}

	data, shape, err := safetensors.LoadEmbedding(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read exported embedding: %v", ErrExtraction, err)
	}

	embedding, err := poolEmbedding(data, shape)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return embedding, nil
}

func (p *pocketTTSProvider) Close() error { return nil }
