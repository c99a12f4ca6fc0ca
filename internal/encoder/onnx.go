package encoder

import (
	"context"
	"errors"
	"fmt"

	ort "github.com/shota3506/onnxruntime-purego/onnxruntime"

	"github.com/example/go-voice-eval/internal/audio"
)

// Default graph node names for resemblyzer-style speaker encoder exports.
const (
	defaultInputName  = "audio"
	defaultOutputName = "embedding"
)

// onnxProvider runs a single-graph ONNX speaker encoder through ORT.
type onnxProvider struct {
	runtime    *ort.Runtime
	env        *ort.Env
	session    *ort.Session
	inputName  string
	outputName string
	sampleRate int
}

func newONNXProvider(opts Options) (*onnxProvider, error) {
	if opts.ModelPath == "" {
		return nil, errors.New("encoder model path is required for the onnx backend")
	}
	if opts.ORTAPIVersion == 0 {
		opts.ORTAPIVersion = 23
	}
	if opts.InputName == "" {
		opts.InputName = defaultInputName
	}
	if opts.OutputName == "" {
		opts.OutputName = defaultOutputName
	}

	runtime, err := ort.NewRuntime(opts.ORTLibraryPath, opts.ORTAPIVersion)
	if err != nil {
		return nil, fmt.Errorf("ort runtime: %w", err)
	}

	env, err := runtime.NewEnv("voiceeval-encoder", ort.LoggingLevelWarning)
	if err != nil {
		_ = runtime.Close()
		return nil, fmt.Errorf("ort env: %w", err)
	}

	session, err := runtime.NewSession(env, opts.ModelPath, nil)
	if err != nil {
		env.Close()
		_ = runtime.Close()
		return nil, fmt.Errorf("ort session for %q: %w", opts.ModelPath, err)
	}

	return &onnxProvider{
		runtime:    runtime,
		env:        env,
		session:    session,
		inputName:  opts.InputName,
		outputName: opts.OutputName,
		sampleRate: opts.SampleRate,
	}, nil
}

func (p *onnxProvider) SampleRate() int { return p.sampleRate }

func (p *onnxProvider) Embed(ctx context.Context, w *audio.Waveform) ([]float32, error) {
	if len(w.Samples) == 0 {
		return nil, fmt.Errorf("%w: empty waveform", ErrExtraction)
	}

	input, err := ort.NewTensorValue(p.runtime, w.Samples, []int64{1, int64(len(w.Samples))})
	if err != nil {
		return nil, fmt.Errorf("%w: build input tensor: %v", ErrExtraction, err)
	}
	defer input.Close()

	outputs, err := p.session.Run(ctx, map[string]*ort.Value{p.inputName: input})
	if err != nil {
		return nil, fmt.Errorf("%w: run encoder graph: %v", ErrExtraction, err)
	}
	defer func() {
		for _, v := range outputs {
			if v != nil {
				v.Close()
			}
		}
	}()

	out, ok := outputs[p.outputName]
	if !ok {
		return nil, fmt.Errorf("%w: output %q missing from encoder graph", ErrExtraction, p.outputName)
	}

	data, shape, err := ort.GetTensorData[float32](out)
	if err != nil {
		return nil, fmt.Errorf("%w: extract output tensor: %v", ErrExtraction, err)
	}

	embedding, err := poolEmbedding(data, shape)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return embedding, nil
}

func (p *onnxProvider) Close() error {
	if p.session != nil {
		p.session.Close()
		p.session = nil
	}
	if p.env != nil {
		p.env.Close()
		p.env = nil
	}
	if p.runtime != nil {
		err := p.runtime.Close()
		p.runtime = nil
		return err
	}
	return nil
}
