// Package synth drives external TTS engines to produce synthetic audio for
// evaluation. Engines are external command-line programs; each registered
// engine describes how to map a synthesis request onto its argument list.
package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Request describes one synthesis job.
type Request struct {
	Text          string
	Language      string
	ReferencePath string
	OutputPath    string
}

// Synthesizer produces a synthetic audio file from a request.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) error
}

// Options configures a CLI-backed synthesizer.
type Options struct {
	// Engine selects the argument mapping: "xtts", "yourtts" or "gpt-sovits".
	Engine string
	// ExecutablePath overrides the engine's default binary name.
	ExecutablePath string
	// ExtraArgs are appended verbatim after the mapped arguments.
	ExtraArgs []string
	// Quiet suppresses the engine's stderr.
	Quiet bool
}

// argMapper builds the command line for one engine family.
type argMapper struct {
	defaultExe string
	build      func(req Request) []string
}

var engines = map[string]argMapper{
	"xtts": {
		defaultExe: "xtts",
		build: func(req Request) []string {
			args := []string{"--text", req.Text, "--speaker_wav", req.ReferencePath, "--out_path", req.OutputPath}
			if req.Language != "" {
				args = append(args, "--language_idx", req.Language)
			}
			return args
		},
	},
	"yourtts": {
		defaultExe: "yourtts",
		build: func(req Request) []string {
			args := []string{"--text", req.Text, "--reference", req.ReferencePath, "--output", req.OutputPath}
			if req.Language != "" {
				args = append(args, "--lang", req.Language)
			}
			return args
		},
	},
	"gpt-sovits": {
		defaultExe: "gpt-sovits",
		build: func(req Request) []string {
			args := []string{"--ref_audio", req.ReferencePath, "--text", req.Text, "--output", req.OutputPath}
			if req.Language != "" {
				args = append(args, "--text_lang", req.Language)
			}
			return args
		},
	},
}

// Engines lists the registered engine names, sorted.
func Engines() []string {
	out := make([]string, 0, len(engines))
	for name := range engines {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type cliSynthesizer struct {
	exe    string
	mapper argMapper
	extra  []string
	quiet  bool

	// runCommand is swappable in tests.
	runCommand func(ctx context.Context, exe string, args []string, quiet bool) error
}

// New returns a CLI-backed synthesizer for the engine named in opts.
func New(opts Options) (Synthesizer, error) {
	mapper, ok := engines[opts.Engine]
	if !ok {
		return nil, fmt.Errorf("unknown synthesis engine %q (known: %s)", opts.Engine, strings.Join(Engines(), ", "))
	}

	exe := opts.ExecutablePath
	if exe == "" {
		exe = mapper.defaultExe
	}
	return &cliSynthesizer{
		exe:        exe,
		mapper:     mapper,
		extra:      opts.ExtraArgs,
		quiet:      opts.Quiet,
		runCommand: runEngineCommand,
	}, nil
}

func (s *cliSynthesizer) Synthesize(ctx context.Context, req Request) error {
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("synthesis failed: empty input text")
	}
	if req.ReferencePath == "" {
		return fmt.Errorf("synthesis failed: reference audio path is required")
	}
	if req.OutputPath == "" {
		return fmt.Errorf("synthesis failed: output path is required")
	}

	args := append(s.mapper.build(req), s.extra...)
	if err := s.runCommand(ctx, s.exe, args, s.quiet); err != nil {
		return mapEngineError(s.exe, err)
	}
	return nil
}

func runEngineCommand(ctx context.Context, exe string, args []string, quiet bool) error {
	cmd := exec.CommandContext(ctx, exe, args...)
	if !quiet {
		cmd.Stderr = os.Stderr
	}
	return cmd.Run()
}

func mapEngineError(exe string, err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("synthesis failed: %s executable not found in PATH: %w", exe, err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("synthesis failed: %s returned non-zero exit; check stderr details above: %w", exe, err)
	}
	return err
}
