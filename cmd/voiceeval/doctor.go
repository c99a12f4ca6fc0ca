package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/example/go-voice-eval/internal/config"
	"github.com/example/go-voice-eval/internal/doctor"
	"github.com/example/go-voice-eval/internal/encoder"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run local runtime and model checks",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			backend, err := config.NormalizeEncoderBackend(cfg.Encoder.Backend)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(os.Stdout, "encoder backend: %s\n", backend)

			exe := cfg.Encoder.CLIPath
			if exe == "" {
				exe = "pocket-tts"
			}

			result := doctor.Run(doctor.Config{
				ORTLibraryPath:   cfg.Runtime.ORTLibraryPath,
				SkipORT:          backend == encoder.BackendPocketTTS,
				EncoderModelPath: cfg.Paths.EncoderModel,
				PocketTTSVersion: func() (string, error) {
					return probePocketTTSVersion(exe)
				},
				SkipPocketTTS: backend == encoder.BackendONNX,
				OutputDir:     cfg.Eval.OutputDir,
			}, os.Stdout)

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(os.Stderr, "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(os.Stdout, "doctor checks passed")

			return nil
		},
	}

	return cmd
}

// probePocketTTSVersion runs `pocket-tts --version` and returns its output.
func probePocketTTSVersion(exe string) (string, error) {
	out, err := exec.CommandContext(context.Background(), exe, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("%s --version failed: %w", exe, err)
	}

	return strings.TrimSpace(string(out)), nil
}
