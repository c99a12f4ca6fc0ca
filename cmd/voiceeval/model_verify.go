package main

import (
	"os"

	"github.com/example/go-voice-eval/internal/model"
	"github.com/spf13/cobra"
)

func newModelVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Smoke-test the speaker encoder model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			return model.Verify(cmd.Context(), model.VerifyOptions{
				ModelPath:      cfg.Paths.EncoderModel,
				ORTLibraryPath: cfg.Runtime.ORTLibraryPath,
				ORTAPIVersion:  uint32(cfg.Runtime.ORTAPIVersion),
				InputName:      cfg.Encoder.InputName,
				OutputName:     cfg.Encoder.OutputName,
				SampleRate:     cfg.Encoder.SampleRate,
				Stdout:         os.Stdout,
			})
		},
	}

	return cmd
}
