package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/go-voice-eval/internal/audio"
	"github.com/example/go-voice-eval/internal/encoder"
	"github.com/example/go-voice-eval/internal/eval"
	"github.com/example/go-voice-eval/internal/metrics"
	"github.com/example/go-voice-eval/internal/report"
	"github.com/spf13/cobra"
)

func newEvaluateCmd() *cobra.Command {
	var original string
	var synthetic string
	var jsonOut string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score synthetic audio against an original recording",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if original == "" || synthetic == "" {
				return fmt.Errorf("--original and --synthetic are required")
			}

			reference, err := audio.Load(original)
			if err != nil {
				return fmt.Errorf("load original audio: %w", err)
			}

			provider, err := newEncoderProvider(cfg)
			if err != nil {
				return err
			}
			defer provider.Close()

			engine := metrics.NewEngine(provider, encoder.NewCache())
			evaluator := eval.NewEvaluator(engine)

			modelID := strings.TrimSuffix(filepath.Base(synthetic), filepath.Ext(synthetic))
			result := evaluator.EvaluateModel(cmd.Context(), modelID, reference, original, []string{synthetic})

			if !result.HasData() {
				report.FormatModel(&result, os.Stdout)
				return fmt.Errorf("no synthetic audio could be evaluated")
			}

			report.FormatModel(&result, os.Stdout)

			if jsonOut != "" {
				path, err := report.WriteModelJSON(jsonOut, &result)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&original, "original", "", "Path to the original reference recording")
	cmd.Flags().StringVar(&synthetic, "synthetic", "", "Synthetic audio file or directory of files")
	cmd.Flags().StringVar(&jsonOut, "json-out", "", "Directory to also write the result as JSON")

	return cmd
}
