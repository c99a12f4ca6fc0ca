package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/example/go-voice-eval/internal/encoder"
	"github.com/example/go-voice-eval/internal/eval"
	"github.com/example/go-voice-eval/internal/metrics"
	"github.com/example/go-voice-eval/internal/report"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	var reference string
	var models []string
	var outputDir string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare several voice cloning models against one reference",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if reference == "" {
				return fmt.Errorf("--reference is required")
			}

			specs, err := parseModelSpecs(models)
			if err != nil {
				return err
			}

			provider, err := newEncoderProvider(cfg)
			if err != nil {
				return err
			}
			defer provider.Close()

			engine := metrics.NewEngine(provider, encoder.NewCache())

			result, err := eval.Compare(cmd.Context(), engine, reference, specs)
			if err != nil {
				return err
			}

			dir := outputDir
			if dir == "" {
				dir = cfg.Eval.OutputDir
			}
			if err := report.WriteAll(dir, result); err != nil {
				return err
			}

			if !quiet {
				report.FormatTable(result, os.Stdout)
			}
			fmt.Fprintf(os.Stdout, "wrote reports to %s\n", dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&reference, "reference", "", "Path to the reference recording")
	cmd.Flags().StringArrayVar(&models, "models", nil, "Model spec in id=path form; path is a file or directory (repeatable)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for report files (overrides config)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress the console comparison table")

	return cmd
}

// parseModelSpecs turns repeated id=path flags into ordered model specs.
// Repeating an id appends further inputs to that model, preserving the
// position of its first mention.
func parseModelSpecs(items []string) ([]eval.ModelSpec, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("at least one --models id=path is required")
	}

	index := make(map[string]int, len(items))
	specs := make([]eval.ModelSpec, 0, len(items))
	for _, item := range items {
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			return nil, fmt.Errorf("invalid --models %q: expected id=path", item)
		}
		id := strings.TrimSpace(parts[0])
		path := strings.TrimSpace(parts[1])

		if i, ok := index[id]; ok {
			specs[i].Inputs = append(specs[i].Inputs, path)
			continue
		}
		index[id] = len(specs)
		specs = append(specs, eval.ModelSpec{ID: id, Inputs: []string{path}})
	}
	return specs, nil
}
