package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/go-voice-eval/internal/synth"
	"github.com/spf13/cobra"
)

func newSynthCmd() *cobra.Command {
	var text string
	var referencePath string
	var out string
	var engine string
	var language string
	var engineArgs []string

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate synthetic audio with an external TTS engine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			inputText, err := readSynthText(text, os.Stdin)
			if err != nil {
				return err
			}

			selectedEngine := cfg.Synth.Engine
			if engine != "" {
				selectedEngine = engine
			}
			selectedLanguage := cfg.Synth.Language
			if language != "" {
				selectedLanguage = language
			}

			s, err := synth.New(synth.Options{
				Engine:         selectedEngine,
				ExecutablePath: cfg.Synth.CLIPath,
				ExtraArgs:      engineArgs,
				Quiet:          cfg.Synth.Quiet,
			})
			if err != nil {
				return err
			}

			err = s.Synthesize(cmd.Context(), synth.Request{
				Text:          inputText,
				Language:      selectedLanguage,
				ReferencePath: referencePath,
				OutputPath:    out,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to synthesize (if empty, read from stdin)")
	cmd.Flags().StringVar(&referencePath, "reference", "", "Reference recording for voice cloning")
	cmd.Flags().StringVar(&out, "out", "out.wav", "Output audio path")
	cmd.Flags().StringVar(&engine, "engine", "", "Synthesis engine override (xtts|yourtts|gpt-sovits)")
	cmd.Flags().StringVar(&language, "language", "", "Language code override")
	cmd.Flags().StringArrayVar(&engineArgs, "engine-arg", nil, "Extra argument passed to the engine verbatim (repeatable)")

	return cmd
}

func readSynthText(text string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	input := strings.TrimSpace(string(b))
	if input == "" {
		return "", fmt.Errorf("either provide --text or pipe text on stdin")
	}
	return input, nil
}
