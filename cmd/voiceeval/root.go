package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/example/go-voice-eval/internal/config"
	"github.com/example/go-voice-eval/internal/encoder"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "voiceeval",
		Short: "Voice cloning evaluation and comparison",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			setupLogger(loaded.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newEvaluateCmd())
	cmd.AddCommand(newCompareCmd())
	cmd.AddCommand(newSynthCmd())
	cmd.AddCommand(newModelCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	lvl, err := parseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func requireConfig() (config.Config, error) {
	if activeCfg.Paths.EncoderModel == "" {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return activeCfg, nil
}

// newEncoderProvider builds the configured speaker encoder backend.
func newEncoderProvider(cfg config.Config) (encoder.Provider, error) {
	backend, err := config.NormalizeEncoderBackend(cfg.Encoder.Backend)
	if err != nil {
		return nil, err
	}

	return encoder.New(encoder.Options{
		Backend:        backend,
		ModelPath:      cfg.Paths.EncoderModel,
		ORTLibraryPath: cfg.Runtime.ORTLibraryPath,
		ORTAPIVersion:  uint32(cfg.Runtime.ORTAPIVersion),
		InputName:      cfg.Encoder.InputName,
		OutputName:     cfg.Encoder.OutputName,
		CLIPath:        cfg.Encoder.CLIPath,
		CLIConfigPath:  cfg.Encoder.CLIConfigPath,
		Quiet:          cfg.Encoder.Quiet,
		SampleRate:     cfg.Encoder.SampleRate,
	})
}
