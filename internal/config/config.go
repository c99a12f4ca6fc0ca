package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths    PathsConfig   `mapstructure:"paths"`
	Runtime  RuntimeConfig `mapstructure:"runtime"`
	Encoder  EncoderConfig `mapstructure:"encoder"`
	Eval     EvalConfig    `mapstructure:"eval"`
	Synth    SynthConfig   `mapstructure:"synth"`
	LogLevel string        `mapstructure:"log_level"`
}

type PathsConfig struct {
	EncoderModel string `mapstructure:"encoder_model"`
}

type RuntimeConfig struct {
	ORTLibraryPath string `mapstructure:"ort_library_path"`
	ORTAPIVersion  int    `mapstructure:"ort_api_version"`
}

type EncoderConfig struct {
	Backend       string `mapstructure:"backend"`
	InputName     string `mapstructure:"input_name"`
	OutputName    string `mapstructure:"output_name"`
	SampleRate    int    `mapstructure:"sample_rate"`
	CLIPath       string `mapstructure:"cli_path"`
	CLIConfigPath string `mapstructure:"cli_config_path"`
	Quiet         bool   `mapstructure:"quiet"`
}

type EvalConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

type SynthConfig struct {
	Engine   string `mapstructure:"engine"`
	CLIPath  string `mapstructure:"cli_path"`
	Language string `mapstructure:"language"`
	Quiet    bool   `mapstructure:"quiet"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			EncoderModel: "models/speaker_encoder.onnx",
		},
		Runtime: RuntimeConfig{
			ORTLibraryPath: "",
			ORTAPIVersion:  23,
		},
		Encoder: EncoderConfig{
			Backend:    "onnx",
			InputName:  "audio",
			OutputName: "embedding",
			SampleRate: 16000,
			Quiet:      true,
		},
		Eval: EvalConfig{
			OutputDir: "results",
		},
		Synth: SynthConfig{
			Engine:   "xtts",
			Language: "en",
			Quiet:    false,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("paths-encoder-model", defaults.Paths.EncoderModel, "Path to speaker encoder ONNX model")
	fs.String("runtime-ort-library-path", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library")
	fs.Int("runtime-ort-api-version", defaults.Runtime.ORTAPIVersion, "ONNX Runtime C API version to request")
	fs.String("encoder-backend", defaults.Encoder.Backend, "Speaker encoder backend (onnx|pocket-tts)")
	fs.String("encoder-input-name", defaults.Encoder.InputName, "ONNX graph input tensor name")
	fs.String("encoder-output-name", defaults.Encoder.OutputName, "ONNX graph output tensor name")
	fs.Int("encoder-sample-rate", defaults.Encoder.SampleRate, "Sample rate the encoder expects")
	fs.String("encoder-cli-path", defaults.Encoder.CLIPath, "Path to pocket-tts executable")
	fs.String("encoder-cli-config-path", defaults.Encoder.CLIConfigPath, "Path to pocket-tts config file")
	fs.Bool("encoder-quiet", defaults.Encoder.Quiet, "Pass --quiet to pocket-tts export-voice")
	fs.String("eval-output-dir", defaults.Eval.OutputDir, "Directory for comparison reports")
	fs.String("synth-engine", defaults.Synth.Engine, "Synthesis engine (xtts|yourtts|gpt-sovits)")
	fs.String("synth-cli-path", defaults.Synth.CLIPath, "Path to synthesis engine executable")
	fs.String("synth-language", defaults.Synth.Language, "Synthesis language code")
	fs.Bool("synth-quiet", defaults.Synth.Quiet, "Suppress synthesis engine stderr")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("VOICEEVAL")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	// The dotted key is an alias of the flag key and viper resolves aliases
	// before env bindings, so the binding must target the flag key.
	if err := v.BindEnv("runtime-ort-library-path", "VOICEEVAL_ORT_LIB", "ORT_LIBRARY_PATH"); err != nil {
		return Config{}, fmt.Errorf("bind ort env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("voiceeval")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.encoder_model", c.Paths.EncoderModel)
	v.SetDefault("runtime.ort_library_path", c.Runtime.ORTLibraryPath)
	v.SetDefault("runtime.ort_api_version", c.Runtime.ORTAPIVersion)
	v.SetDefault("encoder.backend", c.Encoder.Backend)
	v.SetDefault("encoder.input_name", c.Encoder.InputName)
	v.SetDefault("encoder.output_name", c.Encoder.OutputName)
	v.SetDefault("encoder.sample_rate", c.Encoder.SampleRate)
	v.SetDefault("encoder.cli_path", c.Encoder.CLIPath)
	v.SetDefault("encoder.cli_config_path", c.Encoder.CLIConfigPath)
	v.SetDefault("encoder.quiet", c.Encoder.Quiet)
	v.SetDefault("eval.output_dir", c.Eval.OutputDir)
	v.SetDefault("synth.engine", c.Synth.Engine)
	v.SetDefault("synth.cli_path", c.Synth.CLIPath)
	v.SetDefault("synth.language", c.Synth.Language)
	v.SetDefault("synth.quiet", c.Synth.Quiet)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("paths.encoder_model", "paths-encoder-model")
	v.RegisterAlias("runtime.ort_library_path", "runtime-ort-library-path")
	v.RegisterAlias("runtime.ort_api_version", "runtime-ort-api-version")
	v.RegisterAlias("encoder.backend", "encoder-backend")
	v.RegisterAlias("encoder.input_name", "encoder-input-name")
	v.RegisterAlias("encoder.output_name", "encoder-output-name")
	v.RegisterAlias("encoder.sample_rate", "encoder-sample-rate")
	v.RegisterAlias("encoder.cli_path", "encoder-cli-path")
	v.RegisterAlias("encoder.cli_config_path", "encoder-cli-config-path")
	v.RegisterAlias("encoder.quiet", "encoder-quiet")
	v.RegisterAlias("eval.output_dir", "eval-output-dir")
	v.RegisterAlias("synth.engine", "synth-engine")
	v.RegisterAlias("synth.cli_path", "synth-cli-path")
	v.RegisterAlias("synth.language", "synth-language")
	v.RegisterAlias("synth.quiet", "synth-quiet")
	v.RegisterAlias("log_level", "log-level")
}
