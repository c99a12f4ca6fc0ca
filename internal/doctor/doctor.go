// Package doctor provides environment preflight checks for voiceeval.
package doctor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// VersionFunc returns a version string or an error if the component is unavailable.
type VersionFunc func() (string, error)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// ORTLibraryPath is the ONNX Runtime shared library to look for.
	ORTLibraryPath string
	// SkipORT skips the runtime library check (pocket-tts backend mode).
	SkipORT bool
	// EncoderModelPath is the speaker encoder model file to verify on disk.
	EncoderModelPath string
	// PocketTTSVersion returns the output of `pocket-tts --version`.
	PocketTTSVersion VersionFunc
	// SkipPocketTTS skips the pocket-tts check (ONNX backend mode).
	SkipPocketTTS bool
	// OutputDir is checked for writability, empty skips the check.
	OutputDir string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- ONNX Runtime library ---------------------------------------------
	if cfg.SkipORT {
		fmt.Fprintf(w, "%s onnxruntime library: skipped\n", PassMark)
	} else if cfg.ORTLibraryPath == "" {
		res.fail("onnxruntime library: no path configured; set --runtime-ort-library-path or ORT_LIBRARY_PATH")
		fmt.Fprintf(w, "%s onnxruntime library: no path configured\n", FailMark)
	} else if _, err := os.Stat(cfg.ORTLibraryPath); err != nil {
		res.fail(fmt.Sprintf("onnxruntime library %q: %v", cfg.ORTLibraryPath, err))
		fmt.Fprintf(w, "%s onnxruntime library %s: not found\n", FailMark, cfg.ORTLibraryPath)
	} else {
		fmt.Fprintf(w, "%s onnxruntime library: %s\n", PassMark, cfg.ORTLibraryPath)
	}

	// ---- speaker encoder model --------------------------------------------
	if cfg.EncoderModelPath == "" {
		res.fail("speaker encoder model: no path configured")
		fmt.Fprintf(w, "%s speaker encoder model: no path configured\n", FailMark)
	} else if fi, err := os.Stat(cfg.EncoderModelPath); err != nil {
		res.fail(fmt.Sprintf("speaker encoder model %q: %v", cfg.EncoderModelPath, err))
		fmt.Fprintf(w, "%s speaker encoder model %s: not found\n", FailMark, cfg.EncoderModelPath)
	} else if fi.IsDir() {
		res.fail(fmt.Sprintf("speaker encoder model %q: is a directory", cfg.EncoderModelPath))
		fmt.Fprintf(w, "%s speaker encoder model %s: is a directory\n", FailMark, cfg.EncoderModelPath)
	} else {
		fmt.Fprintf(w, "%s speaker encoder model: %s\n", PassMark, cfg.EncoderModelPath)
	}

	// ---- pocket-tts binary ------------------------------------------------
	if cfg.SkipPocketTTS {
		fmt.Fprintf(w, "%s pocket-tts binary: skipped\n", PassMark)
	} else {
		ver, err := cfg.PocketTTSVersion()
		if err != nil {
			res.fail(fmt.Sprintf("pocket-tts binary: %v", err))
			fmt.Fprintf(w, "%s pocket-tts binary: not found (%v)\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s pocket-tts binary: %s\n", PassMark, ver)
		}
	}

	// ---- output directory -------------------------------------------------
	if cfg.OutputDir != "" {
		if err := checkWritable(cfg.OutputDir); err != nil {
			res.fail(fmt.Sprintf("output dir %q: %v", cfg.OutputDir, err))
			fmt.Fprintf(w, "%s output dir %s: not writable (%v)\n", FailMark, cfg.OutputDir, err)
		} else {
			fmt.Fprintf(w, "%s output dir: %s\n", PassMark, cfg.OutputDir)
		}
	}

	return res
}

// checkWritable verifies the directory exists (creating it if missing) and
// accepts a probe file.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	probe := filepath.Join(dir, ".voiceeval-doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}
