// Package testutil provides shared fixture builders and skip helpers.
//
// Each skip helper calls t.Skip with a clear human-readable reason when the
// named prerequisite is absent, so integration tests remain runnable in
// partial environments without failing noisily.
package testutil

import (
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/example/go-voice-eval/internal/audio"
)

// Sine builds a mono sine waveform for tests.
func Sine(freq float64, rate, samples int) *audio.Waveform {
	out := make([]float32, samples)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return &audio.Waveform{Samples: out, SampleRate: rate}
}

// WriteSineWAV writes a sine fixture WAV into dir and returns its path.
func WriteSineWAV(tb testing.TB, dir, name string, freq float64, rate, samples int) string {
	tb.Helper()

	data, err := audio.EncodeWAV(Sine(freq, rate, samples))
	if err != nil {
		tb.Fatalf("encode fixture WAV: %v", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write fixture WAV: %v", err)
	}
	return path
}

// WriteFile writes arbitrary fixture bytes into dir and returns the path.
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// RequirePocketTTS skips the test if the pocket-tts binary is not found in
// PATH or the path given by the VOICEEVAL_ENCODER_CLI_PATH environment
// variable.
func RequirePocketTTS(tb testing.TB) {
	tb.Helper()

	exe := os.Getenv("VOICEEVAL_ENCODER_CLI_PATH")
	if exe == "" {
		exe = "pocket-tts"
	}

	if _, err := exec.LookPath(exe); err != nil {
		tb.Skipf("pocket-tts binary not available (%q not in PATH); set VOICEEVAL_ENCODER_CLI_PATH to override", exe)
	}
}

// RequireONNXRuntime skips the test if no ONNX Runtime shared library can be
// located. It checks (in order): the ORT_LIBRARY_PATH env var, then the
// VOICEEVAL_ORT_LIB env var, then common system library paths.
func RequireONNXRuntime(tb testing.TB) {
	tb.Helper()

	for _, env := range []string{"ORT_LIBRARY_PATH", "VOICEEVAL_ORT_LIB"} {
		if p := os.Getenv(env); p != "" {
			if _, err := os.Stat(p); err == nil {
				return // found
			}
			tb.Skipf("ONNX Runtime library not found at %s=%q", env, p)
		}
	}
	// Fall back to common system locations.
	candidates := []string{
		"/usr/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.so",
		"/usr/lib/x86_64-linux-gnu/libonnxruntime.so",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return // found
		}
	}

	tb.Skip("ONNX Runtime shared library not found; set ORT_LIBRARY_PATH or VOICEEVAL_ORT_LIB")
}

// RequireEncoderModel skips the test if the speaker encoder ONNX model is
// not present at path.
func RequireEncoderModel(tb testing.TB, path string) {
	tb.Helper()

	if _, err := os.Stat(path); err != nil {
		tb.Skipf("speaker encoder model not available at %q: %v", path, err)
	}
}
