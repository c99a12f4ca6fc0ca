package config

import (
	"fmt"
	"strings"

	"github.com/example/go-voice-eval/internal/encoder"
)

// NormalizeEncoderBackend canonicalizes an encoder backend name. Empty input
// defaults to the ONNX backend; "ort" and "cli" are accepted aliases.
func NormalizeEncoderBackend(raw string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(raw))
	if backend == "" {
		backend = encoder.BackendONNX
	}
	switch backend {
	case encoder.BackendONNX, encoder.BackendPocketTTS:
		return backend, nil
	case "ort":
		return encoder.BackendONNX, nil
	case "cli":
		return encoder.BackendPocketTTS, nil
	default:
		return "", fmt.Errorf(
			"invalid encoder backend %q (expected %s|%s)",
			raw,
			encoder.BackendONNX,
			encoder.BackendPocketTTS,
		)
	}
}
