package safetensors

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// buildPayload assembles a single-tensor safetensors payload for testing.
func buildPayload(t *testing.T, name, dtype string, shape []int64, raw []byte) []byte {
	t.Helper()

	header := map[string]any{
		name: map[string]any{
			"dtype":        dtype,
			"shape":        shape,
			"data_offsets": []int64{0, int64(len(raw))},
		},
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}

	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.LittleEndian, uint64(len(headerJSON)))
	buf.Write(headerJSON)
	buf.Write(raw)
	return buf.Bytes()
}

func f32Bytes(values []float32) []byte {
	buf := &bytes.Buffer{}
	for _, v := range values {
		_ = binary.Write(buf, binary.LittleEndian, math.Float32bits(v))
	}
	return buf.Bytes()
}

func TestLoadEmbeddingFromBytes(t *testing.T) {
	t.Run("decodes F32 tensor with shape", func(t *testing.T) {
		want := []float32{0.5, -0.25, 1.0, 0.0, 2.5, -3.0}
		payload := buildPayload(t, "embedding", "F32", []int64{2, 3}, f32Bytes(want))

		got, shape, err := LoadEmbeddingFromBytes(payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(shape) != 2 || shape[0] != 2 || shape[1] != 3 {
			t.Errorf("shape = %v, want [2 3]", shape)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("value[%d] = %f, want %f", i, got[i], want[i])
			}
		}
	})

	t.Run("decodes F16 tensor", func(t *testing.T) {
		// 1.0 in IEEE half precision is 0x3c00.
		raw := []byte{0x00, 0x3c, 0x00, 0x3c}
		payload := buildPayload(t, "embedding", "F16", []int64{2}, raw)

		got, _, err := LoadEmbeddingFromBytes(payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, v := range got {
			if v != 1.0 {
				t.Errorf("value[%d] = %f, want 1.0", i, v)
			}
		}
	})

	t.Run("rejects truncated payload", func(t *testing.T) {
		if _, _, err := LoadEmbeddingFromBytes([]byte{1, 2, 3}); err == nil {
			t.Error("expected error for truncated payload")
		}
	})

	t.Run("rejects oversized header length", func(t *testing.T) {
		buf := &bytes.Buffer{}
		_ = binary.Write(buf, binary.LittleEndian, uint64(1<<40))
		buf.WriteString("{}")
		if _, _, err := LoadEmbeddingFromBytes(buf.Bytes()); err == nil {
			t.Error("expected error for oversized header length")
		}
	})

	t.Run("rejects unsupported dtype", func(t *testing.T) {
		payload := buildPayload(t, "embedding", "I64", []int64{1}, make([]byte, 8))
		if _, _, err := LoadEmbeddingFromBytes(payload); err == nil {
			t.Error("expected error for unsupported dtype")
		}
	})

	t.Run("rejects payload without tensors", func(t *testing.T) {
		buf := &bytes.Buffer{}
		_ = binary.Write(buf, binary.LittleEndian, uint64(2))
		buf.WriteString("{}")
		if _, _, err := LoadEmbeddingFromBytes(buf.Bytes()); err == nil {
			t.Error("expected error for empty header")
		}
	})
}

func TestLoadEmbedding(t *testing.T) {
	t.Run("reads from file", func(t *testing.T) {
		payload := buildPayload(t, "embedding", "F32", []int64{1, 2}, f32Bytes([]float32{1, 2}))
		path := filepath.Join(t.TempDir(), "voice.safetensors")
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			t.Fatal(err)
		}

		values, shape, err := LoadEmbedding(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(values) != 2 || shape[1] != 2 {
			t.Errorf("got %d values shape %v, want 2 values shape [1 2]", len(values), shape)
		}
	})

	t.Run("missing file errors", func(t *testing.T) {
		if _, _, err := LoadEmbedding(filepath.Join(t.TempDir(), "nope.safetensors")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
