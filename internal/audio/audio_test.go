package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// makeWAV builds a minimal valid WAV file from parameters for testing.
func makeWAV(sampleRate uint32, numChannels uint16, bitDepth uint16, samples []int16) []byte {
	blockAlign := numChannels * bitDepth / 8
	byteRate := sampleRate * uint32(blockAlign)
	dataSize := uint32(len(samples)) * uint32(bitDepth/8)
	riffSize := 4 + (8 + 16) + (8 + dataSize)

	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(riffSize))
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16)) // chunk size
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))  // PCM
	_ = binary.Write(buf, binary.LittleEndian, numChannels)
	_ = binary.Write(buf, binary.LittleEndian, sampleRate)
	_ = binary.Write(buf, binary.LittleEndian, byteRate)
	_ = binary.Write(buf, binary.LittleEndian, blockAlign)
	_ = binary.Write(buf, binary.LittleEndian, bitDepth)

	// data chunk
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataSize)
	for _, s := range samples {
		_ = binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes()
}

func writeTempWAV(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("loads mono WAV at native rate", func(t *testing.T) {
		samples := make([]int16, 100)
		path := writeTempWAV(t, "mono.wav", makeWAV(22050, 1, 16, samples))

		w, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w.SampleRate != 22050 {
			t.Errorf("sample rate = %d, want 22050", w.SampleRate)
		}
		if len(w.Samples) != 100 {
			t.Errorf("got %d samples, want 100", len(w.Samples))
		}
	})

	t.Run("downmixes stereo to mono", func(t *testing.T) {
		// 10 stereo frames = 20 interleaved samples.
		samples := make([]int16, 20)
		for i := range samples {
			samples[i] = 1000
		}
		path := writeTempWAV(t, "stereo.wav", makeWAV(16000, 2, 16, samples))

		w, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(w.Samples) != 10 {
			t.Errorf("got %d mono samples, want 10", len(w.Samples))
		}
	})

	t.Run("missing file yields ErrLoad", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.wav"))
		if !errors.Is(err, ErrLoad) {
			t.Errorf("expected ErrLoad, got %v", err)
		}
	})

	t.Run("unsupported extension yields ErrLoad", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		if !errors.Is(err, ErrLoad) {
			t.Errorf("expected ErrLoad, got %v", err)
		}
	})

	t.Run("zero-sample WAV yields ErrInvalid", func(t *testing.T) {
		path := writeTempWAV(t, "empty.wav", makeWAV(16000, 1, 16, nil))
		_, err := Load(path)
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("expected ErrInvalid, got %v", err)
		}
	})

	t.Run("garbage WAV bytes yield ErrLoad", func(t *testing.T) {
		path := writeTempWAV(t, "bad.wav", []byte("not a wav file"))
		_, err := Load(path)
		if !errors.Is(err, ErrLoad) {
			t.Errorf("expected ErrLoad, got %v", err)
		}
	})
}

func TestIsAudioFile(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"ref.wav", true},
		{"ref.WAV", true},
		{"clip.mp3", true},
		{"clip.flac", true},
		{"notes.txt", false},
		{"archive.tar.gz", false},
		{"noext", false},
	}
	for _, tc := range cases {
		if got := IsAudioFile(tc.path); got != tc.want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestResample(t *testing.T) {
	t.Run("same rate returns input unchanged", func(t *testing.T) {
		w := &Waveform{Samples: []float32{0.1, 0.2, 0.3}, SampleRate: 16000}
		out, err := Resample(w, 16000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != w {
			t.Error("expected identical waveform pointer at equal rates")
		}
	})

	t.Run("halving the rate halves the sample count", func(t *testing.T) {
		w := &Waveform{Samples: make([]float32, 1000), SampleRate: 32000}
		out, err := Resample(w, 16000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.SampleRate != 16000 {
			t.Errorf("rate = %d, want 16000", out.SampleRate)
		}
		if len(out.Samples) != 500 {
			t.Errorf("got %d samples, want 500", len(out.Samples))
		}
	})

	t.Run("preserves a constant signal", func(t *testing.T) {
		w := &Waveform{Samples: make([]float32, 480), SampleRate: 48000}
		for i := range w.Samples {
			w.Samples[i] = 0.25
		}
		out, err := Resample(w, 16000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, s := range out.Samples {
			if math.Abs(float64(s)-0.25) > 1e-6 {
				t.Fatalf("sample[%d] = %f, want 0.25", i, s)
			}
		}
	})

	t.Run("rejects empty waveform", func(t *testing.T) {
		_, err := Resample(&Waveform{SampleRate: 16000}, 8000)
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("expected ErrInvalid, got %v", err)
		}
	})

	t.Run("rejects non-positive target rate", func(t *testing.T) {
		w := &Waveform{Samples: []float32{0}, SampleRate: 16000}
		if _, err := Resample(w, 0); err == nil {
			t.Error("expected error for zero target rate")
		}
	})
}

func TestEncodeWAVRoundtrip(t *testing.T) {
	original := &Waveform{
		Samples:    []float32{0.0, 0.5, -0.5, 1.0, -1.0},
		SampleRate: 16000,
	}
	encoded, err := EncodeWAV(original)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	path := writeTempWAV(t, "roundtrip.wav", encoded)
	decoded, err := Load(path)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if decoded.SampleRate != original.SampleRate {
		t.Errorf("rate = %d, want %d", decoded.SampleRate, original.SampleRate)
	}
	if len(decoded.Samples) != len(original.Samples) {
		t.Fatalf("roundtrip: got %d samples, want %d", len(decoded.Samples), len(original.Samples))
	}

	// 16-bit quantization introduces error up to ~1/32768.
	const tolerance = 1.0 / 32768.0 * 2
	for i, want := range original.Samples {
		got := decoded.Samples[i]
		if math.Abs(float64(got-want)) > tolerance {
			t.Errorf("sample[%d] = %f, want %f (tolerance %f)", i, got, want, tolerance)
		}
	}
}

func TestDuration(t *testing.T) {
	w := &Waveform{Samples: make([]float32, 8000), SampleRate: 16000}
	if got := w.Duration(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("duration = %f, want 0.5", got)
	}
}
