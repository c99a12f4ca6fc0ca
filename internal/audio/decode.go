package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"
)

// Load reads an audio file and returns a mono waveform at the file's native
// sample rate. WAV, MP3 and FLAC containers are supported; the extension
// selects the decoder.
func Load(path string) (*Waveform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", ErrLoad, path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %q is empty", ErrInvalid, path)
	}

	var w *Waveform
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		w, err = decodeWAV(data)
	case ".mp3":
		w, err = decodeMP3(data)
	case ".flac":
		w, err = decodeFLAC(data)
	default:
		return nil, fmt.Errorf("%w: unsupported audio format %q", ErrLoad, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}

	if err := w.validate(); err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return w, nil
}

// IsAudioFile reports whether path has a supported audio extension.
func IsAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".mp3", ".flac":
		return true
	}
	return false
}

func decodeWAV(data []byte) (*Waveform, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV file", ErrLoad)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: reading PCM data: %v", ErrLoad, err)
	}

	samples := downmix(buf.Data, int(dec.NumChans))
	return &Waveform{Samples: samples, SampleRate: int(dec.SampleRate)}, nil
}

func decodeMP3(data []byte) (*Waveform, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid MP3 file: %v", ErrLoad, err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: reading MP3 frames: %v", ErrLoad, err)
	}

	// go-mp3 always emits interleaved 16-bit LE stereo.
	frames := len(pcm) / 4
	samples := make([]float32, frames)
	for i := range frames {
		l := int16(pcm[i*4]) | int16(pcm[i*4+1])<<8
		r := int16(pcm[i*4+2]) | int16(pcm[i*4+3])<<8
		samples[i] = (float32(l) + float32(r)) / 2 / 32768.0
	}

	return &Waveform{Samples: samples, SampleRate: dec.SampleRate()}, nil
}

func decodeFLAC(data []byte) (*Waveform, error) {
	stream, err := flac.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid FLAC file: %v", ErrLoad, err)
	}

	channels := int(stream.Info.NChannels)
	scale := float32(int64(1) << (stream.Info.BitsPerSample - 1))

	var samples []float32
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading FLAC frame: %v", ErrLoad, err)
		}

		n := len(frame.Subframes[0].Samples)
		for i := range n {
			var sum float32
			for c := range channels {
				sum += float32(frame.Subframes[c].Samples[i]) / scale
			}
			samples = append(samples, sum/float32(channels))
		}
	}

	return &Waveform{Samples: samples, SampleRate: int(stream.Info.SampleRate)}, nil
}
