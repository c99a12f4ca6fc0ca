// Package safetensors reads voice embedding tensors exported by the
// pocket-tts CLI. Format: 8-byte LE header length, JSON header, raw data.
package safetensors

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
)

const (
	dtypeF32 = "F32"
	dtypeF16 = "F16"
)

type headerEntry struct {
	DType   string  `json:"dtype"`
	Shape   []int64 `json:"shape"`
	Offsets [2]int64 `json:"data_offsets"`
}

// LoadEmbedding reads the first tensor from a safetensors file and returns
// its float32 data together with its shape. Exported voice embeddings carry
// a single [T, D] or [1, T, D] tensor.
func LoadEmbedding(path string) ([]float32, []int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("safetensors: read %q: %w", path, err)
	}
	return LoadEmbeddingFromBytes(data)
}

// LoadEmbeddingFromBytes decodes a safetensors payload and returns the first
// tensor's float32 data and shape.
func LoadEmbeddingFromBytes(data []byte) ([]float32, []int64, error) {
	if len(data) < 8 {
		return nil, nil, fmt.Errorf("safetensors: payload too short (%d bytes)", len(data))
	}

	headerLen := binary.LittleEndian.Uint64(data[:8])
	headerEnd := 8 + int(headerLen)
	if headerLen > uint64(len(data)) || headerEnd > len(data) {
		return nil, nil, fmt.Errorf("safetensors: header length %d exceeds payload size %d", headerLen, len(data))
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(data[8:headerEnd], &header); err != nil {
		return nil, nil, fmt.Errorf("safetensors: parse header: %w", err)
	}

	names := make([]string, 0, len(header))
	for name := range header {
		if name == "__metadata__" {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("safetensors: no tensors found")
	}
	sort.Strings(names)
	name := names[0]

	var entry headerEntry
	if err := json.Unmarshal(header[name], &entry); err != nil {
		return nil, nil, fmt.Errorf("safetensors: tensor %q: parse entry: %w", name, err)
	}
	if entry.Offsets[0] < 0 || entry.Offsets[1] < entry.Offsets[0] {
		return nil, nil, fmt.Errorf("safetensors: tensor %q has invalid data offsets %v", name, entry.Offsets)
	}

	body := data[headerEnd:]
	if entry.Offsets[1] > int64(len(body)) {
		return nil, nil, fmt.Errorf("safetensors: tensor %q data extends past payload end", name)
	}
	raw := body[entry.Offsets[0]:entry.Offsets[1]]

	values, err := decodeTensorData(raw, entry.DType, entry.Shape)
	if err != nil {
		return nil, nil, fmt.Errorf("safetensors: tensor %q: %w", name, err)
	}
	return values, entry.Shape, nil
}

func elementCount(shape []int64) (int64, error) {
	total := int64(1)
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("negative dimension %d", d)
		}
		if d == 0 {
			return 0, nil
		}
		if total > math.MaxInt64/d {
			return 0, fmt.Errorf("shape %v overflows element count", shape)
		}
		total *= d
	}
	return total, nil
}

func decodeTensorData(raw []byte, dtype string, shape []int64) ([]float32, error) {
	elems, err := elementCount(shape)
	if err != nil {
		return nil, err
	}

	n := int(elems)
	out := make([]float32, n)

	switch strings.ToUpper(dtype) {
	case dtypeF32:
		if len(raw) < n*4 {
			return nil, fmt.Errorf("need %d bytes for F32, got %d", n*4, len(raw))
		}
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return out, nil
	case dtypeF16:
		if len(raw) < n*2 {
			return nil, fmt.Errorf("need %d bytes for F16, got %d", n*2, len(raw))
		}
		for i := range out {
			out[i] = float16ToFloat32(binary.LittleEndian.Uint16(raw[i*2:]))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported dtype %q", dtype)
	}
}

func float16ToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := uint32(h>>10) & 0x1f
	frac := uint32(h & 0x03ff)

	var bits uint32

	switch exp {
	case 0:
		if frac == 0 {
			bits = sign << 31
		} else {
			// Subnormal: normalize.
			e := int32(-14)
			for (frac & 0x0400) == 0 {
				frac <<= 1
				e--
			}
			frac &= 0x03ff
			exp32 := uint32(e + 127)
			bits = (sign << 31) | (exp32 << 23) | (frac << 13)
		}
	case 0x1f:
		// Inf / NaN.
		bits = (sign << 31) | 0x7f800000 | (frac << 13)
	default:
		exp32 := exp + (127 - 15)
		bits = (sign << 31) | (exp32 << 23) | (frac << 13)
	}

	return math.Float32frombits(bits)
}
