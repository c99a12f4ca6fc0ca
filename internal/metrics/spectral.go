package metrics

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/example/go-voice-eval/internal/audio"
)

// STFT and mel analysis parameters.
const (
	windowSize  = 1024
	hopSize     = 256
	melBands    = 40
	cepstralDim = 13 // c1..c13, c0 excluded
	logFloor    = 1e-10
)

var errTooShort = errors.New("waveform shorter than one analysis window")

// hann returns a Hann window of length n.
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// powerSpectrogram computes a time-major power spectrogram with windowSize
// frames advanced by hopSize. Frames that would run past the signal end are
// not emitted.
func powerSpectrogram(samples []float32, window []float64) ([][]float64, error) {
	if len(samples) < windowSize {
		return nil, errTooShort
	}

	bins := windowSize/2 + 1
	var frames [][]float64
	frame := make([]float64, windowSize)
	for start := 0; start+windowSize <= len(samples); start += hopSize {
		for i := range windowSize {
			frame[i] = float64(samples[start+i]) * window[i]
		}
		spectrum := fft.FFTReal(frame)

		power := make([]float64, bins)
		for i := range bins {
			m := cmplx.Abs(spectrum[i])
			power[i] = m * m
		}
		frames = append(frames, power)
	}
	return frames, nil
}

func hzToMel(f float64) float64 { return 2595 * math.Log10(1+f/700) }
func melToHz(m float64) float64 { return 700 * (math.Pow(10, m/2595) - 1) }

// melFilterbank builds triangular filters mapping windowSize/2+1 power bins
// onto melBands bands for the given sample rate.
func melFilterbank(sampleRate int) [][]float64 {
	bins := windowSize/2 + 1
	low := hzToMel(0)
	high := hzToMel(float64(sampleRate) / 2)

	// melBands+2 equally spaced mel points, converted back to FFT bins.
	points := make([]float64, melBands+2)
	for i := range points {
		mel := low + (high-low)*float64(i)/float64(melBands+1)
		points[i] = melToHz(mel) * float64(windowSize) / float64(sampleRate)
	}

	filters := make([][]float64, melBands)
	for m := range melBands {
		filter := make([]float64, bins)
		left, center, right := points[m], points[m+1], points[m+2]
		for b := range bins {
			f := float64(b)
			switch {
			case f > left && f < center:
				filter[b] = (f - left) / (center - left)
			case f >= center && f < right:
				filter[b] = (right - f) / (right - center)
			}
		}
		filters[m] = filter
	}
	return filters
}

// logMelSpectrogram computes the log mel spectrogram of a waveform:
// frames x melBands, natural log with a floor to keep values finite.
func logMelSpectrogram(w *audio.Waveform) ([][]float64, error) {
	power, err := powerSpectrogram(w.Samples, hann(windowSize))
	if err != nil {
		return nil, err
	}

	filters := melFilterbank(w.SampleRate)
	out := make([][]float64, len(power))
	for t, frame := range power {
		mel := make([]float64, melBands)
		for m, filter := range filters {
			var sum float64
			for b, coeff := range filter {
				if coeff != 0 {
					sum += coeff * frame[b]
				}
			}
			mel[m] = math.Log(math.Max(sum, logFloor))
		}
		out[t] = mel
	}
	return out, nil
}

// cepstra applies a DCT-II to each log-mel frame and keeps coefficients
// c1..cepstralDim. c0 carries overall energy and is excluded from MCD.
func cepstra(logMel [][]float64) [][]float64 {
	out := make([][]float64, len(logMel))
	for t, frame := range logMel {
		coeffs := make([]float64, cepstralDim)
		for k := 1; k <= cepstralDim; k++ {
			var sum float64
			for m, v := range frame {
				sum += v * math.Cos(math.Pi*float64(k)*(float64(m)+0.5)/float64(len(frame)))
			}
			coeffs[k-1] = sum
		}
		out[t] = coeffs
	}
	return out
}

// alignFrames truncates both sequences to the shorter frame count. Padding
// would fabricate spectral content, so the tail of the longer signal is
// ignored instead.
func alignFrames(a, b [][]float64) ([][]float64, [][]float64) {
	n := min(len(a), len(b))
	return a[:n], b[:n]
}

// melCepstralDistortion returns the mean MCD in dB over aligned frames.
func melCepstralDistortion(ref, syn [][]float64) float64 {
	ref, syn = alignFrames(ref, syn)
	if len(ref) == 0 {
		return 0
	}

	const scale = 10 / math.Ln10
	var total float64
	for t := range ref {
		var sum float64
		for k := range ref[t] {
			d := ref[t][k] - syn[t][k]
			sum += d * d
		}
		total += scale * math.Sqrt(2*sum)
	}
	return total / float64(len(ref))
}

// melSpectrogramCorrelation returns the Pearson correlation between two
// aligned log-mel spectrograms, treated as flat vectors.
func melSpectrogramCorrelation(ref, syn [][]float64) float64 {
	ref, syn = alignFrames(ref, syn)
	if len(ref) == 0 {
		return 0
	}

	var n int
	var sumA, sumB float64
	for t := range ref {
		for m := range ref[t] {
			sumA += ref[t][m]
			sumB += syn[t][m]
			n++
		}
	}
	meanA, meanB := sumA/float64(n), sumB/float64(n)

	var cov, varA, varB float64
	for t := range ref {
		for m := range ref[t] {
			da := ref[t][m] - meanA
			db := syn[t][m] - meanB
			cov += da * db
			varA += da * da
			varB += db * db
		}
	}
	if varA == 0 || varB == 0 {
		// A perfectly flat spectrogram has no variance to correlate
		// against; identical flat inputs still count as a full match.
		if varA == varB {
			return 1
		}
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// cosineSimilarity returns the cosine of the angle between two embeddings.
func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.New("embedding dimensionality mismatch")
	}
	if len(a) == 0 {
		return 0, errors.New("empty embedding")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, errors.New("zero-magnitude embedding")
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
