package eval

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/go-voice-eval/internal/audio"
	"github.com/example/go-voice-eval/internal/encoder"
	"github.com/example/go-voice-eval/internal/metrics"
	"github.com/example/go-voice-eval/internal/testutil"
)

// stubProvider derives a deterministic embedding from waveform content.
type stubProvider struct{}

func (stubProvider) Embed(_ context.Context, w *audio.Waveform) ([]float32, error) {
	const dim = 16
	out := make([]float32, dim)
	chunk := len(w.Samples)/dim + 1
	for i, s := range w.Samples {
		out[i/chunk] += s
	}
	out[0] += 1
	return out, nil
}

func (stubProvider) SampleRate() int { return 16000 }
func (stubProvider) Close() error    { return nil }

func newTestEngine() *metrics.Engine {
	return metrics.NewEngine(stubProvider{}, encoder.NewCache())
}

func TestEvaluateModel(t *testing.T) {
	ctx := context.Background()
	reference := testutil.Sine(220, 16000, 8192)

	t.Run("every discovered input is accounted for", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteSineWAV(t, dir, "a.wav", 220, 16000, 8192)
		testutil.WriteSineWAV(t, dir, "b.wav", 330, 16000, 8192)
		testutil.WriteFile(t, dir, "broken.wav", []byte("not audio"))
		missing := filepath.Join(dir, "missing.wav")

		report := NewEvaluator(newTestEngine()).EvaluateModel(ctx, "xtts", reference, "ref.wav", []string{dir, missing})

		if got := report.Discovered(); got != 4 {
			t.Errorf("discovered = %d, want 4", got)
		}
		if report.Successful != 2 {
			t.Errorf("successful = %d, want 2", report.Successful)
		}
		if report.Failed != 2 {
			t.Errorf("failed = %d, want 2", report.Failed)
		}
		if report.Successful+report.Failed != report.Discovered() {
			t.Error("successful + failed must equal discovered")
		}
	})

	t.Run("load failure is recorded as audio_load and isolates siblings", func(t *testing.T) {
		dir := t.TempDir()
		good := testutil.WriteSineWAV(t, dir, "good.wav", 220, 16000, 8192)
		bad := testutil.WriteFile(t, dir, "bad.wav", []byte("garbage"))

		report := NewEvaluator(newTestEngine()).EvaluateModel(ctx, "yourtts", reference, "ref.wav", []string{bad, good})

		var failedPair, goodPair *PairEvaluation
		for i := range report.Pairs {
			switch report.Pairs[i].Synthetic {
			case bad:
				failedPair = &report.Pairs[i]
			case good:
				goodPair = &report.Pairs[i]
			}
		}
		if failedPair == nil || !failedPair.Failed {
			t.Fatal("bad file should produce a failed pair")
		}
		if failedPair.ErrorKind != KindAudioLoad {
			t.Errorf("error kind = %s, want %s", failedPair.ErrorKind, KindAudioLoad)
		}
		if failedPair.Error == "" {
			t.Error("failed pair should carry the underlying error message")
		}
		if goodPair == nil || goodPair.Failed {
			t.Error("sibling pair should still compute normally")
		}
	})

	t.Run("empty directory yields explicit no-data report", func(t *testing.T) {
		report := NewEvaluator(newTestEngine()).EvaluateModel(ctx, "sovits", reference, "ref.wav", []string{t.TempDir()})

		if report.Discovered() != 0 {
			t.Errorf("discovered = %d, want 0", report.Discovered())
		}
		if report.HasData() {
			t.Error("empty model must report no data")
		}
		if len(report.Summaries) != 0 {
			t.Errorf("summaries = %v, want none", report.Summaries)
		}
	})

	t.Run("aggregates cover successful pairs only", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteSineWAV(t, dir, "a.wav", 220, 16000, 8192)
		testutil.WriteFile(t, dir, "z.wav", []byte("garbage"))

		report := NewEvaluator(newTestEngine()).EvaluateModel(ctx, "xtts", reference, "ref.wav", []string{dir})

		summary, ok := report.Summary(metrics.SpeakerSimilarity)
		if !ok {
			t.Fatal("expected speaker similarity summary")
		}
		if summary.Count != 1 {
			t.Errorf("summary count = %d, want 1 (failed pair excluded)", summary.Count)
		}
		if summary.Mean < 0 || summary.Mean > 1 {
			t.Errorf("mean = %f, want within [0, 1]", summary.Mean)
		}
		if summary.Min > summary.Mean || summary.Mean > summary.Max {
			t.Errorf("min/mean/max ordering violated: %+v", summary)
		}
	})

	t.Run("directory resolution is non-recursive and sorted", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "nested")
		if err := os.Mkdir(sub, 0o755); err != nil {
			t.Fatal(err)
		}
		testutil.WriteSineWAV(t, sub, "nested.wav", 220, 16000, 8192)
		testutil.WriteSineWAV(t, dir, "b.wav", 220, 16000, 8192)
		testutil.WriteSineWAV(t, dir, "a.wav", 220, 16000, 8192)
		testutil.WriteFile(t, dir, "notes.txt", []byte("ignored"))

		files, unresolved := resolveInputs([]string{dir})
		if len(unresolved) != 0 {
			t.Fatalf("unexpected unresolved inputs: %v", unresolved)
		}
		if len(files) != 2 {
			t.Fatalf("got %d files, want 2 (nested dir and txt excluded)", len(files))
		}
		if filepath.Base(files[0]) != "a.wav" || filepath.Base(files[1]) != "b.wav" {
			t.Errorf("files not sorted: %v", files)
		}
	})
}

func TestSummarize(t *testing.T) {
	pairs := []PairEvaluation{
		{Metrics: []metrics.Result{{Name: "m", Value: 0.2}}},
		{Metrics: []metrics.Result{{Name: "m", Value: 0.6}}},
		{Failed: true, ErrorKind: KindAudioLoad},
	}

	sums := summarize(pairs)
	s, ok := sums["m"]
	if !ok {
		t.Fatal("expected summary for metric m")
	}
	if s.Count != 2 {
		t.Errorf("count = %d, want 2", s.Count)
	}
	if s.Mean != 0.4 {
		t.Errorf("mean = %f, want 0.4", s.Mean)
	}
	if s.Min != 0.2 || s.Max != 0.6 {
		t.Errorf("min/max = %f/%f, want 0.2/0.6", s.Min, s.Max)
	}

	if got := summarize([]PairEvaluation{{Failed: true}}); got != nil {
		t.Errorf("all-failed summarize = %v, want nil", got)
	}
}
