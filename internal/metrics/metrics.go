// Package metrics computes acoustic similarity metrics between a reference
// waveform and a synthetic candidate.
package metrics

// Metric names emitted by the engine, in report order.
const (
	SpeakerSimilarity = "speaker_similarity"
	MCD               = "mcd_db"
	MelCorrelation    = "mel_correlation"
)

// Names returns every metric name the engine can emit, in the fixed order
// used for tables and rankings.
func Names() []string {
	return []string{SpeakerSimilarity, MCD, MelCorrelation}
}

// HigherIsBetter reports the declared direction of a metric.
func HigherIsBetter(name string) bool {
	return name != MCD
}

// Result is a single named score with its direction and display rating.
type Result struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	HigherBetter bool    `json:"higher_better"`
	Rating       string  `json:"rating"`
}

// Display rating labels.
const (
	RatingExcellent = "excellent"
	RatingGood      = "good"
	RatingFair      = "fair"
	RatingPoor      = "poor"
)

// thresholds holds the excellent/good/fair cut points for one metric.
// Interpretation depends on direction.
type thresholds struct {
	excellent float64
	good      float64
	fair      float64
}

var ratingTables = map[string]thresholds{
	SpeakerSimilarity: {excellent: 0.80, good: 0.70, fair: 0.60},
	MCD:               {excellent: 6.0, good: 8.0, fair: 10.0},
	MelCorrelation:    {excellent: 0.90, good: 0.85, fair: 0.75},
}

// Rate classifies a metric value against its threshold table. The rating is
// display-only; it never feeds rankings.
func Rate(name string, value float64) string {
	tbl, ok := ratingTables[name]
	if !ok {
		return RatingPoor
	}

	if HigherIsBetter(name) {
		switch {
		case value >= tbl.excellent:
			return RatingExcellent
		case value >= tbl.good:
			return RatingGood
		case value >= tbl.fair:
			return RatingFair
		}
		return RatingPoor
	}

	switch {
	case value <= tbl.excellent:
		return RatingExcellent
	case value <= tbl.good:
		return RatingGood
	case value <= tbl.fair:
		return RatingFair
	}
	return RatingPoor
}

func newResult(name string, value float64) Result {
	return Result{
		Name:         name,
		Value:        value,
		HigherBetter: HigherIsBetter(name),
		Rating:       Rate(name, value),
	}
}
