package anomaly

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/logsift/logsift/pkg/classify"
)

// MinEntries is the smallest batch the model will run on. Below this the
// result is always "no anomalies", never an error.
const MinEntries = 10

// DefaultContamination is the expected anomalous fraction of a batch when
// the caller does not supply one.
const DefaultContamination = 0.1

// randomSeed fixes the ensemble's randomness so a given batch scores
// identically across calls.
const randomSeed = 42

// Scored is an entry flagged as anomalous, with its score and its index in
// the original batch. Lower scores are more anomalous.
type Scored struct {
	Entry classify.Entry `json:"entry"`
	Score float64        `json:"anomaly_score"`
	Index int            `json:"index"`
}

// Anomaly is one row of the summary's top list.
type Anomaly struct {
	LineNumber int            `json:"line_number"`
	Level      classify.Level `json:"level"`
	Message    string         `json:"message"`
	Timestamp  *time.Time     `json:"timestamp,omitempty"`
	Score      float64        `json:"anomaly_score"`
}

// Summary reports the outcome of anomaly detection over one batch.
type Summary struct {
	HasAnomalies      bool      `json:"has_anomalies"`
	AnomalyCount      int       `json:"anomaly_count"`
	AnomalyPercentage float64   `json:"anomaly_percentage"`
	TotalEntries      int       `json:"total_entries"`
	TopAnomalies      []Anomaly `json:"top_anomalies"`
	Recommendation    string    `json:"recommendation,omitempty"`
}

// Detector scores entries with an isolation forest over engineered features.
// Each call refits the model on the given batch; there is no state shared
// across calls, so results are self-contained and reproducible.
type Detector struct {
	contamination float64
}

// NewDetector creates a Detector with the given contamination fraction.
// Values outside (0, 1) fall back to DefaultContamination.
func NewDetector(contamination float64) *Detector {
	if contamination <= 0 || contamination >= 1 {
		contamination = DefaultContamination
	}
	return &Detector{contamination: contamination}
}

// Scores returns the per-entry anomaly score for every entry in the batch,
// in batch order; lower is more anomalous. Returns nil for batches smaller
// than MinEntries.
func (d *Detector) Scores(entries []classify.Entry) []float64 {
	if len(entries) < MinEntries {
		return nil
	}

	scaled := standardize(featureMatrix(entries))
	forest := fitForest(scaled, rand.New(rand.NewSource(randomSeed)))

	scores := make([]float64, len(scaled))
	for i, row := range scaled {
		scores[i] = forest.score(row)
	}
	return scores
}

// Detect returns the entries whose score falls below the batch's
// contamination quantile, sorted most anomalous first. The contamination
// fraction is a fitted threshold, not an exact quota: the flagged fraction
// only approximates it.
func (d *Detector) Detect(entries []classify.Entry) []Scored {
	scores := d.Scores(entries)
	if scores == nil {
		return nil
	}

	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	threshold := stat.Quantile(d.contamination, stat.Empirical, sorted, nil)

	var flagged []Scored
	for i, score := range scores {
		if score < threshold {
			flagged = append(flagged, Scored{Entry: entries[i], Score: score, Index: i})
		}
	}
	sort.SliceStable(flagged, func(i, j int) bool {
		return flagged[i].Score < flagged[j].Score
	})
	return flagged
}

// Summarize runs Detect and wraps the outcome in a report with a coarse
// severity recommendation.
func (d *Detector) Summarize(entries []classify.Entry) Summary {
	flagged := d.Detect(entries)
	if len(flagged) == 0 {
		return Summary{
			TotalEntries: len(entries),
			TopAnomalies: []Anomaly{},
		}
	}

	percentage := float64(len(flagged)) / float64(len(entries)) * 100

	top := flagged
	if len(top) > 10 {
		top = top[:10]
	}
	topAnomalies := make([]Anomaly, 0, len(top))
	for _, s := range top {
		topAnomalies = append(topAnomalies, Anomaly{
			LineNumber: s.Entry.LineNumber,
			Level:      s.Entry.Level,
			Message:    truncateRunes(s.Entry.Message, 200),
			Timestamp:  s.Entry.Timestamp,
			Score:      s.Score,
		})
	}

	return Summary{
		HasAnomalies:      true,
		AnomalyCount:      len(flagged),
		AnomalyPercentage: math.Round(percentage*100) / 100,
		TotalEntries:      len(entries),
		TopAnomalies:      topAnomalies,
		Recommendation:    recommendation(percentage),
	}
}

func recommendation(percentage float64) string {
	switch {
	case percentage > 20:
		return "High anomaly rate detected. There may be a system-wide problem."
	case percentage > 10:
		return "Moderate anomaly rate. Reviewing these entries is recommended."
	case percentage > 5:
		return "Low anomaly rate. Within normal limits."
	default:
		return "Very low anomaly rate. The system appears to be operating normally."
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
