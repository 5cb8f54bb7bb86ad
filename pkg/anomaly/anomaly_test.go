package anomaly

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/logsift/logsift/pkg/classify"
)

func infoEntry(line int, message string) classify.Entry {
	ts := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return classify.Entry{
		LineNumber: line,
		Level:      classify.LevelInfo,
		Timestamp:  &ts,
		Message:    message,
		Raw:        message,
	}
}

func TestDetectBelowMinimum(t *testing.T) {
	var entries []classify.Entry
	for i := 0; i < MinEntries-1; i++ {
		entries = append(entries, infoEntry(i+1, "all good"))
	}
	for _, contamination := range []float64{0.05, 0.1, 0.5} {
		d := NewDetector(contamination)
		if scores := d.Scores(entries); scores != nil {
			t.Errorf("contamination %v: expected nil scores below minimum batch", contamination)
		}
		summary := d.Summarize(entries)
		if summary.HasAnomalies || summary.AnomalyCount != 0 {
			t.Errorf("contamination %v: expected no anomalies, got %+v", contamination, summary)
		}
	}
}

func TestDetectRunsAtMinimum(t *testing.T) {
	var entries []classify.Entry
	for i := 0; i < MinEntries; i++ {
		entries = append(entries, infoEntry(i+1, strings.Repeat("x", i+1)))
	}
	d := NewDetector(DefaultContamination)
	scores := d.Scores(entries)
	if len(scores) != MinEntries {
		t.Fatalf("expected %d scores, got %d", MinEntries, len(scores))
	}
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			t.Errorf("score %d is not finite: %v", i, s)
		}
	}
}

func TestDetectDegenerateBatch(t *testing.T) {
	// All entries identical: every feature column has zero variance. The
	// scaler must not propagate NaN and no entry can be an outlier.
	var entries []classify.Entry
	for i := 0; i < 20; i++ {
		entries = append(entries, infoEntry(i+1, "identical message"))
	}
	d := NewDetector(DefaultContamination)
	for _, s := range d.Scores(entries) {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			t.Fatalf("non-finite score on degenerate batch: %v", s)
		}
	}
	if flagged := d.Detect(entries); len(flagged) != 0 {
		t.Errorf("expected no anomalies in identical batch, got %d", len(flagged))
	}
}

func TestDetectReproducible(t *testing.T) {
	var entries []classify.Entry
	for i := 0; i < 25; i++ {
		entries = append(entries, infoEntry(i+1, strings.Repeat("m", (i*7)%40+1)))
	}
	d := NewDetector(DefaultContamination)
	first := d.Scores(entries)
	second := d.Scores(entries)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("score %d differs between runs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestDetectFlagsObviousOutlier(t *testing.T) {
	var entries []classify.Entry
	for i := 0; i < 30; i++ {
		entries = append(entries, infoEntry(i+1, "heartbeat ok"))
	}
	odd := time.Date(2024, 1, 20, 3, 0, 0, 0, time.UTC)
	entries = append(entries, classify.Entry{
		LineNumber: 31,
		Level:      classify.LevelError,
		Timestamp:  &odd,
		Message:    "fatal deadlock detected " + strings.Repeat("stack frame ", 40),
		Raw:        "…",
	})

	d := NewDetector(DefaultContamination)
	flagged := d.Detect(entries)
	if len(flagged) != 1 {
		t.Fatalf("expected exactly the outlier flagged, got %d", len(flagged))
	}
	if flagged[0].Entry.LineNumber != 31 {
		t.Errorf("flagged line %d, want 31", flagged[0].Entry.LineNumber)
	}
	if flagged[0].Index != 30 {
		t.Errorf("flagged index %d, want 30", flagged[0].Index)
	}

	summary := d.Summarize(entries)
	if !summary.HasAnomalies || summary.AnomalyCount != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.TopAnomalies[0].LineNumber != 31 {
		t.Errorf("top anomaly line %d, want 31", summary.TopAnomalies[0].LineNumber)
	}
	if summary.Recommendation == "" {
		t.Error("expected a recommendation")
	}
}

func TestDetectSortedMostAnomalousFirst(t *testing.T) {
	var entries []classify.Entry
	for i := 0; i < 40; i++ {
		entries = append(entries, infoEntry(i+1, strings.Repeat("a", (i%5)+10)))
	}
	entries = append(entries,
		classify.Entry{LineNumber: 41, Level: classify.LevelError, Message: strings.Repeat("crash ", 100)},
		classify.Entry{LineNumber: 42, Level: classify.LevelError, Message: strings.Repeat("crash ", 60)},
	)
	d := NewDetector(DefaultContamination)
	flagged := d.Detect(entries)
	for i := 1; i < len(flagged); i++ {
		if flagged[i].Score < flagged[i-1].Score {
			t.Errorf("results not sorted ascending by score at %d", i)
		}
	}
}

func TestSummarizeMessageTruncation(t *testing.T) {
	var entries []classify.Entry
	for i := 0; i < 30; i++ {
		entries = append(entries, infoEntry(i+1, "steady state"))
	}
	entries = append(entries, classify.Entry{
		LineNumber: 31,
		Level:      classify.LevelError,
		Message:    strings.Repeat("overflow ", 60),
	})
	d := NewDetector(DefaultContamination)
	summary := d.Summarize(entries)
	if !summary.HasAnomalies {
		t.Fatal("expected the outlier to be flagged")
	}
	if got := len([]rune(summary.TopAnomalies[0].Message)); got > 200 {
		t.Errorf("top anomaly message length %d, want ≤ 200", got)
	}
}

func TestRecommendationThresholds(t *testing.T) {
	tests := []struct {
		percentage float64
		contains   string
	}{
		{25, "High"},
		{15, "Moderate"},
		{7, "Low"},
		{2, "Very low"},
	}
	for _, tt := range tests {
		got := recommendation(tt.percentage)
		if !strings.HasPrefix(got, tt.contains) {
			t.Errorf("recommendation(%v) = %q, want prefix %q", tt.percentage, got, tt.contains)
		}
	}
}

func TestNewDetectorClampsContamination(t *testing.T) {
	for _, bad := range []float64{-1, 0, 1, 2} {
		d := NewDetector(bad)
		if d.contamination != DefaultContamination {
			t.Errorf("NewDetector(%v).contamination = %v, want default", bad, d.contamination)
		}
	}
}
