package logsift_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/logsift/logsift/pkg/anomaly"
	"github.com/logsift/logsift/pkg/classify"
	"github.com/logsift/logsift/pkg/ingest"
	"github.com/logsift/logsift/pkg/patterns"
	"github.com/logsift/logsift/pkg/querier"
	"github.com/logsift/logsift/pkg/stats"
	"github.com/logsift/logsift/pkg/store"
)

// TestIntegrationPipeline runs a log file through the whole pipeline:
// classification, storage, statistics, pattern detection, and anomaly
// scoring.
func TestIntegrationPipeline(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "2024-01-15 10:%02d:00 INFO Request handled in %dms\n", i, 10+i%7)
	}
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, "2024-01-15 11:%02d:00 ERROR Connection timeout after %d000 ms\n", i, i+1)
	}
	b.WriteString("2024-01-15 11:30:00 WARNING Disk usage at 91%\n")
	b.WriteString("2024-01-15 11:31:00 WARNING Disk usage at 93%\n")
	b.WriteString("ERROR NullPointerException at GET /api/users from 10.0.0.5\n")

	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}

	classifier := classify.New()
	ch, err := ingest.Parse(context.Background(), path, classifier)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var entries []classify.Entry
	for result := range ch {
		if result.Err != nil {
			t.Fatalf("parse: %v", result.Err)
		}
		entries = append(entries, *result.Value)
	}
	if len(entries) != 51 {
		t.Fatalf("expected 51 entries, got %d", len(entries))
	}

	s, err := store.NewDuckDBStore("")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer func() { _ = s.Close() }()
	if err := s.Init(); err != nil {
		t.Fatalf("init store: %v", err)
	}

	fileID, err := s.InsertFile(path)
	if err != nil {
		t.Fatalf("insert file: %v", err)
	}
	if err := s.InsertEntryBatch(fileID, entries); err != nil {
		t.Fatalf("insert batch: %v", err)
	}

	// Statistics survive a store round trip.
	summary := stats.Summarize(entries)
	if summary.TotalEntries != 51 || summary.ErrorCount != 9 || summary.WarningCount != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if err := s.PutSummary(fileID, summary); err != nil {
		t.Fatalf("put summary: %v", err)
	}
	loaded, ok, err := s.GetSummary(fileID)
	if err != nil || !ok {
		t.Fatalf("get summary: ok=%v err=%v", ok, err)
	}
	if loaded.ErrorCount != summary.ErrorCount {
		t.Errorf("summary error count drifted: %d vs %d", loaded.ErrorCount, summary.ErrorCount)
	}

	// Query layer agrees with the classifier.
	q := querier.NewQuerier(s)
	counts, err := q.LevelBreakdown(fileID)
	if err != nil {
		t.Fatalf("level breakdown: %v", err)
	}
	if counts[classify.LevelError] != 9 {
		t.Errorf("stored error count: got %d, want 9", counts[classify.LevelError])
	}

	// Pattern detection finds the timeout group and the extracted shapes.
	result := patterns.Detect(entries, 0.7)
	if result.AnalyzedEntries != 11 {
		t.Errorf("analyzed entries: got %d, want 11", result.AnalyzedEntries)
	}
	if len(result.Groups) == 0 {
		t.Fatal("expected at least one similarity group")
	}
	if result.Groups[0].Count < 8 {
		t.Errorf("largest group count: got %d, want >= 8", result.Groups[0].Count)
	}
	types := make(map[patterns.RecordType]bool)
	for _, p := range result.Patterns {
		types[p.Type] = true
	}
	for _, want := range []patterns.RecordType{patterns.TypeIP, patterns.TypeAPIEndpoint, patterns.TypeException} {
		if !types[want] {
			t.Errorf("missing extracted pattern type %q", want)
		}
	}

	// Anomaly scoring runs over the full batch without incident.
	detector := anomaly.NewDetector(anomaly.DefaultContamination)
	scores := detector.Scores(entries)
	if len(scores) != len(entries) {
		t.Fatalf("expected %d scores, got %d", len(entries), len(scores))
	}
	report := detector.Summarize(entries)
	if report.TotalEntries != 51 {
		t.Errorf("anomaly report total: got %d, want 51", report.TotalEntries)
	}
}
