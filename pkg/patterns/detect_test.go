package patterns

import (
	"testing"

	"github.com/logsift/logsift/pkg/classify"
)

func TestDetectFiltersToErrorWarning(t *testing.T) {
	entries := []classify.Entry{
		{LineNumber: 1, Level: classify.LevelInfo, Message: "GET /api/users 200"},
		{LineNumber: 2, Level: classify.LevelDebug, Message: "GET /api/users 200"},
		{LineNumber: 3, Level: classify.LevelError, Message: "POST /api/users 500"},
		{LineNumber: 4, Level: classify.LevelWarning, Message: "POST /api/users 500"},
	}
	result := Detect(entries, 0.7)

	if result.AnalyzedEntries != 2 {
		t.Errorf("analyzed = %d, want 2 (INFO/DEBUG excluded)", result.AnalyzedEntries)
	}
	endpoint := recordByType(t, result.Patterns, TypeAPIEndpoint)
	if endpoint.Count != 2 {
		t.Errorf("endpoint count = %d, want 2", endpoint.Count)
	}
}

func TestDetectEmpty(t *testing.T) {
	result := Detect(nil, 0.7)
	if len(result.Patterns) != 0 || len(result.Groups) != 0 ||
		result.TotalPatterns != 0 || result.TotalGroups != 0 || result.AnalyzedEntries != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestDetectNoErrorWarning(t *testing.T) {
	entries := []classify.Entry{
		{LineNumber: 1, Level: classify.LevelInfo, Message: "all is well"},
	}
	result := Detect(entries, 0.7)
	if len(result.Patterns) != 0 || len(result.Groups) != 0 {
		t.Errorf("expected empty result without ERROR/WARNING entries, got %+v", result)
	}
}

func TestDetectCounts(t *testing.T) {
	entries := errEntries(
		"Connection timeout", "Connection timeout", "Connection timeout",
		"failed to reach https://api.example.com",
	)
	result := Detect(entries, 0.7)
	if result.TotalPatterns != len(result.Patterns) {
		t.Errorf("TotalPatterns %d != len(Patterns) %d", result.TotalPatterns, len(result.Patterns))
	}
	if result.TotalGroups != len(result.Groups) {
		t.Errorf("TotalGroups %d != len(Groups) %d", result.TotalGroups, len(result.Groups))
	}
	if result.AnalyzedEntries != 4 {
		t.Errorf("AnalyzedEntries = %d, want 4", result.AnalyzedEntries)
	}
}
