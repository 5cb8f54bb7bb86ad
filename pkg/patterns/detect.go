package patterns

import "github.com/logsift/logsift/pkg/classify"

// Result bundles the pattern and grouping views of one batch.
type Result struct {
	Patterns        []Record `json:"patterns"`
	Groups          []Group  `json:"groups"`
	TotalPatterns   int      `json:"total_patterns"`
	TotalGroups     int      `json:"total_groups"`
	AnalyzedEntries int      `json:"analyzed_entries"`
}

// Detect runs the structural extractors and the similarity grouper over the
// ERROR and WARNING entries of a batch. It is total over its domain: an
// empty batch, or one without ERROR/WARNING entries, yields an empty Result.
func Detect(entries []classify.Entry, minSimilarity float64) Result {
	filtered := filterErrorWarning(entries)
	if len(filtered) == 0 {
		return Result{Patterns: []Record{}, Groups: []Group{}}
	}

	records := Extract(filtered)
	if records == nil {
		records = []Record{}
	}
	groups := GroupSimilar(filtered, minSimilarity)

	return Result{
		Patterns:        records,
		Groups:          groups,
		TotalPatterns:   len(records),
		TotalGroups:     len(groups),
		AnalyzedEntries: len(filtered),
	}
}

func filterErrorWarning(entries []classify.Entry) []classify.Entry {
	var filtered []classify.Entry
	for _, e := range entries {
		if e.Level == classify.LevelError || e.Level == classify.LevelWarning {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
