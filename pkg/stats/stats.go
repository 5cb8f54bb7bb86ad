package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/logsift/logsift/pkg/classify"
)

// MessageCount is one recurring message with its frequency within a level.
type MessageCount struct {
	Message    string  `json:"message"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Summary holds aggregate statistics over one entry batch.
//
// UNKNOWN entries count toward TotalEntries but none of the four level
// counters, so the sum of the counters is at most TotalEntries.
type Summary struct {
	TotalEntries int            `json:"total_entries"`
	ErrorCount   int            `json:"error_count"`
	WarningCount int            `json:"warning_count"`
	InfoCount    int            `json:"info_count"`
	DebugCount   int            `json:"debug_count"`
	TopErrors    []MessageCount `json:"top_errors"`
	TopWarnings  []MessageCount `json:"top_warnings"`
	// TimeDistribution maps hour-of-day ("0".."23") to entry count.
	// Entries without a timestamp contribute nothing.
	TimeDistribution map[string]int `json:"time_distribution"`
}

// TopK is the number of recurring messages reported per level.
const TopK = 10

// Summarize computes aggregate statistics over entries. It is a pure
// function: an empty batch yields an all-zero summary, never an error.
func Summarize(entries []classify.Entry) Summary {
	summary := Summary{
		TopErrors:        []MessageCount{},
		TopWarnings:      []MessageCount{},
		TimeDistribution: map[string]int{},
	}
	if len(entries) == 0 {
		return summary
	}

	summary.TotalEntries = len(entries)

	var errorMessages, warningMessages []string
	for _, e := range entries {
		switch e.Level {
		case classify.LevelError:
			summary.ErrorCount++
			errorMessages = append(errorMessages, e.Message)
		case classify.LevelWarning:
			summary.WarningCount++
			warningMessages = append(warningMessages, e.Message)
		case classify.LevelInfo:
			summary.InfoCount++
		case classify.LevelDebug:
			summary.DebugCount++
		}

		if e.Timestamp != nil {
			summary.TimeDistribution[strconv.Itoa(e.Timestamp.Hour())]++
		}
	}

	summary.TopErrors = topMessages(errorMessages, TopK)
	summary.TopWarnings = topMessages(warningMessages, TopK)
	return summary
}

// topMessages returns the k most frequent messages after case-folding and
// trimming, ties broken by first appearance. Percentages are relative to all
// messages of the level, rounded to two decimals.
func topMessages(messages []string, k int) []MessageCount {
	if len(messages) == 0 {
		return []MessageCount{}
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var keys []string
	for _, msg := range messages {
		normalized := strings.ToLower(strings.TrimSpace(msg))
		if normalized == "" {
			continue
		}
		if _, ok := counts[normalized]; !ok {
			firstSeen[normalized] = len(keys)
			keys = append(keys, normalized)
		}
		counts[normalized]++
	}

	sort.SliceStable(keys, func(i, j int) bool {
		ci, cj := counts[keys[i]], counts[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return firstSeen[keys[i]] < firstSeen[keys[j]]
	})

	if len(keys) > k {
		keys = keys[:k]
	}

	top := make([]MessageCount, 0, len(keys))
	for _, key := range keys {
		top = append(top, MessageCount{
			Message:    key,
			Count:      counts[key],
			Percentage: round2(float64(counts[key]) / float64(len(messages)) * 100),
		})
	}
	return top
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
