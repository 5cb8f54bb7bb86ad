package patterns

import (
	"sort"
	"strings"

	"github.com/logsift/logsift/pkg/classify"
)

// Group is a cluster of near-duplicate messages. Entries are in scan order
// with the seed first; Count always equals len(Entries) and is at least 2.
type Group struct {
	Representative  string           `json:"representative"`
	Count           int              `json:"count"`
	Level           classify.Level   `json:"level"`
	Entries         []classify.Entry `json:"entries"`
	SimilarityScore float64          `json:"similarity_score"`
}

// MaxGroups caps the number of returned groups.
const MaxGroups = 20

// GroupSimilar clusters entries whose messages score at least minSimilarity
// against a seed message, using single-pass greedy assignment: entries are
// scanned in order, each unprocessed entry seeds a candidate group and
// absorbs all later unprocessed entries within the threshold. Groups with
// fewer than 2 members are discarded and their seed stays ungrouped: later
// seeds only scan forward, so it is never revisited. Results are sorted by
// descending size and capped at MaxGroups.
func GroupSimilar(entries []classify.Entry, minSimilarity float64) []Group {
	if len(entries) == 0 {
		return []Group{}
	}

	var groups []Group
	processed := make([]bool, len(entries))

	for i, seed := range entries {
		if processed[i] {
			continue
		}
		seedMessage := strings.ToLower(seed.Message)
		if seedMessage == "" {
			continue
		}

		group := Group{
			Representative:  truncateRunes(seed.Message, 100),
			Count:           1,
			Level:           seed.Level,
			Entries:         []classify.Entry{seed},
			SimilarityScore: 1.0,
		}

		for j := i + 1; j < len(entries); j++ {
			if processed[j] {
				continue
			}
			candidateMessage := strings.ToLower(entries[j].Message)
			if candidateMessage == "" {
				continue
			}
			if Similarity(seedMessage, candidateMessage) >= minSimilarity {
				group.Count++
				group.Entries = append(group.Entries, entries[j])
				processed[j] = true
			}
		}

		// A group needs at least 2 members.
		if group.Count < 2 {
			continue
		}
		processed[i] = true
		groups = append(groups, group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	if len(groups) > MaxGroups {
		groups = groups[:MaxGroups]
	}
	if groups == nil {
		groups = []Group{}
	}
	return groups
}
