package querier

import (
	"time"

	"github.com/google/uuid"

	"github.com/logsift/logsift/pkg/classify"
	"github.com/logsift/logsift/pkg/store"
)

// Querier provides a high-level interface for querying stored log entries.
type Querier struct {
	store store.Store
}

// NewQuerier creates a new Querier backed by the given store.
func NewQuerier(s store.Store) *Querier {
	return &Querier{store: s}
}

// ByLevel returns a file's entries with the given level.
func (q *Querier) ByLevel(fileID uuid.UUID, level classify.Level) ([]store.LogEntry, error) {
	return q.store.QueryEntries(store.QueryOpts{FileID: fileID, Level: level})
}

// Between returns a file's entries whose timestamps fall within [from, to].
// Entries without a timestamp are never matched.
func (q *Querier) Between(fileID uuid.UUID, from, to time.Time) ([]store.LogEntry, error) {
	return q.store.QueryEntries(store.QueryOpts{FileID: fileID, From: from, To: to})
}

// Search returns entries matching the given query options.
func (q *Querier) Search(opts store.QueryOpts) ([]store.LogEntry, error) {
	return q.store.QueryEntries(opts)
}

// LevelBreakdown returns the number of a file's entries per level.
func (q *Querier) LevelBreakdown(fileID uuid.UUID) (map[classify.Level]int, error) {
	return q.store.LevelCounts(fileID)
}
