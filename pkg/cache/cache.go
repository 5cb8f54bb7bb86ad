// Package cache provides a TTL-bounded cache for per-file analysis results,
// so repeated queries against an unchanged file skip re-analysis.
package cache

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/logsift/logsift/pkg/stats"
)

const (
	// DefaultSize bounds the number of cached summaries.
	DefaultSize = 128
	// DefaultTTL is how long a cached summary stays valid.
	DefaultTTL = time.Hour
)

// SummaryCache caches analysis summaries keyed by file ID. Entries expire
// after the configured TTL; stale reads are misses, not errors.
type SummaryCache struct {
	lru *expirable.LRU[string, stats.Summary]
}

// New creates a SummaryCache. Non-positive size or ttl fall back to the
// defaults.
func New(size int, ttl time.Duration) *SummaryCache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SummaryCache{
		lru: expirable.NewLRU[string, stats.Summary](size, nil, ttl),
	}
}

// Get returns the cached summary for a file, if present and fresh.
func (c *SummaryCache) Get(fileID uuid.UUID) (stats.Summary, bool) {
	return c.lru.Get(fileID.String())
}

// Put caches the summary for a file, replacing any previous value.
func (c *SummaryCache) Put(fileID uuid.UUID, summary stats.Summary) {
	c.lru.Add(fileID.String(), summary)
}

// Invalidate drops the cached summary for a file. Invalidating a file that
// is not cached is a no-op.
func (c *SummaryCache) Invalidate(fileID uuid.UUID) {
	c.lru.Remove(fileID.String())
}
