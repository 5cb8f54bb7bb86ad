package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/logsift/logsift/pkg/classify"
	"github.com/logsift/logsift/pkg/stats"
)

// File is one ingested log file.
type File struct {
	ID         uuid.UUID
	Path       string
	UploadedAt time.Time
}

// LogEntry is a single stored log line. Timestamp is nil when no timestamp
// could be extracted from the line.
type LogEntry struct {
	ID         int64
	FileID     uuid.UUID
	LineNumber int
	Level      classify.Level
	Timestamp  *time.Time
	Message    string
	Raw        string
}

// QueryOpts specifies filters for querying log entries.
type QueryOpts struct {
	FileID uuid.UUID
	Level  classify.Level
	From   time.Time
	To     time.Time
	Limit  int
}

// Store persists log files, their entries, and analysis summaries.
type Store interface {
	// Init creates tables if they don't exist.
	Init() error
	// InsertFile registers a log file and returns its ID. Re-registering a
	// path replaces the previous file and its entries.
	InsertFile(path string) (uuid.UUID, error)
	// FileByPath returns the file registered under the given path.
	FileByPath(path string) (File, error)
	// Files returns all registered files, most recent first.
	Files() ([]File, error)
	// DeleteFile removes a file together with its entries and summary.
	DeleteFile(id uuid.UUID) error
	// InsertEntryBatch stores multiple log entries for a file.
	InsertEntryBatch(fileID uuid.UUID, entries []classify.Entry) error
	// QueryEntries returns entries matching the given options.
	QueryEntries(opts QueryOpts) ([]LogEntry, error)
	// LevelCounts returns the number of entries per level for a file.
	LevelCounts(fileID uuid.UUID) (map[classify.Level]int, error)
	// PutSummary stores the analysis summary for a file, replacing any
	// previous one.
	PutSummary(fileID uuid.UUID, summary stats.Summary) error
	// GetSummary returns the stored summary for a file. The bool reports
	// whether one exists.
	GetSummary(fileID uuid.UUID) (stats.Summary, bool, error)
	// Close releases resources.
	Close() error
}
