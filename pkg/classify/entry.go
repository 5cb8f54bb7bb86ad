package classify

import "time"

// Level is the severity classification of a log line.
type Level string

const (
	LevelError   Level = "ERROR"
	LevelWarning Level = "WARNING"
	LevelInfo    Level = "INFO"
	LevelDebug   Level = "DEBUG"
	// LevelUnknown marks lines where no level token matched.
	LevelUnknown Level = "UNKNOWN"
)

// Entry is a single classified log line.
//
// LineNumber is the 1-based position of the line in its source file; blank
// lines produce no Entry but still advance the counter, so LineNumber always
// reflects the original file position. Timestamp is nil when no recognized
// timestamp substring was found. Entries are immutable once produced.
type Entry struct {
	LineNumber int
	Level      Level
	Timestamp  *time.Time
	Message    string
	Raw        string
}
