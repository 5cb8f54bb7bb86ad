package classify

import (
	"regexp"
	"strings"
	"time"
)

// levelPatterns associates a level with its detection patterns. The ERROR set
// also covers FATAL, CRITICAL, and bare exception tokens.
type levelPatterns struct {
	level    Level
	patterns []*regexp.Regexp
}

// levelTable is tried in priority order: a line containing both ERROR and
// DEBUG tokens classifies as ERROR.
var levelTable = []levelPatterns{
	{LevelError, compileAll(`\berror\b`, `\bfatal\b`, `\bcritical\b`, `\bexception\b`)},
	{LevelWarning, compileAll(`\bwarning\b`, `\bwarn\b`)},
	{LevelInfo, compileAll(`\binfo\b`, `\binformation\b`)},
	{LevelDebug, compileAll(`\bdebug\b`)},
}

type timestampShape struct {
	re     *regexp.Regexp
	layout string
}

// timestampShapes is tried in order; the first regex that matches anywhere in
// the line wins. Bracketed variants come first so that message stripping
// removes the brackets together with the value.
var timestampShapes = []timestampShape{
	{regexp.MustCompile(`\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\]`), "2006-01-02 15:04:05"},
	{regexp.MustCompile(`\[\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\]`), "2006-01-02T15:04:05"},
	{regexp.MustCompile(`\[\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}\]`), "02/01/2006 15:04:05"},
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`), "2006-01-02 15:04:05"},
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`), "2006-01-02T15:04:05"},
	{regexp.MustCompile(`\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}`), "02/01/2006 15:04:05"},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+expr))
	}
	return compiled
}

// Classifier detects the severity level and timestamp of a single log line
// and derives a normalized message. It is stateless and safe for concurrent
// use; all pattern tables are compiled once at package init and shared.
type Classifier struct {
	levels     []levelPatterns
	timestamps []timestampShape
}

// New returns a Classifier backed by the package's precompiled pattern tables.
func New() *Classifier {
	return &Classifier{
		levels:     levelTable,
		timestamps: timestampShapes,
	}
}

// Classify analyzes one trimmed, non-empty line. It never fails: a line that
// matches no pattern yields LevelUnknown, a nil timestamp, and the line
// itself as the message.
func (c *Classifier) Classify(line string) Entry {
	level, matched := c.detectLevel(line)
	ts := c.extractTimestamp(line)

	message := line
	if ts != nil {
		for _, shape := range c.timestamps {
			message = removeFirst(message, shape.re)
		}
	}
	if matched {
		for _, lp := range c.levels {
			if lp.level != level {
				continue
			}
			for _, re := range lp.patterns {
				message = removeFirst(message, re)
			}
		}
	}
	message = strings.Join(strings.Fields(message), " ")
	if message == "" {
		message = line
	}

	return Entry{
		Level:     level,
		Timestamp: ts,
		Message:   message,
		Raw:       line,
	}
}

// detectLevel returns the first level whose pattern set matches the line.
func (c *Classifier) detectLevel(line string) (Level, bool) {
	for _, lp := range c.levels {
		for _, re := range lp.patterns {
			if re.MatchString(line) {
				return lp.level, true
			}
		}
	}
	return LevelUnknown, false
}

// extractTimestamp returns the parsed timestamp of the first matching shape.
// Once a shape's regex matches, a parse failure yields nil rather than
// falling through to later shapes: a malformed-but-matching substring means
// "no timestamp", not a retry.
func (c *Classifier) extractTimestamp(line string) *time.Time {
	for _, shape := range c.timestamps {
		match := shape.re.FindString(line)
		if match == "" {
			continue
		}
		match = strings.Trim(match, "[]")
		ts, err := time.Parse(shape.layout, match)
		if err != nil {
			return nil
		}
		return &ts
	}
	return nil
}

// removeFirst removes the first occurrence of re from s.
func removeFirst(s string, re *regexp.Regexp) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}
