package ingest

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/go-errors/errors"

	"github.com/logsift/logsift/pkg/classify"
)

// RawLine is a single line read from input, before classification.
type RawLine struct {
	LineNumber int
	Text       string
}

// Result wraps either a successfully produced value or a read error,
// similar to Result<T, E> in Rust.
type Result[T any] struct {
	Value T
	Err   error
}

// FileReader streams raw lines from a file path or stdin.
type FileReader struct {
	Path string
}

// Lines reads lines from the file (or stdin if Path is "-"). Every physical
// line is emitted, blank or not, so downstream consumers see true line
// numbers. Cancel the context to stop reading early; the goroutine exits
// promptly.
func (f *FileReader) Lines(ctx context.Context) (<-chan Result[*RawLine], error) {
	var file *os.File
	if f.Path == "-" {
		file = os.Stdin
	} else {
		var err error
		file, err = os.Open(f.Path)
		if err != nil {
			return nil, errors.Errorf("open log file: %w", err)
		}
	}

	ownFile := f.Path != "-"
	ch := make(chan Result[*RawLine], 100)
	go func() {
		defer close(ch)

		var fileErr error
		defer func() {
			if ownFile {
				if cerr := file.Close(); cerr != nil {
					fileErr = errors.Join(fileErr, errors.Errorf("close log file: %w", cerr))
				}
			}
			if fileErr != nil {
				select {
				case ch <- Result[*RawLine]{Err: fileErr}:
				case <-ctx.Done():
				}
			}
		}()

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			select {
			case ch <- Result[*RawLine]{Value: &RawLine{LineNumber: lineNum, Text: scanner.Text()}}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			fileErr = errors.Errorf("read log file: %w", err)
		}
	}()

	return ch, nil
}

// Parse streams classified entries from the file at path. Lines that are
// empty after trimming produce no entry but still advance the line counter,
// so entry line numbers reflect original file positions. Peak memory stays
// bounded by the channel buffer regardless of file size; callers batch
// entries before handing them to persistence.
func Parse(ctx context.Context, path string, classifier *classify.Classifier) (<-chan Result[*classify.Entry], error) {
	lines, err := (&FileReader{Path: path}).Lines(ctx)
	if err != nil {
		return nil, err
	}

	ch := make(chan Result[*classify.Entry], 100)
	go func() {
		defer close(ch)
		for lr := range lines {
			if lr.Err != nil {
				select {
				case ch <- Result[*classify.Entry]{Err: lr.Err}:
				case <-ctx.Done():
				}
				return
			}
			entry, ok := classifyLine(classifier, lr.Value.LineNumber, lr.Value.Text)
			if !ok {
				continue
			}
			select {
			case ch <- Result[*classify.Entry]{Value: entry}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// ParseText classifies the full text of a log file in memory and returns the
// ordered entry sequence. Blank input yields an empty slice, never an error.
func ParseText(text string, classifier *classify.Classifier) []classify.Entry {
	var entries []classify.Entry
	for i, line := range strings.Split(text, "\n") {
		entry, ok := classifyLine(classifier, i+1, line)
		if !ok {
			continue
		}
		entries = append(entries, *entry)
	}
	return entries
}

func classifyLine(classifier *classify.Classifier, lineNumber int, text string) (*classify.Entry, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false
	}
	entry := classifier.Classify(trimmed)
	entry.LineNumber = lineNumber
	return &entry, true
}
