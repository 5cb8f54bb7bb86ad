package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/logsift/logsift/pkg/classify"
)

func TestParseTextEmpty(t *testing.T) {
	c := classify.New()
	for _, text := range []string{"", "\n\n\n", "   \n\t\n"} {
		entries := ParseText(text, c)
		if len(entries) != 0 {
			t.Errorf("ParseText(%q): expected no entries, got %d", text, len(entries))
		}
	}
}

func TestParseTextLineNumbering(t *testing.T) {
	c := classify.New()
	entries := ParseText("\nERROR boom", c)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].LineNumber != 2 {
		t.Errorf("expected line number 2, got %d", entries[0].LineNumber)
	}
	if entries[0].Level != classify.LevelError {
		t.Errorf("expected ERROR, got %s", entries[0].Level)
	}
}

func TestParseTextSkipsBlankLines(t *testing.T) {
	c := classify.New()
	text := "INFO first\n\n   \nWARN second\n"
	entries := ParseText(text, c)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].LineNumber != 1 || entries[1].LineNumber != 4 {
		t.Errorf("expected line numbers 1 and 4, got %d and %d",
			entries[0].LineNumber, entries[1].LineNumber)
	}
	// Line numbers are strictly increasing within one parse.
	for i := 1; i < len(entries); i++ {
		if entries[i].LineNumber <= entries[i-1].LineNumber {
			t.Errorf("line numbers not strictly increasing: %d then %d",
				entries[i-1].LineNumber, entries[i].LineNumber)
		}
	}
}

func TestParseStreamMatchesParseText(t *testing.T) {
	text := "2024-01-15 10:30:45 ERROR Database connection failed\n" +
		"\n" +
		"INFO all good\n" +
		"not classifiable\n"

	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	c := classify.New()
	want := ParseText(text, c)

	ch, err := Parse(context.Background(), path, c)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var got []classify.Entry
	for r := range ch {
		if r.Err != nil {
			t.Fatalf("stream error: %v", r.Err)
		}
		got = append(got, *r.Value)
	}

	if len(got) != len(want) {
		t.Fatalf("stream produced %d entries, ParseText produced %d", len(got), len(want))
	}
	for i := range got {
		if got[i].LineNumber != want[i].LineNumber ||
			got[i].Level != want[i].Level ||
			got[i].Message != want[i].Message ||
			got[i].Raw != want[i].Raw {
			t.Errorf("entry %d differs: stream=%+v text=%+v", i, got[i], want[i])
		}
	}
}

func TestParseMissingFile(t *testing.T) {
	c := classify.New()
	_, err := Parse(context.Background(), filepath.Join(t.TempDir(), "missing.log"), c)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFileReaderEmitsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	if err := os.WriteFile(path, []byte("a\n\nb\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ch, err := (&FileReader{Path: path}).Lines(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var lines []RawLine
	for r := range ch {
		if r.Err != nil {
			t.Fatal(r.Err)
		}
		lines = append(lines, *r.Value)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 raw lines, got %d", len(lines))
	}
	if lines[1].Text != "" || lines[1].LineNumber != 2 {
		t.Errorf("expected blank line 2, got %+v", lines[1])
	}
}
