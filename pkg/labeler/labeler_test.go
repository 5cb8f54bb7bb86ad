package labeler

import (
	"strings"
	"testing"

	"github.com/logsift/logsift/pkg/classify"
	"github.com/logsift/logsift/pkg/patterns"
)

func TestBuildPrompt(t *testing.T) {
	groups := []GroupInput{
		{
			GroupID:        0,
			Representative: "connection timeout after 5000 ms",
			Count:          12,
			Samples:        []string{"ERROR Connection timeout after 5000 ms", "ERROR Connection timeout after 3000 ms"},
		},
		{
			GroupID:        1,
			Representative: "disk full on /var",
			Count:          3,
			Samples:        []string{"WARNING Disk full on /var"},
		},
	}

	prompt := buildPrompt(groups)

	if prompt == "" {
		t.Fatal("expected non-empty prompt")
	}
	for _, want := range []string{
		"Group 0", "Group 1",
		"connection timeout after 5000 ms",
		"disk full on /var",
		"ERROR Connection timeout after 5000 ms",
		"12 occurrences",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing expected content %q", want)
		}
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{
			name:  "plain JSON array",
			input: `[{"group_id":0,"semantic_id":"connection-timeout","description":"Connections timing out"}]`,
			want:  1,
		},
		{
			name: "with markdown code fences",
			input: "```json\n" +
				`[{"group_id":0,"semantic_id":"connection-timeout","description":"Connections timing out"}]` +
				"\n```",
			want: 1,
		},
		{
			name: "multiple labels",
			input: `[
				{"group_id":0,"semantic_id":"connection-timeout","description":"Connections timing out"},
				{"group_id":1,"semantic_id":"disk-full","description":"Disk capacity exhausted"}
			]`,
			want: 2,
		},
		{
			name:    "invalid JSON",
			input:   `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels, err := parseResponse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(labels) != tt.want {
				t.Errorf("got %d labels, want %d", len(labels), tt.want)
			}
		})
	}
}

func TestFromGroups(t *testing.T) {
	groups := []patterns.Group{
		{
			Representative: "connection timeout",
			Count:          5,
			Entries: []classify.Entry{
				{LineNumber: 1, Raw: "raw 1"},
				{LineNumber: 2, Raw: "raw 2"},
				{LineNumber: 3, Raw: "raw 3"},
				{LineNumber: 4, Raw: "raw 4"},
				{LineNumber: 5, Raw: "raw 5"},
			},
		},
	}

	inputs := FromGroups(groups)
	if len(inputs) != 1 {
		t.Fatalf("expected 1 input, got %d", len(inputs))
	}
	if inputs[0].GroupID != 0 || inputs[0].Count != 5 {
		t.Errorf("unexpected input: %+v", inputs[0])
	}
	if len(inputs[0].Samples) != 3 {
		t.Errorf("expected samples capped at 3, got %d", len(inputs[0].Samples))
	}
}
