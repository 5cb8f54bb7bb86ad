package labeler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/logsift/logsift/pkg/config"
	"github.com/logsift/logsift/pkg/patterns"
)

// Config holds configuration for the labeler.
type Config struct {
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// GroupInput represents a message group to be labeled.
type GroupInput struct {
	GroupID        int
	Representative string
	Count          int
	Samples        []string
}

// GroupLabel is the LLM-generated label for a message group.
type GroupLabel struct {
	GroupID     int    `json:"group_id"`
	SemanticID  string `json:"semantic_id"`
	Description string `json:"description"`
}

// FromGroups converts similarity groups into labeler inputs, sampling up to
// three raw lines per group.
func FromGroups(groups []patterns.Group) []GroupInput {
	inputs := make([]GroupInput, 0, len(groups))
	for i, g := range groups {
		samples := make([]string, 0, 3)
		for _, e := range g.Entries {
			if len(samples) == 3 {
				break
			}
			samples = append(samples, e.Raw)
		}
		inputs = append(inputs, GroupInput{
			GroupID:        i,
			Representative: g.Representative,
			Count:          g.Count,
			Samples:        samples,
		})
	}
	return inputs
}

// Label sends all groups to the LLM in a single call and returns semantic
// labels.
func Label(ctx context.Context, cfg Config, groups []GroupInput) ([]GroupLabel, error) {
	if len(groups) == 0 {
		return nil, nil
	}

	cfg.Model = config.ResolveModel(cfg.Model)

	prompt := buildPrompt(groups)
	resp, err := callLLM(ctx, cfg, prompt)
	if err != nil {
		return nil, fmt.Errorf("call LLM: %w", err)
	}

	labels, err := parseResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse LLM response: %w", err)
	}

	return labels, nil
}

func buildPrompt(groups []GroupInput) string {
	var b strings.Builder
	b.WriteString(`You are a log analysis expert. Given the following groups of similar error and warning messages, generate a short semantic_id (kebab-case, max 30 chars) and a one-line description for each group.

Output ONLY a JSON array with no markdown formatting, like:
[{"group_id": 0, "semantic_id": "connection-timeout", "description": "Database connections timing out"}]

Groups:
`)

	for _, g := range groups {
		fmt.Fprintf(&b, "\nGroup %d (%d occurrences): %q\n", g.GroupID, g.Count, g.Representative)
		if len(g.Samples) > 0 {
			b.WriteString("Samples:\n")
			for _, s := range g.Samples {
				fmt.Fprintf(&b, "  - %s\n", s)
			}
		}
	}

	return b.String()
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func callLLM(ctx context.Context, cfg Config, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", "https://openrouter.ai/api/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return chatResp.Choices[0].Message.Content, nil
}

func parseResponse(content string) ([]GroupLabel, error) {
	// Strip markdown code fences if present
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) >= 2 {
			lines = lines[1:]
			if len(lines) > 0 && strings.HasPrefix(lines[len(lines)-1], "```") {
				lines = lines[:len(lines)-1]
			}
		}
		content = strings.Join(lines, "\n")
	}

	var labels []GroupLabel
	if err := json.Unmarshal([]byte(content), &labels); err != nil {
		return nil, fmt.Errorf("JSON decode (content=%q): %w", content[:min(len(content), 200)], err)
	}
	return labels, nil
}
