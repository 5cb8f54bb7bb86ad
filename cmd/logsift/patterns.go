package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"

	"github.com/logsift/logsift/pkg/classify"
	"github.com/logsift/logsift/pkg/ingest"
	"github.com/logsift/logsift/pkg/patterns"
)

func patternsCmd() *cobra.Command {
	var minSimilarity float64

	cmd := &cobra.Command{
		Use:   "patterns <logfile>",
		Short: "Extract recurring patterns from a log file's errors and warnings",
		Long: `Scan a log file's error and warning entries for recurring shapes: URLs,
IP addresses, HTTP status codes, SQL statements, API endpoints, and
exception types. Similar messages are grouped by textual similarity, and
message templates are mined from the repeated ones.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatterns(cmd.Context(), args[0], minSimilarity)
		},
	}
	cmd.Flags().Float64Var(&minSimilarity, "min-similarity", 0, "similarity threshold for grouping in [0,1] (default from config)")
	return cmd
}

func runPatterns(ctx context.Context, path string, minSimilarity float64) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if minSimilarity == 0 {
		minSimilarity = cfg.MinSimilarity
	}

	entries, err := readEntries(ctx, path)
	if err != nil {
		return err
	}

	result := patterns.Detect(entries, minSimilarity)

	fmt.Printf("Analyzed %d error/warning entries\n", result.AnalyzedEntries)

	if len(result.Patterns) > 0 {
		fmt.Printf("\nDetected patterns (%d):\n", result.TotalPatterns)
		for _, p := range result.Patterns {
			fmt.Printf("  %-22s %5d matches\n", p.Label, p.Count)
			for _, v := range p.TopValues {
				fmt.Printf("    %5d  %s\n", v.Count, v.Value)
			}
			for _, ex := range p.Examples {
				fmt.Printf("    e.g. %s\n", ex)
			}
		}
	}

	if len(result.Groups) > 0 {
		fmt.Printf("\nSimilar message groups (%d):\n", result.TotalGroups)
		for _, g := range result.Groups {
			fmt.Printf("  %5d× [%s] %s\n", g.Count, g.Level, g.Representative)
		}
	}

	templates, err := patterns.MineTemplates(entries)
	if err != nil {
		return errors.Errorf("mine templates: %w", err)
	}
	if len(templates) > 0 {
		fmt.Printf("\nMined templates (%d):\n", len(templates))
		for _, t := range templates {
			fmt.Printf("  %5d× %s\n", t.Count, t.Pattern)
		}
	}

	if result.TotalPatterns == 0 && result.TotalGroups == 0 && len(templates) == 0 {
		fmt.Fprintln(os.Stderr, "No recurring patterns found.")
	}
	return nil
}

// readEntries parses a log file into classified entries without touching
// the store.
func readEntries(ctx context.Context, path string) ([]classify.Entry, error) {
	classifier := classify.New()
	ch, err := ingest.Parse(ctx, path, classifier)
	if err != nil {
		return nil, err
	}

	var entries []classify.Entry
	for result := range ch {
		if result.Err != nil {
			return nil, errors.Errorf("read log: %w", result.Err)
		}
		entries = append(entries, *result.Value)
	}
	return entries, nil
}
