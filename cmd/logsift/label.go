package main

import (
	"fmt"
	"os"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"

	"github.com/logsift/logsift/pkg/labeler"
	"github.com/logsift/logsift/pkg/patterns"
)

func labelCmd() *cobra.Command {
	var (
		model         string
		minSimilarity float64
	)

	cmd := &cobra.Command{
		Use:   "label <logfile>",
		Short: "Add semantic labels to a log file's message groups using an LLM",
		Long: `Group a log file's error and warning messages by similarity, then use an
LLM to generate a semantic ID and a one-line description for each group.

Requires OPENROUTER_API_KEY environment variable to be set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabel(cmd, args[0], model, minSimilarity)
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "LLM model to use (default: $MODEL_NAME or google/gemini-3-flash-preview)")
	cmd.Flags().Float64Var(&minSimilarity, "min-similarity", 0, "similarity threshold for grouping in [0,1] (default from config)")
	return cmd
}

func runLabel(cmd *cobra.Command, path, model string, minSimilarity float64) error {
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return errors.New("OPENROUTER_API_KEY environment variable is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if minSimilarity == 0 {
		minSimilarity = cfg.MinSimilarity
	}
	if model == "" {
		model = cfg.Model
	}

	entries, err := readEntries(cmd.Context(), path)
	if err != nil {
		return err
	}

	result := patterns.Detect(entries, minSimilarity)
	if len(result.Groups) == 0 {
		fmt.Fprintln(os.Stderr, "No message groups found to label.")
		return nil
	}

	inputs := labeler.FromGroups(result.Groups)
	fmt.Fprintf(os.Stderr, "Labeling %d groups...\n", len(inputs))

	labels, err := labeler.Label(cmd.Context(), labeler.Config{
		APIKey: apiKey,
		Model:  model,
	}, inputs)
	if err != nil {
		return errors.Errorf("label: %w", err)
	}
	if len(labels) == 0 {
		fmt.Fprintln(os.Stderr, "No labels returned by LLM.")
		return nil
	}

	fmt.Printf("%-6s %-25s %s\n", "GROUP", "SEMANTIC_ID", "DESCRIPTION")
	fmt.Println("------ ------------------------- ----------------------------------------")
	for _, l := range labels {
		fmt.Printf("%-6d %-25s %s\n", l.GroupID, l.SemanticID, l.Description)
	}
	return nil
}
