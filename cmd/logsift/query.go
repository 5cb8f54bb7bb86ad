package main

import (
	"fmt"
	"os"

	"github.com/go-errors/errors"
	"github.com/spf13/cobra"

	"github.com/logsift/logsift/pkg/classify"
	"github.com/logsift/logsift/pkg/querier"
	"github.com/logsift/logsift/pkg/store"
)

func queryCmd() *cobra.Command {
	var (
		filePath string
		level    string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query stored log entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(filePath, level, limit)
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "path of an analyzed log file (required)")
	cmd.Flags().StringVar(&level, "level", "", "filter by level (ERROR, WARNING, INFO, DEBUG, UNKNOWN)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of entries to return")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runQuery(filePath, level string, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	f, err := s.FileByPath(filePath)
	if err != nil {
		return errors.Errorf("file not analyzed yet, run 'logsift analyze' first: %w", err)
	}

	q := querier.NewQuerier(s)
	entries, err := q.Search(store.QueryOpts{
		FileID: f.ID,
		Level:  classify.Level(level),
		Limit:  limit,
	})
	if err != nil {
		return errors.Errorf("query: %w", err)
	}

	for _, e := range entries {
		fmt.Printf("%6d [%s] %s\n", e.LineNumber, e.Level, e.Raw)
	}
	fmt.Fprintf(os.Stderr, "\n%d entries found\n", len(entries))
	return nil
}
