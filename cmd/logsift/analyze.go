package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/logsift/logsift/pkg/cache"
	"github.com/logsift/logsift/pkg/classify"
	"github.com/logsift/logsift/pkg/config"
	"github.com/logsift/logsift/pkg/ingest"
	"github.com/logsift/logsift/pkg/stats"
	"github.com/logsift/logsift/pkg/store"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <logfile>",
		Short: "Ingest a log file and print its statistics summary",
		Long: `Read a log file, classify every line by level and timestamp, store the
entries, and print aggregate statistics: level counts, most frequent
errors and warnings, and the hourly time distribution.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	fileID, entries, err := ingestFile(cmd.Context(), cfg, s, args[0])
	if err != nil {
		return err
	}
	slog.Info("ingested log file", "path", args[0], "entries", len(entries))

	summary := stats.Summarize(entries)
	if err := s.PutSummary(fileID, summary); err != nil {
		return errors.Errorf("store summary: %w", err)
	}
	summaryCache(cfg).Put(fileID, summary)

	printSummary(summary)
	return nil
}

// ingestFile streams a log file through the classifier into the store in
// batches, and returns the registered file ID along with all entries.
func ingestFile(ctx context.Context, cfg *config.Config, s *store.DuckDBStore, path string) (fileID uuid.UUID, entries []classify.Entry, err error) {
	id, err := s.InsertFile(path)
	if err != nil {
		return id, nil, errors.Errorf("register file: %w", err)
	}

	classifier := classify.New()
	ch, err := ingest.Parse(ctx, path, classifier)
	if err != nil {
		return id, nil, err
	}

	var batch []classify.Entry
	for result := range ch {
		if result.Err != nil {
			return id, nil, errors.Errorf("read log: %w", result.Err)
		}
		entries = append(entries, *result.Value)
		batch = append(batch, *result.Value)

		if len(batch) >= cfg.BatchSize {
			if err := s.InsertEntryBatch(id, batch); err != nil {
				return id, nil, errors.Errorf("insert batch: %w", err)
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := s.InsertEntryBatch(id, batch); err != nil {
			return id, nil, errors.Errorf("insert batch: %w", err)
		}
	}
	return id, entries, nil
}

var processCache *cache.SummaryCache

// summaryCache returns the process-wide summary cache, creating it from the
// config on first use.
func summaryCache(cfg *config.Config) *cache.SummaryCache {
	if processCache == nil {
		processCache = cache.New(cfg.CacheSize, time.Duration(cfg.CacheTTLSec)*time.Second)
	}
	return processCache
}

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <logfile>",
		Short: "Print the stored statistics summary for a previously analyzed file",
		Args:  cobra.ExactArgs(1),
		RunE:  runSummary,
	}
	return cmd
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	f, err := s.FileByPath(args[0])
	if err != nil {
		return errors.Errorf("file not analyzed yet, run 'logsift analyze' first: %w", err)
	}

	if summary, ok := summaryCache(cfg).Get(f.ID); ok {
		printSummary(summary)
		return nil
	}

	summary, ok, err := s.GetSummary(f.ID)
	if err != nil {
		return errors.Errorf("load summary: %w", err)
	}
	if !ok {
		return errors.New("no summary stored for this file, run 'logsift analyze' first")
	}
	summaryCache(cfg).Put(f.ID, summary)

	printSummary(summary)
	return nil
}

func printSummary(summary stats.Summary) {
	fmt.Printf("Total entries: %d\n", summary.TotalEntries)
	fmt.Printf("  ERROR:   %d\n", summary.ErrorCount)
	fmt.Printf("  WARNING: %d\n", summary.WarningCount)
	fmt.Printf("  INFO:    %d\n", summary.InfoCount)
	fmt.Printf("  DEBUG:   %d\n", summary.DebugCount)

	if len(summary.TopErrors) > 0 {
		fmt.Println("\nTop errors:")
		printMessageCounts(summary.TopErrors)
	}
	if len(summary.TopWarnings) > 0 {
		fmt.Println("\nTop warnings:")
		printMessageCounts(summary.TopWarnings)
	}

	if len(summary.TimeDistribution) > 0 {
		fmt.Println("\nEntries per hour:")
		hours := make([]int, 0, len(summary.TimeDistribution))
		for h := range summary.TimeDistribution {
			if hour, err := strconv.Atoi(h); err == nil {
				hours = append(hours, hour)
			}
		}
		sort.Ints(hours)
		for _, h := range hours {
			fmt.Printf("  %02d:00  %d\n", h, summary.TimeDistribution[strconv.Itoa(h)])
		}
	}
}

func printMessageCounts(counts []stats.MessageCount) {
	for _, mc := range counts {
		fmt.Printf("  %5d (%5.2f%%)  %s\n", mc.Count, mc.Percentage, mc.Message)
	}
}

func filesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List analyzed log files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			files, err := s.Files()
			if err != nil {
				return errors.Errorf("list files: %w", err)
			}
			if len(files) == 0 {
				fmt.Fprintln(os.Stderr, "No files analyzed yet.")
				return nil
			}
			for _, f := range files {
				fmt.Printf("%s  %s  %s\n", f.ID, f.UploadedAt.Format(time.RFC3339), f.Path)
			}
			return nil
		},
	}
	return cmd
}
