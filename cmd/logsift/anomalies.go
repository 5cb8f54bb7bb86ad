package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/logsift/logsift/pkg/anomaly"
)

func anomaliesCmd() *cobra.Command {
	var contamination float64

	cmd := &cobra.Command{
		Use:   "anomalies <logfile>",
		Short: "Score a log file's entries for anomalies",
		Long: `Score every entry of a log file with an isolation forest over its timing,
level, and message features, and report the entries that stand out from
the rest of the batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnomalies(cmd, args[0], contamination)
		},
	}
	cmd.Flags().Float64Var(&contamination, "contamination", 0, "expected anomalous fraction in (0,1) (default from config)")
	return cmd
}

func runAnomalies(cmd *cobra.Command, path string, contamination float64) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if contamination == 0 {
		contamination = cfg.Contamination
	}

	entries, err := readEntries(cmd.Context(), path)
	if err != nil {
		return err
	}

	detector := anomaly.NewDetector(contamination)
	summary := detector.Summarize(entries)

	if !summary.HasAnomalies {
		if summary.TotalEntries < anomaly.MinEntries {
			fmt.Fprintf(os.Stderr, "Not enough entries to score (%d, need %d).\n", summary.TotalEntries, anomaly.MinEntries)
		} else {
			fmt.Println("No anomalies detected.")
		}
		return nil
	}

	fmt.Printf("Found %d anomalies in %d entries (%.2f%%)\n\n",
		summary.AnomalyCount, summary.TotalEntries, summary.AnomalyPercentage)
	for _, a := range summary.TopAnomalies {
		ts := "-"
		if a.Timestamp != nil {
			ts = a.Timestamp.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("  line %-6d %-8s score=%.4f  %s  %s\n", a.LineNumber, a.Level, a.Score, ts, a.Message)
	}
	fmt.Printf("\n%s\n", summary.Recommendation)
	return nil
}
