package main

import (
	"os"

	"github.com/go-errors/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/logsift/logsift/pkg/config"
	"github.com/logsift/logsift/pkg/store"
)

var (
	dbPath     string
	configPath string
)

func main() {
	// Load .env file if present (does not override existing env vars)
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "logsift",
		Short: "Log ingestion and analysis pipeline",
		Long:  "Logsift classifies log lines, aggregates statistics, extracts recurring patterns, and flags anomalous entries.",
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "", "path to DuckDB database (overrides config)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	root.AddCommand(analyzeCmd())
	root.AddCommand(summaryCmd())
	root.AddCommand(patternsCmd())
	root.AddCommand(anomaliesCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(filesCmd())
	root.AddCommand(labelCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, errors.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.DuckDBStore, error) {
	s, err := store.NewDuckDBStore(cfg.DatabasePath)
	if err != nil {
		return nil, errors.Errorf("store: %w", err)
	}
	if err := s.Init(); err != nil {
		_ = s.Close()
		return nil, errors.Errorf("store init: %w", err)
	}
	return s, nil
}
