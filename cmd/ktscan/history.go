package main

import (
	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/service"
	"github.com/spf13/cobra"
)

var (
	historyConfigPath string
	historyRoot       string
	historyFormat     string
	historyLimit      int
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show metrics recorded by past full runs",
		Long: `Print the metrics each full analysis appended to the history database,
newest first.

Examples:
  ktscan history
  ktscan history --limit 5 --format json`,
		RunE: runHistory,
	}

	cmd.Flags().StringVarP(&historyConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVar(&historyRoot, "root", "",
		"Project root (default from config)")
	cmd.Flags().StringVarP(&historyFormat, "format", "f", string(domain.OutputFormatText),
		"Output format: text, json, yaml")
	cmd.Flags().IntVarP(&historyLimit, "limit", "n", 10,
		"Number of entries to show (0 = all)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(historyFormat)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(historyConfigPath, ".", service.ConfigOverrides{Root: historyRoot})
	if err != nil {
		return err
	}

	store, err := service.OpenSQLiteHistoryStore(cmd.Context(), cfg.ResolvePath(cfg.Baseline.HistoryPath))
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	return service.NewOutputFormatter().WriteHistory(entries, format, cmd.OutOrStdout())
}
