package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/service"
	"github.com/spf13/cobra"
)

var (
	baselineConfigPath string
	baselineRoot       string
	baselineFormat     string
)

func baselineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Inspect or replace the stored baseline",
		Long: `The baseline records the identities of the findings of the last full
run. Later runs report findings missing from it as new and baseline
entries no longer reported as resolved.`,
	}

	cmd.PersistentFlags().StringVarP(&baselineConfigPath, "config", "c", "",
		"Path to config file")
	cmd.PersistentFlags().StringVar(&baselineRoot, "root", "",
		"Project root (default from config)")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored baseline summary",
		RunE:  runBaselineShow,
	}
	show.Flags().StringVarP(&baselineFormat, "format", "f", string(domain.OutputFormatText),
		"Output format: text, json, yaml")

	update := &cobra.Command{
		Use:   "update",
		Short: "Analyze the project and store the result as the new baseline",
		Long: `Run a full analysis and replace the baseline with its findings without
writing a report or a history entry. Use it to accept known findings.`,
		RunE: runBaselineUpdate,
	}

	cmd.AddCommand(show, update)
	return cmd
}

func runBaselineShow(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(baselineFormat)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(baselineConfigPath, ".", service.ConfigOverrides{Root: baselineRoot})
	if err != nil {
		return err
	}

	store := service.NewTOMLBaselineStore(cfg.ResolvePath(cfg.Baseline.Path))
	baseline, err := store.Load()
	if err != nil {
		return err
	}
	if baseline == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "No baseline at %s. Run 'ktscan analyze' to create one.\n", store.Path())
		return nil
	}

	switch format {
	case domain.OutputFormatJSON:
		return service.WriteJSON(cmd.OutOrStdout(), baseline)
	case domain.OutputFormatYAML:
		return service.WriteYAML(cmd.OutOrStdout(), baseline)
	default:
		writeBaselineText(cmd.OutOrStdout(), store.Path(), baseline)
		return nil
	}
}

func writeBaselineText(w io.Writer, path string, b *domain.Baseline) {
	fmt.Fprintf(w, "Baseline: %s\n", path)
	fmt.Fprintf(w, "Recorded: %s\n", b.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Files: %d\n", b.Metrics.TotalFiles)
	fmt.Fprintf(w, "Findings: %d\n", len(b.FindingIDs))
	for _, p := range domain.AllPriorities() {
		fmt.Fprintf(w, "  %-8s %d\n", p, b.Metrics.FindingsByPriority[p])
	}
}

func runBaselineUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(baselineConfigPath, ".", service.ConfigOverrides{Root: baselineRoot})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	pm := service.NewProgressManager(!logQuiet)
	defer pm.Close()

	eng, err := newEngine(ctx, cfg, pm, slog.Default())
	if err != nil {
		return err
	}
	defer eng.close()

	result, err := eng.analyze.Evaluate(ctx)
	if err != nil {
		return err
	}
	pm.Close()

	baseline := domain.NewBaseline(result.Aggregated, time.Now())
	if err := eng.baselines.Save(baseline); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated: %d findings across %d files (%s)\n",
		len(baseline.FindingIDs), result.FilesAnalyzed, eng.baselines.Path())
	return nil
}
