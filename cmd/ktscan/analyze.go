package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/service"
	"github.com/spf13/cobra"
)

var (
	analyzeFormat       string
	analyzeConfigPath   string
	analyzeRoot         string
	analyzeReportDir    string
	analyzeAnalyzers    []string
	analyzeLinter       bool
	analyzeLinterConfig string
	analyzeJobs         int
	analyzeNoProgress   bool
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [path...]",
		Short: "Analyze Kotlin sources and write a quality report",
		Long: `Analyze Kotlin/Android sources and write a markdown quality report.

Without paths the whole project root is analyzed, the baseline is replaced
and a history entry is recorded. With paths only those files (or the files
under those directories) are analyzed. With --analyzers only the named
analyzers run; include "detekt" to also run the external linter.

Examples:
  # Full run over the project
  ktscan analyze

  # Incremental run over changed files
  ktscan analyze app/src/main/kotlin/com/example/LoginViewModel.kt

  # Only security and naming rules, JSON to stdout
  ktscan analyze --analyzers security,naming --format json

  # Include detekt findings
  ktscan analyze --linter --linter-config config/detekt/detekt.yml`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeFormat, "format", "f", "",
		"Output format: text, json, yaml, markdown (default from config)")
	cmd.Flags().StringVarP(&analyzeConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVar(&analyzeRoot, "root", "",
		"Project root (default from config)")
	cmd.Flags().StringVarP(&analyzeReportDir, "output", "o", "",
		"Directory for markdown reports")
	cmd.Flags().StringSliceVarP(&analyzeAnalyzers, "analyzers", "a", nil,
		"Run only these analyzer ids (comma separated)")
	cmd.Flags().BoolVar(&analyzeLinter, "linter", false,
		"Run detekt after the built-in analyzers")
	cmd.Flags().StringVar(&analyzeLinterConfig, "linter-config", "",
		"detekt configuration file")
	cmd.Flags().IntVarP(&analyzeJobs, "jobs", "j", 0,
		"Parallel file workers (0 = number of CPUs)")
	cmd.Flags().BoolVar(&analyzeNoProgress, "no-progress", false,
		"Disable the progress bar")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	overrides := service.ConfigOverrides{
		Root:             analyzeRoot,
		Format:           analyzeFormat,
		ReportDir:        analyzeReportDir,
		LinterConfigPath: analyzeLinterConfig,
		MaxGoroutines:    analyzeJobs,
	}
	if cmd.Flags().Changed("linter") {
		overrides.LinterEnabled = &analyzeLinter
	}

	cfg, err := loadConfig(analyzeConfigPath, configTarget(args), overrides)
	if err != nil {
		return err
	}
	format, err := parseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	pm := service.NewProgressManager(format == domain.OutputFormatText && !analyzeNoProgress && !logQuiet)
	defer pm.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	eng, err := newEngine(ctx, cfg, pm, slog.Default())
	if err != nil {
		return err
	}
	defer eng.close()

	result, err := runAnalysis(ctx, eng, analyzeAnalyzers, args)
	if err != nil {
		return err
	}
	pm.Close()

	return service.NewOutputFormatter().WriteAnalysis(result, format, cmd.OutOrStdout())
}

// runAnalysis dispatches to the orchestrator entry point the arguments ask for
func runAnalysis(ctx context.Context, eng *engine, analyzerIDs, paths []string) (*domain.AnalysisResult, error) {
	switch {
	case len(analyzerIDs) > 0:
		return eng.analyze.RunFiltered(ctx, analyzerIDs, paths)
	case len(paths) > 0:
		return eng.analyze.RunIncremental(ctx, paths)
	default:
		return eng.analyze.RunFull(ctx)
	}
}
