package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ludo-technologies/ktscan/app"
	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/aggregator"
	"github.com/ludo-technologies/ktscan/internal/analyzer"
	"github.com/ludo-technologies/ktscan/internal/config"
	"github.com/ludo-technologies/ktscan/internal/discovery"
	"github.com/ludo-technologies/ktscan/internal/linter"
	"github.com/ludo-technologies/ktscan/service"
)

// engine bundles the collaborators a command needs. close releases the
// history database.
type engine struct {
	scanner   *discovery.Scanner
	analyze   *app.AnalyzeUseCase
	baselines *service.TOMLBaselineStore
	history   *service.SQLiteHistoryStore
	logger    *slog.Logger
}

func (e *engine) close() error {
	if e.history == nil {
		return nil
	}
	return e.history.Close()
}

// loadConfig reads the configuration for target and applies overrides. The
// analysis root is made absolute so configured paths resolve against it.
func loadConfig(configPath, target string, o service.ConfigOverrides) (*config.Config, error) {
	loader := service.NewConfigurationLoader()
	cfg, err := loader.Load(configPath, target)
	if err != nil {
		return nil, err
	}
	cfg = loader.MergeConfig(cfg, o)
	root, err := filepath.Abs(cfg.Analysis.Root)
	if err != nil {
		return nil, domain.NewConfigError("invalid analysis root", err)
	}
	cfg.Analysis.Root = root
	if err := loader.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEngine assembles the analysis pipeline from configuration
func newEngine(ctx context.Context, cfg *config.Config, pm domain.ProgressManager, logger *slog.Logger) (*engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root := cfg.Analysis.Root

	scanner, err := discovery.NewScanner(discovery.Options{
		BaseDir:          root,
		Extensions:       cfg.Analysis.Extensions,
		ExcludePatterns:  cfg.Analysis.ExcludePatterns,
		RespectGitignore: cfg.Analysis.RespectGitignore,
		MaxFileSizeKB:    cfg.Analysis.MaxFileSizeKB,
		Logger:           logger,
	})
	if err != nil {
		return nil, err
	}

	registry := analyzer.DefaultRegistry(cfg.Analyzers)
	if _, unknown := registry.Select(cfg.Analyzers.Enabled); len(unknown) > 0 {
		logger.Warn("ignoring unknown analyzers in configuration", "ids", strings.Join(unknown, ","))
	}

	baselines := service.NewTOMLBaselineStore(cfg.ResolvePath(cfg.Baseline.Path))
	history, err := service.OpenSQLiteHistoryStore(ctx, cfg.ResolvePath(cfg.Baseline.HistoryPath))
	if err != nil {
		// history is optional
		logger.Warn("history disabled", "error", err)
		history = nil
	}

	builder := app.NewAnalyzeUseCaseBuilder().
		WithRoot(root).
		WithEnabledAnalyzers(cfg.Analyzers.Enabled).
		WithRegistry(registry).
		WithDiscoverer(scanner).
		WithExecutor(service.NewFileExecutorFromConfig(&cfg.Performance, pm, logger)).
		WithContentProvider(service.NewFSContentProvider()).
		WithAggregator(aggregator.New()).
		WithReports(service.NewMarkdownReporter(), service.NewFileReportStore(cfg.ResolvePath(cfg.Output.ReportDir))).
		WithBaselineStore(baselines).
		WithLogger(logger)
	if history != nil {
		builder = builder.WithHistoryStore(history)
	}
	if cfg.Linter.Enabled {
		builder = builder.WithLinter(newDetekt(cfg, logger), cfg.ResolvePath(cfg.Linter.ConfigPath))
	}

	uc, err := builder.Build()
	if err != nil {
		if history != nil {
			err = errors.Join(err, history.Close())
		}
		return nil, err
	}

	return &engine{
		scanner:   scanner,
		analyze:   uc,
		baselines: baselines,
		history:   history,
		logger:    logger,
	}, nil
}

func newDetekt(cfg *config.Config, logger *slog.Logger) *linter.Detekt {
	return linter.NewDetekt(linter.Options{
		Binary:  cfg.Linter.Binary,
		BaseDir: cfg.Analysis.Root,
		Timeout: time.Duration(cfg.Linter.TimeoutSeconds) * time.Second,
		Logger:  logger,
	})
}

// parseFormat validates a --format value
func parseFormat(value string) (domain.OutputFormat, error) {
	switch f := domain.OutputFormat(strings.ToLower(value)); f {
	case domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatYAML, domain.OutputFormatMarkdown:
		return f, nil
	case "":
		return domain.OutputFormatText, nil
	default:
		return "", domain.NewInvalidInputError(
			fmt.Sprintf("unsupported format %q (use text, json, yaml or markdown)", value), nil)
	}
}

// configTarget picks the directory config discovery starts from
func configTarget(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
