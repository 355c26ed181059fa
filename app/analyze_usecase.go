package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/analyzer"
	"github.com/ludo-technologies/ktscan/internal/constants"
	"github.com/ludo-technologies/ktscan/service"
)

// FileExecutor runs analyzers over files
type FileExecutor interface {
	Execute(ctx context.Context, files []domain.FileDescriptor, analyzers []domain.Analyzer, content domain.ContentProvider) (*service.ExecutionReport, error)
}

// AnalyzeUseCase orchestrates discovery, per-file analysis, the external
// linter pass, aggregation and persistence. Only discovery errors abort a
// run; every other failure is logged and the run completes.
type AnalyzeUseCase struct {
	root             string
	enabled          []string
	linterConfigPath string

	registry   *analyzer.Registry
	files      *FileHelper
	executor   FileExecutor
	content    domain.ContentProvider
	linter     domain.LinterAdapter
	aggregator domain.Aggregator
	renderer   domain.ReportRenderer
	reports    domain.ReportStore
	baselines  domain.BaselineStore
	history    domain.HistoryStore
	logger     *slog.Logger
	now        func() time.Time
}

// runPlan describes one orchestrator invocation. persist writes the report;
// full runs that persist also replace the baseline and append history.
type runPlan struct {
	mode      domain.RunMode
	targets   []string
	analyzers []domain.Analyzer
	runLinter bool
	persist   bool
}

// RunFull analyzes every file under the root, writes the report, replaces
// the baseline and appends a history entry.
func (uc *AnalyzeUseCase) RunFull(ctx context.Context) (*domain.AnalysisResult, error) {
	return uc.run(ctx, runPlan{
		mode:      domain.RunModeFull,
		analyzers: uc.enabledAnalyzers(),
		runLinter: uc.linter != nil,
		persist:   true,
	})
}

// Evaluate runs a full analysis without writing the report, baseline or
// history. The quality gate uses it.
func (uc *AnalyzeUseCase) Evaluate(ctx context.Context) (*domain.AnalysisResult, error) {
	return uc.run(ctx, runPlan{
		mode:      domain.RunModeFull,
		analyzers: uc.enabledAnalyzers(),
		runLinter: uc.linter != nil,
	})
}

// RunIncremental analyzes only the given files and directories
func (uc *AnalyzeUseCase) RunIncremental(ctx context.Context, paths []string) (*domain.AnalysisResult, error) {
	return uc.run(ctx, runPlan{
		mode:      domain.RunModeIncremental,
		targets:   paths,
		analyzers: uc.enabledAnalyzers(),
		runLinter: uc.linter != nil,
		persist:   true,
	})
}

// RunFiltered runs only the named analyzers over paths (the whole root when
// paths is empty). Unknown ids are dropped with a warning. The external
// linter runs only when its id is among analyzerIDs. An empty selection
// returns an empty result without touching the filesystem.
func (uc *AnalyzeUseCase) RunFiltered(ctx context.Context, analyzerIDs []string, paths []string) (*domain.AnalysisResult, error) {
	start := uc.now()

	var ids []string
	runLinter := false
	for _, id := range analyzerIDs {
		if id == constants.LinterID {
			runLinter = true
			continue
		}
		ids = append(ids, id)
	}
	if runLinter && uc.linter == nil {
		uc.logger.Warn("external linter requested but not enabled", "id", constants.LinterID)
		runLinter = false
	}

	selected, unknown := uc.registry.Select(ids)
	for _, id := range unknown {
		uc.logger.Warn("ignoring unknown analyzer", "id", id, "known", uc.registry.IDs())
	}

	if len(selected) == 0 && !runLinter {
		uc.logger.Warn("no analyzers selected; nothing to do")
		return uc.emptyResult(domain.RunModeFiltered, start), nil
	}

	return uc.run(ctx, runPlan{
		mode:      domain.RunModeFiltered,
		targets:   paths,
		analyzers: selected,
		runLinter: runLinter,
		persist:   true,
	})
}

// Registry exposes the analyzer registry
func (uc *AnalyzeUseCase) Registry() *analyzer.Registry {
	return uc.registry
}

// Root returns the analysis root
func (uc *AnalyzeUseCase) Root() string {
	return uc.root
}

func (uc *AnalyzeUseCase) run(ctx context.Context, plan runPlan) (*domain.AnalysisResult, error) {
	start := uc.now()
	result := &domain.AnalysisResult{Mode: plan.mode}

	files, err := uc.discover(plan)
	if err != nil {
		return nil, err
	}
	uc.logger.Debug("discovered files", "mode", plan.mode, "count", len(files))

	var findings []domain.Finding
	if len(plan.analyzers) > 0 {
		report, err := uc.executor.Execute(ctx, files, plan.analyzers, uc.content)
		if err != nil {
			uc.logger.Error("analysis incomplete", "error", err)
			result.Errors = append(result.Errors, err.Error())
		}
		if report != nil {
			findings = report.Findings
			result.FilesAnalyzed = report.FilesAnalyzed
			for _, f := range report.Failures {
				result.Errors = append(result.Errors, f.Error())
			}
		}
	} else {
		result.FilesAnalyzed = len(files)
	}

	if plan.runLinter {
		lintFindings, err := uc.runLinter(ctx, plan, files)
		if err != nil {
			uc.logger.Error("external linter failed", "error", err)
			result.Errors = append(result.Errors, err.Error())
		}
		findings = append(findings, lintFindings...)
	}

	aggregated := uc.aggregator.Aggregate(findings)
	result.Aggregated = aggregated
	result.Findings = aggregated.Findings
	result.Metrics = aggregated.Metrics

	if plan.persist {
		uc.persist(ctx, plan, result, start)
	}

	result.ExecutionTime = uc.now().Sub(start)
	uc.logger.Info("analysis complete",
		"mode", plan.mode,
		"files", result.FilesAnalyzed,
		"findings", len(result.Findings),
		"duration", result.ExecutionTime)
	return result, nil
}

// discover resolves the plan targets. Without targets, full and filtered
// runs cover the root while an incremental run covers nothing.
func (uc *AnalyzeUseCase) discover(plan runPlan) ([]domain.FileDescriptor, error) {
	if len(plan.targets) == 0 && plan.mode != domain.RunModeIncremental {
		return uc.files.CollectRoot(uc.root)
	}
	files, _, err := uc.files.ResolveTargets(plan.targets)
	return files, err
}

func (uc *AnalyzeUseCase) runLinter(ctx context.Context, plan runPlan, files []domain.FileDescriptor) ([]domain.Finding, error) {
	paths := []string{uc.root}
	if plan.mode == domain.RunModeIncremental || len(plan.targets) > 0 {
		paths = AbsolutePaths(files)
		if len(paths) == 0 {
			return nil, nil
		}
	}
	return uc.linter.Run(ctx, paths, uc.linterConfigPath)
}

// persist writes the report and, for full runs, the baseline and history.
// Failures are logged and recorded on the result; they never fail the run.
func (uc *AnalyzeUseCase) persist(ctx context.Context, plan runPlan, result *domain.AnalysisResult, start time.Time) {
	recordErr := func(msg string, err error) {
		uc.logger.Error(msg, "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", msg, err))
	}

	var previous *domain.Baseline
	if uc.baselines != nil {
		b, err := uc.baselines.Load()
		if err != nil {
			recordErr("failed to load baseline", err)
		}
		previous = b
	}

	if uc.reports != nil && uc.renderer != nil {
		result.ExecutionTime = uc.now().Sub(start)
		path, err := uc.reports.Save(reportName(plan.mode), uc.renderer.Render(result, previous))
		if err != nil {
			recordErr("failed to write report", err)
		} else {
			result.ReportPath = path
		}
	}

	if plan.mode != domain.RunModeFull {
		return
	}

	now := uc.now()
	if uc.baselines != nil {
		if err := uc.baselines.Save(domain.NewBaseline(result.Aggregated, now)); err != nil {
			recordErr("failed to save baseline", err)
		}
	}
	if uc.history != nil {
		entry := domain.HistoryEntry{
			Timestamp:     now,
			Mode:          plan.mode,
			FilesAnalyzed: result.FilesAnalyzed,
			DurationMs:    now.Sub(start).Milliseconds(),
			Metrics:       result.Metrics,
			Snapshot:      *result.Aggregated,
		}
		if err := uc.history.Append(ctx, entry); err != nil {
			recordErr("failed to append history", err)
		}
	}
}

// LoadBaseline returns the stored baseline, or nil when none exists
func (uc *AnalyzeUseCase) LoadBaseline() (*domain.Baseline, error) {
	if uc.baselines == nil {
		return nil, nil
	}
	return uc.baselines.Load()
}

// RecentHistory returns up to limit history entries, newest first
func (uc *AnalyzeUseCase) RecentHistory(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if uc.history == nil {
		return nil, domain.NewConfigError("history store is not configured", nil)
	}
	return uc.history.Recent(ctx, limit)
}

func (uc *AnalyzeUseCase) enabledAnalyzers() []domain.Analyzer {
	if len(uc.enabled) == 0 {
		return uc.registry.All()
	}
	selected, unknown := uc.registry.Select(uc.enabled)
	for _, id := range unknown {
		uc.logger.Warn("ignoring unknown analyzer in configuration", "id", id)
	}
	return selected
}

func (uc *AnalyzeUseCase) emptyResult(mode domain.RunMode, start time.Time) *domain.AnalysisResult {
	aggregated := uc.aggregator.Aggregate(nil)
	return &domain.AnalysisResult{
		Mode:          mode,
		Findings:      aggregated.Findings,
		Metrics:       aggregated.Metrics,
		Aggregated:    aggregated,
		ExecutionTime: uc.now().Sub(start),
	}
}

func reportName(mode domain.RunMode) string {
	switch mode {
	case domain.RunModeIncremental:
		return constants.ReportNameIncremental
	case domain.RunModeFiltered:
		return constants.ReportNameFiltered
	default:
		return constants.ReportNameFull
	}
}

// AnalyzeUseCaseBuilder builds an AnalyzeUseCase
type AnalyzeUseCaseBuilder struct {
	uc         AnalyzeUseCase
	discoverer domain.FileDiscoverer
}

// NewAnalyzeUseCaseBuilder creates a new builder
func NewAnalyzeUseCaseBuilder() *AnalyzeUseCaseBuilder {
	return &AnalyzeUseCaseBuilder{}
}

// WithRoot sets the analysis root
func (b *AnalyzeUseCaseBuilder) WithRoot(root string) *AnalyzeUseCaseBuilder {
	b.uc.root = root
	return b
}

// WithEnabledAnalyzers restricts full and incremental runs to ids (empty = all)
func (b *AnalyzeUseCaseBuilder) WithEnabledAnalyzers(ids []string) *AnalyzeUseCaseBuilder {
	b.uc.enabled = ids
	return b
}

// WithRegistry sets the analyzer registry
func (b *AnalyzeUseCaseBuilder) WithRegistry(r *analyzer.Registry) *AnalyzeUseCaseBuilder {
	b.uc.registry = r
	return b
}

// WithDiscoverer sets the file discoverer
func (b *AnalyzeUseCaseBuilder) WithDiscoverer(d domain.FileDiscoverer) *AnalyzeUseCaseBuilder {
	b.discoverer = d
	return b
}

// WithExecutor sets the per-file executor
func (b *AnalyzeUseCaseBuilder) WithExecutor(e FileExecutor) *AnalyzeUseCaseBuilder {
	b.uc.executor = e
	return b
}

// WithContentProvider sets the content provider
func (b *AnalyzeUseCaseBuilder) WithContentProvider(p domain.ContentProvider) *AnalyzeUseCaseBuilder {
	b.uc.content = p
	return b
}

// WithLinter enables the external linter pass
func (b *AnalyzeUseCaseBuilder) WithLinter(l domain.LinterAdapter, configPath string) *AnalyzeUseCaseBuilder {
	b.uc.linter = l
	b.uc.linterConfigPath = configPath
	return b
}

// WithAggregator sets the aggregator
func (b *AnalyzeUseCaseBuilder) WithAggregator(a domain.Aggregator) *AnalyzeUseCaseBuilder {
	b.uc.aggregator = a
	return b
}

// WithReports sets the report renderer and store
func (b *AnalyzeUseCaseBuilder) WithReports(r domain.ReportRenderer, s domain.ReportStore) *AnalyzeUseCaseBuilder {
	b.uc.renderer = r
	b.uc.reports = s
	return b
}

// WithBaselineStore sets the baseline store
func (b *AnalyzeUseCaseBuilder) WithBaselineStore(s domain.BaselineStore) *AnalyzeUseCaseBuilder {
	b.uc.baselines = s
	return b
}

// WithHistoryStore sets the history store
func (b *AnalyzeUseCaseBuilder) WithHistoryStore(s domain.HistoryStore) *AnalyzeUseCaseBuilder {
	b.uc.history = s
	return b
}

// WithLogger sets the logger
func (b *AnalyzeUseCaseBuilder) WithLogger(l *slog.Logger) *AnalyzeUseCaseBuilder {
	b.uc.logger = l
	return b
}

// WithClock overrides time.Now
func (b *AnalyzeUseCaseBuilder) WithClock(now func() time.Time) *AnalyzeUseCaseBuilder {
	b.uc.now = now
	return b
}

// Build validates the required collaborators and fills defaults for the rest
func (b *AnalyzeUseCaseBuilder) Build() (*AnalyzeUseCase, error) {
	var missing []error
	if b.uc.root == "" {
		missing = append(missing, errors.New("root"))
	}
	if b.uc.registry == nil {
		missing = append(missing, errors.New("analyzer registry"))
	}
	if b.discoverer == nil {
		missing = append(missing, errors.New("file discoverer"))
	}
	if b.uc.executor == nil {
		missing = append(missing, errors.New("file executor"))
	}
	if b.uc.aggregator == nil {
		missing = append(missing, errors.New("aggregator"))
	}
	if len(missing) > 0 {
		return nil, domain.NewInvalidInputError("analyze use case is missing required collaborators", errors.Join(missing...))
	}

	uc := b.uc
	if uc.content == nil {
		uc.content = service.NewFSContentProvider()
	}
	if uc.logger == nil {
		uc.logger = slog.Default()
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	uc.files = NewFileHelper(b.discoverer, uc.logger)
	return &uc, nil
}
