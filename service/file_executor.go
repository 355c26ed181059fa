package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/config"
	"golang.org/x/sync/errgroup"
)

// FileError records one contained per-file failure
type FileError struct {
	File       string
	AnalyzerID string
	Err        error
}

// Error implements the error interface
func (e FileError) Error() string {
	if e.AnalyzerID == "" {
		return fmt.Sprintf("[%s] %v", e.File, e.Err)
	}
	return fmt.Sprintf("[%s/%s] %v", e.File, e.AnalyzerID, e.Err)
}

// Unwrap returns the underlying error
func (e FileError) Unwrap() error {
	return e.Err
}

// ExecutionReport is the outcome of the parallel per-file phase
type ExecutionReport struct {
	Findings      []domain.Finding
	Failures      []FileError
	FilesAnalyzed int
}

// Summary describes the failures in one line per entry
func (r *ExecutionReport) Summary() string {
	if len(r.Failures) == 0 {
		return "no failures"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d failures:\n", len(r.Failures))
	for i, f := range r.Failures {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, f.Error())
	}
	return sb.String()
}

// fileOutcome is the slot one worker owns
type fileOutcome struct {
	findings []domain.Finding
	failures []FileError
	done     bool
}

// FileExecutor runs analyzers over files in parallel. Files fan out over a
// bounded errgroup, analyzers run sequentially within a file.
type FileExecutor struct {
	maxConcurrency int
	timeout        time.Duration
	progress       domain.ProgressManager
	logger         *slog.Logger
}

// NewFileExecutor creates an executor bounded by runtime.NumCPU()
func NewFileExecutor() *FileExecutor {
	return &FileExecutor{
		maxConcurrency: runtime.NumCPU(),
		logger:         slog.Default(),
	}
}

// NewFileExecutorFromConfig creates an executor from performance settings.
// A zero goroutine limit means runtime.NumCPU(), a zero timeout means none.
func NewFileExecutorFromConfig(cfg *config.PerformanceConfig, pm domain.ProgressManager, logger *slog.Logger) *FileExecutor {
	e := NewFileExecutor()
	if cfg != nil {
		if cfg.MaxGoroutines > 0 {
			e.maxConcurrency = cfg.MaxGoroutines
		}
		if cfg.TimeoutSeconds > 0 {
			e.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
	}
	e.progress = pm
	if logger != nil {
		e.logger = logger
	}
	return e
}

// MaxConcurrency returns the worker limit
func (e *FileExecutor) MaxConcurrency() int {
	return e.maxConcurrency
}

// Execute analyzes every file with every applicable analyzer. Read failures,
// analyzer errors and analyzer panics are contained: they are logged,
// recorded in the report and contribute zero findings. The returned error is
// non-nil only when ctx ends before every file ran; the report then holds
// the partial results.
func (e *FileExecutor) Execute(
	ctx context.Context,
	files []domain.FileDescriptor,
	analyzers []domain.Analyzer,
	content domain.ContentProvider,
) (*ExecutionReport, error) {
	report := &ExecutionReport{}
	if len(files) == 0 || len(analyzers) == 0 {
		return report, nil
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var task domain.TaskProgress = &NoOpTaskProgress{}
	if e.progress != nil {
		task = e.progress.StartTask("Analyzing files", len(files))
	}
	defer task.Complete()

	// one slot per file; workers never share a slot
	outcomes := make([]fileOutcome, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrency)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if gCtx.Err() != nil {
				return nil
			}
			outcomes[i] = e.analyzeFile(file, analyzers, content)
			task.FileDone(file.RelativePath, len(outcomes[i].findings))
			return nil
		})
	}

	// workers always return nil
	_ = g.Wait()

	for _, o := range outcomes {
		if !o.done {
			continue
		}
		report.FilesAnalyzed++
		report.Findings = append(report.Findings, o.findings...)
		report.Failures = append(report.Failures, o.failures...)
	}

	if err := ctx.Err(); err != nil && report.FilesAnalyzed < len(files) {
		return report, fmt.Errorf("analysis stopped after %d of %d files: %w", report.FilesAnalyzed, len(files), err)
	}
	return report, nil
}

func (e *FileExecutor) analyzeFile(file domain.FileDescriptor, analyzers []domain.Analyzer, content domain.ContentProvider) fileOutcome {
	out := fileOutcome{done: true}

	text, err := content.ReadContent(file.AbsolutePath)
	if err != nil {
		e.logger.Error("skipping unreadable file", "file", file.RelativePath, "error", err)
		out.failures = append(out.failures, FileError{File: file.RelativePath, Err: err})
		return out
	}

	for _, a := range analyzers {
		findings, err := runAnalyzer(a, file, text)
		if err != nil {
			e.logger.Error("analyzer failed", "analyzer", a.ID(), "file", file.RelativePath, "error", err)
			out.failures = append(out.failures, FileError{File: file.RelativePath, AnalyzerID: a.ID(), Err: err})
			continue
		}
		out.findings = append(out.findings, findings...)
	}
	return out
}

// runAnalyzer applies one analyzer to the file. A panic in AppliesTo or
// Analyze becomes an ANALYZER_ERROR.
func runAnalyzer(a domain.Analyzer, file domain.FileDescriptor, content string) (findings []domain.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			err = domain.NewAnalyzerError(a.ID(), file.RelativePath, fmt.Errorf("panic: %v", r))
		}
	}()

	if !a.AppliesTo(file) {
		return nil, nil
	}
	findings, err = a.Analyze(file, content)
	if err != nil {
		return nil, domain.NewAnalyzerError(a.ID(), file.RelativePath, err)
	}
	return findings, nil
}
