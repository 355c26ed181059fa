package app

import (
	"context"
	"time"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/constants"
	"github.com/ludo-technologies/ktscan/internal/version"
)

// CheckConfig holds quality gate options
type CheckConfig struct {
	// FailOn is the lowest priority that blocks the gate
	FailOn domain.Priority
}

// DefaultCheckConfig blocks on HIGH and CRITICAL findings
func DefaultCheckConfig() CheckConfig {
	return CheckConfig{FailOn: domain.PriorityHigh}
}

// CheckUseCase is the CI quality gate: a full analysis compared against the
// stored baseline, without updating it
type CheckUseCase struct {
	analyze *AnalyzeUseCase
	now     func() time.Time
}

// NewCheckUseCase creates a check use case
func NewCheckUseCase(analyze *AnalyzeUseCase) *CheckUseCase {
	return &CheckUseCase{analyze: analyze, now: time.Now}
}

// Execute runs the gate. Without a baseline every finding counts as new.
// The returned error is set only when the analysis itself could not run.
func (uc *CheckUseCase) Execute(ctx context.Context, cfg CheckConfig) (*domain.CheckResult, error) {
	if cfg.FailOn.Severity() == 0 {
		return nil, domain.NewInvalidInputError("invalid fail-on priority "+string(cfg.FailOn), nil)
	}

	start := uc.now()
	result, err := uc.analyze.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	baseline, err := uc.analyze.LoadBaseline()
	if err != nil {
		return nil, err
	}

	var diff domain.BaselineDiff
	if baseline != nil {
		diff = baseline.Diff(result.Findings)
	} else {
		diff.New = result.Findings
	}

	blocking := 0
	for _, f := range diff.New {
		if f.Priority.Severity() >= cfg.FailOn.Severity() {
			blocking++
		}
	}

	exitCode := constants.ExitCodeSuccess
	if blocking > 0 {
		exitCode = constants.ExitCodeViolations
	}

	newFindings := diff.New
	if newFindings == nil {
		newFindings = []domain.Finding{}
	}

	return &domain.CheckResult{
		Passed:      blocking == 0,
		ExitCode:    exitCode,
		FailOn:      cfg.FailOn,
		NewFindings: newFindings,
		Resolved:    len(diff.Resolved),
		Summary: domain.CheckSummary{
			FilesAnalyzed:    result.FilesAnalyzed,
			TotalFindings:    len(result.Findings),
			NewFindings:      len(diff.New),
			BlockingFindings: blocking,
			BaselineFound:    baseline != nil,
		},
		Duration:    uc.now().Sub(start).Milliseconds(),
		GeneratedAt: uc.now().UTC().Format(time.RFC3339),
		Version:     version.GetVersion(),
	}, nil
}
