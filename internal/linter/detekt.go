// Package linter adapts the detekt static analyzer into a finding source with
// the same shape as the built-in analyzers.
package linter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/constants"
	"gopkg.in/yaml.v3"
)

// detektIssuesFound is the exit code detekt uses when the build fails on
// issues; the report is still complete.
const detektIssuesFound = 2

// Options configures the detekt adapter
type Options struct {
	// Binary is the detekt executable name or path
	Binary string

	// BaseDir relativizes reported paths so findings share keys with the
	// built-in analyzers
	BaseDir string

	Timeout time.Duration
	Runner  Runner
	Logger  *slog.Logger
}

// Detekt runs detekt and translates its SARIF report
type Detekt struct {
	binary  string
	baseDir string
	timeout time.Duration
	runner  Runner
	logger  *slog.Logger
}

// NewDetekt creates a detekt adapter
func NewDetekt(opts Options) *Detekt {
	d := &Detekt{
		binary:  opts.Binary,
		baseDir: opts.BaseDir,
		timeout: opts.Timeout,
		runner:  opts.Runner,
		logger:  opts.Logger,
	}
	if d.binary == "" {
		d.binary = "detekt"
	}
	if d.runner == nil {
		d.runner = OSRunner{}
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.baseDir != "" {
		if abs, err := filepath.Abs(d.baseDir); err == nil {
			d.baseDir = abs
		}
	}
	return d
}

// Run analyzes paths with detekt using configPath. Missing input paths are
// dropped with a warning; when none remain the result is empty, not an
// error. Failures are returned as LINTER_ERROR or CONFIGURATION_ERROR.
func (d *Detekt) Run(ctx context.Context, paths []string, configPath string) ([]domain.Finding, error) {
	if err := validateConfig(configPath); err != nil {
		return nil, err
	}

	valid := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			d.logger.Warn("skipping missing linter input", "path", p, "error", err)
			continue
		}
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		d.logger.Debug("no linter inputs remain, skipping detekt")
		return nil, nil
	}

	if _, err := d.runner.LookPath(d.binary); err != nil {
		return nil, domain.NewLinterError("detekt executable not found: "+d.binary, err)
	}

	report, err := os.CreateTemp("", "ktscan-detekt-*.sarif")
	if err != nil {
		return nil, domain.NewLinterError("cannot create report file", err)
	}
	reportPath := report.Name()
	report.Close()
	defer os.Remove(reportPath)

	args := []string{"--input", strings.Join(valid, ",")}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	args = append(args, "--report", "sarif:"+reportPath)

	runCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	d.logger.Debug("running detekt", "binary", d.binary, "inputs", len(valid))
	if _, err := d.runner.Run(runCtx, d.binary, args...); err != nil {
		var ec exitCoder
		if !errors.As(err, &ec) || ec.ExitCode() != detektIssuesFound {
			return nil, domain.NewLinterError("detekt failed", err)
		}
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, domain.NewLinterError("cannot read detekt report", err)
	}
	log, err := decodeSARIF(data)
	if err != nil {
		return nil, domain.NewLinterError("cannot decode detekt report", err)
	}

	findings := d.translate(log)
	d.logger.Debug("detekt finished", "findings", len(findings))
	return findings, nil
}

// validateConfig checks that a configured detekt file exists and is YAML
func validateConfig(configPath string) error {
	if configPath == "" {
		return nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return domain.NewConfigError("detekt config not readable: "+configPath, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.NewConfigError("detekt config is not valid YAML: "+configPath, err)
	}
	return nil
}

func (d *Detekt) translate(log *sarifLog) []domain.Finding {
	var findings []domain.Finding

	for _, run := range log.Runs {
		help := make(map[string]string, len(run.Tool.Driver.Rules))
		for _, r := range run.Tool.Driver.Rules {
			if r.HelpURI != "" {
				help[r.ID] = r.HelpURI
			}
		}

		for _, res := range run.Results {
			if len(res.Locations) == 0 {
				continue
			}
			loc := res.Locations[0].PhysicalLocation
			file := d.relativePath(uriToPath(loc.ArtifactLocation.URI))

			ruleSet, rule := splitRuleID(res.RuleID)
			category := CategoryForRuleSet(ruleSet)

			severity := res.Properties.Severity
			if severity == "" {
				severity = severityForLevel(res.Level)
			}
			debt := DefaultDebtMinutes
			if res.Properties.DebtMinutes != nil {
				debt = *res.Properties.DebtMinutes
			}

			f := domain.Finding{
				ID:          domain.NewFindingID(constants.LinterID, file, loc.Region.StartLine, category, rule),
				AnalyzerID:  constants.LinterID,
				Category:    category,
				Priority:    PriorityForSeverity(severity),
				Title:       rule,
				Description: res.Message.Text,
				File:        file,
				LineNumber:  loc.Region.StartLine,
				CodeSnippet: strings.TrimSpace(loc.Region.Snippet.Text),
				Effort:      EffortForDebt(debt),
			}
			if loc.Region.StartColumn > 0 {
				f.ColumnNumber = domain.IntPtr(loc.Region.StartColumn)
			}
			if uri, ok := help[res.RuleID]; ok {
				f.References = []string{uri}
			}
			if ruleSet != "" {
				f.Recommendation = fmt.Sprintf("See detekt rule %s/%s.", ruleSet, rule)
			}
			findings = append(findings, f)
		}
	}

	return findings
}

func (d *Detekt) relativePath(path string) string {
	if d.baseDir == "" || !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(d.baseDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
