package main

import (
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/ludo-technologies/ktscan/app"
	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/constants"
	"github.com/ludo-technologies/ktscan/service"
	"github.com/spf13/cobra"
)

// CheckExitError carries a process exit code out of a command
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

var (
	checkFailOn     string
	checkFormat     string
	checkConfigPath string
	checkRoot       string
	checkLinter     bool
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Quality gate for CI/CD pipelines",
		Long: `Analyze the project and compare the findings with the stored baseline.
The gate fails when a finding that is not in the baseline has at least the
--fail-on priority. Nothing is written: run 'ktscan analyze' or
'ktscan baseline update' to accept the current state.

Exit codes:
  0 - No blocking new findings
  1 - New findings at or above --fail-on
  2 - Analysis error (configuration, discovery, corrupt baseline)

Examples:
  # Fail on new HIGH or CRITICAL findings
  ktscan check

  # Fail on anything new
  ktscan check --fail-on LOW

  # JSON output for machine parsing
  ktscan check --format json`,
		RunE:          runCheck,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&checkFailOn, "fail-on", string(domain.PriorityHigh),
		"Lowest priority that fails the gate: CRITICAL, HIGH, MEDIUM, LOW")
	cmd.Flags().StringVarP(&checkFormat, "format", "f", string(domain.OutputFormatText),
		"Output format: text, json, yaml")
	cmd.Flags().StringVarP(&checkConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVar(&checkRoot, "root", "",
		"Project root (default from config)")
	cmd.Flags().BoolVar(&checkLinter, "linter", false,
		"Run detekt as part of the gate")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	failOn, err := domain.ParsePriority(strings.ToUpper(checkFailOn))
	if err != nil {
		return analysisExit(err)
	}
	format, err := parseFormat(checkFormat)
	if err != nil {
		return analysisExit(err)
	}

	overrides := service.ConfigOverrides{Root: checkRoot}
	if len(args) > 0 && checkRoot == "" {
		overrides.Root = args[0]
	}
	if cmd.Flags().Changed("linter") {
		overrides.LinterEnabled = &checkLinter
	}
	cfg, err := loadConfig(checkConfigPath, configTarget(args), overrides)
	if err != nil {
		return analysisExit(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	eng, err := newEngine(ctx, cfg, service.NewProgressManager(false), slog.Default())
	if err != nil {
		return analysisExit(err)
	}
	defer eng.close()

	result, err := app.NewCheckUseCase(eng.analyze).Execute(ctx, app.CheckConfig{FailOn: failOn})
	if err != nil {
		return analysisExit(err)
	}

	if err := service.NewOutputFormatter().WriteCheck(result, format, cmd.OutOrStdout()); err != nil {
		return analysisExit(err)
	}
	if !result.Passed {
		return &CheckExitError{Code: result.ExitCode}
	}
	return nil
}

func analysisExit(err error) error {
	return &CheckExitError{Code: constants.ExitCodeAnalysisError, Message: err.Error()}
}
