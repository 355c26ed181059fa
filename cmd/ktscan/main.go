package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ludo-technologies/ktscan/internal/constants"
	"github.com/ludo-technologies/ktscan/internal/version"
	"github.com/spf13/cobra"
)

var (
	logVerbose bool
	logQuiet   bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exitErr *CheckExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(constants.ExitCodeAnalysisError)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ktscan",
		Short: "ktscan - Kotlin/Android code quality analyzer",
		Long: `ktscan analyzes Kotlin and Android sources for architecture, Compose,
state management, error handling, security and other quality issues.
It merges detekt findings, writes markdown reports and tracks a baseline
so regressions can be gated in CI.`,
		Version: version.GetVersion(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), logVerbose, logQuiet))
		},
	}

	rootCmd.PersistentFlags().BoolVar(&logVerbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&logQuiet, "quiet", "q", false, "Only log errors")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(baselineCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(analyzersCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// newLogger builds the process logger. Warnings are shown by default.
func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			full, _ := cmd.Flags().GetBool("full")
			if full {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "ktscan version %s\n", version.GetVersion())
			}
		},
	}

	cmd.Flags().Bool("full", false, "Show detailed version information")
	return cmd
}
