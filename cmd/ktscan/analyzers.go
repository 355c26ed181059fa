package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ludo-technologies/ktscan/internal/analyzer"
	"github.com/ludo-technologies/ktscan/internal/constants"
	"github.com/ludo-technologies/ktscan/service"
	"github.com/spf13/cobra"
)

var analyzersConfigPath string

func analyzersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyzers",
		Short: "List the available analyzers",
		RunE:  runAnalyzers,
	}

	cmd.Flags().StringVarP(&analyzersConfigPath, "config", "c", "",
		"Path to config file")

	return cmd
}

func runAnalyzers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(analyzersConfigPath, ".", service.ConfigOverrides{})
	if err != nil {
		return err
	}

	enabled := make(map[string]bool, len(cfg.Analyzers.Enabled))
	for _, id := range cfg.Analyzers.Enabled {
		enabled[id] = true
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tENABLED")
	for _, a := range analyzer.DefaultRegistry(cfg.Analyzers).All() {
		on := len(enabled) == 0 || enabled[a.ID()]
		fmt.Fprintf(tw, "%s\t%s\t%t\n", a.ID(), a.Category(), on)
	}
	fmt.Fprintf(tw, "%s\t%s\t%t\n", constants.LinterID, "(external)", cfg.Linter.Enabled)
	return tw.Flush()
}
