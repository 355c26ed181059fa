package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/ktscan/internal/config"
	"github.com/ludo-technologies/ktscan/internal/constants"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a ktscan configuration file",
		Long: `Generate a documented ktscan configuration file with sensible defaults.

By default, creates .ktscan.yaml in the current directory. Use --interactive
for a guided setup wizard.

Examples:
  # Create .ktscan.yaml in current directory
  ktscan init

  # Library project with strict thresholds
  ktscan init --project kotlin-library --strictness strict

  # Overwrite existing file
  ktscan init --force

  # Interactive setup wizard
  ktscan init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with essential options only")
	cmd.Flags().String("project", string(config.ProjectTypeAndroidApp),
		"Project type: android-app, kotlin-library, multi-module")
	cmd.Flags().String("strictness", string(config.StrictnessStandard),
		"Threshold preset: relaxed, standard, strict")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")
	project, _ := cmd.Flags().GetString("project")
	strict, _ := cmd.Flags().GetString("strictness")

	projectType := config.ProjectType(project)
	if _, ok := config.GetProjectPresets()[projectType]; !ok {
		return fmt.Errorf("unknown project type %q", project)
	}
	strictness := config.Strictness(strict)
	if _, ok := config.GetStrictnessPresets()[strictness]; !ok {
		return fmt.Errorf("unknown strictness %q", strict)
	}

	if interactive {
		var err error
		projectType, strictness, configPath, err = runInteractiveSetup(configPath)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	var content string
	if minimal {
		content = config.GetMinimalConfigTemplate()
	} else {
		content = config.GetFullConfigTemplate(projectType, strictness)
	}

	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", displayPath)
	fmt.Fprintln(out, "\nRun 'ktscan analyze' to analyze your project.")

	return nil
}

func runInteractiveSetup(defaultConfigPath string) (config.ProjectType, config.Strictness, string, error) {
	fmt.Println()
	fmt.Println("ktscan Configuration Setup")
	fmt.Println("==========================")
	fmt.Println()

	projectTypes := []struct {
		Label string
		Value config.ProjectType
	}{
		{"Android application", config.ProjectTypeAndroidApp},
		{"Kotlin library", config.ProjectTypeKotlinLibrary},
		{"Multi-module Gradle build", config.ProjectTypeMultiModule},
	}

	projectPrompt := promptui.Select{
		Label: "What type of project is this?",
		Items: projectTypes,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "\U0001F449 {{ .Label | cyan }}",
			Inactive: "   {{ .Label | white }}",
			Selected: "\U00002705 {{ .Label | green }}",
		},
	}

	projectIdx, _, err := projectPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("project selection cancelled: %w", err)
	}

	fmt.Println()

	strictnessLevels := []struct {
		Label       string
		Description string
		Value       config.Strictness
	}{
		{"Standard (recommended)", "Balanced thresholds for most projects", config.StrictnessStandard},
		{"Relaxed", "Longer functions and classes allowed", config.StrictnessRelaxed},
		{"Strict", "Tight thresholds for CI enforcement", config.StrictnessStrict},
	}

	strictnessPrompt := promptui.Select{
		Label: "How strict should the analysis be?",
		Items: strictnessLevels,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
			Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
			Selected: "\U00002705 {{ .Label | green }}",
		},
	}

	strictnessIdx, _, err := strictnessPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("strictness selection cancelled: %w", err)
	}

	fmt.Println()

	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}

	outputPath, err := outputPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("output path input cancelled: %w", err)
	}
	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	fmt.Println()
	return projectTypes[projectIdx].Value, strictnessLevels[strictnessIdx].Value, outputPath, nil
}
