package config

import (
	"strconv"
	"strings"
)

// ProjectType represents the type of Kotlin project
type ProjectType string

const (
	ProjectTypeAndroidApp    ProjectType = "android-app"
	ProjectTypeKotlinLibrary ProjectType = "kotlin-library"
	ProjectTypeMultiModule   ProjectType = "multi-module"
)

// Strictness represents the analysis strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ProjectPreset holds discovery presets for different project types
type ProjectPreset struct {
	Extensions      []string
	ExcludePatterns []string
}

// StrictnessPreset holds threshold values for different strictness levels
type StrictnessPreset struct {
	MaxFunctionLines int
	MaxClassLines    int
	MaxComplexity    int
}

// GetProjectPresets returns presets for different project types
func GetProjectPresets() map[ProjectType]ProjectPreset {
	return map[ProjectType]ProjectPreset{
		ProjectTypeAndroidApp: {
			Extensions: []string{".kt", ".kts", ".java"},
			ExcludePatterns: []string{
				"**/build/**",
				"**/.gradle/**",
				"**/.idea/**",
				"**/generated/**",
				"**/.ktscan/**",
			},
		},
		ProjectTypeKotlinLibrary: {
			Extensions: []string{".kt", ".kts"},
			ExcludePatterns: []string{
				"**/build/**",
				"**/.gradle/**",
				"**/.ktscan/**",
			},
		},
		ProjectTypeMultiModule: {
			Extensions: []string{".kt", ".kts", ".java"},
			ExcludePatterns: []string{
				"**/build/**",
				"**/.gradle/**",
				"**/.idea/**",
				"**/generated/**",
				"**/buildSrc/**",
				"**/build-logic/**",
				"**/.ktscan/**",
			},
		},
	}
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			MaxFunctionLines: 100,
			MaxClassLines:    600,
			MaxComplexity:    25,
		},
		StrictnessStandard: {
			MaxFunctionLines: DefaultMaxFunctionLines,
			MaxClassLines:    DefaultMaxClassLines,
			MaxComplexity:    DefaultMaxComplexity,
		},
		StrictnessStrict: {
			MaxFunctionLines: 30,
			MaxClassLines:    250,
			MaxComplexity:    10,
		},
	}
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(projectType ProjectType, strictness Strictness) string {
	preset, ok := GetProjectPresets()[projectType]
	if !ok {
		preset = GetProjectPresets()[ProjectTypeAndroidApp]
	}
	strict, ok := GetStrictnessPresets()[strictness]
	if !ok {
		strict = GetStrictnessPresets()[StrictnessStandard]
	}

	return `# ktscan configuration

# ============================================================================
# FILE DISCOVERY
# ============================================================================
analysis:
  # Directory a full run scans
  root: .

  # Recognized source file extensions
  extensions:
` + formatYAMLList(preset.Extensions, 4) + `

  # Excluded paths (** matches any depth, * matches within one segment).
  # Matching directories are not descended into.
  exclude_patterns:
` + formatYAMLList(preset.ExcludePatterns, 4) + `

  # Also skip whatever the root .gitignore ignores
  respect_gitignore: true

  # Skip files larger than this (0 = no limit)
  max_file_size_kb: 1024

# ============================================================================
# ANALYZERS
# ============================================================================
analyzers:
  # Analyzer ids to register; empty means all built-in analyzers
  enabled: []

  complexity:
    max_function_lines: ` + strconv.Itoa(strict.MaxFunctionLines) + `
    max_class_lines: ` + strconv.Itoa(strict.MaxClassLines) + `
    max_complexity: ` + strconv.Itoa(strict.MaxComplexity) + `

# ============================================================================
# EXTERNAL LINTER (detekt)
# ============================================================================
linter:
  enabled: false
  binary: detekt
  config_path: config/detekt/detekt.yml
  timeout_seconds: 300

# ============================================================================
# OUTPUT
# ============================================================================
output:
  # stdout format: text, json, yaml, markdown
  format: text
  report_dir: .ktscan/reports

baseline:
  path: .ktscan/baseline.toml
  history_path: .ktscan/history.db

performance:
  # Parallel file workers (0 = number of CPUs)
  max_goroutines: 0
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return `# ktscan configuration (minimal)
analysis:
  root: .
  exclude_patterns:
    - "**/build/**"
    - "**/.gradle/**"

linter:
  enabled: false
  config_path: config/detekt/detekt.yml
`
}

// formatYAMLList formats a string slice as an indented YAML block sequence
func formatYAMLList(items []string, indent int) string {
	if len(items) == 0 {
		return strings.Repeat(" ", indent) + "[]"
	}

	pad := strings.Repeat(" ", indent)
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, pad+`- "`+item+`"`)
	}
	return strings.Join(lines, "\n")
}
