package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/ktscan/internal/constants"
	"github.com/spf13/viper"
)

// Default code-smell thresholds used by the complexity analyzer
const (
	// DefaultMaxFunctionLines is the longest function body accepted without a finding
	DefaultMaxFunctionLines = 60

	// DefaultMaxClassLines is the largest class body accepted without a finding
	DefaultMaxClassLines = 400

	// DefaultMaxComplexity is the highest cyclomatic complexity accepted without a finding
	DefaultMaxComplexity = 15
)

// Default locations, relative to the analysis root
const (
	DefaultReportDir         = ".ktscan/reports"
	DefaultBaselinePath      = ".ktscan/baseline.toml"
	DefaultHistoryPath       = ".ktscan/history.db"
	DefaultLinterBinary      = "detekt"
	DefaultLinterConfigPath  = "config/detekt/detekt.yml"
	DefaultLinterTimeoutSecs = 300
)

// Config represents the main configuration structure
type Config struct {
	// Analysis holds file discovery configuration
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`

	// Analyzers holds analyzer selection and thresholds
	Analyzers AnalyzersConfig `json:"analyzers" mapstructure:"analyzers" yaml:"analyzers"`

	// Linter holds external linter (detekt) configuration
	Linter LinterConfig `json:"linter" mapstructure:"linter" yaml:"linter"`

	// Output holds report and formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Baseline holds baseline and history persistence configuration
	Baseline BaselineConfig `json:"baseline" mapstructure:"baseline" yaml:"baseline"`

	// Performance holds concurrency configuration
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`
}

// AnalysisConfig holds general analysis configuration
type AnalysisConfig struct {
	// Root is the directory a full run discovers files under
	Root string `json:"root" mapstructure:"root" yaml:"root"`

	// Extensions lists the recognized source file extensions
	Extensions []string `json:"extensions" mapstructure:"extensions" yaml:"extensions"`

	// ExcludePatterns are globs (** and *) matched against root-relative paths
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// RespectGitignore also excludes paths matched by the root .gitignore
	RespectGitignore bool `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore"`

	// MaxFileSizeKB skips larger files (0 = no limit)
	MaxFileSizeKB int `json:"max_file_size_kb" mapstructure:"max_file_size_kb" yaml:"max_file_size_kb"`
}

// AnalyzersConfig holds configuration for the built-in analyzers
type AnalyzersConfig struct {
	// Enabled lists analyzer ids to register (empty = all)
	Enabled []string `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// Complexity holds thresholds for the complexity analyzer
	Complexity ComplexityConfig `json:"complexity" mapstructure:"complexity" yaml:"complexity"`
}

// ComplexityConfig holds code-smell thresholds
type ComplexityConfig struct {
	MaxFunctionLines int `json:"max_function_lines" mapstructure:"max_function_lines" yaml:"max_function_lines"`
	MaxClassLines    int `json:"max_class_lines" mapstructure:"max_class_lines" yaml:"max_class_lines"`
	MaxComplexity    int `json:"max_complexity" mapstructure:"max_complexity" yaml:"max_complexity"`
}

// LinterConfig holds configuration for the external linter pass
type LinterConfig struct {
	// Enabled controls whether detekt runs after the analyzers
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// Binary is the detekt executable name or path
	Binary string `json:"binary" mapstructure:"binary" yaml:"binary"`

	// ConfigPath is the detekt configuration file
	ConfigPath string `json:"config_path" mapstructure:"config_path" yaml:"config_path"`

	// TimeoutSeconds bounds the detekt invocation
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the stdout format: text, json, yaml, markdown
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// ReportDir is where markdown reports are written
	ReportDir string `json:"report_dir" mapstructure:"report_dir" yaml:"report_dir"`
}

// BaselineConfig holds configuration for regression tracking
type BaselineConfig struct {
	// Path is the TOML baseline file
	Path string `json:"path" mapstructure:"path" yaml:"path"`

	// HistoryPath is the SQLite history database
	HistoryPath string `json:"history_path" mapstructure:"history_path" yaml:"history_path"`
}

// PerformanceConfig holds concurrency configuration
type PerformanceConfig struct {
	// MaxGoroutines bounds per-file parallelism (0 = runtime.NumCPU())
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds the parallel phase (0 = no timeout)
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Root:       ".",
			Extensions: []string{".kt", ".kts", ".java"},
			ExcludePatterns: []string{
				"**/build/**",
				"**/.gradle/**",
				"**/.idea/**",
				"**/.git/**",
				"**/generated/**",
				"**/vendor/**",
				"**/.ktscan/**",
			},
			RespectGitignore: true,
			MaxFileSizeKB:    1024,
		},
		Analyzers: AnalyzersConfig{
			Enabled: []string{},
			Complexity: ComplexityConfig{
				MaxFunctionLines: DefaultMaxFunctionLines,
				MaxClassLines:    DefaultMaxClassLines,
				MaxComplexity:    DefaultMaxComplexity,
			},
		},
		Linter: LinterConfig{
			Enabled:        false,
			Binary:         DefaultLinterBinary,
			ConfigPath:     DefaultLinterConfigPath,
			TimeoutSeconds: DefaultLinterTimeoutSecs,
		},
		Output: OutputConfig{
			Format:    "text",
			ReportDir: DefaultReportDir,
		},
		Baseline: BaselineConfig{
			Path:        DefaultBaselinePath,
			HistoryPath: DefaultHistoryPath,
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  0,
			TimeoutSeconds: 0,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context.
// An empty configPath triggers discovery from targetPath upward.
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file
func loadConfigFromFile(configPath string) (*Config, error) {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	v.SetEnvPrefix(constants.EnvVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	config := DefaultConfig()
	bindDefaults(v, config)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// bindDefaults registers every scalar key so environment overrides apply
// even when no config file sets the key.
func bindDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("analysis.root", c.Analysis.Root)
	v.SetDefault("analysis.extensions", c.Analysis.Extensions)
	v.SetDefault("analysis.exclude_patterns", c.Analysis.ExcludePatterns)
	v.SetDefault("analysis.respect_gitignore", c.Analysis.RespectGitignore)
	v.SetDefault("analysis.max_file_size_kb", c.Analysis.MaxFileSizeKB)
	v.SetDefault("analyzers.enabled", c.Analyzers.Enabled)
	v.SetDefault("analyzers.complexity.max_function_lines", c.Analyzers.Complexity.MaxFunctionLines)
	v.SetDefault("analyzers.complexity.max_class_lines", c.Analyzers.Complexity.MaxClassLines)
	v.SetDefault("analyzers.complexity.max_complexity", c.Analyzers.Complexity.MaxComplexity)
	v.SetDefault("linter.enabled", c.Linter.Enabled)
	v.SetDefault("linter.binary", c.Linter.Binary)
	v.SetDefault("linter.config_path", c.Linter.ConfigPath)
	v.SetDefault("linter.timeout_seconds", c.Linter.TimeoutSeconds)
	v.SetDefault("output.format", c.Output.Format)
	v.SetDefault("output.report_dir", c.Output.ReportDir)
	v.SetDefault("baseline.path", c.Baseline.Path)
	v.SetDefault("baseline.history_path", c.Baseline.HistoryPath)
	v.SetDefault("performance.max_goroutines", c.Performance.MaxGoroutines)
	v.SetDefault("performance.timeout_seconds", c.Performance.TimeoutSeconds)
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for default configuration files in common locations.
// targetPath is the path being analyzed (file or directory).
func findDefaultConfig(targetPath string) string {
	candidates := constants.ConfigFileNames

	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			// If it's a file, start from its directory
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	// Fallback to current directory
	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, constants.ToolName), candidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", constants.ToolName)
		if config := searchConfigInDirectory(configDir, candidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv(constants.EnvVarPrefix + "_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if len(c.Analysis.Extensions) == 0 {
		return fmt.Errorf("analysis.extensions cannot be empty")
	}
	for _, ext := range c.Analysis.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("analysis.extensions entries must start with '.', got %q", ext)
		}
	}

	if c.Analysis.MaxFileSizeKB < 0 {
		return fmt.Errorf("analysis.max_file_size_kb must be >= 0, got %d", c.Analysis.MaxFileSizeKB)
	}

	cx := c.Analyzers.Complexity
	if cx.MaxFunctionLines < 1 {
		return fmt.Errorf("analyzers.complexity.max_function_lines must be >= 1, got %d", cx.MaxFunctionLines)
	}
	if cx.MaxClassLines < 1 {
		return fmt.Errorf("analyzers.complexity.max_class_lines must be >= 1, got %d", cx.MaxClassLines)
	}
	if cx.MaxComplexity < 1 {
		return fmt.Errorf("analyzers.complexity.max_complexity must be >= 1, got %d", cx.MaxComplexity)
	}

	if c.Linter.Enabled && c.Linter.Binary == "" {
		return fmt.Errorf("linter.binary cannot be empty when the linter is enabled")
	}
	if c.Linter.TimeoutSeconds < 0 {
		return fmt.Errorf("linter.timeout_seconds must be >= 0, got %d", c.Linter.TimeoutSeconds)
	}

	validFormats := map[string]bool{
		"text":     true,
		"json":     true,
		"yaml":     true,
		"markdown": true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, markdown", c.Output.Format)
	}

	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}
	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	return nil
}

// ResolvePath resolves a configured path against the analysis root.
// Absolute paths are returned unchanged.
func (c *Config) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Analysis.Root, path)
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("analysis", config.Analysis)
	v.Set("analyzers", config.Analyzers)
	v.Set("linter", config.Linter)
	v.Set("output", config.Output)
	v.Set("baseline", config.Baseline)
	v.Set("performance", config.Performance)

	return v.WriteConfig()
}
