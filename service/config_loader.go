package service

import (
	"fmt"
	"runtime"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/config"
)

// ConfigOverrides carries command-line values that take precedence over the
// configuration file. Zero values leave the file setting untouched.
type ConfigOverrides struct {
	Root             string
	Format           string
	ReportDir        string
	Analyzers        []string
	LinterEnabled    *bool
	LinterConfigPath string
	MaxGoroutines    int
}

// ConfigurationLoaderImpl loads, merges and validates configuration
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// Load reads configPath, or discovers a config file from targetPath upward
// when configPath is empty. Failures are configuration errors.
func (c *ConfigurationLoaderImpl) Load(configPath, targetPath string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(configPath, targetPath)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration", err)
	}
	return cfg, nil
}

// LoadWithOverrides loads configuration and applies command-line overrides
func (c *ConfigurationLoaderImpl) LoadWithOverrides(configPath string, o ConfigOverrides) (*config.Config, error) {
	cfg, err := c.Load(configPath, o.Root)
	if err != nil {
		return nil, err
	}
	merged := c.MergeConfig(cfg, o)
	if err := c.ValidateConfig(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// MergeConfig returns a copy of base with non-zero overrides applied
func (c *ConfigurationLoaderImpl) MergeConfig(base *config.Config, o ConfigOverrides) *config.Config {
	merged := *base

	if o.Root != "" {
		merged.Analysis.Root = o.Root
	}
	if o.Format != "" {
		merged.Output.Format = o.Format
	}
	if o.ReportDir != "" {
		merged.Output.ReportDir = o.ReportDir
	}
	if len(o.Analyzers) > 0 {
		merged.Analyzers.Enabled = append([]string(nil), o.Analyzers...)
	}
	if o.LinterEnabled != nil {
		merged.Linter.Enabled = *o.LinterEnabled
	}
	if o.LinterConfigPath != "" {
		merged.Linter.ConfigPath = o.LinterConfigPath
	}
	if o.MaxGoroutines > 0 {
		merged.Performance.MaxGoroutines = o.MaxGoroutines
	}

	return &merged
}

// ValidateConfig validates a merged configuration
func (c *ConfigurationLoaderImpl) ValidateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return domain.NewConfigError("invalid configuration", err)
	}
	if cfg.Analysis.Root == "" {
		return domain.NewConfigError("analysis.root cannot be empty", nil)
	}
	if limit := 16 * runtime.NumCPU(); cfg.Performance.MaxGoroutines > limit {
		return domain.NewConfigError(
			fmt.Sprintf("performance.max_goroutines (%d) exceeds %d", cfg.Performance.MaxGoroutines, limit), nil)
	}
	return nil
}
