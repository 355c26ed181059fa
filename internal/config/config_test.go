package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig should not return nil")
	}

	if config.Analyzers.Complexity.MaxFunctionLines != DefaultMaxFunctionLines {
		t.Errorf("Expected MaxFunctionLines %d, got %d", DefaultMaxFunctionLines, config.Analyzers.Complexity.MaxFunctionLines)
	}
	if config.Analyzers.Complexity.MaxComplexity != DefaultMaxComplexity {
		t.Errorf("Expected MaxComplexity %d, got %d", DefaultMaxComplexity, config.Analyzers.Complexity.MaxComplexity)
	}
	if config.Linter.Enabled {
		t.Error("Linter should be disabled by default")
	}
	if config.Output.Format != "text" {
		t.Errorf("Expected Format 'text', got '%s'", config.Output.Format)
	}
	if len(config.Analysis.ExcludePatterns) == 0 {
		t.Error("ExcludePatterns should not be empty")
	}
	found := false
	for _, p := range config.Analysis.ExcludePatterns {
		if p == "**/build/**" {
			found = true
		}
	}
	if !found {
		t.Error("build output should be excluded by default")
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}

func TestConfig_Validate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"no extensions", func(c *Config) { c.Analysis.Extensions = nil }, "extensions"},
		{"extension without dot", func(c *Config) { c.Analysis.Extensions = []string{"kt"} }, "start with '.'"},
		{"negative file size", func(c *Config) { c.Analysis.MaxFileSizeKB = -1 }, "max_file_size_kb"},
		{"zero function lines", func(c *Config) { c.Analyzers.Complexity.MaxFunctionLines = 0 }, "max_function_lines"},
		{"zero class lines", func(c *Config) { c.Analyzers.Complexity.MaxClassLines = 0 }, "max_class_lines"},
		{"zero complexity", func(c *Config) { c.Analyzers.Complexity.MaxComplexity = 0 }, "max_complexity"},
		{"linter without binary", func(c *Config) { c.Linter.Enabled = true; c.Linter.Binary = "" }, "linter.binary"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"negative goroutines", func(c *Config) { c.Performance.MaxGoroutines = -2 }, "max_goroutines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".ktscan.yaml")
	content := `
analysis:
  root: app
  exclude_patterns: ["**/gen/**"]
linter:
  enabled: true
  config_path: detekt.yml
analyzers:
  complexity:
    max_function_lines: 42
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Analysis.Root != "app" {
		t.Errorf("root = %q", cfg.Analysis.Root)
	}
	if len(cfg.Analysis.ExcludePatterns) != 1 || cfg.Analysis.ExcludePatterns[0] != "**/gen/**" {
		t.Errorf("exclude_patterns = %v", cfg.Analysis.ExcludePatterns)
	}
	if !cfg.Linter.Enabled || cfg.Linter.ConfigPath != "detekt.yml" {
		t.Errorf("linter = %+v", cfg.Linter)
	}
	if cfg.Analyzers.Complexity.MaxFunctionLines != 42 {
		t.Errorf("max_function_lines = %d", cfg.Analyzers.Complexity.MaxFunctionLines)
	}
	// Unset keys keep defaults
	if cfg.Analyzers.Complexity.MaxClassLines != DefaultMaxClassLines {
		t.Errorf("max_class_lines = %d", cfg.Analyzers.Complexity.MaxClassLines)
	}
	if cfg.Linter.Binary != DefaultLinterBinary {
		t.Errorf("binary = %q", cfg.Linter.Binary)
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".ktscan.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: xml\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for invalid output format")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("KTSCAN_PERFORMANCE_MAX_GOROUTINES", "3")

	cfg, err := loadConfigFromFile("")
	if err != nil {
		t.Fatalf("loadConfigFromFile failed: %v", err)
	}
	if cfg.Performance.MaxGoroutines != 3 {
		t.Errorf("max_goroutines = %d, want 3", cfg.Performance.MaxGoroutines)
	}
}

func TestLoadConfigWithTarget_Discovery(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "app", "src")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".ktscan.yaml"), []byte("output:\n  format: json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigWithTarget("", nested)
	if err != nil {
		t.Fatalf("LoadConfigWithTarget failed: %v", err)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected discovered config to set json format, got %q", cfg.Output.Format)
	}
}

func TestResolvePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.Root = "/work/app"

	if got := cfg.ResolvePath(".ktscan/baseline.toml"); got != filepath.Join("/work/app", ".ktscan/baseline.toml") {
		t.Errorf("ResolvePath relative = %q", got)
	}
	if got := cfg.ResolvePath("/abs/path"); got != "/abs/path" {
		t.Errorf("ResolvePath absolute = %q", got)
	}
}

func TestFullConfigTemplate_IsValidYAML(t *testing.T) {
	for _, pt := range []ProjectType{ProjectTypeAndroidApp, ProjectTypeKotlinLibrary, ProjectTypeMultiModule} {
		for _, s := range []Strictness{StrictnessRelaxed, StrictnessStandard, StrictnessStrict} {
			var parsed Config
			content := GetFullConfigTemplate(pt, s)
			if err := yaml.Unmarshal([]byte(content), &parsed); err != nil {
				t.Fatalf("%s/%s template is not valid YAML: %v", pt, s, err)
			}
			want := GetStrictnessPresets()[s].MaxComplexity
			if parsed.Analyzers.Complexity.MaxComplexity != want {
				t.Errorf("%s/%s max_complexity = %d, want %d", pt, s, parsed.Analyzers.Complexity.MaxComplexity, want)
			}
		}
	}
}

func TestMinimalConfigTemplate_Loads(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".ktscan.yaml")
	if err := os.WriteFile(path, []byte(GetMinimalConfigTemplate()), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Errorf("minimal template should load: %v", err)
	}
}
