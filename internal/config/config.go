// Package config loads gtdlens configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"gtdlens/internal/batch"
	"gtdlens/internal/llm"
)

// Config holds all gtdlens configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Inference provider configuration
	LLM LLMConfig `yaml:"llm"`

	// Batching budgets
	Batching BatchingConfig `yaml:"batching"`

	// Analysis defaults
	Analysis AnalysisConfig `yaml:"analysis"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the inference capability.
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// BatchingConfig configures the per-level batch budgets.
type BatchingConfig struct {
	FolderBudget       int `yaml:"folder_budget"`
	ProjectBudget      int `yaml:"project_budget"`
	MaxTasksPerProject int `yaml:"max_tasks_per_project"`
	NoteLimit          int `yaml:"note_limit"`
}

// AnalysisConfig configures analysis defaults.
type AnalysisConfig struct {
	Depth string `yaml:"depth"` // folders, projects, complete
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	limits := batch.DefaultLimits()
	return &Config{
		Name:    "gtdlens",
		Version: "1.0.0",

		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o",
			BaseURL:  "https://api.openai.com/v1",
			Timeout:  "120s",
		},

		Batching: BatchingConfig{
			FolderBudget:       limits.FolderBudget,
			ProjectBudget:      limits.ProjectBudget,
			MaxTasksPerProject: limits.MaxTasksPerProject,
			NoteLimit:          limits.NoteLimit,
		},

		Analysis: AnalysisConfig{
			Depth: "complete",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment variables override whatever was read.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides in priority
// order: an explicit GTDLENS_API_KEY wins over provider-specific keys.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}
	if key := os.Getenv("GTDLENS_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if provider := os.Getenv("GTDLENS_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}
	if model := os.Getenv("GTDLENS_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if level := os.Getenv("GTDLENS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetLLMTimeout returns the inference timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// Limits returns the batching limits, falling back to defaults for any
// zero-valued budget.
func (c *Config) Limits() batch.Limits {
	limits := batch.DefaultLimits()
	if c.Batching.FolderBudget > 0 {
		limits.FolderBudget = c.Batching.FolderBudget
	}
	if c.Batching.ProjectBudget > 0 {
		limits.ProjectBudget = c.Batching.ProjectBudget
	}
	if c.Batching.MaxTasksPerProject > 0 {
		limits.MaxTasksPerProject = c.Batching.MaxTasksPerProject
	}
	if c.Batching.NoteLimit > 0 {
		limits.NoteLimit = c.Batching.NoteLimit
	}
	return limits
}

// LLMOptions maps the config onto provider options.
func (c *Config) LLMOptions() llm.Options {
	return llm.Options{
		Provider: c.LLM.Provider,
		APIKey:   c.LLM.APIKey,
		Model:    c.LLM.Model,
		BaseURL:  c.LLM.BaseURL,
		Timeout:  c.GetLLMTimeout(),
	}
}

// ValidProviders lists all supported inference providers.
var ValidProviders = []string{"openai", "gemini"}

// Validate validates the configuration. An empty API key is allowed; the
// pipeline then runs rule-based only.
func (c *Config) Validate() error {
	validProvider := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid inference provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}

	switch c.Analysis.Depth {
	case "folders", "projects", "complete", "":
	default:
		return fmt.Errorf("invalid analysis depth: %s (valid: folders, projects, complete)", c.Analysis.Depth)
	}
	return nil
}

// DefaultConfigPath returns the default path to .gtdlens/config.yaml.
func DefaultConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".gtdlens", "config.yaml")
	}
	return filepath.Join(cwd, ".gtdlens", "config.yaml")
}
