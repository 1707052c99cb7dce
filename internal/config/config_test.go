package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{"OPENAI_API_KEY", "GEMINI_API_KEY", "GTDLENS_API_KEY", "GTDLENS_PROVIDER", "GTDLENS_MODEL", "GTDLENS_LOG_LEVEL"} {
		t.Setenv(v, "")
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "gtdlens", cfg.Name)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Empty(t, cfg.LLM.APIKey)
	assert.Equal(t, "complete", cfg.Analysis.Depth)
	assert.NoError(t, cfg.Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "gemini"
	cfg.LLM.Model = "gemini-2.5-flash"
	cfg.Batching.MaxTasksPerProject = 7
	cfg.Analysis.Depth = "projects"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini", loaded.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", loaded.LLM.Model)
	assert.Equal(t, 7, loaded.Batching.MaxTasksPerProject)
	assert.Equal(t, "projects", loaded.Analysis.Depth)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [not a mapping"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gk-123")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gk-123", cfg.LLM.APIKey)

	// An explicit gtdlens key wins over the provider-specific one.
	t.Setenv("GTDLENS_API_KEY", "gl-456")
	t.Setenv("GTDLENS_PROVIDER", "openai")
	t.Setenv("GTDLENS_MODEL", "gpt-4o-mini")
	t.Setenv("GTDLENS_LOG_LEVEL", "debug")

	cfg, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gl-456", cfg.LLM.APIKey)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.LLM.Provider = "anthropic"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Analysis.Depth = "everything"
	assert.Error(t, cfg.Validate())

	cfg.Analysis.Depth = ""
	assert.NoError(t, cfg.Validate())
}

func TestGetLLMTimeout(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 120*time.Second, cfg.GetLLMTimeout())

	cfg.LLM.Timeout = "45s"
	assert.Equal(t, 45*time.Second, cfg.GetLLMTimeout())

	cfg.LLM.Timeout = "not a duration"
	assert.Equal(t, 120*time.Second, cfg.GetLLMTimeout())
}

func TestLimitsFallBackToDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Batching.FolderBudget = 0
	cfg.Batching.NoteLimit = 99

	limits := cfg.Limits()
	assert.Equal(t, 20000, limits.FolderBudget)
	assert.Equal(t, 99, limits.NoteLimit)
}

func TestLLMOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "sk-test"
	cfg.LLM.Timeout = "30s"

	opts := cfg.LLMOptions()
	assert.Equal(t, "openai", opts.Provider)
	assert.Equal(t, "sk-test", opts.APIKey)
	assert.Equal(t, 30*time.Second, opts.Timeout)
}
