package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/ideaforge/internal/plan"
)

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	data := `
model: claude-test
dbPath: .ideaforge/db
saveDebounce: 500ms
requestTimeout: 30s
parallel: true
parallelism: 2
log:
  level: debug
  format: json
  file: logs/ideaforge.log
defaults:
  techStack: Go, SQLite
  teamSize: solo
  sprintLength: 1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ideaforge.yaml"), []byte(data), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "claude-test", cfg.Model)
	assert.Equal(t, ".ideaforge/db", cfg.DBPath)
	assert.Equal(t, 500*time.Millisecond, cfg.SaveDebounce)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, 2, cfg.Parallelism)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "logs/ideaforge.log", cfg.Log.File)
	assert.Equal(t, plan.TeamSize("solo"), cfg.Defaults.TeamSize)

	full := cfg.WithDefaults()
	assert.Equal(t, plan.ComplexityModerate, full.Defaults.Complexity)
	assert.Equal(t, "Go, SQLite", full.Defaults.TechStack)
}

func TestLoad_PrefersYML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ideaforge.yml"), []byte("model: first\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ideaforge.yaml"), []byte("model: second\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "first", cfg.Model)
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ideaforge.yml"), []byte("model: [unclosed\n"), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := &ProjectConfig{Model: "from-file", Addr: ":9000"}
	env := map[string]string{
		"ANTHROPIC_API_KEY": "sk-test",
		"IDEAFORGE_MODEL":   "from-env",
		"IDEAFORGE_DB":      "/var/lib/ideaforge",
	}
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "from-env", cfg.Model)
	assert.Equal(t, "/var/lib/ideaforge", cfg.DBPath)
	assert.Equal(t, ":9000", cfg.Addr)
}

func TestWithDefaults(t *testing.T) {
	cfg := ProjectConfig{}.WithDefaults()
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultSaveDebounce, cfg.SaveDebounce)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, plan.DefaultSettings(), cfg.Defaults)
	assert.Empty(t, cfg.DBPath)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, ProjectConfig{}.Validate())

	bad := ProjectConfig{Defaults: plan.Settings{TeamSize: "huge"}}
	assert.Error(t, bad.Validate())

	assert.Error(t, ProjectConfig{Parallelism: -1}.Validate())
}
