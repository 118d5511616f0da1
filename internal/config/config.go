// Package config loads project settings from ideaforge.yml and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/ideaforge/internal/logging"
	"github.com/dusk-indust/ideaforge/internal/plan"
)

// Defaults applied by WithDefaults.
const (
	DefaultModel          = "claude-sonnet-4-20250514"
	DefaultBaseURL        = "https://api.anthropic.com"
	DefaultAddr           = ":8080"
	DefaultRequestTimeout = 2 * time.Minute
	DefaultSaveDebounce   = time.Second
)

// FileNames are the config file names tried in order.
var FileNames = []string{"ideaforge.yml", "ideaforge.yaml"}

// ProjectConfig holds settings loaded from ideaforge.yml.
type ProjectConfig struct {
	Model          string        `yaml:"model,omitempty"`
	BaseURL        string        `yaml:"baseURL,omitempty"`
	APIKey         string        `yaml:"apiKey,omitempty"`
	RequestTimeout time.Duration `yaml:"requestTimeout,omitempty"`

	// Addr is the HTTP listen address; MCPAddr, when set, also serves MCP
	// over streamable HTTP.
	Addr    string `yaml:"addr,omitempty"`
	MCPAddr string `yaml:"mcpAddr,omitempty"`

	// DBPath is the Kuzu database directory. Empty keeps ideas in memory.
	DBPath       string        `yaml:"dbPath,omitempty"`
	SaveDebounce time.Duration `yaml:"saveDebounce,omitempty"`

	// Parallel runs sections of the same dependency depth concurrently.
	Parallel    bool `yaml:"parallel,omitempty"`
	Parallelism int  `yaml:"parallelism,omitempty"`

	Log      logging.Config `yaml:"log,omitempty"`
	Defaults plan.Settings  `yaml:"defaults,omitempty"`
}

// Load attempts to read ideaforge.yml or ideaforge.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// ApplyEnv overrides fields from environment variables read through
// getenv. Unset or empty variables leave the field alone.
func (c *ProjectConfig) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.APIKey, "ANTHROPIC_API_KEY")
	set(&c.BaseURL, "ANTHROPIC_BASE_URL")
	set(&c.Model, "IDEAFORGE_MODEL")
	set(&c.DBPath, "IDEAFORGE_DB")
	set(&c.Addr, "IDEAFORGE_ADDR")
	set(&c.Log.Level, "IDEAFORGE_LOG_LEVEL")
}

// WithDefaults returns a copy with zero fields filled in.
func (c ProjectConfig) WithDefaults() ProjectConfig {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.SaveDebounce <= 0 {
		c.SaveDebounce = DefaultSaveDebounce
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = string(logging.FormatText)
	}
	c.Defaults = c.Defaults.WithDefaults()
	return c
}

// Validate rejects settings that cannot be used.
func (c ProjectConfig) Validate() error {
	if err := c.Defaults.WithDefaults().Validate(); err != nil {
		return fmt.Errorf("config: defaults: %w", err)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("config: parallelism must not be negative, got %d", c.Parallelism)
	}
	return nil
}

// Resolve loads the config from dir, applies the process environment and
// defaults, and validates the result.
func Resolve(dir string) (ProjectConfig, error) {
	cfg, err := Load(dir)
	if err != nil {
		return ProjectConfig{}, err
	}
	cfg.ApplyEnv(os.Getenv)
	out := cfg.WithDefaults()
	if err := out.Validate(); err != nil {
		return ProjectConfig{}, err
	}
	return out, nil
}
