// Package config loads the panel configuration from a YAML file with
// environment overrides. The configuration is read fresh at the start
// of every summarize/ask operation and is immutable while one runs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full settings record. Every field has a documented
// default so a missing file still yields a working local setup.
type Config struct {
	// Provider selects the AI backend: ollama, lmstudio, openai, gemini.
	Provider string `yaml:"aiProvider"`
	// APIURL is the provider base URL, or the full completions URL for
	// the openai provider.
	APIURL string `yaml:"apiUrl"`
	// APIKeys maps provider name to credential, so switching providers
	// does not lose keys.
	APIKeys map[string]string `yaml:"apiKeys"`
	Model   string            `yaml:"model"`
	// OutputLanguage is interpolated into prompts verbatim.
	OutputLanguage string `yaml:"outputLanguage"`
	// DetailLevel is low, medium, or high.
	DetailLevel      string `yaml:"detailLevel"`
	AITimeoutSeconds int    `yaml:"aiTimeoutSeconds"`
	// DirectOutput requests prose instead of structured key points.
	DirectOutput bool `yaml:"directOutput"`
	// ShowDetailedErrors surfaces raw statuses, fragments, and dumps,
	// and enables the diagnostics copy actions.
	ShowDetailedErrors bool `yaml:"showDetailedErrors"`
	// StreamOutput renders chunks as they arrive when the provider
	// supports it (direct mode only).
	StreamOutput bool `yaml:"streamOutput"`
	// ArchiveDir is where session snapshots are saved.
	ArchiveDir string `yaml:"archiveDir"`
}

// Default returns the built-in configuration: a local ollama server.
func Default() Config {
	return Config{
		Provider:         "ollama",
		APIURL:           "http://localhost:11434",
		APIKeys:          map[string]string{},
		Model:            "llama3.2",
		OutputLanguage:   "English",
		DetailLevel:      "medium",
		AITimeoutSeconds: 120,
		ArchiveDir:       defaultArchiveDir(),
	}
}

// DefaultPath is the config file location used when none is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "qrganize.yaml"
	}
	return filepath.Join(home, ".config", "qrganize", "config.yaml")
}

func defaultArchiveDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "qrganize-sessions"
	}
	return filepath.Join(home, ".config", "qrganize", "sessions")
}

// Load merges defaults, the YAML file at path (missing file is fine),
// and environment overrides, then validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults apply.
	default:
		return Config{}, err
	}

	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QRGANIZE_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("QRGANIZE_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("QRGANIZE_API_KEY"); v != "" {
		if cfg.APIKeys == nil {
			cfg.APIKeys = map[string]string{}
		}
		cfg.APIKeys[cfg.Provider] = v
	}
	if v := os.Getenv("QRGANIZE_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("QRGANIZE_LANGUAGE"); v != "" {
		cfg.OutputLanguage = v
	}
	if v := os.Getenv("QRGANIZE_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.AITimeoutSeconds = secs
		}
	}
	if v := os.Getenv("QRGANIZE_DIRECT_OUTPUT"); v != "" {
		cfg.DirectOutput = isTruthy(v)
	}
	if v := os.Getenv("QRGANIZE_SHOW_ERRORS"); v != "" {
		cfg.ShowDetailedErrors = isTruthy(v)
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func (c Config) validate() error {
	switch c.DetailLevel {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("detailLevel must be low, medium, or high, got %q", c.DetailLevel)
	}
	if c.AITimeoutSeconds <= 0 {
		return fmt.Errorf("aiTimeoutSeconds must be positive, got %d", c.AITimeoutSeconds)
	}
	return nil
}

// APIKey returns the credential for the configured provider.
func (c Config) APIKey() string {
	return c.APIKeys[c.Provider]
}

// Timeout returns the per-call deadline.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.AITimeoutSeconds) * time.Second
}
