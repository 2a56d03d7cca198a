package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"QRGANIZE_PROVIDER", "QRGANIZE_API_URL", "QRGANIZE_API_KEY",
		"QRGANIZE_MODEL", "QRGANIZE_LANGUAGE", "QRGANIZE_TIMEOUT_SECONDS",
		"QRGANIZE_DIRECT_OUTPUT", "QRGANIZE_SHOW_ERRORS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "ollama" || cfg.APIURL != "http://localhost:11434" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.DetailLevel != "medium" || cfg.AITimeoutSeconds != 120 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.DirectOutput || cfg.ShowDetailedErrors {
		t.Fatalf("boolean defaults should be off: %+v", cfg)
	}
	if cfg.Timeout() != 120*time.Second {
		t.Fatalf("Timeout = %v", cfg.Timeout())
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `aiProvider: gemini
apiUrl: https://generativelanguage.googleapis.com
model: gemini-pro
detailLevel: high
apiKeys:
  gemini: secret
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "gemini" || cfg.Model != "gemini-pro" || cfg.DetailLevel != "high" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.APIKey() != "secret" {
		t.Fatalf("APIKey = %q", cfg.APIKey())
	}
	// Untouched fields keep their defaults.
	if cfg.AITimeoutSeconds != 120 || cfg.OutputLanguage != "English" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("QRGANIZE_PROVIDER", "lmstudio")
	t.Setenv("QRGANIZE_API_KEY", "env-key")
	t.Setenv("QRGANIZE_TIMEOUT_SECONDS", "30")
	t.Setenv("QRGANIZE_DIRECT_OUTPUT", "yes")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "lmstudio" || cfg.APIKey() != "env-key" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.AITimeoutSeconds != 30 || !cfg.DirectOutput {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsBadDetailLevel(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("detailLevel: extreme\n"), 0o644)
	if _, err := Load(path); err == nil {
		t.Fatal("bad detailLevel should fail validation")
	}
}
