package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultUsesXDGDirs(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))

	cfg := Default()
	if cfg.DBPath != filepath.Join(dir, "data", "favtasks", "favtasks.db") {
		t.Errorf("unexpected DBPath %q", cfg.DBPath)
	}
	if cfg.LogFile != filepath.Join(dir, "state", "favtasks", "favtasks.log") {
		t.Errorf("unexpected LogFile %q", cfg.LogFile)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("unexpected BaseURL %q", cfg.BaseURL)
	}
	if cfg.Timeout.Duration != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.Timeout.Duration)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("expected no config path, got %q", cfg.Path)
	}
	if cfg.PostLimit != DefaultPostLimit {
		t.Errorf("expected default post limit, got %d", cfg.PostLimit)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
base_url = "http://localhost:3000"
timeout = "2s"
log_level = "debug"
post_limit = 5
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "http://localhost:3000" {
		t.Errorf("unexpected BaseURL %q", cfg.BaseURL)
	}
	if cfg.Timeout.Duration != 2*time.Second {
		t.Errorf("unexpected timeout %v", cfg.Timeout.Duration)
	}
	if cfg.LogLevel != "debug" || cfg.PostLimit != 5 {
		t.Errorf("unexpected level/limit %q/%d", cfg.LogLevel, cfg.PostLimit)
	}
	if cfg.Theme != "light" {
		t.Errorf("unexpected theme %q", cfg.Theme)
	}
	if cfg.DBPath == "" {
		t.Error("expected DBPath default to survive")
	}
	if cfg.Path != path {
		t.Errorf("expected Path %q, got %q", path, cfg.Path)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad duration", `timeout = "soon"`, "parse config"},
		{"zero timeout", `timeout = "0s"`, "timeout must be positive"},
		{"empty url", `base_url = ""`, "base_url"},
		{"negative limit", `post_limit = -1`, "post_limit"},
		{"unknown theme", `theme = "neon"`, "theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			os.WriteFile(path, []byte(tt.content), 0644)

			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
