package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoadDefaults(t *testing.T) {
	cfg, loader := Loader(filepath.Join(t.TempDir(), "missing.toml"))
	if err := loader.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workspace.OSDir != "nuttx" {
		t.Errorf("OSDir = %q, want nuttx", cfg.Workspace.OSDir)
	}
	if cfg.Workspace.AppsDir != "nuttx-apps" {
		t.Errorf("AppsDir = %q, want nuttx-apps", cfg.Workspace.AppsDir)
	}
	if cfg.Build.Tool != "make" {
		t.Errorf("Tool = %q, want make", cfg.Build.Tool)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.LogLevel() != zerolog.InfoLevel {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel())
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ntxbuild.toml")
	content := "[workspace]\napps_dir = \"apps\"\n\n[build]\njobs = 8\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NTXBUILD_LOG_LEVEL", "debug")

	cfg, loader := Loader(path)
	if err := loader.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workspace.AppsDir != "apps" {
		t.Errorf("AppsDir = %q, want apps", cfg.Workspace.AppsDir)
	}
	if cfg.Build.Jobs != 8 {
		t.Errorf("Jobs = %d, want 8", cfg.Build.Jobs)
	}
	if cfg.LogLevel() != zerolog.DebugLevel {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel())
	}
}

func TestValidate(t *testing.T) {
	base := func() *Settings {
		cfg, loader := Loader(filepath.Join(t.TempDir(), "none.toml"))
		if err := loader.Load(); err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"bad level", func(s *Settings) { s.Log.Level = "loud" }},
		{"bad tool", func(s *Settings) { s.Build.Tool = "ninja" }},
		{"negative jobs", func(s *Settings) { s.Build.Jobs = -1 }},
		{"empty os dir", func(s *Settings) { s.Workspace.OSDir = "" }},
		{"same dirs", func(s *Settings) { s.Workspace.AppsDir = s.Workspace.OSDir }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
