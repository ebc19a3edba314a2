package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port = %d", cfg.Port)
	}
	if cfg.GraceWindow != 5*time.Second {
		t.Fatalf("grace window = %v", cfg.GraceWindow)
	}
	if cfg.RoomLinger != 3*time.Second {
		t.Fatalf("room linger = %v", cfg.RoomLinger)
	}
	if !cfg.Metrics {
		t.Fatal("metrics should default on")
	}
}

func TestLoadReadsEnvSpecificFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := []byte("port: 9999\ngrace_window: 12s\nmetrics: false\n")
	if err := os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), yaml, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9999 {
		t.Fatalf("port = %d", cfg.Port)
	}
	if cfg.GraceWindow != 12*time.Second {
		t.Fatalf("grace window = %v", cfg.GraceWindow)
	}
	if cfg.Metrics {
		t.Fatal("metrics should be off")
	}
	// Untouched keys keep their defaults.
	if cfg.PongWait != 60*time.Second {
		t.Fatalf("pong wait = %v", cfg.PongWait)
	}
}
