package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RESTWELL_SERVER", "")
	os.Unsetenv("RESTWELL_SERVER")

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server != DefaultServer {
		t.Errorf("Server = %q, want %q", cfg.Server, DefaultServer)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("RESTWELL_SERVER", "")
	os.Unsetenv("RESTWELL_SERVER")

	if err := os.WriteFile(filepath.Join(home, ".restwell.yaml"), []byte("server: http://file:9000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server != "http://file:9000" {
		t.Errorf("Server = %q, want value from file", cfg.Server)
	}

	t.Setenv("RESTWELL_SERVER", "http://env:9001")
	cfg, err = Load(New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server != "http://env:9001" {
		t.Errorf("Server = %q, env should override file", cfg.Server)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.WriteFile(filepath.Join(home, ".restwell.yaml"), []byte("server: [unclosed\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(New()); err == nil {
		t.Error("expected error for malformed config file")
	}
}
