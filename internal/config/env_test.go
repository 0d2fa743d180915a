package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvHostname, "lab.example.edu")
	t.Setenv(EnvHighlight, "Grace Hopper")
	t.Setenv(EnvRateLimit, "5")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Hostname != "lab.example.edu" {
		t.Errorf("Hostname = %q", cfg.Hostname)
	}
	if cfg.HighlightName != "Grace Hopper" {
		t.Errorf("HighlightName = %q", cfg.HighlightName)
	}
	if cfg.RateLimit != 5 {
		t.Errorf("RateLimit = %v, want 5", cfg.RateLimit)
	}
	if cfg.RemoteBibURL != DefaultRemoteBibURL {
		t.Errorf("RemoteBibURL changed to %q without env", cfg.RemoteBibURL)
	}
}

func TestApplyEnv_EmptyHostnameClears(t *testing.T) {
	t.Setenv(EnvHostname, "")
	cfg := &Config{Hostname: "lab.example.edu"}
	cfg.ApplyEnv()
	if cfg.Hostname != "" {
		t.Errorf("Hostname = %q, want cleared", cfg.Hostname)
	}
}

func TestLoadDotEnv(t *testing.T) {
	root := t.TempDir()
	if err := LoadDotEnv(root); err != nil {
		t.Fatalf("LoadDotEnv() without file error = %v", err)
	}

	t.Setenv(EnvRemoteBibURL, "")
	os.Unsetenv(EnvRemoteBibURL)
	env := EnvRemoteBibURL + "=https://mirror.example.org/pubs.bib\n"
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte(env), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadDotEnv(root); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv(EnvRemoteBibURL); got != "https://mirror.example.org/pubs.bib" {
		t.Errorf("%s = %q", EnvRemoteBibURL, got)
	}
}
