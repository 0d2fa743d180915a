package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override labpage.yml.
const (
	EnvHostname     = "LABPAGE_HOSTNAME"
	EnvRemoteBibURL = "LABPAGE_REMOTE_BIB_URL"
	EnvHighlight    = "LABPAGE_HIGHLIGHT"
	EnvRateLimit    = "LABPAGE_RATE_LIMIT"
)

// LoadDotEnv loads root/.env into the process environment. Variables already
// set win, and a missing file is not an error.
func LoadDotEnv(root string) error {
	err := godotenv.Load(filepath.Join(root, ".env"))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from LABPAGE_* environment variables.
// An explicitly empty LABPAGE_HOSTNAME is honored.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvHostname); ok {
		c.Hostname = v
	}
	if v := os.Getenv(EnvRemoteBibURL); v != "" {
		c.RemoteBibURL = v
	}
	if v := os.Getenv(EnvHighlight); v != "" {
		c.HighlightName = v
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			c.RateLimit = f
		}
	}
}
