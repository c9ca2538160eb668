package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultClientBaseURL = "http://localhost:8080"
	defaultClientTimeout = 15 * time.Second
)

// Client is the CLI profile, stored as YAML in ~/.marketplace/config.yaml.
type Client struct {
	// BaseURL is the backend origin; the API lives under /api/v1.
	BaseURL    string        `yaml:"base_url"`
	SessionDir string        `yaml:"session_dir"`
	Timeout    time.Duration `yaml:"timeout"`
}

// DefaultClientDir returns ~/.marketplace, or ./.marketplace when the home
// directory cannot be resolved.
func DefaultClientDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".marketplace"
	}
	return filepath.Join(home, ".marketplace")
}

// LoadClient reads the profile at path. A missing file is not an error.
// MARKETPLACE_URL overrides base_url.
func LoadClient(path string) (*Client, error) {
	cfg := &Client{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if v := strings.TrimSpace(os.Getenv("MARKETPLACE_URL")); v != "" {
		cfg.BaseURL = v
	}
	cfg.applyDefaults(filepath.Dir(path))
	return cfg, nil
}

// SaveClient writes the profile, creating the directory when needed.
func SaveClient(path string, cfg *Client) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (c *Client) applyDefaults(dir string) {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = defaultClientBaseURL
	}
	if c.SessionDir == "" {
		c.SessionDir = dir
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultClientTimeout
	}
}
