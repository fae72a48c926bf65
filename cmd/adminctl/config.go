package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultServerURL = "http://localhost:8080"
	defaultTimeout   = 15 * time.Second
)

// Config is the adminctl TOML file, e.g. ~/.config/adminctl/config.toml:
//
//	server_url = "https://console.example.edu"
//	token = "eyJ..."
//	locale = "en-GB"
//	timeout = "20s"
type Config struct {
	ServerURL string   `toml:"server_url"`
	Token     string   `toml:"token"`
	Locale    string   `toml:"locale"`
	Timeout   duration `toml:"timeout"`
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "adminctl", "config.toml")
}

// loadConfig reads path, or the default location when path is empty, then
// applies ADMINCTL_* environment overrides. Only an explicitly named file
// must exist.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("ADMINCTL_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("ADMINCTL_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("ADMINCTL_LOCALE"); v != "" {
		cfg.Locale = v
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}
	if cfg.Timeout.Duration <= 0 {
		cfg.Timeout.Duration = defaultTimeout
	}
	return cfg, nil
}
