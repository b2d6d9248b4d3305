package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the daemon configuration in ~/.literasi/config.toml.
type Config struct {
	ListenAddr      string   `toml:"listen_addr"`
	DataDir         string   `toml:"data_dir"`
	PollIntervalSec int      `toml:"poll_interval_sec"`
	JWTSecret       string   `toml:"jwt_secret"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// Defaults applied for fields left empty in the config file.
const (
	DefaultListenAddr      = "127.0.0.1:8330"
	DefaultPollIntervalSec = 4
	DefaultJWTSecret       = "literasi-dev-secret"
)

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault reads config from path, falling back to defaults when the
// file does not exist. defaultDataDir is used when data_dir is unset. A file
// that exists but fails to parse also falls back, but with a warning on
// stderr so a typo in the config is not silently swallowed.
func LoadOrDefault(path, defaultDataDir string) *Config {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "literasid: ignoring malformed config %s: %v\n", path, err)
		}
		cfg = &Config{}
		cfg.applyDefaults()
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	return cfg
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// PollInterval returns the chat poll interval as a duration, clamped to the
// 3-5 second range the synchronizer runs at.
func (c *Config) PollInterval() time.Duration {
	sec := c.PollIntervalSec
	if sec < 3 {
		sec = 3
	}
	if sec > 5 {
		sec = 5
	}
	return time.Duration(sec) * time.Second
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.PollIntervalSec == 0 {
		c.PollIntervalSec = DefaultPollIntervalSec
	}
	if c.JWTSecret == "" {
		c.JWTSecret = DefaultJWTSecret
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
}
