// Package config loads favtasks settings from a TOML file and resolves the
// XDG directories used for data and logs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the directory name used under the XDG base directories.
	AppName = "favtasks"

	// DefaultBaseURL is the public demo API the posts and edit flows talk to.
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"

	// DefaultTimeout bounds every HTTP request.
	DefaultTimeout = 10 * time.Second

	// DefaultPostLimit is how many posts the posts screen shows.
	DefaultPostLimit = 20
)

// Config holds the application settings.
type Config struct {
	BaseURL   string   `toml:"base_url"`
	Timeout   Duration `toml:"timeout"`
	DBPath    string   `toml:"db_path"`
	LogFile   string   `toml:"log_file"`
	LogLevel  string   `toml:"log_level"`
	PostLimit int      `toml:"post_limit"`
	Theme     string   `toml:"theme"`

	// Path is the file the config was read from, empty if none.
	Path string `toml:"-"`
}

// Duration decodes TOML strings such as "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   Duration{DefaultTimeout},
		DBPath:    filepath.Join(DataDir(), AppName+".db"),
		LogFile:   filepath.Join(StateDir(), AppName+".log"),
		LogLevel:  "info",
		PostLimit: DefaultPostLimit,
		Theme:     "dark",
	}
}

// Load reads path over the defaults. An empty path means the default config
// file, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values a user may have set incorrectly.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url must not be empty")
	}
	if c.Timeout.Duration <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.PostLimit < 0 {
		return errors.New("post_limit must not be negative")
	}
	if c.Theme != "dark" && c.Theme != "light" {
		return fmt.Errorf("theme must be \"dark\" or \"light\", got %q", c.Theme)
	}
	return nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), AppName, "config.toml")
}

// DataDir returns the directory holding the database.
func DataDir() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), AppName)
}

// StateDir returns the directory holding the log file.
func StateDir() string {
	return filepath.Join(xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state")), AppName)
}

// xdgDir uses the XDG variable if set, otherwise a directory under $HOME
func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, fallback)
}
