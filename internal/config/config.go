// Package config loads tavola's settings: built-in defaults, then an optional
// YAML file, then .env, then the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL   = "http://localhost:3001/api"
	DefaultTimeout  = 30 * time.Second
	DefaultLogLevel = "info"
)

// Environment variables read by Load.
const (
	EnvConfig   = "TAVOLA_CONFIG"
	EnvAPIURL   = "TAVOLA_API_URL"
	EnvTimeout  = "TAVOLA_TIMEOUT"
	EnvLogFile  = "TAVOLA_LOG_FILE"
	EnvLogLevel = "TAVOLA_LOG_LEVEL"
)

// Config is immutable once loaded.
type Config struct {
	APIURL   string
	Timeout  time.Duration
	LogFile  string
	LogLevel string
}

type configFile struct {
	API struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Log struct {
		File  string `yaml:"file"`
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Dir is tavola's home directory (~/.tavola).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tavola"
	}
	return filepath.Join(home, ".tavola")
}

func defaults() *Config {
	return &Config{
		APIURL:   DefaultAPIURL,
		Timeout:  DefaultTimeout,
		LogFile:  filepath.Join(Dir(), "tavola.log"),
		LogLevel: DefaultLogLevel,
	}
}

// Load builds the configuration. path names the YAML file; when empty,
// $TAVOLA_CONFIG or ~/.tavola/config.yaml is used. A missing file is fine.
// dotenv names a .env file; when empty, ./.env is tried.
func Load(path, dotenv string) (*Config, error) {
	if dotenv == "" {
		dotenv = ".env"
	}
	// godotenv.Load never overrides variables already set.
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", dotenv, err)
	}

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = filepath.Join(Dir(), "config.yaml")
	}

	cfg := defaults()
	if err := cfg.applyFile(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var f configFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if f.API.URL != "" {
		c.APIURL = f.API.URL
	}
	if f.API.Timeout != "" {
		d, err := time.ParseDuration(f.API.Timeout)
		if err != nil {
			return fmt.Errorf("config: api.timeout: %w", err)
		}
		c.Timeout = d
	}
	if f.Log.File != "" {
		c.LogFile = f.Log.File
	}
	if f.Log.Level != "" {
		c.LogLevel = f.Log.Level
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("config: api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: api url %q must use http or https", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("config: api url %q has no host", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	return nil
}
