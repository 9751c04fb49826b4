// Package config loads runtime configuration for the wayfarer client and
// the development backend. Values come from the environment (a .env file
// is loaded by each main); the client additionally accepts a YAML file
// named by WAYFARER_CONFIG whose values the environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the backend used when nothing else is configured.
const DefaultAPIURL = "http://localhost:8000"

// Client holds the terminal client's configuration.
type Client struct {
	APIURL      string
	Home        string
	HTTPTimeout time.Duration
	LogLevel    slog.Level
}

// fileConfig is the optional YAML file layout.
type fileConfig struct {
	APIURL             string `yaml:"api_url"`
	Home               string `yaml:"home"`
	HTTPTimeoutSeconds int    `yaml:"http_timeout_seconds"`
	LogLevel           string `yaml:"log_level"`
}

// Load reads the client configuration.
func Load() (Client, error) {
	var file fileConfig
	if path := env("WAYFARER_CONFIG"); path != "" {
		loaded, err := readFile(path)
		if err != nil {
			return Client{}, err
		}
		file = loaded
	}

	cfg := Client{
		APIURL: strings.TrimRight(fallback(env("WAYFARER_API_URL"), fallback(file.APIURL, DefaultAPIURL)), "/"),
		Home:   fallback(env("WAYFARER_HOME"), file.Home),
	}

	seconds := 15
	if file.HTTPTimeoutSeconds > 0 {
		seconds = file.HTTPTimeoutSeconds
	}
	seconds = positiveInt(env("WAYFARER_HTTP_TIMEOUT_SECONDS"), seconds)
	cfg.HTTPTimeout = time.Duration(seconds) * time.Second

	level, err := ParseLevel(fallback(env("WAYFARER_LOG_LEVEL"), fallback(file.LogLevel, "warn")))
	if err != nil {
		return Client{}, err
	}
	cfg.LogLevel = level

	if cfg.Home == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Client{}, fmt.Errorf("resolve config directory: %w", err)
		}
		cfg.Home = filepath.Join(base, "wayfarer")
	}

	parsed, err := url.Parse(cfg.APIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Client{}, fmt.Errorf("WAYFARER_API_URL %q is not an absolute URL", cfg.APIURL)
	}
	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config file: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return file, nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, errors.New("log level must be one of debug, info, warn, error")
	}
	return level, nil
}
