// Package config loads samplesite's settings. Later sources override earlier ones:
//
//  1. built-in defaults (the SceneStealer site)
//  2. an optional YAML site file
//  3. .env files: ENV_FILE if set, otherwise .env.local then .env in the working directory
//  4. environment variables
//
// Command-line arguments are applied by the caller, on top of all of these.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gitlab.com/efronlicht/enve"
	"gitlab.com/efronlicht/samplesite/render"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables.
const (
	EnvBaseURL     = "SAMPLESITE_BASE_URL"
	EnvFeedLimit   = "SAMPLESITE_FEED_LIMIT"
	EnvLogLevel    = "SAMPLESITE_LOG_LEVEL"
	EnvMetricsFile = "SAMPLESITE_METRICS_FILE"
	EnvFile        = "ENV_FILE"
)

// Config is the full set of settings for a run.
type Config struct {
	Site        render.Site   `yaml:"site"`
	Paths       Paths         `yaml:"paths"`
	LogLevel    zapcore.Level `yaml:"log_level"`
	MetricsFile string        `yaml:"metrics_file"` // empty: don't write metrics
}

// Paths are the inputs and outputs used by `samplesite all`.
type Paths struct {
	Samples  string `yaml:"samples"`
	Archive  string `yaml:"archive"`
	Feed     string `yaml:"feed"`
	Sitemap  string `yaml:"sitemap"`
	Homepage string `yaml:"homepage"`
}

// Default is the configuration with no file and no environment.
func Default() Config {
	return Config{
		Site: render.DefaultSite(),
		Paths: Paths{
			Samples:  "samples",
			Archive:  "archive.html",
			Feed:     "rss.xml",
			Sitemap:  "sitemap.xml",
			Homepage: "index.html",
		},
		LogLevel: zapcore.InfoLevel,
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped if path is empty), .env files, and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := loadEnvFiles(); err != nil {
		return cfg, err
	}
	cfg.Site.BaseURL = enve.StringOr(EnvBaseURL, cfg.Site.BaseURL)
	cfg.Site.FeedLimit = enve.IntOr(EnvFeedLimit, cfg.Site.FeedLimit)
	cfg.LogLevel = enve.FromTextOr[zapcore.Level](EnvLogLevel, cfg.LogLevel)
	cfg.MetricsFile = enve.StringOr(EnvMetricsFile, cfg.MetricsFile)
	if cfg.Site.FeedLimit <= 0 {
		return cfg, fmt.Errorf("feed limit must be positive, got %d", cfg.Site.FeedLimit)
	}
	return cfg, nil
}

// loadEnvFiles sets environment variables from .env files without overriding ones already set.
// Missing files are fine.
func loadEnvFiles() error {
	files := []string{".env.local", ".env"}
	if f := os.Getenv(EnvFile); f != "" {
		files = []string{f}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading env file %s: %w", f, err)
		}
	}
	return nil
}
