package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything collfilter needs to reach the site and store its
// caches.
type Config struct {
	BaseURL           string
	CompareTo         string
	Cookie            string
	SliceBudget       time.Duration
	RequestsPerSecond float64
	RequestTimeout    time.Duration
	SessionDB         string
	SessionTTL        time.Duration
	LogPath           string
}

const (
	defaultConfigPath     = "~/.config/collfilter/config.toml"
	defaultBaseURL        = "https://www.clickcritters.com"
	defaultSliceBudgetMS  = 100
	defaultRPS            = 2.0
	defaultTimeoutSeconds = 15
	defaultSessionDB      = "~/.cache/collfilter/session.db"
	defaultSessionTTLHrs  = 24
	defaultLogPath        = "~/.local/state/collfilter/collfilter.log"
)

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		BaseURL:           defaultBaseURL,
		SliceBudget:       defaultSliceBudgetMS * time.Millisecond,
		RequestsPerSecond: defaultRPS,
		RequestTimeout:    defaultTimeoutSeconds * time.Second,
		SessionDB:         mustExpand(defaultSessionDB),
		SessionTTL:        defaultSessionTTLHrs * time.Hour,
		LogPath:           mustExpand(defaultLogPath),
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL               string  `toml:"base_url"`
		CompareTo             string  `toml:"compare_to"`
		Cookie                string  `toml:"cookie"`
		SliceBudgetMS         int     `toml:"slice_budget_ms"`
		RequestsPerSecond     float64 `toml:"requests_per_second"`
		RequestTimeoutSeconds int     `toml:"request_timeout_seconds"`
		SessionDB             string  `toml:"session_db"`
		SessionTTLHours       int     `toml:"session_ttl_hours"`
		LogPath               string  `toml:"log_path"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	cfg.CompareTo = strings.TrimSpace(raw.CompareTo)
	cfg.Cookie = strings.TrimSpace(raw.Cookie)
	if raw.SliceBudgetMS > 0 {
		cfg.SliceBudget = time.Duration(raw.SliceBudgetMS) * time.Millisecond
	}
	if raw.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = raw.RequestsPerSecond
	}
	if raw.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second
	}
	if v := strings.TrimSpace(raw.SessionDB); v != "" {
		cfg.SessionDB = mustExpand(v)
	}
	if raw.SessionTTLHours > 0 {
		cfg.SessionTTL = time.Duration(raw.SessionTTLHours) * time.Hour
	}
	if v := strings.TrimSpace(raw.LogPath); v != "" {
		cfg.LogPath = mustExpand(v)
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
