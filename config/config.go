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
	"go.uber.org/zap/zapcore"
)

// Config is everything the server reads at start.
type Config struct {
	Port    string
	BaseURL string
	GinMode string

	CatAPIBaseURL   string
	CatAPIKey       string
	CatAPIUserAgent string
	CatAPITimeout   time.Duration

	LogLevel zapcore.Level
}

const (
	DefaultConfigPath = "~/.config/nekopage/config.toml"

	defaultPort           = "8080"
	defaultGinMode        = "release"
	defaultCatAPIBaseURL  = "https://api.thecatapi.com"
	defaultTimeoutSeconds = 5
	defaultLogLevel       = "info"
)

type rawConfig struct {
	Server struct {
		Port    string `toml:"port"`
		BaseURL string `toml:"base_url"`
		Mode    string `toml:"mode"`
	} `toml:"server"`
	CatAPI struct {
		BaseURL        string `toml:"base_url"`
		APIKey         string `toml:"api_key"`
		UserAgent      string `toml:"user_agent"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
	} `toml:"cat_api"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

// Load reads the TOML config at path (or the default location), then applies
// the PORT, RENDER_EXTERNAL_URL and CAT_API_KEY environment overrides. A
// missing file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&raw)
	return build(raw)
}

func applyEnv(raw *rawConfig) {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		raw.Server.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("RENDER_EXTERNAL_URL")); v != "" {
		raw.Server.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CAT_API_KEY")); v != "" {
		raw.CatAPI.APIKey = v
	}
}

func build(raw rawConfig) (Config, error) {
	cfg := Config{
		Port:            orDefault(raw.Server.Port, defaultPort),
		GinMode:         orDefault(raw.Server.Mode, defaultGinMode),
		CatAPIBaseURL:   orDefault(raw.CatAPI.BaseURL, defaultCatAPIBaseURL),
		CatAPIKey:       strings.TrimSpace(raw.CatAPI.APIKey),
		CatAPIUserAgent: strings.TrimSpace(raw.CatAPI.UserAgent),
		CatAPITimeout:   defaultTimeoutSeconds * time.Second,
	}

	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return Config{}, fmt.Errorf("server.mode %q: want debug, release or test", cfg.GinMode)
	}

	if secs := raw.CatAPI.TimeoutSeconds; secs < 0 {
		return Config{}, fmt.Errorf("cat_api.timeout_seconds must not be negative, got %d", secs)
	} else if secs > 0 {
		cfg.CatAPITimeout = time.Duration(secs) * time.Second
	}

	level, err := zapcore.ParseLevel(orDefault(raw.Log.Level, defaultLogLevel))
	if err != nil {
		return Config{}, fmt.Errorf("log.level: %w", err)
	}
	cfg.LogLevel = level

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(raw.Server.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func orDefault(v, def string) string {
	if trimmed := strings.TrimSpace(v); trimmed != "" {
		return trimmed
	}
	return def
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(DefaultConfigPath)
	}
	return expandPath(path)
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
