package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. EXPLAINER_SERVER_PORT.
const EnvPrefix = "EXPLAINER"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Safety   SafetyConfig   `yaml:"safety"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds" split_words:"true" validate:"min=1"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds" split_words:"true" validate:"min=1"`
	MaxBodyBytes        int64  `yaml:"max_body_bytes" split_words:"true" validate:"min=1024"`
	AllowedOrigin       string `yaml:"allowed_origin" split_words:"true" validate:"required"`
	// AccessKeyHash is the hex BLAKE2b-256 digest printed by -genkey. Empty
	// leaves the API open.
	AccessKeyHash string `yaml:"access_key_hash" split_words:"true" validate:"omitempty,hexadecimal,len=64"`
}

type GeminiConfig struct {
	APIKey          string  `yaml:"api_key" envconfig:"GEMINI_API_KEY"`
	Model           string  `yaml:"model" validate:"required"`
	Temperature     float32 `yaml:"temperature" validate:"min=0,max=2"`
	MaxOutputTokens int32   `yaml:"max_output_tokens" split_words:"true" validate:"min=1"`
	TimeoutSeconds  int     `yaml:"timeout_seconds" split_words:"true" validate:"min=1"`
}

type ScraperConfig struct {
	UserAgent      string `yaml:"user_agent" split_words:"true"`
	TimeoutSeconds int    `yaml:"timeout_seconds" split_words:"true" validate:"min=1"`
}

type SafetyConfig struct {
	// ExtraTerms are blocked in addition to the built-in patterns.
	ExtraTerms []string `yaml:"extra_terms" split_words:"true"`
}

type DatabaseConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path" validate:"required_if=Enabled true"`
	RetentionDays int    `yaml:"retention_days" split_words:"true" validate:"min=0"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                8080,
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 60,
			MaxBodyBytes:        20 << 20,
			AllowedOrigin:       "*",
		},
		Gemini: GeminiConfig{
			Model:           "gemini-2.5-flash-lite-preview-09-2025",
			Temperature:     0.7,
			MaxOutputTokens: 512,
			TimeoutSeconds:  45,
		},
		Scraper: ScraperConfig{
			UserAgent:      "Mozilla/5.0 (compatible; ELI5-Explainer/1.0)",
			TimeoutSeconds: 15,
		},
		Database: DatabaseConfig{
			Enabled:       false,
			Path:          "./explainer.db",
			RetentionDays: 30,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file and merges it over defaults, then applies
// EXPLAINER_* environment overrides. The Gemini key is also read from the
// bare GEMINI_API_KEY variable. If the file does not exist, defaults are used.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		slog.Info("No config file found, using defaults", "path", path)
	default:
		return cfg, err
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges after all sources are merged.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// Timeout bounds a single model call.
func (g GeminiConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

func (s ScraperConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// LogLevel maps the configured level name to a slog level.
func (l LoggingConfig) LogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
