package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/datasynth-backend/internal/dataset"
	"github.com/yungbote/datasynth-backend/internal/orchestrator"
	"github.com/yungbote/datasynth-backend/internal/platform/envutil"
	"github.com/yungbote/datasynth-backend/internal/platform/logger"
)

type GeminiConfig struct {
	APIKey         string `yaml:"api_key"`
	Project        string `yaml:"project"`
	Location       string `yaml:"location"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gte=0"`
}

type RetryConfig struct {
	MaxAttempts  int `yaml:"max_attempts" validate:"gte=1,lte=20"`
	DelaySeconds int `yaml:"delay_seconds" validate:"gte=0"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Environment string  `yaml:"environment"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio" validate:"gte=0,lte=1"`
}

type Config struct {
	LogMode         string       `yaml:"log_mode" validate:"oneof=development production dev prod"`
	Port            string       `yaml:"port" validate:"required,numeric"`
	TagMapPath      string       `yaml:"tag_map_path"`
	Seed            uint64       `yaml:"seed"`
	MaxRowsPerTable int          `yaml:"max_rows_per_table" validate:"gte=1"`
	UserEmailDomain string       `yaml:"user_email_domain" validate:"required,hostname"`
	CORSOrigins     []string     `yaml:"cors_origins"`
	MetricsEnabled  bool         `yaml:"metrics_enabled"`
	Gemini          GeminiConfig `yaml:"gemini"`
	Retry           RetryConfig  `yaml:"retry"`
	Otel            OtelConfig   `yaml:"otel"`
}

func DefaultConfig() Config {
	return Config{
		LogMode:         "development",
		Port:            "8000",
		MaxRowsPerTable: orchestrator.DefaultMaxRows,
		UserEmailDomain: dataset.DefaultEmailDomain,
		Gemini: GeminiConfig{
			Location:       "us-central1",
			TimeoutSeconds: 120,
		},
		Retry: RetryConfig{MaxAttempts: 3, DelaySeconds: 5},
		Otel:  OtelConfig{SampleRatio: 0.1},
	}
}

// LoadConfig layers defaults, the optional YAML file at path, an optional
// .env file and the process environment, in that order, then validates the
// result.
func LoadConfig(path string, log *logger.Logger) (Config, error) {
	cfg := DefaultConfig()
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg, log)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config, log *logger.Logger) {
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode, log)
	cfg.Port = envutil.String("PORT", cfg.Port, log)
	cfg.TagMapPath = envutil.String("TAG_MAP_PATH", cfg.TagMapPath, log)
	cfg.Seed = uint64(envutil.Int64("GENERATION_SEED", int64(cfg.Seed), log))
	cfg.MaxRowsPerTable = envutil.Int("MAX_ROWS_PER_TABLE", cfg.MaxRowsPerTable, log)
	cfg.UserEmailDomain = envutil.String("USER_EMAIL_DOMAIN", cfg.UserEmailDomain, log)
	cfg.CORSOrigins = envutil.List("CORS_ORIGINS", cfg.CORSOrigins, log)
	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled, log)

	cfg.Gemini.APIKey = envutil.String("GEMINI_API_KEY", cfg.Gemini.APIKey, log)
	cfg.Gemini.Project = envutil.String("GEMINI_PROJECT", cfg.Gemini.Project, log)
	cfg.Gemini.Location = envutil.String("GEMINI_LOCATION", cfg.Gemini.Location, log)
	cfg.Gemini.Model = envutil.String("GEMINI_MODEL", cfg.Gemini.Model, log)
	cfg.Gemini.TimeoutSeconds = envutil.Int("GEMINI_TIMEOUT_SECONDS", cfg.Gemini.TimeoutSeconds, log)

	cfg.Retry.MaxAttempts = envutil.Int("RETRY_MAX_ATTEMPTS", cfg.Retry.MaxAttempts, log)
	cfg.Retry.DelaySeconds = envutil.Int("RETRY_DELAY_SECONDS", cfg.Retry.DelaySeconds, log)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled, log)
	cfg.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", cfg.Otel.Environment, log)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint, log)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers, log)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure, log)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.Otel.SampleRatio, log)
}

func (c Config) GeminiTimeout() time.Duration {
	return time.Duration(c.Gemini.TimeoutSeconds) * time.Second
}

func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.Retry.DelaySeconds) * time.Second
}
