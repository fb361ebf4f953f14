package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig  `yaml:"server"`
	Storage     StorageConfig `yaml:"storage"`
	Fetch       FetchConfig   `yaml:"fetch"`
	Logging     LoggingConfig `yaml:"logging"`
	Tracing     TracingConfig `yaml:"tracing"`
	Environment string        `yaml:"environment" validate:"oneof=development test production"`
}

type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port" validate:"min=1,max=65535"`
	BaseURL string `yaml:"base_url"`
}

type StorageConfig struct {
	Driver        string `yaml:"driver" validate:"oneof=memory postgres redis"`
	DatabaseURL   string `yaml:"database_url"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
}

type FetchConfig struct {
	MaxAttempts       int           `yaml:"max_attempts" validate:"min=1"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gt=0"`
	BaseBackoff       time.Duration `yaml:"base_backoff"`
	MaxBackoff        time.Duration `yaml:"max_backoff"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, in that order (env wins).
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			BaseURL: "http://localhost:8080",
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Fetch: FetchConfig{
			MaxAttempts:       25,
			RequestTimeout:    15 * time.Second,
			RequestsPerSecond: 4,
			BaseBackoff:       50 * time.Millisecond,
			MaxBackoff:        2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Exporter:    "none",
			ServiceName: "gallerytab",
			SampleRate:  1.0,
		},
		Environment: "development",
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.BaseURL = getEnv("SERVER_BASE_URL", cfg.Server.BaseURL)

	cfg.Storage.Driver = getEnv("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.DatabaseURL = getEnv("DATABASE_URL", cfg.Storage.DatabaseURL)
	cfg.Storage.RedisAddr = getEnv("REDIS_ADDR", cfg.Storage.RedisAddr)
	cfg.Storage.RedisPassword = getEnv("REDIS_PASSWORD", cfg.Storage.RedisPassword)

	cfg.Fetch.MaxAttempts = getEnvInt("FETCH_MAX_ATTEMPTS", cfg.Fetch.MaxAttempts)
	cfg.Fetch.RequestTimeout = getEnvDuration("FETCH_REQUEST_TIMEOUT", cfg.Fetch.RequestTimeout)
	cfg.Fetch.RequestsPerSecond = getEnvFloat("FETCH_REQUESTS_PER_SECOND", cfg.Fetch.RequestsPerSecond)
	cfg.Fetch.BaseBackoff = getEnvDuration("FETCH_BASE_BACKOFF", cfg.Fetch.BaseBackoff)
	cfg.Fetch.MaxBackoff = getEnvDuration("FETCH_MAX_BACKOFF", cfg.Fetch.MaxBackoff)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = getEnv("TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.ServiceName = getEnv("TRACING_SERVICE_NAME", cfg.Tracing.ServiceName)
	cfg.Tracing.OTLPEndpoint = getEnv("TRACING_OTLP_ENDPOINT", cfg.Tracing.OTLPEndpoint)
	cfg.Tracing.SampleRate = getEnvFloat("TRACING_SAMPLE_RATE", cfg.Tracing.SampleRate)

	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
}

// Validate checks structural constraints plus the cross-field requirements
// the validator tags cannot express.
func Validate(cfg Config) error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Storage.Driver == "postgres" && cfg.Storage.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER=postgres")
	}
	if cfg.Storage.Driver == "redis" && cfg.Storage.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when STORAGE_DRIVER=redis")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
