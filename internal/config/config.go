package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	vitals "healthwatch-cloud/internal/vitals/domain"
)

// Config defines healthwatch-cloud configuration.
type Config struct {
	HTTPAddr    string `yaml:"http_addr"`
	DatabaseURL string `yaml:"database_url"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// BucketTick drives minute-boundary sealing; ReminderTick drives the
	// reminder scheduler.
	BucketTick   time.Duration `yaml:"bucket_tick"`
	ReminderTick time.Duration `yaml:"reminder_tick"`

	HistoryLimit int `yaml:"history_limit"`

	Ranges vitals.Ranges `yaml:"ranges"`
}

// Load loads config from yaml (HEALTHWATCH_CONFIG) or env, with defaults
// suitable for a local single-patient deployment.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:     getenvDefault("HTTP_ADDR", ":8080"),
		DatabaseURL:  getenvDefault("DATABASE_URL", os.Getenv("PG_DSN")),
		LogLevel:     getenvDefault("LOG_LEVEL", "info"),
		LogFormat:    getenvDefault("LOG_FORMAT", "json"),
		BucketTick:   getenvDuration("BUCKET_TICK", time.Second),
		ReminderTick: getenvDuration("REMINDER_TICK", time.Second),
		HistoryLimit: getenvIntDefault("HISTORY_LIMIT", 10),
		Ranges:       vitals.DefaultRanges(),
	}

	if path := os.Getenv("HEALTHWATCH_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.BucketTick <= 0 {
		cfg.BucketTick = time.Second
	}
	if cfg.ReminderTick <= 0 {
		cfg.ReminderTick = time.Second
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}
	cfg.Ranges = mergeRanges(vitals.DefaultRanges(), cfg.Ranges)
	return cfg, nil
}

func mergeRanges(base, override vitals.Ranges) vitals.Ranges {
	if override.HeartRate.Max != 0 {
		base.HeartRate = override.HeartRate
	}
	if override.SpO2.Max != 0 {
		base.SpO2 = override.SpO2
	}
	if override.Temperature.Max != 0 {
		base.Temperature = override.Temperature
	}
	return base
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
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

func getenvDuration(key string, fallback time.Duration) time.Duration {
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
