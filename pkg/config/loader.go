// Package config provides configuration loading and validation utilities.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Options tunes where Load looks for configuration sources.
type Options struct {
	// ConfigDir holds optional <env>.yaml files.
	ConfigDir string
	// EnvFiles are loaded with godotenv before reading the environment.
	EnvFiles []string
}

// DefaultOptions mirrors the layout used in deployments.
func DefaultOptions() Options {
	return Options{
		ConfigDir: "./configs",
		EnvFiles:  []string{".env.local", ".env"},
	}
}

var envBindings = map[string][]string{
	"log.level":                {"LOG_LEVEL"},
	"log.format":               {"LOG_FORMAT"},
	"log.file":                 {"LOG_FILE"},
	"telegram.token":           {"TELEGRAM_BOT_TOKEN", "TELOXIDE_TOKEN"},
	"telegram.mode":            {"TELEGRAM_MODE"},
	"telegram.poll_timeout":    {"TELEGRAM_POLL_TIMEOUT"},
	"telegram.webhook_listen":  {"TELEGRAM_WEBHOOK_LISTEN"},
	"telegram.webhook_url":     {"TELEGRAM_WEBHOOK_URL"},
	"bot.language":             {"BOT_LANGUAGE"},
	"coingecko.base_url":       {"COINGECKO_BASE_URL"},
	"coingecko.timeout":        {"COINGECKO_TIMEOUT"},
	"openai.base_url":          {"OPENAI_BASE_URL"},
	"openai.model":             {"OPENAI_MODEL"},
	"openai.temperature":       {"OPENAI_TEMPERATURE"},
	"openai.timeout":           {"OPENAI_TIMEOUT"},
	"redis.addr":               {"REDIS_ADDR"},
	"redis.password":           {"REDIS_PASSWORD"},
	"redis.db":                 {"REDIS_DB"},
	"metrics.enabled":          {"METRICS_ENABLED"},
	"metrics.addr":             {"METRICS_ADDR"},
	"sentry.dsn":               {"SENTRY_DSN"},
	"sentry.environment":       {"SENTRY_ENVIRONMENT"},
	"metrics.shutdown_timeout": {"METRICS_SHUTDOWN_TIMEOUT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 14)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.mode", "polling")
	v.SetDefault("telegram.poll_timeout", 10*time.Second)
	v.SetDefault("telegram.webhook_listen", ":8443")
	v.SetDefault("telegram.webhook_url", "")

	v.SetDefault("bot.language", "es")

	v.SetDefault("coingecko.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("coingecko.timeout", 10*time.Second)

	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.timeout", 30*time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.update_ttl", 24*time.Hour)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("metrics.shutdown_timeout", 5*time.Second)

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "")
}

// Load reads configuration from the default locations.
func Load() (*Config, *viper.Viper, error) {
	return LoadWithOptions(DefaultOptions())
}

// LoadWithOptions reads configuration from env files, an optional YAML file
// and environment variables, validates it, and returns the resulting Config.
func LoadWithOptions(opts Options) (*Config, *viper.Viper, error) {
	for _, file := range opts.EnvFiles {
		// missing env files are normal outside local development
		_ = godotenv.Load(file)
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigDir != "" {
		v.SetConfigName(env)
		v.SetConfigType("yaml")
		v.AddConfigPath(opts.ConfigDir)

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	cfg.AppEnv = env
	if cfg.Sentry.Environment == "" {
		cfg.Sentry.Environment = env
	}

	return cfg, v, nil
}

// Watch re-decodes the configuration whenever the YAML file backing v
// changes and hands the result to onChange. It returns false when no file
// is in use.
func Watch(v *viper.Viper, log *slog.Logger, onChange func(*Config)) bool {
	if v == nil || onChange == nil || v.ConfigFileUsed() == "" {
		return false
	}
	if log == nil {
		log = slog.Default()
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		cfg, err := decode(v)
		if err != nil {
			log.Warn("ignoring invalid config change", slog.String("file", e.Name), slog.Any("error", err))
			return
		}

		log.Info("config reloaded", slog.String("file", e.Name))
		onChange(cfg)
	})
	v.WatchConfig()

	return true
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
