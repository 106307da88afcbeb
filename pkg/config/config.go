package config

import "time"

// Config holds runtime configuration for the crypto bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Bot       BotConfig       `mapstructure:"bot"`
	CoinGecko CoinGeckoConfig `mapstructure:"coingecko"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
}

// LogConfig controls the slog handler and optional file rotation.
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json text"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}

// TelegramConfig configures the telebot poller.
type TelegramConfig struct {
	Token         string        `mapstructure:"token" validate:"required"`
	Mode          string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	PollTimeout   time.Duration `mapstructure:"poll_timeout" validate:"required"`
	WebhookListen string        `mapstructure:"webhook_listen"`
	WebhookURL    string        `mapstructure:"webhook_url" validate:"required_if=Mode webhook"`
}

// BotConfig holds user-facing behaviour settings.
type BotConfig struct {
	Language string `mapstructure:"language" validate:"required"`
}

// CoinGeckoConfig configures the price client.
type CoinGeckoConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"required,max=10s"`
}

// OpenAIConfig configures the analysis client. The API key is not part of
// the config: it is read from OPENAI_API_KEY on every call.
type OpenAIConfig struct {
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	Model       string        `mapstructure:"model" validate:"required"`
	Temperature float32       `mapstructure:"temperature" validate:"gt=0,lte=2"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"required"`
}

// RedisConfig enables duplicate update suppression when Addr is set.
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db" validate:"gte=0"`
	UpdateTTL time.Duration `mapstructure:"update_ttl" validate:"required"`
}

// MetricsConfig controls the /metrics and /healthz listener.
type MetricsConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Addr            string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// Enabled reports whether Sentry reporting is configured.
func (s SentryConfig) Enabled() bool {
	return s.DSN != ""
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}
