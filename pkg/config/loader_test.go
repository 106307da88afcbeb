package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{ConfigDir: t.TempDir()}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, v, err := LoadWithOptions(testOptions(t))
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, "polling", cfg.Telegram.Mode)
	assert.Equal(t, "es", cfg.Bot.Language)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.CoinGecko.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.CoinGecko.Timeout)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.Model)
	assert.InDelta(t, 0.7, cfg.OpenAI.Temperature, 0.0001)
	assert.Equal(t, 30*time.Second, cfg.OpenAI.Timeout)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Sentry.Enabled())
	assert.Equal(t, "development", cfg.Sentry.Environment)
	assert.Empty(t, v.ConfigFileUsed())
}

func TestLoad_TeloxideTokenFallback(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELOXIDE_TOKEN", "999:xyz")

	cfg, _, err := LoadWithOptions(testOptions(t))
	require.NoError(t, err)
	assert.Equal(t, "999:xyz", cfg.Telegram.Token)
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELOXIDE_TOKEN", "")

	_, _, err := LoadWithOptions(testOptions(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}

func TestLoad_CoinGeckoTimeoutCapped(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("COINGECKO_TIMEOUT", "20s")

	_, _, err := LoadWithOptions(testOptions(t))
	require.Error(t, err)
}

func TestLoad_ZeroTemperatureRejected(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("OPENAI_TEMPERATURE", "0")

	_, _, err := LoadWithOptions(testOptions(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Temperature")
}

func TestLoad_WebhookRequiresURL(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_MODE", "webhook")
	t.Setenv("TELEGRAM_WEBHOOK_URL", "")

	_, _, err := LoadWithOptions(testOptions(t))
	require.Error(t, err)
}

func TestLoad_YAMLFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
log:
  level: debug
bot:
  language: en
openai:
  model: gpt-4o-mini
  timeout: 15s
redis:
  addr: localhost:6379
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "staging.yaml"), content, 0o600))

	t.Setenv("APP_ENV", "staging")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	cfg, v, err := LoadWithOptions(Options{ConfigDir: dir})
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.AppEnv)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "en", cfg.Bot.Language)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 15*time.Second, cfg.OpenAI.Timeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.NotEmpty(t, v.ConfigFileUsed())
}

func TestWatch_WithoutFile(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	_, v, err := LoadWithOptions(testOptions(t))
	require.NoError(t, err)

	assert.False(t, Watch(v, nil, func(*Config) {}))
	assert.False(t, Watch(nil, nil, func(*Config) {}))
}

func TestLoad_EnvFilesAreOptionalAndIndependent(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("COINGECKO_TIMEOUT=4s\n"), 0o600))

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("COINGECKO_TIMEOUT", "")
	require.NoError(t, os.Unsetenv("COINGECKO_TIMEOUT"))

	opts := testOptions(t)
	opts.EnvFiles = []string{filepath.Join(dir, ".env.local"), envFile}

	cfg, _, err := LoadWithOptions(opts)
	require.NoError(t, err)
	assert.Equal(t, 4*time.Second, cfg.CoinGecko.Timeout)
}
