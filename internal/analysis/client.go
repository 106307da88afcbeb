// Package analysis asks an OpenAI chat model for a short market summary of a
// coin.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Proton-105/cryptobot/internal/command"
	apperrors "github.com/Proton-105/cryptobot/internal/errors"
	"github.com/Proton-105/cryptobot/pkg/logger"
	"github.com/Proton-105/cryptobot/pkg/metrics"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = openai.GPT3Dot5Turbo
	DefaultTemperature = float32(0.7)
	DefaultTimeout     = 30 * time.Second

	// APIKeyEnv is read on every call, never cached.
	APIKeyEnv = "OPENAI_API_KEY"

	metricsService = "openai"
	promptTemplate = "Haz un análisis simple del estado actual del mercado de la criptomoneda '%s'. Sé claro, breve y sin tecnicismos."
)

// Config configures a Client.
type Config struct {
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// KeyFunc returns the API key, or "" when none is configured.
type KeyFunc func() string

// Client is an OpenAI chat-completions adapter. It is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	apiKey KeyFunc
	log    *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithKeyFunc replaces the environment lookup of the API key.
func WithKeyFunc(fn KeyFunc) Option {
	return func(c *Client) {
		if fn != nil {
			c.apiKey = fn
		}
	}
}

func NewClient(cfg Config, log *slog.Logger, opts ...Option) *Client {
	if log == nil {
		log = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	// go-openai omits a zero temperature from the request body.
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: logger.NewRoundTripper(metricsService, http.DefaultTransport, log),
		},
		apiKey: func() string { return strings.TrimSpace(os.Getenv(APIKeyEnv)) },
		log:    log,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Prompt returns the fixed request sent for coin.
func Prompt(coin command.CoinID) string {
	return fmt.Sprintf(promptTemplate, coin)
}

// Analyze returns the model's summary for coin. A missing API key fails
// before any request is made.
func (c *Client) Analyze(ctx context.Context, coin command.CoinID) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	key := c.apiKey()
	if key == "" {
		metrics.RecordUpstream(metricsService, string(apperrors.KindMissingCredential), 0)
		return "", apperrors.NewMissingCredentialError(apperrors.ServiceOpenAI)
	}

	start := time.Now()
	text, err := c.complete(ctx, key, coin)
	metrics.RecordUpstream(metricsService, outcome(err), time.Since(start))

	return text, err
}

func (c *Client) complete(ctx context.Context, key string, coin command.CoinID) (string, error) {
	oc := openai.DefaultConfig(key)
	oc.BaseURL = c.cfg.BaseURL
	oc.HTTPClient = c.http

	resp, err := openai.NewClientWithConfig(oc).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: Prompt(coin)},
		},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.NewDecodeError(apperrors.ServiceOpenAI, errors.New("response has no choices"))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", apperrors.NewDecodeError(apperrors.ServiceOpenAI, errors.New("empty message content"))
	}

	c.log.DebugContext(ctx, "analysis received",
		slog.String("coin", string(coin)),
		slog.String("model", resp.Model),
		slog.Int("usage_total", resp.Usage.TotalTokens),
	)
	return content, nil
}

// classify splits go-openai failures into transport problems (no answer,
// or a non-success status) and undecodable success bodies.
func classify(err error) error {
	var (
		apiErr *openai.APIError
		reqErr *openai.RequestError
		urlErr *url.Error
		netErr net.Error
	)

	switch {
	case errors.As(err, &apiErr), errors.As(err, &reqErr):
		return apperrors.NewTransportError(apperrors.ServiceOpenAI, err)
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		return apperrors.NewTransportError(apperrors.ServiceOpenAI, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.NewTransportError(apperrors.ServiceOpenAI, err)
	default:
		return apperrors.NewDecodeError(apperrors.ServiceOpenAI, err)
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperrors.KindOf(err))
}
