// Package price fetches USD spot prices from the CoinGecko "simple price"
// endpoint.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Proton-105/cryptobot/internal/command"
	apperrors "github.com/Proton-105/cryptobot/internal/errors"
	"github.com/Proton-105/cryptobot/pkg/logger"
	"github.com/Proton-105/cryptobot/pkg/metrics"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	DefaultTimeout = 10 * time.Second

	simplePricePath = "/simple/price"
	vsCurrency      = "usd"
	metricsService  = "coingecko"
)

// Quote is a successful price lookup. USD is always positive.
type Quote struct {
	Coin command.CoinID
	USD  float64
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a CoinGecko adapter. It is safe for concurrent use.
type Client struct {
	http *resty.Client
	log  *slog.Logger
}

// NewClient builds a client with one reusable HTTP connection pool.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 || cfg.Timeout > DefaultTimeout {
		cfg.Timeout = DefaultTimeout
	}

	c := resty.New()
	c.SetTransport(logger.NewRoundTripper(metricsService, http.DefaultTransport, log))
	c.SetTimeout(cfg.Timeout)
	c.SetBaseURL(cfg.BaseURL)
	c.SetHeader("Accept", "application/json")
	c.SetRetryCount(0)

	return &Client{http: c, log: log}
}

// Fetch issues exactly one GET for coin and returns its USD price.
func (c *Client) Fetch(ctx context.Context, coin command.CoinID) (Quote, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	quote, err := c.fetch(ctx, coin)
	metrics.RecordUpstream(metricsService, outcome(err), time.Since(start))

	return quote, err
}

func (c *Client) fetch(ctx context.Context, coin command.CoinID) (Quote, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           string(coin),
			"vs_currencies": vsCurrency,
		}).
		Get(simplePricePath)
	if err != nil {
		return Quote{}, apperrors.NewTransportError(apperrors.ServiceCoinGecko, err)
	}

	if resp.IsError() {
		return Quote{}, apperrors.NewTransportError(apperrors.ServiceCoinGecko,
			fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}

	usd, err := extractUSD(resp.Body(), coin)
	if err != nil {
		return Quote{}, err
	}

	c.log.DebugContext(ctx, "price fetched", slog.String("coin", string(coin)), slog.Float64("usd", usd))
	return Quote{Coin: coin, USD: usd}, nil
}

// extractUSD reads payload[coin]["usd"], ignoring any other coins or
// currencies in the body.
func extractUSD(body []byte, coin command.CoinID) (float64, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, apperrors.NewDecodeError(apperrors.ServiceCoinGecko, err)
	}
	if payload == nil {
		return 0, apperrors.NewDecodeError(apperrors.ServiceCoinGecko, fmt.Errorf("payload is not an object"))
	}

	raw, ok := payload[string(coin)]
	if !ok {
		return 0, apperrors.NewNotFoundError(apperrors.ServiceCoinGecko, string(coin))
	}

	var currencies map[string]json.RawMessage
	if err := json.Unmarshal(raw, &currencies); err != nil {
		return 0, apperrors.NewDecodeError(apperrors.ServiceCoinGecko, err)
	}

	rawUSD, ok := currencies[vsCurrency]
	if !ok || string(rawUSD) == "null" {
		return 0, apperrors.NewNotFoundError(apperrors.ServiceCoinGecko, string(coin))
	}

	var usd float64
	if err := json.Unmarshal(rawUSD, &usd); err != nil {
		return 0, apperrors.NewDecodeError(apperrors.ServiceCoinGecko, err)
	}

	if usd <= 0 {
		return 0, apperrors.NewNotFoundError(apperrors.ServiceCoinGecko, string(coin))
	}

	return usd, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperrors.KindOf(err))
}
