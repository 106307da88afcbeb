package handlers

import (
	"context"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cryptobot/internal/command"
	"github.com/Proton-105/cryptobot/internal/price"
)

// Handler processes bot commands.
type Handler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// Keys of the per-update values the router stores on telebot.Context.
const (
	ContextKey    = "ctx"
	CommandKey    = "command"
	ParseErrorKey = "parse_error"
)

// PriceFetcher resolves a coin to its USD price.
type PriceFetcher interface {
	Fetch(ctx context.Context, coin command.CoinID) (price.Quote, error)
}

// Analyst produces a short market summary for a coin.
type Analyst interface {
	Analyze(ctx context.Context, coin command.CoinID) (string, error)
}

// RequestContext returns the context the router attached to c.
func RequestContext(c telebot.Context) context.Context {
	if c != nil {
		if ctx, ok := c.Get(ContextKey).(context.Context); ok && ctx != nil {
			return ctx
		}
	}
	return context.Background()
}

// CommandFrom returns the parsed command attached to c, if any.
func CommandFrom(c telebot.Context) (command.Command, bool) {
	if c == nil {
		return command.Command{}, false
	}
	cmd, ok := c.Get(CommandKey).(command.Command)
	return cmd, ok
}
