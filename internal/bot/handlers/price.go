package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cryptobot/internal/i18n"
)

var errNoCommand = errors.New("handler invoked without a parsed command")

// NewPriceHandler replies with the USD price of the requested coin. Adapter
// errors are returned unchanged for the error middleware to render.
func NewPriceHandler(prices PriceFetcher, t i18n.Translator, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		cmd, ok := CommandFrom(c)
		if !ok {
			return errNoCommand
		}

		ctx := RequestContext(c)
		coin := cmd.Coin()

		quote, err := prices.Fetch(ctx, coin)
		if err != nil {
			return err
		}

		log.InfoContext(ctx, "price sent", slog.String("coin", string(coin)))
		return reply(c, fmt.Sprintf(t.T("price.reply"), quote.Coin, quote.USD))
	}
}
