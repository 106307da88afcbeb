package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cryptobot/internal/i18n"
)

// NewAnalyzeHandler acknowledges the request, then replies with the model's
// summary. A failed acknowledgement is logged and does not stop the analysis.
func NewAnalyzeHandler(analyst Analyst, t i18n.Translator, log *slog.Logger) Handler {
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

		if err := c.Send(t.T("bot.analyzing")); err != nil {
			log.WarnContext(ctx, "failed to send pre-reply", slog.String("coin", string(coin)), slog.Any("error", err))
		}

		text, err := analyst.Analyze(ctx, coin)
		if err != nil {
			return err
		}

		return reply(c, text)
	}
}
