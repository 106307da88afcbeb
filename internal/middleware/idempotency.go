package middleware

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cryptobot/internal/bot/handlers"
	"github.com/Proton-105/cryptobot/internal/idempotency"
	"github.com/Proton-105/cryptobot/pkg/metrics"
)

// Idempotency ensures handlers execute at most once per Telegram message.
func Idempotency(guard *idempotency.Guard, log *slog.Logger) handlers.Middleware {
	if guard == nil {
		return func(next handlers.Handler) handlers.Handler {
			return next
		}
	}
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			key := extractIdempotencyKey(c)
			ctx := handlers.RequestContext(c)

			if !guard.FirstSeen(ctx, key) {
				metrics.RecordDuplicateUpdate()
				log.InfoContext(ctx, "duplicate update skipped", slog.String("key", key))
				return nil
			}

			return next(c)
		}
	}
}

func extractIdempotencyKey(c telebot.Context) string {
	if c == nil {
		return ""
	}

	msg := c.Message()
	if msg == nil {
		return ""
	}

	chatID := int64(0)
	if msg.Chat != nil {
		chatID = msg.Chat.ID
	}
	return idempotency.MessageKey(chatID, msg.ID)
}
