package bot

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cryptobot/internal/bot/handlers"
	errors "github.com/Proton-105/cryptobot/internal/errors"
	"github.com/Proton-105/cryptobot/pkg/logger"
)

const fallbackErrorMessage = "⚠️ Ocurrió un error inesperado. Inténtalo de nuevo más tarde."

// RecoveryMiddleware catches panics, reports them via the centralized handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *errors.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					ctx := handlers.RequestContext(c)
					log.ErrorContext(ctx, "panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

					userMsg := fallbackErrorMessage
					if errHandler != nil {
						if msg := errHandler.Handle(ctx, fmt.Errorf("panic recovered: %v", r)); msg != "" {
							userMsg = msg
						}
					}

					if c != nil {
						if sendErr := c.Send(userMsg); sendErr != nil {
							log.ErrorContext(ctx, "failed to notify user about panic", slog.Any("error", sendErr))
						}
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware turns handler errors into a single chat reply. A
// failed final reply is only logged. No error escapes to telebot.
func ErrorHandlingMiddleware(errHandler *errors.Handler, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			ctx := handlers.RequestContext(c)

			if handlers.IsReplyError(err) {
				log.ErrorContext(ctx, "failed to send reply",
					slog.String("correlation_id", logger.CorrelationIDFromContext(ctx)),
					slog.Any("error", err),
				)
				return nil
			}

			userMsg := fallbackErrorMessage
			if errHandler != nil {
				if msg := errHandler.Handle(ctx, err); msg != "" {
					userMsg = msg
				}
			}

			if c != nil {
				if sendErr := c.Send(userMsg); sendErr != nil {
					log.ErrorContext(ctx, "failed to send error reply", slog.Any("error", sendErr))
				}
			}

			return nil
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming updates. Message
// text is not logged.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()
			ctx := handlers.RequestContext(c)

			attrs := []any{
				slog.String("correlation_id", logger.CorrelationIDFromContext(ctx)),
				slog.String("action", actionOf(c)),
			}
			if c != nil && c.Sender() != nil {
				attrs = append(attrs, slog.Int64("user_id", c.Sender().ID))
			}
			if c != nil && c.Chat() != nil {
				attrs = append(attrs, slog.Int64("chat_id", c.Chat().ID))
			}

			log.InfoContext(ctx, "handling update", attrs...)
			err := next(c)
			log.InfoContext(ctx, "handled update",
				append(attrs,
					slog.Duration("duration", time.Since(start)),
					slog.Any("error", err),
				)...,
			)

			return err
		}
	}
}

func actionOf(c telebot.Context) string {
	if cmd, ok := handlers.CommandFrom(c); ok {
		return cmd.Kind.String()
	}
	if c != nil {
		if _, ok := c.Get(handlers.ParseErrorKey).(error); ok {
			return "unrecognized"
		}
	}
	return "text"
}
