package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/Proton-105/cryptobot/internal/i18n"
	"github.com/Proton-105/cryptobot/pkg/logger"
	"github.com/Proton-105/cryptobot/pkg/metrics"
)

// Catalog keys for user-facing error texts.
const (
	MsgTransport         = "errors.transport"
	MsgDecode            = "errors.decode"
	MsgNotFound          = "errors.not_found"
	MsgMissingCredential = "errors.missing_credential"
	MsgParseFailure      = "errors.parse_failure"
	MsgUnknown           = "errors.unknown"
)

// Handler logs, counts and reports errors, and turns them into chat text.
type Handler struct {
	log           *slog.Logger
	translator    i18n.Translator
	sentryEnabled bool
}

func NewHandler(log *slog.Logger, translator i18n.Translator, sentryEnabled bool) *Handler {
	return &Handler{
		log:           log,
		translator:    translator,
		sentryEnabled: sentryEnabled,
	}
}

// Handle records err and returns the text to send to the user. It never
// returns upstream bodies or error details.
func (h *Handler) Handle(ctx context.Context, err error) string {
	if err == nil {
		return ""
	}

	if ctx == nil {
		ctx = context.Background()
	}

	log := h.log
	if log == nil {
		log = slog.Default()
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		attrs := []slog.Attr{
			slog.String("kind", string(appErr.Kind)),
			slog.String("service", appErr.Service),
			slog.String("severity", string(appErr.Severity)),
			slog.String("error", appErr.Error()),
		}
		if appErr.Coin != "" {
			attrs = append(attrs, slog.String("coin", appErr.Coin))
		}
		if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
			attrs = append(attrs, slog.String("correlation_id", correlationID))
		}

		log.LogAttrs(ctx, levelFor(appErr.Severity), "application error", attrs...)
		metrics.RecordError(string(appErr.Kind), appErr.Service)

		if h.sentryEnabled && appErr.Severity == SeverityHigh {
			h.sendToSentry(err)
		}

		return h.Message(err)
	}

	attrs := []slog.Attr{
		slog.String("error", err.Error()),
		slog.String("severity", string(SeverityHigh)),
	}
	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		attrs = append(attrs, slog.String("correlation_id", correlationID))
	}

	log.LogAttrs(ctx, slog.LevelError, "unknown error", attrs...)
	metrics.RecordError(string(KindUnknown), "")

	if h.sentryEnabled {
		h.sendToSentry(err)
	}

	return h.Message(err)
}

// Message maps err to its catalog text without side effects.
func (h *Handler) Message(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr == nil {
		return h.t(MsgUnknown)
	}

	switch appErr.Kind {
	case KindTransport:
		return fmt.Sprintf(h.t(MsgTransport), appErr.Service)
	case KindDecode:
		return fmt.Sprintf(h.t(MsgDecode), appErr.Service)
	case KindNotFound:
		return fmt.Sprintf(h.t(MsgNotFound), appErr.Coin)
	case KindMissingCredential:
		return h.t(MsgMissingCredential)
	case KindParseFailure:
		return h.t(MsgParseFailure)
	default:
		return h.t(MsgUnknown)
	}
}

func (h *Handler) t(key string) string {
	if h.translator == nil {
		return key
	}
	return h.translator.T(key)
}

func (h *Handler) sendToSentry(err error) {
	if err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		var appErr *AppError
		if errors.As(err, &appErr) && appErr != nil {
			scope.SetTag("kind", string(appErr.Kind))
			if appErr.Service != "" {
				scope.SetTag("service", appErr.Service)
			}
			if appErr.Severity != "" {
				scope.SetTag("severity", string(appErr.Severity))
			}
		}

		sentry.CaptureException(err)
	})
}

func levelFor(severity Severity) slog.Level {
	switch severity {
	case SeverityHigh:
		return slog.LevelError
	case SeverityMedium:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
