package middleware

import (
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cryptobot/internal/bot/handlers"
	"github.com/Proton-105/cryptobot/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers, reporting them to Prometheus.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordCommand(commandLabel(c), status, time.Since(start))

		return err
	}
}

// commandLabel keeps label cardinality bounded: raw chat text never becomes
// a label value.
func commandLabel(c telebot.Context) string {
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
