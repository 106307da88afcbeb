package logger

import (
	"log/slog"
	"net/http"
	"time"
)

// RoundTripper logs every outbound HTTP call made through it. Headers and
// bodies are never logged.
type RoundTripper struct {
	Next    http.RoundTripper
	Log     *slog.Logger
	Service string
}

// NewRoundTripper wraps next (http.DefaultTransport when nil).
func NewRoundTripper(service string, next http.RoundTripper, log *slog.Logger) *RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if log == nil {
		log = slog.Default()
	}
	return &RoundTripper{Next: next, Log: log, Service: service}
}

// RoundTrip implements http.RoundTripper.
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	attrs := []any{
		slog.String("service", rt.Service),
		slog.String("method", req.Method),
		slog.String("host", req.URL.Host),
		slog.String("path", req.URL.Path),
	}
	if id := CorrelationIDFromContext(req.Context()); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}

	resp, err := rt.Next.RoundTrip(req)
	attrs = append(attrs, slog.Duration("duration", time.Since(start)))
	if err != nil {
		rt.Log.WarnContext(req.Context(), "outbound request failed", append(attrs, slog.Any("error", err))...)
		return nil, err
	}

	rt.Log.DebugContext(req.Context(), "outbound request", append(attrs, slog.Int("status", resp.StatusCode))...)
	return resp, nil
}
