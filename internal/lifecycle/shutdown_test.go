package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestShutdown_RunsHooksInReverseOrder(t *testing.T) {
	s := NewShutdown(testLogger(), nil)

	var order []string
	for _, name := range []string{"redis", "http", "bot"} {
		name := name
		s.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"bot", "http", "redis"}, order)
}

func TestShutdown_ContinuesAfterFailure(t *testing.T) {
	s := NewShutdown(testLogger(), nil)

	var ran bool
	s.Register("redis", func(context.Context) error {
		ran = true
		return nil
	})
	s.Register("bot", func(context.Context) error { return errors.New("poller stuck") })

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot: poller stuck")
	assert.True(t, ran)
}

func TestShutdown_SkipsHooksAfterDeadline(t *testing.T) {
	s := NewShutdown(testLogger(), nil)

	var ran bool
	s.Register("redis", func(context.Context) error {
		ran = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestShutdown_MarksProbesDraining(t *testing.T) {
	probes := NewProbes()
	s := NewShutdown(testLogger(), probes)

	rec := httptest.NewRecorder()
	probes.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, s.Execute(context.Background()))

	rec = httptest.NewRecorder()
	probes.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.ErrorIs(t, probes.Readiness(), ErrDraining)

	rec = httptest.NewRecorder()
	probes.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
