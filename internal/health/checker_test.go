package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"

	"github.com/Proton-105/cryptobot/pkg/redis"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChecker_Handler(t *testing.T) {
	testCases := []struct {
		name       string
		checks     map[string]Checkable
		wantStatus int
		want       map[string]string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: http.StatusOK,
			want:       map[string]string{},
		},
		{
			name: "all healthy",
			checks: map[string]Checkable{
				"telegram": NewTelegramChecker(&telebot.Bot{Me: &telebot.User{Username: "cryptobot"}}),
				"custom":   CheckFunc(func(context.Context) error { return nil }),
			},
			wantStatus: http.StatusOK,
			want:       map[string]string{"telegram": "OK", "custom": "OK"},
		},
		{
			name: "one failing",
			checks: map[string]Checkable{
				"telegram": NewTelegramChecker(nil),
				"custom":   CheckFunc(func(context.Context) error { return nil }),
			},
			wantStatus: http.StatusServiceUnavailable,
			want: map[string]string{
				"telegram": "telegram bot is not initialized or disconnected",
				"custom":   "OK",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			checker := NewChecker(testLogger())
			for name, check := range tc.checks {
				checker.AddCheck(name, check)
			}

			rec := httptest.NewRecorder()
			checker.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var got map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRedisChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1}))
	t.Cleanup(func() { _ = client.Close() })

	checker := NewRedisChecker(client)
	assert.NoError(t, checker.HealthCheck(context.Background()))

	mr.SetError("LOADING")
	assert.Error(t, checker.HealthCheck(context.Background()))

	assert.Error(t, NewRedisChecker(nil).HealthCheck(context.Background()))
}

func TestChecker_IgnoresInvalidRegistrations(t *testing.T) {
	checker := NewChecker(nil)
	checker.AddCheck("", CheckFunc(func(context.Context) error { return errors.New("x") }))
	checker.AddCheck("nil", nil)

	assert.Empty(t, checker.Check(context.Background()))
}
