// Package idempotency drops Telegram updates that were already handled, for
// example after a webhook redelivery or a restart between handling an
// update and confirming its offset.
package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const DefaultTTL = 24 * time.Hour

// Guard decides whether an update is seen for the first time. A nil Guard
// lets everything through.
type Guard struct {
	store Store
	ttl   time.Duration
	log   *slog.Logger
}

func NewGuard(store Store, ttl time.Duration, log *slog.Logger) *Guard {
	if store == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = slog.Default()
	}

	return &Guard{store: store, ttl: ttl, log: log}
}

// FirstSeen claims key. Store failures are logged and treated as first
// sight, so an unavailable Redis never silences the bot.
func (g *Guard) FirstSeen(ctx context.Context, key string) bool {
	if g == nil || key == "" {
		return true
	}
	if ctx == nil {
		ctx = context.Background()
	}

	claimed, err := g.store.Claim(ctx, key, g.ttl)
	if err != nil {
		g.log.Warn("idempotency store unavailable, handling update anyway", slog.String("key", key), slog.Any("error", err))
		return true
	}

	return claimed
}

// MessageKey identifies a chat message. It returns "" when the message has
// no id yet.
func MessageKey(chatID int64, messageID int) string {
	if messageID == 0 {
		return ""
	}
	return fmt.Sprintf("msg:%d:%d", chatID, messageID)
}
