package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"taskpilot/internal/model"
)

// Deduper is an advisory fast path in front of the raw_messages unique
// constraint: it short-circuits re-polled items before they hit the
// database. The DB key remains the source of truth.
type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl}
}

// AcquireOnce reports whether this is the first time the source item
// was seen within the TTL window. When redis is unavailable it returns
// true and lets the database constraint decide.
func (d *Deduper) AcquireOnce(ctx context.Context, accountType model.AccountType, sourceMessageID string) bool {
	ok, err := d.rdb.SetNX(ctx, d.key(accountType, sourceMessageID), 1, d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

// Release drops the advisory key after a failed persist so the item
// can be re-ingested before the TTL expires. Best effort; a key left
// behind ages out on its own.
func (d *Deduper) Release(ctx context.Context, accountType model.AccountType, sourceMessageID string) {
	_ = d.rdb.Del(context.WithoutCancel(ctx), d.key(accountType, sourceMessageID)).Err()
}

func (d *Deduper) key(accountType model.AccountType, sourceMessageID string) string {
	return fmt.Sprintf("ingest:%s:%s", accountType, sourceMessageID)
}
