// Package quotecache mirrors the latest accepted quotes into Redis so
// other consumers can read them without going through the feed.
package quotecache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Mirror writes accepted quotes to Redis. It is derived state only: the
// store remains the source of truth, and a write failure never affects
// the apply-cycle that produced the quotes.
type Mirror struct {
	rdb *redis.Client
}

// New connects to Redis and pings it to ensure it is reachable.
func New(ctx context.Context, addr, password string, db int) (*Mirror, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Mirror{rdb: rdb}, nil
}

// SetQuotes writes every symbol's price under quotes:<symbol>.
func (m *Mirror) SetQuotes(ctx context.Context, quotes map[string]float64) error {
	pipe := m.rdb.Pipeline()
	for sym, price := range quotes {
		pipe.Set(ctx, fmt.Sprintf("quotes:%s", sym), price, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mirror quotes: %w", err)
	}
	return nil
}

// Quote reads one symbol's mirrored price.
func (m *Mirror) Quote(ctx context.Context, symbol string) (float64, error) {
	return m.rdb.Get(ctx, fmt.Sprintf("quotes:%s", symbol)).Float64()
}

func (m *Mirror) Close() error {
	return m.rdb.Close()
}
