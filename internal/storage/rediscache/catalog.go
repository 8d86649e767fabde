// Package rediscache keeps a short-lived copy of the public event catalog in
// Redis so list traffic stays off the ledger database.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Vinicius-cybertron/Event-Ticketing-Platform/internal/domain"
)

const catalogKey = "catalog:events"

// Catalog caches the full event listing under a single key. All methods
// tolerate a nil client and treat Redis failures as cache misses.
type Catalog struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalog(client *redis.Client, ttl time.Duration) *Catalog {
	if ttl < 0 {
		ttl = 0
	}
	return &Catalog{client: client, ttl: ttl}
}

func (c *Catalog) Get(ctx context.Context) ([]domain.Event, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = c.client.Del(ctx, catalogKey).Err()
		}
		return nil, false
	}
	var events []domain.Event
	if err := json.Unmarshal(data, &events); err != nil {
		_ = c.client.Del(ctx, catalogKey).Err()
		return nil, false
	}
	return events, true
}

func (c *Catalog) Set(ctx context.Context, events []domain.Event) {
	if c == nil || c.client == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(events)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, catalogKey, data, c.ttl).Err()
}

func (c *Catalog) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, catalogKey).Err()
}
