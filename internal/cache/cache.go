package cache

import (
	"context"
	"time"
)

// Cache fronts the analytics rollups and other read-mostly payloads.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

const (
	KeyAnalyticsOverview = "analytics:overview"
)
