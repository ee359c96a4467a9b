// Package cache keeps rendered responses for a fixed time window.
package cache

import (
	"context"
	"time"
)

// Entry is a stored copy of a rendered response.
type Entry struct {
	Status      int    `bson:"status"`
	ContentType string `bson:"content_type"`
	Body        []byte `bson:"body"`
}

// Store is a time-boxed key/value store for rendered responses.
type Store interface {
	// Get returns the entry for key, or ok=false when it is absent or expired.
	Get(ctx context.Context, key string) (entry *Entry, ok bool, err error)
	Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
