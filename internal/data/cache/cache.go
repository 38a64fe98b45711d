// Package cache holds the byte-oriented stores used by the cached schema
// repository. Values are opaque; callers own encoding.
package cache

import (
	"context"
	"time"
)

// Store is a keyed byte cache. Get reports found=false for missing or
// expired keys. Flush drops every key owned by the store.
type Store interface {
	Get(ctx context.Context, key string) (val []byte, found bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Flush(ctx context.Context) error
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Delete(context.Context, ...string) error                  { return nil }
func (Nop) Flush(context.Context) error                              { return nil }

var _ Store = Nop{}
