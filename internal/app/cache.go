package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/schemastore/internal/data/cache"
	"github.com/yungbote/schemastore/internal/pkg/logger"
)

// cacheStack is the schema cache chosen by configuration. store is nil when
// caching is off.
type cacheStack struct {
	store     cache.Store
	broadcast *cache.Broadcast
	redis     *goredis.Client
	closers   []func() error
}

func (c *cacheStack) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
}

func wireCache(cfg CacheConfig, log *logger.Logger) (*cacheStack, error) {
	log.Info("Wiring cache...", "mode", cfg.Mode, "invalidation", cfg.Invalidation)
	out := &cacheStack{}

	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case CacheNone, "":
		return out, nil
	case CacheRedis:
		r, err := cache.NewRedis(cfg.Redis.cacheConfig(), log)
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		out.store = r
		out.redis = r.Client()
		out.closers = append(out.closers, r.Close)
		return out, nil
	case CacheMemory:
		out.store = cache.NewMemory()
	default:
		return nil, fmt.Errorf("unsupported cache mode %q", cfg.Mode)
	}

	if strings.EqualFold(strings.TrimSpace(cfg.Invalidation), CacheRedis) {
		bus, err := cache.NewRedisBus(cfg.Redis.cacheConfig(), log)
		if err != nil {
			return nil, fmt.Errorf("init invalidation bus: %w", err)
		}
		out.broadcast = cache.NewBroadcast(out.store, bus, log)
		out.store = out.broadcast
		out.closers = append(out.closers, bus.Close)
	}
	return out, nil
}

// start subscribes the broadcast store to remote invalidations. The
// listener runs until ctx is done.
func (c *cacheStack) start(ctx context.Context) error {
	if c.broadcast == nil {
		return nil
	}
	return c.broadcast.Start(ctx)
}
