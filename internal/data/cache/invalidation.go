package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/schemastore/internal/pkg/logger"
)

// Invalidation is broadcast to every process sharing a cache namespace.
type Invalidation struct {
	Origin string   `json:"origin"`
	Keys   []string `json:"keys,omitempty"`
	Flush  bool     `json:"flush,omitempty"`
}

// Bus carries invalidations between processes.
type Bus interface {
	Publish(ctx context.Context, msg Invalidation) error
	StartListener(ctx context.Context, onMsg func(m Invalidation)) error
	Close() error
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewRedisBus(cfg RedisConfig, log *logger.Logger) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	ch := strings.TrimSpace(cfg.Prefix)
	if ch == "" {
		ch = "schemastore"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisBus{
		log:     log.With("service", "RedisInvalidationBus"),
		rdb:     rdb,
		channel: ch + ":invalidate",
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, msg Invalidation) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis invalidation bus not initialized")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) StartListener(ctx context.Context, onMsg func(m Invalidation)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis invalidation bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var msg Invalidation
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.log.Warn("bad invalidation payload", "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()

	return nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

// Broadcast wraps a process-local Store so that Delete and Flush also reach
// every other process listening on the same Bus.
type Broadcast struct {
	local  Store
	bus    Bus
	origin string
	log    *logger.Logger
}

func NewBroadcast(local Store, bus Bus, log *logger.Logger) *Broadcast {
	return &Broadcast{local: local, bus: bus, origin: uuid.NewString(), log: log.With("service", "BroadcastCache")}
}

// Start subscribes to remote invalidations until ctx is done.
func (b *Broadcast) Start(ctx context.Context) error {
	return b.bus.StartListener(ctx, b.apply)
}

func (b *Broadcast) apply(m Invalidation) {
	if m.Origin == b.origin {
		return
	}
	ctx := context.Background()
	var err error
	if m.Flush {
		err = b.local.Flush(ctx)
	} else {
		err = b.local.Delete(ctx, m.Keys...)
	}
	if err != nil {
		b.log.Warn("apply remote invalidation failed", "error", err)
	}
}

func (b *Broadcast) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return b.local.Get(ctx, key)
}

func (b *Broadcast) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return b.local.Set(ctx, key, val, ttl)
}

func (b *Broadcast) Delete(ctx context.Context, keys ...string) error {
	if err := b.local.Delete(ctx, keys...); err != nil {
		return err
	}
	return b.bus.Publish(ctx, Invalidation{Origin: b.origin, Keys: keys})
}

func (b *Broadcast) Flush(ctx context.Context) error {
	if err := b.local.Flush(ctx); err != nil {
		return err
	}
	return b.bus.Publish(ctx, Invalidation{Origin: b.origin, Flush: true})
}

var _ Store = (*Broadcast)(nil)
