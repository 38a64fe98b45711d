package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/schemastore/internal/pkg/logger"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Redis is a Store over a shared Redis instance. Keys are namespaced by a
// generation counter so Flush is a single INCR and never scans the keyspace;
// entries from older generations expire on their own TTL.
type Redis struct {
	rdb    *goredis.Client
	log    *logger.Logger
	prefix string
}

func NewRedis(cfg RedisConfig, log *logger.Logger) (*Redis, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
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
	return NewRedisFromClient(rdb, cfg.Prefix, log), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(rdb *goredis.Client, prefix string, log *logger.Logger) *Redis {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "schemastore"
	}
	return &Redis{rdb: rdb, log: log.With("service", "RedisCache"), prefix: prefix}
}

// Client exposes the underlying connection for health checks.
func (r *Redis) Client() *goredis.Client { return r.rdb }

func (r *Redis) genKey() string { return r.prefix + ":gen" }

func (r *Redis) generation(ctx context.Context) (int64, error) {
	gen, err := r.rdb.Get(ctx, r.genKey()).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *Redis) key(gen int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", r.prefix, gen, key)
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	gen, err := r.generation(ctx)
	if err != nil {
		return nil, false, err
	}
	val, err := r.rdb.Get(ctx, r.key(gen, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	gen, err := r.generation(ctx)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key(gen, key), val, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	gen, err := r.generation(ctx)
	if err != nil {
		return err
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.key(gen, k))
	}
	return r.rdb.Del(ctx, full...).Err()
}

func (r *Redis) Flush(ctx context.Context) error {
	gen, err := r.rdb.Incr(ctx, r.genKey()).Result()
	if err != nil {
		return err
	}
	r.log.Debug("cache generation bumped", "generation", gen)
	return nil
}

func (r *Redis) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}

var _ Store = (*Redis)(nil)
