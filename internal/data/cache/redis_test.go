package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/schemastore/internal/pkg/logger"
)

func redisStore(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis cache tests")
	}
	log, err := logger.New("silent")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	r, err := NewRedis(RedisConfig{Addr: addr, Prefix: "schemastore-test-" + uuid.NewString()}, log)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRedisGenerationFlush(t *testing.T) {
	r := redisStore(t)
	ctx := context.Background()

	if err := r.Set(ctx, "1", []byte("one"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, ok, err := r.Get(ctx, "1")
	if err != nil || !ok || string(val) != "one" {
		t.Fatalf("Get: want=one got=%q ok=%v err=%v", val, ok, err)
	}

	if err := r.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, ok, err := r.Get(ctx, "1"); err != nil || ok {
		t.Fatalf("Get after Flush: expected miss, ok=%v err=%v", ok, err)
	}

	_ = r.Set(ctx, "2", []byte("two"), time.Minute)
	if err := r.Delete(ctx, "2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := r.Get(ctx, "2"); ok {
		t.Fatalf("Get after Delete: expected miss")
	}
}
