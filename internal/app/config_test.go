package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, path, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if path != "" {
		t.Fatalf("config path: want none got=%s", path)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.Port != 5432 {
		t.Fatalf("database defaults: unexpected %+v", cfg.Database)
	}
	if cfg.Cache.Mode != CacheMemory || cfg.Cache.TTL != 5*time.Minute {
		t.Fatalf("cache defaults: unexpected %+v", cfg.Cache)
	}
	if cfg.Otel.Enabled || cfg.Otel.SampleRatio != 0.1 {
		t.Fatalf("otel defaults: unexpected %+v", cfg.Otel)
	}
}

func TestLoadConfigFileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	body := strings.Join([]string{
		"database:",
		"  driver: sqlite",
		"  dsn: file:from-file.db",
		"cache:",
		"  mode: none",
		"  ttl: 30s",
		"log:",
		"  mode: silent",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, "schemastore.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SCHEMASTORE_DATABASE_DSN", "file:from-env.db")

	cfg, path, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if path != "schemastore.yaml" {
		t.Fatalf("config path: want=schemastore.yaml got=%s", path)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("driver: want=sqlite got=%s", cfg.Database.Driver)
	}
	if cfg.Database.DSN != "file:from-env.db" {
		t.Fatalf("dsn: want env override got=%s", cfg.Database.DSN)
	}
	if cfg.Cache.Mode != CacheNone || cfg.Cache.TTL != 30*time.Second {
		t.Fatalf("cache: unexpected %+v", cfg.Cache)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(c *Config)
		want string
	}{
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"bad cache mode", func(c *Config) { c.Cache.Mode = "disk" }, "cache.mode"},
		{"redis without addr", func(c *Config) { c.Cache.Mode = CacheRedis }, "cache.redis.addr"},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, "cache.ttl"},
		{"broadcast without addr", func(c *Config) { c.Cache.Invalidation = CacheRedis }, "cache.redis.addr"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				Database: DatabaseConfig{Driver: "postgres"},
				Cache:    CacheConfig{Mode: CacheMemory, TTL: time.Minute, Invalidation: CacheNone},
			}
			tc.mut(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate: want error mentioning %q got=%v", tc.want, err)
			}
		})
	}
}
