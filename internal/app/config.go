package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yungbote/schemastore/internal/data/cache"
	"github.com/yungbote/schemastore/internal/data/db"
	"github.com/yungbote/schemastore/internal/observability"
)

// Config is the schemastore configuration. Precedence is
// flags > env (SCHEMASTORE_*) > config file > defaults.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Otel     OtelConfig     `mapstructure:"otel"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver        string        `mapstructure:"driver"`
	DSN           string        `mapstructure:"dsn"`
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	Name          string        `mapstructure:"name"`
	SSLMode       string        `mapstructure:"sslmode"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
	AutoMigrate   bool          `mapstructure:"auto_migrate"`
}

type CacheConfig struct {
	// Mode is none, memory or redis.
	Mode string        `mapstructure:"mode"`
	TTL  time.Duration `mapstructure:"ttl"`
	// Invalidation is none or redis. With redis, a memory cache broadcasts
	// evictions to every process on the same prefix.
	Invalidation string           `mapstructure:"invalidation"`
	Redis        RedisCacheConfig `mapstructure:"redis"`
}

type RedisCacheConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type MetricsConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Addr           string        `mapstructure:"addr"`
	ScrapeInterval time.Duration `mapstructure:"scrape_interval"`
}

type OtelConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Environment string  `mapstructure:"environment"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	Headers     string  `mapstructure:"headers"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

var configFileNames = []string{"schemastore.yaml", "schemastore.yml"}

// LoadConfig reads defaults, an optional config file and SCHEMASTORE_*
// environment variables. It returns the config file used (empty if none).
func LoadConfig(explicitPath string) (*Config, string, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SCHEMASTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := findConfigFile(explicitPath)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, path, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, path, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return &cfg, path, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.mode", "development")

	v.SetDefault("database.driver", db.DriverPostgres)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "schemastore")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.slow_threshold", time.Second)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("cache.mode", CacheMemory)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.invalidation", CacheNone)
	v.SetDefault("cache.redis.addr", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "schemastore")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.scrape_interval", 10*time.Second)

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.service_name", "schemastore")
	v.SetDefault("otel.environment", "")
	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.insecure", false)
	v.SetDefault("otel.headers", "")
	v.SetDefault("otel.sample_ratio", 0.1)
}

// findConfigFile returns explicitPath when set (it must exist), otherwise the
// first known file name present in the working directory.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath = strings.TrimSpace(explicitPath); explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicitPath, err)
		}
		return explicitPath, nil
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}

func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported %q", c.Database.Driver))
	}
	switch strings.ToLower(strings.TrimSpace(c.Cache.Mode)) {
	case CacheNone, "":
	case CacheMemory:
		if c.Cache.TTL <= 0 {
			errs = append(errs, errors.New("cache.ttl: must be positive"))
		}
	case CacheRedis:
		if c.Cache.TTL <= 0 {
			errs = append(errs, errors.New("cache.ttl: must be positive"))
		}
		if strings.TrimSpace(c.Cache.Redis.Addr) == "" {
			errs = append(errs, errors.New("cache.redis.addr: required for redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.mode: unsupported %q", c.Cache.Mode))
	}
	switch strings.ToLower(strings.TrimSpace(c.Cache.Invalidation)) {
	case CacheNone, "":
	case CacheRedis:
		if strings.TrimSpace(c.Cache.Redis.Addr) == "" {
			errs = append(errs, errors.New("cache.redis.addr: required for redis invalidation"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.invalidation: unsupported %q", c.Cache.Invalidation))
	}
	return errors.Join(errs...)
}

func (c DatabaseConfig) dbConfig() db.Config {
	return db.Config{
		Driver:        c.Driver,
		DSN:           c.DSN,
		Host:          c.Host,
		Port:          c.Port,
		User:          c.User,
		Password:      c.Password,
		Name:          c.Name,
		SSLMode:       c.SSLMode,
		SlowThreshold: c.SlowThreshold,
	}
}

func (c RedisCacheConfig) cacheConfig() cache.RedisConfig {
	return cache.RedisConfig{Addr: c.Addr, Password: c.Password, DB: c.DB, Prefix: c.Prefix}
}

func (c OtelConfig) otelConfig(version string) observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.Enabled,
		ServiceName: c.ServiceName,
		Environment: c.Environment,
		Version:     version,
		SampleRatio: c.SampleRatio,
		Endpoint:    c.Endpoint,
		Insecure:    c.Insecure,
		Headers:     c.Headers,
	}
}
