package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/tfcanvas/tfcanvas/pkg/cache"
	"github.com/tfcanvas/tfcanvas/pkg/store"
)

// =============================================================================
// Configuration
// =============================================================================

// Cache backend names accepted in the config file.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Config is the serve configuration, loaded from a TOML file.
type Config struct {
	// Listen is the address the HTTP server binds to.
	Listen string `toml:"listen"`

	Cache CacheConfig `toml:"cache"`
	Mongo MongoConfig `toml:"mongo"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", or "none".
	Backend string `toml:"backend"`

	// Dir is the file cache directory. Empty means the user cache dir.
	Dir string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// MongoConfig configures the MongoDB store. An empty URI selects the
// in-memory store, which does not survive restarts.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Listen: ":8080",
		Cache:  CacheConfig{Backend: CacheBackendFile},
		Mongo:  MongoConfig{Database: "tfcanvas"},
	}
}

// LoadConfig reads a TOML config file, layering it over the defaults.
// An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// =============================================================================
// Backend Construction
// =============================================================================

// BuildCache constructs the cache backend named in the config.
func BuildCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case CacheBackendNone, "":
		return cache.NewNullCache(), nil
	case CacheBackendFile:
		dir := cfg.Dir
		if dir == "" {
			base, err := os.UserCacheDir()
			if err != nil {
				return nil, fmt.Errorf("resolve cache dir: %w", err)
			}
			dir = filepath.Join(base, "tfcanvas")
		}
		return cache.NewFileCache(dir)
	case CacheBackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", cfg.Backend)
	}
}

// BuildStore constructs the project store named in the config.
func BuildStore(ctx context.Context, cfg MongoConfig) (store.Store, error) {
	if cfg.URI == "" {
		return store.NewMemoryStore(), nil
	}
	db := cfg.Database
	if db == "" {
		db = "tfcanvas"
	}
	return store.NewMongoStore(ctx, cfg.URI, db)
}
