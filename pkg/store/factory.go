package store

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Backend selects a store implementation. It is resolved exactly once at
// startup; nothing outside this factory branches on the value.
type Backend string

const (
	// BackendLocal stores documents under a local directory.
	BackendLocal Backend = "local"

	// BackendS3 stores documents in an S3 bucket.
	BackendS3 Backend = "s3"

	// BackendRedis stores documents in a redis server.
	BackendRedis Backend = "redis"
)

// Config holds the settings needed to construct a store. Only the fields
// for the selected backend are consulted.
type Config struct {
	Backend Backend

	// LocalDir is the base directory for BackendLocal.
	LocalDir string

	// Bucket is the bucket name for BackendS3.
	Bucket string

	// RedisAddr is the server address for BackendRedis.
	RedisAddr string

	// RedisPrefix is prepended to every key for BackendRedis.
	RedisPrefix string
}

// New resolves cfg into a concrete Store.
func New(cfg Config, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case BackendLocal:
		if cfg.LocalDir == "" {
			return nil, fmt.Errorf("local backend requires a base directory")
		}
		return NewLocalStore(cfg.LocalDir, logger)
	case BackendS3:
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 backend requires a bucket name")
		}
		return NewS3Store(cfg.Bucket, logger), nil
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis backend requires a server address")
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return NewRedisStore(client, cfg.RedisPrefix, logger), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
