package store

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore keeps documents as redis string values. Keys carry a fixed
// prefix so a cache database can be shared with other state. Entries are
// written without a server-side expiry; freshness is decided at read time
// by the TTL policy, same as the other backends.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedisStore creates a redis-backed store.
func NewRedisStore(client *redis.Client, prefix string, logger zerolog.Logger) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		logger: logger.With().Str("component", "redis-store").Logger(),
	}
}

func (s *RedisStore) key(path string) string {
	return s.prefix + path
}

// Read returns the document at path, or nil if absent or unreadable.
func (s *RedisStore) Read(ctx context.Context, path string) []byte {
	data, err := s.client.Get(ctx, s.key(path)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Failed to read from redis")
		}
		return nil
	}
	return data
}

// Write stores data at path.
func (s *RedisStore) Write(ctx context.Context, path string, data []byte) error {
	if err := s.client.Set(ctx, s.key(path), data, 0).Err(); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to write to redis")
		return err
	}
	s.logger.Debug().Str("path", path).Msg("Document saved to redis")
	return nil
}

// Exists reports whether a document is present at path.
func (s *RedisStore) Exists(ctx context.Context, path string) bool {
	n, err := s.client.Exists(ctx, s.key(path)).Result()
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to check redis existence")
		return false
	}
	return n > 0
}

// Delete removes the document at path.
func (s *RedisStore) Delete(ctx context.Context, path string) bool {
	n, err := s.client.Del(ctx, s.key(path)).Result()
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to delete from redis")
		return false
	}
	if n > 0 {
		s.logger.Info().Str("path", path).Msg("Redis document deleted")
	}
	return n > 0
}
