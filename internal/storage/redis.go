package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"linguatranslate/internal/config"
	contextutils "linguatranslate/internal/utils"
)

// RedisStore is a Redis-backed Store. Key-value entries rely on Redis TTL
// for expiry; sliding windows use sorted sets scored by event time.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg *config.RedisConfig, keyPrefix string) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityError, "Redis address is required", "")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	store := &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, contextutils.WrapError(err, "redis connection failed")
	}

	return store, nil
}

func (s *RedisStore) key(key string) string {
	return s.keyPrefix + key
}

// Get returns the value for key, treating redis.Nil as a miss.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, contextutils.WrapError(err, "failed to get key")
	}
	return data, true, nil
}

// Set stores the value under key with the given TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return contextutils.WrapError(err, "failed to set key")
	}
	return nil
}

// Delete removes the key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return contextutils.WrapError(err, "failed to delete key")
	}
	return nil
}

// WindowCount prunes sorted-set members scored before cutoff and returns
// the remaining cardinality. Both operations run in one pipeline.
func (s *RedisStore) WindowCount(ctx context.Context, key string, cutoff time.Time) (int64, error) {
	pipe := s.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, s.key(key), "0", strconv.FormatInt(cutoff.UnixNano(), 10))
	card := pipe.ZCard(ctx, s.key(key))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, contextutils.WrapError(err, "failed to count window events")
	}
	return card.Val(), nil
}

// windowAllowScript prunes, checks, and conditionally records in one
// server-side step. KEYS[1] = window key; ARGV = cutoff score, limit,
// event score, event member, ttl millis.
var windowAllowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[2]) then
	return {0, count}
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[4])
if tonumber(ARGV[5]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[5])
end
return {1, count + 1}
`)

// WindowAllow runs the purge-check-record sequence as one Lua script, so
// concurrent callers from separate processes serialize on the key.
func (s *RedisStore) WindowAllow(ctx context.Context, key string, cutoff, at time.Time, ttl time.Duration, limit int64) (bool, int64, error) {
	result, err := windowAllowScript.Run(ctx, s.client, []string{s.key(key)},
		strconv.FormatInt(cutoff.UnixNano(), 10),
		limit,
		strconv.FormatInt(at.UnixNano(), 10),
		uuid.NewString(),
		ttl.Milliseconds(),
	).Slice()
	if err != nil {
		return false, 0, contextutils.WrapError(err, "failed to run window admission script")
	}
	if len(result) != 2 {
		return false, 0, contextutils.NewAppError(contextutils.ErrorCodeInternalError, contextutils.SeverityError, "Unexpected window admission script reply", "")
	}
	allowed, _ := result[0].(int64)
	count, _ := result[1].(int64)
	return allowed == 1, count, nil
}

// CleanupExpired is a no-op for Redis; entries expire via TTL.
func (s *RedisStore) CleanupExpired(_ context.Context) (int64, error) {
	return 0, nil
}

// Len returns the number of keys under this store's prefix.
func (s *RedisStore) Len(ctx context.Context) (int64, error) {
	var count int64
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.keyPrefix+"*", 1000).Result()
		if err != nil {
			return 0, contextutils.WrapError(err, "failed to scan keys")
		}
		count += int64(len(keys))
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return count, nil
}

// Ping verifies the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the Redis client.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
