package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "contentstudio:ratelimit:"

// takeScript mirrors MemoryStore.Take. Times are unix milliseconds supplied by
// the caller so every instance agrees on the window boundaries.
var takeScript = redis.NewScript(`
local count = tonumber(redis.call('HGET', KEYS[1], 'count'))
local reset = tonumber(redis.call('HGET', KEYS[1], 'reset'))
local max = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
if count == nil or reset == nil or now > reset then
  reset = now + window
  redis.call('HSET', KEYS[1], 'count', 1, 'reset', reset)
  redis.call('PEXPIRE', KEYS[1], window)
  return {1, 1, reset}
end
if count < max then
  count = redis.call('HINCRBY', KEYS[1], 'count', 1)
  return {1, count, reset}
end
return {0, count, reset}
`)

// RedisStore shares windows between instances through Redis.
type RedisStore struct {
	client redis.Scripter
	reader redis.Cmdable
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps a go-redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, reader: client}
}

// Take implements Store.
func (r *RedisStore) Take(ctx context.Context, key string, max int, window time.Duration, now time.Time) (Window, bool, error) {
	res, err := takeScript.Run(ctx, r.client, []string{redisKeyPrefix + key}, max, window.Milliseconds(), now.UnixMilli()).Int64Slice()
	if err != nil {
		return Window{}, false, fmt.Errorf("run take script: %w", err)
	}
	if len(res) != 3 {
		return Window{}, false, fmt.Errorf("take script returned %d values", len(res))
	}
	return Window{Count: int(res[1]), ResetAt: time.UnixMilli(res[2])}, res[0] == 1, nil
}

// Peek implements Store.
func (r *RedisStore) Peek(ctx context.Context, key string) (Window, bool, error) {
	vals, err := r.reader.HMGet(ctx, redisKeyPrefix+key, "count", "reset").Result()
	if errors.Is(err, redis.Nil) {
		return Window{}, false, nil
	}
	if err != nil {
		return Window{}, false, fmt.Errorf("read window: %w", err)
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return Window{}, false, nil
	}

	count, err := strconv.Atoi(fmt.Sprint(vals[0]))
	if err != nil {
		return Window{}, false, fmt.Errorf("parse count: %w", err)
	}
	reset, err := strconv.ParseInt(fmt.Sprint(vals[1]), 10, 64)
	if err != nil {
		return Window{}, false, fmt.Errorf("parse reset: %w", err)
	}
	return Window{Count: count, ResetAt: time.UnixMilli(reset)}, true, nil
}
