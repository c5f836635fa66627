package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "offline:" // offline:{cache}:{entry:{key}|order|stored|seq}
	redisEntryTTL  = 7 * 24 * time.Hour
)

// RedisStore keeps entries in Redis. Insertion order lives in a sorted set
// scored by a per-cache sequence; a second sorted set scored by the store
// time in microseconds serves the age trim.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) entryKey(cache, key string) string {
	return redisKeyPrefix + cache + ":entry:" + key
}

func (r *RedisStore) orderKey(cache string) string {
	return redisKeyPrefix + cache + ":order"
}

func (r *RedisStore) storedKey(cache string) string {
	return redisKeyPrefix + cache + ":stored"
}

func (r *RedisStore) seqKey(cache string) string {
	return redisKeyPrefix + cache + ":seq"
}

func (r *RedisStore) Get(ctx context.Context, cache, key string) (*Entry, error) {
	data, err := r.client.Get(ctx, r.entryKey(cache, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return &e, nil
}

func (r *RedisStore) Put(ctx context.Context, cache, key string, e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	seq, err := r.client.Incr(ctx, r.seqKey(cache)).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate cache sequence: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.entryKey(cache, key), data, redisEntryTTL)
	pipe.ZAdd(ctx, r.orderKey(cache), redis.Z{Score: float64(seq), Member: key})
	pipe.ZAdd(ctx, r.storedKey(cache), redis.Z{Score: float64(e.StoredAt.UnixMicro()), Member: key})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to put cache entry: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, cache, key string) error {
	return r.evict(ctx, cache, []string{key})
}

func (r *RedisStore) Trim(ctx context.Context, cache string, maxEntries int, olderThan time.Time) error {
	order := r.orderKey(cache)

	if !olderThan.IsZero() {
		expired, err := r.client.ZRangeByScore(ctx, r.storedKey(cache), &redis.ZRangeBy{
			Min: "-inf",
			Max: "(" + strconv.FormatInt(olderThan.UnixMicro(), 10),
		}).Result()
		if err != nil {
			return fmt.Errorf("failed to list expired entries: %w", err)
		}
		if err := r.evict(ctx, cache, expired); err != nil {
			return err
		}
	}

	if maxEntries > 0 {
		n, err := r.client.ZCard(ctx, order).Result()
		if err != nil {
			return fmt.Errorf("failed to count cache entries: %w", err)
		}
		if excess := n - int64(maxEntries); excess > 0 {
			oldest, err := r.client.ZRange(ctx, order, 0, excess-1).Result()
			if err != nil {
				return fmt.Errorf("failed to list oldest entries: %w", err)
			}
			if err := r.evict(ctx, cache, oldest); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *RedisStore) evict(ctx context.Context, cache string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	members := make([]interface{}, len(keys))
	entryKeys := make([]string, len(keys))
	for i, k := range keys {
		members[i] = k
		entryKeys[i] = r.entryKey(cache, k)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, entryKeys...)
	pipe.ZRem(ctx, r.orderKey(cache), members...)
	pipe.ZRem(ctx, r.storedKey(cache), members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to evict cache entries: %w", err)
	}
	return nil
}
