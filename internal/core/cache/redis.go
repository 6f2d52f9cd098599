package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/llm"
)

const redisKeyPrefix = "widget:response:"

// RedisCache shares cached responses between instances. Entries expire through
// Redis TTLs; insertion order is tracked in a list so the capacity cap holds.
type RedisCache struct {
	client   *redis.Client
	ttl      time.Duration
	capacity int
	orderKey string
}

func NewRedisCache(client *redis.Client, ttl time.Duration, capacity int) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RedisCache{
		client:   client,
		ttl:      ttl,
		capacity: capacity,
		orderKey: redisKeyPrefix + "order",
	}
}

// NewRedisClient creates a go-redis client and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*llm.AIResponse, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("redis cache read failed")
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("dropping undecodable cache entry")
		c.client.Del(ctx, redisKeyPrefix+key)
		return nil, false
	}
	return &entry.Response, true
}

func (c *RedisCache) Set(ctx context.Context, key string, resp *llm.AIResponse) error {
	if resp == nil {
		return nil
	}

	data, err := json.Marshal(Entry{Response: *resp, CreatedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, redisKeyPrefix+key, data, c.ttl)
	pipe.LRem(ctx, c.orderKey, 0, key)
	pipe.RPush(ctx, c.orderKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis cache write: %w", err)
	}

	return c.evict(ctx)
}

// evict trims the order list back to capacity, deleting the oldest keys.
func (c *RedisCache) evict(ctx context.Context) error {
	n, err := c.client.LLen(ctx, c.orderKey).Result()
	if err != nil {
		return fmt.Errorf("redis cache size: %w", err)
	}

	for ; n > int64(c.capacity); n-- {
		oldest, err := c.client.LPop(ctx, c.orderKey).Result()
		if err != nil {
			return fmt.Errorf("redis cache evict: %w", err)
		}
		c.client.Del(ctx, redisKeyPrefix+oldest)
	}
	return nil
}

// Len counts live entries. Keys that already expired are pruned from the order list.
func (c *RedisCache) Len(ctx context.Context) int {
	keys, err := c.client.LRange(ctx, c.orderKey, 0, -1).Result()
	if err != nil {
		return 0
	}

	live := 0
	for _, k := range keys {
		exists, err := c.client.Exists(ctx, redisKeyPrefix+k).Result()
		if err != nil {
			continue
		}
		if exists == 0 {
			c.client.LRem(ctx, c.orderKey, 0, k)
			continue
		}
		live++
	}
	return live
}
