// Package cache stores generated summaries in Redis keyed by a hash of the
// input text.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "docbrief:summary:"

// SummaryCache caches summaries by input text
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a client and verifies connectivity
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// NewSummaryCache wraps client. A zero ttl keeps entries forever.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

// Key returns the cache key for text
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached summary for text. A miss is ("", false, nil).
func (c *SummaryCache) Get(ctx context.Context, text string) (string, bool, error) {
	val, err := c.client.Get(ctx, Key(text)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// Set stores summary for text
func (c *SummaryCache) Set(ctx context.Context, text, summary string) error {
	if err := c.client.Set(ctx, Key(text), summary, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
