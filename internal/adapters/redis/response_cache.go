package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/tenderwatch/internal/ports"
)

// DefaultResponsePrefix namespaces cached proxy responses.
const DefaultResponsePrefix = "procurement:resp:"

// CachedResponse is the stored form of a proxied response.
type CachedResponse = ports.CachedResponse

// ResponseCache stores upstream GET responses with a fixed TTL.
type ResponseCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ ports.ResponseCache = (*ResponseCache)(nil)

// NewResponseCache creates a response cache. A non-positive ttl defaults to one minute.
func NewResponseCache(client redis.UniversalClient, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ResponseCache{client: client, prefix: DefaultResponsePrefix, ttl: ttl}
}

// Get returns the cached response for key. The boolean is false on a miss.
func (c *ResponseCache) Get(ctx context.Context, key string) (CachedResponse, bool, error) {
	if key == "" {
		return CachedResponse{}, false, errors.New("key cannot be empty")
	}

	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return CachedResponse{}, false, nil
		}
		return CachedResponse{}, false, fmt.Errorf("redis get: %w", err)
	}

	var resp CachedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return CachedResponse{}, false, fmt.Errorf("unmarshal cached response: %w", err)
	}
	return resp, true, nil
}

// Set stores resp under key for the configured TTL.
func (c *ResponseCache) Set(ctx context.Context, key string, resp CachedResponse) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal cached response: %w", err)
	}
	return c.client.Set(ctx, c.prefix+key, data, c.ttl).Err()
}
