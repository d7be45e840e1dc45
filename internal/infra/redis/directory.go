package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/vietddude/sparki/internal/core/domain"
)

const directoryKey = "sparki:wholesalers:all"

// DirectoryCache keeps the full wholesaler table under a single key.
type DirectoryCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewDirectoryCache creates a cache whose entries expire after ttl.
func NewDirectoryCache(client *Client, ttl time.Duration) *DirectoryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DirectoryCache{rdb: client.rdb, ttl: ttl}
}

// Load returns the cached table. found is false on a miss.
func (c *DirectoryCache) Load(ctx context.Context) (ws []domain.Wholesaler, found bool, err error) {
	data, err := c.rdb.Get(ctx, directoryKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get failed: %w", err)
	}

	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal wholesalers: %w", err)
	}
	return ws, true, nil
}

// Store replaces the cached table.
func (c *DirectoryCache) Store(ctx context.Context, ws []domain.Wholesaler) error {
	if ws == nil {
		ws = []domain.Wholesaler{}
	}
	data, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("failed to marshal wholesalers: %w", err)
	}
	if err := c.rdb.Set(ctx, directoryKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

// Invalidate drops the cached table.
func (c *DirectoryCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, directoryKey).Err(); err != nil {
		return fmt.Errorf("del failed: %w", err)
	}
	return nil
}
