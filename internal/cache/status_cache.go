package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"quillpdf/internal/model"
)

// StatusCache keeps upload statuses in redis so the polling endpoint
// stays off the database. Entries are short-lived; the database is
// authoritative.
type StatusCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewStatusCache(client *redisv9.Client, ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StatusCache{client: client, ttl: ttl}
}

func (c *StatusCache) GetStatus(ctx context.Context, fileID string) (model.UploadStatus, bool, error) {
	raw, err := c.client.Get(ctx, c.key(fileID)).Result()
	if err == redisv9.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get status failed: %w", err)
	}
	return model.UploadStatus(raw), true, nil
}

func (c *StatusCache) SetStatus(ctx context.Context, fileID string, status model.UploadStatus) error {
	if err := c.client.Set(ctx, c.key(fileID), string(status), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set status failed: %w", err)
	}
	return nil
}

func (c *StatusCache) Delete(ctx context.Context, fileID string) error {
	if err := c.client.Del(ctx, c.key(fileID)).Err(); err != nil {
		return fmt.Errorf("redis delete status failed: %w", err)
	}
	return nil
}

func (c *StatusCache) key(fileID string) string {
	return "file:status:" + fileID
}
