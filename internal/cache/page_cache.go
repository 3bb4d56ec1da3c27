package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"admin-go/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PageCache 列表页结果缓存。键由资源名与查询参数拼出，TTL 对应前端
// 查询的 staleTime；写操作成功后按资源前缀整体失效。
type PageCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPageCache(rdb *redis.Client, ttl time.Duration) *PageCache {
	return &PageCache{rdb: rdb, ttl: ttl}
}

// Key 生成某次列表查询的缓存键
func Key(resource string, limit, skip int, search, sort string) string {
	return fmt.Sprintf("page:%s:l=%d:s=%d:q=%s:o=%s", resource, limit, skip, search, sort)
}

// Get 读取缓存并反序列化到 out，未命中返回 false
func (c *PageCache) Get(ctx context.Context, key string, out any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read page cache: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode cached page: %w", err)
	}
	return true, nil
}

// Set 序列化并写入缓存
func (c *PageCache) Set(ctx context.Context, key string, val any) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("failed to encode page for cache: %w", err)
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write page cache: %w", err)
	}
	return nil
}

// Invalidate 删除某资源的全部缓存页（写操作后调用）
func (c *PageCache) Invalidate(ctx context.Context, resource string) error {
	pattern := fmt.Sprintf("page:%s:*", resource)

	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan page cache: %w", err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cached pages: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	logger.Debug("Page cache invalidated", zap.String("resource", resource))
	return nil
}
