package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/amjey/staff-tracker/pkg/redis"
)

// Cache 整表读缓存。实现需并发安全；读写失败只影响命中率，不影响正确性。
type Cache interface {
	Get(ctx context.Context, sheet string) ([][]string, bool)
	Set(ctx context.Context, sheet string, rows [][]string, ttl time.Duration)
	Delete(ctx context.Context, sheets ...string)
}

// ──── 进程内缓存 ────

type memoryEntry struct {
	rows    [][]string
	expires time.Time
}

// MemoryCache 单实例部署时使用的进程内缓存
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache 创建进程内缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, sheet string) ([][]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[sheet]
	if !ok || !c.now().Before(e.expires) {
		return nil, false
	}
	return e.rows, true
}

func (c *MemoryCache) Set(_ context.Context, sheet string, rows [][]string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sheet] = memoryEntry{rows: rows, expires: c.now().Add(ttl)}
}

func (c *MemoryCache) Delete(_ context.Context, sheets ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range sheets {
		delete(c.entries, s)
	}
}

// ──── Redis 缓存 ────

const redisCachePrefix = "sheet:rows:"

// RedisCache 多实例部署时共享的缓存，值为 JSON 编码的二维表格
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, sheet string) ([][]string, bool) {
	b, ok, err := c.client.GetBytes(ctx, redisCachePrefix+sheet)
	if err != nil || !ok {
		return nil, false
	}
	var rows [][]string
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (c *RedisCache) Set(ctx context.Context, sheet string, rows [][]string, ttl time.Duration) {
	b, err := json.Marshal(rows)
	if err != nil {
		return
	}
	_ = c.client.SetBytes(ctx, redisCachePrefix+sheet, b, ttl)
}

func (c *RedisCache) Delete(ctx context.Context, sheets ...string) {
	keys := make([]string, 0, len(sheets))
	for _, s := range sheets {
		keys = append(keys, redisCachePrefix+s)
	}
	_ = c.client.Delete(ctx, keys...)
}
