package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MetricCache 市场指标缓存
// 访问量/信誉这类接口调用成本高且变化慢，用 Redis 缓存一段时间
// addr 为空时返回 nil，调用方按 nil 判断降级为直连
type MetricCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New 创建指标缓存
func New(addr string, ttl time.Duration) *MetricCache {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &MetricCache{rdb: rdb, ttl: ttl}
}

// Ping 连接探活
func (c *MetricCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// key 统一前缀，按账号+指标维度区分
func (c *MetricCache) key(accountID int64, metric string, args ...interface{}) string {
	k := fmt.Sprintf("meli:metric:%d:%s", accountID, metric)
	for _, a := range args {
		k += fmt.Sprintf(":%v", a)
	}
	return k
}

// GetJSON 读缓存并反序列化；未命中返回 false
func (c *MetricCache) GetJSON(ctx context.Context, accountID int64, metric string, out interface{}, args ...interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, c.key(accountID, metric, args...)).Bytes()
	if err != nil {
		// redis.Nil 或连接错误都按未命中处理
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// SetJSON 序列化并写缓存（写失败只影响性能，不影响正确性，忽略错误）
func (c *MetricCache) SetJSON(ctx context.Context, accountID int64, metric string, val interface{}, args ...interface{}) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, c.key(accountID, metric, args...), raw, c.ttl)
}

// Invalidate 按账号清除指标缓存（账号重新同步后调用）
func (c *MetricCache) Invalidate(ctx context.Context, accountID int64) {
	if c == nil {
		return
	}
	pattern := fmt.Sprintf("meli:metric:%d:*", accountID)
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		c.rdb.Del(ctx, iter.Val())
	}
}
