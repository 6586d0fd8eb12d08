// Package cache 提供进程内的读穿缓存：按键设置TTL，按资源族失效。
package cache

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache 进程级键值缓存。缓存是尽力而为的：任何缓存层面的问题
// 都不应使请求失败，调用方在未命中时直接回源。
type Cache struct {
	entries *xsync.MapOf[string, entry]
	hits    atomic.Int64
	misses  atomic.Int64
	stop    chan struct{}
}

// New 创建缓存并启动过期清理协程
func New(janitorInterval time.Duration) *Cache {
	c := &Cache{
		entries: xsync.NewMapOf[string, entry](),
		stop:    make(chan struct{}),
	}
	if janitorInterval > 0 {
		go c.janitor(janitorInterval)
	}
	return c
}

// Get 查询缓存，过期条目视为未命中并被顺带清除
func (c *Cache) Get(key string) (any, bool) {
	e, ok := c.entries.Load(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.entries.Delete(key)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return e.value, true
}

// Set 写入缓存条目
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.entries.Store(key, entry{value: value, expiresAt: time.Now().Add(ttl)})
}

// Delete 删除单个键
func (c *Cache) Delete(key string) {
	c.entries.Delete(key)
}

// InvalidateFamily 删除指定资源族的全部键
func (c *Cache) InvalidateFamily(family string) {
	prefix := family + ":"
	c.entries.Range(func(key string, _ entry) bool {
		if strings.HasPrefix(key, prefix) {
			c.entries.Delete(key)
		}
		return true
	})
}

// ClearAll 清空缓存
func (c *Cache) ClearAll() {
	c.entries.Clear()
}

// Len 返回当前条目数（含未清理的过期条目）
func (c *Cache) Len() int {
	return c.entries.Size()
}

// Stats 返回命中与未命中计数
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Stop 停止清理协程
func (c *Cache) Stop() {
	close(c.stop)
}

func (c *Cache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.entries.Range(func(key string, e entry) bool {
				if now.After(e.expiresAt) {
					c.entries.Delete(key)
				}
				return true
			})
		case <-c.stop:
			return
		}
	}
}
