package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestGetSet 基本读写与过期
func TestGetSet(t *testing.T) {
	c := New(0)
	defer c.Stop()

	c.Set("posts:id:1", "value", 50*time.Millisecond)

	v, ok := c.Get("posts:id:1")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	time.Sleep(60 * time.Millisecond)

	_, ok = c.Get("posts:id:1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

// TestSetZeroTTL TTL 为零不写入
func TestSetZeroTTL(t *testing.T) {
	c := New(0)
	defer c.Stop()

	c.Set("posts:id:1", "value", 0)
	_, ok := c.Get("posts:id:1")
	assert.False(t, ok)
}

// TestInvalidateFamily 按族失效只删本族的键
func TestInvalidateFamily(t *testing.T) {
	c := New(0)
	defer c.Stop()

	c.Set(PostKey("1", ""), "post", time.Minute)
	c.Set(PostListKey("public", "", "", 1, 20), "list", time.Minute)
	c.Set(ItemKey("1"), "item", time.Minute)
	c.Set(ProfileKey("u1"), "profile", time.Minute)

	c.InvalidateFamily(FamilyPosts)

	_, ok := c.Get(PostKey("1", ""))
	assert.False(t, ok)
	_, ok = c.Get(PostListKey("public", "", "", 1, 20))
	assert.False(t, ok)

	_, ok = c.Get(ItemKey("1"))
	assert.True(t, ok)
	_, ok = c.Get(ProfileKey("u1"))
	assert.True(t, ok)
}

// TestClearAll 清空全部条目
func TestClearAll(t *testing.T) {
	c := New(0)
	defer c.Stop()

	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("posts:id:%d", i), i, time.Minute)
	}
	assert.Equal(t, 10, c.Len())

	c.ClearAll()
	assert.Equal(t, 0, c.Len())
}

// TestStats 命中与未命中计数
func TestStats(t *testing.T) {
	c := New(0)
	defer c.Stop()

	c.Set("posts:id:1", "value", time.Minute)
	c.Get("posts:id:1")
	c.Get("posts:id:1")
	c.Get("posts:id:missing")

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

// TestConcurrentAccess 并发读写不产生竞态
func TestConcurrentAccess(t *testing.T) {
	c := New(0)
	defer c.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			c.Set(fmt.Sprintf("posts:id:%d", n), n, time.Minute)
		}(i)
		go func(n int) {
			defer wg.Done()
			c.Get(fmt.Sprintf("posts:id:%d", n))
			if n%10 == 0 {
				c.InvalidateFamily(FamilyPosts)
			}
		}(i)
	}
	wg.Wait()
}

// TestJanitor 清理协程回收过期条目
func TestJanitor(t *testing.T) {
	c := New(20 * time.Millisecond)
	defer c.Stop()

	c.Set("posts:id:1", "value", 10*time.Millisecond)
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, 0, c.Len())
}
