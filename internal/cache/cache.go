package cache

import (
	"sync"
	"time"

	"venue-rank-go/internal/model"
)

// DefaultTTL 默认缓存有效期
const DefaultTTL = time.Hour

// Store 解析结果缓存接口，key 为规范化后的期刊名
type Store interface {
	Get(key string) (model.Result, bool)
	Put(key string, result model.Result)
	Reset()
}

type entry struct {
	result    model.Result
	expiresAt time.Time // 零值表示不过期
}

// Session 会话级内存缓存（一次批处理一份）
type Session struct {
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time
	mu   sync.RWMutex
}

// NewSession 创建会话缓存，ttl <= 0 表示不过期
func NewSession(ttl time.Duration) *Session {
	return &Session{
		data: make(map[string]entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get 获取缓存，返回副本
func (c *Session) Get(key string) (model.Result, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return model.Result{}, false
	}

	// 检查是否过期
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.mu.Lock()
		if cur, still := c.data[key]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.data, key)
		}
		c.mu.Unlock()
		return model.Result{}, false
	}

	return e.result.Clone(), true
}

// Put 写入缓存
func (c *Session) Put(key string, result model.Result) {
	e := entry{result: result.Clone()}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = e
}

// Reset 清空缓存（新批次开始时调用）
func (c *Session) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]entry)
}

// Len 当前条目数（含未清理的过期项）
func (c *Session) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
