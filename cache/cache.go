// Package cache 提供进程内的响应缓存存储。
// key → (响应体, 过期时间)，写请求到来时整体清空，保证读不到早于最近一次写的数据。
package cache

import (
	"sync"
	"time"
)

// DefaultTTL 默认缓存时长
const DefaultTTL = 300 * time.Second

// Entry 一条缓存的响应
type Entry struct {
	Body        []byte
	ContentType string
	expiresAt   time.Time
}

// Store TTL key-value 缓存存储
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry

	defaultTTL time.Duration

	stopSweep chan struct{}
	sweepDone chan struct{}
	sweepOnce sync.Once
	sweeping  bool
}

// NewStore 创建缓存存储，defaultTTL <= 0 时使用 DefaultTTL
func NewStore(defaultTTL time.Duration) *Store {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Store{
		entries:    make(map[string]Entry),
		defaultTTL: defaultTTL,
		stopSweep:  make(chan struct{}),
		sweepDone:  make(chan struct{}),
	}
}

// Get 获取缓存，过期或不存在返回 false
// 过期条目顺手删除，避免等待下一轮清理
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	if time.Now().After(e.expiresAt) {
		s.mu.Lock()
		// 二次检查，可能已被并发写入新条目
		if cur, ok := s.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return Entry{}, false
	}
	return e, true
}

// Set 写入缓存，ttl <= 0 时使用默认 TTL
func (s *Store) Set(key string, e Entry, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	e.expiresAt = time.Now().Add(ttl)
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

// Clear 整体清空缓存
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]Entry)
	s.mu.Unlock()
}

// Len 当前缓存条目数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// CleanExpired 删除所有已过期条目，返回删除数量
func (s *Store) CleanExpired() int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// StartSweep 启动后台定期清理过期条目
func (s *Store) StartSweep(interval time.Duration) {
	s.sweepOnce.Do(func() {
		s.sweeping = true
		go func() {
			defer close(s.sweepDone)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					s.CleanExpired()
				case <-s.stopSweep:
					return
				}
			}
		}()
	})
}

// StopSweep 停止后台清理，未启动过或重复调用时为空操作
func (s *Store) StopSweep() {
	if !s.sweeping {
		return
	}
	select {
	case <-s.stopSweep:
		return
	default:
		close(s.stopSweep)
		<-s.sweepDone
	}
}
