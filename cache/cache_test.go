package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStoreSetGet(t *testing.T) {
	s := NewStore(0)

	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Set("/api/categories", Entry{Body: []byte(`{"status":"success"}`), ContentType: "application/json"}, time.Minute)
	e, ok := s.Get("/api/categories")
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"status":"success"}`), e.Body)
	assert.Equal(t, "application/json", e.ContentType)
	assert.Equal(t, 1, s.Len())
}

func TestStoreExpiry(t *testing.T) {
	s := NewStore(0)

	s.Set("k", Entry{Body: []byte("v")}, 20*time.Millisecond)
	_, ok := s.Get("k")
	assert.True(t, ok)

	time.Sleep(30 * time.Millisecond)
	_, ok = s.Get("k")
	assert.False(t, ok)
	// 过期条目在 Get 时被顺手删除
	assert.Equal(t, 0, s.Len())
}

func TestStoreDefaultTTL(t *testing.T) {
	s := NewStore(0)

	// ttl <= 0 使用默认 TTL，不会立即过期
	s.Set("k", Entry{Body: []byte("v")}, 0)
	_, ok := s.Get("k")
	assert.True(t, ok)
}

func TestStoreClear(t *testing.T) {
	s := NewStore(0)

	s.Set("a", Entry{Body: []byte("1")}, time.Minute)
	s.Set("b", Entry{Body: []byte("2")}, time.Minute)
	assert.Equal(t, 2, s.Len())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	_, ok := s.Get("a")
	assert.False(t, ok)
}

func TestStoreCleanExpired(t *testing.T) {
	s := NewStore(0)

	s.Set("old", Entry{Body: []byte("1")}, 10*time.Millisecond)
	s.Set("fresh", Entry{Body: []byte("2")}, time.Minute)
	time.Sleep(20 * time.Millisecond)

	removed := s.CleanExpired()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("fresh")
	assert.True(t, ok)
}

func TestStoreSweep(t *testing.T) {
	s := NewStore(0)
	s.StartSweep(20 * time.Millisecond)
	defer s.StopSweep()

	s.Set("k", Entry{Body: []byte("v")}, 10*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, s.Len())

	// 重复 Stop 不会 panic
	s.StopSweep()
}

func TestStopSweepWithoutStart(t *testing.T) {
	s := NewStore(0)
	// 未启动清理时 Stop 是空操作
	s.StopSweep()
}
