package cache

import (
	"strings"
	"sync"
	"time"
)

// Store is the backing key/value store shared by the tool cache, the session
// guard, the rate limiter and the proposal manager. Implementations must
// provide per-key atomic set/delete; DeleteByPrefix is optional (a store that
// cannot scan returns 0, which degrades pattern invalidation to a no-op).
type Store interface {
	Get(key string) (string, bool)
	Set(key string, value string, ttl time.Duration)
	Delete(key string)
	Increment(key string, ttl time.Duration) int64
	DeleteByPrefix(prefix string) int
}

type memoryItem struct {
	value      string
	count      int64
	expiration time.Time
}

func (it *memoryItem) expired(now time.Time) bool {
	return !it.expiration.IsZero() && now.After(it.expiration)
}

// MemoryStore is an in-process Store with TTL support and prefix scanning.
// A background janitor sweeps expired entries so abandoned sessions and
// rate-limit windows do not accumulate.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryStore creates a memory store and starts its cleanup goroutine.
func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		items: make(map[string]*memoryItem),
		stop:  make(chan struct{}),
	}
	go ms.cleanupExpired()
	return ms
}

func (ms *MemoryStore) Get(key string) (string, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.items[key]
	if !exists || item.expired(time.Now()) {
		return "", false
	}
	return item.value, true
}

func (ms *MemoryStore) Set(key string, value string, ttl time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item := &memoryItem{value: value}
	if ttl > 0 {
		item.expiration = time.Now().Add(ttl)
	}
	ms.items[key] = item
}

func (ms *MemoryStore) Delete(key string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, key)
}

// Increment atomically increments a counter key. The TTL is only applied when
// the counter is created, so the window does not slide on subsequent hits.
func (ms *MemoryStore) Increment(key string, ttl time.Duration) int64 {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	item, exists := ms.items[key]
	if !exists || item.expired(now) {
		item = &memoryItem{count: 1}
		if ttl > 0 {
			item.expiration = now.Add(ttl)
		}
		ms.items[key] = item
		return 1
	}
	item.count++
	return item.count
}

func (ms *MemoryStore) DeleteByPrefix(prefix string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	deleted := 0
	for key := range ms.items {
		if strings.HasPrefix(key, prefix) {
			delete(ms.items, key)
			deleted++
		}
	}
	return deleted
}

// Close stops the cleanup goroutine.
func (ms *MemoryStore) Close() {
	ms.once.Do(func() { close(ms.stop) })
}

func (ms *MemoryStore) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.mu.Lock()
			now := time.Now()
			for key, item := range ms.items {
				if item.expired(now) {
					delete(ms.items, key)
				}
			}
			ms.mu.Unlock()
		case <-ms.stop:
			return
		}
	}
}
