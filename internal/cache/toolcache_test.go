package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_TTL(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	store.Set("a", "1", 10*time.Millisecond)
	value, ok := store.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", value)

	time.Sleep(20 * time.Millisecond)
	_, ok = store.Get("a")
	assert.False(t, ok)
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	store.Set("a", "1", 0)
	time.Sleep(5 * time.Millisecond)
	_, ok := store.Get("a")
	assert.True(t, ok)
}

func TestMemoryStore_Increment(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	assert.Equal(t, int64(1), store.Increment("counter", 10*time.Millisecond))
	assert.Equal(t, int64(2), store.Increment("counter", 10*time.Millisecond))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), store.Increment("counter", 10*time.Millisecond))
}

func TestMemoryStore_DeleteByPrefix(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	store.Set("cart:a", "1", 0)
	store.Set("cart:b", "2", 0)
	store.Set("catalog:c", "3", 0)

	assert.Equal(t, 2, store.DeleteByPrefix("cart:"))

	_, ok := store.Get("cart:a")
	assert.False(t, ok)
	_, ok = store.Get("catalog:c")
	assert.True(t, ok)
}

func TestToolCache_KeyIsDeterministic(t *testing.T) {
	tc := NewToolCache(NewMemoryStore())

	a := tc.Key("search_products", map[string]interface{}{"query": "dice", "limit": 5})
	b := tc.Key("search_products", map[string]interface{}{"limit": 5, "query": "dice"})
	assert.Equal(t, a, b)

	c := tc.Key("search_products", map[string]interface{}{"query": "dice", "limit": 10})
	assert.NotEqual(t, a, c)

	d := tc.Key("view_cart", map[string]interface{}{"query": "dice", "limit": 5})
	assert.NotEqual(t, a, d)
}

func TestToolCache_InvalidatePattern(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	tc := NewToolCache(store)

	tc.Set("cart:user:1:"+tc.Key("view_cart", nil), "{}", time.Minute)
	tc.Set("catalog:"+tc.Key("search_products", nil), "{}", time.Minute)

	assert.Equal(t, 1, tc.InvalidatePattern("cart:"))
}
