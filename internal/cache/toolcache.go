package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ToolCache memoizes serialized results of read-only tool calls. Mutating
// tools never go through it; they only trigger invalidation.
type ToolCache struct {
	store Store
}

func NewToolCache(store Store) *ToolCache {
	return &ToolCache{store: store}
}

// Key builds a deterministic cache key for a tool invocation. Argument maps
// are serialized with sorted keys so the same logical call always hashes to
// the same key regardless of map iteration order.
func (tc *ToolCache) Key(toolName string, args map[string]interface{}) string {
	var b strings.Builder
	b.WriteString(toolName)
	b.WriteByte(':')

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, _ := json.Marshal(args[k])
		fmt.Fprintf(&b, "%s=%s;", k, v)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return toolName + ":" + hex.EncodeToString(sum[:16])
}

// Get returns the cached serialized result for a key, if present.
func (tc *ToolCache) Get(key string) (string, bool) {
	return tc.store.Get(key)
}

// Set stores a serialized tool result under the given key.
func (tc *ToolCache) Set(key, value string, ttl time.Duration) {
	tc.store.Set(key, value, ttl)
}

// Delete removes a single entry.
func (tc *ToolCache) Delete(key string) {
	tc.store.Delete(key)
}

// InvalidatePattern removes every entry whose key starts with prefix and
// returns the number removed. Stores without prefix scanning return 0.
func (tc *ToolCache) InvalidatePattern(prefix string) int {
	return tc.store.DeleteByPrefix(prefix)
}
