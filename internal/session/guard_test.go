package session

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopchat/shopchat-backend/internal/cache"
	"github.com/shopchat/shopchat-backend/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// countingStore records how many lookups reach the backing store.
type countingStore struct {
	cache.Store
	gets int
}

func (c *countingStore) Get(key string) (string, bool) {
	c.gets++
	return c.Store.Get(key)
}

func TestGuard_CreateFormat(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	guard := NewGuard(store, time.Minute, testLogger())

	sessionID, err := guard.Create(models.RequestContext{ClientIP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Len(t, sessionID, 64)
	assert.True(t, ValidFormat(sessionID))
}

func TestGuard_MalformedTokenSkipsStore(t *testing.T) {
	store := &countingStore{Store: cache.NewMemoryStore()}
	guard := NewGuard(store, time.Minute, testLogger())

	rc := models.RequestContext{ClientIP: "10.0.0.1"}
	for _, id := range []string{
		"",
		"short",
		strings.Repeat("g", 64),
		strings.Repeat("A", 64),
		strings.Repeat("a", 63),
		strings.Repeat("a", 65),
	} {
		assert.False(t, guard.Validate(id, rc), "id %q should be rejected", id)
	}
	assert.Equal(t, 0, store.gets)
}

func TestGuard_OwnerBinding(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	guard := NewGuard(store, time.Minute, testLogger())

	t.Run("ip bound session rejects other ip", func(t *testing.T) {
		owner := models.RequestContext{ClientIP: "10.0.0.1"}
		sessionID, err := guard.Create(owner)
		require.NoError(t, err)

		assert.True(t, guard.Validate(sessionID, owner))
		assert.False(t, guard.Validate(sessionID, models.RequestContext{ClientIP: "10.0.0.2"}))
	})

	t.Run("user bound session rejects other user and anonymous", func(t *testing.T) {
		owner := models.RequestContext{UserID: 7, ClientIP: "10.0.0.1"}
		sessionID, err := guard.Create(owner)
		require.NoError(t, err)

		assert.True(t, guard.Validate(sessionID, owner))
		assert.False(t, guard.Validate(sessionID, models.RequestContext{UserID: 8, ClientIP: "10.0.0.1"}))
		assert.False(t, guard.Validate(sessionID, models.RequestContext{ClientIP: "10.0.0.1"}))
	})

	t.Run("user bound session survives ip change", func(t *testing.T) {
		owner := models.RequestContext{UserID: 7, ClientIP: "10.0.0.1"}
		sessionID, err := guard.Create(owner)
		require.NoError(t, err)

		assert.True(t, guard.Validate(sessionID, models.RequestContext{UserID: 7, ClientIP: "192.168.1.5"}))
	})
}

func TestGuard_Expiry(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	guard := NewGuard(store, time.Millisecond, testLogger())

	rc := models.RequestContext{ClientIP: "10.0.0.1"}
	sessionID, err := guard.Create(rc)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	assert.False(t, guard.Validate(sessionID, rc))
}

func TestGuard_RefreshExtends(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	guard := NewGuard(store, 50*time.Millisecond, testLogger())

	rc := models.RequestContext{ClientIP: "10.0.0.1"}
	sessionID, err := guard.Create(rc)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	guard.Refresh(sessionID)
	time.Sleep(30 * time.Millisecond)

	// Without the refresh the original window would have lapsed by now.
	assert.True(t, guard.Validate(sessionID, rc))
}

func TestGuard_End(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	guard := NewGuard(store, time.Minute, testLogger())

	rc := models.RequestContext{ClientIP: "10.0.0.1"}
	sessionID, err := guard.Create(rc)
	require.NoError(t, err)

	guard.End(sessionID)
	assert.False(t, guard.Validate(sessionID, rc))
}
