package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shopchat/shopchat-backend/internal/cache"
	"github.com/shopchat/shopchat-backend/internal/models"
)

const (
	tokenBytes = 32
	keyPrefix  = "session:"
)

type record struct {
	OwnerUserID int64  `json:"owner_user_id"`
	OwnerIP     string `json:"owner_ip"`
	CreatedAt   int64  `json:"created_at"`
}

// Guard owns session tokens: creation, ownership binding, sliding expiry.
// A session is bound to the authenticated user id when present, otherwise to
// the client IP. Validation requires the current caller to match the bound
// owner even before expiry.
type Guard struct {
	store  cache.Store
	ttl    time.Duration
	logger *logrus.Logger
}

func NewGuard(store cache.Store, ttl time.Duration, logger *logrus.Logger) *Guard {
	return &Guard{store: store, ttl: ttl, logger: logger}
}

// Create issues a new session token bound to the caller's identity.
func (g *Guard) Create(rc models.RequestContext) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	sessionID := hex.EncodeToString(buf)

	rec := record{CreatedAt: time.Now().Unix()}
	if rc.Authenticated() {
		rec.OwnerUserID = rc.UserID
	} else {
		rec.OwnerIP = rc.ClientIP
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encoding session record: %w", err)
	}
	g.store.Set(keyPrefix+sessionID, string(data), g.ttl)

	g.logger.WithFields(logrus.Fields{
		"session_id": sessionID[:8],
		"owner":      rc.Identifier(),
	}).Debug("Session created")

	return sessionID, nil
}

// Validate checks format, existence and ownership. The format check comes
// first so malformed tokens never reach the store.
func (g *Guard) Validate(sessionID string, rc models.RequestContext) bool {
	if !ValidFormat(sessionID) {
		return false
	}

	data, ok := g.store.Get(keyPrefix + sessionID)
	if !ok {
		return false
	}

	var rec record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		g.logger.WithError(err).Warn("Corrupt session record")
		return false
	}

	if rec.OwnerUserID > 0 {
		if !rc.Authenticated() || rc.UserID != rec.OwnerUserID {
			g.logger.WithFields(logrus.Fields{
				"session_id": sessionID[:8],
				"caller":     rc.Identifier(),
			}).Warn("Session owner mismatch")
			return false
		}
	} else if rec.OwnerIP != rc.ClientIP {
		g.logger.WithFields(logrus.Fields{
			"session_id": sessionID[:8],
			"caller":     rc.Identifier(),
		}).Warn("Session IP mismatch")
		return false
	}

	return true
}

// Refresh extends the sliding expiry window. No-op for unknown tokens.
func (g *Guard) Refresh(sessionID string) {
	if !ValidFormat(sessionID) {
		return
	}
	if data, ok := g.store.Get(keyPrefix + sessionID); ok {
		g.store.Set(keyPrefix+sessionID, data, g.ttl)
	}
}

// End destroys the session.
func (g *Guard) End(sessionID string) {
	if !ValidFormat(sessionID) {
		return
	}
	g.store.Delete(keyPrefix + sessionID)
}

// ValidFormat reports whether the token is exactly 64 lowercase hex chars.
func ValidFormat(sessionID string) bool {
	if len(sessionID) != tokenBytes*2 {
		return false
	}
	for i := 0; i < len(sessionID); i++ {
		c := sessionID[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
