package proposal

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shopchat/shopchat-backend/internal/cache"
)

const (
	idPrefix  = "prop_"
	keyPrefix = "proposal:"
)

// Item is one staged cart line inside a proposal.
type Item struct {
	ProductID   int64  `json:"product_id"`
	VariationID int64  `json:"variation_id"`
	Quantity    int    `json:"quantity"`
	Name        string `json:"name"`
}

// Proposal is a signed, short-lived batch of cart changes held server-side
// until the user confirms.
type Proposal struct {
	ID        string `json:"id"`
	Owner     string `json:"owner"`
	Items     []Item `json:"items"`
	Signature string `json:"signature"`
}

// Manager creates, verifies and consumes proposals. Expiry is enforced by the
// backing cache entry's TTL; once expired the proposal is physically gone.
type Manager struct {
	store  cache.Store
	secret []byte
	ttl    time.Duration
	logger *logrus.Logger
}

func NewManager(store cache.Store, secret string, ttl time.Duration, logger *logrus.Logger) *Manager {
	return &Manager{store: store, secret: []byte(secret), ttl: ttl, logger: logger}
}

// Create signs and stores a staged item batch for the given owner.
func (m *Manager) Create(items []Item, owner string) (*Proposal, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generating proposal id: %w", err)
	}

	p := &Proposal{
		ID:    idPrefix + hex.EncodeToString(buf),
		Owner: owner,
		Items: items,
	}
	sig, err := m.sign(p.ID, items)
	if err != nil {
		return nil, err
	}
	p.Signature = sig

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding proposal: %w", err)
	}
	m.store.Set(keyPrefix+p.ID, string(data), m.ttl)

	return p, nil
}

// Redeem returns the staged items when, and only when, the stored signature
// verifies and the caller is the owner. Both checks must pass; either failure
// denies redemption. A redeemed proposal is consumed.
func (m *Manager) Redeem(proposalID, owner string) ([]Item, bool) {
	data, ok := m.store.Get(keyPrefix + proposalID)
	if !ok {
		return nil, false
	}

	var p Proposal
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		m.logger.WithError(err).Warn("Corrupt proposal record")
		return nil, false
	}

	expected, err := m.sign(p.ID, p.Items)
	if err != nil {
		return nil, false
	}
	sigOK := hmac.Equal([]byte(expected), []byte(p.Signature))
	ownerOK := p.Owner == owner
	if !sigOK || !ownerOK {
		m.logger.WithFields(logrus.Fields{
			"proposal_id":   proposalID,
			"signature_ok":  sigOK,
			"owner_matched": ownerOK,
		}).Warn("Proposal redemption denied")
		return nil, false
	}

	m.store.Delete(keyPrefix + proposalID)
	return p.Items, true
}

// Delete discards a proposal without redeeming it.
func (m *Manager) Delete(proposalID string) {
	m.store.Delete(keyPrefix + proposalID)
}

func (m *Manager) sign(id string, items []Item) (string, error) {
	serialized, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding proposal items: %w", err)
	}
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(id))
	mac.Write(serialized)
	return hex.EncodeToString(mac.Sum(nil)), nil
}
