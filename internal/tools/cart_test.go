package tools

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopchat/shopchat-backend/internal/cache"
	"github.com/shopchat/shopchat-backend/internal/commerce"
	"github.com/shopchat/shopchat-backend/internal/gemini"
	"github.com/shopchat/shopchat-backend/internal/models"
	"github.com/shopchat/shopchat-backend/internal/proposal"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testCatalog() []commerce.Product {
	return []commerce.Product{
		{ID: 1, Name: "Cactos", Type: commerce.TypeSimple, Price: 5, InStock: true},
		{ID: 2, Name: "Dice Set", Type: commerce.TypeSimple, Price: 7.5, InStock: true},
		{ID: 3, Name: "Wizard Miniature", Type: commerce.TypeVariable, Price: 14.9, InStock: true,
			Variations: []commerce.Variation{
				{ID: 31, Attributes: map[string]string{"model": "Standard"}, Price: 14.9, InStock: true},
				{ID: 32, Attributes: map[string]string{"model": "Retro"}, Price: 16.9, InStock: true},
			}},
		{ID: 4, Name: "Sold Out Thing", Type: commerce.TypeSimple, Price: 1, InStock: false},
	}
}

func newTestService(t *testing.T) (*Service, *commerce.MemoryBackend, models.RequestContext) {
	t.Helper()
	backend := commerce.NewMemoryBackend(testCatalog())
	store := cache.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	proposals := proposal.NewManager(store, "test-secret", time.Minute, testLogger())
	svc := NewService(backend, backend, proposals, testLogger())
	return svc, backend, models.RequestContext{ClientIP: "10.0.0.1"}
}

func fillCart(t *testing.T, backend *commerce.MemoryBackend, rc models.RequestContext, productIDs ...int64) {
	t.Helper()
	for _, id := range productIDs {
		_, err := backend.Add(rc.Identifier(), id, 0, 1)
		require.NoError(t, err)
	}
}

func TestViewCart(t *testing.T) {
	svc, backend, rc := newTestService(t)
	fillCart(t, backend, rc, 1, 2)

	result := svc.viewCart(rc, nil)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 2, result.Data["item_count"])
	assert.InDelta(t, 12.5, result.Data["total"].(float64), 0.01)
}

func TestAddToCart(t *testing.T) {
	svc, _, rc := newTestService(t)

	result := svc.addToCart(rc, gemini.Args{"product_id": float64(2), "quantity": float64(3)})
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 3, result.Data["cart_count"])

	result = svc.addToCart(rc, gemini.Args{"product_id": float64(999)})
	assert.Equal(t, StatusNotFound, result.Status)

	result = svc.addToCart(rc, gemini.Args{"product_id": float64(4)})
	assert.Equal(t, StatusError, result.Status)
}

func TestRemoveFromCart_ExactKey(t *testing.T) {
	svc, backend, rc := newTestService(t)
	item, err := backend.Add(rc.Identifier(), 1, 0, 1)
	require.NoError(t, err)

	result := svc.removeFromCart(rc, gemini.Args{"identifier": item.Key})
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, []string{"Cactos"}, result.Data["removed"])
}

func TestRemoveFromCart_PositionalOnThreeItems(t *testing.T) {
	svc, backend, rc := newTestService(t)
	fillCart(t, backend, rc, 1, 2, 3)

	result := svc.removeFromCart(rc, gemini.Args{"identifier": "2"})
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, []string{"Dice Set"}, result.Data["removed"])

	items, err := backend.Items(rc.Identifier())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Cactos", items[0].Name)
}

func TestRemoveFromCart_PositionalVariants(t *testing.T) {
	for _, identifier := range []string{"second", "ii", "2nd", "item 2"} {
		t.Run(identifier, func(t *testing.T) {
			svc, backend, rc := newTestService(t)
			fillCart(t, backend, rc, 1, 2, 3)

			result := svc.removeFromCart(rc, gemini.Args{"identifier": identifier})
			assert.Equal(t, StatusSuccess, result.Status)
			assert.Equal(t, []string{"Dice Set"}, result.Data["removed"])
		})
	}
}

func TestRemoveFromCart_PositionOutOfRangeFallsThrough(t *testing.T) {
	svc, backend, rc := newTestService(t)
	fillCart(t, backend, rc, 1, 2)

	// "9" parses as a position but exceeds the cart size, and nothing is
	// named "9", so the chain ends in a clarification error.
	result := svc.removeFromCart(rc, gemini.Args{"identifier": "9"})
	assert.Equal(t, StatusError, result.Status)
}

func TestRemoveFromCart_SubstringRemovesAllMatches(t *testing.T) {
	svc, backend, rc := newTestService(t)
	fillCart(t, backend, rc, 1, 2)
	_, err := backend.Add(rc.Identifier(), 3, 31, 1)
	require.NoError(t, err)

	// "set" matches only the dice set; "i" would match several.
	result := svc.removeFromCart(rc, gemini.Args{"identifier": "SET"})
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, []string{"Dice Set"}, result.Data["removed"])

	items, err := backend.Items(rc.Identifier())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestRemoveFromCart_FuzzyAtThreshold(t *testing.T) {
	svc, backend, rc := newTestService(t)
	fillCart(t, backend, rc, 1, 2)

	// "cans" vs "cactos" scores exactly 60%, which clears the threshold.
	result := svc.removeFromCart(rc, gemini.Args{"identifier": "cans"})
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, []string{"Cactos"}, result.Data["removed"])
}

func TestRemoveFromCart_FuzzyBelowThresholdAsksClarification(t *testing.T) {
	svc, backend, rc := newTestService(t)
	fillCart(t, backend, rc, 2)

	result := svc.removeFromCart(rc, gemini.Args{"identifier": "qqq"})
	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Message, "qqq")
}

func TestRemoveFromCart_EmptyCart(t *testing.T) {
	svc, _, rc := newTestService(t)

	result := svc.removeFromCart(rc, gemini.Args{"identifier": "anything"})
	assert.Equal(t, StatusNotFound, result.Status)
}

func TestClearCart(t *testing.T) {
	svc, backend, rc := newTestService(t)
	fillCart(t, backend, rc, 1, 2)

	result := svc.clearCart(rc, nil)
	assert.Equal(t, StatusSuccess, result.Status)

	items, err := backend.Items(rc.Identifier())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAddProductsByName(t *testing.T) {
	svc, backend, rc := newTestService(t)

	result := svc.addProductsByName(rc, gemini.Args{
		"names":            []interface{}{"wizard", "dice set", "unobtainium"},
		"model_preference": "retro",
	})
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, []string{"unobtainium"}, result.Data["not_found"])

	items, err := backend.Items(rc.Identifier())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Wizard Miniature (Retro)", items[0].Name)
	assert.Equal(t, int64(32), items[0].VariationID)
}

func TestProposalRoundTrip(t *testing.T) {
	svc, backend, rc := newTestService(t)

	created := svc.createProposedCart(rc, gemini.Args{
		"items": []interface{}{
			map[string]interface{}{"name": "dice set", "quantity": float64(2)},
			map[string]interface{}{"name": "wizard", "model_preference": "retro"},
			map[string]interface{}{"name": "sold out thing"},
		},
	})
	require.Equal(t, StatusProposalReady, created.Status)
	proposalID := created.Data["proposal_id"].(string)
	assert.NotEmpty(t, created.Data["signature"])
	assert.Contains(t, created.Data["errors"], "out of stock: sold out thing")

	// The cart is untouched until the proposal is redeemed.
	items, err := backend.Items(rc.Identifier())
	require.NoError(t, err)
	assert.Empty(t, items)

	redeemed := svc.addMultipleToCart(rc, gemini.Args{"proposal_id": proposalID})
	assert.Equal(t, StatusSuccess, redeemed.Status)
	assert.Equal(t, 3, redeemed.Data["cart_count"])

	// A proposal is consumed on redemption.
	again := svc.addMultipleToCart(rc, gemini.Args{"proposal_id": proposalID})
	assert.Equal(t, StatusNotFound, again.Status)
}

func TestAddMultipleToCart_ExplicitItems(t *testing.T) {
	svc, _, rc := newTestService(t)

	result := svc.addMultipleToCart(rc, gemini.Args{
		"items": []interface{}{
			map[string]interface{}{"product_id": float64(2), "quantity": float64(2)},
			map[string]interface{}{"product_id": float64(1)},
		},
	})
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 3, result.Data["cart_count"])
}
