package tools

import (
	"strings"

	"github.com/shopchat/shopchat-backend/internal/commerce"
	"github.com/shopchat/shopchat-backend/internal/gemini"
	"github.com/shopchat/shopchat-backend/internal/models"
	"github.com/shopchat/shopchat-backend/internal/proposal"
)

const fuzzyRemoveThreshold = 60.0

func (s *Service) viewCart(rc models.RequestContext, args gemini.Args) *Result {
	items, err := s.cart.Items(rc.Identifier())
	if err != nil {
		return Errorf("could not read cart: %v", err)
	}
	return Success("", cartData(items))
}

func (s *Service) addToCart(rc models.RequestContext, args gemini.Args) *Result {
	productID := argInt64(args, "product_id", 0)
	if productID <= 0 {
		return Errorf("product_id is required")
	}
	variationID := argInt64(args, "variation_id", 0)
	quantity := argInt(args, "quantity", 1)

	item, err := s.cart.Add(rc.Identifier(), productID, variationID, quantity)
	if err != nil {
		if _, ok := err.(*commerce.NotFoundError); ok {
			return NotFound(err.Error())
		}
		return Errorf("could not add to cart: %v", err)
	}
	return Success("added "+item.Name, map[string]interface{}{
		"item":       item,
		"cart_count": s.cartCount(rc),
	})
}

// removeFromCart resolves the identifier through a fixed chain: exact line
// key, positional reference, substring name match, then fuzzy name match.
// The first stage that matches wins.
func (s *Service) removeFromCart(rc models.RequestContext, args gemini.Args) *Result {
	identifier := strings.TrimSpace(argString(args, "identifier"))
	if identifier == "" {
		return Errorf("identifier is required")
	}

	owner := rc.Identifier()
	items, err := s.cart.Items(owner)
	if err != nil {
		return Errorf("could not read cart: %v", err)
	}
	if len(items) == 0 {
		return NotFound("the cart is empty")
	}

	// Stage 1: exact line-item key.
	for _, item := range items {
		if item.Key == identifier {
			if err := s.cart.Remove(owner, item.Key); err != nil {
				return Errorf("could not remove item: %v", err)
			}
			return s.removedResult(rc, []string{item.Name})
		}
	}

	// Stage 2: positional reference, 1-based in display order.
	if pos, ok := ParsePosition(identifier); ok && pos >= 1 && pos <= len(items) {
		item := items[pos-1]
		if err := s.cart.Remove(owner, item.Key); err != nil {
			return Errorf("could not remove item: %v", err)
		}
		return s.removedResult(rc, []string{item.Name})
	}

	// Stage 3: case-insensitive substring match, removing every hit.
	lowered := strings.ToLower(identifier)
	var removed []string
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), lowered) {
			if err := s.cart.Remove(owner, item.Key); err != nil {
				return Errorf("could not remove item: %v", err)
			}
			removed = append(removed, item.Name)
		}
	}
	if len(removed) > 0 {
		return s.removedResult(rc, removed)
	}

	// Stage 4: fuzzy match, single best item at or above the threshold.
	best := -1
	bestScore := 0.0
	for i, item := range items {
		score := SimilarityPercent(lowered, strings.ToLower(item.Name))
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best >= 0 && bestScore >= fuzzyRemoveThreshold {
		item := items[best]
		if err := s.cart.Remove(owner, item.Key); err != nil {
			return Errorf("could not remove item: %v", err)
		}
		return s.removedResult(rc, []string{item.Name})
	}

	return Errorf("no cart item matches %q; ask the user which item they mean", identifier)
}

func (s *Service) clearCart(rc models.RequestContext, args gemini.Args) *Result {
	if err := s.cart.Clear(rc.Identifier()); err != nil {
		return Errorf("could not clear cart: %v", err)
	}
	return Success("cart cleared", map[string]interface{}{"cart_count": 0})
}

// addMultipleToCart redeems a proposed cart by id, or adds an explicit item
// list when no proposal is given.
func (s *Service) addMultipleToCart(rc models.RequestContext, args gemini.Args) *Result {
	owner := rc.Identifier()

	if proposalID := argString(args, "proposal_id"); proposalID != "" {
		staged, ok := s.proposals.Redeem(proposalID, owner)
		if !ok {
			return NotFound("proposal not found, expired, or not redeemable")
		}
		return s.addStagedItems(rc, staged)
	}

	rawItems := argList(args, "items")
	if len(rawItems) == 0 {
		return Errorf("either proposal_id or items is required")
	}

	staged := make([]proposal.Item, 0, len(rawItems))
	for _, raw := range rawItems {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			return Errorf("malformed item entry")
		}
		item := proposal.Item{
			ProductID:   argInt64(gemini.Args(entry), "product_id", 0),
			VariationID: argInt64(gemini.Args(entry), "variation_id", 0),
			Quantity:    argInt(gemini.Args(entry), "quantity", 1),
		}
		if item.ProductID <= 0 {
			return Errorf("every item needs a product_id")
		}
		staged = append(staged, item)
	}
	return s.addStagedItems(rc, staged)
}

func (s *Service) addStagedItems(rc models.RequestContext, staged []proposal.Item) *Result {
	owner := rc.Identifier()
	var added []string
	var failures []string
	for _, item := range staged {
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		cartItem, err := s.cart.Add(owner, item.ProductID, item.VariationID, quantity)
		if err != nil {
			failures = append(failures, err.Error())
			continue
		}
		added = append(added, cartItem.Name)
	}

	data := map[string]interface{}{
		"added":      added,
		"cart_count": s.cartCount(rc),
	}
	if len(failures) > 0 {
		data["failures"] = failures
	}
	if len(added) == 0 {
		return &Result{Status: StatusError, Message: "no items could be added", Data: data}
	}
	return Success("", data)
}

func (s *Service) removedResult(rc models.RequestContext, names []string) *Result {
	return Success("removed "+strings.Join(names, ", "), map[string]interface{}{
		"removed":    names,
		"cart_count": s.cartCount(rc),
	})
}

func (s *Service) cartCount(rc models.RequestContext) int {
	count, err := s.cart.Count(rc.Identifier())
	if err != nil {
		s.logger.WithError(err).Warn("Cart count failed")
		return 0
	}
	return count
}

func cartData(items []commerce.CartItem) map[string]interface{} {
	total := 0.0
	count := 0
	for _, item := range items {
		total += item.LineTotal
		count += item.Quantity
	}
	return map[string]interface{}{
		"items":      items,
		"item_count": count,
		"total":      total,
	}
}
