package tools

import (
	"strings"

	"github.com/shopchat/shopchat-backend/internal/commerce"
	"github.com/shopchat/shopchat-backend/internal/gemini"
	"github.com/shopchat/shopchat-backend/internal/models"
	"github.com/shopchat/shopchat-backend/internal/proposal"
)

// createProposedCart validates the requested items against the catalog and
// stages them as a signed proposal. The cart itself is never touched; the
// proposal is redeemed later through add_multiple_to_cart once the user
// confirms.
func (s *Service) createProposedCart(rc models.RequestContext, args gemini.Args) *Result {
	rawItems := argList(args, "items")
	if len(rawItems) == 0 {
		return Errorf("items is required")
	}

	var resolved []proposal.Item
	var problems []string

	for _, raw := range rawItems {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			problems = append(problems, "malformed item entry")
			continue
		}
		entryArgs := gemini.Args(entry)

		name := strings.TrimSpace(argString(entryArgs, "name"))
		if name == "" {
			problems = append(problems, "item without a name")
			continue
		}

		product := s.resolveByName(name)
		if product == nil {
			problems = append(problems, "not found: "+name)
			continue
		}
		if !product.InStock {
			problems = append(problems, "out of stock: "+name)
			continue
		}

		item := proposal.Item{
			ProductID: product.ID,
			Quantity:  argInt(entryArgs, "quantity", 1),
			Name:      product.Name,
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if product.Type == commerce.TypeVariable {
			if v := commerce.PickVariation(product, argString(entryArgs, "model_preference")); v != nil {
				item.VariationID = v.ID
			}
		}
		resolved = append(resolved, item)
	}

	if len(resolved) == 0 {
		return &Result{
			Status:  StatusNotFound,
			Message: "none of the requested items could be resolved",
			Data:    map[string]interface{}{"errors": problems},
		}
	}

	p, err := s.proposals.Create(resolved, rc.Identifier())
	if err != nil {
		return Errorf("could not stage proposal: %v", err)
	}

	data := map[string]interface{}{
		"proposal_id": p.ID,
		"signature":   p.Signature,
		"items":       resolved,
	}
	if len(problems) > 0 {
		data["errors"] = problems
	}
	return &Result{
		Status:  StatusProposalReady,
		Message: "proposal staged; confirm with add_multiple_to_cart",
		Data:    data,
	}
}
