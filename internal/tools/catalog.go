package tools

import (
	"strings"

	"github.com/shopchat/shopchat-backend/internal/commerce"
	"github.com/shopchat/shopchat-backend/internal/gemini"
	"github.com/shopchat/shopchat-backend/internal/models"
)

func (s *Service) searchProducts(rc models.RequestContext, args gemini.Args) *Result {
	query := strings.TrimSpace(argString(args, "query"))
	if query == "" {
		return Errorf("query is required")
	}
	limit := argInt(args, "limit", 10)
	if limit < 1 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	products, err := s.catalog.Search(query, limit)
	if err != nil {
		return Errorf("search failed: %v", err)
	}
	if len(products) == 0 {
		return NotFound("no products match " + query)
	}
	return Success("", map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

// addProductsByName resolves each requested name against the catalog and adds
// the resolved product, picking the variant that matches the model preference
// for variable products.
func (s *Service) addProductsByName(rc models.RequestContext, args gemini.Args) *Result {
	names := argStringList(args, "names")
	if len(names) == 0 {
		return Errorf("names is required")
	}
	modelPreference := argString(args, "model_preference")

	owner := rc.Identifier()
	var added []string
	var notFound []string
	var failures []string

	for _, name := range names {
		product := s.resolveByName(name)
		if product == nil {
			notFound = append(notFound, name)
			continue
		}

		var variationID int64
		if product.Type == commerce.TypeVariable {
			if v := commerce.PickVariation(product, modelPreference); v != nil {
				variationID = v.ID
			}
		}

		item, err := s.cart.Add(owner, product.ID, variationID, 1)
		if err != nil {
			failures = append(failures, name+": "+err.Error())
			continue
		}
		added = append(added, item.Name)
	}

	data := map[string]interface{}{
		"added":      added,
		"cart_count": s.cartCount(rc),
	}
	if len(notFound) > 0 {
		data["not_found"] = notFound
	}
	if len(failures) > 0 {
		data["failures"] = failures
	}
	if len(added) == 0 {
		return &Result{Status: StatusNotFound, Message: "none of the requested products were found", Data: data}
	}
	return Success("", data)
}

// resolveByName finds the catalog product for a requested name using the
// normalized three-step matching order. The first product the matcher accepts
// wins; when the backend returned candidates but none pass, the first
// candidate is used.
func (s *Service) resolveByName(name string) *commerce.Product {
	candidates, err := s.catalog.Search(name, 0)
	if err != nil {
		s.logger.WithError(err).WithField("name", name).Warn("Catalog lookup failed")
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}
	for i := range candidates {
		if commerce.MatchesName(name, candidates[i].Name) {
			return &candidates[i]
		}
	}
	return &candidates[0]
}
