package tools

import (
	"strings"

	"github.com/shopchat/shopchat-backend/internal/commerce"
	"github.com/shopchat/shopchat-backend/internal/gemini"
	"github.com/shopchat/shopchat-backend/internal/models"
)

// listOrGetSpecialtyKit lists every kit when no name is given, otherwise
// resolves one kit and its items against the catalog.
func (s *Service) listOrGetSpecialtyKit(rc models.RequestContext, args gemini.Args) *Result {
	kitName := strings.TrimSpace(argString(args, "kit_name"))
	if kitName == "" {
		kits := make([]map[string]interface{}, 0, len(commerce.KitCatalog))
		for _, kit := range commerce.KitCatalog {
			kits = append(kits, map[string]interface{}{
				"name":        kit.Name,
				"description": kit.Description,
				"item_count":  len(kit.Items),
			})
		}
		return Success("", map[string]interface{}{
			"kits":   kits,
			"models": commerce.ModelVariants,
		})
	}

	kit := commerce.FindKit(kitName)
	if kit == nil {
		return NotFound("no kit matches " + kitName)
	}

	modelPreference := argString(args, "model_preference")
	resolved := make([]map[string]interface{}, 0, len(kit.Items))
	var missing []string
	total := 0.0

	for _, itemName := range kit.Items {
		product := s.resolveByName(itemName)
		if product == nil {
			missing = append(missing, itemName)
			continue
		}

		entry := map[string]interface{}{
			"name":       product.Name,
			"product_id": product.ID,
			"price":      product.Price,
		}
		if product.Type == commerce.TypeVariable {
			if v := commerce.PickVariation(product, modelPreference); v != nil {
				entry["variation_id"] = v.ID
				entry["price"] = v.Price
				total += v.Price
			}
		} else {
			total += product.Price
		}
		resolved = append(resolved, entry)
	}

	data := map[string]interface{}{
		"kit":         kit.Name,
		"description": kit.Description,
		"items":       resolved,
		"total":       total,
	}
	if len(missing) > 0 {
		data["unavailable"] = missing
	}
	return Success("", data)
}
