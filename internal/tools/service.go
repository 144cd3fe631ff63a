package tools

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shopchat/shopchat-backend/internal/commerce"
	"github.com/shopchat/shopchat-backend/internal/gemini"
	"github.com/shopchat/shopchat-backend/internal/proposal"
)

// Cache TTLs for read-only tools. Short on purpose: cart and stock state
// changes frequently.
const (
	searchCacheTTL = 300 * time.Second
	cartCacheTTL   = 30 * time.Second
	kitCacheTTL    = 300 * time.Second
)

const maxSearchLimit = 20

// Service implements every commerce tool the model may invoke.
type Service struct {
	catalog   commerce.Catalog
	cart      commerce.Cart
	proposals *proposal.Manager
	logger    *logrus.Logger
}

func NewService(catalog commerce.Catalog, cart commerce.Cart, proposals *proposal.Manager, logger *logrus.Logger) *Service {
	return &Service{
		catalog:   catalog,
		cart:      cart,
		proposals: proposals,
		logger:    logger,
	}
}

// Registry builds the tool registry with every operation, its schema, and its
// dispatch metadata.
func (s *Service) Registry() *Registry {
	r := NewRegistry()

	r.Register(&Spec{
		Declaration: gemini.FunctionDeclaration{
			Name:        "search_products",
			Description: "Search the product catalog by name or keyword.",
			Parameters: &gemini.Schema{
				Type: "object",
				Properties: map[string]*gemini.Schema{
					"query": {Type: "string", Description: "Search terms"},
					"limit": {Type: "integer", Description: "Maximum results, up to 20"},
				},
				Required: []string{"query"},
			},
		},
		CacheTTL:    searchCacheTTL,
		CachePrefix: "catalog:",
		Handler:     s.searchProducts,
	})

	r.Register(&Spec{
		Declaration: gemini.FunctionDeclaration{
			Name:        "view_cart",
			Description: "List the current contents of the shopping cart.",
		},
		CacheTTL:    cartCacheTTL,
		CachePrefix: "cart:",
		PerOwner:    true,
		Handler:     s.viewCart,
	})

	r.Register(&Spec{
		Declaration: gemini.FunctionDeclaration{
			Name:        "add_to_cart",
			Description: "Add a product to the cart by its catalog id.",
			Parameters: &gemini.Schema{
				Type: "object",
				Properties: map[string]*gemini.Schema{
					"product_id":   {Type: "integer", Description: "Catalog product id"},
					"variation_id": {Type: "integer", Description: "Variation id for variable products, 0 for simple products"},
					"quantity":     {Type: "integer", Description: "Quantity to add, defaults to 1"},
				},
				Required: []string{"product_id"},
			},
		},
		Mutating: true,
		Handler:  s.addToCart,
	})

	r.Register(&Spec{
		Declaration: gemini.FunctionDeclaration{
			Name:        "remove_from_cart",
			Description: "Remove an item from the cart. The identifier may be a cart item key, a position like '2' or 'second', or a product name.",
			Parameters: &gemini.Schema{
				Type: "object",
				Properties: map[string]*gemini.Schema{
					"identifier": {Type: "string", Description: "Item key, 1-based position, or product name"},
				},
				Required: []string{"identifier"},
			},
		},
		Mutating: true,
		Handler:  s.removeFromCart,
	})

	r.Register(&Spec{
		Declaration: gemini.FunctionDeclaration{
			Name:        "clear_cart",
			Description: "Remove every item from the cart.",
		},
		Mutating: true,
		Handler:  s.clearCart,
	})

	r.Register(&Spec{
		Declaration: gemini.FunctionDeclaration{
			Name:        "add_multiple_to_cart",
			Description: "Add several items to the cart at once, either by redeeming a previously proposed cart or from an explicit item list.",
			Parameters: &gemini.Schema{
				Type: "object",
				Properties: map[string]*gemini.Schema{
					"proposal_id": {Type: "string", Description: "Id of a proposed cart to confirm"},
					"items": {
						Type:        "array",
						Description: "Explicit items when no proposal is used",
						Items: &gemini.Schema{
							Type: "object",
							Properties: map[string]*gemini.Schema{
								"product_id":   {Type: "integer"},
								"variation_id": {Type: "integer"},
								"quantity":     {Type: "integer"},
							},
							Required: []string{"product_id"},
						},
					},
				},
			},
		},
		Mutating: true,
		Handler:  s.addMultipleToCart,
	})

	r.Register(&Spec{
		Declaration: gemini.FunctionDeclaration{
			Name:        "add_products_by_name",
			Description: "Add products to the cart by their names, resolving each name against the catalog.",
			Parameters: &gemini.Schema{
				Type: "object",
				Properties: map[string]*gemini.Schema{
					"names":            {Type: "array", Description: "Product names to add", Items: &gemini.Schema{Type: "string"}},
					"model_preference": {Type: "string", Description: "Preferred model variant", Enum: commerce.ModelVariants},
				},
				Required: []string{"names"},
			},
		},
		Mutating: true,
		Handler:  s.addProductsByName,
	})

	r.Register(&Spec{
		Declaration: gemini.FunctionDeclaration{
			Name:        "list_or_get_specialty_kit",
			Description: "List the available specialty kits, or fetch one kit with its items resolved against the catalog.",
			Parameters: &gemini.Schema{
				Type: "object",
				Properties: map[string]*gemini.Schema{
					"kit_name":         {Type: "string", Description: "Kit to fetch; omit to list all kits"},
					"model_preference": {Type: "string", Description: "Preferred model variant", Enum: commerce.ModelVariants},
				},
			},
		},
		CacheTTL:    kitCacheTTL,
		CachePrefix: "catalog:",
		Handler:     s.listOrGetSpecialtyKit,
	})

	r.Register(&Spec{
		Declaration: gemini.FunctionDeclaration{
			Name:        "create_proposed_cart",
			Description: "Validate a list of requested items against the catalog and stage them as a proposed cart for the user to confirm. Does not modify the cart.",
			Parameters: &gemini.Schema{
				Type: "object",
				Properties: map[string]*gemini.Schema{
					"items": {
						Type:        "array",
						Description: "Requested items by name",
						Items: &gemini.Schema{
							Type: "object",
							Properties: map[string]*gemini.Schema{
								"name":             {Type: "string"},
								"quantity":         {Type: "integer"},
								"model_preference": {Type: "string"},
							},
							Required: []string{"name"},
						},
					},
				},
				Required: []string{"items"},
			},
		},
		Handler: s.createProposedCart,
	})

	return r
}
