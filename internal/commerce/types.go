package commerce

import "fmt"

// Product types as reported by the catalog.
const (
	TypeSimple   = "simple"
	TypeVariable = "variable"
)

// Product is a catalog entry. Variable products carry one or more variations
// distinguished by attribute values.
type Product struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	Price      float64     `json:"price"`
	InStock    bool        `json:"in_stock"`
	Variations []Variation `json:"variations,omitempty"`
}

// Variation is one purchasable variant of a variable product.
type Variation struct {
	ID         int64             `json:"id"`
	Attributes map[string]string `json:"attributes"`
	Price      float64           `json:"price"`
	InStock    bool              `json:"in_stock"`
}

// CartItem is one line in a cart. Key is a fixed-length hex token assigned by
// the cart backend and stable for the life of the line.
type CartItem struct {
	Key         string  `json:"key"`
	ProductID   int64   `json:"product_id"`
	VariationID int64   `json:"variation_id"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	LineTotal   float64 `json:"line_total"`
}

// Catalog is the product search surface of the commerce backend.
type Catalog interface {
	Search(query string, limit int) ([]Product, error)
	GetProduct(id int64) (*Product, error)
}

// Cart is the per-owner cart surface of the commerce backend. Owner is the
// caller identity string (user id or client IP).
type Cart interface {
	Items(owner string) ([]CartItem, error)
	Add(owner string, productID, variationID int64, quantity int) (*CartItem, error)
	Remove(owner, itemKey string) error
	Clear(owner string) error
	Count(owner string) (int, error)
}

// NotFoundError indicates a product or cart line that does not exist.
type NotFoundError struct {
	Kind string
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Ref)
}
