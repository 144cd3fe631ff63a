package commerce

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// MemoryBackend is an in-process Catalog and Cart. It backs tests and local
// development; production wires a real store behind the same interfaces.
type MemoryBackend struct {
	mu       sync.RWMutex
	products []Product
	carts    map[string][]CartItem
}

func NewMemoryBackend(products []Product) *MemoryBackend {
	return &MemoryBackend{
		products: products,
		carts:    make(map[string][]CartItem),
	}
}

func (m *MemoryBackend) Search(query string, limit int) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []Product
	for _, p := range m.products {
		if MatchesName(query, p.Name) {
			results = append(results, p)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

func (m *MemoryBackend) GetProduct(id int64) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.products {
		if m.products[i].ID == id {
			p := m.products[i]
			return &p, nil
		}
	}
	return nil, &NotFoundError{Kind: "product", Ref: strconv.FormatInt(id, 10)}
}

func (m *MemoryBackend) Items(owner string) ([]CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]CartItem, len(m.carts[owner]))
	copy(items, m.carts[owner])
	return items, nil
}

func (m *MemoryBackend) Add(owner string, productID, variationID int64, quantity int) (*CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var product *Product
	for i := range m.products {
		if m.products[i].ID == productID {
			product = &m.products[i]
			break
		}
	}
	if product == nil {
		return nil, &NotFoundError{Kind: "product", Ref: strconv.FormatInt(productID, 10)}
	}
	if !product.InStock {
		return nil, fmt.Errorf("product out of stock: %s", product.Name)
	}

	name := product.Name
	price := product.Price
	if variationID > 0 {
		found := false
		for _, v := range product.Variations {
			if v.ID == variationID {
				price = v.Price
				if model, ok := v.Attributes["model"]; ok {
					name = product.Name + " (" + model + ")"
				}
				found = true
				break
			}
		}
		if !found {
			return nil, &NotFoundError{Kind: "variation", Ref: strconv.FormatInt(variationID, 10)}
		}
	}

	key := lineItemKey(owner, productID, variationID)
	items := m.carts[owner]
	for i := range items {
		if items[i].Key == key {
			items[i].Quantity += quantity
			items[i].LineTotal = items[i].Price * float64(items[i].Quantity)
			m.carts[owner] = items
			item := items[i]
			return &item, nil
		}
	}

	item := CartItem{
		Key:         key,
		ProductID:   productID,
		VariationID: variationID,
		Name:        name,
		Quantity:    quantity,
		Price:       price,
		LineTotal:   price * float64(quantity),
	}
	m.carts[owner] = append(items, item)
	return &item, nil
}

func (m *MemoryBackend) Remove(owner, itemKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.carts[owner]
	for i := range items {
		if items[i].Key == itemKey {
			m.carts[owner] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Kind: "cart item", Ref: itemKey}
}

func (m *MemoryBackend) Clear(owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, owner)
	return nil
}

func (m *MemoryBackend) Count(owner string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, item := range m.carts[owner] {
		count += item.Quantity
	}
	return count, nil
}

// lineItemKey derives the stable 32-hex line token from the line's identity.
func lineItemKey(owner string, productID, variationID int64) string {
	sum := md5.Sum([]byte(strings.Join([]string{
		owner,
		strconv.FormatInt(productID, 10),
		strconv.FormatInt(variationID, 10),
	}, "|")))
	return hex.EncodeToString(sum[:])
}
