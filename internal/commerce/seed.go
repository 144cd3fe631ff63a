package commerce

// DefaultCatalog seeds the in-memory backend with the store's product line:
// one miniature per class (in the four model styles), the shared dice set,
// and the class guides.
func DefaultCatalog() []Product {
	classes := []string{"Barbarian", "Cleric", "Druid", "Ranger", "Rogue", "Wizard"}

	var products []Product
	nextID := int64(100)
	nextVariationID := int64(1000)

	for _, class := range classes {
		miniature := Product{
			ID:      nextID,
			Name:    class + " Miniature",
			Type:    TypeVariable,
			Price:   14.90,
			InStock: true,
		}
		for _, model := range ModelVariants {
			miniature.Variations = append(miniature.Variations, Variation{
				ID:         nextVariationID,
				Attributes: map[string]string{"model": model},
				Price:      14.90,
				InStock:    true,
			})
			nextVariationID++
		}
		products = append(products, miniature)
		nextID++

		products = append(products, Product{
			ID:      nextID,
			Name:    "Class Guide: " + class,
			Type:    TypeSimple,
			Price:   9.90,
			InStock: true,
		})
		nextID++
	}

	products = append(products, Product{
		ID:      nextID,
		Name:    "Dice Set",
		Type:    TypeSimple,
		Price:   7.50,
		InStock: true,
	})

	return products
}
