package commerce

// Kit is a curated bundle of products sold as one themed set. Kits are not
// catalog products themselves; their items resolve to catalog products at
// lookup time.
type Kit struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Items       []string `json:"items"`
}

// ModelVariants are the miniature model styles a buyer can prefer when a kit
// item is a variable product.
var ModelVariants = []string{"Standard", "Neutral", "Detailed", "Retro"}

// KitCatalog lists the six class kits plus the all-classes bundle.
var KitCatalog = []Kit{
	{
		Name:        "Barbarian Kit",
		Description: "Everything for a barbarian player",
		Items:       []string{"Barbarian Miniature", "Dice Set", "Class Guide: Barbarian"},
	},
	{
		Name:        "Cleric Kit",
		Description: "Everything for a cleric player",
		Items:       []string{"Cleric Miniature", "Dice Set", "Class Guide: Cleric"},
	},
	{
		Name:        "Druid Kit",
		Description: "Everything for a druid player",
		Items:       []string{"Druid Miniature", "Dice Set", "Class Guide: Druid"},
	},
	{
		Name:        "Ranger Kit",
		Description: "Everything for a ranger player",
		Items:       []string{"Ranger Miniature", "Dice Set", "Class Guide: Ranger"},
	},
	{
		Name:        "Rogue Kit",
		Description: "Everything for a rogue player",
		Items:       []string{"Rogue Miniature", "Dice Set", "Class Guide: Rogue"},
	},
	{
		Name:        "Wizard Kit",
		Description: "Everything for a wizard player",
		Items:       []string{"Wizard Miniature", "Dice Set", "Class Guide: Wizard"},
	},
	{
		Name:        "All Classes Bundle",
		Description: "One miniature of every class plus a dice set",
		Items: []string{
			"Barbarian Miniature", "Cleric Miniature", "Druid Miniature",
			"Ranger Miniature", "Rogue Miniature", "Wizard Miniature", "Dice Set",
		},
	},
}

// FindKit resolves a kit by name using the same normalized matching rules as
// product lookup. Returns nil when nothing matches.
func FindKit(name string) *Kit {
	for i := range KitCatalog {
		if MatchesName(name, KitCatalog[i].Name) {
			return &KitCatalog[i]
		}
	}
	return nil
}

// KitNames returns the display names of every kit.
func KitNames() []string {
	names := make([]string, len(KitCatalog))
	for i, k := range KitCatalog {
		names[i] = k.Name
	}
	return names
}
