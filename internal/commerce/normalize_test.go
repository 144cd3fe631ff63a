package commerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripAccents(t *testing.T) {
	assert.Equal(t, "cafe", StripAccents("café"))
	assert.Equal(t, "acao", StripAccents("ação"))
	assert.Equal(t, "plain", StripAccents("plain"))
}

func TestNormalizeForSearch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Specialty Test of Wizard Kit", "wizard kit"},
		{"  TEST   Dice   Set ", "dice set"},
		{"Épée  spéciale", "epee speciale"},
		{"specialty", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeForSearch(tt.in), "input %q", tt.in)
	}
}

func TestMatchesName(t *testing.T) {
	// Cleaned query inside cleaned name.
	assert.True(t, MatchesName("wizard", "Wizard Miniature"))
	// Cleaned name inside cleaned query.
	assert.True(t, MatchesName("the amazing dice set deluxe", "Dice Set"))
	// Raw fallback when normalization empties the query.
	assert.True(t, MatchesName("Test", "A Test of Courage"))
	assert.False(t, MatchesName("wizard", "Dice Set"))
}

func TestPickVariation(t *testing.T) {
	product := &Product{
		Type: TypeVariable,
		Variations: []Variation{
			{ID: 1, Attributes: map[string]string{"model": "Standard"}},
			{ID: 2, Attributes: map[string]string{"model": "Retro"}},
		},
	}

	assert.Equal(t, int64(2), PickVariation(product, "retro").ID)
	assert.Equal(t, int64(1), PickVariation(product, "").ID)
	assert.Equal(t, int64(1), PickVariation(product, "holographic").ID)
	assert.Nil(t, PickVariation(&Product{Type: TypeSimple}, "retro"))
}

func TestFindKit(t *testing.T) {
	assert.NotNil(t, FindKit("wizard"))
	assert.Equal(t, "Wizard Kit", FindKit("specialty test of wizard").Name)
	assert.Nil(t, FindKit("paladin"))
	assert.Len(t, KitNames(), len(KitCatalog))
}
