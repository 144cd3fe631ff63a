package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityPercent(t *testing.T) {
	assert.InDelta(t, 100.0, SimilarityPercent("dice set", "dice set"), 0.01)
	assert.InDelta(t, 0.0, SimilarityPercent("abc", "xyz"), 0.01)
	assert.InDelta(t, 0.0, SimilarityPercent("", ""), 0.01)

	// "cans" vs "cactos": common runs "ca" and "s", 3 matching chars over
	// 10 total, exactly at the 60% removal threshold.
	assert.InDelta(t, 60.0, SimilarityPercent("cans", "cactos"), 0.01)
}

func TestSimilarityPercent_Symmetric(t *testing.T) {
	a := SimilarityPercent("wizard miniature", "wizzard miniture")
	b := SimilarityPercent("wizzard miniture", "wizard miniature")
	assert.InDelta(t, a, b, 0.01)
	assert.Greater(t, a, 80.0)
}
