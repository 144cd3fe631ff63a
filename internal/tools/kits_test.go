package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopchat/shopchat-backend/internal/commerce"
	"github.com/shopchat/shopchat-backend/internal/gemini"
	"github.com/shopchat/shopchat-backend/internal/models"
)

func TestListOrGetSpecialtyKit_List(t *testing.T) {
	svc, _, rc := newTestService(t)

	result := svc.listOrGetSpecialtyKit(rc, nil)
	require.Equal(t, StatusSuccess, result.Status)

	kits := result.Data["kits"].([]map[string]interface{})
	assert.Len(t, kits, len(commerce.KitCatalog))
	assert.Equal(t, commerce.ModelVariants, result.Data["models"])
}

func TestListOrGetSpecialtyKit_Fetch(t *testing.T) {
	// The full seed catalog backs kit resolution here; the small test
	// catalog lacks the guide products.
	backend := commerce.NewMemoryBackend(commerce.DefaultCatalog())
	svc := NewService(backend, backend, nil, testLogger())

	result := svc.listOrGetSpecialtyKit(models.RequestContext{ClientIP: "10.0.0.1"}, gemini.Args{
		"kit_name":         "specialty test of wizard",
		"model_preference": "retro",
	})
	require.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "Wizard Kit", result.Data["kit"])

	items := result.Data["items"].([]map[string]interface{})
	require.Len(t, items, 3)
	assert.Equal(t, "Wizard Miniature", items[0]["name"])
	assert.NotNil(t, items[0]["variation_id"])
	assert.Greater(t, result.Data["total"].(float64), 0.0)
}

func TestListOrGetSpecialtyKit_Unknown(t *testing.T) {
	svc, _, rc := newTestService(t)

	result := svc.listOrGetSpecialtyKit(rc, gemini.Args{"kit_name": "paladin"})
	assert.Equal(t, StatusNotFound, result.Status)
}
