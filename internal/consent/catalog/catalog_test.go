package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "stacia/pkg/domain"
)

func TestResolve_EveryBusinessHasEightDefinitions(t *testing.T) {
	for _, business := range id.BusinessCategories() {
		defs := Resolve(business)
		require.Len(t, defs, id.CategoryKeyCount, "business %s", business)
		assert.True(t, defs[id.CategoryEssential].Required, "business %s", business)
		for key, def := range defs {
			assert.Equal(t, key, def.Key)
			assert.Equal(t, key.IsEssential(), def.Required, "only essential is required")
			assert.NotEmpty(t, def.Title)
			assert.NotEmpty(t, def.Description)
			assert.NotEmpty(t, def.Detail)
		}
	}
}

func TestResolve_Unselected(t *testing.T) {
	assert.Empty(t, Resolve(id.BusinessUnselected))
	assert.Empty(t, ResolveOrdered(id.BusinessUnselected))
}

func TestResolve_UnknownBusinessGetsBaseSet(t *testing.T) {
	defs := Resolve(id.BusinessCategory("aerospace"))
	require.Len(t, defs, id.CategoryKeyCount)
	assert.Equal(t, "Help us understand how you use our services", defs[id.CategoryAnalytics].Description)
}

func TestResolve_BankingVersusHealthcare(t *testing.T) {
	banking := Resolve(id.BusinessBanking)
	healthcare := Resolve(id.BusinessHealthcare)

	assert.Equal(t, "Financial analytics and fraud detection", banking[id.CategoryAnalytics].Description)
	assert.Equal(t, "Medical analytics for improved patient care", healthcare[id.CategoryAnalytics].Description)
	assert.NotEqual(t, banking[id.CategoryProfiling].Description, healthcare[id.CategoryProfiling].Description)
	assert.NotEqual(t, banking[id.CategoryLocation].Description, healthcare[id.CategoryLocation].Description)
	assert.NotEqual(t, banking[id.CategoryCommunication].Description, healthcare[id.CategoryCommunication].Description)

	for _, key := range id.ConsentCategoryKeys() {
		assert.Equal(t, banking[key].Title, healthcare[key].Title, "title of %s", key)
		assert.Equal(t, banking[key].Required, healthcare[key].Required, "required of %s", key)
	}
}

func TestResolve_EcommerceOverrides(t *testing.T) {
	defs := Resolve(id.BusinessEcommerce)
	assert.Equal(t, "Product recommendations and promotional offers", defs[id.CategoryMarketing].Description)
	assert.Equal(t, "Shopping preferences and wishlists", defs[id.CategoryPersonalization].Description)
	assert.Equal(t, "Delivery tracking and local store finder", defs[id.CategoryLocation].Description)
	assert.Equal(t, "Help us understand how you use our services", defs[id.CategoryAnalytics].Description)
}

func TestResolve_ReturnsFreshCopies(t *testing.T) {
	first := Resolve(id.BusinessBanking)
	def := first[id.CategoryAnalytics]
	def.Description = "tampered"
	first[id.CategoryAnalytics] = def
	delete(first, id.CategoryEssential)

	second := Resolve(id.BusinessBanking)
	assert.Equal(t, "Financial analytics and fraud detection", second[id.CategoryAnalytics].Description)
	assert.Contains(t, second, id.CategoryEssential)
}

func TestResolveOrdered(t *testing.T) {
	defs := ResolveOrdered(id.BusinessHealthcare)
	require.Len(t, defs, id.CategoryKeyCount)
	for i, key := range id.ConsentCategoryKeys() {
		assert.Equal(t, key, defs[i].Key)
	}
}

func TestBusinesses(t *testing.T) {
	options := Businesses()
	require.Len(t, options, 8)
	assert.Equal(t, BusinessOption{Value: id.BusinessEcommerce, Label: "E-commerce"}, options[0])
	assert.Equal(t, "Banking & Financial", Label(id.BusinessBanking))
	assert.Empty(t, Label(id.BusinessUnselected))
	assert.Equal(t, "Analytics & Performance", Title(id.CategoryAnalytics))
}
