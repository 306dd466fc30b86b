package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryValid(t *testing.T) {
	assert.Len(t, Categories, 7)
	for _, c := range Categories {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Category(CategoryAll).Valid())
	assert.False(t, Category("electronics").Valid())
	assert.False(t, Category("").Valid())
}

func TestAdPriceText(t *testing.T) {
	price := 12.5
	assert.Equal(t, "$12.50", Ad{Price: &price}.PriceText())
	assert.Equal(t, "Contact for price", Ad{}.PriceText())
}

func TestAdJSON_OptionalFieldsOmitted(t *testing.T) {
	data, err := json.Marshal(Ad{
		Title:       "Garden Hose",
		Seller:      DefaultSeller,
		Category:    CategoryHomeGarden,
		Description: "25m, barely used",
		Contact:     "hose@example.com",
	})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "price")
	assert.NotContains(t, raw, "image_base64")
	assert.Equal(t, "Home & Garden", raw["category"])
}

func TestAdJSON_NullPriceReadsAsAbsent(t *testing.T) {
	var ad Ad
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Lamp","price":null}`), &ad))
	assert.Nil(t, ad.Price)
}
