package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/pkg/config"
)

func TestNew_Rejects(t *testing.T) {
	_, err := New([]Product{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}})
	assert.Error(t, err)

	_, err = New([]Product{{Name: "No id"}})
	assert.Error(t, err)

	_, err = New([]Product{{ID: "a", Price: -1}})
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	c, err := FromConfig(&config.ShopConfig{})
	require.NoError(t, err)
	assert.Len(t, c.Products(), len(defaultProducts))

	c, err = FromConfig(&config.ShopConfig{Products: []config.ProductConfig{
		{ID: "chai", Name: "Masala Chai", Price: 95},
		{ID: "ghee", Name: "Ghee", Price: 450},
	}})
	require.NoError(t, err)

	products := c.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "chai", products[0].ID)

	p, ok := c.Lookup("ghee")
	require.True(t, ok)
	assert.Equal(t, int64(450), p.Price)

	_, ok = c.Lookup("missing")
	assert.False(t, ok)
}

func TestProductsIsACopy(t *testing.T) {
	c, err := New([]Product{{ID: "a", Name: "A", Price: 10}})
	require.NoError(t, err)

	c.Products()[0].Price = 99
	p, _ := c.Lookup("a")
	assert.Equal(t, int64(10), p.Price)
}
