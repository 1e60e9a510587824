package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/intent-rank/internal/recommend"
)

const sampleCatalog = `{
  "products": [
    {"id": "p-1", "name": "Smartphone Gaming Pro", "description": "Celular con pantalla de 120Hz", "category": "technology", "price": 1200000, "saleType": "directa"},
    {"id": "p-2", "name": "Sofá de tres cuerpos", "description": "Tapizado en lino", "category": "home", "price": 3500000, "saleType": "pedido"},
    {"id": "p-3", "name": "Zapatillas running", "description": "Livianas", "category": "sports", "price": 450000}
  ],
  "stores": [
    {"id": "s-1", "name": "TecnoShop", "description": "Celulares y notebooks", "categories": ["technology"], "rating": 4.7},
    {"id": "s-2", "name": "Casa Linda", "categories": ["home"], "rating": 4.1}
  ]
}`

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func loadSample(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLoad(t *testing.T) {
	c := loadSample(t)

	assert.Len(t, c.Products(), 3)
	assert.Len(t, c.Stores(), 2)

	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := Load(writeCatalog(t, `{"products": [`))
		assert.ErrorContains(t, err, "failed to parse catalog")
	})

	t.Run("validation", func(t *testing.T) {
		_, err := Load(writeCatalog(t, `{"products": [{"id": "p-1", "name": "x", "price": -5, "saleType": "trueque"}]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Price")
		assert.Contains(t, err.Error(), "SaleType")
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := Load(writeCatalog(t, `{"products": [{"id": "p-1", "name": "a"}, {"id": "p-1", "name": "b"}]}`))
		assert.ErrorContains(t, err, "duplicate product id")
	})

	t.Run("bad store rating", func(t *testing.T) {
		_, err := Load(writeCatalog(t, `{"stores": [{"id": "s-1", "name": "a", "rating": 7}]}`))
		assert.ErrorContains(t, err, "Rating")
	})
}

func TestCandidates_Matches(t *testing.T) {
	c := loadSample(t)

	products, stores, err := c.Candidates("celular barato", 10)
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "p-1", products[0].ID)
	require.Len(t, stores, 1, "store text says celulares, but its category is technology")
	assert.Equal(t, "s-1", stores[0].ID)
}

func TestCandidates_CategoryOnlyMatches(t *testing.T) {
	c, err := New(
		[]recommend.Product{
			{ID: "p-1", Name: "Smartphone Gaming Pro", Category: "technology"},
			{ID: "p-2", Name: "Telefono Samsung A15", Category: "technology"},
			{ID: "p-3", Name: "Sofá de tres cuerpos", Category: "home"},
		},
		[]recommend.Store{
			{ID: "s-1", Name: "TecnoShop", Categories: []string{"technology"}, Rating: 4.8},
		},
	)
	require.NoError(t, err)
	defer c.Close()

	products, stores, err := c.Candidates("necesito un celular barato para gaming", 10)
	require.NoError(t, err)

	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"p-1", "p-2"}, ids, "p-2 shares no words with the query, only its category")
	require.Len(t, stores, 1)
	assert.Equal(t, "s-1", stores[0].ID)
}

func TestCandidates_AccentInsensitive(t *testing.T) {
	c := loadSample(t)

	products, _, err := c.Candidates("sofa", 10)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p-2", products[0].ID)
}

func TestCandidates_CategoryField(t *testing.T) {
	c := loadSample(t)

	products, stores, err := c.Candidates("technology", 10)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Len(t, stores, 1)
	assert.Equal(t, "s-1", stores[0].ID)
}

func TestCandidates_FallbackToAll(t *testing.T) {
	c := loadSample(t)

	for _, q := range []string{"", "   ", "xyzzy"} {
		products, stores, err := c.Candidates(q, 10)
		require.NoError(t, err)
		assert.Len(t, products, 3, q)
		assert.Len(t, stores, 2, q)
		assert.Equal(t, "p-1", products[0].ID, "file order is kept")
	}
}

func TestCategoryOf(t *testing.T) {
	c := loadSample(t)

	cat, ok := c.CategoryOf("p-3")
	assert.True(t, ok)
	assert.Equal(t, "sports", cat)

	_, ok = c.CategoryOf("missing")
	assert.False(t, ok)
}

func TestNew_CopiesInput(t *testing.T) {
	products := []recommend.Product{{ID: "p-1", Name: "Mesa", Category: "home"}}
	c, err := New(products, nil)
	require.NoError(t, err)
	defer c.Close()

	products[0].Name = "changed"
	assert.Equal(t, "Mesa", c.Products()[0].Name)
	assert.NotNil(t, c.Stores())
}
