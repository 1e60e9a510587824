/*
Package catalog loads a local candidate catalog and narrows it per query.

In a deployed marketplace the candidates come from the backend; this package
stands in for that collaborator so the CLI and the RPC server can rank
against a JSON file:

	{
	  "products": [{"id": "p-1", "name": "...", "category": "technology", "price": 150000, "saleType": "directa"}],
	  "stores":   [{"id": "s-1", "name": "...", "categories": ["technology"], "rating": 4.7}]
	}
*/
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/khanglvm/intent-rank/internal/recommend"
)

// DefaultSearchLimit caps index hits when Candidates gets a limit below 1.
const DefaultSearchLimit = 100

// File is the on-disk catalog layout.
type File struct {
	Products []recommend.Product `json:"products" validate:"dive"`
	Stores   []recommend.Store   `json:"stores" validate:"dive"`
}

// Catalog holds validated candidates and a text index over them.
type Catalog struct {
	products []recommend.Product
	stores   []recommend.Store

	productByID map[string]int
	storeByID   map[string]int

	index *indexer
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Load reads, validates and indexes the catalog at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return New(f.Products, f.Stores)
}

// New validates and indexes the given candidates.
func New(products []recommend.Product, stores []recommend.Store) (*Catalog, error) {
	f := File{Products: products, Stores: stores}
	if err := getValidator().Struct(f); err != nil {
		return nil, describeValidation(err)
	}

	c := &Catalog{
		products:    append([]recommend.Product(nil), products...),
		stores:      append([]recommend.Store(nil), stores...),
		productByID: make(map[string]int, len(products)),
		storeByID:   make(map[string]int, len(stores)),
	}
	for i, p := range c.products {
		if _, dup := c.productByID[p.ID]; dup {
			return nil, fmt.Errorf("invalid catalog: duplicate product id %q", p.ID)
		}
		c.productByID[p.ID] = i
	}
	for i, s := range c.stores {
		if _, dup := c.storeByID[s.ID]; dup {
			return nil, fmt.Errorf("invalid catalog: duplicate store id %q", s.ID)
		}
		c.storeByID[s.ID] = i
	}

	idx, err := newIndexer()
	if err != nil {
		return nil, err
	}
	if err := idx.index(c.products, c.stores); err != nil {
		idx.close()
		return nil, err
	}
	c.index = idx
	return c, nil
}

func describeValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		ns := strings.TrimPrefix(fe.Namespace(), "File.")
		msgs = append(msgs, fmt.Sprintf("%s failed %s", ns, fe.Tag()))
	}
	return fmt.Errorf("invalid catalog: %s", strings.Join(msgs, "; "))
}

// Candidates returns the products and stores matching query, best match
// first. A blank query, or one nothing matches, returns the whole catalog
// so behavior-only ranking still has candidates.
func (c *Catalog) Candidates(query string, limit int) ([]recommend.Product, []recommend.Store, error) {
	if limit < 1 {
		limit = DefaultSearchLimit
	}

	hits, err := c.index.search(query, limit)
	if err != nil {
		return nil, nil, err
	}
	if len(hits) == 0 {
		return c.Products(), c.Stores(), nil
	}

	products := []recommend.Product{}
	stores := []recommend.Store{}
	for _, h := range hits {
		switch h.Kind {
		case kindProduct:
			if i, ok := c.productByID[h.ID]; ok {
				products = append(products, c.products[i])
			}
		case kindStore:
			if i, ok := c.storeByID[h.ID]; ok {
				stores = append(stores, c.stores[i])
			}
		}
	}
	return products, stores, nil
}

// CategoryOf returns the category of a product id. Its signature matches
// behavior.CategoryLookup.
func (c *Catalog) CategoryOf(id string) (string, bool) {
	i, ok := c.productByID[id]
	if !ok || c.products[i].Category == "" {
		return "", false
	}
	return c.products[i].Category, true
}

// Products returns a copy of every product in file order.
func (c *Catalog) Products() []recommend.Product {
	return append([]recommend.Product{}, c.products...)
}

// Stores returns a copy of every store in file order.
func (c *Catalog) Stores() []recommend.Store {
	return append([]recommend.Store{}, c.stores...)
}

// Count returns the number of indexed documents.
func (c *Catalog) Count() (uint64, error) {
	return c.index.count()
}

// Close releases the index.
func (c *Catalog) Close() error {
	return c.index.close()
}
