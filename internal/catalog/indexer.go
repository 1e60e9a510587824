package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/khanglvm/intent-rank/internal/recommend"
	"github.com/khanglvm/intent-rank/internal/textanalysis"
)

// Document kinds stored in the index.
const (
	kindProduct = "product"
	kindStore   = "store"
)

// hit is one index match.
type hit struct {
	Kind  string
	ID    string
	Score float64
}

// indexer is an in-memory bleve index over catalog text. Text is stored
// normalized so accent-free queries match accented names.
type indexer struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex
}

func newIndexer() (*indexer, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &indexer{bleveIndex: index}, nil
}

// buildIndexMapping creates the Bleve index mapping.
func buildIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	docMapping.AddFieldMappingsAt("name", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("description", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("category", bleve.NewTextFieldMapping())

	// kind and id are for retrieval and filtering, not relevance.
	kindMapping := bleve.NewKeywordFieldMapping()
	kindMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("kind", kindMapping)

	idMapping := bleve.NewKeywordFieldMapping()
	idMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("id", idMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// index adds every product and store in one batch.
func (i *indexer) index(products []recommend.Product, stores []recommend.Store) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()

	for _, p := range products {
		doc := map[string]interface{}{
			"kind":        kindProduct,
			"id":          p.ID,
			"name":        textanalysis.Normalize(p.Name),
			"description": textanalysis.Normalize(p.Description),
			"category":    textanalysis.Normalize(p.Category),
		}
		if err := batch.Index(kindProduct+"/"+p.ID, doc); err != nil {
			return fmt.Errorf("failed to index product %s: %w", p.ID, err)
		}
	}

	for _, s := range stores {
		doc := map[string]interface{}{
			"kind":        kindStore,
			"id":          s.ID,
			"name":        textanalysis.Normalize(s.Name),
			"description": textanalysis.Normalize(s.Description),
			"category":    textanalysis.Normalize(strings.Join(s.Categories, " ")),
		}
		if err := batch.Index(kindStore+"/"+s.ID, doc); err != nil {
			return fmt.Errorf("failed to index store %s: %w", s.ID, err)
		}
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index catalog: %w", err)
	}
	return nil
}

// search matches the normalized text, or any category the text implies,
// best hits first. Queries rarely name a catalog category ("celular" means
// technology), so the detected categories are matched against the category
// field alongside the words themselves.
func (i *indexer) search(text string, limit int) ([]hit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	normalized := textanalysis.Normalize(text)
	if normalized == "" {
		return nil, nil
	}

	q := buildQuery(normalized, textanalysis.Categories(normalized))
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"kind", "id"}

	results, err := i.bleveIndex.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}
	return convertBleveResults(results), nil
}

// buildQuery ORs a match on all text fields with a category-field match
// per detected category.
func buildQuery(text string, categories []string) query.Query {
	q := bleve.NewDisjunctionQuery(bleve.NewMatchQuery(text))
	for _, c := range categories {
		cq := bleve.NewMatchQuery(c)
		cq.SetField("category")
		q.AddQuery(cq)
	}
	return q
}

// convertBleveResults converts Bleve hits to catalog hits.
func convertBleveResults(results *bleve.SearchResult) []hit {
	hits := make([]hit, 0, len(results.Hits))
	for _, h := range results.Hits {
		kind, _ := h.Fields["kind"].(string)
		id, _ := h.Fields["id"].(string)
		if kind == "" || id == "" {
			continue
		}
		hits = append(hits, hit{Kind: kind, ID: id, Score: h.Score})
	}
	return hits
}

// count returns the number of indexed documents.
func (i *indexer) count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	n, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}
	return n, nil
}

func (i *indexer) close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex == nil {
		return nil
	}
	err := i.bleveIndex.Close()
	i.bleveIndex = nil
	return err
}
