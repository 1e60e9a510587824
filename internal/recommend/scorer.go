package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/khanglvm/intent-rank/internal/behavior"
	"github.com/khanglvm/intent-rank/internal/logging"
	"github.com/khanglvm/intent-rank/internal/textanalysis"
)

const (
	// categoryMatchBoost is added when the product category is one the query names.
	categoryMatchBoost = 1.5

	// keywordBoost is added per distinct query keyword found in name or description.
	keywordBoost = 0.3

	// saleTypeBoost is added when the product sale type is the one asked for.
	saleTypeBoost = 1.0

	// urgencyThreshold is the urgency above which immediate sale types get a boost.
	urgencyThreshold = 0.5

	// interestNormalizer maps accumulated category views onto 0-1.
	interestNormalizer = 10.0

	// recentSameCategoryBoost is added per recently viewed product of the same category.
	recentSameCategoryBoost = 0.2

	// affinityWeight scales product affinity.
	affinityWeight = 0.3

	// storeInterestBoost is added when a store category overlaps an interest category.
	storeInterestBoost = 1.0

	// storeCategoryBoost is added when a store category overlaps a query category.
	storeCategoryBoost = 1.5

	// topRatedBoost is added for stores rated at least topRatedThreshold.
	topRatedBoost     = 0.5
	topRatedThreshold = 4.5

	// confidenceScale is the score treated as full confidence.
	confidenceScale = 3.0

	// DefaultLimit applies when Generate is called with a limit below 1.
	DefaultLimit = 10

	// DefaultRecentWindow is how many recently viewed products are checked
	// for same-category views.
	DefaultRecentWindow = 10
)

// Scorer ranks candidates. It is safe for concurrent use.
type Scorer struct {
	source       BehaviorSource
	lookup       behavior.CategoryLookup
	defaultLimit int
	recentWindow int
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithCategoryLookup resolves categories of viewed products that are not
// among the candidates.
func WithCategoryLookup(lookup behavior.CategoryLookup) Option {
	return func(s *Scorer) { s.lookup = lookup }
}

// WithDefaultLimit sets the limit used when Generate receives limit < 1.
func WithDefaultLimit(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// WithRecentWindow sets how many recently viewed products are considered.
func WithRecentWindow(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.recentWindow = n
		}
	}
}

// NewScorer creates a scorer reading behavior from source. A nil source
// scores on the query alone.
func NewScorer(source BehaviorSource, opts ...Option) *Scorer {
	s := &Scorer{
		source:       source,
		defaultLimit: DefaultLimit,
		recentWindow: DefaultRecentWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// scoringContext holds everything derived once per Generate call.
type scoringContext struct {
	analysis  textanalysis.Analysis
	keywords  []string
	interests []behavior.CategoryScore
	recent    []behavior.ViewedItem
	snapshot  behavior.Snapshot
	lookup    behavior.CategoryLookup
	now       time.Time
}

// Generate analyzes query and ranks products and stores, best first.
// Equal scores keep the candidates' input order.
func (s *Scorer) Generate(query string, products []Product, stores []Store, limit int) Result {
	if limit < 1 {
		limit = s.defaultLimit
	}

	sc := s.newContext(query, products)

	productRecs := make([]ProductRecommendation, 0, len(products))
	for _, p := range products {
		productRecs = append(productRecs, sc.scoreProduct(p))
	}
	sort.SliceStable(productRecs, func(i, j int) bool {
		return productRecs[i].Score > productRecs[j].Score
	})
	if len(productRecs) > limit {
		productRecs = productRecs[:limit]
	}

	storeRecs := make([]StoreRecommendation, 0, len(stores))
	for _, st := range stores {
		storeRecs = append(storeRecs, sc.scoreStore(st))
	}
	sort.SliceStable(storeRecs, func(i, j int) bool {
		return storeRecs[i].Score > storeRecs[j].Score
	})
	if len(storeRecs) > limit {
		storeRecs = storeRecs[:limit]
	}

	if e := logging.Debug(); e.Enabled() {
		top := ""
		if len(productRecs) > 0 {
			top = productRecs[0].Product.ID
		}
		e.Str("component", "recommend").
			Strs("categories", sc.analysis.Categories).
			Str("intent", string(sc.analysis.Intent)).
			Int("interests", len(sc.interests)).
			Int("products", len(productRecs)).
			Int("stores", len(storeRecs)).
			Str("top_product", top).
			Msg("ranked candidates")
	}

	return Result{
		Products:    productRecs,
		Stores:      storeRecs,
		Analysis:    sc.analysis,
		Explanation: Explain(sc.analysis, sc.interests),
	}
}

func (s *Scorer) newContext(query string, products []Product) *scoringContext {
	sc := &scoringContext{
		analysis:  textanalysis.Analyze(query),
		keywords:  textanalysis.Keywords(query),
		interests: []behavior.CategoryScore{},
		snapshot:  behavior.EmptySnapshot(),
		now:       time.Now(),
	}

	candidates := make(map[string]string, len(products))
	for _, p := range products {
		if p.Category != "" {
			candidates[p.ID] = p.Category
		}
	}
	fallback := s.lookup
	sc.lookup = func(id string) (string, bool) {
		if c, ok := candidates[id]; ok {
			return c, true
		}
		if fallback != nil {
			return fallback(id)
		}
		return "", false
	}

	if s.source == nil {
		return sc
	}

	sc.snapshot = s.source.Read()
	sc.now = s.source.Now()
	sc.interests = behavior.InterestCategories(sc.snapshot, sc.lookup)
	sc.recent = behavior.RecentlyViewed(sc.snapshot, behavior.TargetProduct, s.recentWindow)
	return sc
}

func (c *scoringContext) scoreProduct(p Product) ProductRecommendation {
	var score float64
	reasons := []string{}

	category := textanalysis.Normalize(p.Category)
	text := textanalysis.Normalize(p.Name + " " + p.Description)

	// Query signal.
	if category != "" {
		for _, want := range c.analysis.Categories {
			if category == textanalysis.Normalize(want) {
				score += categoryMatchBoost
				reasons = append(reasons, fmt.Sprintf("Coincide con la categoría buscada (%s)", categoryLabel(want)))
				break
			}
		}
	}

	var matched []string
	for _, kw := range c.keywords {
		if strings.Contains(text, kw) {
			matched = append(matched, kw)
		}
	}
	if len(matched) > 0 {
		score += keywordBoost * float64(len(matched))
		reasons = append(reasons, "Coincide con: "+strings.Join(matched, ", "))
	}

	if c.analysis.SaleType != textanalysis.SaleTypeNone && c.analysis.SaleType == p.SaleType {
		score += saleTypeBoost
		reasons = append(reasons, "Tipo de venta: "+string(p.SaleType))
	}

	if c.analysis.Urgency > urgencyThreshold && p.SaleType == textanalysis.SaleTypeDirecta {
		score += c.analysis.Urgency
		reasons = append(reasons, "Disponible de inmediato")
	}

	// Behavior signal.
	if category != "" {
		for _, interest := range c.interests {
			if textanalysis.Normalize(interest.Category) == category {
				score += min(interest.Score/interestNormalizer, 1)
				reasons = append(reasons, fmt.Sprintf("Según tu interés en %s", categoryLabel(interest.Category)))
				break
			}
		}

		same := 0
		for _, item := range c.recent {
			if viewed, ok := c.lookup(item.ID); ok && textanalysis.Normalize(viewed) == category {
				same++
			}
		}
		if same > 0 {
			score += min(recentSameCategoryBoost*float64(same), 1)
			reasons = append(reasons, "Similar a productos que viste recientemente")
		}
	}

	// Affinity.
	if affinity := behavior.Affinity(c.snapshot.ProductViews[p.ID], c.now); affinity > 0 {
		score += affinityWeight * affinity
		reasons = append(reasons, "Ya mostraste interés en este producto")
	}

	return ProductRecommendation{
		Product:    p,
		Score:      score,
		Reasons:    reasons,
		Confidence: confidence(score),
	}
}

func (c *scoringContext) scoreStore(st Store) StoreRecommendation {
	var score float64
	reasons := []string{}

	for _, interest := range c.interests {
		if anyLooseMatch(st.Categories, interest.Category) {
			score += storeInterestBoost
			reasons = append(reasons, fmt.Sprintf("Vende %s, que te interesa", categoryLabel(interest.Category)))
			break
		}
	}

	for _, want := range c.analysis.Categories {
		if anyLooseMatch(st.Categories, want) {
			score += storeCategoryBoost
			reasons = append(reasons, fmt.Sprintf("Especializada en %s", categoryLabel(want)))
			break
		}
	}

	if st.Rating >= topRatedThreshold {
		score += topRatedBoost
		reasons = append(reasons, fmt.Sprintf("Excelente calificación (%.1f)", st.Rating))
	}

	return StoreRecommendation{
		Store:      st,
		Score:      score,
		Reasons:    reasons,
		Confidence: confidence(score),
	}
}

// anyLooseMatch reports whether target contains, or is contained in, any of
// categories after normalization.
func anyLooseMatch(categories []string, target string) bool {
	t := textanalysis.Normalize(target)
	if t == "" {
		return false
	}
	for _, c := range categories {
		n := textanalysis.Normalize(c)
		if n == "" {
			continue
		}
		if strings.Contains(n, t) || strings.Contains(t, n) {
			return true
		}
	}
	return false
}

func confidence(score float64) float64 {
	return min(score/confidenceScale, 1)
}
