/*
Package behavior records what a single client does in the marketplace and
derives interest signals from it.

A Store owns one persisted Snapshot: product and store view metrics plus
bounded logs of searches, clicks and cart actions. Every mutation is a
read-modify-write of that snapshot through a storage.Backend. Persistence
problems never reach the caller; they degrade to an empty snapshot and a
log line.

	store := behavior.New(backend)
	store.TrackProductView("p-17", 30*time.Second)
	score := store.ProductAffinity("p-17")
*/
package behavior

import "time"

// Log bounds. Oldest entries are evicted first.
const (
	MaxSearches    = 50
	MaxClicks      = 100
	MaxCartActions = 100
)

// TargetType distinguishes products from stores.
type TargetType string

const (
	TargetProduct TargetType = "product"
	TargetStore   TargetType = "store"
)

// CartAction is what happened to a cart line.
type CartAction string

const (
	CartAdd    CartAction = "add"
	CartRemove CartAction = "remove"
)

// InteractionMetrics aggregates the views of one product or store.
type InteractionMetrics struct {
	ViewCount       int       `json:"viewCount"`
	TotalDurationMs int64     `json:"totalDuration"`
	FirstViewed     time.Time `json:"firstViewed"`
	LastViewed      time.Time `json:"lastViewed"`
}

// SearchRecord is one executed search.
type SearchRecord struct {
	Query        string    `json:"query"`
	Timestamp    time.Time `json:"timestamp"`
	ResultsCount int       `json:"resultsCount"`
}

// ClickRecord is one click on a product or store.
type ClickRecord struct {
	TargetType TargetType `json:"targetType"`
	TargetID   string     `json:"targetId"`
	Context    string     `json:"context"`
	Timestamp  time.Time  `json:"timestamp"`
}

// CartActionRecord is one cart mutation.
type CartActionRecord struct {
	Action    CartAction `json:"action"`
	ProductID string     `json:"productId"`
	Timestamp time.Time  `json:"timestamp"`
}

// Snapshot is the full behavior state of one client.
type Snapshot struct {
	ProductViews map[string]InteractionMetrics `json:"productViews"`
	StoreViews   map[string]InteractionMetrics `json:"storeViews"`
	Searches     []SearchRecord                `json:"searches"`
	Clicks       []ClickRecord                 `json:"clicks"`
	CartActions  []CartActionRecord            `json:"cartActions"`
}

// EmptySnapshot returns a snapshot with non-nil maps and slices.
func EmptySnapshot() Snapshot {
	return Snapshot{
		ProductViews: map[string]InteractionMetrics{},
		StoreViews:   map[string]InteractionMetrics{},
		Searches:     []SearchRecord{},
		Clicks:       []ClickRecord{},
		CartActions:  []CartActionRecord{},
	}
}

// IsEmpty reports whether nothing has been recorded.
func (s Snapshot) IsEmpty() bool {
	return len(s.ProductViews) == 0 &&
		len(s.StoreViews) == 0 &&
		len(s.Searches) == 0 &&
		len(s.Clicks) == 0 &&
		len(s.CartActions) == 0
}

// fillNil replaces nil collections left by decoding older or partial data.
func (s *Snapshot) fillNil() {
	if s.ProductViews == nil {
		s.ProductViews = map[string]InteractionMetrics{}
	}
	if s.StoreViews == nil {
		s.StoreViews = map[string]InteractionMetrics{}
	}
	if s.Searches == nil {
		s.Searches = []SearchRecord{}
	}
	if s.Clicks == nil {
		s.Clicks = []ClickRecord{}
	}
	if s.CartActions == nil {
		s.CartActions = []CartActionRecord{}
	}
}
