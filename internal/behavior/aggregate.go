package behavior

import (
	"sort"
	"time"
)

// ViewedItem pairs an id with its view metrics.
type ViewedItem struct {
	ID      string             `json:"id"`
	Metrics InteractionMetrics `json:"metrics"`
}

// CategoryScore is the accumulated interest in one category.
type CategoryScore struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// CategoryLookup resolves a product id to its category. The store keeps no
// catalog of its own.
type CategoryLookup func(productID string) (string, bool)

// MapLookup adapts an id->category map to a CategoryLookup.
func MapLookup(m map[string]string) CategoryLookup {
	return func(id string) (string, bool) {
		c, ok := m[id]
		return c, ok && c != ""
	}
}

func (snap Snapshot) views(kind TargetType) map[string]InteractionMetrics {
	if kind == TargetStore {
		return snap.StoreViews
	}
	return snap.ProductViews
}

func viewedItems(m map[string]InteractionMetrics) []ViewedItem {
	items := make([]ViewedItem, 0, len(m))
	for id, metrics := range m {
		items = append(items, ViewedItem{ID: id, Metrics: metrics})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func truncate[T any](s []T, limit int) []T {
	if limit >= 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

// MostViewed returns up to limit items of kind ordered by view count, most
// viewed first. Equal counts are ordered by id. A negative limit returns all.
func (s *Store) MostViewed(kind TargetType, limit int) []ViewedItem {
	return MostViewed(s.Read(), kind, limit)
}

// MostViewed is the snapshot form of Store.MostViewed.
func MostViewed(snap Snapshot, kind TargetType, limit int) []ViewedItem {
	items := viewedItems(snap.views(kind))
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Metrics.ViewCount > items[j].Metrics.ViewCount
	})
	return truncate(items, limit)
}

// RecentlyViewed returns up to limit items of kind, most recently viewed first.
func (s *Store) RecentlyViewed(kind TargetType, limit int) []ViewedItem {
	return RecentlyViewed(s.Read(), kind, limit)
}

// RecentlyViewed is the snapshot form of Store.RecentlyViewed.
func RecentlyViewed(snap Snapshot, kind TargetType, limit int) []ViewedItem {
	items := viewedItems(snap.views(kind))
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Metrics.LastViewed.After(items[j].Metrics.LastViewed)
	})
	return truncate(items, limit)
}

// RecentSearches returns up to limit searches, newest first. Searches with
// equal timestamps keep the most recently appended first.
func (s *Store) RecentSearches(limit int) []SearchRecord {
	return RecentSearches(s.Read(), limit)
}

// RecentSearches is the snapshot form of Store.RecentSearches.
func RecentSearches(snap Snapshot, limit int) []SearchRecord {
	out := make([]SearchRecord, len(snap.Searches))
	for i, rec := range snap.Searches {
		out[len(out)-1-i] = rec
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return truncate(out, limit)
}

// InterestCategories folds product view counts into categories using
// lookup and returns them by score, highest first. Products the lookup
// cannot resolve are skipped.
func (s *Store) InterestCategories(lookup CategoryLookup) []CategoryScore {
	return InterestCategories(s.Read(), lookup)
}

// InterestCategories is the snapshot form of Store.InterestCategories.
func InterestCategories(snap Snapshot, lookup CategoryLookup) []CategoryScore {
	if lookup == nil {
		return []CategoryScore{}
	}

	scores := make(map[string]float64)
	for id, m := range snap.ProductViews {
		if category, ok := lookup(id); ok {
			scores[category] += float64(m.ViewCount)
		}
	}

	out := make([]CategoryScore, 0, len(scores))
	for category, score := range scores {
		out = append(out, CategoryScore{Category: category, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// ProductAffinity scores interest in one product between 0 and 1 from how
// recently, how often and how long it was viewed. Unseen products score 0.
func (s *Store) ProductAffinity(id string) float64 {
	return Affinity(s.Read().ProductViews[id], s.now())
}

// Affinity weighs recency 0.4, frequency 0.4 and view duration 0.2.
func Affinity(m InteractionMetrics, now time.Time) float64 {
	if m.ViewCount == 0 {
		return 0
	}

	frequency := min(float64(m.ViewCount)/10, 1)
	duration := min(float64(m.TotalDurationMs)/60000, 1)

	return recencyScore(now.Sub(m.LastViewed))*0.4 + frequency*0.4 + duration*0.2
}

func recencyScore(age time.Duration) float64 {
	const day = 24 * time.Hour
	switch {
	case age <= day:
		return 1.0
	case age <= 7*day:
		return 0.8
	case age <= 30*day:
		return 0.5
	default:
		return 0.2
	}
}
