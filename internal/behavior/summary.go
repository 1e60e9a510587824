package behavior

import (
	"sort"
	"strings"
)

// Summary is the exportable rollup of a snapshot, decoupled from the live
// state so a sync job can consume it on its own schedule.
type Summary struct {
	SessionID string           `json:"sessionId"`
	Date      string           `json:"date"`
	Products  []ProductSummary `json:"products"`
	Stores    []StoreSummary   `json:"stores"`
	Searches  []SearchSummary  `json:"searches"`
}

// ProductSummary rolls up one product.
type ProductSummary struct {
	ProductID       string `json:"productId"`
	Views           int    `json:"views"`
	TotalDurationMs int64  `json:"totalDuration"`
	AvgDurationMs   int64  `json:"avgDuration"`
	AddToCartCount  int    `json:"addToCartCount"`
	ClickCount      int    `json:"clickCount"`
}

// StoreSummary rolls up one store.
type StoreSummary struct {
	StoreID         string `json:"storeId"`
	Views           int    `json:"views"`
	TotalDurationMs int64  `json:"totalDuration"`
	AvgDurationMs   int64  `json:"avgDuration"`
}

// SearchSummary counts one normalized search term.
type SearchSummary struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// AggregatedSummary builds the rollup for the current session and date.
func (s *Store) AggregatedSummary() Summary {
	snap := s.Read()
	return Summarize(snap, s.SessionID(), s.now().Format("2006-01-02"))
}

// Summarize builds a Summary from snap. Products appear when they were
// viewed, clicked or added to the cart; entries are ordered by id, search
// terms by count then term.
func Summarize(snap Snapshot, sessionID, date string) Summary {
	products := make(map[string]*ProductSummary)
	product := func(id string) *ProductSummary {
		p, ok := products[id]
		if !ok {
			p = &ProductSummary{ProductID: id}
			products[id] = p
		}
		return p
	}

	for id, m := range snap.ProductViews {
		p := product(id)
		p.Views = m.ViewCount
		p.TotalDurationMs = m.TotalDurationMs
		p.AvgDurationMs = average(m)
	}
	for _, a := range snap.CartActions {
		if a.Action == CartAdd {
			product(a.ProductID).AddToCartCount++
		}
	}
	for _, c := range snap.Clicks {
		if c.TargetType == TargetProduct {
			product(c.TargetID).ClickCount++
		}
	}

	sum := Summary{
		SessionID: sessionID,
		Date:      date,
		Products:  make([]ProductSummary, 0, len(products)),
		Stores:    make([]StoreSummary, 0, len(snap.StoreViews)),
		Searches:  []SearchSummary{},
	}

	for _, p := range products {
		sum.Products = append(sum.Products, *p)
	}
	sort.Slice(sum.Products, func(i, j int) bool {
		return sum.Products[i].ProductID < sum.Products[j].ProductID
	})

	for id, m := range snap.StoreViews {
		sum.Stores = append(sum.Stores, StoreSummary{
			StoreID:         id,
			Views:           m.ViewCount,
			TotalDurationMs: m.TotalDurationMs,
			AvgDurationMs:   average(m),
		})
	}
	sort.Slice(sum.Stores, func(i, j int) bool {
		return sum.Stores[i].StoreID < sum.Stores[j].StoreID
	})

	terms := make(map[string]int)
	for _, rec := range snap.Searches {
		term := strings.ToLower(strings.TrimSpace(rec.Query))
		if term != "" {
			terms[term]++
		}
	}
	for term, count := range terms {
		sum.Searches = append(sum.Searches, SearchSummary{Term: term, Count: count})
	}
	sort.Slice(sum.Searches, func(i, j int) bool {
		if sum.Searches[i].Count != sum.Searches[j].Count {
			return sum.Searches[i].Count > sum.Searches[j].Count
		}
		return sum.Searches[i].Term < sum.Searches[j].Term
	})

	return sum
}

func average(m InteractionMetrics) int64 {
	if m.ViewCount == 0 {
		return 0
	}
	return m.TotalDurationMs / int64(m.ViewCount)
}
