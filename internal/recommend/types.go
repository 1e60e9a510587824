/*
Package recommend ranks candidate products and stores for a query.

The scorer fuses three signals: what the query says (textanalysis), what
the client has been looking at (behavior interest categories and recent
views) and per-product affinity. Candidates come from the caller; the
package never fetches a catalog.
*/
package recommend

import (
	"time"

	"github.com/khanglvm/intent-rank/internal/behavior"
	"github.com/khanglvm/intent-rank/internal/textanalysis"
)

// Product is a candidate product.
type Product struct {
	ID          string                `json:"id" validate:"required"`
	Name        string                `json:"name" validate:"required"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Price       float64               `json:"price" validate:"gte=0"`
	SaleType    textanalysis.SaleType `json:"saleType" validate:"omitempty,oneof=directa pedido delivery"`
	StoreID     string                `json:"storeId,omitempty"`
}

// Store is a candidate store.
type Store struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Rating      float64  `json:"rating" validate:"gte=0,lte=5"`
}

// ProductRecommendation is a scored product.
type ProductRecommendation struct {
	Product    Product  `json:"product"`
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons"`
	Confidence float64  `json:"confidence"`
}

// StoreRecommendation is a scored store.
type StoreRecommendation struct {
	Store      Store    `json:"store"`
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons"`
	Confidence float64  `json:"confidence"`
}

// Result is the output of Generate.
type Result struct {
	Products    []ProductRecommendation `json:"products"`
	Stores      []StoreRecommendation   `json:"stores"`
	Analysis    textanalysis.Analysis   `json:"analysis"`
	Explanation string                  `json:"explanation"`
}

// BehaviorSource supplies the behavior snapshot the scorer reads.
// *behavior.Store implements it.
type BehaviorSource interface {
	Read() behavior.Snapshot
	Now() time.Time
}
