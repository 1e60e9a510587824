package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/intent-rank/internal/storage"
)

func TestAggregatedSummary(t *testing.T) {
	clock := newFakeClock()
	s := New(storage.NewMemoryStorage(),
		WithClock(clock.Now),
		WithSessionIDGenerator(func() string { return "abc" }))

	s.TrackProductView("p1", 10*time.Second)
	s.TrackProductView("p1", 20*time.Second)
	s.TrackProductClick("p1", "search")
	s.TrackAddToCart("p1")
	s.TrackAddToCart("p2")
	s.TrackRemoveFromCart("p2")
	s.TrackStoreView("s1", 4*time.Second)
	s.TrackStoreClick("s1", "home")
	s.TrackSearch("  Celular ", 3)
	s.TrackSearch("celular", 2)
	s.TrackSearch("sofa", 1)

	sum := s.AggregatedSummary()

	assert.Equal(t, "session_abc", sum.SessionID)
	assert.Equal(t, "2026-03-14", sum.Date)

	require.Len(t, sum.Products, 2)
	assert.Equal(t, ProductSummary{
		ProductID:       "p1",
		Views:           2,
		TotalDurationMs: 30000,
		AvgDurationMs:   15000,
		AddToCartCount:  1,
		ClickCount:      1,
	}, sum.Products[0])
	assert.Equal(t, ProductSummary{ProductID: "p2", AddToCartCount: 1}, sum.Products[1])

	assert.Equal(t, []StoreSummary{
		{StoreID: "s1", Views: 1, TotalDurationMs: 4000, AvgDurationMs: 4000},
	}, sum.Stores)

	assert.Equal(t, []SearchSummary{
		{Term: "celular", Count: 2},
		{Term: "sofa", Count: 1},
	}, sum.Searches)
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(EmptySnapshot(), "session_x", "2026-01-01")
	assert.NotNil(t, sum.Products)
	assert.NotNil(t, sum.Stores)
	assert.NotNil(t, sum.Searches)
	assert.Empty(t, sum.Products)
}
