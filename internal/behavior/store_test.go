package behavior

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/intent-rank/internal/storage"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// failingBackend is enabled but every operation fails.
type failingBackend struct{}

var errBackend = errors.New("backend exploded")

func (failingBackend) Init() error                { return nil }
func (failingBackend) Enabled() bool              { return true }
func (failingBackend) Name() string               { return "failing" }
func (failingBackend) Get(string) ([]byte, error) { return nil, errBackend }
func (failingBackend) Put(string, []byte) error   { return errBackend }
func (failingBackend) Delete(string) error        { return errBackend }
func (failingBackend) Close() error               { return nil }

func newTestStore(t *testing.T) (*Store, *fakeClock, *storage.MemoryStorage) {
	t.Helper()
	clock := newFakeClock()
	backend := storage.NewMemoryStorage()
	return New(backend, WithClock(clock.Now)), clock, backend
}

func TestStore_ReadEmpty(t *testing.T) {
	s, _, _ := newTestStore(t)

	snap := s.Read()
	assert.True(t, snap.IsEmpty())
	assert.NotNil(t, snap.ProductViews)
	assert.NotNil(t, snap.Searches)
}

func TestStore_TrackProductView(t *testing.T) {
	s, clock, _ := newTestStore(t)
	first := clock.Now()

	s.TrackProductView("p1", 2*time.Second)
	clock.Advance(time.Minute)
	s.TrackProductView("p1", 3*time.Second)

	m := s.Read().ProductViews["p1"]
	assert.Equal(t, 2, m.ViewCount)
	assert.Equal(t, int64(5000), m.TotalDurationMs)
	assert.True(t, m.FirstViewed.Equal(first))
	assert.True(t, m.LastViewed.Equal(first.Add(time.Minute)))
	assert.Empty(t, s.Read().StoreViews)
}

func TestStore_TrackStoreView(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.TrackStoreView("s1", 0)
	s.TrackStoreView("s1", time.Second)

	snap := s.Read()
	assert.Equal(t, 2, snap.StoreViews["s1"].ViewCount)
	assert.Equal(t, int64(1000), snap.StoreViews["s1"].TotalDurationMs)
	assert.Empty(t, snap.ProductViews)
}

func TestStore_TrackSearch_Bounded(t *testing.T) {
	s, clock, _ := newTestStore(t)

	for i := 0; i < 55; i++ {
		s.TrackSearch(fmt.Sprintf("query %d", i), i)
		clock.Advance(time.Second)
	}

	searches := s.Read().Searches
	require.Len(t, searches, MaxSearches)
	assert.Equal(t, "query 5", searches[0].Query)
	assert.Equal(t, "query 54", searches[len(searches)-1].Query)
}

func TestStore_Clicks_Bounded(t *testing.T) {
	s, _, _ := newTestStore(t)

	events := make([]Event, 0, 120)
	for i := 0; i < 120; i++ {
		events = append(events, Event{Kind: EventProductClick, TargetID: fmt.Sprintf("p%d", i), Context: "search"})
	}
	require.NoError(t, s.RecordBatch(events))

	clicks := s.Read().Clicks
	require.Len(t, clicks, MaxClicks)
	assert.Equal(t, "p20", clicks[0].TargetID)
	assert.Equal(t, TargetProduct, clicks[0].TargetType)
}

func TestStore_CartActions(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.TrackAddToCart("p1")
	s.TrackRemoveFromCart("p1")
	s.TrackStoreClick("s1", "home")

	snap := s.Read()
	require.Len(t, snap.CartActions, 2)
	assert.Equal(t, CartAdd, snap.CartActions[0].Action)
	assert.Equal(t, CartRemove, snap.CartActions[1].Action)
	require.Len(t, snap.Clicks, 1)
	assert.Equal(t, TargetStore, snap.Clicks[0].TargetType)
}

func TestStore_Record_Invalid(t *testing.T) {
	s, _, _ := newTestStore(t)

	assert.Error(t, s.Record(Event{Kind: "teleport", TargetID: "x"}))
	assert.Error(t, s.Record(Event{Kind: EventProductView}))
	assert.Error(t, s.Record(Event{Kind: EventSearch, Query: "   "}))
	assert.Error(t, s.Record(Event{Kind: EventProductView, TargetID: "p1", Duration: -time.Second}))

	// Valid events in a batch still apply.
	err := s.RecordBatch([]Event{
		{Kind: EventProductView},
		{Kind: EventProductView, TargetID: "p1"},
	})
	assert.Error(t, err)
	assert.Equal(t, 1, s.Read().ProductViews["p1"].ViewCount)
}

func TestStore_TrackSearch_BlankNotRecorded(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.TrackSearch("", 0)
	s.TrackSearch("  \t ", 4)

	assert.Empty(t, s.Read().Searches)
}

func TestStore_ClearAll(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.TrackProductView("p1", 0)
	s.TrackSearch("celular", 3)

	s.ClearAll()

	assert.True(t, s.Read().IsEmpty())
}

func TestStore_ClearSearches(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.TrackProductView("p1", 0)
	s.TrackStoreView("s1", 0)
	s.TrackProductClick("p1", "search")
	s.TrackSearch("celular", 3)

	s.ClearSearches()

	snap := s.Read()
	assert.Empty(t, snap.Searches)
	assert.Len(t, snap.ProductViews, 1)
	assert.Len(t, snap.StoreViews, 1)
	assert.Len(t, snap.Clicks, 1)
}

func TestStore_CorruptDataReadsEmpty(t *testing.T) {
	s, _, backend := newTestStore(t)

	require.NoError(t, backend.Put(DataKey, []byte("{not json")))
	assert.True(t, s.Read().IsEmpty())

	require.NoError(t, backend.Put(DataKey, []byte(`{"version":99,"data":{}}`)))
	assert.True(t, s.Read().IsEmpty())

	// The next mutation overwrites the bad record.
	s.TrackProductView("p1", 0)
	assert.Equal(t, 1, s.Read().ProductViews["p1"].ViewCount)
}

func TestStore_DisabledBackend(t *testing.T) {
	s := New(storage.Disabled())

	s.TrackProductView("p1", time.Second)
	s.TrackSearch("celular", 1)
	s.ClearSearches()
	s.ClearAll()

	assert.True(t, s.Read().IsEmpty())
	assert.Equal(t, 0.0, s.ProductAffinity("p1"))
	assert.NotEmpty(t, s.SessionID())
}

func TestStore_NilBackend(t *testing.T) {
	s := New(nil)
	s.TrackAddToCart("p1")
	assert.True(t, s.Read().IsEmpty())
}

func TestStore_FailingBackend(t *testing.T) {
	s := New(failingBackend{})

	assert.NotPanics(t, func() {
		s.TrackProductView("p1", 0)
		s.ClearAll()
		s.ClearSearches()
	})
	assert.True(t, s.Read().IsEmpty())
}

func TestStore_Namespace(t *testing.T) {
	backend := storage.NewMemoryStorage()
	a := New(backend, WithNamespace("shop-a"))
	b := New(backend, WithNamespace("shop-b"))

	a.TrackProductView("p1", 0)

	assert.Equal(t, 1, a.Read().ProductViews["p1"].ViewCount)
	assert.True(t, b.Read().IsEmpty())

	raw, err := backend.Get("shop-a:" + DataKey)
	require.NoError(t, err)
	assert.NotNil(t, raw)
}

func TestStore_SessionID(t *testing.T) {
	backend := storage.NewMemoryStorage()
	gen := func() string { return "fixed" }

	s := New(backend, WithSessionIDGenerator(gen))
	id := s.SessionID()
	assert.Equal(t, "session_fixed", id)
	assert.Equal(t, id, s.SessionID())

	// A second store over the same backend reuses the persisted id.
	other := New(backend, WithSessionIDGenerator(func() string { return "other" }))
	assert.Equal(t, "session_fixed", other.SessionID())
}

func TestStore_ConcurrentWrites(t *testing.T) {
	s, _, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.TrackProductView("p1", time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, s.Read().ProductViews["p1"].ViewCount)
}

func TestParseEventKind(t *testing.T) {
	k, err := ParseEventKind("view")
	require.NoError(t, err)
	assert.Equal(t, EventProductView, k)

	k, err = ParseEventKind("store-view")
	require.NoError(t, err)
	assert.Equal(t, EventStoreView, k)

	_, err = ParseEventKind("jump")
	assert.Error(t, err)
}
