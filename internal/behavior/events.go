package behavior

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// EventKind names a tracked interaction.
type EventKind string

const (
	EventProductView    EventKind = "product_view"
	EventStoreView      EventKind = "store_view"
	EventSearch         EventKind = "search"
	EventProductClick   EventKind = "product_click"
	EventStoreClick     EventKind = "store_click"
	EventAddToCart      EventKind = "cart_add"
	EventRemoveFromCart EventKind = "cart_remove"
)

// Event is a single tracked interaction. Which fields matter depends on Kind:
// views use TargetID and Duration, searches use Query and ResultsCount,
// clicks use TargetID and Context, cart events use TargetID.
type Event struct {
	Kind         EventKind     `json:"kind" validate:"oneof=product_view store_view search product_click store_click cart_add cart_remove"`
	TargetID     string        `json:"targetId,omitempty" validate:"required_unless=Kind search"`
	Duration     time.Duration `json:"duration,omitempty" validate:"gte=0"`
	Query        string        `json:"query,omitempty" validate:"required_if=Kind search"`
	ResultsCount int           `json:"resultsCount,omitempty" validate:"gte=0"`
	Context      string        `json:"context,omitempty"`

	// Timestamp defaults to the store clock when zero.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

var (
	eventValidator     *validator.Validate
	eventValidatorOnce sync.Once
)

// Validate checks that the event carries the fields its kind needs.
func (e Event) Validate() error {
	eventValidatorOnce.Do(func() {
		eventValidator = validator.New(validator.WithRequiredStructEnabled())
	})

	if e.Kind == EventSearch && strings.TrimSpace(e.Query) == "" {
		return errors.New("invalid event: search query is empty")
	}

	err := eventValidator.Struct(e)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid event: %w", err)
	}
	fe := fieldErrs[0]
	return fmt.Errorf("invalid event: %s failed %s", strings.ToLower(fe.Field()), fe.Tag())
}

// ParseEventKind maps user input such as "view" or "product_view" to a kind.
func ParseEventKind(s string) (EventKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "view", "product_view", "product-view":
		return EventProductView, nil
	case "store-view", "store_view":
		return EventStoreView, nil
	case "search":
		return EventSearch, nil
	case "click", "product_click", "product-click":
		return EventProductClick, nil
	case "store-click", "store_click":
		return EventStoreClick, nil
	case "cart", "add", "cart_add", "cart-add":
		return EventAddToCart, nil
	case "remove", "cart_remove", "cart-remove":
		return EventRemoveFromCart, nil
	default:
		return "", fmt.Errorf("unknown event kind %q", s)
	}
}

// apply folds e into snap. The caller holds the store lock.
func (e Event) apply(snap *Snapshot) {
	ts := e.Timestamp
	switch e.Kind {
	case EventProductView:
		snap.ProductViews[e.TargetID] = bumpView(snap.ProductViews[e.TargetID], e.Duration, ts)
	case EventStoreView:
		snap.StoreViews[e.TargetID] = bumpView(snap.StoreViews[e.TargetID], e.Duration, ts)
	case EventSearch:
		snap.Searches = appendBounded(snap.Searches, SearchRecord{
			Query:        e.Query,
			Timestamp:    ts,
			ResultsCount: e.ResultsCount,
		}, MaxSearches)
	case EventProductClick, EventStoreClick:
		target := TargetProduct
		if e.Kind == EventStoreClick {
			target = TargetStore
		}
		snap.Clicks = appendBounded(snap.Clicks, ClickRecord{
			TargetType: target,
			TargetID:   e.TargetID,
			Context:    e.Context,
			Timestamp:  ts,
		}, MaxClicks)
	case EventAddToCart, EventRemoveFromCart:
		action := CartAdd
		if e.Kind == EventRemoveFromCart {
			action = CartRemove
		}
		snap.CartActions = appendBounded(snap.CartActions, CartActionRecord{
			Action:    action,
			ProductID: e.TargetID,
			Timestamp: ts,
		}, MaxCartActions)
	}
}

func bumpView(m InteractionMetrics, d time.Duration, ts time.Time) InteractionMetrics {
	if m.ViewCount == 0 && m.FirstViewed.IsZero() {
		m.FirstViewed = ts
	}
	m.ViewCount++
	m.TotalDurationMs += d.Milliseconds()
	m.LastViewed = ts
	return m
}

// appendBounded appends v and drops entries from the front beyond limit.
func appendBounded[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if over := len(s) - limit; over > 0 {
		s = append(s[:0:0], s[over:]...)
	}
	return s
}
