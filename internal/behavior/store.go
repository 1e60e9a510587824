package behavior

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/khanglvm/intent-rank/internal/logging"
	"github.com/khanglvm/intent-rank/internal/storage"
)

// Persisted keys, optionally prefixed with "<namespace>:".
const (
	DataKey    = "user_behavior_data"
	SessionKey = "user_session_id"
)

// Store is the behavior store of one client. Construct it once in the
// composition root and share the pointer.
type Store struct {
	backend   storage.Backend
	namespace string
	now       func() time.Time
	newID     func() string
	log       zerolog.Logger

	mu        sync.Mutex
	sessionID string
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithNamespace prefixes persisted keys so several clients can share a backend.
func WithNamespace(ns string) Option {
	return func(s *Store) { s.namespace = ns }
}

// WithLogger sets the logger used for persistence anomalies.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithSessionIDGenerator replaces the uuid generator for new session ids.
func WithSessionIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// New creates a store over backend. A nil backend behaves like storage.Disabled().
func New(backend storage.Backend, opts ...Option) *Store {
	if backend == nil {
		backend = storage.Disabled()
	}
	s := &Store{
		backend: backend,
		now:     time.Now,
		newID:   uuid.NewString,
		log:     logging.Component("behavior"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the underlying storage backend.
func (s *Store) Backend() storage.Backend { return s.backend }

// Now returns the store clock.
func (s *Store) Now() time.Time { return s.now() }

func (s *Store) key(name string) string {
	if s.namespace == "" {
		return name
	}
	return s.namespace + ":" + name
}

// Read returns the persisted snapshot, or an empty one when nothing is
// stored, persistence is unavailable or the stored data is unreadable.
func (s *Store) Read() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// load must be called with mu held.
func (s *Store) load() Snapshot {
	if !s.backend.Enabled() {
		return EmptySnapshot()
	}

	raw, err := s.backend.Get(s.key(DataKey))
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to read behavior data, using empty snapshot")
		return EmptySnapshot()
	}
	if raw == nil {
		return EmptySnapshot()
	}

	snap, err := decodeSnapshot(raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("stored behavior data is unreadable, using empty snapshot")
		return EmptySnapshot()
	}
	return snap
}

// save must be called with mu held.
func (s *Store) save(snap Snapshot) {
	if !s.backend.Enabled() {
		return
	}

	data, err := encodeSnapshot(snap)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode behavior data")
		return
	}
	if err := s.backend.Put(s.key(DataKey), data); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist behavior data")
	}
}

// Record validates and applies a single event. Only invalid events produce
// an error; persistence failures are logged.
func (s *Store) Record(e Event) error {
	return s.RecordBatch([]Event{e})
}

// RecordBatch applies events in order with a single read and write.
// Invalid events are skipped and the first validation error is returned.
func (s *Store) RecordBatch(events []Event) error {
	var firstErr error
	valid := make([]Event, 0, len(events))
	for _, e := range events {
		if err := e.Validate(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if e.Timestamp.IsZero() {
			e.Timestamp = s.now()
		}
		valid = append(valid, e)
	}
	if len(valid) == 0 {
		return firstErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.backend.Enabled() {
		return firstErr
	}

	snap := s.load()
	for _, e := range valid {
		e.apply(&snap)
	}
	s.save(snap)
	return firstErr
}

// record logs instead of returning validation errors; the typed Track
// helpers below always build valid events except for empty ids.
func (s *Store) record(e Event) {
	if err := s.Record(e); err != nil {
		s.log.Debug().Err(err).Str("kind", string(e.Kind)).Msg("ignored event")
	}
}

// TrackProductView records a product view lasting d.
func (s *Store) TrackProductView(id string, d time.Duration) {
	s.record(Event{Kind: EventProductView, TargetID: id, Duration: d})
}

// TrackStoreView records a store view lasting d.
func (s *Store) TrackStoreView(id string, d time.Duration) {
	s.record(Event{Kind: EventStoreView, TargetID: id, Duration: d})
}

// TrackSearch appends a search to the bounded search log.
func (s *Store) TrackSearch(query string, resultsCount int) {
	s.record(Event{Kind: EventSearch, Query: query, ResultsCount: resultsCount})
}

// TrackProductClick appends a product click.
func (s *Store) TrackProductClick(id, context string) {
	s.record(Event{Kind: EventProductClick, TargetID: id, Context: context})
}

// TrackStoreClick appends a store click.
func (s *Store) TrackStoreClick(id, context string) {
	s.record(Event{Kind: EventStoreClick, TargetID: id, Context: context})
}

// TrackAddToCart appends an add-to-cart action.
func (s *Store) TrackAddToCart(id string) {
	s.record(Event{Kind: EventAddToCart, TargetID: id})
}

// TrackRemoveFromCart appends a remove-from-cart action.
func (s *Store) TrackRemoveFromCart(id string) {
	s.record(Event{Kind: EventRemoveFromCart, TargetID: id})
}

// ClearAll discards every recorded interaction.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.backend.Enabled() {
		return
	}
	if err := s.backend.Delete(s.key(DataKey)); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear behavior data")
	}
}

// ClearSearches empties the search log and keeps everything else.
func (s *Store) ClearSearches() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.backend.Enabled() {
		return
	}
	snap := s.load()
	snap.Searches = []SearchRecord{}
	s.save(snap)
}

// SessionID returns the client's session identifier, creating and
// persisting one on first use.
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessionID != "" {
		return s.sessionID
	}

	if s.backend.Enabled() {
		raw, err := s.backend.Get(s.key(SessionKey))
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to read session id")
		}
		if len(raw) > 0 {
			s.sessionID = string(raw)
			return s.sessionID
		}
	}

	s.sessionID = "session_" + s.newID()
	if s.backend.Enabled() {
		if err := s.backend.Put(s.key(SessionKey), []byte(s.sessionID)); err != nil {
			s.log.Warn().Err(err).Msg("failed to persist session id")
		}
	}
	return s.sessionID
}
