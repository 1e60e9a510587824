package behavior

import (
	"sync"
	"time"
)

const (
	// DefaultQueueSize is the event buffer used when NewTracker gets a size below 1.
	// If full, events are dropped (non-blocking).
	DefaultQueueSize = 1000

	// batchFlushSize is the number of events that triggers an immediate flush.
	batchFlushSize = 10

	// flushInterval is how often pending events are flushed.
	flushInterval = 50 * time.Millisecond
)

// Tracker records events in the background so callers never wait on
// persistence. Events reach the store in the order they were tracked.
type Tracker struct {
	store      *Store
	eventQueue chan Event
	flushReq   chan chan struct{}
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	enabled    bool
	mu         sync.RWMutex
}

// NewTracker starts a tracker draining into store.
func NewTracker(store *Store, queueSize int) *Tracker {
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	t := &Tracker{
		store:      store,
		eventQueue: make(chan Event, queueSize),
		flushReq:   make(chan chan struct{}),
		stopChan:   make(chan struct{}),
		enabled:    store != nil,
	}

	t.wg.Add(1)
	go t.processEvents()

	return t
}

// Track queues an event (non-blocking). The timestamp is taken now when
// unset, so queueing delay does not skew recency. If the queue is full the
// event is dropped and a warning is logged.
func (t *Tracker) Track(event Event) {
	// Held across the enqueue so Stop cannot close and drain in between.
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.enabled {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = t.store.Now()
	}

	select {
	case <-t.stopChan:
		t.store.log.Warn().
			Str("kind", string(event.Kind)).
			Str("target", event.TargetID).
			Msg("tracker stopped, dropping event")
		return
	default:
	}

	select {
	case t.eventQueue <- event:
	default:
		t.store.log.Warn().
			Str("kind", string(event.Kind)).
			Str("target", event.TargetID).
			Msg("tracking queue full, dropping event")
	}
}

// Stop shuts the tracker down after flushing queued events.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		close(t.stopChan)
		t.mu.Unlock()
		t.wg.Wait()
	})
}

// Flush blocks until every event tracked before the call is in the store.
func (t *Tracker) Flush() {
	done := make(chan struct{})
	select {
	case t.flushReq <- done:
		<-done
	case <-t.stopChan:
	}
}

// Disable makes Track ignore events.
func (t *Tracker) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = false
}

// Enable resumes tracking.
func (t *Tracker) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = t.store != nil
}

// IsEnabled returns whether tracking is enabled.
func (t *Tracker) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// QueueLen returns the number of events waiting to be flushed.
func (t *Tracker) QueueLen() int {
	return len(t.eventQueue)
}

// processEvents runs in the background, batching and flushing events.
func (t *Tracker) processEvents() {
	defer t.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, batchFlushSize)

	for {
		select {
		case event := <-t.eventQueue:
			batch = append(batch, event)
			if len(batch) >= batchFlushSize {
				t.flush(batch)
				batch = make([]Event, 0, batchFlushSize)
			}

		case done := <-t.flushReq:
			batch = t.drain(batch)
			t.flush(batch)
			batch = make([]Event, 0, batchFlushSize)
			close(done)

		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = make([]Event, 0, batchFlushSize)
			}

		case <-t.stopChan:
			t.flush(t.drain(batch))
			return
		}
	}
}

// drain appends every queued event to batch without blocking.
func (t *Tracker) drain(batch []Event) []Event {
	for {
		select {
		case event := <-t.eventQueue:
			batch = append(batch, event)
		default:
			return batch
		}
	}
}

// flush writes a batch of events to the store.
func (t *Tracker) flush(events []Event) {
	if len(events) == 0 {
		return
	}
	if err := t.store.RecordBatch(events); err != nil {
		t.store.log.Warn().Err(err).Int("events", len(events)).Msg("dropped invalid tracking event")
	}
}
