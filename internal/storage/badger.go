package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStorage implements Backend on an embedded BadgerDB.
type BadgerStorage struct {
	db      *badger.DB
	dir     string
	enabled bool
	mu      sync.RWMutex
}

// NewBadgerStorage creates a Badger backend in dir. An empty dir keeps
// everything in memory.
func NewBadgerStorage(dir string) *BadgerStorage {
	return &BadgerStorage{dir: dir, enabled: true}
}

// Init opens the database.
func (s *BadgerStorage) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	opts := badger.DefaultOptions(s.dir)
	if s.dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = badgerLogger{}

	db, err := badger.Open(opts)
	if err != nil {
		s.enabled = false
		return fmt.Errorf("open badger db: %w", err)
	}
	s.db = db
	s.enabled = true
	return nil
}

// Enabled reports whether the database is open.
func (s *BadgerStorage) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled && s.db != nil
}

// Name returns "badger".
func (s *BadgerStorage) Name() string { return "badger" }

// Get reads the value stored under key.
func (s *BadgerStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.enabled || s.db == nil {
		return nil, nil
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Put stores value under key.
func (s *BadgerStorage) Put(key string, value []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.enabled || s.db == nil {
		return nil
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *BadgerStorage) Delete(key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.enabled || s.db == nil {
		return nil
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (s *BadgerStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// badgerLogger routes badger's internal logging to zerolog. Info and debug
// chatter is dropped to debug level.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logger().Error().Str("backend", "badger").Msgf(format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logger().Warn().Str("backend", "badger").Msgf(format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logger().Debug().Str("backend", "badger").Msgf(format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logger().Trace().Str("backend", "badger").Msgf(format, args...)
}
