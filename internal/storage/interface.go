/*
Package storage implements the persistence layer for behavior snapshots.

Every backend is a small key/value store holding opaque byte blobs. Backends
degrade gracefully: when Init fails the backend disables itself, reads return
nothing and writes become no-ops, so tracking never breaks a caller.

Available backends:

  - sqlite: file database via modernc.org/sqlite (pure Go, CGo-free)
  - badger: embedded BadgerDB directory, or in-memory when no directory is set
  - redis: shared redis instance, keys under a configurable prefix
  - memory: process-local map
  - disabled: persistence unavailable
*/
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/khanglvm/intent-rank/internal/config"
	"github.com/khanglvm/intent-rank/internal/logging"
)

// Backend defines the key/value operations the behavior store needs.
type Backend interface {
	// Init opens the underlying store. A failing Init leaves the backend disabled.
	Init() error

	// Enabled reports whether the backend can currently persist data.
	Enabled() bool

	// Name identifies the backend kind (sqlite, badger, redis, memory, disabled).
	Name() string

	// Get returns the value for key, or nil with no error when the key is missing.
	Get(key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases the underlying resources.
	Close() error
}

// ErrUnknownBackend is returned by Open for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

func logger() *zerolog.Logger {
	l := logging.Component("storage")
	return &l
}

// Open builds the backend selected by cfg and initializes it.
//
// Init failures are logged and leave a disabled backend behind; only an
// unknown backend name is reported as an error.
func Open(cfg config.StorageConfig) (Backend, error) {
	var b Backend
	switch cfg.Backend {
	case "sqlite", "":
		b = NewSQLiteStorage(cfg.Path)
	case "badger":
		b = NewBadgerStorage(cfg.BadgerDir)
	case "redis":
		b = NewRedisStorage(cfg.Redis)
	case "memory":
		b = NewMemoryStorage()
	case "disabled":
		b = Disabled()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	if err := b.Init(); err != nil {
		logger().Warn().Err(err).Str("backend", b.Name()).Msg("storage unavailable, continuing without persistence")
	}
	return b, nil
}

// HashQuery creates a SHA256 hash of a query string for privacy.
func HashQuery(query string) string {
	hash := sha256.Sum256([]byte(query))
	return hex.EncodeToString(hash[:])
}
