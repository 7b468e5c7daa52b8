// Package store provides persistent storage of SATP requests and request states using BadgerDB.
//
// A gateway keeps four key spaces, each in its own badger database:
// requests it acted on locally, requests received from counterparts, and the
// states of both. Values are msgpack encoded and keyed by request id; writes
// overwrite.
package store

import (
	stdErrors "errors"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/core/errs"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound returned when key does not exist in the store.
var ErrNotFound = errors.New("key not found")

// ErrStoreUnavailable is wrapped by the fatal error returned when a key space
// could not be opened within the retry budget.
var ErrStoreUnavailable = errors.New("store unavailable")

const (
	DefaultOpenMaxRetries   = 500
	DefaultOpenRetryBackoff = 10 * time.Millisecond
)

// Kind selects one of the four key spaces.
type Kind int

const (
	LocalRequests Kind = iota
	RemoteRequests
	LocalRequestStates
	RemoteRequestStates
)

var kinds = []Kind{LocalRequests, RemoteRequests, LocalRequestStates, RemoteRequestStates}

func (k Kind) String() string {
	switch k {
	case LocalRequests:
		return "local"
	case RemoteRequests:
		return "remote"
	case LocalRequestStates:
		return "local states"
	case RemoteRequestStates:
		return "remote states"
	default:
		return "unknown"
	}
}

func (k Kind) dir() string {
	switch k {
	case LocalRequests:
		return "requests"
	case RemoteRequests:
		return "remote_requests"
	case LocalRequestStates:
		return "requests_states"
	default:
		return "remote_requests_states"
	}
}

// Options configures Open.
type Options struct {
	// Path is the parent directory of the four key spaces.
	Path             string
	OpenMaxRetries   int
	OpenRetryBackoff time.Duration
	// InMemory keeps every key space in memory, Path is ignored.
	InMemory bool
	// Journal, when set, receives a copy of every request state written.
	Journal *Journal
}

// Store is the request store of one gateway.
type Store struct {
	dbs     map[Kind]*badger.DB
	journal *Journal
}

// Open opens (or creates) the four key spaces.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" && !opts.InMemory {
		return nil, errors.New("db path is empty")
	}
	if opts.OpenMaxRetries <= 0 {
		opts.OpenMaxRetries = DefaultOpenMaxRetries
	}
	if opts.OpenRetryBackoff <= 0 {
		opts.OpenRetryBackoff = DefaultOpenRetryBackoff
	}

	s := &Store{dbs: make(map[Kind]*badger.DB, len(kinds)), journal: opts.Journal}
	for _, kind := range kinds {
		var bopts badger.Options
		if opts.InMemory {
			bopts = badger.DefaultOptions("").WithInMemory(true)
		} else {
			path := filepath.Join(opts.Path, kind.dir())
			if err := os.MkdirAll(path, 0o755); err != nil {
				_ = s.closeDBs()
				return nil, errs.Store(err, "create badger directory %s", path)
			}
			bopts = badger.DefaultOptions(path)
		}

		db, err := OpenWithRetry(tuned(bopts), opts.OpenMaxRetries, opts.OpenRetryBackoff)
		if err != nil {
			_ = s.closeDBs()
			return nil, err
		}
		s.dbs[kind] = db
	}

	return s, nil
}

func tuned(opts badger.Options) badger.Options {
	return opts.
		WithLoggingLevel(badger.WARNING).
		WithMemTableSize(8 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumVersionsToKeep(1)
}

// OpenWithRetry opens a badger database, retrying while the directory is held
// by another handle. It gives up after maxRetries attempts with a fatal error.
func OpenWithRetry(opts badger.Options, maxRetries int, backoff time.Duration) (*badger.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err := badger.Open(opts)
		if err == nil {
			if attempt > 1 {
				log.Debugf("opened badger db %s after %d attempts", opts.Dir, attempt)
			}
			return db, nil
		}
		lastErr = err
		time.Sleep(backoff)
	}

	log.Errorf("failed to open badger db %s after %d attempts: %v", opts.Dir, maxRetries, lastErr)
	return nil, errs.Fatal(stdErrors.Join(ErrStoreUnavailable, lastErr),
		"open %s after %d attempts", opts.Dir, maxRetries)
}

// Set stores value under key in the selected key space, replacing any previous value.
func (s *Store) Set(kind Kind, key string, value any) error {
	if key == "" {
		return errs.Store(errors.New("key cannot be empty"), "set in %s store", kind)
	}
	db, err := s.db(kind)
	if err != nil {
		return err
	}

	raw, err := msgpack.Marshal(value)
	if err != nil {
		return errs.Store(err, "encode value for key %s", key)
	}

	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
	return errs.Store(err, "write key %s to %s store", key, kind)
}

// Get decodes the value stored under key into out. Returns ErrNotFound if key does not exist.
func (s *Store) Get(kind Kind, key string, out any) error {
	db, err := s.db(kind)
	if err != nil {
		return err
	}

	var raw []byte
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if stdErrors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if stdErrors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errs.Store(err, "read key %s from %s store", key, kind)
	}

	if err := msgpack.Unmarshal(raw, out); err != nil {
		return errs.Store(err, "decode value of key %s", key)
	}
	return nil
}

// GetAs reads the value under key as a T.
func GetAs[T any](s *Store, kind Kind, key string) (T, error) {
	var v T
	err := s.Get(kind, key, &v)
	return v, err
}

// SetState overwrites the state of state.RequestID and appends it to the journal, if any.
func (s *Store) SetState(kind Kind, state dto.RequestState) error {
	if kind != LocalRequestStates && kind != RemoteRequestStates {
		return errs.Store(errors.Errorf("%s is not a state store", kind), "set state %s", state.RequestID)
	}
	if err := s.Set(kind, state.RequestID, state); err != nil {
		return err
	}
	if s.journal != nil {
		if err := s.journal.Append(state); err != nil {
			log.Warnf("failed to journal state of request %s: %v", state.RequestID, err)
		}
	}
	return nil
}

// State returns the current state of a request.
func (s *Store) State(kind Kind, requestID string) (dto.RequestState, error) {
	return GetAs[dto.RequestState](s, kind, requestID)
}

// History returns every journaled state of a request, oldest first.
func (s *Store) History(requestID string) ([]dto.RequestState, error) {
	if s.journal == nil {
		return nil, errors.New("state journal is disabled")
	}
	return s.journal.History(requestID)
}

// Close closes every key space and the journal.
func (s *Store) Close() error {
	result := s.closeDBs()
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			result = stdErrors.Join(result, err)
		}
	}
	return result
}

func (s *Store) closeDBs() error {
	var result error
	for kind, db := range s.dbs {
		if err := db.Close(); err != nil {
			result = stdErrors.Join(result, errors.Wrapf(err, "close %s store", kind))
		}
	}
	return result
}

func (s *Store) db(kind Kind) (*badger.DB, error) {
	db, ok := s.dbs[kind]
	if !ok {
		return nil, errs.Store(errors.Errorf("unknown key space %d", kind), "select store")
	}
	return db, nil
}
