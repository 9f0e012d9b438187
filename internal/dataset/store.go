package dataset

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadObserver is notified after each load attempt with the row count (zero
// on failure), the load duration, and the error if any.
type LoadObserver func(rows int, duration time.Duration, err error)

// Store lazily loads the observation table and caches it for the process
// lifetime. The table is immutable once loaded and is never invalidated;
// concurrent first calls collapse into a single file read.
type Store struct {
	path   string
	logger *slog.Logger

	group    singleflight.Group
	mu       sync.RWMutex
	table    *Table
	observer LoadObserver
}

// NewStore creates a store for the dataset at path. Loading is deferred
// until the first Table call.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With(slog.String("component", "dataset_store")),
	}
}

// Table returns the cleaned table, loading it on first use. Every later
// call returns the same cached table without touching the file.
func (s *Store) Table(ctx context.Context) (*Table, error) {
	s.mu.RLock()
	table := s.table
	s.mu.RUnlock()
	if table != nil {
		return table, nil
	}

	v, err, shared := s.group.Do("load", func() (interface{}, error) {
		start := time.Now()
		t, err := Load(s.path)
		if s.observer != nil {
			rows := 0
			if t != nil {
				rows = len(t.Rows)
			}
			s.observer(rows, time.Since(start), err)
		}
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.table = t
		s.mu.Unlock()
		return t, nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return nil, err
	}

	if shared {
		s.logger.DebugContext(ctx, "dataset load shared across callers")
	}

	return v.(*Table), nil
}

// SetLoadObserver registers fn to be called after load attempts. Must be set
// before the first Table call.
func (s *Store) SetLoadObserver(fn LoadObserver) {
	s.observer = fn
}

// Path returns the configured dataset path.
func (s *Store) Path() string {
	return s.path
}
