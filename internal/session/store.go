package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/ziadkadry99/booknav/internal/db"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// ErrInvalidOffset is returned when a negative scroll offset is stored.
var ErrInvalidOffset = errors.New("session: offset must be non-negative")

// Store keeps integer values per browser session. Take reads and removes a
// value in one step so it is consumed at most once.
type Store interface {
	Take(ctx context.Context, sessionID, key string) (int, bool, error)
	Put(ctx context.Context, sessionID, key string, value int) error
}

// Open returns the store for a backend. The closer releases its resources.
func Open(backend, dataDir string) (Store, io.Closer, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStore(), nopCloser{}, nil
	case BackendSQLite:
		d, err := db.Open(filepath.Join(dataDir, "sessions.db"))
		if err != nil {
			return nil, nil, err
		}
		return NewSQLStore(d), d, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu     sync.Mutex
	values map[storeKey]int
}

type storeKey struct {
	session, key string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[storeKey]int)}
}

// Take implements Store.
func (m *MemoryStore) Take(_ context.Context, sessionID, key string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := storeKey{sessionID, key}
	v, ok := m.values[k]
	delete(m.values, k)
	return v, ok, nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, sessionID, key string, value int) error {
	if value < 0 {
		return ErrInvalidOffset
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[storeKey{sessionID, key}] = value
	return nil
}

// Len returns the number of stored values.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

// SQLStore is a Store backed by the session_values table, so pending
// offsets survive a server restart.
type SQLStore struct {
	db *db.DB
}

// NewSQLStore wraps an open database.
func NewSQLStore(d *db.DB) *SQLStore {
	return &SQLStore{db: d}
}

// Take implements Store.
func (s *SQLStore) Take(ctx context.Context, sessionID, key string) (int, bool, error) {
	var v int
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM session_values WHERE session_id = ? AND key = ? RETURNING value`,
		sessionID, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("taking session value: %w", err)
	}
	return v, true, nil
}

// Put implements Store.
func (s *SQLStore) Put(ctx context.Context, sessionID, key string, value int) error {
	if value < 0 {
		return ErrInvalidOffset
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_values (session_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		sessionID, key, value,
	)
	if err != nil {
		return fmt.Errorf("storing session value: %w", err)
	}
	return nil
}

// Prune deletes values not written within maxAge. Browser sessions end
// without telling the server, so stale rows are dropped periodically.
func (s *SQLStore) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UTC().Format("2006-01-02 15:04:05")
	res, err := s.db.ExecContext(ctx, `DELETE FROM session_values WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning session values: %w", err)
	}
	return res.RowsAffected()
}
