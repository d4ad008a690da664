package treesync

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"github.com/filekit/treesync/internal/db"
)

const orderSchema = `
CREATE TABLE IF NOT EXISTS custom_order (
    dir   TEXT PRIMARY KEY,
    names TEXT NOT NULL -- JSON array of child names
);
`

const orderWriteQueueSize = 64

// PersistErrorFunc receives background persistence failures. err wraps
// ErrPersistence.
type PersistErrorFunc func(dir string, err error)

type orderWrite struct {
	dir   string
	names []string // nil means delete
	flush chan struct{}
}

// CustomOrderStore holds the user-defined sibling ordering per directory.
// The in-memory map is authoritative and updated synchronously; the
// SQLite copy is written by a background worker so a reorder in the UI
// never waits on disk.
type CustomOrderStore struct {
	dbPath     string
	ignoreCase bool

	mu     sync.RWMutex
	orders map[string][]string // folded dir path -> child names
	closed bool

	db     *sqlx.DB
	writes chan orderWrite
	wg     sync.WaitGroup

	onPersistError PersistErrorFunc
}

// NewCustomOrderStore creates a store backed by an SQLite database at
// dbPath. Use ":memory:" for tests.
func NewCustomOrderStore(dbPath string, ignoreCase bool) *CustomOrderStore {
	return &CustomOrderStore{
		dbPath:     dbPath,
		ignoreCase: ignoreCase,
		orders:     make(map[string][]string),
	}
}

// OnPersistError registers a callback for background persistence
// failures. Must be called before Open.
func (s *CustomOrderStore) OnPersistError(fn PersistErrorFunc) {
	s.onPersistError = fn
}

// Open connects the database, loads all persisted orders into memory and
// starts the background writer.
func (s *CustomOrderStore) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return fmt.Errorf("order store already open")
	}

	sdb, err := db.NewSqliteDB(db.WithPath(s.dbPath), db.WithMaxOpenConns(1))
	if err != nil {
		return fmt.Errorf("open order store: %w", err)
	}
	if _, err := sdb.Exec(orderSchema); err != nil {
		sdb.Close()
		return fmt.Errorf("init order schema: %w", err)
	}

	type orderRow struct {
		Dir   string `db:"dir"`
		Names string `db:"names"`
	}
	var rows []orderRow
	if err := sdb.Select(&rows, "SELECT dir, names FROM custom_order"); err != nil {
		sdb.Close()
		return fmt.Errorf("load custom orders: %w", err)
	}
	for _, row := range rows {
		var names []string
		if err := json.Unmarshal([]byte(row.Names), &names); err != nil {
			slog.Warn("order store skipping corrupt record", "dir", row.Dir, "error", err)
			continue
		}
		s.orders[row.Dir] = names
	}

	s.db = sdb
	s.closed = false
	s.writes = make(chan orderWrite, orderWriteQueueSize)
	s.wg.Add(1)
	go s.persistLoop()

	slog.Debug("order store open", "path", s.dbPath, "dirs", len(s.orders))
	return nil
}

// Close drains pending writes and closes the database. Idempotent.
func (s *CustomOrderStore) Close() error {
	s.mu.Lock()
	if s.db == nil || s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.writes)
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.Close()
	s.db = nil
	return err
}

// GetOrder returns the persisted child-name order for dir, if any.
// Never blocks on in-flight writes.
func (s *CustomOrderStore) GetOrder(dir string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names, ok := s.orders[foldPath(dir, s.ignoreCase)]
	if !ok {
		return nil, false
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, true
}

// SetOrder replaces the order for dir. The in-memory copy updates
// immediately; durability is best effort and failures surface through
// OnPersistError, not the return path of the UI action.
func (s *CustomOrderStore) SetOrder(dir string, names []string) {
	stored := make([]string, len(names))
	copy(stored, names)

	key := foldPath(dir, s.ignoreCase)

	s.mu.Lock()
	s.orders[key] = stored
	s.enqueueLocked(orderWrite{dir: key, names: stored})
	s.mu.Unlock()
}

// RemoveOrder deletes the order for dir. Idempotent.
func (s *CustomOrderStore) RemoveOrder(dir string) {
	key := foldPath(dir, s.ignoreCase)

	s.mu.Lock()
	delete(s.orders, key)
	s.enqueueLocked(orderWrite{dir: key})
	s.mu.Unlock()
}

// RemoveOrdersUnder deletes the order for dir and for every directory
// inside it. A deleted subtree arrives from the watcher as one record
// for its root, but the persisted orders of nested directories must not
// survive it and silently reattach to a recreated tree.
func (s *CustomOrderStore) RemoveOrdersUnder(dir string) {
	key := foldPath(dir, s.ignoreCase)

	s.mu.Lock()
	for k := range s.orders {
		// Stored keys are already folded, so the prefix check is exact.
		if IsAncestorOrSelf(key, k, false) {
			delete(s.orders, k)
			s.enqueueLocked(orderWrite{dir: k})
		}
	}
	s.mu.Unlock()
}

// Flush blocks until all writes enqueued so far have been persisted.
func (s *CustomOrderStore) Flush() {
	done := make(chan struct{})

	s.mu.Lock()
	if s.db == nil || s.closed {
		s.mu.Unlock()
		return
	}
	// Unlike data writes, the marker must not be dropped on a full
	// queue: Flush exists to wait, so block until the worker takes it.
	// Holding the mutex keeps Close from closing the channel underneath
	// the send.
	s.writes <- orderWrite{flush: done}
	s.mu.Unlock()

	<-done
}

// enqueueLocked hands a write to the persist worker. Reports false when
// the store is closed or was never opened; the in-memory state already
// carries the change, so the write is dropped rather than blocking.
func (s *CustomOrderStore) enqueueLocked(w orderWrite) bool {
	if s.db == nil || s.closed {
		return false
	}
	select {
	case s.writes <- w:
		return true
	default:
		slog.Warn("order store write queue full, dropping persist", "dir", w.dir)
		return false
	}
}

func (s *CustomOrderStore) persistLoop() {
	defer s.wg.Done()

	for w := range s.writes {
		if w.flush != nil {
			close(w.flush)
			continue
		}
		if err := s.persist(w); err != nil {
			err = fmt.Errorf("%w: %s: %v", ErrPersistence, w.dir, err)
			slog.Warn("order store persist failed", "dir", w.dir, "error", err)
			if s.onPersistError != nil {
				s.onPersistError(w.dir, err)
			}
		}
	}
}

func (s *CustomOrderStore) persist(w orderWrite) error {
	if w.names == nil {
		_, err := s.db.Exec("DELETE FROM custom_order WHERE dir = ?", w.dir)
		return err
	}

	data, err := json.Marshal(w.names)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO custom_order (dir, names) VALUES (?, ?)",
		w.dir, string(data),
	)
	return err
}
