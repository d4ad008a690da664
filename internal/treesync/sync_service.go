package treesync

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ServiceState tracks the lifecycle of a watched root.
type ServiceState int

const (
	StateClosed ServiceState = iota
	StateOpening
	StateOpen
	StateClosing
)

func (s ServiceState) String() string {
	switch s {
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "closed"
	}
}

// Refresher is the opaque tree-refresh trigger owned by the UI layer.
type Refresher interface {
	Refresh()
}

// RefresherFunc adapts a plain function to the Refresher interface.
type RefresherFunc func()

func (f RefresherFunc) Refresh() { f() }

// ConfigGetter is the single synchronous configuration read used at
// construction.
type ConfigGetter interface {
	Get(key, def string) string
}

// Configuration keys read at construction.
const (
	SortTypeKey  = "sort_type"
	SortOrderKey = "sort_order"
)

// TreeSyncService owns one watched root: it holds the watch
// subscription, coalesces its change batches, and decides per aggregate
// whether the external tree needs a refresh. At most one root may be
// open per instance.
type TreeSyncService struct {
	watcher    WatchProvider
	refresher  Refresher
	store      *CustomOrderStore
	sorter     *TreeSorter
	ignoreCase bool
	quiet      time.Duration

	mu        sync.Mutex
	state     ServiceState
	root      string
	sub       WatchSubscription
	coalescer *ChangeCoalescer
}

// NewTreeSyncService wires the service from its collaborators. The
// initial sort state is read from cfg once, here, and never re-read.
func NewTreeSyncService(
	watcher WatchProvider,
	refresher Refresher,
	store *CustomOrderStore,
	cfg ConfigGetter,
	ignoreCase bool,
	quiet time.Duration,
) *TreeSyncService {
	sorter := NewTreeSorter(
		store,
		ParseSortType(cfg.Get(SortTypeKey, SortDefault.String())),
		ParseSortOrder(cfg.Get(SortOrderKey, "ascending")),
		ignoreCase,
	)
	return &TreeSyncService{
		watcher:    watcher,
		refresher:  refresher,
		store:      store,
		sorter:     sorter,
		ignoreCase: ignoreCase,
		quiet:      quiet,
	}
}

// Sorter exposes the sibling comparator for the tree model.
func (s *TreeSyncService) Sorter() *TreeSorter { return s.sorter }

// State returns the current lifecycle state.
func (s *TreeSyncService) State() ServiceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Root returns the currently open root, or "".
func (s *TreeSyncService) Root() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// Init opens root for watching. Fails with ErrAlreadyOpen when a root is
// already open and with ErrWatchSetup when the watch cannot be
// established; in both cases the prior state is untouched.
func (s *TreeSyncService) Init(root string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateClosed {
		return fmt.Errorf("%w: %s", ErrAlreadyOpen, s.root)
	}

	s.state = StateOpening

	coalescer := NewChangeCoalescer(s.quiet, func(batch ChangeBatch) {
		s.onAggregate(batch)
	})

	sub, err := s.watcher.Watch(root, coalescer.Schedule)
	if err != nil {
		coalescer.Dispose()
		s.state = StateClosed
		return fmt.Errorf("init %s: %w", root, err)
	}

	s.root = root
	s.sub = sub
	s.coalescer = coalescer
	s.state = StateOpen

	slog.Info("tree sync open", "root", root)
	return nil
}

// Refresh forces the external tree to re-render. No-op unless open.
func (s *TreeSyncService) Refresh() {
	s.mu.Lock()
	open := s.state == StateOpen
	s.mu.Unlock()

	if open {
		s.refresher.Refresh()
	}
}

// Close releases the watch subscription and any pending coalesced
// aggregate. Idempotent and safe from any state.
func (s *TreeSyncService) Close() {
	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return
	}
	s.state = StateClosing
	sub := s.sub
	coalescer := s.coalescer
	root := s.root
	s.sub = nil
	s.coalescer = nil
	s.root = ""
	s.mu.Unlock()

	coalescer.Dispose()
	if err := sub.Close(); err != nil {
		slog.Warn("watch close", "root", root, "error", err)
	}

	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()

	slog.Info("tree sync closed", "root", root)
}

// onAggregate evaluates one coalesced batch against the open root.
func (s *TreeSyncService) onAggregate(batch ChangeBatch) {
	s.mu.Lock()
	root := s.root
	open := s.state == StateOpen
	s.mu.Unlock()

	if !open || batch.Empty() {
		return
	}

	set := NewChangeEventSet(batch, s.ignoreCase)
	if !set.Affect(root, AllChangeKinds()) {
		slog.Debug("tree sync ignoring unrelated batch", "records", len(batch.Records()))
		return
	}

	// A deleted directory takes its persisted custom order with it,
	// including the orders of every directory inside the deleted
	// subtree: the watcher reports only the subtree root.
	if batch.AnyDeleted() && s.store != nil {
		for _, r := range batch.Records() {
			if r.Kind == ChangeDeleted && IsAncestorOrSelf(root, r.Path, s.ignoreCase) {
				s.store.RemoveOrdersUnder(r.Path)
			}
		}
	}

	slog.Debug("tree sync refresh",
		"records", len(batch.Records()),
		"added", batch.AnyAdded(),
		"deleted", batch.AnyDeleted(),
		"updated", batch.AnyUpdated(),
	)
	s.refresher.Refresh()
}
