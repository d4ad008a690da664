package treesync

import (
	"strings"
	"sync"
	"time"
)

// SortType selects the comparison strategy for tree siblings.
type SortType int

const (
	SortDefault SortType = iota
	SortAlphabetic
	SortCreationTime
	SortModificationTime
	SortCustom
)

func (t SortType) String() string {
	switch t {
	case SortDefault:
		return "default"
	case SortAlphabetic:
		return "alphabetic"
	case SortCreationTime:
		return "creation_time"
	case SortModificationTime:
		return "modification_time"
	case SortCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseSortType maps a configuration value to a SortType. Unrecognized
// values fall back to SortDefault.
func ParseSortType(s string) SortType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alphabetic":
		return SortAlphabetic
	case "creation_time":
		return SortCreationTime
	case "modification_time":
		return SortModificationTime
	case "custom":
		return SortCustom
	default:
		return SortDefault
	}
}

// SortOrder is the direction applied on top of a strategy.
type SortOrder int

const (
	SortAscending SortOrder = iota
	SortDescending
)

// ParseSortOrder maps a configuration value to a SortOrder.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), "descending") {
		return SortDescending
	}
	return SortAscending
}

// Item is one tree entry as seen by the sorter.
type Item struct {
	Path       string
	Name       string
	IsDir      bool
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// TreeSorter compares tree siblings under the active SortState. Type and
// order switch atomically; a concurrent Compare sees either the old pair
// or the new one, never a torn mix.
type TreeSorter struct {
	mu         sync.RWMutex
	typ        SortType
	order      SortOrder
	store      *CustomOrderStore
	ignoreCase bool
}

// NewTreeSorter creates a sorter. store backs the custom strategy and
// may be shared with the rest of the subsystem.
func NewTreeSorter(store *CustomOrderStore, typ SortType, order SortOrder, ignoreCase bool) *TreeSorter {
	return &TreeSorter{
		typ:        typ,
		order:      order,
		store:      store,
		ignoreCase: ignoreCase,
	}
}

func (s *TreeSorter) SetType(t SortType) {
	s.mu.Lock()
	s.typ = t
	s.mu.Unlock()
}

func (s *TreeSorter) SetOrder(o SortOrder) {
	s.mu.Lock()
	s.order = o
	s.mu.Unlock()
}

// SwitchTo updates both fields in one step.
func (s *TreeSorter) SwitchTo(t SortType, o SortOrder) {
	s.mu.Lock()
	s.typ = t
	s.order = o
	s.mu.Unlock()
}

// State returns the current type and order.
func (s *TreeSorter) State() (SortType, SortOrder) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typ, s.order
}

// Compare is a three-way comparator over siblings: negative when a sorts
// before b. It forms a strict weak ordering for any fixed SortState.
// Default and Custom carry their own intrinsic direction and ignore the
// order flag; the remaining strategies flip their sign when descending.
func (s *TreeSorter) Compare(a, b Item) int {
	s.mu.RLock()
	typ, order := s.typ, s.order
	s.mu.RUnlock()

	var c int
	switch typ {
	case SortAlphabetic:
		c = s.applyOrder(s.compareNames(a, b), order)
	case SortCreationTime:
		c = s.applyOrder(s.compareTimes(a.CreatedAt, b.CreatedAt, a, b), order)
	case SortModificationTime:
		c = s.applyOrder(s.compareTimes(a.ModifiedAt, b.ModifiedAt, a, b), order)
	case SortCustom:
		c = s.compareCustom(a, b)
	default:
		c = s.compareDefault(a, b)
	}
	return c
}

func (s *TreeSorter) applyOrder(c int, order SortOrder) int {
	if order == SortDescending {
		return -c
	}
	return c
}

// compareDefault puts directories before files, then compares names.
func (s *TreeSorter) compareDefault(a, b Item) int {
	if a.IsDir != b.IsDir {
		if a.IsDir {
			return -1
		}
		return 1
	}
	return s.compareNames(a, b)
}

func (s *TreeSorter) compareNames(a, b Item) int {
	na, nb := a.Name, b.Name
	if s.ignoreCase {
		na = strings.ToLower(na)
		nb = strings.ToLower(nb)
	}
	if c := strings.Compare(na, nb); c != 0 {
		return c
	}
	// Equal names can only be distinct entries via casing; fall back to
	// the full path so the ordering stays deterministic.
	return strings.Compare(a.Path, b.Path)
}

func (s *TreeSorter) compareTimes(ta, tb time.Time, a, b Item) int {
	switch {
	case ta.Before(tb):
		return -1
	case ta.After(tb):
		return 1
	default:
		return s.compareNames(a, b)
	}
}

// compareCustom ranks items by their index in the persisted order for
// their parent directory. Items absent from the stored order rank after
// all stored ones, alphabetically among themselves.
func (s *TreeSorter) compareCustom(a, b Item) int {
	var stored []string
	if s.store != nil {
		stored, _ = s.store.GetOrder(parentPath(a.Path))
	}

	ia := s.indexOf(stored, a.Name)
	ib := s.indexOf(stored, b.Name)

	switch {
	case ia >= 0 && ib >= 0:
		return ia - ib
	case ia >= 0:
		return -1
	case ib >= 0:
		return 1
	default:
		return s.compareNames(a, b)
	}
}

func (s *TreeSorter) indexOf(stored []string, name string) int {
	for i, n := range stored {
		if equalSegment(n, name, s.ignoreCase) {
			return i
		}
	}
	return -1
}
