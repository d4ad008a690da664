package treesync

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// ChangeKind classifies a single filesystem change record.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeDeleted
	ChangeUpdated
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeDeleted:
		return "deleted"
	case ChangeUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// AllChangeKinds returns a fresh set containing every change kind.
func AllChangeKinds() mapset.Set[ChangeKind] {
	return mapset.NewSet(ChangeAdded, ChangeDeleted, ChangeUpdated)
}

// RawChangeRecord is one immutable change report from the watcher.
type RawChangeRecord struct {
	Path string
	Kind ChangeKind
}

// ChangeBatch is an ordered group of change records. The aggregate
// kind flags are derived from the records at construction and cannot
// drift out of sync with them.
type ChangeBatch struct {
	records    []RawChangeRecord
	anyAdded   bool
	anyDeleted bool
	anyUpdated bool
}

// NewChangeBatch builds a batch from records, preserving arrival order.
func NewChangeBatch(records []RawChangeRecord) ChangeBatch {
	b := ChangeBatch{records: make([]RawChangeRecord, len(records))}
	copy(b.records, records)
	for _, r := range b.records {
		switch r.Kind {
		case ChangeAdded:
			b.anyAdded = true
		case ChangeDeleted:
			b.anyDeleted = true
		case ChangeUpdated:
			b.anyUpdated = true
		}
	}
	return b
}

// Records returns the records in arrival order. The returned slice is a
// copy; mutating it cannot alter the batch.
func (b ChangeBatch) Records() []RawChangeRecord {
	out := make([]RawChangeRecord, len(b.records))
	copy(out, b.records)
	return out
}

func (b ChangeBatch) AnyAdded() bool { return b.anyAdded }

func (b ChangeBatch) AnyDeleted() bool { return b.anyDeleted }

func (b ChangeBatch) AnyUpdated() bool { return b.anyUpdated }

func (b ChangeBatch) Empty() bool { return len(b.records) == 0 }

// ChangeEventSet answers match/affect queries against one batch. The
// casing policy is frozen at construction so repeated queries over the
// same batch cannot observe different comparison rules.
type ChangeEventSet struct {
	batch      ChangeBatch
	ignoreCase bool
}

func NewChangeEventSet(batch ChangeBatch, ignoreCase bool) *ChangeEventSet {
	return &ChangeEventSet{batch: batch, ignoreCase: ignoreCase}
}

// Match reports whether some record in the batch has exactly the queried
// path and a kind contained in kinds.
func (s *ChangeEventSet) Match(path string, kinds mapset.Set[ChangeKind]) bool {
	if kinds == nil || kinds.Cardinality() == 0 {
		return false
	}
	for _, r := range s.batch.records {
		if kinds.Contains(r.Kind) && EqualPaths(r.Path, path, s.ignoreCase) {
			return true
		}
	}
	return false
}

// Affect is a superset of Match: it also reports true when the queried
// path is an ancestor of a changed path, or a changed path is an
// ancestor of the queried path.
func (s *ChangeEventSet) Affect(path string, kinds mapset.Set[ChangeKind]) bool {
	if kinds == nil || kinds.Cardinality() == 0 {
		return false
	}
	for _, r := range s.batch.records {
		if !kinds.Contains(r.Kind) {
			continue
		}
		if IsAncestorOrSelf(path, r.Path, s.ignoreCase) || IsAncestorOrSelf(r.Path, path, s.ignoreCase) {
			return true
		}
	}
	return false
}
