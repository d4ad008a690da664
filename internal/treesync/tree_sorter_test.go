package treesync

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(path string, isDir bool) Item {
	return Item{Path: path, Name: baseOf(path), IsDir: isDir}
}

func baseOf(path string) string {
	segments := splitSegments(path)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

func TestParseSortType(t *testing.T) {
	tests := []struct {
		input string
		want  SortType
	}{
		{"default", SortDefault},
		{"alphabetic", SortAlphabetic},
		{"creation_time", SortCreationTime},
		{"modification_time", SortModificationTime},
		{"custom", SortCustom},
		{" Custom ", SortCustom},
		{"bogus", SortDefault},
		{"", SortDefault},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSortType(tt.input), "input %q", tt.input)
	}
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, SortDescending, ParseSortOrder("descending"))
	assert.Equal(t, SortAscending, ParseSortOrder("ascending"))
	assert.Equal(t, SortAscending, ParseSortOrder("anything"))
}

func TestSorterDefaultDirectoriesFirst(t *testing.T) {
	s := NewTreeSorter(nil, SortDefault, SortAscending, false)

	dir := item("/d/zdir", true)
	file := item("/d/afile", false)

	assert.Negative(t, s.Compare(dir, file))
	assert.Positive(t, s.Compare(file, dir))

	// Same kind falls back to name.
	assert.Negative(t, s.Compare(item("/d/a", false), item("/d/b", false)))

	// Default ignores the descending flag.
	s.SetOrder(SortDescending)
	assert.Negative(t, s.Compare(dir, file))
}

func TestSorterAlphabetic(t *testing.T) {
	s := NewTreeSorter(nil, SortAlphabetic, SortAscending, false)

	a := item("/d/alpha", false)
	b := item("/d/beta", true)

	assert.Negative(t, s.Compare(a, b), "alphabetic ignores dir/file split")

	s.SetOrder(SortDescending)
	assert.Positive(t, s.Compare(a, b))
}

func TestSorterTimeStrategies(t *testing.T) {
	now := time.Now()
	older := Item{Path: "/d/old", Name: "old", CreatedAt: now.Add(-time.Hour), ModifiedAt: now.Add(-time.Hour)}
	newer := Item{Path: "/d/new", Name: "new", CreatedAt: now, ModifiedAt: now}

	s := NewTreeSorter(nil, SortCreationTime, SortAscending, false)
	assert.Negative(t, s.Compare(older, newer))

	s.SwitchTo(SortModificationTime, SortDescending)
	assert.Negative(t, s.Compare(newer, older))

	// Equal timestamps break ties by name.
	tie1 := Item{Path: "/d/aaa", Name: "aaa", ModifiedAt: now}
	tie2 := Item{Path: "/d/bbb", Name: "bbb", ModifiedAt: now}
	s.SwitchTo(SortModificationTime, SortAscending)
	assert.Negative(t, s.Compare(tie1, tie2))
}

func TestSorterCustomOrder(t *testing.T) {
	store := openTestStore(t, ":memory:", false)
	store.SetOrder("/d", []string{"b", "a", "c"})

	s := NewTreeSorter(store, SortCustom, SortAscending, false)

	a := item("/d/a", false)
	b := item("/d/b", false)
	z := item("/d/z", false)

	assert.Negative(t, s.Compare(b, a), "b is ranked before a by the stored order")
	assert.Positive(t, s.Compare(a, b))

	// Unknown names rank after all stored ones.
	assert.Positive(t, s.Compare(z, a))
	assert.Positive(t, s.Compare(z, b))

	// Unknowns order among themselves by name.
	y := item("/d/y", false)
	assert.Negative(t, s.Compare(y, z))
}

func TestSorterCustomWithoutStoredOrder(t *testing.T) {
	store := openTestStore(t, ":memory:", false)
	s := NewTreeSorter(store, SortCustom, SortAscending, false)

	assert.Negative(t, s.Compare(item("/d/a", false), item("/d/b", false)))
}

func TestSorterCustomCaseInsensitiveNames(t *testing.T) {
	store := openTestStore(t, ":memory:", true)
	store.SetOrder("/d", []string{"Beta", "Alpha"})

	s := NewTreeSorter(store, SortCustom, SortAscending, true)

	assert.Negative(t, s.Compare(item("/d/beta", false), item("/d/alpha", false)))
}

func TestSorterStrictWeakOrdering(t *testing.T) {
	store := openTestStore(t, ":memory:", false)
	store.SetOrder("/d", []string{"c", "a"})

	s := NewTreeSorter(store, SortCustom, SortAscending, false)

	items := []Item{
		item("/d/a", false),
		item("/d/b", false),
		item("/d/c", true),
		item("/d/z", false),
	}

	sort.SliceStable(items, func(i, j int) bool {
		return s.Compare(items[i], items[j]) < 0
	})

	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	require.Equal(t, []string{"c", "a", "b", "z"}, names)

	// Antisymmetry over every pair.
	for _, x := range items {
		for _, y := range items {
			cxy := s.Compare(x, y)
			cyx := s.Compare(y, x)
			if cxy == 0 {
				assert.Zero(t, cyx)
			} else {
				assert.Equal(t, cxy > 0, cyx < 0)
			}
		}
	}
}

func TestSorterSwitchToIsAtomic(t *testing.T) {
	s := NewTreeSorter(nil, SortDefault, SortAscending, false)

	s.SwitchTo(SortAlphabetic, SortDescending)
	typ, order := s.State()
	assert.Equal(t, SortAlphabetic, typ)
	assert.Equal(t, SortDescending, order)

	s.SetType(SortCreationTime)
	typ, order = s.State()
	assert.Equal(t, SortCreationTime, typ)
	assert.Equal(t, SortDescending, order, "SetType leaves order untouched")
}
