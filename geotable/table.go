package geotable

import (
	"fmt"
	"time"
)

// Origin tells where a table was loaded from.
type Origin string

const (
	OriginText     Origin = "text"
	OriginSnapshot Origin = "snapshot"
)

// Table is an immutable ordered sequence of address ranges.
//
// Ranges are sorted ascending by start and do not overlap. Loader
// checks this with Validate unless it is asked to trust the source.
// There are no methods to modify a table after creation so it is safe
// to share a single instance between any number of goroutines.
type Table struct {
	ranges   []AddressRange
	origin   Origin
	loadedAt time.Time
}

// NewTable creates a table over the given ranges. Slice is not copied,
// caller must not modify it afterwards.
func NewTable(ranges []AddressRange) *Table {
	return &Table{
		ranges:   ranges,
		loadedAt: time.Now(),
	}
}

func (t *Table) Len() int {
	return len(t.ranges)
}

func (t *Table) Origin() Origin {
	return t.origin
}

func (t *Table) LoadedAt() time.Time {
	return t.loadedAt
}

// At returns a range by its position.
func (t *Table) At(idx int) AddressRange {
	return t.ranges[idx]
}

// Ranges returns a copy of all ranges.
func (t *Table) Ranges() []AddressRange {
	rv := make([]AddressRange, len(t.ranges))

	copy(rv, t.ranges)

	return rv
}

// Lookup returns metadata of the range which contains addr. If there is
// no such range, second value is false.
func (t *Table) Lookup(addr uint32) (RangeInfo, bool) {
	if idx := t.search(addr); idx >= 0 {
		return t.ranges[idx].Info, true
	}

	return RangeInfo{}, false
}

// Find is like Lookup but returns the whole range.
func (t *Table) Find(addr uint32) (AddressRange, bool) {
	if idx := t.search(addr); idx >= 0 {
		return t.ranges[idx], true
	}

	return AddressRange{}, false
}

func (t *Table) search(addr uint32) int {
	left, right := 0, len(t.ranges)-1

	for left <= right {
		mid := (left + right) / 2
		current := &t.ranges[mid]

		switch {
		case current.Start <= addr && addr <= current.End:
			return mid
		case addr < current.Start:
			right = mid - 1
		default:
			left = mid + 1
		}
	}

	return -1
}

// Validate checks that every range has start <= end and that ranges go
// in ascending order without overlaps.
func (t *Table) Validate() error {
	for i := range t.ranges {
		current := &t.ranges[i]

		if current.Start > current.End {
			return fmt.Errorf("%w: range %d has start %d > end %d",
				ErrUnorderedTable, i, current.Start, current.End)
		}

		if i > 0 && t.ranges[i-1].End >= current.Start {
			return fmt.Errorf("%w: range %d starts at %d but previous one ends at %d",
				ErrUnorderedTable, i, current.Start, t.ranges[i-1].End)
		}
	}

	return nil
}

// Equal compares ranges of two tables field by field. Origin and load
// time are ignored.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}

	if len(t.ranges) != len(other.ranges) {
		return false
	}

	for i := range t.ranges {
		if t.ranges[i] != other.ranges[i] {
			return false
		}
	}

	return true
}
