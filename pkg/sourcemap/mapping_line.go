package sourcemap

import (
	"math"
	"sort"
)

// lineEntry is one column slot on a generated line. The original location
// is stored by value; hasOriginal distinguishes boundary mappings.
type lineEntry struct {
	column      uint32
	original    OriginalLocation
	hasOriginal bool
}

// MappingLine holds the mappings of a single generated line, ordered by
// ascending generated column. Columns are unique; adding to an occupied
// column overwrites the previous entry.
type MappingLine struct {
	generatedLine uint32
	entries       []lineEntry // ascending column order
}

// NewMappingLine creates an empty line for the given generated line number.
func NewMappingLine(generatedLine uint32) *MappingLine {
	return &MappingLine{generatedLine: generatedLine}
}

// GeneratedLine returns the generated line number this line covers.
func (l *MappingLine) GeneratedLine() uint32 {
	return l.generatedLine
}

// Len returns the number of mappings on this line.
func (l *MappingLine) Len() int {
	return len(l.entries)
}

// search returns the index of the first entry with column >= target.
func (l *MappingLine) search(column uint32) int {
	return sort.Search(len(l.entries), func(i int) bool {
		return l.entries[i].column >= column
	})
}

// Add sets the entry at column. A nil original records a boundary mapping.
func (l *MappingLine) Add(column uint32, original *OriginalLocation) {
	entry := lineEntry{column: column}
	if original != nil {
		entry.original = *original
		entry.hasOriginal = true
	}

	i := l.search(column)
	if i < len(l.entries) && l.entries[i].column == column {
		l.entries[i] = entry
		return
	}

	// Fast path: mappings usually arrive in ascending column order.
	if i == len(l.entries) {
		l.entries = append(l.entries, entry)
		return
	}

	l.entries = append(l.entries, lineEntry{})
	copy(l.entries[i+1:], l.entries[i:])
	l.entries[i] = entry
}

// RangeBefore returns the mapping with the greatest column strictly less
// than column, or false if no entry precedes it.
func (l *MappingLine) RangeBefore(column uint32) (Mapping, bool) {
	i := l.search(column)
	if i == 0 {
		return Mapping{}, false
	}
	return l.mappingAt(i - 1), true
}

// Mappings returns this line's mappings in ascending column order.
func (l *MappingLine) Mappings() []Mapping {
	mappings := make([]Mapping, len(l.entries))
	for i := range l.entries {
		mappings[i] = l.mappingAt(i)
	}
	return mappings
}

func (l *MappingLine) mappingAt(i int) Mapping {
	entry := l.entries[i]
	m := Mapping{GeneratedLine: l.generatedLine, GeneratedColumn: entry.column}
	if entry.hasOriginal {
		loc := entry.original
		m.Original = &loc
	}
	return m
}

// OffsetColumns shifts every entry at or beyond pivot by delta. Entries
// already sitting in the destination window are squashed: the shifted
// entries win, matching what a text edit does to adjacent columns. Fails
// with ErrUnexpectedNegativeNumber when the shift would produce a
// negative column.
func (l *MappingLine) OffsetColumns(pivot uint32, delta int64) error {
	if delta == 0 {
		return nil
	}

	start := int64(pivot) + delta
	if start < 0 || start > math.MaxUint32 {
		return newError(ErrUnexpectedNegativeNumber, "column + column_offset cannot be negative")
	}

	// Detach the suffix at or beyond the pivot.
	from := l.search(pivot)
	detached := l.entries[from:]
	kept := l.entries[:from]

	// Drop entries the shifted suffix lands on. Only possible for a
	// negative delta; for a positive one the window is already empty.
	if delta < 0 {
		kept = kept[:l.searchIn(kept, uint32(start))]
	}

	for i := range detached {
		detached[i].column = uint32(int64(detached[i].column) + delta)
	}

	// kept ends below start and detached begins at or above it, so the
	// concatenation stays sorted.
	l.entries = append(kept, detached...)
	return nil
}

func (l *MappingLine) searchIn(entries []lineEntry, column uint32) int {
	return sort.Search(len(entries), func(i int) bool {
		return entries[i].column >= column
	})
}
