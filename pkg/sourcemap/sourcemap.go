// Package sourcemap implements an in-memory source map engine: an ordered
// mapping index relating generated positions back to original sources, the
// Source Map v3 VLQ mappings codec, and the composition operations build
// pipelines need (line/column offsetting, map appending, identity maps,
// binary handoff buffers).
//
// All line and column numbers are zero-based. Any 1-based presentation is
// the caller's concern.
package sourcemap

import (
	"math"
	"sort"
	"strings"
)

// SourceMap owns the sources, sourcesContent and names tables and the
// ordered line index. It is not safe for concurrent use; callers that
// share a map across goroutines must serialize access externally.
type SourceMap struct {
	projectRoot    string
	sources        []string
	sourcesContent map[uint32]string
	names          []string
	lines          []*MappingLine // ascending generated line order
}

// New creates an empty source map. The project root is recorded verbatim
// and never interpreted by the engine.
func New(projectRoot string) *SourceMap {
	return &SourceMap{
		projectRoot:    projectRoot,
		sourcesContent: make(map[uint32]string),
	}
}

// ProjectRoot returns the project root the map was created with.
func (sm *SourceMap) ProjectRoot() string {
	return sm.projectRoot
}

// Sources returns the source paths table. The returned slice is owned by
// the map and must not be mutated.
func (sm *SourceMap) Sources() []string {
	return sm.sources
}

// Names returns the names table. The returned slice is owned by the map
// and must not be mutated.
func (sm *SourceMap) Names() []string {
	return sm.names
}

// AddSource returns the index of source, appending it if unseen. Indexes
// are stable: once assigned they never change meaning.
func (sm *SourceMap) AddSource(source string) uint32 {
	for i, s := range sm.sources {
		if s == source {
			return uint32(i)
		}
	}
	sm.sources = append(sm.sources, source)
	return uint32(len(sm.sources) - 1)
}

// AddSources adds each source in order and returns their indexes.
func (sm *SourceMap) AddSources(sources []string) []uint32 {
	indexes := make([]uint32, len(sources))
	for i, s := range sources {
		indexes[i] = sm.AddSource(s)
	}
	return indexes
}

// GetSource returns the source path at index.
func (sm *SourceMap) GetSource(index uint32) (string, error) {
	if index >= uint32(len(sm.sources)) {
		return "", newError(ErrSourceOutOfRange, "")
	}
	return sm.sources[index], nil
}

// GetSourceIndex returns the index of source, or false if it is unknown.
func (sm *SourceMap) GetSourceIndex(source string) (uint32, bool) {
	for i, s := range sm.sources {
		if s == source {
			return uint32(i), true
		}
	}
	return 0, false
}

// AddName returns the index of name, appending it if unseen.
func (sm *SourceMap) AddName(name string) uint32 {
	for i, n := range sm.names {
		if n == name {
			return uint32(i)
		}
	}
	sm.names = append(sm.names, name)
	return uint32(len(sm.names) - 1)
}

// AddNames adds each name in order and returns their indexes.
func (sm *SourceMap) AddNames(names []string) []uint32 {
	indexes := make([]uint32, len(names))
	for i, n := range names {
		indexes[i] = sm.AddName(n)
	}
	return indexes
}

// GetName returns the name at index.
func (sm *SourceMap) GetName(index uint32) (string, error) {
	if index >= uint32(len(sm.names)) {
		return "", newError(ErrNameOutOfRange, "")
	}
	return sm.names[index], nil
}

// GetNameIndex returns the index of name, or false if it is unknown.
func (sm *SourceMap) GetNameIndex(name string) (uint32, bool) {
	for i, n := range sm.names {
		if n == name {
			return uint32(i), true
		}
	}
	return 0, false
}

// SetSourceContent installs the full text for the source at index.
func (sm *SourceMap) SetSourceContent(index uint32, content string) error {
	if index >= uint32(len(sm.sources)) {
		return newError(ErrSourceOutOfRange, "")
	}
	sm.sourcesContent[index] = content
	return nil
}

// GetSourceContent returns the stored text for the source at index, or an
// empty string if no content was installed.
func (sm *SourceMap) GetSourceContent(index uint32) (string, error) {
	if index >= uint32(len(sm.sources)) {
		return "", newError(ErrSourceOutOfRange, "")
	}
	return sm.sourcesContent[index], nil
}

// SourcesContent returns the sparse source index → content table. The
// returned map is owned by the source map and must not be mutated.
func (sm *SourceMap) SourcesContent() map[uint32]string {
	return sm.sourcesContent
}

// searchLine returns the index of the first line with number >= line.
func (sm *SourceMap) searchLine(line uint32) int {
	return sort.Search(len(sm.lines), func(i int) bool {
		return sm.lines[i].generatedLine >= line
	})
}

// lineFor returns the MappingLine for line, creating it when create is set.
func (sm *SourceMap) lineFor(line uint32, create bool) *MappingLine {
	i := sm.searchLine(line)
	if i < len(sm.lines) && sm.lines[i].generatedLine == line {
		return sm.lines[i]
	}
	if !create {
		return nil
	}

	ml := NewMappingLine(line)
	if i == len(sm.lines) {
		sm.lines = append(sm.lines, ml)
		return ml
	}
	sm.lines = append(sm.lines, nil)
	copy(sm.lines[i+1:], sm.lines[i:])
	sm.lines[i] = ml
	return ml
}

// AddMapping inserts one mapping, overwriting any mapping already present
// at the same generated position.
func (sm *SourceMap) AddMapping(m Mapping) {
	sm.lineFor(m.GeneratedLine, true).Add(m.GeneratedColumn, m.Original)
}

// AddIndexedMappings ingests mappings from a flat integer stream, six
// values per mapping: generated line, generated column, original line,
// original column, source index, name index. A -1 in any original slot
// means the mapping is a boundary; -1 in the name slot means no name.
// A trailing partial group is ignored.
func (sm *SourceMap) AddIndexedMappings(values []int32) {
	for i := 0; i+6 <= len(values); i += 6 {
		generatedLine := uint32(values[i])
		generatedColumn := uint32(values[i+1])
		originalLine := values[i+2]
		originalColumn := values[i+3]
		source := values[i+4]
		name := values[i+5]

		var original *OriginalLocation
		if originalLine > -1 && originalColumn > -1 && source > -1 {
			loc := NewOriginalLocation(uint32(source), uint32(originalLine), uint32(originalColumn))
			if name > -1 {
				loc.Name = uint32(name)
				loc.HasName = true
			}
			original = &loc
		}

		sm.AddMapping(Mapping{
			GeneratedLine:   generatedLine,
			GeneratedColumn: generatedColumn,
			Original:        original,
		})
	}
}

// FindClosestMapping returns the mapping on generatedLine whose column is
// the greatest strictly below generatedColumn. The search never falls
// back to earlier lines: a lookup on an unmapped line finds nothing.
func (sm *SourceMap) FindClosestMapping(generatedLine, generatedColumn uint32) (Mapping, bool) {
	line := sm.lineFor(generatedLine, false)
	if line == nil {
		return Mapping{}, false
	}
	return line.RangeBefore(generatedColumn)
}

// Mappings returns every mapping in ascending (line, column) order.
func (sm *SourceMap) Mappings() []Mapping {
	var mappings []Mapping
	for _, line := range sm.lines {
		mappings = append(mappings, line.Mappings()...)
	}
	return mappings
}

// MappingLines returns the populated lines in ascending line order. The
// returned slice is owned by the map and must not be mutated.
func (sm *SourceMap) MappingLines() []*MappingLine {
	return sm.lines
}

// OffsetColumns shifts the mappings of generatedLine at or beyond
// generatedColumn by offset columns. A line with no mappings succeeds
// silently.
func (sm *SourceMap) OffsetColumns(generatedLine, generatedColumn uint32, offset int64) error {
	i := sm.searchLine(generatedLine)
	if i >= len(sm.lines) || sm.lines[i].generatedLine != generatedLine {
		return nil
	}

	if err := sm.lines[i].OffsetColumns(generatedColumn, offset); err != nil {
		return err
	}

	// A shift that squashed every entry leaves an empty line behind.
	if sm.lines[i].Len() == 0 {
		sm.lines = append(sm.lines[:i], sm.lines[i+1:]...)
	}
	return nil
}

// OffsetLines shifts every line at or beyond generatedLine by offset.
// A shifted line landing on an existing one replaces it; offsets are
// typically applied when a region of generated output is rewritten, and
// the shifted content wins. Fails with ErrUnexpectedNegativeNumber when
// the shift would move the first affected line below zero.
func (sm *SourceMap) OffsetLines(generatedLine uint32, offset int64) error {
	if offset == 0 {
		return nil
	}

	start := int64(generatedLine) + offset
	if start < 0 || start > math.MaxUint32 {
		return newError(ErrUnexpectedNegativeNumber, "line + line_offset cannot be negative")
	}

	from := sm.searchLine(generatedLine)
	detached := sm.lines[from:]
	if n := len(detached); n > 0 && int64(detached[n-1].generatedLine)+offset > math.MaxUint32 {
		return newError(ErrUnexpectedNegativeNumber, "line + line_offset overflows")
	}
	kept := append([]*MappingLine(nil), sm.lines[:from]...)

	for _, line := range detached {
		line.generatedLine = uint32(int64(line.generatedLine) + offset)
		// Shifted lines overwrite whatever sits at their destination.
		if n := len(kept); n > 0 && kept[n-1].generatedLine >= line.generatedLine {
			i := sort.Search(n, func(j int) bool {
				return kept[j].generatedLine >= line.generatedLine
			})
			if kept[i].generatedLine == line.generatedLine {
				kept[i] = line
				continue
			}
			kept = append(kept[:i], append([]*MappingLine{line}, kept[i:]...)...)
			continue
		}
		kept = append(kept, line)
	}

	sm.lines = kept
	return nil
}

// AddEmptyMap registers a source that was emitted verbatim: every line of
// content gets an identity mapping at column zero, starting at generated
// line lineOffset. Downstream tooling then still resolves positions inside
// untransformed files.
func (sm *SourceMap) AddEmptyMap(source, content string, lineOffset int64) error {
	if lineOffset < 0 || lineOffset > math.MaxUint32 {
		return newError(ErrUnexpectedNegativeNumber, "line offset cannot be negative")
	}

	sourceIndex := sm.AddSource(source)
	if err := sm.SetSourceContent(sourceIndex, content); err != nil {
		return err
	}

	lineCount := strings.Count(content, "\n") + 1
	for i := 0; i < lineCount; i++ {
		loc := NewOriginalLocation(sourceIndex, uint32(i), 0)
		sm.AddMapping(Mapping{
			GeneratedLine: uint32(lineOffset) + uint32(i),
			Original:      &loc,
		})
	}
	return nil
}

// AppendSourceMap rewrites this map through upstream: where this map
// relates generated to intermediate positions and upstream relates
// intermediate to original ones, the result relates generated positions
// directly to the originals. Each mapping with an original location is
// resolved against upstream via FindClosestMapping; upstream sources and
// names are dedup-merged into this map's tables. A mapping keeps its
// current original location when upstream has no mapping on the same
// intermediate line strictly before its column, or when the closest one is
// a boundary. lineOffset and columnOffset shift every generated position
// before reinsertion.
func (sm *SourceMap) AppendSourceMap(upstream *SourceMap, lineOffset, columnOffset int64) error {
	remapped := make([]Mapping, 0, len(sm.lines))

	for _, line := range sm.lines {
		for _, m := range line.Mappings() {
			generatedLine := int64(m.GeneratedLine) + lineOffset
			generatedColumn := int64(m.GeneratedColumn) + columnOffset
			if generatedLine < 0 || generatedColumn < 0 ||
				generatedLine > math.MaxUint32 || generatedColumn > math.MaxUint32 {
				return newError(ErrUnexpectedNegativeNumber, "offset generated position cannot be negative")
			}

			original := m.Original
			if original != nil {
				if u, ok := upstream.FindClosestMapping(original.OriginalLine, original.OriginalColumn); ok && u.Original != nil {
					composed := *u.Original

					upstreamSource, err := upstream.GetSource(composed.Source)
					if err != nil {
						return err
					}
					composed.Source = sm.AddSource(upstreamSource)
					if content, err := upstream.GetSourceContent(u.Original.Source); err == nil && content != "" {
						if _, exists := sm.sourcesContent[composed.Source]; !exists {
							sm.sourcesContent[composed.Source] = content
						}
					}

					if composed.HasName {
						upstreamName, err := upstream.GetName(composed.Name)
						if err != nil {
							return err
						}
						composed.Name = sm.AddName(upstreamName)
					}

					original = &composed
				}
			}

			remapped = append(remapped, Mapping{
				GeneratedLine:   uint32(generatedLine),
				GeneratedColumn: uint32(generatedColumn),
				Original:        original,
			})
		}
	}

	sm.lines = nil
	for _, m := range remapped {
		sm.AddMapping(m)
	}
	return nil
}
