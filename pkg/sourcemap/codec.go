package sourcemap

import (
	"bytes"
	"io"
)

// WriteVLQ serializes the mapping index as a Source Map v3 mappings
// string. Lines are separated by ';' (one per skipped line, so empty
// lines cost a single byte), mappings on a line by ','. Every field is a
// delta against a running counter; only the generated column counter
// resets at the start of each line. No trailing ';' is emitted after the
// last mapped line.
func (sm *SourceMap) WriteVLQ(out io.Writer) error {
	var lastGeneratedLine uint32
	var previousSource int64
	var previousOriginalLine int64
	var previousOriginalColumn int64
	var previousName int64

	for _, line := range sm.lines {
		var previousGeneratedColumn int64

		if line.generatedLine > 0 {
			separators := bytes.Repeat([]byte{';'}, int(line.generatedLine-lastGeneratedLine))
			if _, err := out.Write(separators); err != nil {
				return wrapIOError(err)
			}
		}
		lastGeneratedLine = line.generatedLine

		for i, entry := range line.entries {
			if i > 0 {
				if _, err := out.Write([]byte{','}); err != nil {
					return wrapIOError(err)
				}
			}

			if err := encodeVLQ(out, int64(entry.column)-previousGeneratedColumn); err != nil {
				return err
			}
			previousGeneratedColumn = int64(entry.column)

			// Boundary mappings carry only the column field.
			if !entry.hasOriginal {
				continue
			}

			original := entry.original
			if err := encodeVLQ(out, int64(original.Source)-previousSource); err != nil {
				return err
			}
			previousSource = int64(original.Source)

			if err := encodeVLQ(out, int64(original.OriginalLine)-previousOriginalLine); err != nil {
				return err
			}
			previousOriginalLine = int64(original.OriginalLine)

			if err := encodeVLQ(out, int64(original.OriginalColumn)-previousOriginalColumn); err != nil {
				return err
			}
			previousOriginalColumn = int64(original.OriginalColumn)

			if original.HasName {
				if err := encodeVLQ(out, int64(original.Name)-previousName); err != nil {
					return err
				}
				previousName = int64(original.Name)
			}
		}
	}

	return nil
}

// AddVLQMappings parses a raw mappings string and merges its mappings into
// the map. The sources and names tables the wire indices refer to are
// dedup-merged into this map's tables first; wire indices are then
// translated before storage, so externally authored maps concatenate
// without collisions.
//
// Parsing is not atomic: a failure mid-way leaves the mappings decoded so
// far in place. Callers that need all-or-nothing behavior should parse
// into a scratch map and swap.
func (sm *SourceMap) AddVLQMappings(mappings []byte, sources, names []string) error {
	var generatedLine int64
	var generatedColumn int64
	var originalLine int64
	var originalColumn int64
	var source int64
	var name int64

	sourceIndexes := sm.AddSources(sources)
	nameIndexes := sm.AddNames(names)

	r := &vlqReader{data: mappings}
	for !r.eof() {
		switch r.peek() {
		case ';':
			generatedLine++
			generatedColumn = 0
			r.next()
		case ',':
			r.next()
		default:
			// The generated column is the one field every segment has.
			if err := r.readRelative(&generatedColumn); err != nil {
				return err
			}

			var original *OriginalLocation
			if !r.atSeparator() {
				fieldOffset := r.pos
				if err := r.readRelative(&source); err != nil {
					return err
				}
				if err := r.readRelative(&originalLine); err != nil {
					return err
				}
				if err := r.readRelative(&originalColumn); err != nil {
					return err
				}

				if source >= int64(len(sourceIndexes)) {
					return newErrorAt(ErrSourceOutOfRange, fieldOffset)
				}
				loc := NewOriginalLocation(
					sourceIndexes[source],
					uint32(originalLine),
					uint32(originalColumn),
				)

				if !r.atSeparator() {
					nameOffset := r.pos
					if err := r.readRelative(&name); err != nil {
						return err
					}
					if name >= int64(len(nameIndexes)) {
						return newErrorAt(ErrNameOutOfRange, nameOffset)
					}
					loc.Name = nameIndexes[name]
					loc.HasName = true
				}

				original = &loc
			}

			sm.AddMapping(Mapping{
				GeneratedLine:   uint32(generatedLine),
				GeneratedColumn: uint32(generatedColumn),
				Original:        original,
			})
		}
	}

	return nil
}
