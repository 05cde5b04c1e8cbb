package sourcemap

// OriginalLocation points into an original source text. Source indexes the
// map's sources table; Name, when HasName is set, indexes the names table.
// All lines and columns are zero-based.
type OriginalLocation struct {
	Source         uint32
	OriginalLine   uint32
	OriginalColumn uint32
	Name           uint32
	HasName        bool
}

// NewOriginalLocation builds a location without a name.
func NewOriginalLocation(source, line, column uint32) OriginalLocation {
	return OriginalLocation{Source: source, OriginalLine: line, OriginalColumn: column}
}

// NewNamedLocation builds a location carrying a name index.
func NewNamedLocation(source, line, column, name uint32) OriginalLocation {
	return OriginalLocation{
		Source:         source,
		OriginalLine:   line,
		OriginalColumn: column,
		Name:           name,
		HasName:        true,
	}
}

// Mapping associates a generated position with an optional original
// location. A nil Original marks a boundary: a region of generated text
// with no source correspondence, still meaningful for debugger stepping.
type Mapping struct {
	GeneratedLine   uint32
	GeneratedColumn uint32
	Original        *OriginalLocation
}

// NewMapping builds a mapping. The original location is copied, so the
// caller keeps ownership of the argument.
func NewMapping(generatedLine, generatedColumn uint32, original *OriginalLocation) Mapping {
	m := Mapping{GeneratedLine: generatedLine, GeneratedColumn: generatedColumn}
	if original != nil {
		loc := *original
		m.Original = &loc
	}
	return m
}
