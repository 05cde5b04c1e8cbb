package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddVLQMappingsRoundTrip(t *testing.T) {
	sm := New("")
	err := sm.AddVLQMappings([]byte(canonicalMappings), []string{"a.js", "b.js"}, []string{"test"})
	require.NoError(t, err)

	assert.Equal(t, canonicalMappings, writeVLQString(t, sm))
	assert.Equal(t, []string{"a.js", "b.js"}, sm.Sources())
	assert.Equal(t, []string{"test"}, sm.Names())
}

func TestAddVLQMappingsBoundaryRoundTrip(t *testing.T) {
	// One named mapping, one unnamed, two boundaries, and an empty line
	// between them.
	const mappings = "AAAAA,E;;K,IACC"

	sm := New("")
	require.NoError(t, sm.AddVLQMappings([]byte(mappings), []string{"a.js"}, []string{"x"}))

	// Re-encoding drops nothing: the boundaries survive byte for byte.
	assert.Equal(t, mappings, writeVLQString(t, sm))

	parsed := sm.Mappings()
	require.Len(t, parsed, 4)
	assert.Nil(t, parsed[1].Original)
	require.NotNil(t, parsed[0].Original)
	assert.True(t, parsed[0].Original.HasName)
	require.NotNil(t, parsed[3].Original)
	assert.False(t, parsed[3].Original.HasName)
}

func TestAddVLQMappingsMergesForeignTables(t *testing.T) {
	sm := New("")
	sm.AddSources([]string{"app.js", "a.js"})
	sm.AddName("existing")

	require.NoError(t, sm.AddVLQMappings([]byte(canonicalMappings), []string{"a.js", "b.js"}, []string{"test"}))

	// "a.js" deduplicated into slot 1; "b.js" and "test" appended.
	assert.Equal(t, []string{"app.js", "a.js", "b.js"}, sm.Sources())
	assert.Equal(t, []string{"existing", "test"}, sm.Names())

	m, ok := sm.FindClosestMapping(12, 8)
	require.True(t, ok)
	require.NotNil(t, m.Original)
	assert.Equal(t, uint32(1), m.Original.Source)
	assert.Equal(t, uint32(1), m.Original.Name)

	m, ok = sm.FindClosestMapping(15, 10)
	require.True(t, ok)
	require.NotNil(t, m.Original)
	assert.Equal(t, uint32(2), m.Original.Source)
}

func TestAddVLQMappingsSourceOutOfRange(t *testing.T) {
	// Wire source index 3 against a two-entry sources table.
	sm := New("")
	err := sm.AddVLQMappings([]byte("AGAA"), []string{"a.js", "b.js"}, nil)
	require.Error(t, err)
	assert.True(t, IsType(err, ErrSourceOutOfRange))
}

func TestAddVLQMappingsNameOutOfRange(t *testing.T) {
	sm := New("")
	err := sm.AddVLQMappings([]byte("AAAAC"), []string{"a.js"}, []string{"only"})
	require.Error(t, err)
	assert.True(t, IsType(err, ErrNameOutOfRange))
}

func TestAddVLQMappingsInvalidByte(t *testing.T) {
	sm := New("")
	err := sm.AddVLQMappings([]byte("AA%A"), []string{"a.js"}, nil)
	require.Error(t, err)
	assert.True(t, IsType(err, ErrVlqInvalid))

	var smErr *Error
	require.ErrorAs(t, err, &smErr)
	assert.Equal(t, 2, smErr.Offset)
}

func TestAddVLQMappingsTruncated(t *testing.T) {
	sm := New("")
	err := sm.AddVLQMappings([]byte("AAg"), []string{"a.js"}, nil)
	require.Error(t, err)
	assert.True(t, IsType(err, ErrVlqUnexpectedEOF))
}

func TestAddVLQMappingsNegativeCounter(t *testing.T) {
	// A column delta of -1 with the counter at 0.
	sm := New("")
	err := sm.AddVLQMappings([]byte("D"), nil, nil)
	require.Error(t, err)
	assert.True(t, IsType(err, ErrUnexpectedNegativeNumber))
}

func TestAddVLQMappingsPartialStateOnFailure(t *testing.T) {
	// The first segment parses, the second is invalid; the first stays.
	sm := New("")
	err := sm.AddVLQMappings([]byte("AAAA;*"), []string{"a.js"}, nil)
	require.Error(t, err)
	assert.Len(t, sm.Mappings(), 1)
}

func TestAddVLQMappingsEmptyInput(t *testing.T) {
	sm := New("")
	require.NoError(t, sm.AddVLQMappings(nil, nil, nil))
	assert.Empty(t, sm.Mappings())

	// Separators alone carry no mappings.
	require.NoError(t, sm.AddVLQMappings([]byte(";;;,,;"), nil, nil))
	assert.Empty(t, sm.Mappings())
}

func TestWriteVLQEmptyMap(t *testing.T) {
	assert.Equal(t, "", writeVLQString(t, New("")))
}

func TestWriteVLQSinkFailure(t *testing.T) {
	err := canonicalMap(t).WriteVLQ(failingWriter{})
	require.Error(t, err)
	assert.True(t, IsType(err, ErrIO))
}
