package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appendFixture returns a downstream map over an intermediate file and the
// upstream map that produced that intermediate from the real source.
func appendFixture(t *testing.T) (downstream, upstream *SourceMap) {
	t.Helper()

	downstream = New("")
	downstream.AddSource("mid.js")
	downstream.AddName("foo")
	named := NewNamedLocation(0, 0, 4, 0)
	downstream.AddMapping(NewMapping(0, 0, &named))
	downstream.AddMapping(NewMapping(0, 10, nil))
	plain := NewOriginalLocation(0, 2, 0)
	downstream.AddMapping(NewMapping(1, 5, &plain))

	upstream = New("")
	upstream.AddSource("orig.js")
	upstream.AddName("bar")
	require.NoError(t, upstream.SetSourceContent(0, "original text"))
	loc := NewNamedLocation(0, 10, 1, 0)
	upstream.AddMapping(NewMapping(0, 2, &loc))
	return downstream, upstream
}

func TestAppendSourceMapComposes(t *testing.T) {
	downstream, upstream := appendFixture(t)

	require.NoError(t, downstream.AppendSourceMap(upstream, 0, 0))

	// Upstream tables dedup-merged into the downstream map.
	assert.Equal(t, []string{"mid.js", "orig.js"}, downstream.Sources())
	assert.Equal(t, []string{"foo", "bar"}, downstream.Names())

	// (0,0) pointed at mid.js 0:4; upstream's closest mapping for 0:4 is
	// its 0:2 entry, so the composed mapping lands in orig.js 10:1.
	m, ok := downstream.FindClosestMapping(0, 1)
	require.True(t, ok)
	require.NotNil(t, m.Original)
	assert.Equal(t, uint32(1), m.Original.Source)
	assert.Equal(t, uint32(10), m.Original.OriginalLine)
	assert.Equal(t, uint32(1), m.Original.OriginalColumn)
	require.True(t, m.Original.HasName)
	assert.Equal(t, uint32(1), m.Original.Name)

	// Upstream content travels with the composed source.
	index, ok := downstream.GetSourceIndex("orig.js")
	require.True(t, ok)
	content, err := downstream.GetSourceContent(index)
	require.NoError(t, err)
	assert.Equal(t, "original text", content)

	// The boundary mapping is preserved untouched.
	m, ok = downstream.FindClosestMapping(0, 11)
	require.True(t, ok)
	assert.Equal(t, uint32(10), m.GeneratedColumn)
	assert.Nil(t, m.Original)

	// (1,5) pointed at mid.js 2:0; upstream has no mapping on line 2, so
	// the mapping keeps its intermediate original.
	m, ok = downstream.FindClosestMapping(1, 6)
	require.True(t, ok)
	require.NotNil(t, m.Original)
	assert.Equal(t, uint32(0), m.Original.Source)
	assert.Equal(t, uint32(2), m.Original.OriginalLine)
}

func TestAppendSourceMapAppliesOffsets(t *testing.T) {
	downstream, upstream := appendFixture(t)

	require.NoError(t, downstream.AppendSourceMap(upstream, 3, 2))

	lines := mappedLines(downstream)
	assert.Equal(t, []uint32{3, 4}, lines)

	m, ok := downstream.FindClosestMapping(3, 3)
	require.True(t, ok)
	assert.Equal(t, uint32(2), m.GeneratedColumn)

	m, ok = downstream.FindClosestMapping(4, 8)
	require.True(t, ok)
	assert.Equal(t, uint32(7), m.GeneratedColumn)
}

func TestAppendSourceMapNegativeOffset(t *testing.T) {
	downstream, upstream := appendFixture(t)

	err := downstream.AppendSourceMap(upstream, -1, 0)
	require.Error(t, err)
	assert.True(t, IsType(err, ErrUnexpectedNegativeNumber))
}
