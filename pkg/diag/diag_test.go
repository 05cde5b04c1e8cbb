package diag

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapforge/sourcemap/pkg/sourcemap"
)

func TestRenderPointsAtOffendingByte(t *testing.T) {
	input := []byte("AAAA;AACA;*AAA")
	sm := sourcemap.New("")
	err := sm.AddVLQMappings(input, []string{"a.js"}, nil)
	require.Error(t, err)

	out := Render(input, err)
	assert.Contains(t, out, "invalid VLQ byte")
	assert.Contains(t, out, "offset 10")

	// The caret line must point at the '*'.
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	windowLine, caretLine := lines[2], lines[3]
	caretCol := strings.Index(caretLine, "^")
	require.GreaterOrEqual(t, caretCol, 0)
	require.Less(t, caretCol, len(windowLine))
	assert.Equal(t, byte('*'), windowLine[caretCol])
}

func TestRenderTrimsLongInput(t *testing.T) {
	input := []byte(strings.Repeat("AAAA,", 40) + "*" + strings.Repeat(",AAAA", 40))
	sm := sourcemap.New("")
	err := sm.AddVLQMappings(input, []string{"a.js"}, nil)
	require.Error(t, err)

	out := Render(input, err)
	assert.Contains(t, out, "...")
	assert.Less(t, len(out), len(input))
}

func TestRenderPassesThroughForeignErrors(t *testing.T) {
	err := errors.New("disk on fire")
	assert.Equal(t, "disk on fire", Render([]byte("AAAA"), err))
}

func TestRenderWithoutOffset(t *testing.T) {
	sm := sourcemap.New("")
	sm.AddMapping(sourcemap.NewMapping(0, 3, nil))
	err := sm.OffsetColumns(0, 2, -10)
	require.Error(t, err)

	out := Render(nil, err)
	assert.Contains(t, out, "negative")
}
