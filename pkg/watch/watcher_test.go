package watch

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() Logger {
	return NewLogger("error", io.Discard)
}

func TestMapWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var seen []string
	mw, err := NewMapWatcher(dir, quietLogger(), func(path string) {
		mu.Lock()
		seen = append(seen, path)
		mu.Unlock()
	}, &Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)
	defer mw.Close()

	mapPath := filepath.Join(dir, "bundle.js.map")
	require.NoError(t, os.WriteFile(mapPath, []byte(`{"version":3,"mappings":""}`), 0o644))
	// Not a map file; must be filtered out.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bundle.js"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{mapPath}, seen)
}

func TestMapWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	count := 0
	mw, err := NewMapWatcher(dir, quietLogger(), func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	}, &Options{Debounce: 200 * time.Millisecond})
	require.NoError(t, err)
	defer mw.Close()

	mapPath := filepath.Join(dir, "out.map")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(mapPath, []byte{byte('0' + i)}, 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count > 0
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count, "burst of writes should collapse into one callback")
}

func TestMapWatcherCloseIdempotent(t *testing.T) {
	mw, err := NewMapWatcher(t.TempDir(), quietLogger(), func(string) {}, nil)
	require.NoError(t, err)

	require.NoError(t, mw.Close())
	require.NoError(t, mw.Close())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, parseLogLevel("debug"))
	assert.Equal(t, LogLevelWarn, parseLogLevel("WARNING"))
	assert.Equal(t, LogLevelInfo, parseLogLevel("bogus"))
}
