package fsnotify

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// fsnotify Watcher Adapter: detect note changes, trigger title reload
// Expectation: note file changes reach the callback within <100ms; editor
// swap files and ignored directories never do.
// =============================================================================

// waitForCallback waits up to timeout for the callback channel to receive a value.
func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func isMarkdown(path string) bool {
	return strings.HasSuffix(path, ".md")
}

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := NewWatcher(isMarkdown, logr.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })
	return w
}

func TestWatcher_DetectsFileChange(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "note.md")
	require.NoError(t, os.WriteFile(testFile, []byte("# original"), 0644))

	w := newTestWatcher(t)
	changed := make(chan string, 10)
	require.NoError(t, w.Watch(dir, func(path string) {
		changed <- path
	}))

	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(testFile, []byte("# modified"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for file change")
	assert.Equal(t, testFile, path)
}

func TestWatcher_DetectsNewFileInNewDirectory(t *testing.T) {
	dir := t.TempDir()

	w := newTestWatcher(t)
	changed := make(chan string, 10)
	require.NoError(t, w.Watch(dir, func(path string) {
		changed <- path
	}))
	time.Sleep(50 * time.Millisecond)

	sub := filepath.Join(dir, "projects")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(100 * time.Millisecond)

	newFile := filepath.Join(sub, "alpha.md")
	require.NoError(t, os.WriteFile(newFile, []byte("# Alpha"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for new file")
	assert.Equal(t, newFile, path)
}

func TestWatcher_DetectsDeletedFile(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "to_delete.md")
	require.NoError(t, os.WriteFile(testFile, []byte("# delete me"), 0644))

	w := newTestWatcher(t)
	changed := make(chan string, 10)
	require.NoError(t, w.Watch(dir, func(path string) {
		changed <- path
	}))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.Remove(testFile))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for deleted file")
	assert.Equal(t, testFile, path)
}

func TestWatcher_IgnoresNonNoteFiles(t *testing.T) {
	dir := t.TempDir()

	gitDir := filepath.Join(dir, ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0755))
	trashDir := filepath.Join(dir, ".trash")
	require.NoError(t, os.MkdirAll(trashDir, 0755))

	w := newTestWatcher(t)
	changed := make(chan string, 10)
	require.NoError(t, w.Watch(dir, func(path string) {
		changed <- path
	}))
	time.Sleep(50 * time.Millisecond)

	os.WriteFile(filepath.Join(gitDir, "HEAD.md"), []byte("ref"), 0644)
	os.WriteFile(filepath.Join(trashDir, "old.md"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "image.png"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, ".note.md.swp"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "note.md~"), []byte("x"), 0644)

	_, ok := waitForCallback(changed, 500*time.Millisecond)
	assert.False(t, ok, "should not have received callback for ignored files")

	noteFile := filepath.Join(dir, "real.md")
	require.NoError(t, os.WriteFile(noteFile, []byte("# real"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for note file")
	assert.Equal(t, noteFile, path)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := newTestWatcher(t)
	err := w.Watch(filepath.Join(t.TempDir(), "nope"), func(string) {})
	assert.Error(t, err)
}

func TestWatcher_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.md")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	w := newTestWatcher(t)
	assert.Error(t, w.Watch(file, func(string) {}))
}

func TestWatcher_ReloadLatency(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "latency.md")
	require.NoError(t, os.WriteFile(testFile, []byte("# initial"), 0644))

	w := newTestWatcher(t)
	var callbackTime time.Time
	var mu sync.Mutex
	require.NoError(t, w.Watch(dir, func(path string) {
		mu.Lock()
		if callbackTime.IsZero() {
			callbackTime = time.Now()
		}
		mu.Unlock()
	}))

	time.Sleep(100 * time.Millisecond)

	writeTime := time.Now()
	require.NoError(t, os.WriteFile(testFile, []byte("# changed"), 0644))

	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	latency := callbackTime.Sub(writeTime)
	mu.Unlock()

	assert.Less(t, latency, 100*time.Millisecond, "callback latency %v exceeds 100ms", latency)
	t.Logf("Callback latency: %v", latency)
}

func TestWatcher_StopCleanup(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(nil, logr.Discard())
	require.NoError(t, err)

	callCount := 0
	var mu sync.Mutex
	require.NoError(t, w.Watch(dir, func(path string) {
		mu.Lock()
		callCount++
		mu.Unlock()
	}))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, w.Stop())

	mu.Lock()
	countAfterStop := callCount
	mu.Unlock()

	os.WriteFile(filepath.Join(dir, "after_stop.md"), []byte("# nope"), 0644)
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	countAfterWrite := callCount
	mu.Unlock()

	assert.Equal(t, countAfterStop, countAfterWrite, "callbacks fired after Stop()")

	// Double-stop should be safe
	assert.NoError(t, w.Stop())
}

func TestShouldIgnorePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/n/note.md", false},
		{"/n/.git/note.md", true},
		{"/n/.#note.md", true},
		{"/n/note.md.swp", true},
		{"/n/note.md~", true},
		{"/n/sub/node_modules/x.md", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shouldIgnorePath(tt.path), tt.path)
	}
}

func TestWatcher_BurstCoalescesToOneCallback(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "burst.md")

	w := newTestWatcher(t)
	changed := make(chan string, 10)
	require.NoError(t, w.Watch(dir, func(path string) {
		changed <- path
	}))
	time.Sleep(50 * time.Millisecond)

	// create + several writes, as an editor save does
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(testFile, []byte(strings.Repeat("x", i+1)), 0644))
	}

	_, ok := waitForCallback(changed, 2*time.Second)
	require.True(t, ok)
	_, again := waitForCallback(changed, 300*time.Millisecond)
	assert.False(t, again, "burst should produce a single callback")

	data, err := os.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, "xxxxx", string(data))
}

// collectPaths drains ch until want paths have arrived or timeout passes.
func collectPaths(ch <-chan string, want int, timeout time.Duration) map[string]bool {
	got := make(map[string]bool)
	deadline := time.After(timeout)
	for len(got) < want {
		select {
		case p := <-ch:
			got[p] = true
		case <-deadline:
			return got
		}
	}
	return got
}

func TestWatcher_DirectoryMovedIn(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(t.TempDir(), "proj")
	require.NoError(t, os.MkdirAll(filepath.Join(outside, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "moved.md"), []byte("# Moved Note"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "sub", "deep.md"), []byte("# Deep"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "sub", "pic.png"), []byte("x"), 0644))

	w := newTestWatcher(t)
	changed := make(chan string, 10)
	require.NoError(t, w.Watch(dir, func(path string) {
		changed <- path
	}))
	time.Sleep(50 * time.Millisecond)

	moved := filepath.Join(dir, "proj")
	require.NoError(t, os.Rename(outside, moved))

	got := collectPaths(changed, 2, 2*time.Second)
	assert.Equal(t, map[string]bool{
		filepath.Join(moved, "moved.md"):       true,
		filepath.Join(moved, "sub", "deep.md"): true,
	}, got)

	// The moved-in subdirectory is watched too.
	deep := filepath.Join(moved, "sub", "deep.md")
	require.NoError(t, os.WriteFile(deep, []byte("# Deeper"), 0644))
	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for edit inside moved-in directory")
	assert.Equal(t, deep, path)
}

func TestWatcher_DirectoryMovedOut(t *testing.T) {
	dir := t.TempDir()
	proj := filepath.Join(dir, "p3")
	require.NoError(t, os.MkdirAll(proj, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(proj, "gone.md"), []byte("# Gone Soon"), 0644))

	w := newTestWatcher(t)
	changed := make(chan string, 10)
	require.NoError(t, w.Watch(dir, func(path string) {
		changed <- path
	}))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.Rename(proj, filepath.Join(t.TempDir(), "p3")))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case p := <-changed:
			if p == proj {
				return
			}
		case <-deadline:
			t.Fatal("expected callback for the directory that left")
		}
	}
}
