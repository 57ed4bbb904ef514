package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corey/notelink/internal/adapters/socket"
	"github.com/corey/notelink/internal/ports"
)

// =============================================================================
// Terminal output: plain text when color is off
// =============================================================================

func noColor(t *testing.T) {
	t.Helper()
	prev := colorEnabled
	colorEnabled = false
	t.Cleanup(func() { colorEnabled = prev })
}

func TestFormatMatches(t *testing.T) {
	noColor(t)
	out := formatMatches(&socket.MatchResult{
		Hits: []socket.TitleHit{
			{Start: 0, End: 3, Text: "baz", NoteID: "a.md", Title: "baz"},
			{Start: 0, End: 5, Text: "Bazar", NoteID: "b.md", Title: "bazar"},
		},
		Count:   2,
		Elapsed: "12µs",
	})
	assert.Equal(t, "⚡ 2 hits │ 12µs\n"+
		"  0-3  baz  → a.md\n"+
		"  0-5  Bazar  → b.md (bazar)\n", out)
}

func TestFormatLinks(t *testing.T) {
	noColor(t)
	r := &socket.LinkResult{
		Links:    []socket.TitleHit{{Start: 4, End: 11, Text: "archive", NoteID: "old.md", Title: "Archive"}},
		Count:    1,
		Rendered: "see [[Archive|archive]]",
	}
	assert.Equal(t, "see [[Archive|archive]]", formatLinks(r, true))
	assert.Equal(t, "⚡ 1 links\n  4-11  archive  → old.md (Archive)\n", formatLinks(r, false))
}

func TestFormatTitlesAndBacklinks(t *testing.T) {
	noColor(t)
	titles := formatTitles(&socket.TitlesResult{
		Notes:     []socket.NoteInfo{{ID: "a.md", Title: "Alpha"}},
		Count:     1,
		MaxLength: 5,
	})
	assert.Equal(t, "⚡ 1 titles │ longest 5\n  Alpha  a.md\n", titles)

	back := formatBacklinks(&socket.BacklinksResult{
		Target: socket.NoteInfo{ID: "a.md", Title: "Alpha"},
		Notes:  []socket.NoteInfo{{ID: "b.md", Title: "Beta"}},
		Count:  1,
	})
	assert.Equal(t, "⚡ 1 notes link to Alpha\n  Beta  b.md\n", back)
}

func TestFormatNotes(t *testing.T) {
	noColor(t)
	out := formatNotes([]*ports.Note{
		{ID: "x", Title: "", Source: "store"},
		{ID: "a.md", Title: "Alpha", Source: "dir"},
	})
	assert.Equal(t, "⚡ 2 notes\n  (untitled)  x  store\n  Alpha  a.md  dir\n", out)
}

func TestFormatHealth(t *testing.T) {
	noColor(t)
	out := formatHealth(&socket.HealthResult{
		Status:     "ok",
		NoteCount:  3,
		TitleCount: 2,
		MaxLength:  9,
		Engine:     "trie",
		Version:    4,
		NotesDir:   "/notes",
		Uptime:     "1m0s",
	})
	assert.Contains(t, out, "Status:   ok")
	assert.Contains(t, out, "Titles:   2 (longest 9)")
	assert.Contains(t, out, "Uptime:   1m0s")
}

func TestPaint(t *testing.T) {
	prev := colorEnabled
	t.Cleanup(func() { colorEnabled = prev })

	colorEnabled = true
	assert.Equal(t, colorCyan+"x"+colorReset, paint(colorCyan, "x"))
	colorEnabled = false
	assert.Equal(t, "x", paint(colorCyan, "x"))
}

func TestIsDBLockError(t *testing.T) {
	assert.False(t, isDBLockError(nil))
	assert.True(t, isDBLockError(assertErr("open store: bbolt open: timeout")))
	assert.False(t, isDBLockError(assertErr("permission denied")))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
