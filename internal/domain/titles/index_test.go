package titles

import (
	"sync"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/notelink/internal/ports"
)

// =============================================================================
// Title index: rebuild-on-change title set with lock-free lookups
// Expectation: any note added, renamed or removed is reflected in the very
// next FindMatches call; the automaton itself is never mutated in place.
// =============================================================================

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	return New(Options{Logger: testr.NewWithOptions(t, testr.Options{Verbosity: 1})})
}

func ref(id, title string) ports.NoteRef {
	return ports.NoteRef{ID: id, Title: title}
}

func TestIndex_EmptyFindsNothing(t *testing.T) {
	x := newTestIndex(t)
	assert.Empty(t, x.FindMatches("anything at all"))
	assert.Equal(t, 0, x.Len())
	assert.Equal(t, 0, x.MaxLength())
	assert.Equal(t, uint64(1), x.Version())
}

func TestIndex_LoadAndFind(t *testing.T) {
	x := newTestIndex(t)
	x.Load([]ports.NoteRef{
		ref("1", "Start Here"),
		ref("2", "Groceries"),
		ref("3", "Meeting Notes"),
	})

	hits := x.FindMatches("Read start here before the meeting notes.")
	require.Len(t, hits, 2)
	assert.Equal(t, ports.TitleHit{Start: 5, End: 15, Text: "start here", Note: ref("1", "Start Here")}, hits[0])
	assert.Equal(t, "3", hits[1].Note.ID)
	assert.Equal(t, 3, x.Len())
	assert.Equal(t, len("Meeting Notes"), x.MaxLength())
}

func TestIndex_PutAddsTitle(t *testing.T) {
	x := newTestIndex(t)
	x.Load([]ports.NoteRef{ref("1", "alpha")})
	v := x.Version()

	x.Put(ref("2", "beta"))
	assert.Greater(t, x.Version(), v)
	assert.Len(t, x.FindMatches("alpha beta"), 2)
}

func TestIndex_PutUnchangedSkipsRebuild(t *testing.T) {
	x := newTestIndex(t)
	x.Put(ref("1", "alpha"))
	v := x.Version()
	x.Put(ref("1", "alpha"))
	assert.Equal(t, v, x.Version())
}

func TestIndex_RenameReplacesTitle(t *testing.T) {
	x := newTestIndex(t)
	x.Load([]ports.NoteRef{ref("1", "old name")})

	require.True(t, x.Rename("1", "new name"))
	assert.Empty(t, x.FindMatches("the old name"))
	hits := x.FindMatches("the new name")
	require.Len(t, hits, 1)
	assert.Equal(t, "new name", hits[0].Note.Title)

	assert.False(t, x.Rename("missing", "whatever"))
}

func TestIndex_RemoveDropsTitle(t *testing.T) {
	x := newTestIndex(t)
	x.Load([]ports.NoteRef{ref("1", "alpha"), ref("2", "beta")})

	require.True(t, x.Remove("1"))
	hits := x.FindMatches("alpha beta")
	require.Len(t, hits, 1)
	assert.Equal(t, "beta", hits[0].Text)
	assert.False(t, x.Remove("1"))
}

func TestIndex_DuplicateTitlesGreatestIDWins(t *testing.T) {
	x := newTestIndex(t)
	x.Load([]ports.NoteRef{ref("b", "Todo"), ref("a", "todo"), ref("c", "TODO")})

	hits := x.FindMatches("my todo list")
	require.Len(t, hits, 1)
	assert.Equal(t, "c", hits[0].Note.ID)

	got, ok := x.Lookup("ToDo")
	require.True(t, ok)
	assert.Equal(t, "c", got.ID)
	assert.Equal(t, 1, x.Len())
}

func TestIndex_BlankTitlesSkipped(t *testing.T) {
	x := newTestIndex(t)
	x.Load([]ports.NoteRef{ref("1", ""), ref("2", "   "), ref("3", "real")})

	assert.Equal(t, 1, x.Len())
	assert.Len(t, x.Notes(), 3)
	assert.Len(t, x.FindMatches("a real note   here"), 1)
}

func TestIndex_CaseSensitiveLookup(t *testing.T) {
	x := New(Options{CaseSensitive: true})
	x.Load([]ports.NoteRef{ref("1", "Go")})

	_, ok := x.Lookup("go")
	assert.False(t, ok)
	_, ok = x.Lookup("Go")
	assert.True(t, ok)
	assert.Len(t, x.FindMatches("go Go"), 1)
}

func TestIndex_NotesSortedByTitle(t *testing.T) {
	x := newTestIndex(t)
	x.Load([]ports.NoteRef{ref("3", "zeta"), ref("1", "alpha"), ref("2", "alpha")})

	assert.Equal(t, []ports.NoteRef{ref("1", "alpha"), ref("2", "alpha"), ref("3", "zeta")}, x.Notes())
}

func TestIndex_CustomCompiler(t *testing.T) {
	var gotRefs []ports.NoteRef
	var gotCase bool
	x := New(Options{
		CaseSensitive: true,
		Compiler: func(refs []ports.NoteRef, caseSensitive bool) ports.TitleMatcher {
			gotRefs = refs
			gotCase = caseSensitive
			return Compile(refs, caseSensitive)
		},
	})
	x.Load([]ports.NoteRef{ref("2", "two"), ref("1", "one")})

	assert.Equal(t, []ports.NoteRef{ref("1", "one"), ref("2", "two")}, gotRefs)
	assert.True(t, gotCase)
}

func TestIndex_ConcurrentReadsDuringRebuilds(t *testing.T) {
	x := New(Options{})
	x.Load([]ports.NoteRef{ref("base", "stable")})

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				hits := x.FindMatches("a stable title")
				if assert.NotEmpty(t, hits) {
					assert.Equal(t, "stable", hits[0].Text)
				}
			}
		}()
	}

	for i := 0; i < 100; i++ {
		x.Put(ref("churn", string(rune('a'+i%26))+"-note"))
	}
	close(stop)
	wg.Wait()
}
