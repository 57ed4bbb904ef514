// Package titles keeps the set of linkable note titles and the compiled
// matcher over them. Every change to the title set rebuilds the matcher
// from scratch and publishes it atomically, so FindMatches never blocks and
// never sees a partially built automaton.
package titles

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/go-logr/logr"

	"github.com/corey/notelink/internal/ports"
)

// Options configures an Index.
type Options struct {
	CaseSensitive bool
	Compiler      ports.MatcherCompiler // nil = native trie (Compile)
	Logger        logr.Logger
}

// snapshot is one published generation of the title set.
type snapshot struct {
	matcher ports.TitleMatcher
	byTitle map[string]ports.NoteRef // folded title -> winning ref
	version uint64
}

// Index maps note titles to notes. Mutations are serialized; reads are
// lock-free against the latest published snapshot.
type Index struct {
	mu      sync.Mutex
	notes   map[string]ports.NoteRef // id -> ref
	opts    Options
	current atomic.Pointer[snapshot]
	log     logr.Logger
}

// New creates an empty index. The empty matcher reports no hits.
func New(opts Options) *Index {
	if opts.Compiler == nil {
		opts.Compiler = Compile
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	x := &Index{
		notes: make(map[string]ports.NoteRef),
		opts:  opts,
		log:   log.WithName("titles"),
	}
	x.rebuildLocked()
	return x
}

// Load replaces the whole title set.
func (x *Index) Load(refs []ports.NoteRef) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.notes = make(map[string]ports.NoteRef, len(refs))
	for _, r := range refs {
		x.notes[r.ID] = r
	}
	x.rebuildLocked()
}

// Put adds a note or updates its title.
func (x *Index) Put(ref ports.NoteRef) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if old, ok := x.notes[ref.ID]; ok && old == ref {
		return
	}
	x.notes[ref.ID] = ref
	x.rebuildLocked()
}

// Rename changes the title of a known note. Returns false if id is unknown.
func (x *Index) Rename(id, title string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	ref, ok := x.notes[id]
	if !ok {
		return false
	}
	if ref.Title == title {
		return true
	}
	ref.Title = title
	x.notes[id] = ref
	x.rebuildLocked()
	return true
}

// Remove drops a note. Returns false if id was unknown.
func (x *Index) Remove(id string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.notes[id]; !ok {
		return false
	}
	delete(x.notes, id)
	x.rebuildLocked()
	return true
}

// rebuildLocked compiles a new matcher from x.notes and publishes it.
// Notes are inserted in ID order so that equal titles always resolve to
// the same note (the greatest ID wins).
func (x *Index) rebuildLocked() {
	start := time.Now()

	refs := make([]ports.NoteRef, 0, len(x.notes))
	for _, r := range x.notes {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		refs = append(refs, r)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })

	byTitle := make(map[string]ports.NoteRef, len(refs))
	for _, r := range refs {
		byTitle[foldTitle(r.Title, x.opts.CaseSensitive)] = r
	}

	var version uint64 = 1
	if prev := x.current.Load(); prev != nil {
		version = prev.version + 1
	}

	snap := &snapshot{
		matcher: x.opts.Compiler(refs, x.opts.CaseSensitive),
		byTitle: byTitle,
		version: version,
	}
	x.current.Store(snap)

	x.log.V(1).Info("rebuilt title matcher",
		"titles", snap.matcher.Len(),
		"version", version,
		"elapsed", time.Since(start).String())
}

// FindMatches returns every title occurrence in text.
func (x *Index) FindMatches(text string) []ports.TitleHit {
	return x.current.Load().matcher.FindMatches(text)
}

// MaxLength returns the longest title length in codepoints.
func (x *Index) MaxLength() int {
	return x.current.Load().matcher.MaxLength()
}

// Len returns the number of distinct linkable titles.
func (x *Index) Len() int {
	return x.current.Load().matcher.Len()
}

// Version increments on every rebuild.
func (x *Index) Version() uint64 {
	return x.current.Load().version
}

// Matcher returns the currently published matcher.
func (x *Index) Matcher() ports.TitleMatcher {
	return x.current.Load().matcher
}

// Lookup resolves a title to the note it links to, under the index's
// case rule.
func (x *Index) Lookup(title string) (ports.NoteRef, bool) {
	ref, ok := x.current.Load().byTitle[foldTitle(title, x.opts.CaseSensitive)]
	return ref, ok
}

// Notes returns every known note, including ones with blank titles,
// ordered by title then ID.
func (x *Index) Notes() []ports.NoteRef {
	x.mu.Lock()
	refs := make([]ports.NoteRef, 0, len(x.notes))
	for _, r := range x.notes {
		refs = append(refs, r)
	}
	x.mu.Unlock()

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Title != refs[j].Title {
			return refs[i].Title < refs[j].Title
		}
		return refs[i].ID < refs[j].ID
	})
	return refs
}

// foldTitle applies the same per-codepoint folding as the trie.
func foldTitle(title string, caseSensitive bool) string {
	if caseSensitive {
		return title
	}
	return strings.Map(unicode.ToLower, title)
}
