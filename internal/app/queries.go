package app

import (
	"fmt"
	"strings"

	"github.com/corey/notelink/internal/adapters/socket"
	"github.com/corey/notelink/internal/domain/linker"
	"github.com/corey/notelink/internal/ports"
)

// Link resolves the links text should carry and renders them.
// Implements socket.AppQueries.
func (a *App) Link(params socket.LinkParams) socket.LinkResult {
	whole := a.cfg.WholeWords
	if params.WholeWords != nil {
		whole = *params.WholeWords
	}
	links := linker.Resolve(params.Text, a.Index.FindMatches(params.Text), linker.Options{
		Self:       params.Self,
		WholeWords: whole,
	})

	hits := make([]socket.TitleHit, len(links))
	for i, l := range links {
		hits[i] = wireHit(l.Start, l.End, l.Text, l.Note)
	}
	return socket.LinkResult{
		Links:    hits,
		Count:    len(hits),
		Rendered: linker.Render(params.Text, links),
	}
}

// Match reports every raw title occurrence in text, overlapping ones
// included. Implements socket.AppQueries.
func (a *App) Match(text string) socket.MatchResult {
	raw := a.Index.FindMatches(text)
	hits := make([]socket.TitleHit, len(raw))
	for i, h := range raw {
		hits[i] = wireHit(h.Start, h.End, h.Text, h.Note)
	}
	return socket.MatchResult{Hits: hits, Count: len(hits)}
}

// Titles lists every note with a linkable title.
// Implements socket.AppQueries.
func (a *App) Titles() socket.TitlesResult {
	refs := a.linkableRefs()
	notes := make([]socket.NoteInfo, len(refs))
	for i, r := range refs {
		notes[i] = socket.NoteInfo{ID: r.ID, Title: r.Title}
	}
	return socket.TitlesResult{
		Notes:     notes,
		Count:     len(notes),
		MaxLength: a.Index.MaxLength(),
	}
}

// Backlinks lists the notes whose bodies would link to the target note.
// The target is found by ID first, then by title.
// Implements socket.AppQueries.
func (a *App) Backlinks(params socket.BacklinksParams) (socket.BacklinksResult, error) {
	target, err := a.resolveTarget(params)
	if err != nil {
		return socket.BacklinksResult{}, err
	}

	refs := linker.Backlinks(target, a.snapshotNotes(), a.Index.Matcher(), a.cfg.WholeWords)
	notes := make([]socket.NoteInfo, len(refs))
	for i, r := range refs {
		notes[i] = socket.NoteInfo{ID: r.ID, Title: r.Title}
	}
	return socket.BacklinksResult{
		Target: socket.NoteInfo{ID: target.ID, Title: target.Title},
		Notes:  notes,
		Count:  len(notes),
	}, nil
}

func (a *App) resolveTarget(params socket.BacklinksParams) (ports.NoteRef, error) {
	if params.ID != "" {
		if n := a.Note(params.ID); n != nil {
			return n.Ref(), nil
		}
		return ports.NoteRef{}, fmt.Errorf("note %s: %w", params.ID, ports.ErrNoteNotFound)
	}
	if ref, ok := a.Index.Lookup(params.Title); ok {
		return ref, nil
	}
	return ports.NoteRef{}, fmt.Errorf("note titled %q: %w", params.Title, ports.ErrNoteNotFound)
}

// Health reports index counters. The server fills status and uptime.
// Implements socket.AppQueries.
func (a *App) Health() socket.HealthResult {
	a.mu.RLock()
	noteCount := len(a.notes)
	a.mu.RUnlock()

	return socket.HealthResult{
		NoteCount:  noteCount,
		TitleCount: a.Index.Len(),
		MaxLength:  a.Index.MaxLength(),
		Version:    a.Index.Version(),
		Engine:     a.cfg.Engine,
		NotesDir:   a.NotesDir,
	}
}

// linkableRefs returns the indexed notes that carry a title.
func (a *App) linkableRefs() []ports.NoteRef {
	refs := a.Index.Notes()
	out := refs[:0]
	for _, r := range refs {
		if strings.TrimSpace(r.Title) != "" {
			out = append(out, r)
		}
	}
	return out
}

func wireHit(start, end int, text string, note ports.NoteRef) socket.TitleHit {
	return socket.TitleHit{
		Start:  start,
		End:    end,
		Text:   text,
		NoteID: note.ID,
		Title:  note.Title,
	}
}
