// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import (
	"errors"
	"time"
)

// ErrNoteNotFound is returned by mutating store calls that target a missing note.
var ErrNoteNotFound = errors.New("note not found")

// NoteStore persists notes to durable storage. Concurrent reads are safe;
// writes are serialized by the adapter.
//
// Crash safety: SaveNote, RenameNote and DeleteNote must be transactional.
// A crash mid-write must not corrupt previously committed notes.
type NoteStore interface {
	// SaveNote inserts or replaces a note keyed by its ID.
	SaveNote(note *Note) error

	// GetNote retrieves a single note.
	// Returns nil, nil if the note does not exist.
	GetNote(id string) (*Note, error)

	// LoadNotes returns every stored note, ordered by ID.
	LoadNotes() ([]*Note, error)

	// RenameNote changes the title of a stored note.
	// Returns ErrNoteNotFound if the note does not exist.
	RenameNote(id, title string) error

	// DeleteNote removes a note.
	// Idempotent: deleting a nonexistent note is not an error.
	DeleteNote(id string) error
}

// Note is a titled piece of text. The title is what other notes link to.
type Note struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Source   string    `json:"source,omitempty"` // "store" or "dir"
	Modified time.Time `json:"modified"`
}

// Ref returns the link target for the note.
func (n *Note) Ref() NoteRef {
	return NoteRef{ID: n.ID, Title: n.Title}
}

// NoteRef identifies a link target: the payload attached to every title
// match.
type NoteRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
