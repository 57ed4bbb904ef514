package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/corey/notelink/internal/adapters/bbolt"
	"github.com/corey/notelink/internal/ports"
)

// ErrFileNote is returned when a store operation targets a note that lives
// in the notes directory.
var ErrFileNote = errors.New("note lives in the notes directory; edit the file instead")

// AddNote stores a new note and makes its title linkable.
func (a *App) AddNote(title, body string) (*ports.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("note title required")
	}
	note := bbolt.NewNote(title, body)
	if err := a.Store.SaveNote(note); err != nil {
		return nil, fmt.Errorf("save note: %w", err)
	}

	a.mu.Lock()
	a.notes[note.ID] = note
	a.Index.Put(note.Ref())
	a.mu.Unlock()
	a.publishStatus()
	return note, nil
}

// RenameNote changes a stored note's title.
func (a *App) RenameNote(id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("note title required")
	}
	if err := a.storedOnly(id); err != nil {
		return err
	}
	if err := a.Store.RenameNote(id, title); err != nil {
		return err
	}
	note, err := a.Store.GetNote(id)
	if err != nil {
		return fmt.Errorf("reload note %s: %w", id, err)
	}

	a.mu.Lock()
	a.notes[id] = note
	a.Index.Rename(id, title)
	a.mu.Unlock()
	a.publishStatus()
	return nil
}

// DeleteNote removes a stored note and its title.
func (a *App) DeleteNote(id string) error {
	if err := a.storedOnly(id); err != nil {
		return err
	}
	if err := a.Store.DeleteNote(id); err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}

	a.mu.Lock()
	delete(a.notes, id)
	a.Index.Remove(id)
	a.mu.Unlock()
	a.publishStatus()
	return nil
}

// storedOnly checks that id names a note owned by the store.
func (a *App) storedOnly(id string) error {
	n := a.Note(id)
	if n == nil {
		return fmt.Errorf("note %s: %w", id, ports.ErrNoteNotFound)
	}
	if n.Source != "store" {
		return fmt.Errorf("note %s: %w", id, ErrFileNote)
	}
	return nil
}
