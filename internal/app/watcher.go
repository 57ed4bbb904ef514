package app

import (
	"strings"

	"github.com/corey/notelink/internal/ports"
)

// onNoteChanged handles a file create/modify/delete event from the watcher.
// It reloads the one note and republishes the title matcher. A path that is
// not a note is a removed or moved-away directory: every file note under it
// is dropped.
func (a *App) onNoteChanged(absPath string) {
	id, err := a.Source.ID(absPath)
	if err != nil {
		a.log.V(1).Info("ignoring change outside notes dir", "path", absPath)
		return
	}
	if !a.Source.IsNotePath(absPath) {
		a.dropDirNotes(id)
		return
	}

	note, err := a.Source.LoadFile(absPath)
	if err != nil {
		a.log.Error(err, "reload note", "id", id)
		return
	}

	if note == nil {
		a.mu.Lock()
		_, known := a.notes[id]
		delete(a.notes, id)
		a.Index.Remove(id)
		a.mu.Unlock()
		if known {
			a.publishStatus()
			a.log.Info("note removed", "id", id)
		}
		return
	}

	a.mu.Lock()
	prev := a.notes[id]
	a.notes[id] = note
	a.Index.Put(note.Ref())
	a.mu.Unlock()
	a.publishStatus()

	if prev == nil {
		a.log.Info("note added", "id", id, "title", note.Title)
	} else if prev.Title != note.Title {
		a.log.Info("note renamed", "id", id, "from", prev.Title, "to", note.Title)
	}
}

// dropDirNotes forgets the file notes whose ID lies under dir and rebuilds
// the matcher once. Stored notes are kept.
func (a *App) dropDirNotes(dir string) {
	prefix := dir + "/"

	a.mu.Lock()
	dropped := 0
	for id, n := range a.notes {
		if n.Source == "dir" && strings.HasPrefix(id, prefix) {
			delete(a.notes, id)
			dropped++
		}
	}
	if dropped > 0 {
		refs := make([]ports.NoteRef, 0, len(a.notes))
		for _, n := range a.notes {
			refs = append(refs, n.Ref())
		}
		a.Index.Load(refs)
	}
	a.mu.Unlock()

	if dropped == 0 {
		return
	}
	a.publishStatus()
	a.log.Info("notes removed with directory", "dir", dir, "count", dropped)
}
