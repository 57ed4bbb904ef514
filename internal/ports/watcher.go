package ports

// Watcher monitors a notes directory for changes and triggers title reloads.
// The adapter (fsnotify) must filter out non-note files (.git, editor swap
// files, unknown extensions) before invoking onChange. Only one Watch call
// should be active at a time.
type Watcher interface {
	// Watch starts monitoring notesPath recursively. onChange is called with
	// the absolute path of each changed note file. The callback may be
	// invoked from any goroutine. Returns an error if the directory doesn't
	// exist or permissions are insufficient.
	Watch(notesPath string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}

// NoteSource loads notes from somewhere other than the store, typically a
// directory of text files.
type NoteSource interface {
	// LoadAll returns every note under the source root, ordered by ID.
	LoadAll() ([]*Note, error)

	// LoadFile returns the note for one file path.
	// Returns nil, nil if the file no longer exists or is not a note.
	LoadFile(path string) (*Note, error)

	// ID returns the note ID a file path maps to, whether or not it exists.
	ID(path string) (string, error)
}
