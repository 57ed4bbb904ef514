// Package bbolt implements the ports.NoteStore interface using bbolt (embedded B+ tree).
// Notes live in a single "notes" bucket keyed by note ID, each value a
// JSON-serialized ports.Note. Writes are transactional; a crash mid-write
// cannot corrupt previously committed data.
package bbolt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/corey/notelink/internal/ports"
)

// Bucket keys
var (
	bucketNotes = []byte("notes")
)

// Store implements ports.NoteStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketNotes)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create notes bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewNote builds a note with a fresh random ID. It is not saved.
func NewNote(title, body string) *ports.Note {
	return &ports.Note{
		ID:       uuid.NewString(),
		Title:    title,
		Body:     body,
		Source:   "store",
		Modified: time.Now().UTC(),
	}
}

// SaveNote inserts or replaces a note.
func (s *Store) SaveNote(note *ports.Note) error {
	if note == nil {
		return fmt.Errorf("nil note")
	}
	if note.ID == "" {
		return fmt.Errorf("note has no ID")
	}

	data, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal note %s: %w", note.ID, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNotes).Put([]byte(note.ID), data)
	})
}

// GetNote retrieves a note by ID.
// Returns nil, nil if the note does not exist.
func (s *Store) GetNote(id string) (*ports.Note, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := tx.Bucket(bucketNotes).Get([]byte(id)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var note ports.Note
	if err := json.Unmarshal(data, &note); err != nil {
		return nil, fmt.Errorf("unmarshal note %s: %w", id, err)
	}
	return &note, nil
}

// LoadNotes returns all notes ordered by ID (bbolt iterates keys in byte order).
func (s *Store) LoadNotes() ([]*ports.Note, error) {
	var notes []*ports.Note
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNotes).ForEach(func(k, v []byte) error {
			var note ports.Note
			if err := json.Unmarshal(v, &note); err != nil {
				return fmt.Errorf("unmarshal note %s: %w", k, err)
			}
			notes = append(notes, &note)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// RenameNote changes a stored note's title inside a single transaction.
// Returns ports.ErrNoteNotFound if the note does not exist.
func (s *Store) RenameNote(id, title string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotes)
		v := b.Get([]byte(id))
		if v == nil {
			return fmt.Errorf("rename %s: %w", id, ports.ErrNoteNotFound)
		}
		var note ports.Note
		if err := json.Unmarshal(v, &note); err != nil {
			return fmt.Errorf("unmarshal note %s: %w", id, err)
		}
		note.Title = title
		note.Modified = time.Now().UTC()
		data, err := json.Marshal(&note)
		if err != nil {
			return fmt.Errorf("marshal note %s: %w", id, err)
		}
		return b.Put([]byte(id), data)
	})
}

// DeleteNote removes a note.
// Idempotent: deleting a nonexistent note is not an error.
func (s *Store) DeleteNote(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNotes).Delete([]byte(id))
	})
}
