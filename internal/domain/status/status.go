// Package status generates the daemon's status file.
//
// The daemon rewrites a JSON status file every time the title index changes.
// Editor plugins and status-line scripts read it instead of opening the socket.
package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/corey/notelink/internal/ports"
)

// StatusFile is the filename within .notelink/run/ where status JSON is written.
const StatusFile = "status.json"

// Data is the JSON payload the daemon writes for readers of the status file.
type Data struct {
	Notes     int       `json:"notes"`
	Titles    int       `json:"titles"`
	MaxLength int       `json:"max_length"`
	Version   uint64    `json:"version"`
	Engine    string    `json:"engine"`
	Longest   []string  `json:"longest_titles,omitempty"`
	Updated   time.Time `json:"updated"`
}

// Input is the index state at one moment.
type Input struct {
	Notes     int
	Titles    int // distinct titles after case folding
	MaxLength int
	Version   uint64
	Engine    string
	Refs      []ports.NoteRef // linkable notes
}

// Generate produces Data from the index state.
func Generate(in Input) *Data {
	return &Data{
		Notes:     in.Notes,
		Titles:    in.Titles,
		MaxLength: in.MaxLength,
		Version:   in.Version,
		Engine:    in.Engine,
		Longest:   longestTitles(in.Refs, 3),
		Updated:   time.Now().UTC(),
	}
}

// WriteJSON writes the status data to path. The file is replaced by rename
// so readers never see a partial write.
func WriteJSON(path string, data *Data) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".status-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadJSON loads a status file written by WriteJSON.
func ReadJSON(path string) (*Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &d, nil
}

// longestTitles returns the n longest titles, in codepoints, ties by title.
func longestTitles(refs []ports.NoteRef, n int) []string {
	if len(refs) == 0 {
		return nil
	}

	type tl struct {
		title string
		n     int
	}

	all := make([]tl, 0, len(refs))
	for _, r := range refs {
		all = append(all, tl{r.Title, utf8.RuneCountInString(r.Title)})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].n != all[j].n {
			return all[i].n > all[j].n
		}
		return all[i].title < all[j].title
	})

	limit := n
	if limit > len(all) {
		limit = len(all)
	}

	result := make([]string, limit)
	for i := 0; i < limit; i++ {
		result[i] = all[i].title
	}
	return result
}
