// Package notefs reads notes from a directory tree through an afero.Fs.
// Each file with a note extension is one note. Its title comes from YAML
// front matter (title:), else the first "# " heading, else the file name.
// A file whose front matter does not parse is still a note: its whole
// content is the body and its file name the title.
package notefs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/corey/notelink/internal/ports"
)

// DefaultExtensions are the file extensions treated as notes.
var DefaultExtensions = []string{".md", ".txt", ".note"}

// Directories never descended into.
var ignoreDirs = map[string]bool{
	".git":         true,
	".notelink":    true,
	".obsidian":    true,
	"node_modules": true,
	".trash":       true,
}

// Source implements ports.NoteSource over a directory.
type Source struct {
	fs   afero.Fs
	root string
	exts map[string]bool
	log  logr.Logger
}

// New creates a source rooted at root. A nil fs means the OS filesystem;
// empty exts means DefaultExtensions.
func New(fs afero.Fs, root string, exts []string) (*Source, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve notes dir: %w", err)
	}
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return &Source{fs: fs, root: abs, exts: set, log: logr.Discard()}, nil
}

// WithLogger sets the logger used to report unreadable notes.
func (s *Source) WithLogger(log logr.Logger) *Source {
	if log.GetSink() != nil {
		s.log = log.WithName("notefs")
	}
	return s
}

// Root returns the absolute notes directory.
func (s *Source) Root() string {
	return s.root
}

// IsNotePath reports whether path has a note extension and is outside
// ignored directories. It does not touch the filesystem.
func (s *Source) IsNotePath(path string) bool {
	if !s.exts[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if ignoreDirs[part] {
			return false
		}
	}
	return true
}

// ID maps a file path to its note ID: the slash-separated path relative
// to the root.
func (s *Source) ID(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", fmt.Errorf("note id for %s: %w", path, err)
	}
	if rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return "", fmt.Errorf("note id for %s: outside %s", path, s.root)
	}
	return filepath.ToSlash(rel), nil
}

// LoadAll walks the root and returns every note, ordered by ID. Files that
// cannot be read are logged and skipped.
func (s *Source) LoadAll() ([]*ports.Note, error) {
	var notes []*ports.Note
	err := afero.Walk(s.fs, s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			return nil // skip inaccessible paths
		}
		if info.IsDir() {
			if ignoreDirs[info.Name()] && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.IsNotePath(path) {
			return nil
		}
		note, err := s.read(path, info)
		if err != nil {
			s.log.Error(err, "skipping note", "path", path)
			return nil
		}
		notes = append(notes, note)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}

	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	return notes, nil
}

// LoadFile reads a single note.
// Returns nil, nil if the file is gone, is a directory, or is not a note.
func (s *Source) LoadFile(path string) (*ports.Note, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	if !s.IsNotePath(path) {
		return nil, nil
	}
	info, err := s.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, nil
	}
	return s.read(path, info)
}

func (s *Source) read(path string, info os.FileInfo) (*ports.Note, error) {
	id, err := s.ID(path)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	title, body, err := parseNote(data)
	if err != nil {
		s.log.Info("front matter unreadable, using whole file as body", "id", id, "error", err.Error())
		title, body = "", string(data)
	}
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return &ports.Note{
		ID:       id,
		Title:    title,
		Body:     body,
		Source:   "dir",
		Modified: info.ModTime().UTC(),
	}, nil
}

// frontMatter is the subset of YAML front matter notelink reads.
type frontMatter struct {
	Title string `yaml:"title"`
}

var fence = []byte("---")

// parseNote splits optional front matter from the body and finds a title.
// The returned body excludes the front matter block.
func parseNote(data []byte) (title, body string, err error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if rest, ok := cutLine(data, fence); ok {
		end := -1
		if bytes.HasPrefix(rest, fence) {
			end = 0
		} else if i := bytes.Index(rest, []byte("\n---")); i >= 0 {
			end = i + 1
		}
		if end >= 0 {
			var fm frontMatter
			if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
				return "", "", fmt.Errorf("front matter: %w", err)
			}
			title = strings.TrimSpace(fm.Title)

			data = rest[end+len(fence):]
			if i := bytes.IndexByte(data, '\n'); i >= 0 {
				data = data[i+1:]
			} else {
				data = nil
			}
		}
	}

	body = string(data)
	if title == "" {
		title = firstHeading(body)
	}
	return title, body, nil
}

// cutLine reports whether data starts with a line equal to line, and
// returns what follows it.
func cutLine(data, line []byte) ([]byte, bool) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return nil, false
	}
	if !bytes.Equal(bytes.TrimRight(data[:i], " \r"), line) {
		return nil, false
	}
	return data[i+1:], true
}

// firstHeading returns the text of the first "# " line in body, skipping
// leading blank lines only.
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
		return ""
	}
	return ""
}
