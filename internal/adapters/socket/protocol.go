// Package socket implements a JSON-over-Unix-socket protocol for the notelink daemon.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
)

// SocketPath returns the Unix socket path for a given notes directory.
// Format: /tmp/notelink-{first12hex}.sock
func SocketPath(notesDir string) string {
	abs, err := filepath.Abs(notesDir)
	if err != nil {
		abs = notesDir
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/notelink-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodLink      = "link"
	MethodMatch     = "match"
	MethodTitles    = "titles"
	MethodBacklinks = "backlinks"
	MethodReload    = "reload"
	MethodHealth    = "health"
	MethodShutdown  = "shutdown"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// LinkParams is the params for a link request. Self is the ID of the note
// the text belongs to; it never links to itself. A nil WholeWords uses the
// daemon's configured default.
type LinkParams struct {
	Text       string `json:"text"`
	Self       string `json:"self,omitempty"`
	WholeWords *bool  `json:"whole_words,omitempty"`
}

// LinkResult is the result of a link request.
type LinkResult struct {
	Links    []TitleHit `json:"links"`
	Count    int        `json:"count"`
	Rendered string     `json:"rendered"`
	Elapsed  string     `json:"elapsed"`
}

// MatchParams is the params for a match request.
type MatchParams struct {
	Text string `json:"text"`
}

// MatchResult is the result of a match request: every raw title
// occurrence, overlapping ones included.
type MatchResult struct {
	Hits    []TitleHit `json:"hits"`
	Count   int        `json:"count"`
	Elapsed string     `json:"elapsed"`
}

// TitleHit is a single title occurrence (wire format). Offsets are in
// codepoints, End exclusive.
type TitleHit struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Text   string `json:"text"`
	NoteID string `json:"note_id"`
	Title  string `json:"title"`
}

// NoteInfo describes a single note.
type NoteInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// TitlesResult is the result of a titles request.
type TitlesResult struct {
	Notes     []NoteInfo `json:"notes"`
	Count     int        `json:"count"`
	MaxLength int        `json:"max_length"`
}

// BacklinksParams is the params for a backlinks request.
// ID takes precedence over Title.
type BacklinksParams struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
}

// BacklinksResult is the result of a backlinks request.
type BacklinksResult struct {
	Target NoteInfo   `json:"target"`
	Notes  []NoteInfo `json:"notes"`
	Count  int        `json:"count"`
}

// ReloadResult is the result of a reload request.
type ReloadResult struct {
	NoteCount  int    `json:"note_count"`
	TitleCount int    `json:"title_count"`
	Version    uint64 `json:"version"`
	ElapsedMs  int64  `json:"elapsed_ms"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status     string `json:"status"`
	NoteCount  int    `json:"note_count"`
	TitleCount int    `json:"title_count"`
	MaxLength  int    `json:"max_length"`
	Version    uint64 `json:"version"`
	Engine     string `json:"engine"`
	NotesDir   string `json:"notes_dir"`
	Uptime     string `json:"uptime"`
}
