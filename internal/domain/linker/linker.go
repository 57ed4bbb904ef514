// Package linker turns raw title hits into the links a note should carry.
// The matcher reports every occurrence, overlapping ones included; the
// linker keeps whole words only, never links a note to itself, and picks a
// non-overlapping set of spans to decorate.
package linker

import (
	"sort"
	"strings"
	"unicode"

	"github.com/corey/notelink/internal/ports"
)

// Options controls which hits become links.
type Options struct {
	Self       string // ID of the note being linked; hits to it are dropped
	WholeWords bool   // drop hits that start or end inside a word
}

// Link is a hit selected for decoration.
type Link struct {
	Start int           `json:"start"`
	End   int           `json:"end"`
	Text  string        `json:"text"`
	Note  ports.NoteRef `json:"note"`
}

// Resolve selects links from hits found in text. Among overlapping hits
// the leftmost wins, and among hits with the same start the longest wins.
// The result is ordered by Start.
func Resolve(text string, hits []ports.TitleHit, opts Options) []Link {
	if len(hits) == 0 {
		return nil
	}
	runes := []rune(text)

	candidates := make([]ports.TitleHit, 0, len(hits))
	for _, h := range hits {
		if opts.Self != "" && h.Note.ID == opts.Self {
			continue
		}
		if h.Start < 0 || h.End > len(runes) || h.Start >= h.End {
			continue
		}
		if opts.WholeWords && !isWholeWord(runes, h.Start, h.End) {
			continue
		}
		candidates = append(candidates, h)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Start != candidates[j].Start {
			return candidates[i].Start < candidates[j].Start
		}
		return candidates[i].End > candidates[j].End
	})

	var links []Link
	covered := 0
	for _, h := range candidates {
		if h.Start < covered {
			continue
		}
		links = append(links, Link{Start: h.Start, End: h.End, Text: h.Text, Note: h.Note})
		covered = h.End
	}
	return links
}

// isWholeWord reports whether runes[start:end] is not glued to a word
// character on either side.
func isWholeWord(runes []rune, start, end int) bool {
	if start > 0 && isWordRune(runes[start-1]) && isWordRune(runes[start]) {
		return false
	}
	if end < len(runes) && isWordRune(runes[end]) && isWordRune(runes[end-1]) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// Render rewrites text with wiki-style link markup. A link whose text
// differs from its note title renders as [[Title|text]].
func Render(text string, links []Link) string {
	if len(links) == 0 {
		return text
	}
	runes := []rune(text)

	var sb strings.Builder
	sb.Grow(len(text) + len(links)*4)
	pos := 0
	for _, l := range links {
		if l.Start < pos || l.End > len(runes) {
			continue
		}
		sb.WriteString(string(runes[pos:l.Start]))
		sb.WriteString("[[")
		sb.WriteString(l.Note.Title)
		if l.Text != l.Note.Title {
			sb.WriteByte('|')
			sb.WriteString(l.Text)
		}
		sb.WriteString("]]")
		pos = l.End
	}
	sb.WriteString(string(runes[pos:]))
	return sb.String()
}
