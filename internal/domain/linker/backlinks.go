package linker

import (
	"sort"

	"github.com/corey/notelink/internal/ports"
)

// Backlinks returns the notes whose bodies would link to target, ordered
// by title. A note never counts as linking to itself.
func Backlinks(target ports.NoteRef, notes []*ports.Note, m ports.TitleMatcher, wholeWords bool) []ports.NoteRef {
	var out []ports.NoteRef
	for _, n := range notes {
		if n == nil || n.ID == target.ID {
			continue
		}
		links := Resolve(n.Body, m.FindMatches(n.Body), Options{Self: n.ID, WholeWords: wholeWords})
		for _, l := range links {
			if l.Note.ID == target.ID {
				out = append(out, n.Ref())
				break
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out
}
