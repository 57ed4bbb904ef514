package titles

import (
	"github.com/corey/notelink/internal/domain/trie"
	"github.com/corey/notelink/internal/ports"
)

// trieMatcher adapts a compiled trie automaton to ports.TitleMatcher.
type trieMatcher struct {
	automaton *trie.Automaton[ports.NoteRef]
}

// Compile builds the native title matcher. It is the default
// ports.MatcherCompiler.
func Compile(refs []ports.NoteRef, caseSensitive bool) ports.TitleMatcher {
	b := trie.NewBuilder[ports.NoteRef](caseSensitive)
	for _, r := range refs {
		b.InsertString(r.Title, r)
	}
	return &trieMatcher{automaton: b.Build()}
}

func (m *trieMatcher) FindMatches(text string) []ports.TitleHit {
	hits := m.automaton.ScanString(text)
	if len(hits) == 0 {
		return nil
	}
	out := make([]ports.TitleHit, len(hits))
	for i, h := range hits {
		out[i] = ports.TitleHit{
			Start: h.Start,
			End:   h.End,
			Text:  h.Text,
			Note:  h.Payload,
		}
	}
	return out
}

func (m *trieMatcher) MaxLength() int {
	return m.automaton.MaxKeywordLength()
}

func (m *trieMatcher) Len() int {
	return m.automaton.Len()
}
