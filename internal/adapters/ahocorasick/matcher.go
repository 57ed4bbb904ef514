// Package ahocorasick provides a ports.TitleMatcher backed by the
// petar-dambovaliev/aho-corasick library. It is an alternative engine to
// the native trie: the library matches bytes, so this adapter folds case
// per codepoint up front and converts byte offsets back to codepoint
// offsets before handing hits out.
package ahocorasick

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/corey/notelink/internal/ports"
)

// TitleScanner implements ports.TitleMatcher with a compiled DFA.
type TitleScanner struct {
	automaton     aho.AhoCorasick
	refs          []ports.NoteRef // pattern index -> link target
	caseSensitive bool
	maxLen        int
}

// Compile builds a TitleScanner. Titles that fold to the same pattern are
// collapsed and the later ref wins. It satisfies ports.MatcherCompiler.
func Compile(refs []ports.NoteRef, caseSensitive bool) ports.TitleMatcher {
	s := &TitleScanner{caseSensitive: caseSensitive}

	var patterns []string
	slot := make(map[string]int, len(refs))
	for _, r := range refs {
		if r.Title == "" {
			continue
		}
		p := s.fold(r.Title)
		if i, ok := slot[p]; ok {
			s.refs[i] = r
			continue
		}
		slot[p] = len(patterns)
		patterns = append(patterns, p)
		s.refs = append(s.refs, r)
		s.maxLen = max(s.maxLen, utf8.RuneCountInString(r.Title))
	}

	if len(patterns) == 0 {
		return s
	}
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA: true,
	})
	s.automaton = builder.Build(patterns)
	return s
}

// fold lowercases per codepoint so the folded text has exactly as many
// codepoints as the input.
func (s *TitleScanner) fold(text string) string {
	if s.caseSensitive {
		return text
	}
	return strings.Map(unicode.ToLower, text)
}

// FindMatches returns every title occurrence with codepoint offsets, in
// the same order as the native trie: by End, longest first.
func (s *TitleScanner) FindMatches(text string) []ports.TitleHit {
	if len(s.refs) == 0 || text == "" {
		return nil
	}
	folded := s.fold(text)

	// runeIndex[b] is the codepoint index of the rune starting at byte b.
	runeIndex := make([]int, len(folded)+1)
	n := 0
	for b := range folded {
		runeIndex[b] = n
		n++
	}
	runeIndex[len(folded)] = n

	original := []rune(text)

	iter := s.automaton.IterOverlappingByte([]byte(folded))
	var hits []ports.TitleHit
	for next := iter.Next(); next != nil; next = iter.Next() {
		m := *next
		start, end := runeIndex[m.Start()], runeIndex[m.End()]
		if end > len(original) || start >= end {
			continue
		}
		hits = append(hits, ports.TitleHit{
			Start: start,
			End:   end,
			Text:  string(original[start:end]),
			Note:  s.refs[m.Pattern()],
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].End != hits[j].End {
			return hits[i].End < hits[j].End
		}
		return hits[i].Start < hits[j].Start
	})
	return hits
}

// MaxLength returns the longest title in codepoints.
func (s *TitleScanner) MaxLength() int {
	return s.maxLen
}

// Len returns the number of distinct patterns.
func (s *TitleScanner) Len() int {
	return len(s.refs)
}
