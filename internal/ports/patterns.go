package ports

// TitleMatcher finds note titles in text using multi-pattern matching
// (Aho-Corasick). A single pass over the text finds every title occurrence
// regardless of how many titles are known: O(n + z) where n = text length
// and z = number of matches.
//
// A TitleMatcher is immutable. When the title set changes a new matcher is
// compiled and swapped in; readers never observe a half-built matcher.
type TitleMatcher interface {
	// FindMatches returns every title occurrence in text, overlapping ones
	// included, ordered by End and longest first among equal Ends.
	FindMatches(text string) []TitleHit

	// MaxLength returns the longest title in codepoints.
	MaxLength() int

	// Len returns the number of distinct titles.
	Len() int
}

// MatcherCompiler builds a TitleMatcher from a set of link targets. Later
// refs win when two titles compare equal under the case rule.
type MatcherCompiler func(refs []NoteRef, caseSensitive bool) TitleMatcher

// TitleHit is one title occurrence. Offsets are codepoint offsets: Start
// inclusive, End exclusive.
type TitleHit struct {
	Start int     `json:"start"`
	End   int     `json:"end"`
	Text  string  `json:"text"`
	Note  NoteRef `json:"note"`
}
