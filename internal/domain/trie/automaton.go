package trie

import "iter"

// Hit is one keyword occurrence in a scanned text.
type Hit[T any] struct {
	Start   int    // codepoint offset, inclusive
	End     int    // codepoint offset, exclusive
	Text    string // haystack[Start:End] with its original casing
	Payload T
}

// Len returns the hit length in codepoints.
func (h Hit[T]) Len() int {
	return h.End - h.Start
}

// Automaton is a compiled keyword set. It is never mutated after Build,
// so Scan, All and Lookup may run concurrently.
type Automaton[T any] struct {
	nodes         []node[T]
	caseSensitive bool
	maxLen        int
	keywords      int
}

// Scan returns every keyword occurrence in haystack, overlapping ones
// included. Hits are ordered by End; hits sharing an End come longest first.
func (a *Automaton[T]) Scan(haystack []rune) []Hit[T] {
	var hits []Hit[T]
	for h := range a.All(haystack) {
		hits = append(hits, h)
	}
	return hits
}

// ScanString is Scan over a Go string decoded as UTF-8.
func (a *Automaton[T]) ScanString(haystack string) []Hit[T] {
	return a.Scan([]rune(haystack))
}

// All yields the hits of Scan lazily. Stopping the iteration stops the scan.
func (a *Automaton[T]) All(haystack []rune) iter.Seq[Hit[T]] {
	return func(yield func(Hit[T]) bool) {
		if a == nil || a.keywords == 0 {
			return
		}

		cur := root
		windowStart := 0
		for i, r := range haystack {
			c := fold(r, a.caseSensitive)

			if cur == root {
				windowStart = i
			}

			// Fall back along fail links. The window start moves right by
			// exactly the number of codepoints given up.
			for cur != root && a.nodes[cur].child(c) == noNode {
				old := cur
				cur = a.nodes[cur].fail
				windowStart += a.nodes[old].depth - a.nodes[cur].depth
			}

			if next := a.nodes[cur].child(c); next != noNode {
				cur = next
			} else {
				cur = root
			}

			n := &a.nodes[cur]
			if n.terminal {
				if !yield(a.hit(haystack, windowStart, i+1, n)) {
					return
				}
			}

			// Keywords that are proper suffixes of the current prefix.
			for out := n.output; out != noNode; out = a.nodes[out].output {
				o := &a.nodes[out]
				if !yield(a.hit(haystack, i-o.depth, i+1, o)) {
					return
				}
			}
		}
	}
}

func (a *Automaton[T]) hit(haystack []rune, start, end int, n *node[T]) Hit[T] {
	return Hit[T]{
		Start:   start,
		End:     end,
		Text:    string(haystack[start:end]),
		Payload: n.payload,
	}
}

// Lookup returns the payload stored for exactly keyword, applying the same
// case folding as insertion.
func (a *Automaton[T]) Lookup(keyword string) (T, bool) {
	var zero T
	if a == nil || keyword == "" {
		return zero, false
	}
	cur := root
	for _, r := range keyword {
		cur = a.nodes[cur].child(fold(r, a.caseSensitive))
		if cur == noNode {
			return zero, false
		}
	}
	n := &a.nodes[cur]
	if !n.terminal {
		return zero, false
	}
	return n.payload, true
}

// CaseSensitive reports whether the automaton compares codepoints as-is.
func (a *Automaton[T]) CaseSensitive() bool {
	return a.caseSensitive
}

// Len returns the number of distinct keywords.
func (a *Automaton[T]) Len() int {
	if a == nil {
		return 0
	}
	return a.keywords
}

// MaxKeywordLength returns the longest keyword length in codepoints.
func (a *Automaton[T]) MaxKeywordLength() int {
	if a == nil {
		return 0
	}
	return a.maxLen
}

// NodeCount returns the number of automaton states, root included.
func (a *Automaton[T]) NodeCount() int {
	if a == nil {
		return 0
	}
	return len(a.nodes)
}
