// Package trie implements a multi-pattern matching automaton (Aho-Corasick)
// over Unicode codepoints. Keywords are inserted into a Builder, which
// computes the failure graph once and hands back an immutable Automaton.
// An Automaton is safe for concurrent scans from any number of goroutines.
//
// All offsets are codepoint offsets, never byte offsets.
package trie

import "unicode"

// nodeID indexes a node in the automaton arena. Links between nodes
// (children, fail, output) are stored as indices so back edges never
// own anything.
type nodeID int32

const (
	root   nodeID = 0
	noNode nodeID = -1
)

// node is one automaton state.
type node[T any] struct {
	symbol   rune
	depth    int // root = -1, children of root = 0
	fail     nodeID
	output   nodeID // nearest terminal state on the fail chain, or noNode
	children map[rune]nodeID
	payload  T
	terminal bool
}

// child returns the transition on r, or noNode.
func (n *node[T]) child(r rune) nodeID {
	if id, ok := n.children[r]; ok {
		return id
	}
	return noNode
}

// fold maps r to its comparison form. Case folding is per codepoint so a
// folded haystack always has the same length as the original.
func fold(r rune, caseSensitive bool) rune {
	if caseSensitive {
		return r
	}
	return unicode.ToLower(r)
}
