package trie

// Builder accumulates keywords for an Automaton. It is not safe for
// concurrent use. Build consumes the builder: the returned Automaton owns
// the node arena and the builder starts over empty.
type Builder[T any] struct {
	nodes         []node[T]
	caseSensitive bool
	maxLen        int
	keywords      int
}

// NewBuilder creates an empty builder. When caseSensitive is false every
// keyword and every scanned codepoint is folded to lowercase.
func NewBuilder[T any](caseSensitive bool) *Builder[T] {
	b := &Builder[T]{caseSensitive: caseSensitive}
	b.reset()
	return b
}

func (b *Builder[T]) reset() {
	b.nodes = []node[T]{{depth: -1, fail: root, output: noNode}}
	b.maxLen = 0
	b.keywords = 0
}

// Insert adds keyword with its payload. Inserting the same keyword again
// replaces the payload. Empty keywords are ignored: with a payload on the
// root, every codepoint that leaves the scan at the root would report a hit
// spanning from the last match start through that codepoint.
func (b *Builder[T]) Insert(keyword []rune, payload T) {
	if len(keyword) == 0 {
		return
	}

	cur := root
	for _, r := range keyword {
		c := fold(r, b.caseSensitive)
		next := b.nodes[cur].child(c)
		if next == noNode {
			next = b.newNode(c, b.nodes[cur].depth+1)
			if b.nodes[cur].children == nil {
				b.nodes[cur].children = make(map[rune]nodeID)
			}
			b.nodes[cur].children[c] = next
		}
		cur = next
	}

	n := &b.nodes[cur]
	if !n.terminal {
		b.keywords++
	}
	n.payload = payload
	n.terminal = true
	b.maxLen = max(b.maxLen, len(keyword))
}

// InsertString is Insert for a Go string, decoded as UTF-8.
func (b *Builder[T]) InsertString(keyword string, payload T) {
	b.Insert([]rune(keyword), payload)
}

// newNode appends a state to the arena with its fail link on root.
func (b *Builder[T]) newNode(symbol rune, depth int) nodeID {
	b.nodes = append(b.nodes, node[T]{
		symbol: symbol,
		depth:  depth,
		fail:   root,
		output: noNode,
	})
	return nodeID(len(b.nodes) - 1)
}

// Len returns the number of distinct keywords inserted so far.
func (b *Builder[T]) Len() int {
	return b.keywords
}

// MaxKeywordLength returns the longest keyword inserted so far, in codepoints.
func (b *Builder[T]) MaxKeywordLength() int {
	return b.maxLen
}

// Build computes the failure graph and returns the finished automaton.
// The builder is reset and may be reused for an unrelated keyword set.
func (b *Builder[T]) Build() *Automaton[T] {
	computeFailureLinks(b.nodes)

	a := &Automaton[T]{
		nodes:         b.nodes,
		caseSensitive: b.caseSensitive,
		maxLen:        b.maxLen,
		keywords:      b.keywords,
	}
	b.reset()
	return a
}

// computeFailureLinks fills in fail and output links breadth-first. Every
// state dequeued already has a valid fail link, since its fail target is
// strictly shallower and so was processed earlier.
func computeFailureLinks[T any](nodes []node[T]) {
	queue := make([]nodeID, 0, len(nodes))

	for _, id := range nodes[root].children {
		nodes[id].fail = root
		nodes[id].output = noNode
		queue = append(queue, id)
	}

	for head := 0; head < len(queue); head++ {
		s := queue[head]
		for c, t := range nodes[s].children {
			queue = append(queue, t)

			f := nodes[s].fail
			for f != root && nodes[f].child(c) == noNode {
				f = nodes[f].fail
			}
			target := nodes[f].child(c)
			if target == noNode {
				target = root
			}
			nodes[t].fail = target

			if nodes[target].terminal {
				nodes[t].output = target
			} else {
				nodes[t].output = nodes[target].output
			}
		}
	}
}
