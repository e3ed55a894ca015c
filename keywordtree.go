// Package kwtree implements multi-pattern string matching with an
// Aho-Corasick keyword tree. A set of keywords is compiled once into an
// automaton; any text can then be scanned in a single pass that reports every
// occurrence of every keyword, including overlapping and nested ones. This is
// O(n + m + z) where n=text length, m=total keyword length, z=number of
// matches.
//
// Usage is two-phase: Add keywords, call Finalize, then search. Finalize is
// the only step that computes failure links, so a finalized tree is
// effectively immutable and safe for concurrent searches from any number of
// goroutines. Text and keywords are treated as rune sequences; all reported
// offsets are rune offsets.
package kwtree

import (
	"fmt"
	"unicode"
)

// rootID is the arena index of the root. Node ids are dense and assigned in
// insertion order, so id 0 is always the root.
const rootID = 0

// node is one state of the automaton — one per distinct prefix of any added
// keyword. Nodes live in the tree's arena slice and refer to each other by
// arena id only; the forward transitions are the owning edges, parent and
// failure are plain back/cross references.
type node struct {
	id     int
	symbol rune // symbol consumed to reach this node from its parent; unset for root
	depth  int  // path length from root; a match ending at position i starts at i+1-depth

	parent  int // arena id; -1 for root
	failure int // longest strict suffix; -1 until Finalize resolves it, rootID for root

	match   bool   // some keyword terminates exactly here
	keyword string // the original (unfolded) keyword, set when match is true

	// Before Finalize these are exactly the trie edges. Finalize merges in
	// the failure target's outgoing edges, so afterwards a single lookup per
	// input symbol already carries the longest-suffix fallback.
	transitions map[rune]int
}

// Opts configures a Tree at construction time.
type Opts struct {
	// CaseInsensitive folds keywords and search text to lower case before
	// matching. Reported matches still carry the keyword exactly as it was
	// passed to Add.
	CaseInsensitive bool
}

// Tree is an Aho-Corasick keyword tree. The zero value is not usable; create
// one with New.
//
// A Tree has two phases. While building, Add is permitted and searching is
// not; Add is not safe for concurrent use. After Finalize the roles flip:
// the tree never mutates again and searches may run concurrently.
type Tree struct {
	nodes           []*node
	finalized       bool
	caseInsensitive bool
}

// New creates an empty keyword tree.
func New(opts Opts) *Tree {
	root := &node{id: rootID, parent: -1, failure: -1, transitions: make(map[rune]int)}
	return &Tree{
		nodes:           []*node{root},
		caseInsensitive: opts.CaseInsensitive,
	}
}

// Len returns the number of nodes in the tree, counting the root.
func (t *Tree) Len() int { return len(t.nodes) }

// Finalized reports whether Finalize has run.
func (t *Tree) Finalized() bool { return t.finalized }

// CaseInsensitive reports whether the tree folds case when matching.
func (t *Tree) CaseInsensitive() bool { return t.caseInsensitive }

// Add inserts a keyword into the tree. Adding the empty string is a no-op:
// no node is created and no match is ever reported for it. Adding the same
// keyword twice is idempotent, except that the casing reported on a match is
// the one from the latest Add.
//
// Add fails with ErrAlreadyFinalized once Finalize has run.
func (t *Tree) Add(keyword string) error {
	if t.finalized {
		return fmt.Errorf("add %q: %w", keyword, ErrAlreadyFinalized)
	}
	symbols := []rune(keyword)
	if len(symbols) == 0 {
		return nil
	}
	if t.caseInsensitive {
		fold(symbols)
	}

	cur := t.nodes[rootID]
	for _, s := range symbols {
		if next, ok := cur.transitions[s]; ok {
			cur = t.nodes[next]
			continue
		}
		child := &node{
			id:          len(t.nodes),
			symbol:      s,
			depth:       cur.depth + 1,
			parent:      cur.id,
			failure:     -1,
			transitions: make(map[rune]int),
		}
		t.nodes = append(t.nodes, child)
		cur.transitions[s] = child.id
		cur = child
	}
	cur.match = true
	cur.keyword = keyword
	return nil
}

// Finalize compiles the tree into a searchable automaton: it computes every
// node's failure link (breadth-first, so a parent is always resolved before
// its children) and merges each failure target's transitions into the node.
// After Finalize returns, Add is rejected and searching is permitted.
//
// Finalize fails with ErrAlreadyFinalized if called twice.
func (t *Tree) Finalize() error {
	if t.finalized {
		return ErrAlreadyFinalized
	}
	t.nodes[rootID].failure = rootID

	queue := []int{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, childID := range t.nodes[id].transitions {
			child := t.nodes[childID]
			// Merged entries point into other branches; only true trie
			// children of this node still need their links computed.
			if child.parent != id {
				continue
			}
			t.resolveFailure(child)
			queue = append(queue, childID)
		}
	}
	t.finalized = true
	return nil
}

// resolveFailure computes n's failure link and copies the failure target's
// outgoing edges down into n. Nodes are resolved shallow-before-deep, so
// every node on the walked suffix chain is already resolved and merged.
func (t *Tree) resolveFailure(n *node) {
	walk := t.nodes[t.nodes[n.parent].failure]
	for {
		if target, ok := walk.transitions[n.symbol]; ok && target != n.id {
			n.failure = target
			break
		}
		if walk.id == rootID {
			n.failure = rootID
			break
		}
		walk = t.nodes[walk.failure]
	}

	f := t.nodes[n.failure]
	if f.id == rootID {
		// Root's edges stay the shared fallback consulted by the scan loop;
		// copying them everywhere would only duplicate that base case.
		return
	}
	for s, target := range f.transitions {
		if _, ok := n.transitions[s]; !ok {
			n.transitions[s] = target
		}
	}
}

// fold lowercases a rune slice in place. unicode.ToLower maps one rune to
// one rune, so folded text stays offset-aligned with the original.
func fold(symbols []rune) {
	for i, s := range symbols {
		symbols[i] = unicode.ToLower(s)
	}
}
