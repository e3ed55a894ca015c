package kwtree

import "unicode/utf8"

// Match is one keyword occurrence in a scanned text.
type Match struct {
	// Keyword is the keyword as originally passed to Add, regardless of any
	// case folding applied during matching.
	Keyword string
	// Start is the rune offset of the occurrence in the text.
	Start int
}

// End returns the rune offset just past the occurrence.
func (m Match) End() int { return m.Start + utf8.RuneCountInString(m.Keyword) }

// Iter walks a text through the automaton and yields matches one at a time.
// Matches come out in non-decreasing order of end position; among matches
// ending at the same position, longer keywords come first.
//
// An Iter is a single-use cursor and is not safe for concurrent use, but any
// number of Iters over the same finalized Tree may run concurrently.
type Iter struct {
	t    *Tree
	text []rune

	pos     int // next text position to consume
	current int // automaton state after consuming text[:pos]
	chain   int // failure-chain cursor for matches ending at pos-1
}

// Iter starts a lazy scan of text. It fails with ErrNotFinalized until
// Finalize has run.
func (t *Tree) Iter(text string) (*Iter, error) {
	if !t.finalized {
		return nil, ErrNotFinalized
	}
	symbols := []rune(text)
	if t.caseInsensitive {
		fold(symbols)
	}
	return &Iter{t: t, text: symbols, current: rootID, chain: rootID}, nil
}

// Next returns the next match, or nil once the scan is complete. All matches
// ending at one position are drained, longest first, before the scan advances
// to the next symbol.
func (it *Iter) Next() *Match {
	for {
		// Walk the failure chain of the current state. Every match-flagged
		// node on it is a keyword ending at the position just consumed —
		// this is what reports keywords nested inside longer matches.
		for it.chain != rootID {
			state := it.t.nodes[it.chain]
			it.chain = state.failure
			if state.match {
				return &Match{Keyword: state.keyword, Start: it.pos - state.depth}
			}
		}

		if it.pos >= len(it.text) {
			return nil
		}
		s := it.text[it.pos]
		it.pos++

		// One lookup per symbol: the merged transitions already encode the
		// failure fallback, and root's own edges are the base case for
		// anything that fell all the way through.
		if next, ok := it.t.nodes[it.current].transitions[s]; ok {
			it.current = next
		} else if next, ok := it.t.nodes[rootID].transitions[s]; ok {
			it.current = next
		} else {
			it.current = rootID
		}
		it.chain = it.current
	}
}

// SearchAll scans text and returns every keyword occurrence, including
// overlapping and nested ones, in Iter order. It returns nil (and no error)
// when nothing matches, and fails with ErrNotFinalized before Finalize.
func (t *Tree) SearchAll(text string) ([]Match, error) {
	it, err := t.Iter(text)
	if err != nil {
		return nil, err
	}
	var matches []Match
	for m := it.Next(); m != nil; m = it.Next() {
		matches = append(matches, *m)
	}
	return matches, nil
}

// SearchOne scans text only until the first match and returns it, or nil if
// no keyword occurs. It fails with ErrNotFinalized before Finalize.
func (t *Tree) SearchOne(text string) (*Match, error) {
	it, err := t.Iter(text)
	if err != nil {
		return nil, err
	}
	return it.Next(), nil
}
