package kwtree

import "fmt"

// Snapshot is the serializable form of a Tree: the node arena linearized
// into a dense array indexed by node id, plus the construction-time scalars.
// It carries JSON tags so collaborators can persist it directly; the codec
// itself (bbolt, files, the wire) is the collaborator's business.
type Snapshot struct {
	CaseInsensitive bool           `json:"case_insensitive"`
	Finalized       bool           `json:"finalized"`
	Counter         int            `json:"counter"`
	Nodes           []SnapshotNode `json:"nodes"`
}

// SnapshotNode is one node record. Ids are indexes into Snapshot.Nodes;
// symbols are single-rune strings. Parent is -1 for the root, Failure is -1
// on a snapshot taken before Finalize.
type SnapshotNode struct {
	Symbol      string         `json:"symbol,omitempty"`
	Match       bool           `json:"match,omitempty"`
	Keyword     string         `json:"keyword,omitempty"`
	Parent      int            `json:"parent"`
	Failure     int            `json:"failure"`
	Transitions map[string]int `json:"transitions,omitempty"`
}

// Export linearizes the tree into a Snapshot. The tree may be exported in
// either phase; importing a non-finalized snapshot yields a tree that still
// accepts Add.
func (t *Tree) Export() *Snapshot {
	snap := &Snapshot{
		CaseInsensitive: t.caseInsensitive,
		Finalized:       t.finalized,
		Counter:         len(t.nodes),
		Nodes:           make([]SnapshotNode, len(t.nodes)),
	}
	for i, n := range t.nodes {
		rec := SnapshotNode{
			Match:   n.match,
			Keyword: n.keyword,
			Parent:  n.parent,
			Failure: n.failure,
		}
		if i != rootID {
			rec.Symbol = string(n.symbol)
		}
		if len(n.transitions) > 0 {
			rec.Transitions = make(map[string]int, len(n.transitions))
			for s, id := range n.transitions {
				rec.Transitions[string(s)] = id
			}
		}
		snap.Nodes[i] = rec
	}
	return snap
}

// FromSnapshot reconstructs a Tree from a Snapshot. The snapshot is fully
// validated before any node is built, so a failed import never leaves a
// partially reconstructed tree behind; every validation failure wraps
// ErrCorruptSnapshot.
func FromSnapshot(snap *Snapshot) (*Tree, error) {
	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}

	t := &Tree{
		nodes:           make([]*node, len(snap.Nodes)),
		finalized:       snap.Finalized,
		caseInsensitive: snap.CaseInsensitive,
	}
	for i, rec := range snap.Nodes {
		n := &node{
			id:          i,
			parent:      rec.Parent,
			failure:     rec.Failure,
			match:       rec.Match,
			keyword:     rec.Keyword,
			transitions: make(map[rune]int, len(rec.Transitions)),
		}
		if i != rootID {
			n.symbol = []rune(rec.Symbol)[0]
			// Parents precede children in id order, so depth is available.
			n.depth = t.nodes[rec.Parent].depth + 1
		}
		for s, target := range rec.Transitions {
			n.transitions[[]rune(s)[0]] = target
		}
		t.nodes[i] = n
	}
	return t, nil
}

func validateSnapshot(snap *Snapshot) error {
	if snap == nil || len(snap.Nodes) == 0 {
		return fmt.Errorf("%w: no nodes", ErrCorruptSnapshot)
	}
	n := len(snap.Nodes)
	if snap.Counter != n {
		return fmt.Errorf("%w: counter %d does not match %d nodes", ErrCorruptSnapshot, snap.Counter, n)
	}

	root := snap.Nodes[rootID]
	if root.Symbol != "" || root.Parent != -1 {
		return fmt.Errorf("%w: node 0 is not a root", ErrCorruptSnapshot)
	}
	if snap.Finalized && root.Failure != rootID {
		return fmt.Errorf("%w: finalized root must be its own failure target", ErrCorruptSnapshot)
	}
	if !snap.Finalized && root.Failure != -1 {
		return fmt.Errorf("%w: unfinalized root has failure link %d", ErrCorruptSnapshot, root.Failure)
	}

	depth := make([]int, n)
	for i, rec := range snap.Nodes {
		if rec.Match != (rec.Keyword != "") {
			return fmt.Errorf("%w: node %d: match flag and keyword disagree", ErrCorruptSnapshot, i)
		}
		for s, target := range rec.Transitions {
			if len([]rune(s)) != 1 {
				return fmt.Errorf("%w: node %d: transition symbol %q is not a single symbol", ErrCorruptSnapshot, i, s)
			}
			if target < 0 || target >= n {
				return fmt.Errorf("%w: node %d: dangling transition target %d", ErrCorruptSnapshot, i, target)
			}
		}
		if i == rootID {
			continue
		}
		if len([]rune(rec.Symbol)) != 1 {
			return fmt.Errorf("%w: node %d: symbol %q is not a single symbol", ErrCorruptSnapshot, i, rec.Symbol)
		}
		// Ids are assigned in insertion order, so a parent always precedes
		// its children.
		if rec.Parent < 0 || rec.Parent >= i {
			return fmt.Errorf("%w: node %d: invalid parent %d", ErrCorruptSnapshot, i, rec.Parent)
		}
		if snap.Nodes[rec.Parent].Transitions[rec.Symbol] != i {
			return fmt.Errorf("%w: node %d: parent %d has no edge back on %q", ErrCorruptSnapshot, i, rec.Parent, rec.Symbol)
		}
		depth[i] = depth[rec.Parent] + 1
		switch {
		case snap.Finalized && (rec.Failure < 0 || rec.Failure >= n || rec.Failure == i):
			return fmt.Errorf("%w: node %d: invalid failure link %d", ErrCorruptSnapshot, i, rec.Failure)
		case !snap.Finalized && rec.Failure != -1:
			return fmt.Errorf("%w: node %d: unfinalized node has failure link %d", ErrCorruptSnapshot, i, rec.Failure)
		}
	}

	if snap.Finalized {
		// Failure targets must be strictly shallower than their nodes,
		// or the output chain walk during search would loop forever.
		// Failure ids may exceed the node's own id, so this check needs
		// every depth computed first.
		for i := 1; i < n; i++ {
			if f := snap.Nodes[i].Failure; depth[f] >= depth[i] {
				return fmt.Errorf("%w: node %d: failure link %d does not decrease depth", ErrCorruptSnapshot, i, f)
			}
		}
	}
	return nil
}
