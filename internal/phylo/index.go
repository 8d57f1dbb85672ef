// Package phylo holds the tree primitives shared by the deduplication steps:
// a read-only orientation index over gotree trees, induced subtree extraction,
// clade cloning and newick input/output.
package phylo

import (
	"errors"
	"fmt"
	"slices"

	"github.com/evolbioinfo/gotree/tree"
	"github.com/fredericlemoine/bitset"
)

var (
	ErrDuplicateLabel = errors.New("contains duplicate tip labels")
	ErrUnknownTip     = errors.New("tip not found in tree")
	ErrEmptyTree      = errors.New("tree has no tips")
)

// Index caches the rooted orientation of a tree (parent, parent edge and
// ordered children of every node) together with the tip set under every node.
// The indexed tree must not be modified while the index is in use.
type Index struct {
	tre      *tree.Tree
	order    []*tree.Node // preorder
	parent   map[*tree.Node]*tree.Node
	edge     map[*tree.Node]*tree.Edge
	children map[*tree.Node][]*tree.Node
	tips     []*tree.Node
	tipIndex map[*tree.Node]uint
	byName   map[string]*tree.Node
	tipSets  map[*tree.Node]*bitset.BitSet
}

// Builds the index of tre. Returns an error if tip labels are not unique.
func NewIndex(tre *tree.Tree) (*Index, error) {
	if tre == nil || tre.Root() == nil {
		return nil, ErrEmptyTree
	}
	idx := &Index{
		tre:      tre,
		parent:   make(map[*tree.Node]*tree.Node),
		edge:     make(map[*tree.Node]*tree.Edge),
		children: make(map[*tree.Node][]*tree.Node),
		tipIndex: make(map[*tree.Node]uint),
		byName:   make(map[string]*tree.Node),
		tipSets:  make(map[*tree.Node]*bitset.BitSet),
	}
	tre.PreOrder(func(cur, prev *tree.Node, e *tree.Edge) (keep bool) {
		idx.order = append(idx.order, cur)
		if prev != nil {
			idx.parent[cur] = prev
			idx.edge[cur] = e
			idx.children[prev] = append(idx.children[prev], cur)
		}
		return true
	})
	for _, n := range idx.order {
		if len(idx.children[n]) != 0 {
			continue
		}
		if _, dup := idx.byName[n.Name()]; dup {
			return nil, fmt.Errorf("tree %w (%q)", ErrDuplicateLabel, n.Name())
		}
		idx.tipIndex[n] = uint(len(idx.tips))
		idx.byName[n.Name()] = n
		idx.tips = append(idx.tips, n)
	}
	nTips := uint(len(idx.tips))
	for i := len(idx.order) - 1; i >= 0; i-- {
		n := idx.order[i]
		set := bitset.New(nTips)
		if j, ok := idx.tipIndex[n]; ok {
			set.Set(j)
		}
		for _, c := range idx.children[n] {
			set.InPlaceUnion(idx.tipSets[c])
		}
		idx.tipSets[n] = set
	}
	return idx, nil
}

func (idx *Index) Tree() *tree.Tree { return idx.tre }

func (idx *Index) Root() *tree.Node { return idx.order[0] }

// Parent of n, nil for the root.
func (idx *Index) Parent(n *tree.Node) *tree.Node { return idx.parent[n] }

func (idx *Index) Children(n *tree.Node) []*tree.Node { return idx.children[n] }

func (idx *Index) Leaf(n *tree.Node) bool { return len(idx.children[n]) == 0 }

// Length of the edge above n. ok is false for the root and for edges
// without a length.
func (idx *Index) Length(n *tree.Node) (length float64, ok bool) {
	e := idx.edge[n]
	if e == nil || e.Length() == tree.NIL_LENGTH {
		return 0, false
	}
	return e.Length(), true
}

// Support of the edge above n (tree.NIL_SUPPORT if none).
func (idx *Index) Support(n *tree.Node) float64 {
	if e := idx.edge[n]; e != nil {
		return e.Support()
	}
	return tree.NIL_SUPPORT
}

func (idx *Index) NbTips() int { return len(idx.tips) }

// Tip returns the leaf labeled name.
func (idx *Index) Tip(name string) (*tree.Node, bool) {
	n, ok := idx.byName[name]
	return n, ok
}

// Names returns the tip names in preorder.
func (idx *Index) Names() []string {
	names := make([]string, len(idx.tips))
	for i, t := range idx.tips {
		names[i] = t.Name()
	}
	return names
}

// TipSet returns the tips under n as a bitset over tip indices. The returned
// set is shared and must not be modified.
func (idx *Index) TipSet(n *tree.Node) *bitset.BitSet { return idx.tipSets[n] }

// Set builds the tip bitset of the given names.
func (idx *Index) Set(names ...string) (*bitset.BitSet, error) {
	set := bitset.New(uint(len(idx.tips)))
	for _, name := range names {
		n, ok := idx.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTip, name)
		}
		set.Set(idx.tipIndex[n])
	}
	return set, nil
}

// Clade returns the tip names contained in set, in preorder.
func (idx *Index) Clade(set *bitset.BitSet) []string {
	clade := make([]string, 0, set.Count())
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		clade = append(clade, idx.tips[i].Name())
	}
	return clade
}

// TipNames returns the names of the tips under n, in preorder.
func (idx *Index) TipNames(n *tree.Node) []string { return idx.Clade(idx.tipSets[n]) }

// MRCA returns the deepest node whose tip set contains set, or nil if set is
// empty.
func (idx *Index) MRCA(set *bitset.BitSet) *tree.Node {
	first, ok := set.NextSet(0)
	if !ok {
		return nil
	}
	n := idx.tips[first]
	for n != nil && !idx.tipSets[n].IsSuperSet(set) {
		n = idx.parent[n]
	}
	return n
}

// SortedNames returns the tip names sorted lexicographically.
func (idx *Index) SortedNames() []string {
	names := idx.Names()
	slices.Sort(names)
	return names
}
