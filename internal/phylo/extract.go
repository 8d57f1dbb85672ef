package phylo

import (
	"fmt"

	"github.com/evolbioinfo/gotree/tree"
	"github.com/fredericlemoine/bitset"
)

// branch is a node of the tree under construction together with the pending
// length of the edge that will connect it to its parent.
type branch struct {
	node   *tree.Node
	length float64
	known  bool
}

func (b branch) plus(length float64, known bool) branch {
	b.length += length
	b.known = b.known || known
	return b
}

// Extract builds a new tree induced by the tips in keep: other tips are
// dropped, internal nodes left with a single child are spliced out (their
// edge length is added to the child's) and polytomies are resolved into
// binary splits with zero length edges. Internal labels are not kept. The
// result is rooted the same way as the source.
func Extract(idx *Index, keep []string) (*tree.Tree, error) {
	set, err := idx.Set(keep...)
	if err != nil {
		return nil, err
	}
	return ExtractSet(idx, set)
}

// ExtractSet is Extract with the tips given as a bitset of idx.
func ExtractSet(idx *Index, set *bitset.BitSet) (*tree.Tree, error) {
	if !set.Any() {
		return nil, fmt.Errorf("cannot extract subtree: %w", ErrEmptyTree)
	}
	res := tree.NewTree()
	root, _ := extract(idx, res, idx.Root(), set)
	res.SetRoot(root.node)
	return res, nil
}

func extract(idx *Index, dst *tree.Tree, n *tree.Node, set *bitset.BitSet) (branch, bool) {
	if set.IntersectionCardinality(idx.TipSet(n)) == 0 {
		return branch{}, false
	}
	length, known := idx.Length(n)
	if idx.Leaf(n) {
		leaf := dst.NewNode()
		leaf.SetName(n.Name())
		return branch{node: leaf, length: length, known: known}, true
	}
	kept := make([]branch, 0, len(idx.Children(n)))
	for _, c := range idx.Children(n) {
		if b, ok := extract(idx, dst, c, set); ok {
			kept = append(kept, b)
		}
	}
	switch len(kept) {
	case 0:
		return branch{}, false
	case 1: // unifurcation
		return kept[0].plus(length, known), true
	}
	node := dst.NewNode()
	attach(dst, node, kept)
	return branch{node: node, length: length, known: known}, true
}

// attach connects children below parent. More than two children are split
// left to right: the last child hangs from parent next to a new zero length
// node holding the others.
func attach(dst *tree.Tree, parent *tree.Node, children []branch) {
	if len(children) > 2 {
		inner := dst.NewNode()
		attach(dst, inner, children[:len(children)-1])
		children = []branch{{node: inner, length: 0, known: true}, children[len(children)-1]}
	}
	for _, c := range children {
		connect(dst, parent, c)
	}
}

func connect(dst *tree.Tree, parent *tree.Node, child branch) *tree.Edge {
	e := dst.ConnectNodes(parent, child.node)
	if child.known {
		e.SetLength(child.length)
	} else {
		e.SetLength(tree.NIL_LENGTH)
	}
	return e
}
