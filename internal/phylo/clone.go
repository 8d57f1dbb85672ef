package phylo

import (
	"github.com/evolbioinfo/gotree/tree"
)

// CloneClade deep copies the subtree of idx rooted at n into dst and returns
// the copied root, not yet connected to anything. Leaves keep their labels,
// internal nodes are unlabeled and every edge inside the copy has length 0.
func CloneClade(idx *Index, dst *tree.Tree, n *tree.Node) *tree.Node {
	res := dst.NewNode()
	if idx.Leaf(n) {
		res.SetName(n.Name())
		return res
	}
	for _, c := range idx.Children(n) {
		e := dst.ConnectNodes(res, CloneClade(idx, dst, c))
		e.SetLength(0)
	}
	return res
}

// Replacer returns the node (built in dst) that stands for source node n in
// a rebuilt tree, or nil to copy n as is.
type Replacer func(dst *tree.Tree, n *tree.Node) (*tree.Node, error)

// Rebuild copies the tree indexed by idx into a new tree, keeping node
// labels, edge lengths and supports. Subtrees for which replace returns a
// node are substituted by that node; the edge above keeps the source length
// and support.
func Rebuild(idx *Index, replace Replacer) (*tree.Tree, error) {
	dst := tree.NewTree()
	root, err := rebuild(idx, dst, idx.Root(), replace)
	if err != nil {
		return nil, err
	}
	dst.SetRoot(root)
	return dst, nil
}

func rebuild(idx *Index, dst *tree.Tree, n *tree.Node, replace Replacer) (*tree.Node, error) {
	if replace != nil {
		sub, err := replace(dst, n)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			return sub, nil
		}
	}
	res := dst.NewNode()
	res.SetName(n.Name())
	for _, c := range idx.Children(n) {
		sub, err := rebuild(idx, dst, c, replace)
		if err != nil {
			return nil, err
		}
		e := dst.ConnectNodes(res, sub)
		if length, ok := idx.Length(c); ok {
			e.SetLength(length)
		} else {
			e.SetLength(tree.NIL_LENGTH)
		}
		e.SetSupport(idx.Support(c))
	}
	return res, nil
}
