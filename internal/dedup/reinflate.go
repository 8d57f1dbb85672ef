package dedup

import (
	"fmt"

	"github.com/evolbioinfo/gotree/tree"

	"github.com/jsdoublel/njreestimate/internal/phylo"
)

// Reinflate replaces every representative leaf of inferred that stands for
// more than one tip by a copy of its recorded clade. The copy hangs from the
// representative's parent on an edge of the representative's length and all
// edges inside it have length 0. Class members that were outside the clade
// are attached next to it with zero length edges. inferred is not modified.
func Reinflate(inferred *tree.Tree, set *RepresentativeSet) (*tree.Tree, error) {
	idx, err := phylo.NewIndex(inferred)
	if err != nil {
		return nil, fmt.Errorf("inferred tree: %w", err)
	}
	dups := make(map[string]*DuplicateRecord)
	for _, e := range set.Entries() {
		if e.Dup == nil {
			continue
		}
		if n, ok := idx.Tip(e.Name); !ok || !idx.Leaf(n) {
			return nil, fmt.Errorf("%w: %q (class of %d tips)", ErrMissingRepresentative, e.Name, len(e.Dup.Members))
		}
		dups[e.Name] = e.Dup
	}
	return phylo.Rebuild(idx, func(dst *tree.Tree, n *tree.Node) (*tree.Node, error) {
		if !idx.Leaf(n) {
			return nil, nil
		}
		if rec, ok := dups[n.Name()]; ok {
			return graft(set.Source, dst, rec), nil
		}
		return nil, nil
	})
}

// graft builds the subtree restoring the tips of rec in dst.
func graft(src *phylo.Index, dst *tree.Tree, rec *DuplicateRecord) *tree.Node {
	root := phylo.CloneClade(src, dst, rec.Clade)
	for _, name := range rec.Outside {
		leaf := dst.NewNode()
		leaf.SetName(name)
		parent := dst.NewNode()
		dst.ConnectNodes(parent, root).SetLength(0)
		dst.ConnectNodes(parent, leaf).SetLength(0)
		root = parent
	}
	return root
}
