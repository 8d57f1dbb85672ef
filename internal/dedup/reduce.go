package dedup

import (
	"fmt"

	"github.com/evolbioinfo/gotree/tree"

	"github.com/jsdoublel/njreestimate/internal/phylo"
)

// Reduce prunes the full reference tree to the representatives of set,
// resolves polytomies and unroots the result, giving the constraint topology
// for inference.
func Reduce(ref *phylo.Index, set *RepresentativeSet) (*tree.Tree, error) {
	reduced, err := phylo.Extract(ref, set.Names())
	if err != nil {
		return nil, fmt.Errorf("could not reduce reference tree: %w", err)
	}
	reduced.UnRoot()
	if root := reduced.Root(); root.Tip() {
		reduced.SetRoot(root.Neigh()[0])
	}
	if !phylo.IsBinary(reduced) {
		panic("reduced tree is not fully resolved")
	}
	return reduced, nil
}
