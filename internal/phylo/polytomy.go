package phylo

import (
	"github.com/evolbioinfo/gotree/tree"
)

// Polytomies returns the tip names under each multifurcating node, i.e.
// internal nodes with more than two children.
func Polytomies(idx *Index) [][]string {
	poly := make([][]string, 0)
	for _, n := range idx.order {
		if len(idx.children[n]) > 2 {
			poly = append(poly, idx.TipNames(n))
		}
	}
	return poly
}

// IsBinary reports whether every internal node of tre has three neighbors.
// The root may have two (rooted) or three (unrooted).
func IsBinary(tre *tree.Tree) bool {
	binary := true
	tre.PreOrder(func(cur, prev *tree.Node, e *tree.Edge) (keep bool) {
		switch deg := cur.Nneigh(); {
		case prev == nil:
			binary = deg == 2 || deg == 3
		case deg != 1 && deg != 3:
			binary = false
		}
		return binary
	})
	return binary
}
