package phylo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/evolbioinfo/gotree/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustIndex(t *testing.T, nwk string) *Index {
	t.Helper()
	tre, err := ParseNewick(nwk)
	require.NoError(t, err)
	idx, err := NewIndex(tre)
	require.NoError(t, err)
	return idx
}

func tip(t *testing.T, idx *Index, name string) *tree.Node {
	t.Helper()
	n, ok := idx.Tip(name)
	require.True(t, ok, "tip %s", name)
	return n
}

func TestNewIndex(t *testing.T) {
	idx := mustIndex(t, "(((A:1,B:2):0.5,C:1):1,(D:1,E:1):2);")
	assert.Equal(t, 5, idx.NbTips())
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, idx.Names())

	a := tip(t, idx, "A")
	ab := idx.Parent(a)
	require.NotNil(t, ab)
	assert.Equal(t, []string{"A", "B"}, idx.TipNames(ab))
	assert.Len(t, idx.Children(ab), 2)
	assert.Nil(t, idx.Parent(idx.Root()))
	assert.True(t, idx.Leaf(a))
	assert.False(t, idx.Leaf(ab))

	length, ok := idx.Length(ab)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, length, 1e-9)
	_, ok = idx.Length(idx.Root())
	assert.False(t, ok)
	assert.InDelta(t, 2.5, rootDistance(idx, a), 1e-9)
}

func TestIndexMRCA(t *testing.T) {
	idx := mustIndex(t, "(((A,B),C),(D,E));")
	set, err := idx.Set("A", "C")
	require.NoError(t, err)
	mrca := idx.MRCA(set)
	assert.Equal(t, []string{"A", "B", "C"}, idx.TipNames(mrca))

	set, err = idx.Set("A", "D")
	require.NoError(t, err)
	assert.Equal(t, idx.Root(), idx.MRCA(set))

	_, err = idx.Set("Z")
	assert.ErrorIs(t, err, ErrUnknownTip)
}

func TestIndexDuplicateLabels(t *testing.T) {
	tre, err := ParseNewick("((A,B),(A,C));")
	require.NoError(t, err)
	_, err = NewIndex(tre)
	assert.ErrorIs(t, err, ErrDuplicateLabel)
}

func TestExtractSuppressesUnifurcations(t *testing.T) {
	idx := mustIndex(t, "(((A:1,B:2):0.5,C:1):1,(D:1,E:1):2);")
	res, err := Extract(idx, []string{"A", "C", "D", "E"})
	require.NoError(t, err)
	out, err := NewIndex(res)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C", "D", "E"}, out.SortedNames())
	assert.True(t, IsBinary(res))
	length, ok := out.Length(tip(t, out, "A"))
	require.True(t, ok)
	assert.InDelta(t, 1.5, length, 1e-9)
	assert.InDelta(t, 2.5, rootDistance(out, tip(t, out, "A")), 1e-9)
	assert.InDelta(t, 3, rootDistance(out, tip(t, out, "D")), 1e-9)
}

func TestExtractSplicesRoot(t *testing.T) {
	idx := mustIndex(t, "((A:1,B:1):1,(C:1,D:1):1);")
	res, err := Extract(idx, []string{"A", "B"})
	require.NoError(t, err)
	out, err := NewIndex(res)
	require.NoError(t, err)
	assert.Len(t, out.Children(out.Root()), 2)
	assert.Equal(t, []string{"A", "B"}, out.Names())
}

func TestExtractResolvesPolytomies(t *testing.T) {
	idx := mustIndex(t, "(A:1,B:1,C:1,(D:1,E:1,F:1,G:1):1);")
	poly := Polytomies(idx)
	assert.Len(t, poly, 2)
	assert.Equal(t, []string{"D", "E", "F", "G"}, poly[1])
	assert.False(t, IsBinary(idx.Tree()))

	res, err := Extract(idx, []string{"A", "B", "C", "D", "E", "F"})
	require.NoError(t, err)
	assert.True(t, IsBinary(res))
	out, err := NewIndex(res)
	require.NoError(t, err)
	assert.Len(t, out.Children(out.Root()), 2)
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F"}, out.SortedNames())
	for _, name := range out.Names() {
		assert.InDelta(t, 1, mustLength(t, out, tip(t, out, name)), 1e-9)
	}

	again, err := Extract(idx, []string{"A", "B", "C", "D", "E", "F"})
	require.NoError(t, err)
	assert.Equal(t, Newick(res), Newick(again))
}

func mustLength(t *testing.T, idx *Index, n *tree.Node) float64 {
	t.Helper()
	l, ok := idx.Length(n)
	require.True(t, ok)
	return l
}

func TestExtractUnknownTip(t *testing.T) {
	idx := mustIndex(t, "((A,B),(C,D));")
	_, err := Extract(idx, []string{"A", "X"})
	assert.ErrorIs(t, err, ErrUnknownTip)
	_, err = Extract(idx, nil)
	assert.ErrorIs(t, err, ErrEmptyTree)
}

func TestCloneClade(t *testing.T) {
	idx := mustIndex(t, "(((A:1,B:2):0.5,C:1):1,(D:1,E:1):2);")
	clade := idx.Parent(idx.Parent(tip(t, idx, "A")))

	dst := tree.NewTree()
	root := CloneClade(idx, dst, clade)
	dst.SetRoot(root)
	out, err := NewIndex(dst)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, out.Names())
	assert.NotSame(t, clade, root)
	for _, name := range out.Names() {
		assert.InDelta(t, 0, rootDistance(out, tip(t, out, name)), 1e-12)
	}
	// branching order is kept: (A,B) is still a clade
	assert.Equal(t, []string{"A", "B"}, out.TipNames(out.Parent(tip(t, out, "A"))))
	// source untouched
	assert.InDelta(t, 2.5, rootDistance(idx, tip(t, idx, "A")), 1e-9)
}

func TestRebuildReplacesSubtrees(t *testing.T) {
	idx := mustIndex(t, "((A:0.1,C:0.2):0.05,(D:0.3,E:0.4):0.05);")
	res, err := Rebuild(idx, func(dst *tree.Tree, n *tree.Node) (*tree.Node, error) {
		if n.Name() != "A" {
			return nil, nil
		}
		sub := dst.NewNode()
		for _, name := range []string{"A", "B"} {
			leaf := dst.NewNode()
			leaf.SetName(name)
			dst.ConnectNodes(sub, leaf).SetLength(0)
		}
		return sub, nil
	})
	require.NoError(t, err)
	out, err := NewIndex(res)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, out.Names())
	assert.InDelta(t, 0.15, rootDistance(out, tip(t, out, "B")), 1e-9)
	assert.InDelta(t, 0.45, rootDistance(out, tip(t, out, "E")), 1e-9)
}

func TestNewickWrite(t *testing.T) {
	idx := mustIndex(t, "((A:1,B:1):1,(C:1,D:1):1);")
	var buf bytes.Buffer
	require.NoError(t, WriteNewick(&buf, idx.Tree()))
	out := buf.String()
	assert.True(t, strings.HasSuffix(out, ";\n"))
	assert.False(t, strings.HasPrefix(out, "[&"))

	back, err := ParseNewick(out)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, back.AllTipNames())
}

// rootDistance sums the edge lengths from the root down to n.
func rootDistance(idx *Index, n *tree.Node) float64 {
	d := 0.0
	for ; n != nil; n = idx.Parent(n) {
		if l, ok := idx.Length(n); ok {
			d += l
		}
	}
	return d
}
