package dedup

import (
	"fmt"
	"slices"

	"github.com/evolbioinfo/gotree/tree"
	"golang.org/x/sync/errgroup"

	"github.com/jsdoublel/njreestimate/internal/phylo"
	"github.com/jsdoublel/njreestimate/internal/seqs"
)

type candidate struct {
	node  *tree.Node
	count int
	name  string // smallest tip name in the clade
}

func (c candidate) better(o *candidate) bool {
	return o == nil || c.count > o.count || (c.count == o.count && c.name < o.name)
}

// SelectRepresentatives picks one tip per sequence class. Singleton classes
// are their own representative. For larger classes the reference tree,
// restricted to the sequenced tips, is searched for the largest clade made
// only of class members; its smallest tip name becomes the representative
// (ties between clades of equal size go to the smallest name). Clades are
// compared by their smallest tip, not by the member the search started from,
// so the result does not depend on input order. Classes are resolved on up to
// nprocs goroutines.
func SelectRepresentatives(ref *phylo.Index, groups seqs.Groups, nprocs int) (*RepresentativeSet, error) {
	working, err := phylo.Extract(ref, groups.AllNames())
	if err != nil {
		return nil, fmt.Errorf("reference tree: %w", err)
	}
	src, err := phylo.NewIndex(working)
	if err != nil {
		return nil, fmt.Errorf("reference tree: %w", err)
	}
	set := &RepresentativeSet{Source: src, entries: make([]Entry, groups.Len())}
	var g errgroup.Group
	g.SetLimit(max(nprocs, 1))
	for i, class := range groups.Classes() {
		if len(class.Names) == 1 {
			set.entries[i] = Entry{Name: class.Names[0], Sequence: class.Sequence}
			continue
		}
		g.Go(func() error {
			rec, err := selectClass(src, class.Names)
			if err != nil {
				return err
			}
			set.entries[i] = Entry{Name: rec.Representative, Sequence: class.Sequence, Dup: rec}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}

func selectClass(idx *phylo.Index, members []string) (*DuplicateRecord, error) {
	group, err := idx.Set(members...)
	if err != nil {
		return nil, err
	}
	if span := idx.MRCA(group); idx.TipSet(span).Count() == group.Count() {
		return newRecord(idx, span, members), nil
	}
	unclaimed := group.Clone()
	var best *candidate
	for _, name := range members {
		leaf, _ := idx.Tip(name)
		if !unclaimed.IsSuperSet(idx.TipSet(leaf)) {
			continue // absorbed by an earlier clade
		}
		clade := leaf
		for p := idx.Parent(clade); p != nil && unclaimed.IsSuperSet(idx.TipSet(p)); p = idx.Parent(p) {
			clade = p
		}
		unclaimed.InPlaceDifference(idx.TipSet(clade))
		c := candidate{node: clade, count: int(idx.TipSet(clade).Count()), name: slices.Min(idx.TipNames(clade))}
		if c.better(best) {
			best = &c
		}
	}
	return newRecord(idx, best.node, members), nil
}

func newRecord(idx *phylo.Index, clade *tree.Node, members []string) *DuplicateRecord {
	inside := idx.TipNames(clade)
	rec := &DuplicateRecord{
		Representative: slices.Min(inside),
		Clade:          clade,
		Count:          len(inside),
		Members:        members,
	}
	for _, name := range members {
		if !slices.Contains(inside, name) {
			rec.Outside = append(rec.Outside, name)
		}
	}
	return rec
}
