// Package reestimate runs the whole deduplicate, infer and reinflate pipeline.
package reestimate

import (
	"fmt"
	"io"
	"log"

	"github.com/evolbioinfo/gotree/tree"

	"github.com/jsdoublel/njreestimate/internal/dedup"
	"github.com/jsdoublel/njreestimate/internal/phylo"
	"github.com/jsdoublel/njreestimate/internal/seqs"
)

// Inferrer computes a tree over the representatives of set using constraint
// as topology. The returned tree must have the same tips as constraint.
type Inferrer interface {
	Infer(constraint *tree.Tree, set *dedup.RepresentativeSet) (*tree.Tree, error)
}

type Options struct {
	TreePath   string // reference tree (newick)
	SeqPath    string // reference alignment (FASTA)
	OutputPath string
	Threads    int
	Echo       io.Writer   // receives the raw inferred tree, if set
	Logger     *log.Logger // defaults to log.Default()
}

// Run reads the inputs, re-estimates the tree with inf and writes the result
// to opts.OutputPath.
func Run(opts Options, inf Inferrer) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	aln, err := seqs.ReadFile(opts.SeqPath)
	if err != nil {
		return err
	}
	groups, err := seqs.Group(seqs.Records(aln))
	if err != nil {
		return err
	}
	logger.Printf("%d sequences in %d distinct classes, %d with duplicates",
		len(groups.AllNames()), groups.Len(), groups.Duplicated())
	ref, err := phylo.ReadNewick(opts.TreePath)
	if err != nil {
		return err
	}
	final, err := Reestimate(ref, groups, inf, opts.Threads, opts.Echo, logger)
	if err != nil {
		return err
	}
	if err := phylo.WriteNewickFile(opts.OutputPath, final); err != nil {
		return err
	}
	logger.Printf("tree written to %s", opts.OutputPath)
	return nil
}

// Reestimate runs selection, reduction, inference and reinflation on an
// already grouped input.
func Reestimate(ref *tree.Tree, groups seqs.Groups, inf Inferrer, threads int, echo io.Writer, logger *log.Logger) (*tree.Tree, error) {
	refIdx, err := phylo.NewIndex(ref)
	if err != nil {
		return nil, fmt.Errorf("reference tree: %w", err)
	}
	if poly := phylo.Polytomies(refIdx); len(poly) > 0 {
		logger.Printf("reference tree has %d multifurcations, resolved left to right", len(poly))
	}
	set, err := dedup.SelectRepresentatives(refIdx, groups, threads)
	if err != nil {
		return nil, err
	}
	logger.Printf("selected %d representatives", set.Len())
	reduced, err := dedup.Reduce(refIdx, set)
	if err != nil {
		return nil, err
	}
	inferred, err := inf.Infer(reduced, set)
	if err != nil {
		return nil, err
	}
	if echo != nil {
		if err := phylo.WriteNewick(echo, inferred); err != nil {
			return nil, err
		}
	}
	final, err := dedup.Reinflate(inferred, set)
	if err != nil {
		return nil, err
	}
	logger.Printf("restored %d duplicated classes", groups.Duplicated())
	return final, nil
}
