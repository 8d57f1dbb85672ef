// Package dedup collapses tips with identical sequences to one representative
// each before tree inference, and restores them afterwards.
package dedup

import (
	"errors"

	"github.com/evolbioinfo/gotree/tree"

	"github.com/jsdoublel/njreestimate/internal/phylo"
	"github.com/jsdoublel/njreestimate/internal/seqs"
)

var ErrMissingRepresentative = errors.New("representative missing from inferred tree")

// DuplicateRecord describes how a class of identical tips collapses onto its
// representative.
type DuplicateRecord struct {
	Representative string
	Clade          *tree.Node // maximal identical clade, in RepresentativeSet.Source
	Count          int        // tips under Clade
	Members        []string   // whole class, input order
	Outside        []string   // members not under Clade
}

type Entry struct {
	Name     string
	Sequence string
	Dup      *DuplicateRecord // nil for singleton classes
}

// RepresentativeSet lists one entry per sequence class, in class order.
type RepresentativeSet struct {
	Source  *phylo.Index // reference restricted to sequenced tips
	entries []Entry
}

func (s *RepresentativeSet) Entries() []Entry { return s.entries }

func (s *RepresentativeSet) Len() int { return len(s.entries) }

// Names returns the representative tip names.
func (s *RepresentativeSet) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	return names
}

// Records returns one sequence per representative.
func (s *RepresentativeSet) Records() []seqs.Record {
	records := make([]seqs.Record, len(s.entries))
	for i, e := range s.entries {
		records[i] = seqs.Record{Name: e.Name, Sequence: e.Sequence}
	}
	return records
}
