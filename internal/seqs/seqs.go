// Package seqs reads reference sequences and groups tips carrying identical
// sequences.
package seqs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/evolbioinfo/goalign/align"
	"github.com/evolbioinfo/goalign/io/fasta"
)

// Fewer distinct sequences than this cannot give an informative unrooted
// topology.
const MinDistinct = 4

var (
	ErrDegenerateInput = errors.New("too few distinct sequences")
	ErrDuplicateName   = errors.New("duplicate sequence name")
)

type Record struct {
	Name     string
	Sequence string
}

// Tips sharing one sequence.
type Class struct {
	Sequence string
	Names    []string
}

// Groups partitions tip names by sequence content. Classes are kept in order
// of first occurrence of their sequence.
type Groups struct {
	classes []Class
}

func (g Groups) Len() int { return len(g.classes) }

func (g Groups) Classes() []Class { return g.classes }

// AllNames returns every tip name, class by class.
func (g Groups) AllNames() []string {
	names := make([]string, 0)
	for _, c := range g.classes {
		names = append(names, c.Names...)
	}
	return names
}

// Duplicated counts the classes with more than one tip.
func (g Groups) Duplicated() int {
	count := 0
	for _, c := range g.classes {
		if len(c.Names) > 1 {
			count++
		}
	}
	return count
}

// Group builds the equivalence classes of records. Returns ErrDegenerateInput
// if there are fewer than MinDistinct distinct sequences.
func Group(records iter.Seq[Record]) (Groups, error) {
	byContent := make(map[string]int)
	seen := make(map[string]bool)
	var g Groups
	for r := range records {
		if seen[r.Name] {
			return Groups{}, fmt.Errorf("%w: %q", ErrDuplicateName, r.Name)
		}
		seen[r.Name] = true
		if i, ok := byContent[r.Sequence]; ok {
			g.classes[i].Names = append(g.classes[i].Names, r.Name)
			continue
		}
		byContent[r.Sequence] = len(g.classes)
		g.classes = append(g.classes, Class{Sequence: r.Sequence, Names: []string{r.Name}})
	}
	if len(g.classes) < MinDistinct {
		return Groups{}, fmt.Errorf("%w: %d distinct among %d sequences, need at least %d",
			ErrDegenerateInput, len(g.classes), len(seen), MinDistinct)
	}
	return g, nil
}

// Records iterates over the sequences of sb in file order.
func Records(sb align.SeqBag) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, seq := range sb.Sequences() {
			if !yield(Record{Name: seq.Name(), Sequence: seq.Sequence()}) {
				return
			}
		}
	}
}

// ReadFile parses a FASTA file. Sequences are not required to have the same
// length. A name given to more than one sequence is ErrDuplicateName.
func ReadFile(path string) (align.SeqBag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := checkNames(data); err != nil {
		return nil, fmt.Errorf("could not read sequences %s: %w", path, err)
	}
	sb, err := fasta.NewParser(bytes.NewReader(data)).ParseUnalign()
	if err != nil {
		return nil, fmt.Errorf("could not read sequences %s: %w", path, err)
	}
	return sb, nil
}

// checkNames fails on repeated header names, which the goalign parser would
// otherwise rename with a numeric suffix.
func checkNames(data []byte) error {
	seen := make(map[string]bool)
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) == 0 || line[0] != '>' {
			continue
		}
		name := strings.TrimSpace(string(line[1:]))
		if seen[name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		seen[name] = true
	}
	return nil
}

// WriteFasta writes records as a FASTA alignment.
func WriteFasta(w io.Writer, records []Record) error {
	out := align.NewAlign(align.UNKNOWN)
	for _, r := range records {
		if err := out.AddSequence(r.Name, r.Sequence, ""); err != nil {
			return fmt.Errorf("could not add sequence %s: %w", r.Name, err)
		}
	}
	_, err := io.WriteString(w, fasta.WriteAlignment(out))
	return err
}
