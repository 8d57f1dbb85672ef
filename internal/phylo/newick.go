package phylo

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/evolbioinfo/gotree/io/newick"
	"github.com/evolbioinfo/gotree/tree"
)

// ParseNewick parses a single newick tree.
func ParseNewick(nwk string) (*tree.Tree, error) {
	tre, err := newick.NewParser(strings.NewReader(nwk)).Parse()
	if err != nil {
		return nil, fmt.Errorf("could not parse newick: %w", err)
	}
	return tre, nil
}

// ReadNewick reads the first tree of a newick file.
func ReadNewick(path string) (*tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tre, err := newick.NewParser(f).Parse()
	if err != nil {
		return nil, fmt.Errorf("could not parse newick file %s: %w", path, err)
	}
	return tre, nil
}

// Newick returns the newick string of tre without any rooting prefix.
func Newick(tre *tree.Tree) string {
	nwk := strings.TrimSpace(tre.Newick())
	for _, prefix := range []string{"[&R]", "[&U]", "[&r]", "[&u]"} {
		nwk = strings.TrimSpace(strings.TrimPrefix(nwk, prefix))
	}
	return nwk
}

func WriteNewick(w io.Writer, tre *tree.Tree) error {
	_, err := fmt.Fprintln(w, Newick(tre))
	return err
}

// WriteNewickFile writes tre to path, replacing any existing file.
func WriteNewickFile(path string, tre *tree.Tree) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not write file: %w", err)
	}
	if err := WriteNewick(f, tre); err != nil {
		f.Close()
		return fmt.Errorf("could not write file: %w", err)
	}
	return f.Close()
}
