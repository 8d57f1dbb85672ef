package fasttree

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evolbioinfo/gotree/tree"

	"github.com/jsdoublel/njreestimate/internal/dedup"
	"github.com/jsdoublel/njreestimate/internal/phylo"
	"github.com/jsdoublel/njreestimate/internal/seqs"
)

// Runner calls a FastTree executable. FastTree's diagnostics go to Stderr
// (os.Stderr if nil).
type Runner struct {
	Exec    string
	Protein bool
	LogPath string // keep FastTree's -log file here, temporary if empty
	Stderr  io.Writer
	Logger  *log.Logger
}

func (r *Runner) logf(format string, v ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, v...)
	}
}

// Args returns the FastTree command line for a constraint tree file.
func (r *Runner) Args(intree, logPath string) []string {
	args := []string{"-nosupport", "-nome", "-noml", "-log", logPath, "-intree", intree}
	if !r.Protein {
		args = append(args, "-nt")
	}
	return args
}

// Infer computes branch lengths for the representatives of set with
// FastTree, using constraint as starting topology. The call blocks until
// FastTree exits. Any failure, including output that is not a tree over the
// constraint's tips, is reported as ErrInferenceFailure.
func (r *Runner) Infer(constraint *tree.Tree, set *dedup.RepresentativeSet) (*tree.Tree, error) {
	dir, err := os.MkdirTemp("", "njreestimate-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	intree := filepath.Join(dir, "constraint.nwk")
	if err := phylo.WriteNewickFile(intree, constraint); err != nil {
		return nil, err
	}
	var input bytes.Buffer
	if err := seqs.WriteFasta(&input, set.Records()); err != nil {
		return nil, err
	}
	logPath := r.LogPath
	if logPath == "" {
		logPath = filepath.Join(dir, "fasttree.log")
	}

	var stdout bytes.Buffer
	cmd := exec.Command(r.Exec, r.Args(intree, logPath)...)
	cmd.Stdin = &input
	cmd.Stdout = &stdout
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	r.logf("running %s on %d sequences", r.Exec, set.Len())
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInferenceFailure, filepath.Base(r.Exec), err)
	}
	return checkOutput(stdout.String(), constraint)
}

// checkOutput parses FastTree's stdout and makes sure it is a tree over the
// same tips as the constraint.
func checkOutput(out string, constraint *tree.Tree) (*tree.Tree, error) {
	nwk := strings.TrimSpace(out)
	if nwk == "" {
		return nil, fmt.Errorf("%w: empty output", ErrInferenceFailure)
	}
	if !strings.HasPrefix(nwk, "(") || !strings.HasSuffix(nwk, ";") {
		return nil, fmt.Errorf("%w: output is not a newick tree: %q", ErrInferenceFailure, excerpt(nwk))
	}
	inferred, err := phylo.ParseNewick(nwk)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInferenceFailure, err)
	}
	got, err := phylo.NewIndex(inferred)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInferenceFailure, err)
	}
	want, err := phylo.NewIndex(constraint)
	if err != nil {
		return nil, err
	}
	if !slices.Equal(got.SortedNames(), want.SortedNames()) {
		return nil, fmt.Errorf("%w: inferred tree has %d tips, expected %d matching the constraint",
			ErrInferenceFailure, got.NbTips(), want.NbTips())
	}
	return inferred, nil
}

func excerpt(s string) string {
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
