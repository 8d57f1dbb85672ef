package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jsdoublel/njreestimate/internal/fasttree"
	"github.com/jsdoublel/njreestimate/internal/reestimate"
)

type args struct {
	treeFile   string
	refFile    string
	outputFile string
	protein    bool
	fastTree   string
	toolsDir   string
	logFile    string
	threads    int
	echo       bool
	quiet      bool
}

func main() {
	// optional, environment variables are used as is when there is no .env
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var a args
	cmd := &cobra.Command{
		Use:   "njreestimate",
		Short: "Re-estimate reference tree branch lengths with FastTree after collapsing duplicate sequences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(a, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	addFlags(cmd.Flags(), &a)
	for _, name := range []string{"tree", "ref", "output"} {
		cmd.MarkFlagRequired(name)
	}
	return cmd
}

func addFlags(flags *pflag.FlagSet, a *args) {
	flags.StringVarP(&a.treeFile, "tree", "t", "", "path to the reference tree (newick)")
	flags.StringVarP(&a.refFile, "ref", "s", "", "path to the reference alignment (FASTA)")
	flags.StringVarP(&a.outputFile, "output", "o", "", "path for the output newick file")
	flags.BoolVarP(&a.protein, "protein", "p", false, "input sequences are protein sequences")
	flags.StringVar(&a.fastTree, "fasttree", os.Getenv("NJREESTIMATE_FASTTREE"), "FastTree executable (overrides --tools)")
	flags.StringVar(&a.toolsDir, "tools", defaultToolsDir(), "directory holding the bundled FastTree binaries")
	flags.StringVar(&a.logFile, "log", "", "keep the FastTree log in this file")
	flags.IntVar(&a.threads, "threads", runtime.NumCPU(), "number of threads used to select representatives")
	flags.BoolVar(&a.echo, "echo", false, "print the tree inferred by FastTree to stdout")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "do not log progress")
}

func defaultToolsDir() string {
	if dir := os.Getenv("NJREESTIMATE_TOOLS"); dir != "" {
		return dir
	}
	exe, err := os.Executable()
	if err != nil {
		return "tools"
	}
	return filepath.Join(filepath.Dir(exe), "tools")
}

func run(a args, stdout, stderr io.Writer) error {
	exec := a.fastTree
	if exec == "" {
		var err error
		if exec, err = fasttree.Locate(a.toolsDir, runtime.GOOS); err != nil {
			return err
		}
	}
	logger := log.New(stderr, "njreestimate: ", log.LstdFlags)
	if a.quiet {
		logger.SetOutput(io.Discard)
	}
	opts := reestimate.Options{
		TreePath:   a.treeFile,
		SeqPath:    a.refFile,
		OutputPath: a.outputFile,
		Threads:    a.threads,
		Logger:     logger,
	}
	if a.echo {
		opts.Echo = stdout
	}
	runner := &fasttree.Runner{
		Exec:    exec,
		Protein: a.protein,
		LogPath: a.logFile,
		Stderr:  stderr,
		Logger:  logger,
	}
	if err := reestimate.Run(opts, runner); err != nil {
		return fmt.Errorf("njreestimate: %w", err)
	}
	return nil
}
