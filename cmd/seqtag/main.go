// Command seqtag tags text with an ONNX sequence tagging model and evaluates
// models against labeled corpora.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	seqtag "github.com/jamesainslie/go-seqtag"
	"github.com/jamesainslie/go-seqtag/chunk"
)

// Set by the build via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	model     string
	vocab     string
	scheme    string
	exclude   []string
	poolSize  int
	maxSeqLen int
	verbose   bool

	logger *slog.Logger
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// options builds Tagger options from the flags.
func (g *globalFlags) options() ([]seqtag.Option, error) {
	scheme, err := chunk.ParseScheme(g.scheme)
	if err != nil {
		return nil, err
	}
	opts := []seqtag.Option{
		seqtag.WithScheme(scheme),
		seqtag.WithLogger(g.logger),
	}
	if len(g.exclude) > 0 {
		opts = append(opts, seqtag.WithExcludedChunkTypes(g.exclude...))
	}
	if g.poolSize > 0 {
		opts = append(opts, seqtag.WithPoolSize(g.poolSize))
	}
	if g.maxSeqLen > 0 {
		opts = append(opts, seqtag.WithMaxSeqLen(g.maxSeqLen))
	}
	return opts, nil
}

// open loads the model at path with the shared vocabulary and options.
func (g *globalFlags) open(path string) (*seqtag.Tagger, error) {
	opts, err := g.options()
	if err != nil {
		return nil, err
	}
	return seqtag.New(path, g.vocab, opts...)
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "seqtag",
		Short:         "Tag text and evaluate sequence tagging models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if g.verbose {
				level = slog.LevelDebug
			}
			g.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.model, "model", envOr("SEQTAG_MODEL", "model.onnx"), "path to ONNX model file ($SEQTAG_MODEL)")
	pf.StringVar(&g.vocab, "vocab", envOr("SEQTAG_VOCAB", "conf"), "directory with word.dic, tag.dic and q2b.dic ($SEQTAG_VOCAB)")
	pf.StringVar(&g.scheme, "scheme", chunk.IOB.String(), "tagging scheme: IOB, IOE, IOBES or plain")
	pf.StringSliceVar(&g.exclude, "exclude", nil, "chunk types left out of evaluation")
	pf.IntVar(&g.poolSize, "pool-size", 0, "number of inference sessions (default: number of CPUs)")
	pf.IntVar(&g.maxSeqLen, "max-seq-len", 0, "longest row the model sees at once (default 512)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newTagCmd(g),
		newEvalCmd(g),
		newCompareCmd(g),
		newHistoryCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(),
		fang.WithVersion(version+" ("+date+")"),
		fang.WithCommit(commit),
	); err != nil {
		stop()
		os.Exit(1)
	}
}
