package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/go-seqtag/chunk"
	"github.com/jamesainslie/go-seqtag/internal/bench"
	"github.com/jamesainslie/go-seqtag/internal/dataset"
	"github.com/jamesainslie/go-seqtag/internal/report"
	"github.com/jamesainslie/go-seqtag/internal/runlog"
)

func newTagCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tag TEXT...",
		Short: "Segment and tag text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := g.open(g.model)
			if err != nil {
				return err
			}
			defer func() { _ = t.Close() }()

			out := cmd.OutOrStdout()
			for _, text := range args {
				words, err := t.Tag(cmd.Context(), text)
				if err != nil {
					return err
				}
				parts := make([]string, len(words))
				for i, w := range words {
					parts[i] = w.Text + "/" + w.Type
				}
				fmt.Fprintln(out, strings.Join(parts, " "))
			}
			return nil
		},
	}
}

// evalFlags are shared by eval and compare.
type evalFlags struct {
	data      string
	pattern   string
	batchSize int
	workers   int
	history   string
}

func (e *evalFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&e.data, "data", "", "labeled file or directory (required)")
	f.StringVar(&e.pattern, "pattern", "*", "glob for files when --data is a directory")
	f.IntVar(&e.batchSize, "batch-size", bench.DefaultConfig().BatchSize, "samples per evaluation batch")
	f.IntVar(&e.workers, "workers", 0, "concurrent batches (default: pool size)")
	f.StringVar(&e.history, "history", "", "record runs in this SQLite database")
	_ = cmd.MarkFlagRequired("data")
}

func (e *evalFlags) config(g *globalFlags) bench.Config {
	cfg := bench.DefaultConfig()
	cfg.BatchSize = e.batchSize
	cfg.Workers = e.workers
	cfg.Logger = g.logger
	return cfg
}

func (e *evalFlags) load(g *globalFlags) ([]dataset.Sample, error) {
	samples, err := dataset.Load(e.data, e.pattern)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples found in %s", e.data)
	}
	g.logger.Info("loaded dataset", "path", e.data, "samples", len(samples))
	return samples, nil
}

// record appends successful results to the history database, if one is set.
func (e *evalFlags) record(ctx context.Context, g *globalFlags, results []bench.ModelResult) error {
	if e.history == "" {
		return nil
	}
	scheme, err := chunk.ParseScheme(g.scheme)
	if err != nil {
		return err
	}

	store, err := runlog.Open(e.history)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		run, err := store.Record(ctx, runlog.Run{
			Model:   r.Model,
			Dataset: filepath.Clean(e.data),
			Scheme:  scheme.String(),
			Samples: r.Result.Samples,
			Counts:  r.Result.Totals,
			Scores:  r.Result.Scores,
		})
		if err != nil {
			return err
		}
		g.logger.Debug("recorded run", "id", run.ID, "model", run.Model)
	}
	return nil
}

func newEvalCmd(g *globalFlags) *cobra.Command {
	var (
		e        evalFlags
		jsonOut  bool
		perBatch bool
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a model on a labeled corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			samples, err := e.load(g)
			if err != nil {
				return err
			}

			t, err := g.open(g.model)
			if err != nil {
				return err
			}
			defer func() { _ = t.Close() }()

			res, err := bench.Run(cmd.Context(), t, samples, e.config(g))
			if err != nil {
				return err
			}

			if err := e.record(cmd.Context(), g, []bench.ModelResult{{Model: g.model, Result: res}}); err != nil {
				return err
			}

			if jsonOut {
				return report.WriteJSON(cmd.OutOrStdout(), g.model, res)
			}
			return report.WriteText(cmd.OutOrStdout(), res, perBatch)
		},
	}

	e.register(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "write the result as JSON")
	cmd.Flags().BoolVar(&perBatch, "per-batch", false, "include a row per batch")
	return cmd
}

func newCompareCmd(g *globalFlags) *cobra.Command {
	var (
		e      evalFlags
		models []string
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Evaluate several models on the same corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			samples, err := e.load(g)
			if err != nil {
				return err
			}

			open := func(name string) (bench.ClosableTagger, error) {
				t, err := g.open(name)
				if err != nil {
					return nil, err
				}
				return t, nil
			}

			results := bench.Compare(cmd.Context(), models, open, samples, e.config(g))
			if err := e.record(cmd.Context(), g, results); err != nil {
				return err
			}
			if err := report.WriteComparison(cmd.OutOrStdout(), results); err != nil {
				return err
			}

			var errs []error
			for _, r := range results {
				if r.Err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", r.Model, r.Err))
				}
			}
			return errors.Join(errs...)
		},
	}

	e.register(cmd)
	cmd.Flags().StringSliceVar(&models, "models", nil, "comma-separated model paths (required)")
	_ = cmd.MarkFlagRequired("models")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var (
		db    string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded evaluation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := runlog.Open(db)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tMODEL\tDATASET\tSCHEME\tPRECISION\tRECALL\tF1")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.4f\t%.4f\t%.4f\n",
					r.CreatedAt.Local().Format(time.DateTime), r.Model, r.Dataset, r.Scheme,
					r.Scores.Precision, r.Scores.Recall, r.Scores.F1)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&db, "db", "seqtag-runs.db", "SQLite database written by --history")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}
