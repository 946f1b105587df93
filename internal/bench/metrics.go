// Package bench evaluates sequence tagging models against labeled corpora
// with chunk-level precision, recall and F1.
package bench

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/go-seqtag/chunk"
	"github.com/jamesainslie/go-seqtag/internal/dataset"
	"github.com/jamesainslie/go-seqtag/vocab"
)

// Tagger is the model surface an evaluation run needs. *seqtag.Tagger
// satisfies it.
type Tagger interface {
	Decode(ctx context.Context, rows [][]int64) ([][]int64, error)
	Vocab() *vocab.Vocab
	Counter() *chunk.Counter
	PoolSize() int
}

// Config holds evaluation parameters.
type Config struct {
	BatchSize int
	Workers   int // concurrent batches; 0 means the tagger's pool size
	Logger    *slog.Logger
}

// DefaultConfig returns default evaluation configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize: 32,
		Logger:    slog.Default(),
	}
}

// BatchResult holds the counts and scores of one batch.
type BatchResult struct {
	Index  int
	Counts chunk.Counts
	Scores chunk.Scores
}

// Result holds an evaluation pass over a corpus.
type Result struct {
	Samples int
	Tokens  int
	Batches []BatchResult
	Totals  chunk.Counts
	Scores  chunk.Scores
}

// Run decodes samples batch by batch and evaluates the decoded chunks against
// the gold labels. Batches are decoded concurrently; their counts are fed to
// a single evaluator in batch order.
func Run(ctx context.Context, t Tagger, samples []dataset.Sample, cfg Config) (*Result, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = max(t.PoolSize(), 1)
	}

	batches := dataset.Batches(samples, cfg.BatchSize)
	counts := make([]chunk.Counts, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, batch := range batches {
		g.Go(func() error {
			c, err := CountBatch(gctx, t, batch)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			counts[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	eval := chunk.NewEvaluator()
	res := &Result{
		Samples: len(samples),
		Tokens:  lo.SumBy(samples, func(s dataset.Sample) int { return s.Len() }),
		Batches: make([]BatchResult, 0, len(batches)),
	}
	for i, c := range counts {
		scores := eval.Update(c)
		logger.Debug("batch evaluated", "batch", i,
			"infer", c.Infer, "label", c.Label, "correct", c.Correct,
			"precision", scores.Precision, "recall", scores.Recall, "f1", scores.F1)
		res.Batches = append(res.Batches, BatchResult{Index: i, Counts: c, Scores: scores})
	}
	res.Totals = eval.Totals()
	res.Scores = eval.Accumulate()

	logger.Info("evaluation complete", "samples", res.Samples, "batches", len(batches),
		"precision", res.Scores.Precision, "recall", res.Scores.Recall, "f1", res.Scores.F1)

	return res, nil
}

// CountBatch decodes one batch and counts its chunks.
func CountBatch(ctx context.Context, t Tagger, batch []dataset.Sample) (chunk.Counts, error) {
	v := t.Vocab()
	words := lo.Map(batch, func(s dataset.Sample, _ int) []int64 { return v.TokenIDs(s.Tokens) })
	gold := lo.Map(batch, func(s dataset.Sample, _ int) []int64 { return v.LabelIDs(s.Labels) })
	lengths := lo.Map(batch, func(s dataset.Sample, _ int) int { return s.Len() })

	decoded, err := t.Decode(ctx, words)
	if err != nil {
		return chunk.Counts{}, fmt.Errorf("decoding: %w", err)
	}

	return t.Counter().Count(decoded, gold, lengths)
}
