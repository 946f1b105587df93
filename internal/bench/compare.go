package bench

import (
	"context"
	"sort"

	"github.com/jamesainslie/go-seqtag/internal/dataset"
)

// ClosableTagger is a Tagger that owns resources.
type ClosableTagger interface {
	Tagger
	Close() error
}

// Opener loads the model identified by name.
type Opener func(name string) (ClosableTagger, error)

// ModelResult holds the evaluation of one model in a comparison.
type ModelResult struct {
	Model  string
	Result *Result
	Err    error
}

// Compare evaluates each model on the same samples and returns results sorted
// by F1, then precision, descending. A model that fails to load or evaluate
// is reported with its error and sorted last.
func Compare(ctx context.Context, models []string, open Opener, samples []dataset.Sample, cfg Config) []ModelResult {
	results := make([]ModelResult, 0, len(models))

	for _, model := range models {
		if ctx.Err() != nil {
			results = append(results, ModelResult{Model: model, Err: ctx.Err()})
			continue
		}

		t, err := open(model)
		if err != nil {
			results = append(results, ModelResult{Model: model, Err: err})
			continue
		}

		res, err := Run(ctx, t, samples, cfg)
		_ = t.Close()
		results = append(results, ModelResult{Model: model, Result: res, Err: err})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if a.Err != nil {
			return false
		}
		if a.Result.Scores.F1 != b.Result.Scores.F1 {
			return a.Result.Scores.F1 > b.Result.Scores.F1
		}
		return a.Result.Scores.Precision > b.Result.Scores.Precision
	})

	return results
}
