// Package report renders evaluation results for people and machines.
package report

import (
	"fmt"
	"io"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jamesainslie/go-seqtag/chunk"
	"github.com/jamesainslie/go-seqtag/internal/bench"
)

// WriteText writes a per-batch table followed by the cumulative scores.
func WriteText(w io.Writer, res *bench.Result, perBatch bool) error {
	var b strings.Builder

	if perBatch && len(res.Batches) > 0 {
		fmt.Fprintf(&b, "%-6s %-7s %-7s %-7s %-9s %-8s %-8s\n",
			"Batch", "Infer", "Label", "Correct", "Precision", "Recall", "F1")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		for _, br := range res.Batches {
			fmt.Fprintf(&b, "%-6d %-7d %-7d %-7d %-9.4f %-8.4f %-8.4f\n",
				br.Index, br.Counts.Infer, br.Counts.Label, br.Counts.Correct,
				br.Scores.Precision, br.Scores.Recall, br.Scores.F1)
		}
		b.WriteString(strings.Repeat("-", 60) + "\n")
	}

	fmt.Fprintf(&b, "Precision: %.4f  Recall: %.4f  F1: %.4f\n",
		res.Scores.Precision, res.Scores.Recall, res.Scores.F1)
	fmt.Fprintf(&b, "(samples: %d, tokens: %d, infer: %d, label: %d, correct: %d)\n",
		res.Samples, res.Tokens, res.Totals.Infer, res.Totals.Label, res.Totals.Correct)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteComparison writes one line per model, best first.
func WriteComparison(w io.Writer, results []bench.ModelResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-40s %-9s %-8s %-8s\n", "Model", "Precision", "Recall", "F1")
	b.WriteString(strings.Repeat("-", 68) + "\n")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(&b, "%-40s error: %v\n", r.Model, r.Err)
			continue
		}
		s := r.Result.Scores
		fmt.Fprintf(&b, "%-40s %-9.4f %-8.4f %-8.4f\n", r.Model, s.Precision, s.Recall, s.F1)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Struct converts a result into a protobuf Struct with the score names used
// by chunk.Evaluator.
func Struct(model string, res *bench.Result) (*structpb.Struct, error) {
	names := chunk.NewEvaluator().Name()

	scores := make(map[string]any, len(names))
	for i, v := range res.Scores.Values() {
		scores[names[i]] = v
	}

	batches := make([]any, 0, len(res.Batches))
	for _, br := range res.Batches {
		batch := map[string]any{
			"index":   br.Index,
			"infer":   br.Counts.Infer,
			"label":   br.Counts.Label,
			"correct": br.Counts.Correct,
		}
		for i, v := range br.Scores.Values() {
			batch[names[i]] = v
		}
		batches = append(batches, batch)
	}

	return structpb.NewStruct(map[string]any{
		"model":   model,
		"samples": res.Samples,
		"tokens":  res.Tokens,
		"totals": map[string]any{
			"infer":   res.Totals.Infer,
			"label":   res.Totals.Label,
			"correct": res.Totals.Correct,
		},
		"scores":  scores,
		"batches": batches,
	})
}

// WriteJSON writes the result as indented JSON.
func WriteJSON(w io.Writer, model string, res *bench.Result) error {
	s, err := Struct(model, res)
	if err != nil {
		return fmt.Errorf("building report: %w", err)
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}
