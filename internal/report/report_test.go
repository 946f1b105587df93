package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jamesainslie/go-seqtag/chunk"
	"github.com/jamesainslie/go-seqtag/internal/bench"
)

func testResult() *bench.Result {
	return &bench.Result{
		Samples: 3,
		Tokens:  8,
		Batches: []bench.BatchResult{
			{Index: 0, Counts: chunk.Counts{Infer: 2, Label: 2, Correct: 2}, Scores: chunk.Scores{Precision: 1, Recall: 1, F1: 1}},
			{Index: 1, Counts: chunk.Counts{Infer: 2, Label: 2, Correct: 1}, Scores: chunk.Scores{Precision: 0.5, Recall: 0.5, F1: 0.5}},
		},
		Totals: chunk.Counts{Infer: 4, Label: 4, Correct: 3},
		Scores: chunk.Scores{Precision: 0.75, Recall: 0.75, F1: 0.75},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, testResult(), true); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Batch",
		"Precision: 0.7500  Recall: 0.7500  F1: 0.7500",
		"infer: 4, label: 4, correct: 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteText_SummaryOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, testResult(), false); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if strings.Contains(buf.String(), "Batch") {
		t.Errorf("did not expect batch table:\n%s", buf.String())
	}
}

func TestWriteComparison(t *testing.T) {
	results := []bench.ModelResult{
		{Model: "a.onnx", Result: testResult()},
		{Model: "b.onnx", Err: errors.New("cannot load")},
	}

	var buf bytes.Buffer
	if err := WriteComparison(&buf, results); err != nil {
		t.Fatalf("WriteComparison failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "a.onnx") || !strings.Contains(out, "0.7500") {
		t.Errorf("missing a.onnx scores:\n%s", out)
	}
	if !strings.Contains(out, "error: cannot load") {
		t.Errorf("missing b.onnx error:\n%s", out)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, "lac.onnx", testResult()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var s structpb.Struct
	if err := protojson.Unmarshal(buf.Bytes(), &s); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if got := s.Fields["model"].GetStringValue(); got != "lac.onnx" {
		t.Errorf("model = %q", got)
	}
	scores := s.Fields["scores"].GetStructValue()
	for _, name := range []string{"precision", "recall", "F1"} {
		if got := scores.Fields[name].GetNumberValue(); got != 0.75 {
			t.Errorf("scores.%s = %v, want 0.75", name, got)
		}
	}
	batches := s.Fields["batches"].GetListValue().GetValues()
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if got := batches[1].GetStructValue().Fields["correct"].GetNumberValue(); got != 1 {
		t.Errorf("batches[1].correct = %v, want 1", got)
	}
}
