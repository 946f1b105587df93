package runlog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamesainslie/go-seqtag/chunk"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first, err := s.Record(ctx, Run{
		Model:     "a.onnx",
		Dataset:   "dev",
		Scheme:    "IOB",
		Samples:   3,
		Counts:    chunk.Counts{Infer: 4, Label: 4, Correct: 3},
		Scores:    chunk.Scores{Precision: 0.75, Recall: 0.75, F1: 0.75},
		CreatedAt: base,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected generated ID")
	}

	second, err := s.Record(ctx, Run{
		Model:     "b.onnx",
		Dataset:   "dev",
		Scheme:    "IOB",
		CreatedAt: base.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("expected distinct IDs")
	}

	runs, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second.ID || runs[1].ID != first.ID {
		t.Fatalf("expected newest first, got %s then %s", runs[0].Model, runs[1].Model)
	}

	got := runs[1]
	if got.Model != "a.onnx" || got.Samples != 3 {
		t.Errorf("unexpected run: %+v", got)
	}
	if got.Counts != first.Counts || got.Scores != first.Scores {
		t.Errorf("counts/scores = %+v %+v, want %+v %+v", got.Counts, got.Scores, first.Counts, first.Scores)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, base)
	}
}

func TestList_Limit(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := s.Record(ctx, Run{Model: "m", Dataset: "d", Scheme: "IOB"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runs, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	if _, err := s.List(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestRecord_KeepsGivenID(t *testing.T) {
	s := tempStore(t)
	run, err := s.Record(context.Background(), Run{ID: "fixed", Model: "m", Dataset: "d", Scheme: "IOE"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if run.ID != "fixed" {
		t.Errorf("ID = %q, want fixed", run.ID)
	}

	if _, err := s.Record(context.Background(), Run{ID: "fixed", Model: "m", Dataset: "d", Scheme: "IOE"}); err == nil {
		t.Error("expected duplicate ID to fail")
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.Record(context.Background(), Run{Model: "m", Dataset: "d", Scheme: "IOB"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	runs, err := s.List(context.Background(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("List = %v, %v", runs, err)
	}
}
