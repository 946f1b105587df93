package chunk

// Metric is the interface shared by evaluation metrics that consume chunk counts.
type Metric interface {
	Reset()
	Update(c Counts) Scores
	Accumulate() Scores
	Name() []string
}

// Scores holds precision, recall and F1, each in [0, 1].
type Scores struct {
	Precision float64
	Recall    float64
	F1        float64
}

// Values returns the scores in the order given by Evaluator.Name.
func (s Scores) Values() []float64 {
	return []float64{s.Precision, s.Recall, s.F1}
}

// ScoresFor computes precision, recall and F1 from chunk counts.
// F1 is zero whenever no chunk was correct.
func ScoresFor(c Counts) Scores {
	var s Scores
	if c.Infer != 0 {
		s.Precision = float64(c.Correct) / float64(c.Infer)
	}
	if c.Label != 0 {
		s.Recall = float64(c.Correct) / float64(c.Label)
	}
	if c.Correct != 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}

var names = []string{"precision", "recall", "F1"}

// Evaluator accumulates chunk counts across batches of an evaluation pass.
// It is not safe for concurrent use.
type Evaluator struct {
	totals Counts
}

var _ Metric = (*Evaluator)(nil)

// NewEvaluator returns an Evaluator with zero totals.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Reset clears the running totals.
func (e *Evaluator) Reset() {
	e.totals = Counts{}
}

// Update adds a batch to the running totals and returns that batch's scores.
func (e *Evaluator) Update(c Counts) Scores {
	e.totals = e.totals.Add(c)
	return ScoresFor(c)
}

// Accumulate returns the scores over every batch since the last reset.
func (e *Evaluator) Accumulate() Scores {
	return ScoresFor(e.totals)
}

// Totals returns the running counts.
func (e *Evaluator) Totals() Counts {
	return e.totals
}

// Name returns the labels of the score components, in order.
func (e *Evaluator) Name() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}
