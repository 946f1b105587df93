package chunk

import (
	"fmt"
)

// Counts holds chunk tallies for one batch or for a whole evaluation pass.
type Counts struct {
	Infer   int64 // chunks in the decoded labels
	Label   int64 // chunks in the gold labels
	Correct int64 // decoded chunks matching a gold chunk exactly
}

// Add returns the element-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		Infer:   c.Infer + o.Infer,
		Label:   c.Label + o.Label,
		Correct: c.Correct + o.Correct,
	}
}

// Config configures a Counter.
type Config struct {
	NumChunkTypes      int
	Scheme             Scheme
	ExcludedChunkTypes []int
}

// Counter counts inferred, gold and correct chunks for batches of label
// sequences. It is immutable after construction and safe for concurrent use.
type Counter struct {
	numChunkTypes int
	scheme        Scheme
	excluded      map[int]struct{}
}

// NewCounter validates cfg and returns a Counter.
func NewCounter(cfg Config) (*Counter, error) {
	if cfg.NumChunkTypes <= 0 {
		return nil, fmt.Errorf("%w: num chunk types %d", ErrInvalidConfig, cfg.NumChunkTypes)
	}
	if cfg.Scheme < IOB || cfg.Scheme > Plain {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, cfg.Scheme)
	}

	excluded := make(map[int]struct{}, len(cfg.ExcludedChunkTypes))
	for _, t := range cfg.ExcludedChunkTypes {
		excluded[t] = struct{}{}
	}

	return &Counter{
		numChunkTypes: cfg.NumChunkTypes,
		scheme:        cfg.Scheme,
		excluded:      excluded,
	}, nil
}

// NumChunkTypes returns the configured chunk type count.
func (c *Counter) NumChunkTypes() int { return c.numChunkTypes }

// Scheme returns the configured tagging scheme.
func (c *Counter) Scheme() Scheme { return c.scheme }

// OutsideID returns the label id that marks tokens outside any chunk.
func (c *Counter) OutsideID() int64 {
	return int64(c.numChunkTypes * c.scheme.NumTagTypes())
}

// Excluded reports whether chunks of type t are ignored when counting.
func (c *Counter) Excluded(t int) bool {
	_, ok := c.excluded[t]
	return ok
}

// Segments extracts the chunks of a single label sequence.
func (c *Counter) Segments(labels []int64) ([]Segment, error) {
	return Segments(labels, c.numChunkTypes, c.scheme)
}

// Count tallies chunks over a batch. Row i of inference is compared with row
// i of label. When lengths is non-nil only the first lengths[i] positions of
// row i are considered; otherwise each row is used in full.
func (c *Counter) Count(inference, label [][]int64, lengths []int) (Counts, error) {
	if len(inference) != len(label) {
		return Counts{}, fmt.Errorf("%w: %d inference rows, %d label rows", ErrLengthMismatch, len(inference), len(label))
	}
	if lengths != nil && len(lengths) != len(inference) {
		return Counts{}, fmt.Errorf("%w: %d lengths for %d rows", ErrLengthMismatch, len(lengths), len(inference))
	}

	var total Counts
	for i := range inference {
		n := len(label[i])
		if len(inference[i]) != n {
			return Counts{}, fmt.Errorf("%w: row %d has %d inferred and %d gold labels", ErrLengthMismatch, i, len(inference[i]), n)
		}
		if lengths != nil {
			if lengths[i] < 0 || lengths[i] > n {
				return Counts{}, fmt.Errorf("%w: row %d length %d outside [0, %d]", ErrLengthMismatch, i, lengths[i], n)
			}
			n = lengths[i]
		}

		seq, err := c.countSequence(inference[i][:n], label[i][:n])
		if err != nil {
			return Counts{}, fmt.Errorf("row %d: %w", i, err)
		}
		total = total.Add(seq)
	}

	return total, nil
}

func (c *Counter) countSequence(inference, label []int64) (Counts, error) {
	out, err := c.Segments(inference)
	if err != nil {
		return Counts{}, err
	}
	gold, err := c.Segments(label)
	if err != nil {
		return Counts{}, err
	}

	var counts Counts
	i, j := 0, 0
	for i < len(out) && j < len(gold) {
		if out[i] == gold[j] && !c.Excluded(out[i].Type) {
			counts.Correct++
		}
		switch {
		case out[i].End < gold[j].End:
			i++
		case out[i].End > gold[j].End:
			j++
		default:
			i++
			j++
		}
	}

	for _, s := range gold {
		if !c.Excluded(s.Type) {
			counts.Label++
		}
	}
	for _, s := range out {
		if !c.Excluded(s.Type) {
			counts.Infer++
		}
	}

	return counts, nil
}
