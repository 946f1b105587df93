package seqtag

import (
	"log/slog"
	"runtime"

	"github.com/jamesainslie/go-seqtag/chunk"
)

// Option configures a Tagger.
type Option func(*config)

type config struct {
	poolSize      int
	maxSeqLen     int
	batchSize     int
	scheme        chunk.Scheme
	excludedTypes []string
	logger        *slog.Logger
}

func defaultConfig() config {
	return config{
		poolSize:  runtime.NumCPU(),
		maxSeqLen: 512,
		batchSize: 16,
		scheme:    chunk.IOB,
		logger:    slog.Default(),
	}
}

// WithPoolSize sets the ONNX session pool size (default: runtime.NumCPU()).
func WithPoolSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithMaxSeqLen sets the longest row passed to the model in one window
// (default: 512). Longer inputs are decoded in consecutive windows that do
// not overlap, and each window is decoded on its own, so a chunk crossing a
// window edge comes back as two chunks. Set this to at least the longest
// input when evaluating.
func WithMaxSeqLen(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxSeqLen = n
		}
	}
}

// WithBatchSize sets how many rows Decode sends to the model per call
// (default: 16).
func WithBatchSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithScheme sets the chunk tagging scheme of the model's labels (default: IOB).
func WithScheme(s chunk.Scheme) Option {
	return func(c *config) {
		c.scheme = s
	}
}

// WithExcludedChunkTypes names chunk types ignored by the tagger's chunk counter.
func WithExcludedChunkTypes(types ...string) Option {
	return func(c *config) {
		c.excludedTypes = append(c.excludedTypes, types...)
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
