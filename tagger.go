package seqtag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/jamesainslie/go-seqtag/chunk"
	"github.com/jamesainslie/go-seqtag/inference"
	"github.com/jamesainslie/go-seqtag/vocab"
)

// padID fills positions past a row's length in a padded batch.
const padID = 0

// OutsideType is the Word.Type of characters outside every chunk.
const OutsideType = vocab.OutsideLabel

// Word is a tagged span of the input text.
type Word struct {
	Text  string
	Type  string
	Start int // byte offset in original text
	End   int // byte offset in original text
}

// decodeFunc runs the model over a row-major [batch, seqLen] block.
type decodeFunc func(ctx context.Context, words []int64, batch, seqLen int, lengths []int64) ([]int64, error)

// Tagger runs a BiGRU-CRF sequence tagging model exported to ONNX.
// It is safe for concurrent use.
type Tagger struct {
	vocab      *vocab.Vocab
	counter    *chunk.Counter
	chunkTypes []string
	pool       *inference.Pool
	decode     decodeFunc
	maxSeqLen  int
	batchSize  int
	logger     *slog.Logger
}

// New creates a Tagger from an ONNX model file and a vocabulary directory
// holding word.dic, tag.dic and optionally q2b.dic.
func New(modelPath, vocabDir string, opts ...Option) (*Tagger, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, err := os.Stat(modelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
		}
		return nil, fmt.Errorf("checking model file: %w", err)
	}

	v, err := vocab.Load(vocabDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVocabFailed, err)
	}

	t, err := newTagger(v, cfg, nil)
	if err != nil {
		return nil, err
	}

	pool, err := inference.NewPool(modelPath, cfg.poolSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	t.pool = pool
	t.decode = t.decodeWithPool

	return t, nil
}

func newTagger(v *vocab.Vocab, cfg config, decode decodeFunc) (*Tagger, error) {
	numTypes := chunk.NumChunkTypes(v.NumLabels(), cfg.scheme)
	chunkTypes := v.ChunkTypes(cfg.scheme.NumTagTypes())

	excluded := make([]int, 0, len(cfg.excludedTypes))
	for _, name := range cfg.excludedTypes {
		idx := slices.Index(chunkTypes, name)
		if idx < 0 {
			return nil, fmt.Errorf("%w: unknown chunk type %q", ErrInvalidOption, name)
		}
		excluded = append(excluded, idx)
	}

	counter, err := chunk.NewCounter(chunk.Config{
		NumChunkTypes:      numTypes,
		Scheme:             cfg.scheme,
		ExcludedChunkTypes: excluded,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	if counter.OutsideID() != v.OutsideID() {
		return nil, fmt.Errorf("%w: outside label has id %d, %v layout expects %d",
			ErrInvalidOption, v.OutsideID(), cfg.scheme, counter.OutsideID())
	}
	if err := checkLabelLayout(v, chunkTypes, cfg.scheme); err != nil {
		return nil, err
	}

	return &Tagger{
		vocab:      v,
		counter:    counter,
		chunkTypes: chunkTypes,
		decode:     decode,
		maxSeqLen:  cfg.maxSeqLen,
		batchSize:  cfg.batchSize,
		logger:     cfg.logger,
	}, nil
}

// checkLabelLayout verifies that every chunk type occupies one block of
// consecutive label ids holding the scheme's tags in order. Plain labels are
// one id per type and always line up.
func checkLabelLayout(v *vocab.Vocab, chunkTypes []string, s chunk.Scheme) error {
	if s == chunk.Plain {
		return nil
	}
	tags := s.TagNames()
	n := int64(len(tags))
	for id := int64(0); id < v.OutsideID(); id++ {
		label := v.Label(id)
		typ, tag := vocab.SplitLabel(label)
		wantType, wantTag := chunkTypes[id/n], tags[id%n]
		if typ != wantType || tag != wantTag {
			return fmt.Errorf("%w: label %d is %q, %v layout expects type %q with tag %q",
				ErrInvalidOption, id, label, s, wantType, wantTag)
		}
	}
	return nil
}

// Encode maps text to word ids, one per rune.
func (t *Tagger) Encode(text string) []int64 {
	return t.vocab.WordIDs(text)
}

// Tag splits text into tagged words.
func (t *Tagger) Tag(ctx context.Context, text string) ([]Word, error) {
	if text == "" {
		return nil, nil
	}

	ids := t.Encode(text)
	decoded, err := t.Decode(ctx, [][]int64{ids})
	if err != nil {
		return nil, err
	}

	return t.words(text, decoded[0])
}

// words groups the runes of text into Words following the chunks in labels.
func (t *Tagger) words(text string, labels []int64) ([]Word, error) {
	offsets := make([]int, 0, len(labels)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	if len(offsets) != len(labels) {
		return nil, fmt.Errorf("got %d labels for %d characters", len(labels), len(offsets))
	}
	offsets = append(offsets, len(text))

	segments, err := t.counter.Segments(labels)
	if err != nil {
		return nil, fmt.Errorf("decoded labels: %w", err)
	}

	span := func(begin, end int, typ string) Word {
		return Word{
			Text:  text[offsets[begin]:offsets[end+1]],
			Type:  typ,
			Start: offsets[begin],
			End:   offsets[end+1],
		}
	}

	words := make([]Word, 0, len(segments))
	cursor := 0
	for _, seg := range segments {
		if seg.Begin > cursor {
			words = append(words, span(cursor, seg.Begin-1, OutsideType))
		}
		words = append(words, span(seg.Begin, seg.End, t.chunkTypeName(seg.Type)))
		cursor = seg.End + 1
	}
	if cursor < len(labels) {
		words = append(words, span(cursor, len(labels)-1, OutsideType))
	}

	return words, nil
}

func (t *Tagger) chunkTypeName(typ int) string {
	if typ >= 0 && typ < len(t.chunkTypes) {
		return t.chunkTypes[typ]
	}
	return fmt.Sprintf("type%d", typ)
}

// window is a slice of one input row that fits in a single model call.
type window struct {
	row    int
	offset int
	ids    []int64
}

// Decode runs CRF decoding over rows of word ids and returns one label id
// row per input row. Rows longer than the max sequence length are decoded in
// consecutive windows.
func (t *Tagger) Decode(ctx context.Context, rows [][]int64) ([][]int64, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyBatch
	}

	out := make([][]int64, len(rows))
	var windows []window
	for r, row := range rows {
		out[r] = make([]int64, len(row))
		for off := 0; off < len(row); off += t.maxSeqLen {
			end := min(off+t.maxSeqLen, len(row))
			windows = append(windows, window{row: r, offset: off, ids: row[off:end]})
		}
	}

	t.logger.Debug("decoding", "rows", len(rows), "windows", len(windows))

	for start := 0; start < len(windows); start += t.batchSize {
		batch := windows[start:min(start+t.batchSize, len(windows))]
		if err := t.decodeWindows(ctx, batch, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (t *Tagger) decodeWindows(ctx context.Context, batch []window, out [][]int64) error {
	seqLen := 0
	for _, w := range batch {
		seqLen = max(seqLen, len(w.ids))
	}

	words := make([]int64, len(batch)*seqLen)
	lengths := make([]int64, len(batch))
	for i, w := range batch {
		row := words[i*seqLen : (i+1)*seqLen]
		copy(row, w.ids)
		for j := len(w.ids); j < seqLen; j++ {
			row[j] = padID
		}
		lengths[i] = int64(len(w.ids))
	}

	labels, err := t.decode(ctx, words, len(batch), seqLen, lengths)
	if err != nil {
		return err
	}

	for i, w := range batch {
		copy(out[w.row][w.offset:], labels[i*seqLen:i*seqLen+len(w.ids)])
	}
	return nil
}

func (t *Tagger) decodeWithPool(ctx context.Context, words []int64, batch, seqLen int, lengths []int64) ([]int64, error) {
	var labels []int64
	err := t.pool.Do(ctx, func(s *inference.Session) error {
		var err error
		labels, err = s.Decode(ctx, words, batch, seqLen, lengths)
		return err
	})
	return labels, err
}

// Counter returns the chunk counter matching the model's label layout.
func (t *Tagger) Counter() *chunk.Counter { return t.counter }

// Vocab returns the tagger's vocabulary.
func (t *Tagger) Vocab() *vocab.Vocab { return t.vocab }

// ChunkTypes returns the chunk type names indexed by chunk type.
func (t *Tagger) ChunkTypes() []string { return slices.Clone(t.chunkTypes) }

// PoolSize returns the number of model sessions available for concurrent decoding.
func (t *Tagger) PoolSize() int {
	if t.pool == nil {
		return 1
	}
	return t.pool.Size()
}

// Close releases all resources.
func (t *Tagger) Close() error {
	if t.pool != nil {
		return t.pool.Close()
	}
	return nil
}
