package vocab

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// WordFile is the word dictionary file name inside a vocabulary directory.
	WordFile = "word.dic"
	// LabelFile is the label dictionary file name.
	LabelFile = "tag.dic"
	// Q2BFile is the optional character normalization file name.
	Q2BFile = "q2b.dic"

	// OOVWord is the word dictionary entry used for unknown characters.
	OOVWord = "OOV"
	// OutsideLabel is the label for tokens outside any chunk.
	OutsideLabel = "O"
)

// Vocab maps characters to word ids and label names to label ids.
type Vocab struct {
	words     *Dict
	labels    *Dict
	q2b       map[rune]rune
	oovID     int64
	outsideID int64
}

// New assembles a Vocab. The word dictionary must contain OOVWord and the
// label dictionary must contain OutsideLabel.
func New(words, labels *Dict, q2b map[rune]rune) (*Vocab, error) {
	oov, ok := words.ID(OOVWord)
	if !ok {
		return nil, fmt.Errorf("word dict has no %q entry", OOVWord)
	}
	outside, ok := labels.ID(OutsideLabel)
	if !ok {
		return nil, fmt.Errorf("label dict has no %q entry", OutsideLabel)
	}
	return &Vocab{
		words:     words,
		labels:    labels,
		q2b:       q2b,
		oovID:     oov,
		outsideID: outside,
	}, nil
}

// Load reads word.dic, tag.dic and, when present, q2b.dic from dir.
func Load(dir string) (*Vocab, error) {
	words, err := LoadDict(filepath.Join(dir, WordFile))
	if err != nil {
		return nil, fmt.Errorf("loading words: %w", err)
	}
	labels, err := LoadDict(filepath.Join(dir, LabelFile))
	if err != nil {
		return nil, fmt.Errorf("loading labels: %w", err)
	}

	q2b, err := LoadQ2B(filepath.Join(dir, Q2BFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading q2b: %w", err)
	}

	return New(words, labels, q2b)
}

// Normalize applies character normalization to every rune of text.
// The result has exactly one rune per input rune.
func (v *Vocab) Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		b.WriteRune(normalizeRune(r, v.q2b))
	}
	return b.String()
}

// WordID returns the word id for a single character, or the OOV id.
func (v *Vocab) WordID(r rune) int64 {
	if id, ok := v.words.ID(string(normalizeRune(r, v.q2b))); ok {
		return id
	}
	return v.oovID
}

// WordIDs maps each rune of text to a word id.
func (v *Vocab) WordIDs(text string) []int64 {
	ids := make([]int64, 0, len(text))
	for _, r := range text {
		ids = append(ids, v.WordID(r))
	}
	return ids
}

// TokenIDs maps pre-split tokens to word ids. Each token is looked up whole
// after normalization.
func (v *Vocab) TokenIDs(tokens []string) []int64 {
	ids := make([]int64, len(tokens))
	for i, tok := range tokens {
		id, ok := v.words.ID(v.Normalize(tok))
		if !ok {
			id = v.oovID
		}
		ids[i] = id
	}
	return ids
}

// LabelIDs maps label names to ids; unknown names map to the outside label.
func (v *Vocab) LabelIDs(labels []string) []int64 {
	ids := make([]int64, len(labels))
	for i, l := range labels {
		id, ok := v.labels.ID(l)
		if !ok {
			id = v.outsideID
		}
		ids[i] = id
	}
	return ids
}

// Label returns the label name for id, or OutsideLabel if id is unknown.
func (v *Vocab) Label(id int64) string {
	if l, ok := v.labels.Value(id); ok {
		return l
	}
	return OutsideLabel
}

// NumLabels returns the number of labels.
func (v *Vocab) NumLabels() int { return v.labels.Len() }

// NumWords returns the number of words.
func (v *Vocab) NumWords() int { return v.words.Len() }

// OOVID returns the id used for unknown characters.
func (v *Vocab) OOVID() int64 { return v.oovID }

// OutsideID returns the id of the outside label.
func (v *Vocab) OutsideID() int64 { return v.outsideID }

// ChunkTypes returns the chunk type names, indexed by chunk type, for a label
// set where each type occupies numTagTypes consecutive ids.
func (v *Vocab) ChunkTypes(numTagTypes int) []string {
	if numTagTypes <= 0 {
		return nil
	}
	n := (v.labels.Len() - 1 + numTagTypes - 1) / numTagTypes
	types := make([]string, 0, n)
	for t := 0; t < n; t++ {
		types = append(types, ChunkType(v.Label(int64(t*numTagTypes))))
	}
	return types
}

// boundaryTags are the tag letters recognized in label names.
var boundaryTags = []string{"B", "I", "E", "S"}

// SplitLabel separates a label name into its chunk type and boundary tag.
// Both "PER-B" and "B-PER" yield ("PER", "B"); a label without a tag, such as
// "O" or a plain-scheme "PER", yields an empty tag.
func SplitLabel(label string) (typ, tag string) {
	for _, t := range boundaryTags {
		if rest, ok := strings.CutSuffix(label, "-"+t); ok {
			return rest, t
		}
	}
	for _, t := range boundaryTags {
		if rest, ok := strings.CutPrefix(label, t+"-"); ok {
			return rest, t
		}
	}
	return label, ""
}

// ChunkType strips the boundary tag from a label name. Both "PER-B" and
// "B-PER" spellings yield "PER".
func ChunkType(label string) string {
	typ, _ := SplitLabel(label)
	return typ
}
