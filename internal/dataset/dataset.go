// Package dataset loads tagged corpora in the lexical analysis training format.
//
// Each line holds a token sequence and a label sequence separated by a tab;
// tokens and labels are separated by the \x02 control character. An optional
// first line "text_a\tlabel" is a header and is skipped.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/jamesainslie/go-seqtag/vocab"
)

const (
	// Separator splits tokens and labels within a field.
	Separator = "\x02"

	header = "text_a\tlabel"

	maxLineSize = 1 << 20
)

// ErrMalformedLine indicates a line that is not a token/label pair of equal length.
var ErrMalformedLine = errors.New("dataset: malformed line")

// Sample is one labeled sequence.
type Sample struct {
	Tokens []string
	Labels []string
}

// Text returns the tokens joined without separators.
func (s Sample) Text() string {
	return strings.Join(s.Tokens, "")
}

// Len returns the number of tokens.
func (s Sample) Len() int {
	return len(s.Tokens)
}

// ParseLine parses a single corpus line.
func ParseLine(line string) (Sample, error) {
	text, labels, ok := strings.Cut(strings.TrimRight(line, "\r\n"), "\t")
	if !ok {
		return Sample{}, fmt.Errorf("%w: no tab separator", ErrMalformedLine)
	}

	s := Sample{
		Tokens: strings.Split(text, Separator),
		Labels: strings.Split(labels, Separator),
	}
	if len(s.Tokens) != len(s.Labels) {
		return Sample{}, fmt.Errorf("%w: %d tokens, %d labels", ErrMalformedLine, len(s.Tokens), len(s.Labels))
	}
	return s, nil
}

// FormatLine is the inverse of ParseLine.
func FormatLine(s Sample) string {
	return strings.Join(s.Tokens, Separator) + "\t" + strings.Join(s.Labels, Separator)
}

// LoadFile loads all samples from a corpus file. Blank lines are skipped.
func LoadFile(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var samples []Sample
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if lineNo == 1 && strings.TrimSpace(line) == header {
			continue
		}

		s, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return samples, nil
}

// LoadDir loads every file in dir whose name matches the glob pattern, in
// name order.
func LoadDir(dir, pattern string) ([]Sample, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !g.Match(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var samples []Sample
	for _, name := range names {
		s, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
		samples = append(samples, s...)
	}

	return samples, nil
}

// Load loads path as a single file, or as a directory filtered by pattern.
func Load(path, pattern string) ([]Sample, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadDir(path, pattern)
	}
	return LoadFile(path)
}

// Batches splits samples into consecutive batches of at most size samples.
func Batches(samples []Sample, size int) [][]Sample {
	if size <= 0 {
		size = 1
	}
	var batches [][]Sample
	for start := 0; start < len(samples); start += size {
		end := min(start+size, len(samples))
		batches = append(batches, samples[start:end])
	}
	return batches
}

// IOBLabels returns a complete IOB label set for every chunk type used in
// samples: "T-B" then "T-I" for each type in name order, then the outside
// label. Both tags are listed even when a type never spans two tokens, so
// each type keeps its two-id block.
func IOBLabels(samples []Sample) []string {
	seen := make(map[string]bool)
	for _, s := range samples {
		for _, l := range s.Labels {
			if l == vocab.OutsideLabel {
				continue
			}
			seen[vocab.ChunkType(l)] = true
		}
	}

	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)

	labels := make([]string, 0, 2*len(types)+1)
	for _, t := range types {
		labels = append(labels, t+"-B", t+"-I")
	}
	return append(labels, vocab.OutsideLabel)
}
