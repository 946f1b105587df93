// Package chunk counts labeled chunks in tagged sequences and turns the counts
// into precision, recall and F1.
package chunk

import (
	"fmt"
	"strings"
)

// Scheme identifies how chunk boundaries are encoded in a flat label sequence.
type Scheme int

const (
	// IOB marks the first token of a chunk with B and the rest with I.
	IOB Scheme = iota
	// IOE marks the last token of a chunk with E and the rest with I.
	IOE
	// IOBES adds E for chunk ends and S for single-token chunks.
	IOBES
	// Plain uses one tag per chunk type; adjacent tokens of a type form a chunk.
	Plain
)

// noTag marks a boundary tag the scheme does not use.
const noTag = -1

// tagLayout holds the tag positions within one chunk type's id block.
type tagLayout struct {
	numTagTypes int
	begin       int
	inside      int
	end         int
	single      int
}

func (s Scheme) layout() tagLayout {
	switch s {
	case IOB:
		return tagLayout{numTagTypes: 2, begin: 0, inside: 1, end: noTag, single: noTag}
	case IOE:
		return tagLayout{numTagTypes: 2, begin: noTag, inside: 0, end: 1, single: noTag}
	case IOBES:
		return tagLayout{numTagTypes: 4, begin: 0, inside: 1, end: 2, single: 3}
	default:
		return tagLayout{numTagTypes: 1, begin: noTag, inside: noTag, end: noTag, single: noTag}
	}
}

// NumTagTypes returns how many label ids each chunk type occupies.
func (s Scheme) NumTagTypes() int {
	return s.layout().numTagTypes
}

// TagNames returns the boundary tag spelled at each position of a chunk
// type's id block. Plain labels carry no tag and yield a single "".
func (s Scheme) TagNames() []string {
	switch s {
	case IOB:
		return []string{"B", "I"}
	case IOE:
		return []string{"I", "E"}
	case IOBES:
		return []string{"B", "I", "E", "S"}
	default:
		return []string{""}
	}
}

// String returns the scheme name as accepted by ParseScheme.
func (s Scheme) String() string {
	switch s {
	case IOB:
		return "IOB"
	case IOE:
		return "IOE"
	case IOBES:
		return "IOBES"
	case Plain:
		return "plain"
	default:
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
}

// ParseScheme resolves a scheme name, ignoring case.
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "IOB":
		return IOB, nil
	case "IOE":
		return IOE, nil
	case "IOBES":
		return IOBES, nil
	case "PLAIN":
		return Plain, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}

// NumChunkTypes derives the chunk type count from the size of a label set
// that ends with a single outside label.
func NumChunkTypes(numLabels int, s Scheme) int {
	if numLabels <= 1 {
		return 0
	}
	n := s.NumTagTypes()
	return (numLabels - 1 + n - 1) / n
}
