package chunk

import "fmt"

// Segment is a chunk spanning token positions Begin through End inclusive.
type Segment struct {
	Begin int
	End   int
	Type  int
}

// Segments extracts the chunks of a label id sequence.
//
// Label ids are laid out as chunkType*NumTagTypes + tag; the id
// numChunkTypes*NumTagTypes is the outside label.
func Segments(labels []int64, numChunkTypes int, s Scheme) ([]Segment, error) {
	lay := s.layout()
	other := numChunkTypes
	maxID := int64(numChunkTypes * lay.numTagTypes)

	var segments []Segment
	chunkStart := 0
	inChunk := false
	tag := noTag
	typ := other

	for i, id := range labels {
		if id < 0 || id > maxID {
			return nil, fmt.Errorf("%w: label %d at position %d (max %d)", ErrLabelOutOfRange, id, i, maxID)
		}
		prevTag, prevType := tag, typ
		tag = int(id) % lay.numTagTypes
		typ = int(id) / lay.numTagTypes

		if inChunk && lay.chunkEnd(prevTag, prevType, tag, typ, other) {
			segments = append(segments, Segment{Begin: chunkStart, End: i - 1, Type: prevType})
			inChunk = false
		}
		if lay.chunkBegin(prevTag, prevType, tag, typ, other) {
			chunkStart = i
			inChunk = true
		}
	}
	if inChunk {
		segments = append(segments, Segment{Begin: chunkStart, End: len(labels) - 1, Type: typ})
	}

	return segments, nil
}

func (l tagLayout) chunkEnd(prevTag, prevType, tag, typ, other int) bool {
	switch {
	case prevType == other:
		return false
	case typ == other:
		return true
	case typ != prevType:
		return true
	case prevTag == l.begin, prevTag == l.inside:
		return tag == l.begin || tag == l.single
	case prevTag == l.end, prevTag == l.single:
		return true
	}
	return false
}

func (l tagLayout) chunkBegin(prevTag, prevType, tag, typ, other int) bool {
	switch {
	case prevType == other:
		return typ != other
	case typ == other:
		return false
	case typ != prevType:
		return true
	case tag == l.begin:
		return true
	case tag == l.inside, tag == l.end:
		return prevTag == l.end || prevTag == l.single
	case tag == l.single:
		return true
	}
	return false
}
