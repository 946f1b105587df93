package chunk

import "errors"

var (
	// ErrUnknownScheme indicates a scheme name ParseScheme does not recognize.
	ErrUnknownScheme = errors.New("chunk: unknown scheme")

	// ErrInvalidConfig indicates a counter configuration that cannot count anything.
	ErrInvalidConfig = errors.New("chunk: invalid counter config")

	// ErrLengthMismatch indicates inference, label and length inputs disagree in shape.
	ErrLengthMismatch = errors.New("chunk: length mismatch")

	// ErrLabelOutOfRange indicates a label id outside the configured label space.
	ErrLabelOutOfRange = errors.New("chunk: label out of range")
)
