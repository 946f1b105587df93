package seqtag

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrModelNotFound indicates the model file does not exist.
	ErrModelNotFound = errors.New("seqtag: model file not found")

	// ErrInvalidModel indicates the model file exists but could not be loaded.
	ErrInvalidModel = errors.New("seqtag: invalid model format")

	// ErrVocabFailed indicates the word or label dictionary could not be loaded.
	ErrVocabFailed = errors.New("seqtag: vocabulary initialization failed")

	// ErrInvalidOption indicates an option value the tagger cannot use.
	ErrInvalidOption = errors.New("seqtag: invalid option")

	// ErrEmptyBatch indicates Decode was called without any rows.
	ErrEmptyBatch = errors.New("seqtag: empty batch")
)
