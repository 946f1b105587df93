// Package inference provides ONNX Runtime integration for BiGRU-CRF tagger inference.
package inference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Model input and output names of an exported lexical analysis network.
const (
	InputWord   = "word"
	InputLength = "length"
	OutputCRF   = "crf_decode"
)

// ErrSessionClosed is returned by Decode after Close.
var ErrSessionClosed = errors.New("inference: session is closed")

var (
	ortEnvOnce sync.Once
	ortEnvErr  error
)

// initORT initializes ONNX Runtime environment once.
func initORT() error {
	ortEnvOnce.Do(func() {
		ortEnvErr = ort.InitializeEnvironment()
	})
	return ortEnvErr
}

// Session wraps an ONNX Runtime session that maps padded word id batches to
// Viterbi-decoded label ids.
type Session struct {
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
	closed  bool
}

// NewSession creates a new ONNX session from a model file.
func NewSession(modelPath string) (*Session, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	if err := initORT(); err != nil {
		return nil, fmt.Errorf("initializing ONNX runtime: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer func() { _ = options.Destroy() }()

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{InputWord, InputLength},
		[]string{OutputCRF},
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &Session{session: session}, nil
}

// Decode runs CRF decoding over a row-major [batch, seqLen] block of word ids.
// lengths holds the valid length of each row. The returned slice has the same
// [batch, seqLen] layout; positions past a row's length are padding.
func (s *Session) Decode(ctx context.Context, words []int64, batch, seqLen int, lengths []int64) ([]int64, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if len(words) != batch*seqLen {
		return nil, fmt.Errorf("word block has %d ids, want %d", len(words), batch*seqLen)
	}
	if len(lengths) != batch {
		return nil, fmt.Errorf("got %d lengths for batch of %d", len(lengths), batch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	wordTensor, err := ort.NewTensor(ort.NewShape(int64(batch), int64(seqLen)), words)
	if err != nil {
		return nil, fmt.Errorf("creating word tensor: %w", err)
	}
	defer func() { _ = wordTensor.Destroy() }()

	lengthTensor, err := ort.NewTensor(ort.NewShape(int64(batch)), lengths)
	if err != nil {
		return nil, fmt.Errorf("creating length tensor: %w", err)
	}
	defer func() { _ = lengthTensor.Destroy() }()

	inputs := []ort.Value{wordTensor, lengthTensor}
	outputs := []ort.Value{nil}

	if err := s.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("running inference: %w", err)
	}
	if outputs[0] == nil {
		return nil, fmt.Errorf("no output produced")
	}
	defer func() { _ = outputs[0].Destroy() }()

	decoded, ok := outputs[0].(*ort.Tensor[int64])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type")
	}

	data := decoded.GetData()
	if len(data) < len(words) {
		return nil, fmt.Errorf("output has %d labels, want %d", len(data), len(words))
	}
	labels := make([]int64, len(words))
	copy(labels, data[:len(words)])

	return labels, nil
}

// Close releases ONNX resources.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}
