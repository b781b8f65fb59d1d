// Package stream models HTTP bodies as single-pass sequences of byte chunks.
package stream

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"sync/atomic"
	"unicode/utf8"
)

// DefaultChunkSize is the read buffer size used by New.
const DefaultChunkSize = 32 * 1024

var (
	// ErrConsumed is returned when a Body is read a second time.
	ErrConsumed = errors.New("stream: body already consumed")

	// ErrInvalidText is returned by Text when a chunk is not valid UTF-8.
	ErrInvalidText = errors.New("stream: chunk is not valid UTF-8")
)

// Body is a lazy, finite, at-most-once sequence of byte chunks backed by an
// io.ReadCloser. A chunk is whatever a single Read on the source returns, so
// for an HTTP response the chunks follow the arrival of data on the wire.
type Body struct {
	rc        io.ReadCloser
	chunkSize int
	consumed  atomic.Bool
}

// New wraps rc using DefaultChunkSize.
func New(rc io.ReadCloser) *Body {
	return NewSize(rc, DefaultChunkSize)
}

// NewSize wraps rc, reading at most size bytes per chunk.
func NewSize(rc io.ReadCloser, size int) *Body {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &Body{rc: rc, chunkSize: size}
}

// claim marks the body consumed and reports whether the caller was first.
func (b *Body) claim() bool {
	return b.consumed.CompareAndSwap(false, true)
}

// Chunks returns the body as a sequence. The body is claimed when iteration
// starts: the first range reads it, and any later range, over this or any
// other sequence from the same Body, yields a single ErrConsumed. A yielded
// chunk is only valid until the next iteration step.
func (b *Body) Chunks() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		if !b.claim() {
			yield(nil, ErrConsumed)
			return
		}

		buf := make([]byte, b.chunkSize)
		for {
			n, err := b.rc.Read(buf)
			if n > 0 {
				if !yield(buf[:n], nil) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("read chunk: %w", err))
				return
			}
		}
	}
}

// ReadAll concatenates every chunk into one buffer.
func (b *Body) ReadAll() ([]byte, error) {
	if !b.claim() {
		return nil, ErrConsumed
	}
	data, err := io.ReadAll(b.rc)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// Close closes the underlying reader.
func (b *Body) Close() error {
	return b.rc.Close()
}

// Map applies fn to each chunk of seq independently as it is produced.
// Nothing is buffered across chunks. The first error, from seq or fn, is
// yielded and ends the sequence.
func Map(seq iter.Seq2[[]byte, error], fn func([]byte) ([]byte, error)) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for chunk, err := range seq {
			if err != nil {
				yield(nil, err)
				return
			}
			out, err := fn(chunk)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}

// Text decodes chunk as UTF-8 text.
func Text(chunk []byte) (string, error) {
	if !utf8.Valid(chunk) {
		return "", ErrInvalidText
	}
	return string(chunk), nil
}
