package sinks

import (
	"context"
	"io"

	"github.com/infracollect/filesearch/internal/engine"
)

type StreamSink struct {
	w io.Writer
}

func NewStreamSink(w io.Writer) engine.Sink {
	return &StreamSink{w: w}
}

func (s *StreamSink) Name() string {
	return "stream"
}

func (s *StreamSink) Kind() string {
	return "stream"
}

// Create ignores the name; everything goes to the wrapped writer, which is
// never closed by the sink.
func (s *StreamSink) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	return nopWriteCloser{s.w}, nil
}

func (s *StreamSink) Close(ctx context.Context) error {
	return nil
}

// nopWriteCloser wraps a Writer to provide a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
