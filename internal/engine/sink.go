package engine

import (
	"context"
	"io"
)

// Sink is a destination an archive is streamed into.
type Sink interface {
	Named
	Closer

	// Create opens the named object for writing. The object is committed when
	// the returned writer is closed.
	Create(ctx context.Context, name string) (io.WriteCloser, error)
}
