package engine

import (
	"context"
	"io"
	"os"
)

// Archiver collects files into an archive format.
type Archiver interface {
	// AddFile adds a file to the archive under the given entry name. The entry
	// is complete when AddFile returns.
	AddFile(ctx context.Context, name string, info os.FileInfo, data io.Reader) error

	// Close finalizes the archive. It must be called exactly once.
	Close() error

	// Extension returns the file extension for this archive type (e.g., ".zip").
	Extension() string
}
