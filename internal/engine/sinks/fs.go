package sinks

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/infracollect/filesearch/internal/engine"
	"github.com/spf13/afero"
)

type FilesystemSink struct {
	fs afero.Fs
}

func NewFilesystemSink(fs afero.Fs) engine.Sink {
	return &FilesystemSink{fs: fs}
}

func (s *FilesystemSink) Name() string {
	return fmt.Sprintf("filesystem(%s)", s.fs.Name())
}

func (s *FilesystemSink) Kind() string {
	return "filesystem"
}

// Create truncates or creates the file at path. Whatever was written before a
// failure stays on disk.
func (s *FilesystemSink) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	// Ensure parent directories exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := s.fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", path, err)
	}

	return f, nil
}

func (s *FilesystemSink) Close(ctx context.Context) error {
	return nil
}
