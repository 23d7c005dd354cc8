// Package archiver writes discovered files into a single ZIP archive.
package archiver

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/infracollect/filesearch/internal/engine"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// CompressionType defines the supported entry compression methods.
type CompressionType string

const (
	CompressionDeflate CompressionType = "deflate"
	CompressionStore   CompressionType = "store"
	CompressionZstd    CompressionType = "zstd"
)

// CompressionTypes lists every supported compression, default first.
var CompressionTypes = []CompressionType{CompressionDeflate, CompressionStore, CompressionZstd}

// copyBufferSize is the size of the buffer file content is streamed through.
const copyBufferSize = 32 * 1024

var _ engine.Archiver = (*ZipArchiver)(nil)

// ZipArchiver streams entries into a ZIP archive written to an io.Writer.
// Entries are written sequentially; the archiver is not safe for concurrent use.
type ZipArchiver struct {
	zipWriter   *zip.Writer
	method      uint16
	compression CompressionType
	buf         []byte
	closed      bool
}

// NewZipArchiver creates a ZIP archiver writing to w with the specified compression.
// Supported compression types: "deflate", "store", "zstd".
// If compression is empty, defaults to "deflate".
func NewZipArchiver(w io.Writer, compression string) (*ZipArchiver, error) {
	ct := CompressionType(compression)
	if ct == "" {
		ct = CompressionDeflate
	}

	zipWriter := zip.NewWriter(w)

	var method uint16
	switch ct {
	case CompressionDeflate:
		method = zip.Deflate
		zipWriter.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, flate.DefaultCompression)
		})
	case CompressionStore:
		method = zip.Store
	case CompressionZstd:
		method = zstd.ZipMethodWinZip
		zipWriter.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", compression)
	}

	return &ZipArchiver{
		zipWriter:   zipWriter,
		method:      method,
		compression: ct,
		buf:         make([]byte, copyBufferSize),
	}, nil
}

// AddFile writes a new entry named name, stamped with info's modification time,
// and streams data into it. The entry is complete when AddFile returns.
func (a *ZipArchiver) AddFile(ctx context.Context, name string, info os.FileInfo, data io.Reader) error {
	if a.closed {
		return fmt.Errorf("archiver is closed")
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	header := &zip.FileHeader{
		Name:   name,
		Method: a.method,
	}
	if info != nil {
		header.Modified = info.ModTime()
		header.SetMode(info.Mode())
	}

	entry, err := a.zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to write zip header for %s: %w", name, err)
	}

	// Hide io.WriterTo on the source so the copy goes through a.buf.
	if _, err := io.CopyBuffer(entry, struct{ io.Reader }{data}, a.buf); err != nil {
		return fmt.Errorf("failed to write zip content for %s: %w", name, err)
	}

	return nil
}

// Close writes the central directory. It does not close the underlying writer.
func (a *ZipArchiver) Close() error {
	if a.closed {
		return fmt.Errorf("archiver already closed")
	}
	a.closed = true

	if err := a.zipWriter.Close(); err != nil {
		return fmt.Errorf("failed to close zip writer: %w", err)
	}

	return nil
}

// Extension returns the file extension for this archive type.
func (a *ZipArchiver) Extension() string {
	return ".zip"
}

// Compression returns the compression applied to entries.
func (a *ZipArchiver) Compression() CompressionType {
	return a.compression
}
