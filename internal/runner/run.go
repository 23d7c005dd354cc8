package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/infracollect/filesearch/internal/archiver"
	"github.com/infracollect/filesearch/internal/engine"
	"github.com/infracollect/filesearch/internal/matcher"
	"github.com/infracollect/filesearch/internal/walker"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Options configures one scan. It is never modified once the Runner is built.
type Options struct {
	// Root is the directory the scan starts from.
	Root string
	// Pattern is matched against each line of each file. Nil matches every file.
	Pattern *matcher.Pattern
	// Target is where the archive goes: a local path, "-" for stdout or an
	// s3://bucket/key URL. Empty means matches are only reported.
	Target string
	// Compression is the ZIP entry compression; empty means deflate.
	Compression string
	// S3 holds client settings used when Target is an s3:// URL.
	S3 S3Options
}

type S3Options struct {
	Region          string
	Endpoint        string
	ForcePathStyle  bool
	AccessKeyID     string
	SecretAccessKey string
}

// Result summarizes a run.
type Result struct {
	// Scanned is the number of regular files visited.
	Scanned int
	// Matched is the number of files whose content satisfied the pattern.
	Matched int
	// Failed is the number of files that could not be read or decoded.
	Failed int
	// Accepted lists matched files in walk order. It stays empty when there
	// is no archive target.
	Accepted []engine.File
}

type Runner struct {
	logger      *zap.Logger
	opts        Options
	fs          afero.Fs
	sink        engine.Sink
	archiveName string
}

type Option func(*Runner)

// WithFs sets the filesystem that is scanned and that local archives are written to.
func WithFs(fs afero.Fs) Option {
	return func(r *Runner) {
		r.fs = fs
	}
}

// WithSink overrides the sink built from Options.Target. The archive is
// created in it under name.
func WithSink(sink engine.Sink, name string) Option {
	return func(r *Runner) {
		r.sink = sink
		r.archiveName = name
	}
}

func New(ctx context.Context, logger *zap.Logger, opts Options, options ...Option) (*Runner, error) {
	compression := archiver.CompressionType(opts.Compression)
	if compression != "" && !lo.Contains(archiver.CompressionTypes, compression) {
		return nil, fmt.Errorf("unsupported compression type %q (available: %v)", opts.Compression, archiver.CompressionTypes)
	}

	r := &Runner{
		logger: logger,
		opts:   opts,
	}

	for _, opt := range options {
		opt(r)
	}

	if r.fs == nil {
		r.fs = afero.NewOsFs()
	}

	if r.sink == nil {
		sink, name, err := buildSink(ctx, logger, r.fs, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to build sink: %w", err)
		}
		r.sink = sink
		r.archiveName = name
	}

	logger.Debug("created runner",
		zap.String("root", opts.Root),
		zap.Stringer("pattern", opts.Pattern),
		zap.String("target", opts.Target),
	)

	return r, nil
}

// Run walks the root, matches every file and, when a target is configured,
// archives the matching files in the order they were found.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	var result Result

	for file, err := range walker.Walk(r.fs, r.opts.Root) {
		if err != nil {
			return result, fmt.Errorf("failed to walk %s: %w", r.opts.Root, err)
		}

		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("context cancelled while scanning %s: %w", file.Path, err)
		}

		r.handleFile(file, &result)
	}

	r.logger.Info("scan complete",
		zap.String("root", r.opts.Root),
		zap.Int("scanned", result.Scanned),
		zap.Int("matched", result.Matched),
		zap.Int("failed", result.Failed),
	)

	if r.sink == nil {
		return result, nil
	}

	if err := r.writeArchive(ctx, result.Accepted); err != nil {
		return result, fmt.Errorf("failed to write archive: %w", err)
	}

	r.logger.Info("archive written",
		zap.String("sink", r.sink.Name()),
		zap.String("archive", r.archiveName),
		zap.Int("entries", len(result.Accepted)),
	)

	return result, nil
}

// handleFile matches one file. Read and decode failures are logged and the
// file is counted as not matching.
func (r *Runner) handleFile(file engine.File, result *Result) {
	result.Scanned++

	matched, err := matcher.MatchFile(r.fs, file.Path, r.opts.Pattern)
	if err != nil {
		result.Failed++
		r.logger.Warn("failed to process file", zap.String("path", file.Path), zap.Error(err))
		return
	}

	if !matched {
		r.logger.Debug("file did not match", zap.String("path", file.RelPath))
		return
	}

	result.Matched++
	r.logger.Info("file matched", zap.String("path", file.RelPath))

	if r.sink != nil {
		result.Accepted = append(result.Accepted, file)
	}
}

func (r *Runner) writeArchive(ctx context.Context, files []engine.File) (err error) {
	w, err := r.sink.Create(ctx, r.archiveName)
	if err != nil {
		return fmt.Errorf("failed to create archive %s in %s: %w", r.archiveName, r.sink.Name(), err)
	}
	defer func() {
		err = errors.Join(err, w.Close(), r.sink.Close(ctx))
	}()

	a, err := archiver.NewZipArchiver(w, r.opts.Compression)
	if err != nil {
		return fmt.Errorf("failed to create archiver: %w", err)
	}

	return archiver.Archive(ctx, r.fs, a, r.opts.Root, files)
}
