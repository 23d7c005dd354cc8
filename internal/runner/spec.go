package runner

import (
	"context"
	"fmt"
	"os"
	"strings"

	v1 "github.com/infracollect/filesearch/apis/v1"
	"github.com/infracollect/filesearch/internal/engine"
	"github.com/infracollect/filesearch/internal/engine/sinks"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// StdoutTarget is the archive target that streams the archive to standard output.
	StdoutTarget = "-"

	s3Scheme = "s3://"
)

// ResolveTarget turns a job's output destination into an archive target string.
// Returns an error if no destination type is specified.
func ResolveTarget(d v1.DestinationSpec) (string, error) {
	switch {
	case d.Stdout != nil:
		return StdoutTarget, nil
	case d.Zip != nil:
		return d.Zip.Path, nil
	case d.S3 != nil:
		return s3Scheme + d.S3.Bucket + "/" + strings.TrimPrefix(d.S3.Key, "/"), nil
	default:
		return "", fmt.Errorf("output destination has no type specified")
	}
}

// buildSink returns the sink the archive is written to and the name of the
// archive inside it. A nil sink means no archive is produced.
func buildSink(ctx context.Context, logger *zap.Logger, fsys afero.Fs, opts Options) (engine.Sink, string, error) {
	target := opts.Target

	switch {
	case target == "":
		return nil, "", nil
	case target == StdoutTarget:
		return sinks.NewStreamSink(os.Stdout), target, nil
	case strings.HasPrefix(target, s3Scheme):
		bucket, key, err := sinks.ParseS3URL(target)
		if err != nil {
			return nil, "", err
		}

		sink, err := sinks.NewS3Sink(ctx, logger.Named("s3"), sinks.S3Config{
			Bucket:          bucket,
			Region:          opts.S3.Region,
			Endpoint:        opts.S3.Endpoint,
			ForcePathStyle:  opts.S3.ForcePathStyle,
			AccessKeyID:     opts.S3.AccessKeyID,
			SecretAccessKey: opts.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to create s3 sink: %w", err)
		}
		return sink, key, nil
	default:
		return sinks.NewFilesystemSink(fsys), target, nil
	}
}
