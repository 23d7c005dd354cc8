package runner

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	v1 "github.com/infracollect/filesearch/apis/v1"
	"github.com/infracollect/filesearch/internal/matcher"
	"github.com/samber/lo"
)

var (
	defaultValidator = validator.New(validator.WithRequiredStructEnabled())
)

// ParseSearchJob parses a YAML or JSON search file and validates it. It
// returns a validated SearchJob or an error if parsing or validation fails.
func ParseSearchJob(data []byte) (v1.SearchJob, error) {
	var job v1.SearchJob
	if err := yaml.Unmarshal(data, &job); err != nil {
		return v1.SearchJob{}, fmt.Errorf("failed to unmarshal job data: %w", err)
	}

	if err := defaultValidator.Struct(job); err != nil {
		return v1.SearchJob{}, fmt.Errorf("failed to validate job: %w", err)
	}

	if output := job.Spec.Output; output != nil {
		d := output.Destination
		set := lo.Count([]bool{d.Stdout != nil, d.Zip != nil, d.S3 != nil}, true)
		if set > 1 {
			return v1.SearchJob{}, fmt.Errorf("failed to validate job: output destination must set exactly one of stdout, zip, s3 (got %d)", set)
		}
	}

	return job, nil
}

// OptionsFromJob builds run options from a validated job. The pattern is
// compiled here so an invalid expression fails before any traversal.
func OptionsFromJob(job v1.SearchJob) (Options, error) {
	opts := Options{Root: job.Spec.Root}

	if job.Spec.Pattern != nil {
		pattern, err := matcher.Compile(*job.Spec.Pattern)
		if err != nil {
			return Options{}, err
		}
		opts.Pattern = pattern
	}

	if output := job.Spec.Output; output != nil {
		target, err := ResolveTarget(output.Destination)
		if err != nil {
			return Options{}, err
		}
		opts.Target = target
		opts.Compression = output.Compression

		if s3 := output.Destination.S3; s3 != nil {
			opts.S3 = S3Options{
				Region:         s3.Region,
				Endpoint:       s3.Endpoint,
				ForcePathStyle: s3.ForcePathStyle,
			}
			if creds := s3.Credentials; creds != nil {
				opts.S3.AccessKeyID = creds.AccessKeyID
				opts.S3.SecretAccessKey = creds.SecretAccessKey
			}
		}
	}

	return opts, nil
}
