package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/infracollect/filesearch/internal/matcher"
	"github.com/infracollect/filesearch/internal/runner"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const maxArgs = 3

func searchAction(ctx context.Context, command *cli.Command) error {
	logger := getLogger(ctx)

	args := command.Args().Slice()
	if len(args) == 0 && command.String("config") == "" {
		return cli.ShowRootCommandHelp(command)
	}
	if len(args) > maxArgs {
		logger.Warn("ignoring extra arguments", zap.Strings("args", args[maxArgs:]))
		args = args[:maxArgs]
	}

	opts, err := buildOptions(command, args)
	if err != nil {
		return err
	}

	r, err := runner.New(ctx, logger.Named("runner"), opts)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	if _, err := r.Run(ctx); err != nil {
		return fmt.Errorf("failed to run search: %w", err)
	}

	return nil
}

// buildOptions merges the search file, the positional arguments and the flags,
// in that order of precedence from lowest to highest. The pattern is compiled
// here so a bad expression fails before anything is scanned.
func buildOptions(command *cli.Command, args []string) (runner.Options, error) {
	var opts runner.Options

	if configPath := command.String("config"); configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return runner.Options{}, fmt.Errorf("failed to read search file '%s': %w", configPath, err)
		}

		job, err := runner.ParseSearchJob(data)
		if err != nil {
			return runner.Options{}, fmt.Errorf("search file '%s' is invalid: %w", configPath, formatValidationError(err))
		}

		opts, err = runner.OptionsFromJob(job)
		if err != nil {
			return runner.Options{}, fmt.Errorf("search file '%s' is invalid: %w", configPath, err)
		}
	}

	if len(args) > 0 {
		opts.Root = args[0]
	}
	if len(args) > 1 {
		pattern, err := matcher.Compile(args[1])
		if err != nil {
			return runner.Options{}, err
		}
		opts.Pattern = pattern
	}
	if len(args) > 2 {
		opts.Target = args[2]
	}

	if command.IsSet("compression") || opts.Compression == "" {
		opts.Compression = command.String("compression")
	}
	if command.IsSet("s3-region") {
		opts.S3.Region = command.String("s3-region")
	}
	if command.IsSet("s3-endpoint") {
		opts.S3.Endpoint = command.String("s3-endpoint")
	}
	if command.IsSet("s3-force-path-style") {
		opts.S3.ForcePathStyle = command.Bool("s3-force-path-style")
	}

	return opts, nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("search file has %d validation error(s):", len(validationErrs)))
		for _, fe := range validationErrs {
			sb.WriteString(fmt.Sprintf("\n  • %s: failed '%s' validation", fe.Namespace(), fe.Tag()))
			if fe.Param() != "" {
				sb.WriteString(fmt.Sprintf(" (param: %s)", fe.Param()))
			}
		}
		return errors.New(sb.String())
	}
	return err
}
