package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/infracollect/filesearch/internal/archiver"
	"github.com/urfave/cli/v3"
)

var loggerDeferFunc func() error

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "filesearch",
		Usage:     "Find files whose content matches a pattern and archive them",
		UsageText: "filesearch [options] <root-path> [pattern] [archive-path]",
		Description: "Scans every regular file under root-path. A file matches when one of its lines, " +
			"as a whole, matches pattern; without a pattern every file matches. Matching files are " +
			"written to a ZIP archive at archive-path (a local path, - for stdout, or s3://bucket/key), " +
			"named by their path relative to root-path.",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log Level (debug, info, warn, error, fatal)",
				Action: func(ctx context.Context, command *cli.Command, s string) error {
					_, err := zapcore.ParseLevel(s)
					if err != nil {
						return fmt.Errorf("invalid log level %s: %w", s, err)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Search file (YAML or JSON); positional arguments override its values",
			},
			&cli.StringFlag{
				Name:    "compression",
				Aliases: []string{"c"},
				Value:   string(archiver.CompressionDeflate),
				Usage:   fmt.Sprintf("Archive entry compression %v", archiver.CompressionTypes),
			},
			&cli.StringFlag{
				Name:  "s3-region",
				Usage: "Region for s3:// archive targets",
			},
			&cli.StringFlag{
				Name:  "s3-endpoint",
				Usage: "Endpoint for S3-compatible storage (MinIO, R2, ...)",
			},
			&cli.BoolFlag{
				Name:  "s3-force-path-style",
				Usage: "Use path-style addressing for s3:// archive targets",
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			logger, _, err := createLogger(command.Bool("debug"), command.String("log-level"), isInteractiveEnvironment())
			if err != nil {
				return nil, err
			}

			logger.Debug("logger created", zap.String("log_level", command.String("log-level")))

			loggerDeferFunc = func() error {
				return logger.Sync()
			}

			return withLogger(ctx, logger), nil
		},
		Action: searchAction,
		ExitErrHandler: func(ctx context.Context, command *cli.Command, err error) {
			if err == nil {
				return
			}

			if logger := tryLogger(ctx); logger != nil {
				logger.Fatal("failed to run application", zap.Error(err))
			} else {
				log.Fatal(fmt.Errorf("failed to run application: %w", err))
			}
		},
	}
}

func main() {
	app := newApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	defer func() {
		if loggerDeferFunc != nil {
			loggerDeferFunc()
		}
	}()

	app.Run(ctx, os.Args)
}
