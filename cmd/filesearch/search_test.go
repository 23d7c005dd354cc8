package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/infracollect/filesearch/internal/runner"
	"github.com/klauspost/compress/zip"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

// newTestApp returns the application with fatal exits disabled.
func newTestApp(out *bytes.Buffer) *cli.Command {
	app := newApp()
	app.Writer = out
	app.ExitErrHandler = func(context.Context, *cli.Command, error) {}
	return app
}

// parseOptions runs the app with args and returns the options it would search with.
func parseOptions(t *testing.T, args ...string) (runner.Options, error) {
	t.Helper()
	app := newTestApp(&bytes.Buffer{})

	var opts runner.Options
	var optsErr error
	app.Action = func(ctx context.Context, command *cli.Command) error {
		opts, optsErr = buildOptions(command, command.Args().Slice())
		return nil
	}

	require.NoError(t, app.Run(t.Context(), append([]string{"filesearch"}, args...)))
	return opts, optsErr
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestBuildOptions_PositionalArguments(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantRoot    string
		wantPattern string
		wantTarget  string
	}{
		{name: "root only", args: []string{"/srv"}, wantRoot: "/srv"},
		{name: "root and pattern", args: []string{"/srv", "hello.*"}, wantRoot: "/srv", wantPattern: "hello.*"},
		{name: "root pattern and archive", args: []string{"/srv", "hello.*", "out.zip"}, wantRoot: "/srv", wantPattern: "hello.*", wantTarget: "out.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseOptions(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRoot, opts.Root)
			assert.Equal(t, tt.wantPattern, opts.Pattern.String())
			assert.Equal(t, tt.wantTarget, opts.Target)
			assert.Equal(t, "deflate", opts.Compression)
		})
	}
}

func TestBuildOptions_InvalidPattern(t *testing.T) {
	_, err := parseOptions(t, "/srv", "(unclosed")
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid pattern")
}

func TestBuildOptions_Flags(t *testing.T) {
	opts, err := parseOptions(t,
		"--compression", "zstd",
		"--s3-region", "eu-west-1",
		"--s3-endpoint", "http://localhost:9000",
		"--s3-force-path-style",
		"/srv", ".*", "s3://bucket/out.zip",
	)
	require.NoError(t, err)
	assert.Equal(t, "zstd", opts.Compression)
	assert.Equal(t, runner.S3Options{Region: "eu-west-1", Endpoint: "http://localhost:9000", ForcePathStyle: true}, opts.S3)
	assert.Equal(t, "s3://bucket/out.zip", opts.Target)
}

func TestBuildOptions_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "search.yaml")
	writeFile(t, config, `
kind: Search
spec:
  root: /from/config
  pattern: "TODO.*"
  output:
    compression: store
    destination:
      zip:
        path: todo.zip
`)

	t.Run("values from file", func(t *testing.T) {
		opts, err := parseOptions(t, "--config", config)
		require.NoError(t, err)
		assert.Equal(t, "/from/config", opts.Root)
		assert.Equal(t, "TODO.*", opts.Pattern.String())
		assert.Equal(t, "todo.zip", opts.Target)
		assert.Equal(t, "store", opts.Compression)
	})

	t.Run("arguments override file", func(t *testing.T) {
		opts, err := parseOptions(t, "--config", config, "--compression", "zstd", "/from/args", "FIXME.*")
		require.NoError(t, err)
		assert.Equal(t, "/from/args", opts.Root)
		assert.Equal(t, "FIXME.*", opts.Pattern.String())
		assert.Equal(t, "todo.zip", opts.Target)
		assert.Equal(t, "zstd", opts.Compression)
	})

	t.Run("invalid file", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		writeFile(t, bad, "kind: Search\nspec: {}\n")

		_, err := parseOptions(t, "--config", bad)
		require.Error(t, err)
		assert.ErrorContains(t, err, "validation error(s)")
		assert.ErrorContains(t, err, "SearchJob.Spec.Root")
	})
}

func TestApp_NoArgumentsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(&out)

	require.NoError(t, app.Run(t.Context(), []string{"filesearch"}))
	assert.Contains(t, out.String(), "filesearch [options] <root-path> [pattern] [archive-path]")
}

func TestApp_SearchAndArchive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "notes.txt"), "hello world")
	writeFile(t, filepath.Join(root, "code.py"), "import os")
	writeFile(t, filepath.Join(root, "sub", "deep.txt"), "hello again")
	archive := filepath.Join(t.TempDir(), "out.zip")

	app := newTestApp(&bytes.Buffer{})
	require.NoError(t, app.Run(t.Context(), []string{"filesearch", "--log-level", "error", root, "hello.*", archive, "extra"}))

	zr, err := zip.OpenReader(archive)
	require.NoError(t, err)
	defer zr.Close()

	names := lo.Map(zr.File, func(f *zip.File, _ int) string { return f.Name })
	assert.ElementsMatch(t, []string{"notes.txt", "sub/deep.txt"}, names)
}

func TestApp_MissingRootFails(t *testing.T) {
	app := newTestApp(&bytes.Buffer{})

	err := app.Run(t.Context(), []string{"filesearch", "--log-level", "error", filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to walk")
}
