package matcher

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemMapFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	return fs
}

func TestMatchFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		pattern string
		want    bool
	}{
		{name: "whole line matches", content: "hello world", pattern: "hello.*", want: true},
		{name: "substring does not match", content: "hello world", pattern: "hello", want: false},
		{name: "second line matches", content: "first\nhello there\nthird", pattern: "hello.*", want: true},
		{name: "no line matches", content: "import os\nimport sys\n", pattern: "hello.*", want: false},
		{name: "empty file never matches", content: "", pattern: ".*", want: false},
		{name: "empty line matches empty pattern", content: "a\n\nb", pattern: "", want: true},
		{name: "trailing newline adds no empty line", content: "a\n", pattern: "", want: false},
		{name: "crlf terminators are stripped", content: "one\r\ntwo\r\n", pattern: "two", want: true},
		{name: "last line without terminator", content: "one\ntwo", pattern: "two", want: true},
		{name: "lone cr ends a line", content: "one\rtwo\r", pattern: "two", want: true},
		{name: "lone cr is not part of the line", content: "one\rtwo", pattern: "one", want: true},
		{name: "lone cr separates an empty line", content: "a\r\rb", pattern: "", want: true},
		{name: "crlf is a single terminator", content: "a\r\nb", pattern: "", want: false},
		{name: "next line character ends a line", content: "one\u0085two", pattern: "two", want: true},
		{name: "line separator ends a line", content: "one\u2028two", pattern: "one", want: true},
		{name: "paragraph separator ends a line", content: "one\u2029two", pattern: "two", want: true},
		{name: "multibyte utf-8", content: "naïve café\n", pattern: "naïve caf.", want: true},
		{name: "line longer than a scanner token", content: strings.Repeat("x", 200_000) + "\nend", pattern: "x+", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newMemMapFs(t, map[string]string{"/file.txt": tt.content})

			got, err := MatchFile(fs, "/file.txt", MustCompile(tt.pattern))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchFile_NilPatternDoesNotOpenFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	got, err := MatchFile(fs, "/does/not/exist", nil)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestMatchFile_Errors(t *testing.T) {
	fs := newMemMapFs(t, map[string]string{
		"/binary.bin": "\xff\xfe\x00garbage",
		"/late.bin":   "fine\n\xc3\x28\n",
		"/prefix.txt": "hello world\n\xff",
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := MatchFile(fs, "/vanished.txt", MustCompile(".*"))
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to open /vanished.txt")
		assert.False(t, errors.Is(err, ErrNotText))
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		got, err := MatchFile(fs, "/binary.bin", MustCompile(".*"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotText)
		assert.False(t, got)
	})

	t.Run("invalid utf-8 after non-matching lines", func(t *testing.T) {
		_, err := MatchFile(fs, "/late.bin", MustCompile("nope"))
		assert.ErrorIs(t, err, ErrNotText)
	})

	t.Run("match before invalid bytes short-circuits", func(t *testing.T) {
		got, err := MatchFile(fs, "/prefix.txt", MustCompile("hello.*"))
		require.NoError(t, err)
		assert.True(t, got)
	})
}

// countingReader records how many bytes were consumed.
type countingReader struct {
	r *strings.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func TestMatchReader_ShortCircuits(t *testing.T) {
	body := "match\n" + strings.Repeat("filler line that never matches\n", 100_000)
	cr := &countingReader{r: strings.NewReader(body)}

	got, err := MatchReader(iotest.OneByteReader(cr), MustCompile("match"))
	require.NoError(t, err)
	assert.True(t, got)
	assert.Less(t, cr.n, len(body)/10, "reader should stop well before the end of input")
}

func TestMatchReader_PropagatesReadErrors(t *testing.T) {
	_, err := MatchReader(iotest.ErrReader(errors.New("disk on fire")), MustCompile("x"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk on fire")
}
