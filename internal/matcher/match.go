package matcher

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ErrNotText is returned when a file's content is not valid UTF-8.
var ErrNotText = errors.New("content is not valid UTF-8 text")

// MatchFile reports whether any line of the file at path fully matches p.
//
// A nil pattern matches without opening the file. Otherwise the file is read
// line by line and reading stops at the first matching line. Lines end at
// "\n", "\r\n", a lone "\r", U+0085, U+2028 or U+2029; the terminator is not
// part of the line.
func MatchFile(fsys afero.Fs, path string, p *Pattern) (matched bool, err error) {
	if p == nil {
		return true, nil
	}

	f, err := fsys.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	matched, err = MatchReader(f, p)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return matched, nil
}

// MatchReader reports whether any line read from r fully matches p.
func MatchReader(r io.Reader, p *Pattern) (bool, error) {
	if p == nil {
		return true, nil
	}

	br := bufio.NewReader(transform.NewReader(r, encoding.UTF8Validator))
	var line strings.Builder
	for {
		c, _, err := br.ReadRune()
		if errors.Is(err, encoding.ErrInvalidUTF8) {
			return false, ErrNotText
		}
		if errors.Is(err, io.EOF) {
			// Content after the last terminator is a line; nothing after it is not.
			return line.Len() > 0 && p.MatchString(line.String()), nil
		}
		if err != nil {
			return false, err
		}

		if !isLineTerminator(c) {
			line.WriteRune(c)
			continue
		}
		if c == '\r' {
			if next, err := br.Peek(1); err == nil && next[0] == '\n' {
				_, _ = br.Discard(1)
			}
		}

		if p.MatchString(line.String()) {
			return true, nil
		}
		line.Reset()
	}
}

func isLineTerminator(c rune) bool {
	switch c {
	case '\n', '\r', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
