// Package matcher decides whether a file's text content satisfies a pattern.
//
// Patterns use full-line semantics: a line matches only when the whole line,
// without its terminator, is accepted by the expression.
package matcher

import (
	"fmt"
	"regexp"
)

// Pattern is a compiled full-line expression. A nil *Pattern matches
// everything. Patterns are immutable and safe to share.
type Pattern struct {
	expr string
	re   *regexp.Regexp
}

// Compile compiles expr into a Pattern anchored at both ends of the line.
//
// expr must be valid on its own; only then are its groups balanced and the
// anchoring group cannot be closed from inside it.
func Compile(expr string) (*Pattern, error) {
	if _, err := regexp.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}

	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	return &Pattern{expr: expr, re: re}, nil
}

// MustCompile is like Compile but panics if expr cannot be compiled.
func MustCompile(expr string) *Pattern {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// MatchString reports whether the whole of line is accepted by the pattern.
func (p *Pattern) MatchString(line string) bool {
	if p == nil {
		return true
	}
	return p.re.MatchString(line)
}

// String returns the expression the pattern was compiled from.
func (p *Pattern) String() string {
	if p == nil {
		return ""
	}
	return p.expr
}
