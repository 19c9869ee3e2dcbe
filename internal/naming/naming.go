// Package naming builds output filenames from a user template.
//
// A template is literal text with two recognised placeholders, {name} for the
// source file name and {num} for a sequential number. Substitution is literal;
// any other {word} token is rejected when the template is parsed.
package naming

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Placeholder is one of the recognised template tokens.
type Placeholder string

const (
	PlaceholderName Placeholder = "{name}"
	PlaceholderNum  Placeholder = "{num}"
)

var placeholders = map[string]Placeholder{
	string(PlaceholderName): PlaceholderName,
	string(PlaceholderNum):  PlaceholderNum,
}

var (
	ErrUnknownPlaceholder = errors.New("unknown placeholder")
	ErrNoPlaceholder      = errors.New("pattern must include at least one placeholder: {name} or {num}")
	ErrPathSeparator      = errors.New("pattern must not contain path separators")
)

type part struct {
	literal     string
	placeholder Placeholder
}

// Template is a parsed naming pattern.
type Template struct {
	raw   string
	parts []part
}

// Parse tokenises pattern. Braces that do not enclose a word are kept as
// literal text.
func Parse(pattern string) (*Template, error) {
	t := &Template{raw: pattern}
	var lit strings.Builder

	for i := 0; i < len(pattern); {
		if pattern[i] == '{' {
			if end := strings.IndexByte(pattern[i:], '}'); end > 0 {
				token := pattern[i : i+end+1]
				if p, ok := placeholders[token]; ok {
					if lit.Len() > 0 {
						t.parts = append(t.parts, part{literal: lit.String()})
						lit.Reset()
					}
					t.parts = append(t.parts, part{placeholder: p})
					i += len(token)
					continue
				}
				if isWord(token[1 : len(token)-1]) {
					return nil, errors.Wrapf(ErrUnknownPlaceholder, "%s in pattern %q", token, pattern)
				}
			}
		}
		lit.WriteByte(pattern[i])
		i++
	}
	if lit.Len() > 0 {
		t.parts = append(t.parts, part{literal: lit.String()})
	}
	// Outputs are written flat into one folder.
	if strings.ContainsAny(pattern, `/\`) {
		return nil, errors.Wrapf(ErrPathSeparator, "pattern %q", pattern)
	}
	return t, nil
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// Validate is the front-end guard for a custom pattern: it must parse and
// carry at least one placeholder so that the filename varies per size.
func Validate(pattern string) error {
	t, err := Parse(pattern)
	if err != nil {
		return err
	}
	if !t.HasPlaceholder() {
		return ErrNoPlaceholder
	}
	return nil
}

func (t *Template) HasPlaceholder() bool {
	for _, p := range t.parts {
		if p.placeholder != "" {
			return true
		}
	}
	return false
}

// Expand substitutes name and num into the template.
func (t *Template) Expand(name string, num int) string {
	var b strings.Builder
	for _, p := range t.parts {
		switch p.placeholder {
		case PlaceholderName:
			b.WriteString(name)
		case PlaceholderNum:
			b.WriteString(strconv.Itoa(num))
		default:
			b.WriteString(p.literal)
		}
	}
	return b.String()
}

func (t *Template) String() string {
	return t.raw
}

// Scheme decides the filename of each output. A nil Template selects the
// default "{name}_{size}x{size}{ext}" naming.
type Scheme struct {
	Template          *Template
	StartNumber       int
	IncludeDimensions bool
}

// Filename returns the output filename for the size at position index of the
// requested size list.
func (s Scheme) Filename(name string, index int, size int, ext string) string {
	if s.Template == nil {
		return fmt.Sprintf("%s%s%s", name, Dimensions(size), ext)
	}
	custom := s.Template.Expand(name, s.StartNumber+index)
	if s.IncludeDimensions {
		custom += Dimensions(size)
	}
	return custom + ext
}

// Dimensions renders the "_{size}x{size}" filename suffix.
func Dimensions(size int) string {
	return fmt.Sprintf("_%dx%d", size, size)
}
