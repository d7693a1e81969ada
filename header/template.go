// Copyright 2026 elbaro
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package header renders license headers for a comment syntax and
// decides whether a file's existing head already satisfies policy.
package header

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"

	"github.com/elbaro/license-checker/syntax"
)

// Values are the substitutions applied to a header template.
type Values struct {
	Year         int
	Author       string
	Organization string
}

// placeholder sentinels survive regexp.QuoteMeta unescaped, so rendered
// lines double as the source of the relaxed match patterns.
const (
	authorSentinel = "\x00author\x00"
	yearSentinel   = "\x00year\x00"
)

// authorPattern accepts any plausible author identity in an existing
// header: words possibly separated by spaces or tabs.
const authorPattern = `\w+(?:[ \t\w]*\w)?`

// Template is the configured license text with {year}, {author} and
// {org} placeholders. Immutable for the run.
type Template struct {
	lines []string
}

// New validates the template lines. At least one line is required.
func New(lines []string) (*Template, error) {
	if len(lines) == 0 {
		return nil, errors.New("license template has no lines")
	}
	for _, line := range lines {
		if strings.Contains(line, "\n") {
			return nil, errors.Newf("template line contains a newline: %q", line)
		}
	}
	return &Template{lines: lines}, nil
}

// Len returns the number of template lines before syntax wrapping.
func (t *Template) Len() int { return len(t.lines) }

// Render substitutes the values into every template line and wraps the
// result with the comment delimiter. Deterministic for fixed inputs.
func (t *Template) Render(d syntax.Delimiter, v Values) []string {
	rep := strings.NewReplacer(
		"{year}", strconv.Itoa(v.Year),
		"{author}", v.Author,
		"{org}", v.Organization,
	)
	sub := make([]string, len(t.lines))
	for i, line := range t.lines {
		sub[i] = rep.Replace(line)
	}
	return wrap(d, sub)
}

// patterns compiles one anchored regexp per wrapped header line, with
// {author} relaxed to any identity. relaxYear additionally accepts any
// four-digit year, which is how a stale header is still recognized as
// header-shaped.
func (t *Template) patterns(d syntax.Delimiter, v Values, relaxYear bool) []*regexp.Regexp {
	year := strconv.Itoa(v.Year)
	if relaxYear {
		year = yearSentinel
	}
	rep := strings.NewReplacer(
		"{year}", year,
		"{author}", authorSentinel,
		"{org}", v.Organization,
	)
	sub := make([]string, len(t.lines))
	for i, line := range t.lines {
		sub[i] = rep.Replace(line)
	}

	wrapped := wrap(d, sub)
	pats := make([]*regexp.Regexp, len(wrapped))
	for i, line := range wrapped {
		quoted := regexp.QuoteMeta(line)
		quoted = strings.ReplaceAll(quoted, authorSentinel, authorPattern)
		quoted = strings.ReplaceAll(quoted, yearSentinel, `\d{4}`)
		// template lines are literal text outside the placeholders, so
		// compilation cannot fail
		pats[i] = regexp.MustCompile(`^` + quoted + `$`)
	}
	return pats
}

// wrap applies the comment delimiter: block opener line, per-line
// prefix with trailing whitespace trimmed, block closer line.
func wrap(d syntax.Delimiter, lines []string) []string {
	out := make([]string, 0, len(lines)+2)
	if d.Top != "" {
		out = append(out, d.Top)
	}
	for _, line := range lines {
		mid := d.Middle
		if mid != "" {
			mid += " "
		}
		out = append(out, strings.TrimRightFunc(mid+line, unicode.IsSpace))
	}
	if d.Bottom != "" {
		out = append(out, d.Bottom)
	}
	return out
}
