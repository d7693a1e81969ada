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

package header

import (
	"regexp"
	"strings"

	"github.com/elbaro/license-checker/syntax"
)

// Result classifies a file's head against the expected header.
type Result int

const (
	// Compliant means the head already matches and no write is needed.
	Compliant Result = iota
	// NeedsInsertion means no header-shaped content is present; the
	// header goes in after any prologue.
	NeedsInsertion
	// NeedsReplacement means a header-shaped block is present but its
	// text differs (stale year, stale author, wrong layout).
	NeedsReplacement
)

func (r Result) String() string {
	switch r {
	case Compliant:
		return "compliant"
	case NeedsInsertion:
		return "needs insertion"
	case NeedsReplacement:
		return "needs replacement"
	}
	return "unknown"
}

// Matcher evaluates file heads for one comment syntax. The comparison
// pass relaxes only the author placeholder, so compliant files never
// trigger an authorship query.
//
// For line syntaxes the replaceable header block is the entire
// contiguous run of comment lines at the top of the file: a doc
// comment touching a stale header with no blank line between them is
// excised together with it.
type Matcher struct {
	Delim    syntax.Delimiter
	Template *Template
	// Values drive the comparison pass; Author is ignored there.
	Values Values
	// NewlineAfterShebang requires a blank line between a shebang and
	// the header, and makes formatting insert one.
	NewlineAfterShebang bool
}

// Evaluation captures what Evaluate decided and the pieces needed to
// rebuild the file around a freshly rendered header.
type Evaluation struct {
	Result Result
	// Prologue is the preserved head (shebang line, plus the blank
	// separator when configured), already normalized for rebuilding.
	Prologue []string
	// OldHeader is the excised header block on NeedsReplacement,
	// empty otherwise. Kept for diagnostics.
	OldHeader []string
	// Body is everything after the prologue and any excised header.
	Body []string
}

// Evaluate inspects the file content line-wise. It never reads beyond
// what the decision requires and never mutates anything.
func (m *Matcher) Evaluate(content []byte) Evaluation {
	lines := splitLines(content)

	var prologue []string
	shebangOK := true
	rest := lines

	// leading blank lines are preserved prologue, skipped before
	// comparison
	for len(rest) > 0 && rest[0] == "" {
		prologue = append(prologue, "")
		rest = rest[1:]
	}
	if len(rest) > 0 && strings.HasPrefix(rest[0], "#!") {
		prologue = append(prologue, rest[0])
		rest = rest[1:]
		if m.NewlineAfterShebang {
			prologue = append(prologue, "")
			if len(rest) > 0 && rest[0] == "" {
				rest = rest[1:]
			} else {
				shebangOK = false
			}
		}
		// blanks behind the shebang are prologue too, option or not
		for len(rest) > 0 && rest[0] == "" {
			prologue = append(prologue, "")
			rest = rest[1:]
		}
	}

	strict := m.Template.patterns(m.Delim, m.Values, false)
	if shebangOK && matchesPrefix(rest, strict) && separatorOK(rest, len(strict)) {
		return Evaluation{Result: Compliant, Prologue: prologue, Body: rest}
	}

	end := m.leadingBlockEnd(rest)
	relaxed := m.Template.patterns(m.Delim, m.Values, true)
	if end == 0 || !m.headerShaped(rest[:end], relaxed) {
		return Evaluation{Result: NeedsInsertion, Prologue: prologue, Body: rest}
	}
	return Evaluation{
		Result:    NeedsReplacement,
		Prologue:  prologue,
		OldHeader: rest[:end],
		Body:      rest[end:],
	}
}

// Rebuild assembles the file with rendered in header position: the
// prologue, the header, one blank separator, then the body. An empty
// body yields the header alone.
func (e Evaluation) Rebuild(rendered []string) []byte {
	out := make([]string, 0, len(e.Prologue)+len(rendered)+len(e.Body)+1)
	out = append(out, e.Prologue...)
	out = append(out, rendered...)
	body := e.Body
	for len(body) > 0 && body[0] == "" {
		body = body[1:]
	}
	if len(body) > 0 {
		out = append(out, "")
		out = append(out, body...)
	}
	return []byte(strings.Join(out, "\n") + "\n")
}

// leadingBlockEnd returns the line count of the comment block opening
// the file, 0 when the file does not start with one. Block syntaxes
// run until the closing delimiter line; line syntaxes run while the
// prefix holds.
func (m *Matcher) leadingBlockEnd(rest []string) int {
	if len(rest) == 0 || !strings.HasPrefix(rest[0], m.Delim.Open()) {
		return 0
	}
	if m.Delim.Top != "" {
		// closers compare modulo surrounding whitespace so "*/" still
		// terminates a block whose configured bottom is " */"; an
		// overly strict compare here would swallow the whole file
		bottom := strings.TrimSpace(m.Delim.Bottom)
		first := strings.TrimSpace(rest[0])
		if first != strings.TrimSpace(m.Delim.Top) && strings.HasSuffix(first, bottom) {
			// single-line block comment
			return 1
		}
		for i := 1; i < len(rest); i++ {
			if strings.TrimSpace(rest[i]) == bottom {
				return i + 1
			}
		}
		// unterminated block, the whole file is the header
		return len(rest)
	}
	i := 0
	for i < len(rest) && strings.HasPrefix(rest[i], m.Delim.Middle) {
		i++
	}
	return i
}

// headerShaped reports whether a leading comment block is a license
// header rather than ordinary documentation: either it matches the
// template with author and year relaxed (covers stale headers and
// truncated prefixes), or it mentions Copyright. A plain doc comment
// is left alone and the header is inserted above it.
func (m *Matcher) headerShaped(block []string, relaxed []*regexp.Regexp) bool {
	if matchesTruncated(block, relaxed) {
		return true
	}
	for _, line := range block {
		if strings.Contains(line, "Copyright") {
			return true
		}
	}
	return false
}

// matchesPrefix reports whether lines opens with a full match of every
// pattern. A file shorter than the header can never match here, so a
// strict prefix of the header is never Compliant.
func matchesPrefix(lines []string, pats []*regexp.Regexp) bool {
	if len(lines) < len(pats) {
		return false
	}
	for i, pat := range pats {
		if !pat.MatchString(lines[i]) {
			return false
		}
	}
	return true
}

// matchesTruncated is the shape-detection variant: a strict prefix of
// the header (file shorter than the header) still counts.
func matchesTruncated(lines []string, pats []*regexp.Regexp) bool {
	n := min(len(lines), len(pats))
	if n == 0 {
		return false
	}
	for i := 0; i < n; i++ {
		if !pats[i].MatchString(lines[i]) {
			return false
		}
	}
	return true
}

// separatorOK enforces the layout after a matched header: nothing, a
// lone trailing blank, or exactly one blank line before content.
func separatorOK(lines []string, n int) bool {
	switch {
	case len(lines) == n:
		return true
	case lines[n] != "":
		return false
	case len(lines) == n+1:
		return true
	default:
		return lines[n+1] != ""
	}
}

func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	s := string(content)
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
