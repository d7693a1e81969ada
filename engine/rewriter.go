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

// Package engine orchestrates per-file header compliance: syntax
// lookup, matching, lazy author resolution and the atomic rewrite.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/natefinch/atomic"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/elbaro/license-checker/blame"
	"github.com/elbaro/license-checker/header"
	"github.com/elbaro/license-checker/syntax"
)

// ErrIO marks read/write failures on a target file. Recorded as a
// Failed outcome for that file only; the run continues.
var ErrIO = errors.New("i/o failure")

// AuthorResolver is the expensive second phase: it is consulted only
// when a header actually needs to be written.
type AuthorResolver interface {
	Resolve(ctx context.Context, path string) (string, error)
}

// Rewriter applies one operation to one file. Safe for concurrent use;
// all fields are read-only after construction.
type Rewriter struct {
	registry *syntax.Registry
	template *header.Template
	resolver AuthorResolver

	// values carry the run's year and organization; Author is filled
	// per file.
	values              header.Values
	fallbackAuthor      string
	newlineAfterShebang bool

	differ *diffmatchpatch.DiffMatchPatch
}

// NewRewriter wires the per-file pipeline. values.Author is ignored;
// fallbackAuthor substitutes when a file has no history.
func NewRewriter(
	registry *syntax.Registry,
	template *header.Template,
	resolver AuthorResolver,
	values header.Values,
	fallbackAuthor string,
	newlineAfterShebang bool,
) *Rewriter {
	return &Rewriter{
		registry:            registry,
		template:            template,
		resolver:            resolver,
		values:              values,
		fallbackAuthor:      fallbackAuthor,
		newlineAfterShebang: newlineAfterShebang,
		differ:              diffmatchpatch.New(),
	}
}

// Process runs the two-phase check on one file: a cheap textual match
// first, author resolution and a rewrite only on mismatch. Lint never
// mutates anything. Errors never escape; they become Failed outcomes.
func (r *Rewriter) Process(ctx context.Context, path string, op Op) Outcome {
	delim, err := r.registry.Lookup(path)
	if err != nil {
		return Outcome{Path: path, Status: StatusFailed, Detail: err.Error()}
	}

	data, err := os.ReadFile(path) //nolint:gosec // paths come from the user's own invocation
	if err != nil {
		return Outcome{Path: path, Status: StatusFailed, Detail: errors.Mark(err, ErrIO).Error()}
	}

	m := &header.Matcher{
		Delim:               delim,
		Template:            r.template,
		Values:              r.values,
		NewlineAfterShebang: r.newlineAfterShebang,
	}
	eval := m.Evaluate(data)
	if eval.Result == header.Compliant {
		return Outcome{Path: path, Status: StatusCompliant}
	}

	if op == OpLint {
		return Outcome{Path: path, Status: StatusSkipped, Detail: r.lintDetail(eval, delim)}
	}

	author, err := r.resolver.Resolve(ctx, path)
	if err != nil {
		if !errors.Is(err, blame.ErrNoHistory) {
			return Outcome{Path: path, Status: StatusFailed, Detail: err.Error()}
		}
		author = r.fallbackAuthor
	}

	values := r.values
	values.Author = author
	rendered := r.template.Render(delim, values)

	out := eval.Rebuild(rendered)
	if bytes.Equal(out, data) {
		return Outcome{Path: path, Status: StatusCompliant}
	}

	info, err := os.Stat(path)
	if err != nil {
		return Outcome{Path: path, Status: StatusFailed, Detail: errors.Mark(err, ErrIO).Error()}
	}
	// write-to-temp-then-rename so an interrupted run never leaves a
	// truncated file
	if err := atomic.WriteFile(path, bytes.NewReader(out)); err != nil {
		return Outcome{Path: path, Status: StatusFailed, Detail: errors.Mark(err, ErrIO).Error()}
	}
	if err := os.Chmod(path, info.Mode()); err != nil {
		return Outcome{Path: path, Status: StatusFailed, Detail: errors.Mark(err, ErrIO).Error()}
	}

	status := StatusInserted
	if eval.Result == header.NeedsReplacement {
		status = StatusReplaced
	}
	return Outcome{Path: path, Status: status}
}

// lintDetail describes the pending action and a pretty diff between
// the existing head and the expected header. The expected side is
// rendered with the fallback author: lint stays cheap and never sends
// an authorship query.
func (r *Rewriter) lintDetail(eval header.Evaluation, delim syntax.Delimiter) string {
	values := r.values
	values.Author = r.fallbackAuthor
	want := strings.Join(r.template.Render(delim, values), "\n")
	got := strings.Join(eval.OldHeader, "\n")

	diffs := r.differ.DiffMain(got, want, false)
	return fmt.Sprintf("%s:\n%s", eval.Result, r.differ.DiffPrettyText(diffs))
}
