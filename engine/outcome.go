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

package engine

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Op selects the operation applied to each file.
type Op int

const (
	// OpLint is the read-only compliance check. It never mutates files.
	OpLint Op = iota
	// OpFormat inserts or repairs headers in place.
	OpFormat
)

func (op Op) String() string {
	if op == OpFormat {
		return "format"
	}
	return "lint"
}

// Status classifies how processing one file ended.
type Status string

const (
	// StatusCompliant: the header already matches, nothing written.
	StatusCompliant Status = "compliant"
	// StatusInserted: format added a header where none existed.
	StatusInserted Status = "inserted"
	// StatusReplaced: format substituted a stale header.
	StatusReplaced Status = "replaced"
	// StatusSkipped: lint found a non-compliant file it left alone.
	StatusSkipped Status = "skipped"
	// StatusFailed: the file could not be processed.
	StatusFailed Status = "failed"
)

// Outcome is the per-file processing record. It is the only state that
// survives past a single file.
type Outcome struct {
	Path   string
	Status Status
	Detail string
}

// Report aggregates outcomes across the run.
type Report struct {
	Outcomes []Outcome
}

// Sort orders outcomes by path for stable output regardless of worker
// completion order.
func (r *Report) Sort() {
	sort.SliceStable(r.Outcomes, func(i, j int) bool {
		return r.Outcomes[i].Path < r.Outcomes[j].Path
	})
}

// HasFailed reports whether any file failed.
func (r *Report) HasFailed() bool {
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			return true
		}
	}
	return false
}

// AllCompliant reports whether every file ended compliant. Under lint
// this is the policy signal the exit code reflects.
func (r *Report) AllCompliant() bool {
	for _, o := range r.Outcomes {
		if o.Status != StatusCompliant {
			return false
		}
	}
	return true
}

// Counts tallies outcomes per status.
func (r *Report) Counts() map[Status]int {
	counts := map[Status]int{}
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// Render writes one line per file plus a summary count.
func (r *Report) Render(w io.Writer) error {
	for _, o := range r.Outcomes {
		if _, err := fmt.Fprintf(w, "%s: %s\n", o.Path, o.Status); err != nil {
			return err
		}
		if o.Detail != "" {
			for _, line := range strings.Split(strings.TrimRight(o.Detail, "\n"), "\n") {
				if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
					return err
				}
			}
		}
	}

	counts := r.Counts()
	parts := make([]string, 0, 5)
	for _, s := range []Status{StatusCompliant, StatusInserted, StatusReplaced, StatusSkipped, StatusFailed} {
		if counts[s] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[s], s))
		}
	}
	_, err := fmt.Fprintf(w, "%d files: %s\n", len(r.Outcomes), strings.Join(parts, ", "))
	return err
}
