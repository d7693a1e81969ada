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

// Package blame resolves the dominant author of a file from
// version-control line-authorship statistics.
package blame

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Line attributes one current line of a file to the contributor who
// last touched it.
type Line struct {
	Author string
}

// Provider supplies per-line authorship for a file at the current
// checkout. The engine never mutates version-control state through it.
type Provider interface {
	Blame(ctx context.Context, path string) ([]Line, error)
}

// ErrNoHistory marks files with no tracked history (untracked, newly
// created, or outside any repository).
var ErrNoHistory = errors.New("no version-control history")

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxOutput = 8 << 20 // line-porcelain is verbose
)

// GitProvider obtains line authorship by running git blame. The git
// binary must be on PATH.
type GitProvider struct {
	// Timeout bounds a single blame invocation. Zero means 30s.
	Timeout time.Duration
	// MaxOutput caps the bytes accepted from git; output beyond the
	// cap fails the query, since a truncated stream would silently
	// skew the line counts. Zero means 8MB.
	MaxOutput int64
}

// Blame runs git blame --line-porcelain and returns one Line per
// current line of the file. Untracked files and paths outside a
// repository fail with ErrNoHistory.
func (g *GitProvider) Blame(ctx context.Context, path string) ([]Line, error) {
	timeout := g.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	maxOutput := g.MaxOutput
	if maxOutput == 0 {
		maxOutput = defaultMaxOutput
	}

	cmd := exec.CommandContext(ctx, "git", "blame", "--line-porcelain", "--", base)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrapf(err, "git blame %s", path)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "git blame %s", path)
	}

	// stream through the cap so git's output never buffers unbounded
	out, readErr := io.ReadAll(io.LimitReader(stdout, maxOutput+1))
	if int64(len(out)) > maxOutput {
		_, _ = io.Copy(io.Discard, stdout)
		_ = cmd.Wait()
		return nil, errors.Newf("git blame %s: output exceeds %d bytes", path, maxOutput)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		// git exits 128 for "no such path in HEAD", untracked files
		// and "not a git repository".
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 128 {
			return nil, errors.Wrapf(ErrNoHistory, "%s", path)
		}
		return nil, errors.Wrapf(err, "git blame %s: %s", path, strings.TrimSpace(stderr.String()))
	}
	if readErr != nil {
		return nil, errors.Wrap(readErr, "reading blame output")
	}

	return parsePorcelain(bytes.NewReader(out))
}

// parsePorcelain extracts the per-line author names from git blame
// --line-porcelain output. Each blamed line contributes exactly one
// "author " record ahead of its tab-prefixed content line.
func parsePorcelain(r io.Reader) ([]Line, error) {
	var lines []Line
	author := ""
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for s.Scan() {
		text := s.Text()
		switch {
		case strings.HasPrefix(text, "author "):
			author = strings.TrimPrefix(text, "author ")
		case strings.HasPrefix(text, "\t"):
			lines = append(lines, Line{Author: author})
		}
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "reading blame output")
	}
	return lines, nil
}

// Resolver selects the author owning the most lines of a file.
type Resolver struct {
	provider Provider
}

// NewResolver returns a Resolver backed by the given provider.
func NewResolver(p Provider) *Resolver {
	return &Resolver{provider: p}
}

// Resolve returns the identity that last touched the largest number of
// the file's current lines. Ties break by first-seen order in the blame
// stream (file line order), so repeated runs on unchanged history give
// the same answer. Fails with ErrNoHistory when no line carries an
// author.
func (r *Resolver) Resolve(ctx context.Context, path string) (string, error) {
	lines, err := r.provider.Blame(ctx, path)
	if err != nil {
		return "", err
	}

	counts := map[string]int{}
	var order []string
	for _, line := range lines {
		if line.Author == "" {
			continue
		}
		if _, seen := counts[line.Author]; !seen {
			order = append(order, line.Author)
		}
		counts[line.Author]++
	}
	if len(order) == 0 {
		return "", errors.Wrapf(ErrNoHistory, "%s", path)
	}

	best := order[0]
	for _, author := range order[1:] {
		if counts[author] > counts[best] {
			best = author
		}
	}
	return best, nil
}
