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

package blame

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const porcelainSample = `f5c4b1a0f5c4b1a0f5c4b1a0f5c4b1a0f5c4b1a0 1 1 2
author Alice
author-mail <alice@example.com>
author-time 1561100000
author-tz +0000
committer Bob
committer-mail <bob@example.com>
committer-time 1561100000
committer-tz +0000
summary first commit
filename main.cc
	int main() {
f5c4b1a0f5c4b1a0f5c4b1a0f5c4b1a0f5c4b1a0 2 2
author Alice
author-mail <alice@example.com>
author-time 1561100000
author-tz +0000
committer Bob
committer-mail <bob@example.com>
committer-time 1561100000
committer-tz +0000
summary first commit
filename main.cc
	return 0;
0d9e8c7b0d9e8c7b0d9e8c7b0d9e8c7b0d9e8c7b 3 3 1
author Bob
author-mail <bob@example.com>
author-time 1561200000
author-tz +0000
committer Bob
committer-mail <bob@example.com>
committer-time 1561200000
committer-tz +0000
summary second commit
filename main.cc
	}
`

func TestParsePorcelain(t *testing.T) {
	lines, err := parsePorcelain(strings.NewReader(porcelainSample))
	require.NoError(t, err)
	require.Equal(t, []Line{
		{Author: "Alice"},
		{Author: "Alice"},
		{Author: "Bob"},
	}, lines)
}

func TestParsePorcelainEmpty(t *testing.T) {
	lines, err := parsePorcelain(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, lines)
}

type fakeProvider struct {
	lines []Line
	err   error
}

func (f fakeProvider) Blame(context.Context, string) ([]Line, error) {
	return f.lines, f.err
}

func authors(names ...string) []Line {
	lines := make([]Line, len(names))
	for i, n := range names {
		lines[i] = Line{Author: n}
	}
	return lines
}

func TestResolveDominantAuthor(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		want  string
	}{
		{
			name:  "strict majority",
			lines: authors("A", "B", "A", "A", "B"),
			want:  "A",
		},
		{
			name:  "later author with more lines wins",
			lines: authors("A", "B", "B", "B"),
			want:  "B",
		},
		{
			name:  "tie breaks by first seen",
			lines: authors("B", "A", "A", "B"),
			want:  "B",
		},
		{
			name:  "single author",
			lines: authors("elbaro"),
			want:  "elbaro",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(fakeProvider{lines: tt.lines})
			got, err := r.Resolve(t.Context(), "main.cc")
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	// repeated runs on unchanged history must pick the same author
	r := NewResolver(fakeProvider{lines: authors("A", "B", "B", "A", "C")})
	first, err := r.Resolve(t.Context(), "main.cc")
	require.NoError(t, err)
	for range 10 {
		got, err := r.Resolve(t.Context(), "main.cc")
		require.NoError(t, err)
		require.Equal(t, first, got)
	}
}

func TestResolveNoHistory(t *testing.T) {
	r := NewResolver(fakeProvider{})
	_, err := r.Resolve(t.Context(), "untracked.cc")
	require.ErrorIs(t, err, ErrNoHistory)

	r = NewResolver(fakeProvider{err: ErrNoHistory})
	_, err = r.Resolve(t.Context(), "untracked.cc")
	require.ErrorIs(t, err, ErrNoHistory)
}

// fakeGit puts a shell script named git on PATH so GitProvider runs it
// instead of the real binary.
func fakeGit(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script git shim")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "git")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestGitProviderRejectsOversizedOutput(t *testing.T) {
	fakeGit(t, `i=0
while [ $i -lt 100 ]; do
  printf 'f5c4b1a0f5c4b1a0f5c4b1a0f5c4b1a0f5c4b1a0 1 1 1\nauthor Alice\nfilename main.cc\n\tint main() {\n'
  i=$((i+1))
done
`)

	g := &GitProvider{MaxOutput: 1024}
	_, err := g.Blame(t.Context(), "main.cc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds 1024 bytes")
}

func TestGitProviderWithinCap(t *testing.T) {
	fakeGit(t, `printf 'f5c4b1a0f5c4b1a0f5c4b1a0f5c4b1a0f5c4b1a0 1 1 1\nauthor Alice\nfilename main.cc\n\tint main() {\n'
`)

	g := &GitProvider{MaxOutput: 1024}
	lines, err := g.Blame(t.Context(), "main.cc")
	require.NoError(t, err)
	require.Equal(t, []Line{{Author: "Alice"}}, lines)
}

func TestGitProviderNoHistory(t *testing.T) {
	fakeGit(t, `echo 'fatal: no such path' >&2
exit 128
`)

	g := &GitProvider{}
	_, err := g.Blame(t.Context(), "untracked.cc")
	require.ErrorIs(t, err, ErrNoHistory)
}

func TestResolveSkipsEmptyAuthors(t *testing.T) {
	r := NewResolver(fakeProvider{lines: []Line{{Author: ""}, {Author: "A"}}})
	got, err := r.Resolve(t.Context(), "main.cc")
	require.NoError(t, err)
	require.Equal(t, "A", got)
}
