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

// Package syntax models the comment delimiters used to write a license
// header in each supported language and resolves them by file extension.
package syntax

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Delimiter describes how a language marks header lines as comments.
// Line-comment languages set only Middle. Block-comment languages set
// Top and Bottom, with an optional Middle applied to interior lines.
type Delimiter struct {
	Top    string `json:"top,omitempty"`
	Middle string `json:"middle,omitempty"`
	Bottom string `json:"bottom,omitempty"`
}

// Empty is the zero Delimiter.
var Empty = Delimiter{}

// IsZero reports whether no delimiter fields are set.
func (d Delimiter) IsZero() bool { return d == Empty }

// Open returns the token that begins a header written with this
// delimiter: the block opener if one exists, the line prefix otherwise.
func (d Delimiter) Open() string {
	if d.Top != "" {
		return d.Top
	}
	return d.Middle
}

// Validate checks the delimiter invariant: either a line prefix or a
// complete block pair must be present.
func (d Delimiter) Validate() error {
	if d.Top != "" && d.Bottom == "" {
		return errors.New("block delimiter has a top but no bottom")
	}
	if d.Bottom != "" && d.Top == "" {
		return errors.New("block delimiter has a bottom but no top")
	}
	if d.Top == "" && d.Middle == "" {
		return errors.New("delimiter must set a line prefix or a block pair")
	}
	return nil
}

// Builtin delimiters addressable by type name from the configuration.
var Builtin = map[string]Delimiter{
	"c":     {Middle: "//"},
	"css":   {Top: "/*", Middle: " *", Bottom: " */"},
	"go":    {Middle: "//"},
	"helm":  {Top: "{{/*", Bottom: "*/}}"},
	"html":  {Top: "<!--", Bottom: "-->"},
	"lisp":  {Middle: ";;"},
	"shell": {Middle: "#"},
	"sql":   {Middle: "--"},
	"yaml":  {Middle: "#"},
}

// ErrUnsupportedFileType marks lookups for extensions with no
// registered delimiter.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// Registry maps file extensions to comment delimiters. It is built once
// from the configuration and read-only afterwards.
type Registry struct {
	byExt map[string]Delimiter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: map[string]Delimiter{}}
}

// Register binds an extension (with or without the leading dot) to a
// delimiter. Re-registering an extension is a configuration defect.
func (r *Registry) Register(ext string, d Delimiter) error {
	if err := d.Validate(); err != nil {
		return errors.Wrapf(err, "extension %q", ext)
	}
	ext = normalizeExt(ext)
	if ext == "." {
		return errors.New("empty extension")
	}
	if _, ok := r.byExt[ext]; ok {
		return errors.Newf("extension %q registered twice", ext)
	}
	r.byExt[ext] = d
	return nil
}

// Lookup resolves the delimiter for a file path by its extension.
func (r *Registry) Lookup(path string) (Delimiter, error) {
	ext := filepath.Ext(path)
	if d, ok := r.byExt[ext]; ok {
		return d, nil
	}
	return Empty, errors.Wrapf(ErrUnsupportedFileType, "%q", ext)
}

// Supports reports whether the extension of path has a registered
// delimiter. Used by directory walks to skip foreign files silently.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[filepath.Ext(path)]
	return ok
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
