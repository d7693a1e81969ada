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

// Package config loads and validates the declarative run configuration:
// the license template, the language table and the ignore rules.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"sigs.k8s.io/yaml"

	"github.com/elbaro/license-checker/syntax"
)

// ErrConfiguration marks configuration defects. They are fatal to the
// whole run and surface before any file is touched.
var ErrConfiguration = errors.New("configuration error")

// Language binds file extensions to a comment delimiter, either a
// builtin type name or an inline delimiter (exactly one of the two).
type Language struct {
	Name       string           `json:"name"`
	Extensions []string         `json:"extensions"`
	Type       string           `json:"type,omitempty"`
	Delimiter  syntax.Delimiter `json:"delimiter,omitempty"`
}

func (l *Language) validate() error {
	var errs []error

	if len(l.Extensions) == 0 {
		errs = append(errs, errors.Newf("language %q has no extensions", l.Name))
	}
	if l.Type == "" && l.Delimiter.IsZero() {
		errs = append(errs, errors.Newf("language %q must specify a delimiter or a builtin type", l.Name))
	}
	if l.Type != "" && !l.Delimiter.IsZero() {
		errs = append(errs, errors.Newf("language %q must specify only one of delimiter or builtin type", l.Name))
	}
	if l.Type != "" {
		if _, ok := syntax.Builtin[l.Type]; !ok {
			errs = append(errs, errors.Newf("language %q: invalid builtin delimiter type %q", l.Name, l.Type))
		}
	} else if !l.Delimiter.IsZero() {
		if err := l.Delimiter.Validate(); err != nil {
			errs = append(errs, errors.Wrapf(err, "language %q", l.Name))
		}
	}

	return errors.Join(errs...)
}

func (l *Language) delimiter() syntax.Delimiter {
	if l.Type != "" {
		return syntax.Builtin[l.Type]
	}
	return l.Delimiter
}

// Rule selects paths for exclusion, by exact base name, regex, leading
// directory, or extension. An extension combines with the other
// matchers; of name/match/directory at most one may be set.
type Rule struct {
	Name      string `json:"name,omitempty"`
	Match     string `json:"match,omitempty"`
	Directory string `json:"directory,omitempty"`
	Extension string `json:"extension,omitempty"`

	matchRegex *regexp.Regexp
}

func (r *Rule) initializeAndValidate() error {
	var errs []error

	if r.Match != "" {
		re, err := regexp.Compile(strings.TrimSpace(r.Match))
		if err != nil {
			errs = append(errs, err)
		}
		r.matchRegex = re
	}

	set := 0
	for _, s := range []string{r.Name, r.Match, r.Directory} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		errs = append(errs, errors.New("ignore rule must only specify one of name, match, or directory"))
	}
	if set == 0 && r.Extension == "" {
		errs = append(errs, errors.New("ignore rule must specify some match criterion"))
	}

	return errors.Join(errs...)
}

func (r *Rule) extensionMatches(path string) bool {
	if r.Extension == "" {
		return true
	}
	return filepath.Ext(path) == r.Extension
}

// Matches reports whether path is selected by this rule.
func (r *Rule) Matches(path string) bool {
	if r.Name != "" {
		if filepath.Base(path) == r.Name {
			return r.extensionMatches(path)
		}
	}
	if r.matchRegex != nil {
		if r.matchRegex.MatchString(path) {
			return r.extensionMatches(path)
		}
	}
	if r.Directory != "" {
		if strings.HasPrefix(path, r.Directory) {
			return r.extensionMatches(path)
		}
	}
	if r.Name == "" && r.Match == "" && r.Directory == "" {
		return r.extensionMatches(path)
	}
	return false
}

// Config is the already-parsed run configuration, shared read-only
// across all files in a run.
type Config struct {
	// Template is the license text with {year}, {author} and {org}
	// placeholders, one entry per header line.
	Template []string `json:"template"`
	// Organization substitutes {org}.
	Organization string `json:"organization,omitempty"`
	// FallbackAuthor substitutes {author} when a file has no
	// version-control history. Defaults to the organization.
	FallbackAuthor string `json:"fallback_author,omitempty"`
	// NewlineAfterShebang requires a blank line between a shebang and
	// the header.
	NewlineAfterShebang bool `json:"newline_after_shebang,omitempty"`
	// Languages map extensions to delimiters.
	Languages []*Language `json:"languages"`
	// Ignore excludes paths from directory walks.
	Ignore []*Rule `json:"ignore,omitempty"`
	// Workers bounds per-file concurrency. Zero picks a default.
	Workers int `json:"workers,omitempty"`
}

// Load reads and validates a YAML configuration file. Any defect fails
// with ErrConfiguration before a single target file is processed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user's responsibility for security of passed file here
	if err != nil {
		return nil, errors.Mark(err, ErrConfiguration)
	}

	c := &Config{}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parsing %s", path), ErrConfiguration)
	}

	if err := c.InitializeAndValidate(); err != nil {
		return nil, err
	}
	return c, nil
}

// InitializeAndValidate compiles the rule regexes, applies defaults and
// reports every defect at once.
func (c *Config) InitializeAndValidate() error {
	var errs []error

	if len(c.Template) == 0 {
		errs = append(errs, errors.New("must specify a license template"))
	}
	if len(c.Languages) == 0 {
		errs = append(errs, errors.New("must specify at least one language"))
	}
	for _, lang := range c.Languages {
		if err := lang.validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, rule := range c.Ignore {
		if err := rule.initializeAndValidate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Workers < 0 {
		errs = append(errs, errors.New("workers must not be negative"))
	}

	if c.FallbackAuthor == "" {
		c.FallbackAuthor = c.Organization
	}

	if err := errors.Join(errs...); err != nil {
		return errors.Mark(err, ErrConfiguration)
	}
	return nil
}

// BuildRegistry materializes the extension registry from the language
// table. Duplicate extensions across languages are a defect.
func (c *Config) BuildRegistry() (*syntax.Registry, error) {
	reg := syntax.NewRegistry()
	var errs []error
	for _, lang := range c.Languages {
		for _, ext := range lang.Extensions {
			if err := reg.Register(ext, lang.delimiter()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, errors.Mark(err, ErrConfiguration)
	}
	return reg, nil
}

// Ignored reports whether any ignore rule selects path.
func (c *Config) Ignored(path string) bool {
	for _, rule := range c.Ignore {
		if rule.Matches(path) {
			return true
		}
	}
	return false
}
