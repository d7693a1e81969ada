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
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/elbaro/license-checker/config"
	"github.com/elbaro/license-checker/syntax"
)

// Engine iterates the target file set and applies the Rewriter to each
// file concurrently. Files are independent; there is no cross-file
// rollback, so an aborted format leaves already-written files written.
type Engine struct {
	rewriter *Rewriter
	registry *syntax.Registry
	cfg      *config.Config
	log      *slog.Logger
	workers  int
}

// New builds an Engine. A zero worker count in the config picks
// GOMAXPROCS; blame dominates latency, so files run in parallel.
func New(cfg *config.Config, registry *syntax.Registry, rewriter *Rewriter, log *slog.Logger) *Engine {
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		rewriter: rewriter,
		registry: registry,
		cfg:      cfg,
		log:      log,
		workers:  workers,
	}
}

// Run processes every target path. Directory arguments are walked with
// the configured ignore rules, and walked files with unregistered
// extensions are skipped silently; explicitly named files always get an
// outcome, including Failed for unsupported extensions.
func (e *Engine) Run(ctx context.Context, paths []string, op Op) (*Report, error) {
	report := &Report{}

	targets, failed := e.expand(paths)
	report.Outcomes = append(report.Outcomes, failed...)

	var mu sync.Mutex
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(e.workers)

	for _, path := range targets {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcome := e.rewriter.Process(ctx, path, op)
			e.log.Debug("processed file", "path", outcome.Path, "status", outcome.Status)
			mu.Lock()
			report.Outcomes = append(report.Outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	report.Sort()
	return report, nil
}

// expand resolves CLI arguments into concrete files. Unreadable paths
// become Failed outcomes rather than aborting the run.
func (e *Engine) expand(paths []string) (targets []string, failed []Outcome) {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			failed = append(failed, Outcome{Path: path, Status: StatusFailed, Detail: err.Error()})
			continue
		}
		if !info.IsDir() {
			targets = append(targets, path)
			continue
		}

		walkErr := filepath.WalkDir(path, func(sub string, d fs.DirEntry, err error) error {
			if err != nil {
				failed = append(failed, Outcome{Path: sub, Status: StatusFailed, Detail: err.Error()})
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if e.cfg.Ignored(sub) || !e.registry.Supports(sub) {
				return nil
			}
			targets = append(targets, sub)
			return nil
		})
		if walkErr != nil {
			failed = append(failed, Outcome{Path: path, Status: StatusFailed, Detail: walkErr.Error()})
		}
	}
	return targets, failed
}
