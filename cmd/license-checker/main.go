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

// Command license-checker lints and formats license headers across
// source files, attributing each file to its dominant git author.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/elbaro/license-checker/blame"
	"github.com/elbaro/license-checker/config"
	"github.com/elbaro/license-checker/engine"
	"github.com/elbaro/license-checker/header"
)

const (
	exitOK = iota
	exitViolation
	exitFailure
)

var (
	configPath string
	quiet      bool
	verbose    bool
	workers    int
)

func main() {
	os.Exit(run())
}

func run() int {
	code := exitOK

	root := &cobra.Command{
		Use:           "license-checker",
		Short:         "Check and fix license headers in source files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".license-checker.yaml", "path to config file")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress per-file output")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log per-file progress")
	root.PersistentFlags().IntVar(&workers, "workers", 0, "max concurrent files (0 = number of CPUs)")

	root.AddCommand(
		&cobra.Command{
			Use:   "lint <paths...>",
			Short: "Report files whose license header is missing or stale",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var err error
				code, err = runOp(cmd, args, engine.OpLint)
				return err
			},
		},
		&cobra.Command{
			Use:   "format <paths...>",
			Short: "Insert or repair license headers in place",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var err error
				code, err = runOp(cmd, args, engine.OpFormat)
				return err
			},
		},
	)

	if err := root.Execute(); err != nil {
		if !quiet {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		if code == exitOK {
			code = exitFailure
		}
	}
	return code
}

func runOp(cmd *cobra.Command, paths []string, op engine.Op) (int, error) {
	log := newLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		// fatal to the whole run, no file has been touched
		return exitFailure, err
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	registry, err := cfg.BuildRegistry()
	if err != nil {
		return exitFailure, err
	}
	template, err := header.New(cfg.Template)
	if err != nil {
		return exitFailure, err
	}

	resolver := blame.NewResolver(&blame.GitProvider{})
	values := header.Values{
		Year:         time.Now().Year(),
		Organization: cfg.Organization,
	}
	rewriter := engine.NewRewriter(
		registry, template, resolver,
		values, cfg.FallbackAuthor, cfg.NewlineAfterShebang,
	)

	eng := engine.New(cfg, registry, rewriter, log)
	report, err := eng.Run(cmd.Context(), paths, op)
	if err != nil {
		return exitFailure, err
	}

	if !quiet {
		if err := report.Render(os.Stdout); err != nil {
			return exitFailure, err
		}
	}

	switch {
	case report.HasFailed():
		return exitFailure, nil
	case op == engine.OpLint && !report.AllCompliant():
		return exitViolation, nil
	default:
		return exitOK, nil
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
