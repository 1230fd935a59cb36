// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/esswap/esswap/diff"
	"github.com/esswap/esswap/swap"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type flags struct {
	config  string
	diff    bool
	write   bool
	list    bool
	json    bool
	id      string
	jobs    int
	verbose bool
}

// An app holds the state of one esswap invocation.
type app struct {
	flags    flags
	engine   *swap.Engine
	diags    swap.DiagnosticList
	watching bool
	log      zerolog.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "esswap: %v\n", err)
		var usage *errUsage
		if errors.As(err, &usage) {
			fmt.Fprint(os.Stderr, cmd.UsageString())
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "esswap [flags] [path ...]",
		Short: "Rewrite lodash imports to es-toolkit/compat",
		Long: `Esswap rewrites lodash imports in JavaScript and TypeScript files to import
from es-toolkit/compat instead, for the functions es-toolkit/compat provides.
Imports using anything else are left unchanged and reported.

Each path is a file or a directory to search for source files. With no
paths, esswap reads standard input.`,
		// Paths, not subcommand names.
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), args)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.flags.config, "config", "", "read configuration from YAML `file`")
	f.BoolVarP(&a.flags.write, "write", "w", false, "write result to (source) file instead of stdout")
	f.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug messages")

	f = root.Flags()
	f.BoolVarP(&a.flags.diff, "diff", "d", false, "show diffs instead of rewriting files")
	f.BoolVarP(&a.flags.list, "list", "l", false, "list files whose imports would change")
	f.BoolVar(&a.flags.json, "json", false, "print {code, map} result for standard input, or null")
	f.StringVar(&a.flags.id, "id", "<stdin>", "file `name` to report for standard input")
	f.IntVarP(&a.flags.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "process `n` files in parallel")

	root.AddCommand(newWatchCommand(a))
	return root
}

func (a *app) setup() error {
	a.log = newLogger(a.stderr, a.flags.verbose)

	cfg := swap.DefaultConfig()
	if a.flags.config != "" {
		var err error
		cfg, err = swap.LoadConfig(a.flags.config)
		if err != nil {
			return err
		}
	}
	e, err := swap.New(swap.Options{
		Config:     cfg,
		Reporter:   swap.ReporterFunc(a.diagnose),
		Concurrent: true,
	})
	if err != nil {
		return err
	}
	a.engine = e
	a.log.Debug().
		Str("legacy", cfg.Legacy).
		Str("replacement", cfg.Replacement).
		Msg("engine ready")
	return nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if a.flags.jobs < 1 {
		return newErrUsage("-j must be at least 1")
	}
	if len(args) == 0 {
		if a.flags.write {
			return newErrUsage("cannot use -w with standard input")
		}
		err := a.stdinFile()
		a.summarize()
		return err
	}
	if a.flags.json {
		return newErrUsage("--json applies only to standard input")
	}

	files, err := collect(args)
	if err != nil {
		return err
	}

	out := make([][]byte, len(files))
	var failed atomic.Bool
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.flags.jobs)
	for i, name := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := a.file(name)
			if err != nil {
				a.log.Error().Err(err).Msg(name)
				failed.Store(true)
				return nil
			}
			out[i] = data
			return nil
		})
	}
	err = g.Wait()
	for _, data := range out {
		a.stdout.Write(data)
	}
	a.summarize()
	if err != nil {
		return err
	}
	if failed.Load() {
		return fmt.Errorf("errors processing files")
	}
	return nil
}

// file processes the named file and returns what to print for it.
func (a *app) file(name string) ([]byte, error) {
	info, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	old, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	new, changed := a.rewrite(old, name)

	var out bytes.Buffer
	if err := a.report(&out, name, old, new, changed); err != nil {
		return nil, err
	}
	if a.flags.write && changed {
		if err := os.WriteFile(name, new, info.Mode().Perm()); err != nil {
			return nil, err
		}
		a.log.Debug().Str("file", name).Msg("rewrote")
	}
	return out.Bytes(), nil
}

func (a *app) stdinFile() error {
	old, err := io.ReadAll(a.stdin)
	if err != nil {
		return err
	}
	if a.flags.json {
		// A nil result encodes as null.
		enc := json.NewEncoder(a.stdout)
		enc.SetEscapeHTML(false)
		return enc.Encode(a.engine.Transform(string(old), a.flags.id))
	}
	new, changed := a.rewrite(old, a.flags.id)
	return a.report(a.stdout, a.flags.id, old, new, changed)
}

// rewrite returns the transformed text of old,
// and whether it differs from old.
func (a *app) rewrite(old []byte, name string) ([]byte, bool) {
	res := a.engine.Transform(string(old), name)
	if res == nil {
		a.log.Debug().Str("file", name).Msg("no lodash imports")
		return old, false
	}
	if res.Code == string(old) {
		return old, false
	}
	return []byte(res.Code), true
}

// report writes to w the output the flags ask for.
func (a *app) report(w io.Writer, name string, old, new []byte, changed bool) error {
	if a.flags.list && changed {
		fmt.Fprintln(w, name)
	}
	if a.flags.diff && changed {
		d, err := diff.Diff("old/"+name, old, "new/"+name, new)
		if err != nil {
			return fmt.Errorf("computing diff: %v", err)
		}
		w.Write(d)
	}
	if !a.flags.list && !a.flags.diff && !a.flags.write {
		w.Write(new)
	}
	return nil
}

// diagnose records d for the summary, or logs it at once when watching.
func (a *app) diagnose(d swap.Diagnostic) {
	if a.watching {
		a.log.Warn().Str("file", d.File).Msg(d.Message())
		return
	}
	a.diags.Report(d)
}

// summarize logs the diagnostics gathered so far, one per line.
func (a *app) summarize() {
	if a.diags.Len() == 0 {
		return
	}
	for _, line := range strings.Split(a.diags.String(), "\n") {
		a.log.Warn().Msg(line)
	}
}
