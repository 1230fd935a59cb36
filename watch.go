// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCommand(a *app) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [dir ...]",
		Short: "Rewrite imports again whenever source files change",
		Long: `Watch processes every source file below the given directories (default ".")
and then again each time one changes, logging unsupported imports as they
are found. With -w it writes rewritten files back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			for _, dir := range args {
				info, err := os.Stat(dir)
				if err != nil {
					return err
				}
				if !info.IsDir() {
					return newErrUsage("watch: %s is not a directory", dir)
				}
			}
			return a.watch(cmd.Context(), args, debounce, nil)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "wait `d` for changes to settle")
	return cmd
}

// watch processes the source files below dirs, then again on each
// change, until ctx is done. If ready is non-nil, it is closed once the
// watches are in place.
func (a *app) watch(ctx context.Context, dirs []string, debounce time.Duration, ready chan<- struct{}) error {
	a.watching = true

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	var trees []*tree
	for _, dir := range dirs {
		t := newTree(dir)
		trees = append(trees, t)
		err := t.walk(func(path string, dir bool) error {
			if dir {
				return w.Add(path)
			}
			a.sync(path)
			return nil
		})
		if err != nil {
			return err
		}
	}
	a.log.Info().Int("dirs", len(dirs)).Int("cached", a.engine.CacheLen()).Msg("watching")
	if ready != nil {
		close(ready)
	}

	treeOf := func(path string) *tree {
		for _, t := range trees {
			if rel, err := filepath.Rel(t.root, path); err == nil && filepath.IsLocal(rel) {
				return t
			}
		}
		return nil
	}

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	pending := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(ev.Name)
			t := treeOf(path)
			if t == nil || t.ignored(path, false) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(path); err == nil && info.IsDir() {
					// A new directory may arrive with files already in it.
					if !t.skip(path) {
						err := t.walkFrom(path, func(p string, dir bool) error {
							if dir {
								return w.Add(p)
							}
							pending[p] = true
							return nil
						})
						if err != nil {
							a.log.Error().Err(err).Str("dir", path).Msg("watch")
						}
						timer.Reset(debounce)
					}
					continue
				}
			}
			if !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) || !isSourceFile(path) {
				continue
			}
			pending[path] = true
			timer.Reset(debounce)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			clear(pending)
			for _, path := range changed {
				a.sync(path)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// sync processes one file for watch mode, logging instead of printing.
func (a *app) sync(path string) {
	old, err := os.ReadFile(path)
	if err != nil {
		// Removed or renamed since the event.
		a.log.Debug().Err(err).Str("file", path).Msg("skip")
		return
	}
	new, changed := a.rewrite(old, path)
	if !changed {
		return
	}
	if !a.flags.write {
		a.log.Info().Str("file", path).Msg("would rewrite imports")
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		a.log.Error().Err(err).Str("file", path).Msg("stat")
		return
	}
	if err := os.WriteFile(path, new, info.Mode().Perm()); err != nil {
		a.log.Error().Err(err).Str("file", path).Msg("write")
		return
	}
	a.log.Info().Str("file", path).Msg("rewrote imports")
}
