// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// sourceExts lists the extensions of files searched for imports
// when walking a directory.
var sourceExts = map[string]bool{
	".js":     true,
	".jsx":    true,
	".mjs":    true,
	".cjs":    true,
	".ts":     true,
	".tsx":    true,
	".mts":    true,
	".cts":    true,
	".vue":    true,
	".svelte": true,
}

func isSourceFile(name string) bool {
	return sourceExts[filepath.Ext(name)]
}

// skipDir reports whether a directory below a walk root is never searched.
func skipDir(name string) bool {
	return name == "node_modules" || strings.HasPrefix(name, ".")
}

// A tree is a directory being searched, with the .gitignore at its root.
type tree struct {
	root string
	gi   *ignore.GitIgnore
}

func newTree(root string) *tree {
	t := &tree{root: filepath.Clean(root)}
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(t.root, ".gitignore")); err == nil {
		t.gi = gi
	}
	return t
}

// ignored reports whether path, inside t, matches the .gitignore.
func (t *tree) ignored(path string, dir bool) bool {
	if t.gi == nil {
		return false
	}
	rel, err := filepath.Rel(t.root, path)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	// Patterns like "dist/" only match with the trailing slash.
	return t.gi.MatchesPath(rel) || dir && t.gi.MatchesPath(rel+"/")
}

// skip reports whether the directory path, inside t, is left out of
// walks and watches. The root itself is never skipped.
func (t *tree) skip(path string) bool {
	if filepath.Clean(path) == t.root {
		return false
	}
	return skipDir(filepath.Base(path)) || t.ignored(path, true)
}

// walk calls fn for each directory and source file below t's root
// that is neither skipped nor ignored.
func (t *tree) walk(fn func(path string, dir bool) error) error {
	return t.walkFrom(t.root, fn)
}

// walkFrom is like walk but starts at start, a directory inside t.
func (t *tree) walkFrom(start string, fn func(path string, dir bool) error) error {
	return filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != start && t.skip(path) {
				return filepath.SkipDir
			}
			return fn(path, true)
		}
		if !d.Type().IsRegular() || !isSourceFile(path) || t.ignored(path, false) {
			return nil
		}
		return fn(path, false)
	})
}

// collect expands the command-line paths into the list of files to process.
// Files named directly are always included; directories contribute the
// source files they contain.
func collect(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			files = append(files, name)
		}
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		err = newTree(p).walk(func(path string, dir bool) error {
			if !dir {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
