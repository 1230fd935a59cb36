// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package capability

import (
	"bufio"
	"bytes"
	"os"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
	"golang.org/x/xerrors"
)

var isExportName = regexp.MustCompile(`^[\p{L}_$][\p{L}\p{Nd}_$]*$`)

// Parse parses a manifest of exported names.
//
// A manifest lists one name per line. Text from # to the end of a line is
// a comment, and blank lines are ignored. A single optional directive
//
//	module <path> <version>
//
// records where the names came from; the version must be a valid
// semantic version such as v1.39.10.
func Parse(file string, data []byte) (*Set, error) {
	var (
		module, version string
		sawModule       bool
		names           []string
	)
	sc := bufio.NewScanner(bytes.NewReader(data))
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		f := strings.Fields(line)
		switch {
		case len(f) == 0:
			continue
		case f[0] == "module":
			if sawModule {
				return nil, xerrors.Errorf("%s:%d: repeated module directive", file, lineno)
			}
			if len(f) != 3 {
				return nil, xerrors.Errorf("%s:%d: usage: module <path> <version>", file, lineno)
			}
			if !semver.IsValid(f[2]) {
				return nil, xerrors.Errorf("%s:%d: invalid version %q", file, lineno, f[2])
			}
			sawModule = true
			module, version = f[1], semver.Canonical(f[2])
		case len(f) == 1 && isExportName.MatchString(f[0]):
			names = append(names, f[0])
		default:
			return nil, xerrors.Errorf("%s:%d: invalid export name %q", file, lineno, strings.TrimSpace(line))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, xerrors.Errorf("%s: %w", file, err)
	}
	if len(names) == 0 {
		return nil, xerrors.Errorf("%s: no export names", file)
	}
	return New(module, version, names), nil
}

// Load reads and parses the manifest in file.
func Load(file string) (*Set, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, xerrors.Errorf("loading exports: %w", err)
	}
	return Parse(file, data)
}
