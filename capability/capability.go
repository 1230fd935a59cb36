// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package capability records which functions a replacement library
// exports, so that imports of those functions can be redirected to it.
//
// A Set is built once and never changes. Lookups are total: a name either
// is or is not a member, and a miss is never an error.
package capability

import (
	_ "embed"
	"sort"
	"strings"
	"sync"
)

// A Set is an immutable set of exported function names.
type Set struct {
	module  string
	version string
	names   map[string]bool
	lower   map[string]string // lowercase name -> canonical name
	list    []string
}

// New returns a Set holding names. The module and version are
// informational; either may be empty.
func New(module, version string, names []string) *Set {
	s := &Set{
		module:  module,
		version: version,
		names:   make(map[string]bool, len(names)),
		lower:   make(map[string]string, len(names)),
	}
	for _, name := range names {
		if name == "" || s.names[name] {
			continue
		}
		s.names[name] = true
		// Two names folding to the same key is not expected;
		// the later one wins.
		s.lower[strings.ToLower(name)] = name
		s.list = append(s.list, name)
	}
	sort.Strings(s.list)
	return s
}

// Supported reports whether name is exported, matching case exactly.
func (s *Set) Supported(name string) bool {
	return s.names[name]
}

// UnsupportedStandalone reports whether no export folds to the
// lowercase package suffix lower.
func (s *Set) UnsupportedStandalone(lower string) bool {
	_, ok := s.lower[lower]
	return !ok
}

// Standalone returns the canonical export name for the lowercase
// package suffix lower, as in lodash.isequal -> isEqual.
func (s *Set) Standalone(lower string) (string, bool) {
	name, ok := s.lower[lower]
	return name, ok
}

// Names returns the exported names in sorted order.
func (s *Set) Names() []string {
	return append([]string(nil), s.list...)
}

// Len returns the number of exported names.
func (s *Set) Len() int {
	return len(s.list)
}

// Module returns the module path the names were taken from, if known.
func (s *Set) Module() string {
	return s.module
}

// Version returns the module version the names were taken from, if known.
func (s *Set) Version() string {
	return s.version
}

//go:embed compat.txt
var compatManifest []byte

var defaultOnce struct {
	once sync.Once
	set  *Set
}

// Default returns the Set of es-toolkit/compat exports compiled into
// the binary.
func Default() *Set {
	defaultOnce.once.Do(func() {
		s, err := Parse("compat.txt", compatManifest)
		if err != nil {
			panic("capability: embedded manifest: " + err.Error())
		}
		defaultOnce.set = s
	})
	return defaultOnce.set
}
