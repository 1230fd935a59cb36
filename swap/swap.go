// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package swap rewrites import declarations that refer to a legacy
// utility library so that they refer to a drop-in replacement instead,
// for exactly the functions the replacement provides.
//
// The rewrite works on source text, not on a syntax tree. It recognizes
// five import shapes:
//
//	import _ from 'lodash'                  // default
//	import * as _ from 'lodash'             // namespace (also lodash-es)
//	import { a, b as c } from 'lodash'      // named list (also lodash-es)
//	import isEqual from 'lodash/isEqual'    // subpath (also lodash-es, .js)
//	import get from 'lodash.get'            // standalone package
//
// Anything else, including call sites, require calls, dynamic imports
// and re-exports, passes through unchanged.
package swap

import (
	"strings"

	"github.com/esswap/esswap/capability"
	"golang.org/x/sync/singleflight"
)

// A SourceMap is a version 3 source map.
// The engine edits text in place and never produces one.
type SourceMap struct {
	Version  int      `json:"version"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`
}

// A Result is the outcome of transforming one file.
// Map is always nil, meaning no source map is available.
type Result struct {
	Code string     `json:"code"`
	Map  *SourceMap `json:"map"`
}

// Capabilities reports which functions the replacement library exports.
// *capability.Set implements it.
type Capabilities interface {
	// Supported reports whether name is exported, matching case exactly.
	Supported(name string) bool
	// UnsupportedStandalone reports whether no export matches the
	// lowercase single-function package suffix lower.
	UnsupportedStandalone(lower string) bool
	// Standalone returns the export matching lower.
	Standalone(lower string) (string, bool)
}

// Options configure an Engine. The zero value is ready to use.
type Options struct {
	// Config names the legacy and replacement modules.
	// Empty fields take their DefaultConfig values.
	Config Config

	// Capabilities lists the functions the replacement exports.
	// If nil, they are loaded from Config.Exports, or else
	// capability.Default is used.
	Capabilities Capabilities

	// Reporter receives diagnostics. If nil, they are discarded.
	Reporter Reporter

	// Concurrent makes Transform safe to call from multiple goroutines.
	// Without it the result cache is an unguarded map.
	Concurrent bool
}

// An Engine rewrites source files. It caches results by exact input text
// for its lifetime; the cache is never evicted.
type Engine struct {
	cfg      Config
	caps     Capabilities
	reporter Reporter
	matchers []*matcher
	cache    cache
	group    *singleflight.Group
}

// New returns a new Engine.
func New(opts Options) (*Engine, error) {
	cfg := opts.Config.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	caps := opts.Capabilities
	if caps == nil {
		if cfg.Exports != "" {
			set, err := capability.Load(cfg.Exports)
			if err != nil {
				return nil, err
			}
			caps = set
		} else {
			caps = capability.Default()
		}
	}
	e := &Engine{
		cfg:      cfg,
		caps:     caps,
		reporter: opts.Reporter,
		matchers: matchers(cfg),
	}
	if e.reporter == nil {
		e.reporter = discard{}
	}
	if opts.Concurrent {
		e.cache = newSyncCache()
		e.group = new(singleflight.Group)
	} else {
		e.cache = make(mapCache)
	}
	return e, nil
}

// Config returns the engine's configuration, with defaults filled in.
func (e *Engine) Config() Config {
	return e.cfg
}

// Capabilities returns the set of functions the engine may redirect.
func (e *Engine) Capabilities() Capabilities {
	return e.caps
}

// CacheLen returns the number of cached results.
func (e *Engine) CacheLen() int {
	return e.cache.len()
}

// Transform rewrites the imports in src. The fileID only labels
// diagnostics.
//
// Transform returns nil if src does not mention the legacy library at all,
// meaning the caller should use src unmodified. Otherwise it returns a
// Result, whose Code may equal src. Diagnostics are reported only when a
// result is computed, not when it is served from the cache.
func (e *Engine) Transform(src, fileID string) *Result {
	if !e.mentionsLegacy(src) {
		return nil
	}
	if res, ok := e.cache.get(src); ok {
		return res
	}
	if e.group == nil {
		res := e.transform(src, fileID)
		e.cache.put(src, res)
		return res
	}
	v, _, _ := e.group.Do(src, func() (any, error) {
		if res, ok := e.cache.get(src); ok {
			return res, nil
		}
		res := e.transform(src, fileID)
		e.cache.put(src, res)
		return res, nil
	})
	return v.(*Result)
}

func (e *Engine) mentionsLegacy(src string) bool {
	for _, s := range e.cfg.needles() {
		if strings.Contains(src, s) {
			return true
		}
	}
	return false
}

func (e *Engine) transform(src, fileID string) *Result {
	r := &run{Engine: e, file: fileID}
	text := src
	for _, m := range e.matchers {
		text = m.apply(r, text)
	}
	return &Result{Code: text}
}

// A run is the state of one Transform call.
type run struct {
	*Engine
	file string
}

func (r *run) report(kind Kind, names []string) {
	r.reporter.Report(Diagnostic{
		File:    r.file,
		Kind:    kind,
		Library: r.cfg.Legacy,
		Names:   names,
	})
}
