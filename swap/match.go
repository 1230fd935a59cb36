// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package swap

import (
	"fmt"
	"regexp"
	"strings"
)

// A matcher rewrites every occurrence of one import shape in a text.
type matcher struct {
	name string
	re   *regexp.Regexp
	// rewrite returns the replacement for the submatches m, found in text.
	rewrite func(r *run, text string, m []string) string
}

// matchers returns the import shapes for cfg in the order they are applied:
//
//	import X from 'lodash'
//	import * as X from 'lodash'
//	import { a, b as c } from 'lodash'
//	import X from 'lodash/name'
//	import X from 'lodash.name'
//
// None of them matches text produced by another, since the replacement
// module is never a legacy one.
func matchers(cfg Config) []*matcher {
	q := regexp.QuoteMeta
	roots := q(cfg.Legacy)
	if cfg.Alternate != "" {
		roots += "|" + q(cfg.Alternate)
	}
	const (
		binding = `import\s+(\w+)\s+from\s*['"]`
		ext     = `(?:\.[cm]?js)?`
	)
	return []*matcher{
		{
			name:    "default",
			re:      regexp.MustCompile(binding + q(cfg.Legacy) + `['"]`),
			rewrite: rewriteNamespace,
		},
		{
			name:    "namespace",
			re:      regexp.MustCompile(`import\s*\*\s*as\s+(\w+)\s+from\s*['"](?:` + roots + `)['"]`),
			rewrite: rewriteNamespace,
		},
		{
			name:    "named",
			re:      regexp.MustCompile(`import\s*\{\s*([\w\s,]+)\s*\}\s*from\s*['"](` + roots + `)['"]`),
			rewrite: rewriteNamed,
		},
		{
			name:    "subpath",
			re:      regexp.MustCompile(binding + `(?:` + roots + `)/(\w+)` + ext + `['"]`),
			rewrite: rewriteSubpath,
		},
		{
			name:    "standalone",
			re:      regexp.MustCompile(binding + q(cfg.StandalonePrefix) + `(\w+)['"]`),
			rewrite: rewriteStandalone,
		},
	}
}

// apply replaces each match of m in text with its rewrite,
// leaving the text between matches as is.
func (m *matcher) apply(r *run, text string) string {
	locs := m.re.FindAllStringSubmatchIndex(text, -1)
	if locs == nil {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, loc := range locs {
		b.WriteString(text[last:loc[0]])
		sub := make([]string, len(loc)/2)
		for i := range sub {
			if lo := loc[2*i]; lo >= 0 {
				sub[i] = text[lo:loc[2*i+1]]
			}
		}
		b.WriteString(m.rewrite(r, text, sub))
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// rewriteNamespace handles default and namespace imports of the root module.
// The import moves to the replacement only when every member used through
// the bound identifier is supported. An identifier never used as ident.x
// is left alone.
func rewriteNamespace(r *run, text string, m []string) string {
	ident := m[1]
	used, ok := usedMembers(ident, text)
	if !ok {
		return m[0]
	}
	var bad []string
	for _, name := range used {
		if !r.caps.Supported(name) {
			bad = append(bad, name)
		}
	}
	if len(bad) > 0 {
		r.report(UnsupportedFunction, bad)
		return m[0]
	}
	return fmt.Sprintf("import * as %s from '%s'", ident, r.cfg.Replacement)
}

// rewriteNamed splits a named-list import into the part the replacement
// provides and the part that must stay with the original module.
func rewriteNamed(r *run, text string, m []string) string {
	var good, bad []NamedImport
	for _, n := range ParseNamedImports(m[1]) {
		if r.caps.Supported(n.Name) {
			good = append(good, n)
		} else {
			bad = append(bad, n)
		}
	}
	if len(bad) > 0 {
		r.report(UnsupportedFunction, unique(importNames(bad)))
	}
	if len(good) == 0 {
		return m[0]
	}
	out := renderNamed(good, r.cfg.Replacement)
	if len(bad) > 0 {
		out += ";" + renderNamed(bad, m[2])
	}
	return out
}

// rewriteSubpath handles import X from 'lodash/name'.
func rewriteSubpath(r *run, text string, m []string) string {
	local, name := m[1], m[2]
	if !r.caps.Supported(name) {
		r.report(UnsupportedFunction, []string{name})
		return m[0]
	}
	return renderNamed([]NamedImport{{name, local}}, r.cfg.Replacement)
}

// rewriteStandalone handles import X from 'lodash.name', where name is
// the lowercased function name.
func rewriteStandalone(r *run, text string, m []string) string {
	local, suffix := m[1], m[2]
	lower := strings.ToLower(suffix)
	if r.caps.UnsupportedStandalone(lower) {
		r.report(UnsupportedPackage, []string{r.cfg.StandalonePrefix + suffix})
		return m[0]
	}
	name, ok := r.caps.Standalone(lower)
	if !ok {
		panic(&InvariantError{fmt.Sprintf("standalone package %s%s is supported but has no function name", r.cfg.StandalonePrefix, suffix)})
	}
	return renderNamed([]NamedImport{{name, local}}, r.cfg.Replacement)
}

func renderNamed(list []NamedImport, module string) string {
	items := make([]string, len(list))
	for i, n := range list {
		items[i] = n.String()
	}
	return fmt.Sprintf("import { %s } from '%s'", strings.Join(items, ", "), module)
}

// An InvariantError reports an internal inconsistency in the engine.
// It is raised with panic: output produced after one cannot be trusted.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "swap: internal error: " + e.Msg
}
