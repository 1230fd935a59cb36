// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package swap

import "regexp"

// usedMembers returns the distinct names accessed as ident.name anywhere in
// text, in order of first use. It reports false if there are none.
//
// The scan is textual: member accesses inside strings and comments count,
// and an unrelated object bound to the same identifier in another scope
// is indistinguishable from the import.
func usedMembers(ident, text string) ([]string, bool) {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(ident) + `\.(\w+)`)
	all := re.FindAllStringSubmatch(text, -1)
	if len(all) == 0 {
		return nil, false
	}
	names := make([]string, 0, len(all))
	for _, m := range all {
		names = append(names, m[1])
	}
	return unique(names), true
}

// unique returns list without repeated entries, keeping first occurrences.
func unique(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := list[:0:0]
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
