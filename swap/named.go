// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package swap

import "strings"

// A NamedImport is one entry of an import list: the exported name and the
// local name it is bound to. Local equals Name when there is no "as" clause.
type NamedImport struct {
	Name  string
	Local string
}

// ParseNamedImports splits the text between the braces of an import
// declaration into its entries. Empty entries, as left by a trailing
// comma, are dropped.
func ParseNamedImports(list string) []NamedImport {
	var out []NamedImport
	for _, tok := range strings.Split(list, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		out = append(out, parseNamedImport(tok))
	}
	return out
}

func parseNamedImport(tok string) NamedImport {
	f := strings.Fields(tok)
	if len(f) == 3 && f[1] == "as" {
		return NamedImport{Name: f[0], Local: f[2]}
	}
	// Anything else is kept whole; it will not be a known export.
	return NamedImport{Name: tok, Local: tok}
}

func (n NamedImport) String() string {
	if n.Local == "" || n.Local == n.Name {
		return n.Name
	}
	return n.Name + " as " + n.Local
}

func importNames(list []NamedImport) []string {
	names := make([]string, len(list))
	for i, n := range list {
		names[i] = n.Name
	}
	return names
}
