// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package swap

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// A Kind classifies a Diagnostic.
type Kind int

const (
	// UnsupportedFunction reports functions the replacement does not export.
	UnsupportedFunction Kind = iota
	// UnsupportedPackage reports a single-function package with no
	// counterpart in the replacement.
	UnsupportedPackage
)

func (k Kind) String() string {
	switch k {
	case UnsupportedFunction:
		return "function"
	case UnsupportedPackage:
		return "package"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// A Diagnostic records an import left untouched because it refers to
// something the replacement does not provide.
type Diagnostic struct {
	File    string // file identifier passed to Transform
	Kind    Kind
	Library string   // legacy library name, for the message
	Names   []string // function names, or package specifiers
}

// Message returns the human-readable text of d, without the file.
func (d Diagnostic) Message() string {
	plural := ""
	if len(d.Names) > 1 {
		plural = "s"
	}
	return fmt.Sprintf("Unsupported %s %s%s: %s", d.Library, d.Kind, plural, strings.Join(d.Names, ", "))
}

func (d Diagnostic) String() string {
	if d.File != "" {
		return d.File + ": " + d.Message()
	}
	return d.Message()
}

// A Reporter receives the diagnostics produced by an Engine.
type Reporter interface {
	Report(Diagnostic)
}

// ReporterFunc adapts a function to a Reporter.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

type discard struct{}

func (discard) Report(Diagnostic) {}

type diagKey struct {
	file string
	msg  string
}

// DiagnosticList gathers diagnostics from many files. It is safe for
// concurrent use; the zero value is an empty list, ready to use.
// DiagnosticList is itself a Reporter.
type DiagnosticList struct {
	mu    sync.Mutex
	diags []Diagnostic
	set   map[diagKey]bool
}

// Report adds d to l, suppressing duplicates (same file and message).
func (l *DiagnosticList) Report(d Diagnostic) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := diagKey{d.File, d.Message()}
	if l.set[k] {
		return
	}
	if l.set == nil {
		l.set = make(map[diagKey]bool)
	}
	l.set[k] = true
	l.diags = append(l.diags, d)
}

// Len returns the number of distinct diagnostics in l.
func (l *DiagnosticList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.diags)
}

// Diagnostics returns the diagnostics in l sorted by file.
func (l *DiagnosticList) Diagnostics() []Diagnostic {
	l.mu.Lock()
	defer l.mu.Unlock()
	list := append([]Diagnostic(nil), l.diags...)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].File < list[j].File
	})
	return list
}

// String returns a "\n" separated summary of l, sorted by file.
// A message seen in more than three files is printed once,
// at its first file, with a count.
func (l *DiagnosticList) String() string {
	list := l.Diagnostics()

	count := make(map[string]int)
	for _, d := range list {
		count[d.Message()]++
	}

	buf := new(strings.Builder)
	for _, d := range list {
		msg := d.Message()
		line := d.String()
		switch {
		case count[msg] > 3:
			line += fmt.Sprintf(" [× %d]", count[msg])
			count[msg] = -1
		case count[msg] < 0:
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
	}
	return buf.String()
}
