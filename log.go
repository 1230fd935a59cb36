// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"

	"github.com/rs/zerolog"
)

// newLogger returns a plain-text logger writing to w:
// a level tag and the message, with no timestamp or colour.
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	// Files are processed in parallel.
	out := zerolog.ConsoleWriter{
		Out:          zerolog.SyncWriter(w),
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	return zerolog.New(out).Level(level)
}
