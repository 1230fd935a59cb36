// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Esswap moves JavaScript and TypeScript code from lodash to es-toolkit/compat.
//
// Usage:
//
//	esswap [-l] [-d] [-w] [--config file] [path ...]
//	esswap [--json] [--id name] < file.js
//	esswap watch [-w] [dir ...]
//
// Esswap rewrites import declarations, never call sites. For each import of
// lodash it finds, it decides whether every function the import brings in
// is provided by es-toolkit/compat. If so, the import is rewritten to refer
// to es-toolkit/compat; if not, the import is left exactly as written and
// the missing functions are reported.
//
// By default, esswap prints the rewritten files to standard output.
// The -l flag lists the files whose imports would change instead,
// the -d flag prints diffs, and the -w flag writes the files in place.
// Directories are searched for .js, .jsx, .mjs, .cjs, .ts, .tsx, .mts,
// .cts, .vue and .svelte files, skipping node_modules, hidden directories,
// and anything matched by a .gitignore at the top of the directory.
//
// # Import shapes
//
// Five shapes of import are recognized:
//
//	import _ from 'lodash';
//	import * as _ from 'lodash';               // or 'lodash-es'
//	import { isEqual, get as lget } from 'lodash';
//	import isEqual from 'lodash/isEqual';      // or 'lodash-es/isEqual.js'
//	import get from 'lodash.get';
//
// A default or namespace import is rewritten only if every use of the bound
// name as _.name in the file names a supported function, and there is at
// least one such use:
//
//	import * as _ from 'es-toolkit/compat';
//
// A named list is split. Supported names move to es-toolkit/compat;
// the others stay behind, renames intact:
//
//	import { every, isEqual as eq } from 'lodash';
//
// becomes
//
//	import { isEqual as eq } from 'es-toolkit/compat';import { every } from 'lodash';
//
// Subpath and single-function package imports become named imports:
//
//	import { isEqual } from 'es-toolkit/compat';
//	import { get } from 'es-toolkit/compat';
//
// Package names like lodash.isequal are matched to functions without
// regard to case.
//
// The matching is textual. Imports inside comments and strings are
// rewritten too, and a use such as _.every inside a comment counts.
// require calls, dynamic import() and re-exports are not touched.
//
// # Host protocol
//
// With no paths, esswap transforms standard input. The --json flag prints
// the result in the form build pipelines expect,
//
//	{"code": "...", "map": null}
//
// or null when the input never mentions lodash and should be used as is.
//
// # Configuration
//
// The --config flag names a YAML file overriding the module names and the
// list of supported functions:
//
//	legacy: lodash
//	alternate: lodash-es
//	replacement: es-toolkit/compat
//	standalone_prefix: lodash.
//	exports: compat-exports.txt
//
// The exports file lists one function name per line, with an optional
// "module <path> <version>" line recording where the list came from.
// Without one, esswap uses the list of es-toolkit/compat exports it was
// built with.
//
// # Watch mode
//
// The watch command processes the source files below each directory and
// then processes them again whenever they change, logging unsupported
// imports as it goes. Results are cached by file content for the life of
// the process, so saving a file without touching its imports is cheap.
package main
