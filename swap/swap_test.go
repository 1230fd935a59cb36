// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package swap

import (
	"bytes"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/esswap/esswap/capability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

// TestTransform runs the cases in testdata/*.txt. Each archive holds an
// "input" file and either an "output" file or an empty "absent" file,
// plus an optional "warnings" file listing the expected diagnostics,
// one per line.
func TestTransform(t *testing.T) {
	files, err := filepath.Glob("testdata/*.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no test cases")
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			if err != nil {
				t.Fatal(err)
			}
			var input, output, warnings []byte
			absent := false
			for _, f := range ar.Files {
				switch f.Name {
				case "input":
					input = f.Data
				case "output":
					output = f.Data
				case "absent":
					absent = true
				case "warnings":
					warnings = f.Data
				default:
					t.Fatalf("unexpected file %s", f.Name)
				}
			}

			var buf bytes.Buffer
			e, err := New(Options{Reporter: ReporterFunc(func(d Diagnostic) {
				buf.WriteString(d.Message() + "\n")
			})})
			if err != nil {
				t.Fatal(err)
			}

			res := e.Transform(string(input), "input.js")
			if absent {
				if res != nil {
					t.Fatalf("Transform = %q, want nil", res.Code)
				}
			} else {
				if res == nil {
					t.Fatal("Transform = nil")
				}
				if res.Map != nil {
					t.Errorf("Transform map = %v, want nil", res.Map)
				}
				if res.Code != string(output) {
					t.Errorf("output:\n%s", res.Code)
					t.Errorf("want:\n%s", output)
				}
			}
			if have := buf.String(); have != string(warnings) {
				t.Errorf("warnings:\n%s", have)
				t.Errorf("want:\n%s", warnings)
			}
		})
	}
}

// TestIdempotent checks that transforming a result again changes nothing.
func TestIdempotent(t *testing.T) {
	for _, src := range []string{
		"import { isEqual } from 'lodash';\n",
		"import { every, isEqual } from 'lodash';\n",
		"import isEqual from 'lodash/isEqual.js';\n",
		"import lodashGet from 'lodash.get';\n",
		"import * as _ from 'lodash-es';\n_.isEqual(a, b);\n",
	} {
		e, err := New(Options{})
		require.NoError(t, err)
		once := e.Transform(src, "a.js")
		require.NotNil(t, once, src)
		twice := e.Transform(once.Code, "a.js")
		if twice == nil {
			continue
		}
		assert.Equal(t, once.Code, twice.Code, src)
	}
}

func TestTransformAbsent(t *testing.T) {
	var reported []Diagnostic
	e, err := New(Options{Reporter: ReporterFunc(func(d Diagnostic) { reported = append(reported, d) })})
	require.NoError(t, err)

	for _, src := range []string{"", "import x from 'underscore';", "const lo = 'Lodash';"} {
		assert.Nil(t, e.Transform(src, "a.js"), src)
	}
	assert.Empty(t, reported)
	assert.Zero(t, e.CacheLen())
}

func TestTransformCache(t *testing.T) {
	var reported []Diagnostic
	e, err := New(Options{Reporter: ReporterFunc(func(d Diagnostic) { reported = append(reported, d) })})
	require.NoError(t, err)

	src := "import { every } from 'lodash';\n"
	first := e.Transform(src, "a.js")
	second := e.Transform(src, "b.js")
	require.NotNil(t, first)
	assert.Same(t, first, second)
	assert.Equal(t, 1, e.CacheLen())
	require.Len(t, reported, 1)
	assert.Equal(t, "a.js", reported[0].File)
	assert.Equal(t, UnsupportedFunction, reported[0].Kind)
	assert.Equal(t, []string{"every"}, reported[0].Names)
}

func TestTransformConcurrent(t *testing.T) {
	var list DiagnosticList
	e, err := New(Options{Reporter: &list, Concurrent: true})
	require.NoError(t, err)

	srcs := []string{
		"import _ from 'lodash';\n_.every(x);\n",
		"import { isEqual } from 'lodash';\n",
		"import get from 'lodash.get';\n",
	}
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res := e.Transform(srcs[i%len(srcs)], "f.js")
			assert.NotNil(t, res)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, len(srcs), e.CacheLen())
	assert.Equal(t, 1, list.Len())
}

func TestCustomConfig(t *testing.T) {
	caps := capability.New("", "", []string{"map", "filter"})
	e, err := New(Options{
		Config: Config{
			Legacy:      "underscore",
			Replacement: "underdash",
		},
		Capabilities: caps,
	})
	require.NoError(t, err)
	assert.Equal(t, "underscore.", e.Config().StandalonePrefix)
	assert.Empty(t, e.Config().Alternate)

	res := e.Transform("import { map, reduce } from 'underscore';\nimport f from 'underscore.filter';\n", "a.js")
	require.NotNil(t, res)
	assert.Equal(t, "import { map } from 'underdash';import { reduce } from 'underscore';\nimport { filter as f } from 'underdash';\n", res.Code)

	assert.Nil(t, e.Transform("import { map } from 'lodash';\n", "a.js"))
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := New(Options{Config: Config{Replacement: "lodash-es"}})
	assert.EqualError(t, err, `config: replacement "lodash-es" is also a legacy module`)

	_, err = New(Options{Config: Config{Legacy: "it's"}})
	assert.Error(t, err)

	_, err = New(Options{Config: Config{Exports: filepath.Join(t.TempDir(), "missing.txt")}})
	assert.Error(t, err)
}

// brokenCaps claims every standalone package is supported
// but can name none of them.
type brokenCaps struct{}

func (brokenCaps) Supported(string) bool             { return false }
func (brokenCaps) UnsupportedStandalone(string) bool { return false }
func (brokenCaps) Standalone(string) (string, bool)  { return "", false }

func TestStandaloneInvariant(t *testing.T) {
	e, err := New(Options{Capabilities: brokenCaps{}})
	require.NoError(t, err)

	defer func() {
		p := recover()
		ierr, ok := p.(*InvariantError)
		require.True(t, ok, "panic value %v", p)
		assert.True(t, strings.Contains(ierr.Error(), "lodash.get"), ierr.Error())
	}()
	e.Transform("import get from 'lodash.get';\n", "a.js")
	t.Fatal("Transform did not panic")
}
