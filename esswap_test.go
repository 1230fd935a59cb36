// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

// TestRun runs the command lines in testdata/*.txt. The archive comment
// holds the arguments. The files stdin, stdout and stderr give the input
// and expected output; files under want/ give the expected contents of
// the written files after the run; every other file is written to a
// scratch directory in which the command runs.
func TestRun(t *testing.T) {
	files, err := filepath.Glob("testdata/*.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no test cases")
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			if err != nil {
				t.Fatal(err)
			}
			dir := t.TempDir()
			var stdin, wantStdout, wantStderr []byte
			var want []txtar.File
			for _, file := range ar.Files {
				switch {
				case file.Name == "stdin":
					stdin = file.Data
					continue
				case file.Name == "stdout":
					wantStdout = file.Data
					continue
				case file.Name == "stderr":
					wantStderr = file.Data
					continue
				case strings.HasPrefix(file.Name, "want/"):
					want = append(want, file)
					continue
				}
				targ := filepath.Join(dir, file.Name)
				if err := os.MkdirAll(filepath.Dir(targ), 0777); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(targ, file.Data, 0666); err != nil {
					t.Fatal(err)
				}
			}

			if err := os.Chdir(dir); err != nil {
				t.Fatal(err)
			}
			defer os.Chdir(wd)

			var stdout, stderr bytes.Buffer
			cmd := newCommand(bytes.NewReader(stdin), &stdout, &stderr)
			cmd.SetArgs(strings.Fields(string(ar.Comment)))
			if err := cmd.ExecuteContext(context.Background()); err != nil {
				fmt.Fprintf(&stderr, "ERROR: %v\n", err)
			}

			cmp := func(name string, have, want []byte) {
				have = trimSpace(have)
				want = trimSpace(want)
				if !bytes.Equal(have, want) {
					t.Errorf("%s:\n%s", name, have)
					t.Errorf("want:\n%s", want)
				}
			}
			cmp("stderr", stderr.Bytes(), wantStderr)
			cmp("stdout", stdout.Bytes(), wantStdout)
			for _, w := range want {
				name := strings.TrimPrefix(w.Name, "want/")
				have, err := os.ReadFile(filepath.Join(dir, name))
				if err != nil {
					t.Error(err)
					continue
				}
				cmp(name, have, w.Data)
			}
		})
	}
}

func trimSpace(data []byte) []byte {
	lines := bytes.Split(data, []byte("\n"))
	for i, line := range lines {
		lines[i] = bytes.TrimRight(line, " ")
	}
	return bytes.Join(lines, []byte("\n"))
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.js")
	require.NoError(t, os.WriteFile(first, []byte("import get from 'lodash.get';\n"), 0666))

	var stderr bytes.Buffer
	a := &app{stdin: strings.NewReader(""), stdout: new(bytes.Buffer), stderr: &stderr}
	a.flags.write = true
	require.NoError(t, a.setup())

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		errc <- a.watch(ctx, []string{dir}, 10*time.Millisecond, ready)
	}()
	select {
	case <-ready:
	case err := <-errc:
		t.Fatalf("watch: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not start")
	}

	readFile := func(name string) string {
		data, _ := os.ReadFile(name)
		return string(data)
	}
	require.Equal(t, "import { get } from 'es-toolkit/compat';\n", readFile(first))

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0777))
	second := filepath.Join(sub, "second.ts")
	require.NoError(t, os.WriteFile(second, []byte("import { isEqual, every } from 'lodash-es';\n"), 0666))
	require.Eventually(t, func() bool {
		return readFile(second) == "import { isEqual } from 'es-toolkit/compat';import { every } from 'lodash-es';\n"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-errc)
	require.Contains(t, stderr.String(), "Unsupported lodash function: every")
}
