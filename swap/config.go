// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package swap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// A Config names the modules an Engine rewrites between.
// Empty fields take their values from DefaultConfig.
type Config struct {
	// Legacy is the root module of the library being replaced.
	Legacy string `yaml:"legacy"`

	// Alternate is a second spelling of the legacy root module,
	// accepted by namespace, named-list and subpath imports.
	Alternate string `yaml:"alternate"`

	// Replacement is the module rewritten imports refer to.
	Replacement string `yaml:"replacement"`

	// StandalonePrefix introduces single-function packages,
	// as in lodash.get.
	StandalonePrefix string `yaml:"standalone_prefix"`

	// Exports, if set, is a manifest file listing the functions
	// Replacement exports. See capability.Parse for the format.
	Exports string `yaml:"exports"`
}

// DefaultConfig returns the configuration rewriting lodash to es-toolkit/compat.
func DefaultConfig() Config {
	return Config{
		Legacy:           "lodash",
		Alternate:        "lodash-es",
		Replacement:      "es-toolkit/compat",
		StandalonePrefix: "lodash.",
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Legacy == "" {
		c.Legacy = def.Legacy
	}
	if c.Alternate == "" && c.Legacy == def.Legacy {
		c.Alternate = def.Alternate
	}
	if c.Replacement == "" {
		c.Replacement = def.Replacement
	}
	if c.StandalonePrefix == "" {
		c.StandalonePrefix = c.Legacy + "."
	}
	return c
}

func (c Config) validate() error {
	for _, f := range []struct{ name, val string }{
		{"legacy", c.Legacy},
		{"alternate", c.Alternate},
		{"replacement", c.Replacement},
		{"standalone_prefix", c.StandalonePrefix},
	} {
		if strings.ContainsAny(f.val, "'\"` \t\r\n") {
			return fmt.Errorf("config: %s module %q contains quotes or spaces", f.name, f.val)
		}
	}
	if c.Replacement == c.Legacy || c.Replacement == c.Alternate {
		return fmt.Errorf("config: replacement %q is also a legacy module", c.Replacement)
	}
	return nil
}

// needles returns the strings at least one of which must appear in a
// source file for any import in it to be rewritten.
func (c Config) needles() []string {
	list := []string{c.Legacy}
	for _, s := range []string{c.Alternate, c.StandalonePrefix} {
		if s != "" && !strings.Contains(s, c.Legacy) {
			list = append(list, s)
		}
	}
	return list
}

// LoadConfig reads a YAML configuration from file.
// A relative Exports path is taken relative to the file's directory.
func LoadConfig(file string) (Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%s: %w", file, err)
	}
	if c.Exports != "" && !filepath.IsAbs(c.Exports) {
		c.Exports = filepath.Join(filepath.Dir(file), c.Exports)
	}
	c = c.withDefaults()
	if err := c.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", file, err)
	}
	return c, nil
}
