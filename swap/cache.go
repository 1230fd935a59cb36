// Copyright 2024 The esswap Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package swap

import "sync"

// A cache maps exact source text to its transform result.
type cache interface {
	get(src string) (*Result, bool)
	put(src string, res *Result)
	len() int
}

// mapCache is for engines used from one goroutine at a time.
type mapCache map[string]*Result

func (c mapCache) get(src string) (*Result, bool) {
	res, ok := c[src]
	return res, ok
}

func (c mapCache) put(src string, res *Result) { c[src] = res }

func (c mapCache) len() int { return len(c) }

type syncCache struct {
	mu sync.RWMutex
	m  map[string]*Result
}

func newSyncCache() *syncCache {
	return &syncCache{m: make(map[string]*Result)}
}

func (c *syncCache) get(src string) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.m[src]
	return res, ok
}

func (c *syncCache) put(src string, res *Result) {
	c.mu.Lock()
	c.m[src] = res
	c.mu.Unlock()
}

func (c *syncCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
