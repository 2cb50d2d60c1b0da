// Copyright 2016 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import "sync"

// Cache is the in-memory write cache every backend is layered over: a
// pending write map and a distinct pending-delete set, so that a key can
// be shadowed during a batch even if the underlying store still holds an
// older value for it. Every concrete adapter in this package embeds a
// Cache and delegates its batch bookkeeping to it.
//
// Read order inside an open batch: delete-set -> write-map -> underlying
// store.
type Cache struct {
	mu      sync.Mutex
	open    bool
	writes  map[string][]byte
	deletes map[string]struct{}
}

// Begin opens a batch. Returns false if one is already open.
func (c *Cache) Begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		return false
	}
	c.open = true
	c.writes = make(map[string][]byte)
	c.deletes = make(map[string]struct{})
	return true
}

// IsOpen reports whether a batch is currently open.
func (c *Cache) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Lookup consults the cache for key. hit is true if the cache has an
// opinion (either a pending write or a pending delete); deleted is true
// iff that opinion is "this key is deleted". Callers only fall through to
// the underlying store when hit is false.
func (c *Cache) Lookup(key []byte) (value []byte, hit, deleted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return nil, false, false
	}
	k := string(key)
	if _, ok := c.deletes[k]; ok {
		return nil, true, true
	}
	if v, ok := c.writes[k]; ok {
		return v, true, false
	}
	return nil, false, false
}

// Put records a pending write, shadowing any pending delete for key.
func (c *Cache) Put(key, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := string(key)
	delete(c.deletes, k)
	c.writes[k] = append([]byte(nil), value...)
}

// Delete records a pending delete, shadowing any pending write for key.
func (c *Cache) Delete(key []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := string(key)
	delete(c.writes, k)
	c.deletes[k] = struct{}{}
}

// Drain returns the accumulated writes and deletes and clears the cache,
// closing the batch. Call this from CommitBatch immediately before
// flushing to the underlying store.
func (c *Cache) Drain() (writes map[string][]byte, deletes map[string]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	writes, deletes = c.writes, c.deletes
	c.open = false
	c.writes = nil
	c.deletes = nil
	return writes, deletes
}

// Abort discards the open batch without flushing anything, leaving the
// underlying store untouched. Each adapter's AbortBatch calls it when a
// caller filled the batch partway and hit an error before CommitBatch.
func (c *Cache) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	c.writes = nil
	c.deletes = nil
}
