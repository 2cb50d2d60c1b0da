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

import (
	"context"
	"sync"
)

// Memory is the in-memory map backend: the reference Store implementation,
// and the one the core tree/proof test suite runs against by default.
type Memory struct {
	cache Cache

	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// ConcurrentReads implements backend.ConcurrentReader.
func (m *Memory) ConcurrentReads() bool { return true }

// Get implements Store.
func (m *Memory) Get(_ context.Context, key []byte) ([]byte, error) {
	if v, hit, deleted := m.cache.Lookup(key); hit {
		if deleted {
			return nil, ErrNotFound
		}
		return v, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, key, value []byte) error {
	if m.cache.IsOpen() {
		m.cache.Put(key, value)
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, key []byte) error {
	if m.cache.IsOpen() {
		m.cache.Delete(key)
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

// BeginBatch implements Store.
func (m *Memory) BeginBatch(_ context.Context) error {
	if !m.cache.Begin() {
		return ErrBatchOpen
	}
	return nil
}

// AbortBatch implements Store.
func (m *Memory) AbortBatch(_ context.Context) error {
	if !m.cache.IsOpen() {
		return ErrNoBatch
	}
	m.cache.Abort()
	return nil
}

// CommitBatch implements Store.
func (m *Memory) CommitBatch(_ context.Context) error {
	if !m.cache.IsOpen() {
		return ErrNoBatch
	}
	writes, deletes := m.cache.Drain()
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range deletes {
		delete(m.data, k)
	}
	for k, v := range writes {
		m.data[k] = v
	}
	return nil
}
