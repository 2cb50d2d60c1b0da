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

// Package backend defines the content-addressed key-value contract
// monotree's tree engine is parameterized over, plus an in-memory write
// cache every concrete adapter is layered underneath to get batch
// atomicity and read-your-writes semantics for free.
package backend

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when key is absent.
var ErrNotFound = errors.New("backend: not found")

// ErrNoBatch is returned by CommitBatch and AbortBatch when no batch is
// open.
var ErrNoBatch = errors.New("backend: no batch open")

// ErrBatchOpen is returned by BeginBatch when a batch is already open;
// nested batches are not supported, matching the single-logical-writer
// model every adapter in this package assumes.
var ErrBatchOpen = errors.New("backend: batch already open")

// Store is the content-addressed map the tree engine requires of any
// collaborator: get/put/delete plus a begin-batch/commit-batch pair.
// Keys are a fixed 32 bytes (digests, plus the banner head-root key);
// values are arbitrary-length byte strings.
type Store interface {
	// Get returns the value for key, or ErrNotFound if absent. Within an
	// open batch it must reflect that batch's pending writes and deletes.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Put writes key->value, immediately if no batch is open, or deferred
	// to the next CommitBatch otherwise.
	Put(ctx context.Context, key, value []byte) error

	// Delete removes key, with the same immediate-vs-deferred semantics as Put.
	Delete(ctx context.Context, key []byte) error

	// BeginBatch opens a batch. Returns ErrBatchOpen if one is already open.
	BeginBatch(ctx context.Context) error

	// CommitBatch applies the open batch's writes and deletes atomically
	// and clears it. Returns ErrNoBatch if none is open.
	CommitBatch(ctx context.Context) error

	// AbortBatch discards an open batch without touching the underlying
	// store, for callers that filled it partway and then hit an error
	// before CommitBatch. Returns ErrNoBatch if none is open.
	AbortBatch(ctx context.Context) error
}

// ConcurrentReader is an optional capability: adapters that can safely
// service Get calls from multiple goroutines at once (outside of an open
// batch) implement it so that tree.Tree can fan batched reads out with
// errgroup. Adapters that don't implement it are assumed sequential-only.
type ConcurrentReader interface {
	ConcurrentReads() bool
}
