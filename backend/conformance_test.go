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
	"errors"
	"path/filepath"
	"testing"
)

// runConformance exercises the shared Store contract against store. Every
// adapter the build includes runs through this one suite, so adding a new
// backend only means adding a constructor to TestConformance below.
func runConformance(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	key := []byte("0123456789012345678901234567890a")[:32]
	other := []byte("abcdefghijabcdefghijabcdefghijab")[:32]

	if _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(absent) error = %v, want ErrNotFound", err)
	}

	if err := store.Put(ctx, key, []byte("v1")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	v, err := store.Get(ctx, key)
	if err != nil || string(v) != "v1" {
		t.Fatalf("Get() = (%q, %v), want (v1, nil)", v, err)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(deleted) error = %v, want ErrNotFound", err)
	}

	// Batch atomicity and read-your-writes.
	if err := store.Put(ctx, key, []byte("pre-batch")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.BeginBatch(ctx); err != nil {
		t.Fatalf("BeginBatch() error = %v", err)
	}
	if err := store.BeginBatch(ctx); !errors.Is(err, ErrBatchOpen) {
		t.Fatalf("nested BeginBatch() error = %v, want ErrBatchOpen", err)
	}
	if err := store.Put(ctx, other, []byte("in-batch")); err != nil {
		t.Fatalf("Put() in batch error = %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() in batch error = %v", err)
	}
	// Read-your-writes: the pending put is visible, the pending delete shadows
	// the pre-batch value, before commit.
	if v, err := store.Get(ctx, other); err != nil || string(v) != "in-batch" {
		t.Fatalf("Get() mid-batch = (%q, %v), want (in-batch, nil)", v, err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(shadowed) mid-batch error = %v, want ErrNotFound", err)
	}
	if err := store.CommitBatch(ctx); err != nil {
		t.Fatalf("CommitBatch() error = %v", err)
	}
	if err := store.CommitBatch(ctx); !errors.Is(err, ErrNoBatch) {
		t.Fatalf("double CommitBatch() error = %v, want ErrNoBatch", err)
	}
	if v, err := store.Get(ctx, other); err != nil || string(v) != "in-batch" {
		t.Fatalf("Get() post-commit = (%q, %v), want (in-batch, nil)", v, err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() post-commit of deleted key error = %v, want ErrNotFound", err)
	}

	// AbortBatch discards pending writes without touching prior state.
	if err := store.BeginBatch(ctx); err != nil {
		t.Fatalf("BeginBatch() error = %v", err)
	}
	if err := store.Put(ctx, key, []byte("should-not-stick")); err != nil {
		t.Fatalf("Put() in batch error = %v", err)
	}
	if err := store.AbortBatch(ctx); err != nil {
		t.Fatalf("AbortBatch() error = %v", err)
	}
	if err := store.AbortBatch(ctx); !errors.Is(err, ErrNoBatch) {
		t.Fatalf("double AbortBatch() error = %v, want ErrNoBatch", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after abort error = %v, want ErrNotFound", err)
	}
	if err := store.BeginBatch(ctx); err != nil {
		t.Fatalf("BeginBatch() after abort error = %v", err)
	}
	if err := store.CommitBatch(ctx); err != nil {
		t.Fatalf("CommitBatch() of empty batch after abort error = %v", err)
	}
}

func TestMemoryConformance(t *testing.T) {
	runConformance(t, NewMemory())
}

func TestBadgerConformance(t *testing.T) {
	db, err := OpenBadger(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	defer db.Close()
	runConformance(t, db)
}

func TestBoltConformance(t *testing.T) {
	db, err := OpenBolt(filepath.Join(t.TempDir(), "monotree.db"))
	if err != nil {
		t.Fatalf("OpenBolt() error = %v", err)
	}
	defer db.Close()
	runConformance(t, db)
}
