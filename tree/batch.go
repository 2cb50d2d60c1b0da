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

package tree

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/btree"
	"golang.org/x/sync/errgroup"

	"github.com/monotreedb/monotree/backend"
)

// KV is one key/leaf pair of a batch mutation.
type KV struct {
	Key  [KeyLen]byte
	Leaf [KeyLen]byte
}

// kvItem orders KV entries by key, breaking ties on the caller's original
// index so that a batch naming the same key twice still folds its two
// writes in the order the caller gave them, matching what an equivalent
// sequence of single Puts would do.
type kvItem struct {
	kv  KV
	idx int
}

func (a kvItem) Less(than btree.Item) bool {
	b := than.(kvItem)
	if c := bytes.Compare(a.kv.Key[:], b.kv.Key[:]); c != 0 {
		return c < 0
	}
	return a.idx < b.idx
}

func sortKVs(kvs []KV) []KV {
	bt := btree.New(2)
	for i, kv := range kvs {
		bt.ReplaceOrInsert(kvItem{kv: kv, idx: i})
	}
	out := make([]KV, 0, len(kvs))
	bt.Ascend(func(i btree.Item) bool {
		out = append(out, i.(kvItem).kv)
		return true
	})
	return out
}

type keyItem struct {
	key [KeyLen]byte
	idx int
}

func (a keyItem) Less(than btree.Item) bool {
	b := than.(keyItem)
	if c := bytes.Compare(a.key[:], b.key[:]); c != 0 {
		return c < 0
	}
	return a.idx < b.idx
}

func sortKeys(keys [][KeyLen]byte) [][KeyLen]byte {
	bt := btree.New(2)
	for i, k := range keys {
		bt.ReplaceOrInsert(keyItem{key: k, idx: i})
	}
	out := make([][KeyLen]byte, 0, len(keys))
	bt.Ascend(func(i btree.Item) bool {
		out = append(out, i.(keyItem).key)
		return true
	})
	return out
}

// Inserts folds a batch of Puts into one backend commit, returning the
// resulting root. Keys are sorted (via an in-memory btree.BTree index)
// before folding so the result is independent of the slice's input order,
// matching the equivalent sequence of sorted single Puts.
func (t *Tree) Inserts(ctx context.Context, root *Digest, kvs []KV) (*Digest, error) {
	ctx, ends := t.begin(ctx, "Inserts", nil)
	var err error
	defer func() { finish(ends, err) }()

	if err = t.store.BeginBatch(ctx); err != nil {
		return nil, err
	}
	cur := root
	for _, kv := range sortKVs(kvs) {
		var d Digest
		d, err = t.Put(ctx, cur, kv.Key, kv.Leaf)
		if err != nil {
			t.abortBatch(ctx)
			return nil, err
		}
		cur = &d
	}
	if err = t.store.CommitBatch(ctx); err != nil {
		return nil, fmt.Errorf("tree: committing insert batch: %w", err)
	}
	return cur, nil
}

// Removes folds a batch of Removes into one backend commit, returning the
// resulting root (nil if the tree became empty). Keys are sorted the same
// way Inserts sorts them.
func (t *Tree) Removes(ctx context.Context, root *Digest, keys [][KeyLen]byte) (*Digest, error) {
	ctx, ends := t.begin(ctx, "Removes", nil)
	var err error
	defer func() { finish(ends, err) }()

	if err = t.store.BeginBatch(ctx); err != nil {
		return nil, err
	}
	cur := root
	for _, k := range sortKeys(keys) {
		cur, err = t.Remove(ctx, cur, k)
		if err != nil {
			t.abortBatch(ctx)
			return nil, err
		}
	}
	if err = t.store.CommitBatch(ctx); err != nil {
		return nil, fmt.Errorf("tree: committing remove batch: %w", err)
	}
	return cur, nil
}

// abortBatch discards an in-progress batch after a mid-batch failure: the
// commit never happened, so the backend's pending writes simply need to
// be dropped.
func (t *Tree) abortBatch(ctx context.Context) {
	_ = t.store.AbortBatch(ctx)
}

// Gets looks up every key against the tree rooted at root, returning a
// result slice of the same length: result[i] is nil if keys[i] is absent,
// otherwise its leaf value. When store implements backend.ConcurrentReader
// and reports true, the lookups fan out concurrently via errgroup; root is
// read-only here so this never touches the single-writer-per-handle rule
// that mutations are held to.
func (t *Tree) Gets(ctx context.Context, root *Digest, keys [][KeyLen]byte) ([]*[KeyLen]byte, error) {
	results := make([]*[KeyLen]byte, len(keys))
	if root == nil {
		return results, nil
	}

	concurrent := false
	if cr, ok := t.store.(backend.ConcurrentReader); ok {
		concurrent = cr.ConcurrentReads()
	}
	if !concurrent {
		for i, k := range keys {
			v, err := t.Get(ctx, root, k)
			if err == ErrNotFound {
				continue
			}
			if err != nil {
				return nil, err
			}
			results[i] = &v
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range keys {
		i := i
		g.Go(func() error {
			v, err := t.Get(gctx, root, keys[i])
			if err == ErrNotFound {
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = &v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
