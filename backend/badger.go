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

	badger "github.com/dgraph-io/badger/v2"
)

// Badger is an on-disk LSM-tree-backed Store, via github.com/dgraph-io/badger/v2.
type Badger struct {
	cache Cache
	db    *badger.DB
}

// OpenBadger opens (creating if necessary) a Badger database rooted at dir.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Badger{db: db}, nil
}

// Close releases the underlying database handle.
func (b *Badger) Close() error { return b.db.Close() }

// ConcurrentReads implements backend.ConcurrentReader: Badger transactions
// support concurrent readers.
func (b *Badger) ConcurrentReads() bool { return true }

// Get implements Store.
func (b *Badger) Get(_ context.Context, key []byte) ([]byte, error) {
	if v, hit, deleted := b.cache.Lookup(key); hit {
		if deleted {
			return nil, ErrNotFound
		}
		return v, nil
	}
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put implements Store.
func (b *Badger) Put(_ context.Context, key, value []byte) error {
	if b.cache.IsOpen() {
		b.cache.Put(key, value)
		return nil
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete implements Store.
func (b *Badger) Delete(_ context.Context, key []byte) error {
	if b.cache.IsOpen() {
		b.cache.Delete(key)
		return nil
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// BeginBatch implements Store.
func (b *Badger) BeginBatch(context.Context) error {
	if !b.cache.Begin() {
		return ErrBatchOpen
	}
	return nil
}

// AbortBatch implements Store.
func (b *Badger) AbortBatch(context.Context) error {
	if !b.cache.IsOpen() {
		return ErrNoBatch
	}
	b.cache.Abort()
	return nil
}

// CommitBatch implements Store. Badger's own *badger.WriteBatch gives an
// atomic all-or-nothing apply, so the drained cache is flushed through one.
func (b *Badger) CommitBatch(context.Context) error {
	if !b.cache.IsOpen() {
		return ErrNoBatch
	}
	writes, deletes := b.cache.Drain()
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for k := range deletes {
		if err := wb.Delete([]byte(k)); err != nil {
			return err
		}
	}
	for k, v := range writes {
		if err := wb.Set([]byte(k), v); err != nil {
			return err
		}
	}
	return wb.Flush()
}
