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
	"time"

	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("monotree")

// Bolt is an embedded single-file store, via go.etcd.io/bbolt.
type Bolt struct {
	cache Cache
	db    *bolt.DB
}

// OpenBolt opens (creating if necessary) a bbolt database at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Bolt{db: db}, nil
}

// Close releases the underlying database handle.
func (b *Bolt) Close() error { return b.db.Close() }

// ConcurrentReads implements backend.ConcurrentReader: bbolt supports any
// number of concurrent read-only transactions.
func (b *Bolt) ConcurrentReads() bool { return true }

// Get implements Store.
func (b *Bolt) Get(_ context.Context, key []byte) ([]byte, error) {
	if v, hit, deleted := b.cache.Lookup(key); hit {
		if deleted {
			return nil, ErrNotFound
		}
		return v, nil
	}
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get(key)
		if v == nil {
			return ErrNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put implements Store.
func (b *Bolt) Put(_ context.Context, key, value []byte) error {
	if b.cache.IsOpen() {
		b.cache.Put(key, value)
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put(key, value)
	})
}

// Delete implements Store.
func (b *Bolt) Delete(_ context.Context, key []byte) error {
	if b.cache.IsOpen() {
		b.cache.Delete(key)
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete(key)
	})
}

// BeginBatch implements Store.
func (b *Bolt) BeginBatch(context.Context) error {
	if !b.cache.Begin() {
		return ErrBatchOpen
	}
	return nil
}

// AbortBatch implements Store.
func (b *Bolt) AbortBatch(context.Context) error {
	if !b.cache.IsOpen() {
		return ErrNoBatch
	}
	b.cache.Abort()
	return nil
}

// CommitBatch implements Store. bbolt's single-writer-transaction model
// gives the whole drained cache one all-or-nothing fsync'd commit.
func (b *Bolt) CommitBatch(context.Context) error {
	if !b.cache.IsOpen() {
		return ErrNoBatch
	}
	writes, deletes := b.cache.Drain()
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(boltBucket)
		for k := range deletes {
			if err := bkt.Delete([]byte(k)); err != nil {
				return err
			}
		}
		for k, v := range writes {
			if err := bkt.Put([]byte(k), v); err != nil {
				return err
			}
		}
		return nil
	})
}
