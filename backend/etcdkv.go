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

	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdKV is a small distributed-consensus-backed Store, via
// go.etcd.io/etcd/client/v3 — already a direct dependency of the teacher
// repository's own go.mod (only the client package is used here, not the
// embedded server or etcdctl).
type EtcdKV struct {
	cache  Cache
	client *clientv3.Client
}

// NewEtcdKV wraps an already-constructed *clientv3.Client.
func NewEtcdKV(client *clientv3.Client) *EtcdKV {
	return &EtcdKV{client: client}
}

// Get implements Store.
func (e *EtcdKV) Get(ctx context.Context, key []byte) ([]byte, error) {
	if v, hit, deleted := e.cache.Lookup(key); hit {
		if deleted {
			return nil, ErrNotFound
		}
		return v, nil
	}
	resp, err := e.client.Get(ctx, string(key))
	if err != nil {
		return nil, err
	}
	if len(resp.Kvs) == 0 {
		return nil, ErrNotFound
	}
	return resp.Kvs[0].Value, nil
}

// Put implements Store.
func (e *EtcdKV) Put(ctx context.Context, key, value []byte) error {
	if e.cache.IsOpen() {
		e.cache.Put(key, value)
		return nil
	}
	_, err := e.client.Put(ctx, string(key), string(value))
	return err
}

// Delete implements Store.
func (e *EtcdKV) Delete(ctx context.Context, key []byte) error {
	if e.cache.IsOpen() {
		e.cache.Delete(key)
		return nil
	}
	_, err := e.client.Delete(ctx, string(key))
	return err
}

// BeginBatch implements Store.
func (e *EtcdKV) BeginBatch(context.Context) error {
	if !e.cache.Begin() {
		return ErrBatchOpen
	}
	return nil
}

// AbortBatch implements Store.
func (e *EtcdKV) AbortBatch(context.Context) error {
	if !e.cache.IsOpen() {
		return ErrNoBatch
	}
	e.cache.Abort()
	return nil
}

// CommitBatch implements Store: the drained cache is flushed through a
// single etcd transaction (Txn), which etcd applies atomically across the
// cluster.
func (e *EtcdKV) CommitBatch(ctx context.Context) error {
	if !e.cache.IsOpen() {
		return ErrNoBatch
	}
	writes, deletes := e.cache.Drain()
	txn := e.client.Txn(ctx)
	var ops []clientv3.Op
	for k := range deletes {
		ops = append(ops, clientv3.OpDelete(k))
	}
	for k, v := range writes {
		ops = append(ops, clientv3.OpPut(k, string(v)))
	}
	_, err := txn.Then(ops...).Commit()
	return err
}
