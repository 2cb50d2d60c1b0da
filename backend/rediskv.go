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

	"github.com/go-redis/redis"
)

// RedisKV is a distributed, cache-backed Store via github.com/go-redis/redis
// — already a direct dependency of the teacher repository's own go.mod.
type RedisKV struct {
	cache  Cache
	client *redis.Client
}

// NewRedisKV wraps an already-constructed *redis.Client.
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

// Get implements Store.
func (r *RedisKV) Get(_ context.Context, key []byte) ([]byte, error) {
	if v, hit, deleted := r.cache.Lookup(key); hit {
		if deleted {
			return nil, ErrNotFound
		}
		return v, nil
	}
	v, err := r.client.Get(string(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Put implements Store.
func (r *RedisKV) Put(_ context.Context, key, value []byte) error {
	if r.cache.IsOpen() {
		r.cache.Put(key, value)
		return nil
	}
	return r.client.Set(string(key), value, 0).Err()
}

// Delete implements Store.
func (r *RedisKV) Delete(_ context.Context, key []byte) error {
	if r.cache.IsOpen() {
		r.cache.Delete(key)
		return nil
	}
	return r.client.Del(string(key)).Err()
}

// BeginBatch implements Store.
func (r *RedisKV) BeginBatch(context.Context) error {
	if !r.cache.Begin() {
		return ErrBatchOpen
	}
	return nil
}

// AbortBatch implements Store.
func (r *RedisKV) AbortBatch(context.Context) error {
	if !r.cache.IsOpen() {
		return ErrNoBatch
	}
	r.cache.Abort()
	return nil
}

// CommitBatch implements Store, flushing the drained cache through a
// single Redis pipeline (MULTI/EXEC) so the batch applies atomically from
// the server's point of view.
func (r *RedisKV) CommitBatch(context.Context) error {
	if !r.cache.IsOpen() {
		return ErrNoBatch
	}
	writes, deletes := r.cache.Drain()
	pipe := r.client.TxPipeline()
	for k := range deletes {
		pipe.Del(k)
	}
	for k, v := range writes {
		pipe.Set(k, v, 0)
	}
	_, err := pipe.Exec()
	return err
}
