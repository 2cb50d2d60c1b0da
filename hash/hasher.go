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

// Package hash defines the hasher contract monotree is parameterized over,
// plus the concrete bindings exercised by this repository.
package hash

// Hasher is a pure function bytes -> 32-byte digest with no state between
// calls. The same Hasher used to build a tree must be used to verify
// proofs generated from it; monotree never inspects or mixes hashers.
type Hasher interface {
	// Name identifies the hasher for logging and metrics labels.
	Name() string
	// Sum returns the 32-byte digest of data.
	Sum(data []byte) [32]byte
}

// Func adapts a plain function into a Hasher.
type Func struct {
	name string
	fn   func([]byte) [32]byte
}

// NewFunc wraps fn as a named Hasher.
func NewFunc(name string, fn func([]byte) [32]byte) Func {
	return Func{name: name, fn: fn}
}

// Name implements Hasher.
func (f Func) Name() string { return f.name }

// Sum implements Hasher.
func (f Func) Sum(data []byte) [32]byte { return f.fn(data) }
