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

// Package tree implements monotree's core engine: a compressed
// binary-radix Sparse Merkle Tree of Soft/Hard nodes (package node) over
// fixed-width 32-byte keys, stored content-addressed in a pluggable
// backend.Store.
package tree

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/monotreedb/monotree/backend"
	"github.com/monotreedb/monotree/bits"
	"github.com/monotreedb/monotree/hash"
	"github.com/monotreedb/monotree/node"
)

// KeyLen is the fixed width, in bytes, of every key and leaf value.
const KeyLen = node.DigestLen

// Digest is a root (or any node) digest: the address a caller threads
// between operations to describe "the tree as of this mutation".
type Digest = node.Digest

// Tree is a handle onto one backend.Store interpreted as a forest of
// Sparse Merkle Trees addressed by root digest. A Tree has no mutable
// in-memory state of its own beyond its hooks: every operation takes the
// root it should read from and returns the root that results, so callers
// are free to hold onto any prior root and keep reading through it; any
// number of readers can walk past roots concurrently with a single writer
// advancing the current one.
type Tree struct {
	store  backend.Store
	hasher hash.Hasher
	hooks  []Hook
}

// Option configures a Tree at construction time.
type Option func(*Tree)

// WithMetrics attaches a Prometheus-backed Hook (see package metrics).
// Installing more than one hook is fine; each runs independently.
func WithMetrics(h Hook) Option {
	return func(t *Tree) { t.hooks = append(t.hooks, h) }
}

// WithTracer attaches an OpenCensus-backed Hook (see package trace).
func WithTracer(h Hook) Option {
	return func(t *Tree) { t.hooks = append(t.hooks, h) }
}

// New constructs a Tree over store, hashing node encodings with hasher.
func New(store backend.Store, hasher hash.Hasher, opts ...Option) *Tree {
	t := &Tree{store: store, hasher: hasher}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Hook observes one tree operation. Start is called before the operation
// runs and must return an End to be invoked with its error (nil on
// success) once it completes; this two-phase shape is what lets a Hook
// wrap a span around the operation rather than merely timing it after the
// fact. See package metrics and package trace for concrete Hooks.
type Hook interface {
	Start(ctx context.Context, op string, key []byte) (context.Context, End)
}

// End closes out one Hook.Start call.
type End func(err error)

func (t *Tree) begin(ctx context.Context, op string, key []byte) (context.Context, []End) {
	if len(t.hooks) == 0 {
		return ctx, nil
	}
	ends := make([]End, len(t.hooks))
	for i, h := range t.hooks {
		ctx, ends[i] = h.Start(ctx, op, key)
	}
	return ctx, ends
}

func finish(ends []End, err error) {
	for _, e := range ends {
		e(err)
	}
}

func keyBits(key [KeyLen]byte) bits.Bits {
	buf := make([]byte, KeyLen)
	copy(buf, key[:])
	return bits.New(buf)
}

func (t *Tree) readNode(ctx context.Context, d Digest) (node.Node, error) {
	raw, err := t.store.Get(ctx, d[:])
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return node.Node{}, fmt.Errorf("tree: reading node %x: %w", d, ErrNoSuchRoot)
		}
		return node.Node{}, fmt.Errorf("tree: reading node %x: %w", d, err)
	}
	var n node.Node
	if err := n.UnmarshalBinary(raw); err != nil {
		return node.Node{}, fmt.Errorf("tree: decoding node %x: %w", d, err)
	}
	return n, nil
}

func (t *Tree) writeNode(ctx context.Context, n node.Node) (Digest, error) {
	d, enc, err := n.Bytes(t.hasher.Sum)
	if err != nil {
		return Digest{}, fmt.Errorf("tree: encoding node: %w", err)
	}
	if err := t.store.Put(ctx, d[:], enc); err != nil {
		return Digest{}, fmt.Errorf("tree: writing node %x: %w", d, err)
	}
	return d, nil
}

// emitWithSibling writes a node holding pursued as one child and, unless
// sibling is the zero Unit (no sibling: the parent was Soft), sibling as
// the other. This is the single place Put/Remove construct a parent node
// after computing a new child, keeping the Soft/Hard choice in one spot.
func (t *Tree) emitWithSibling(ctx context.Context, pursued, sibling node.Unit) (Digest, error) {
	if sibling.Path.Len() == 0 {
		return t.writeNode(ctx, node.Soft(pursued))
	}
	return t.writeNode(ctx, node.Hard(pursued, sibling))
}

// Put inserts or replaces the leaf at key, reading the tree rooted at
// root (nil for an empty tree) and returning the new root. root is never
// mutated; the caller decides whether to keep the old root or the new one.
func (t *Tree) Put(ctx context.Context, root *Digest, key, leaf [KeyLen]byte) (Digest, error) {
	ctx, ends := t.begin(ctx, "Put", key[:])
	var err error
	defer func() { finish(ends, err) }()

	var d Digest
	d, err = t.put(ctx, root, keyBits(key), Digest(leaf))
	return d, err
}

func (t *Tree) put(ctx context.Context, root *Digest, kb bits.Bits, leaf Digest) (Digest, error) {
	if root == nil {
		return t.writeNode(ctx, node.Soft(node.Unit{Digest: leaf, Path: kb}))
	}
	cur, err := t.readNode(ctx, *root)
	if err != nil {
		return Digest{}, err
	}
	pursued, sibling := cur.Descend(kb.First())
	p := pursued.Path
	n := bits.LenCommonBits(p, kb)

	switch {
	case n == 0:
		// The pursued child shares no prefix with kb at all: set the new
		// leaf aside as the sibling of the existing subtree.
		return t.writeNode(ctx, node.Hard(pursued, node.Unit{Digest: leaf, Path: kb}))

	case n == kb.Len():
		// kb is fully consumed exactly at the pursued child's edge: this
		// is a replacement of an existing leaf (n == p.Len() too, since a
		// leaf's path can't be a strict prefix of another key's path at
		// the same depth without violating the fixed key width).
		glog.V(2).Infof("tree: replacing leaf at key prefix %s", kb)
		return t.emitWithSibling(ctx, node.Unit{Digest: leaf, Path: kb}, sibling)

	case n == p.Len():
		// The whole pursued edge is consumed but kb has more bits: descend
		// into the pursued subtree and recurse.
		childDigest := pursued.Digest
		newChild, err := t.put(ctx, &childDigest, kb.Drop(n), leaf)
		if err != nil {
			return Digest{}, err
		}
		return t.emitWithSibling(ctx, node.Unit{Digest: newChild, Path: p}, sibling)

	default:
		// n < len(p) and n < len(kb): split the pursued edge at n,
		// inserting a new two-child node in the middle.
		inner := node.Hard(
			node.Unit{Digest: pursued.Digest, Path: p.Drop(n)},
			node.Unit{Digest: leaf, Path: kb.Drop(n)},
		)
		innerDigest, err := t.writeNode(ctx, inner)
		if err != nil {
			return Digest{}, err
		}
		return t.emitWithSibling(ctx, node.Unit{Digest: innerDigest, Path: p.Take(n)}, sibling)
	}
}

// Get looks up key in the tree rooted at root, returning ErrNotFound if
// absent.
func (t *Tree) Get(ctx context.Context, root *Digest, key [KeyLen]byte) ([KeyLen]byte, error) {
	ctx, ends := t.begin(ctx, "Get", key[:])
	var err error
	defer func() { finish(ends, err) }()

	if root == nil {
		err = ErrNotFound
		return [KeyLen]byte{}, err
	}
	var d Digest
	d, err = t.get(ctx, *root, keyBits(key))
	return [KeyLen]byte(d), err
}

func (t *Tree) get(ctx context.Context, d Digest, kb bits.Bits) (Digest, error) {
	cur, err := t.readNode(ctx, d)
	if err != nil {
		return Digest{}, err
	}
	pursued, _ := cur.Descend(kb.First())
	p := pursued.Path
	n := bits.LenCommonBits(p, kb)
	switch {
	case n == kb.Len():
		return pursued.Digest, nil
	case n == p.Len():
		return t.get(ctx, pursued.Digest, kb.Drop(n))
	default:
		return Digest{}, ErrNotFound
	}
}

// removeOutcome describes what happened at one level of a recursive
// Remove descent.
type removeOutcome int

const (
	// outcomeUnchanged means the key was not found under this subtree;
	// the caller must leave its own node untouched.
	outcomeUnchanged removeOutcome = iota
	// outcomeEmptied means this subtree now has no leaves at all.
	outcomeEmptied
	// outcomeReplaced means this subtree's digest changed to a new one.
	outcomeReplaced
)

type removeResult struct {
	outcome removeOutcome
	digest  Digest
}

// Remove deletes key from the tree rooted at root, returning the new root
// (nil if the tree became empty). If key is absent, root is returned
// unchanged.
func (t *Tree) Remove(ctx context.Context, root *Digest, key [KeyLen]byte) (*Digest, error) {
	ctx, ends := t.begin(ctx, "Remove", key[:])
	var err error
	defer func() { finish(ends, err) }()

	if root == nil {
		return nil, nil
	}
	var res removeResult
	res, err = t.remove(ctx, *root, keyBits(key))
	if err != nil {
		return nil, err
	}
	switch res.outcome {
	case outcomeUnchanged:
		return root, nil
	case outcomeEmptied:
		return nil, nil
	default:
		d := res.digest
		return &d, nil
	}
}

func (t *Tree) remove(ctx context.Context, d Digest, kb bits.Bits) (removeResult, error) {
	cur, err := t.readNode(ctx, d)
	if err != nil {
		return removeResult{}, err
	}
	pursued, sibling := cur.Descend(kb.First())
	p := pursued.Path
	n := bits.LenCommonBits(p, kb)

	switch {
	case n == kb.Len() && n == p.Len():
		// Found the leaf: this node collapses to just its sibling (Soft-
		// promoted), or disappears entirely if there was no sibling.
		if sibling.Path.Len() == 0 {
			return removeResult{outcome: outcomeEmptied}, nil
		}
		newDigest, err := t.writeNode(ctx, node.Soft(sibling))
		if err != nil {
			return removeResult{}, err
		}
		return removeResult{outcome: outcomeReplaced, digest: newDigest}, nil

	case n == p.Len():
		// Descend and recurse; kb still has bits left after the pursued edge.
		sub, err := t.remove(ctx, pursued.Digest, kb.Drop(n))
		if err != nil {
			return removeResult{}, err
		}
		switch sub.outcome {
		case outcomeUnchanged:
			return removeResult{outcome: outcomeUnchanged}, nil
		case outcomeEmptied:
			if sibling.Path.Len() == 0 {
				return removeResult{outcome: outcomeEmptied}, nil
			}
			newDigest, err := t.writeNode(ctx, node.Soft(sibling))
			if err != nil {
				return removeResult{}, err
			}
			return removeResult{outcome: outcomeReplaced, digest: newDigest}, nil
		default:
			newDigest, err := t.emitWithSibling(ctx, node.Unit{Digest: sub.digest, Path: p}, sibling)
			if err != nil {
				return removeResult{}, err
			}
			return removeResult{outcome: outcomeReplaced, digest: newDigest}, nil
		}

	default:
		// kb diverges from the pursued edge before either is exhausted: absent.
		return removeResult{outcome: outcomeUnchanged}, nil
	}
}

