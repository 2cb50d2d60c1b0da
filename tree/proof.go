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
	"context"

	"github.com/monotreedb/monotree/bits"
	"github.com/monotreedb/monotree/hash"
	"github.com/monotreedb/monotree/proof"
)

// Proof produces a root-to-leaf inclusion proof for key against the tree
// rooted at root. If key is absent, it returns ErrNoProof: the frames of
// the descent that ended without reaching the full key are not a useful
// witness on their own, since they don't commit to the emptiness of the
// sibling subtree that would back a non-inclusion claim. A caller that
// needs to show absence is better off calling Get against a trusted root
// and observing ErrNotFound.
func (t *Tree) Proof(ctx context.Context, root *Digest, key [KeyLen]byte) (proof.Proof, error) {
	ctx, ends := t.begin(ctx, "Proof", key[:])
	var err error
	defer func() { finish(ends, err) }()

	if root == nil {
		err = ErrNoProof
		return nil, err
	}
	var p proof.Proof
	p, err = t.proof(ctx, *root, keyBits(key))
	return p, err
}

func (t *Tree) proof(ctx context.Context, d Digest, kb bits.Bits) (proof.Proof, error) {
	cur, err := t.readNode(ctx, d)
	if err != nil {
		return nil, err
	}
	bit := kb.First()
	pursued, _ := cur.Descend(bit)
	p := pursued.Path
	n := bits.LenCommonBits(p, kb)

	frame, err := proof.FrameFromNode(cur, bit)
	if err != nil {
		return nil, err
	}

	switch {
	case n == kb.Len():
		return proof.Proof{frame}, nil
	case n == p.Len():
		rest, err := t.proof(ctx, pursued.Digest, kb.Drop(n))
		if err != nil {
			return nil, err
		}
		return append(proof.Proof{frame}, rest...), nil
	default:
		return nil, ErrNoProof
	}
}

// Verify is the stateless counterpart of Proof: it replays p against leaf
// and reports whether the reconstructed root equals root, consulting only
// hasher and never the backend. It has no Tree receiver because
// verification never touches storage.
func Verify(hasher hash.Hasher, root, leaf [KeyLen]byte, p proof.Proof) bool {
	return proof.Verify(hasher.Sum, leaf, p, root)
}
