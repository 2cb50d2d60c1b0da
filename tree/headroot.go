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
	"errors"

	"github.com/monotreedb/monotree/backend"
)

// headRootKey is the fixed banner key under which the current root digest
// is published, so a reader who only has access to the backend (and no
// out-of-band root of its own) can still find "the latest tree". It
// occupies the same 32-byte key space as every node digest; colliding
// with an actual digest would require a second-preimage attack on the
// configured hasher.
var headRootKey = [KeyLen]byte{
	'_', '_', '_', '_', '_', '_', '_',
	'm', 'o', 'n', 'o', 't', 'r', 'e', 'e', ':', ':',
	'h', 'e', 'a', 'd', 'r', 'o', 'o', 't',
	'_', '_', '_', '_', '_', '_', '_',
}

// SetHeadRoot publishes root as the tree's current head. Passing nil
// deletes the pointer, publishing "the tree is empty".
func (t *Tree) SetHeadRoot(ctx context.Context, root *Digest) error {
	if root == nil {
		err := t.store.Delete(ctx, headRootKey[:])
		if err != nil {
			return err
		}
		return nil
	}
	return t.store.Put(ctx, headRootKey[:], root[:])
}

// GetHeadRoot returns the published head root, or nil if none has been
// set (an empty tree, or one that has never called SetHeadRoot).
func (t *Tree) GetHeadRoot(ctx context.Context) (*Digest, error) {
	v, err := t.store.Get(ctx, headRootKey[:])
	if errors.Is(err, backend.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(v) != KeyLen {
		return nil, ErrNoSuchRoot
	}
	var d Digest
	copy(d[:], v)
	return &d, nil
}
