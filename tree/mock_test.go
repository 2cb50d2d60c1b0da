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
	"crypto/sha256"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"

	"github.com/monotreedb/monotree/backend"
	"github.com/monotreedb/monotree/hash"
	"github.com/monotreedb/monotree/node"
)

// TestPutOnEmptyRootIssuesSingleBackendWrite drives Tree against a mock
// Store to pin down exactly what hits the backend for the simplest
// mutation: one node encoded and written, nothing read. This is the kind
// of call-sequence assertion the teacher's storage layer tests with a
// generated mock and go-cmp; here the mock is backend.MockStore and the
// collaborator under test is the tree engine instead of a subtree cache.
func TestPutOnEmptyRootIssuesSingleBackendWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := backend.NewMockStore(ctrl)
	var gotKey, gotValue []byte
	m.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, key, value []byte) error {
			gotKey = append([]byte(nil), key...)
			gotValue = append([]byte(nil), value...)
			return nil
		})

	tr := New(m, hash.SHA256)
	var key, leaf [KeyLen]byte
	key[0] = 7
	leaf[0] = 9

	root, err := tr.Put(context.Background(), nil, key, leaf)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	want := node.Soft(node.Unit{Digest: node.Digest(leaf), Path: keyBits(key)})
	wantDigest, wantEnc, err := want.Bytes(sha256.Sum256)
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if root != wantDigest {
		t.Errorf("root = %x, want %x", root, wantDigest)
	}
	if diff := cmp.Diff(wantEnc, gotValue); diff != "" {
		t.Errorf("backend Put value mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantDigest[:], gotKey); diff != "" {
		t.Errorf("backend Put key mismatch (-want +got):\n%s", diff)
	}
}

// TestGetDescendsThroughExactlyTheRequiredNodes verifies the descent reads
// precisely one node per compressed edge, not per bit: a two-leaf tree
// (one Hard node at the root) resolves a lookup in a single backend Get.
func TestGetDescendsThroughExactlyTheRequiredNodes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	left := node.Unit{Digest: node.Digest{0x01}, Path: keyBits([KeyLen]byte{})}
	var rightKey [KeyLen]byte
	rightKey[0] = 0x80
	right := node.Unit{Digest: node.Digest{0x02}, Path: keyBits(rightKey)}
	root := node.Hard(left, right)
	rootDigest, rootEnc, err := root.Bytes(sha256.Sum256)
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	m := backend.NewMockStore(ctrl)
	m.EXPECT().Get(gomock.Any(), gomock.Eq(rootDigest[:])).Return(rootEnc, nil).Times(1)

	tr := New(m, hash.SHA256)
	var lookupKey [KeyLen]byte
	got, err := tr.Get(context.Background(), &rootDigest, lookupKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != left.Digest {
		t.Errorf("Get() = %x, want %x", got, left.Digest)
	}
}
