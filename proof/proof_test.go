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

package proof

import (
	"crypto/sha256"
	"testing"

	"github.com/monotreedb/monotree/bits"
	"github.com/monotreedb/monotree/node"
)

func mkDigest(b byte) node.Digest {
	var d node.Digest
	for i := range d {
		d[i] = b
	}
	return d
}

func TestFrameFromSoftNode(t *testing.T) {
	u := node.Unit{Digest: mkDigest(0x11), Path: bits.New(make([]byte, 32))}
	n := node.Soft(u)
	f, err := FrameFromNode(n, true)
	if err != nil {
		t.Fatalf("FrameFromNode() error = %v", err)
	}
	if f.Right {
		t.Errorf("Soft frame should never set Right")
	}
	enc, _ := n.MarshalBinary()
	if len(f.Cut) != len(enc)-node.DigestLen {
		t.Errorf("Cut length = %d, want %d", len(f.Cut), len(enc)-node.DigestLen)
	}
}

func TestFrameFromHardNodeLeftRight(t *testing.T) {
	left := node.Unit{Digest: mkDigest(0x01), Path: bits.New([]byte{0x00}).Take(1)}
	right := node.Unit{Digest: mkDigest(0x02), Path: bits.New([]byte{0x80}).Take(1)}
	n := node.Hard(left, right)

	fl, err := FrameFromNode(n, false)
	if err != nil {
		t.Fatalf("FrameFromNode(left) error = %v", err)
	}
	if fl.Right {
		t.Errorf("descending left should produce Right=false")
	}

	fr, err := FrameFromNode(n, true)
	if err != nil {
		t.Fatalf("FrameFromNode(right) error = %v", err)
	}
	if !fr.Right {
		t.Errorf("descending right should produce Right=true")
	}
	if fr.Cut[len(fr.Cut)-1] != 0x01 {
		t.Errorf("right-descent cut should retain the hard tag byte")
	}
}

func TestVerifyEndToEnd(t *testing.T) {
	// Build a two-level tree by hand: root is Hard(leftLeaf, rightLeaf).
	leftPath := bits.New(make([]byte, 32)) // all-zero key: starts with bit 0.
	rightPath := bits.New(append([]byte{0x80}, make([]byte, 31)...))

	leftLeafDigest := sha256.Sum256([]byte("left-leaf"))
	rightLeafDigest := sha256.Sum256([]byte("right-leaf"))

	leftUnit := node.Unit{Digest: node.Digest(leftLeafDigest), Path: leftPath.Take(255)}
	rightUnit := node.Unit{Digest: node.Digest(rightLeafDigest), Path: rightPath.Take(255)}
	root := node.Hard(leftUnit, rightUnit)
	rootDigest, _, err := root.Bytes(sha256.Sum256)
	if err != nil {
		t.Fatalf("root.Bytes() error = %v", err)
	}

	frameLeft, err := FrameFromNode(root, false)
	if err != nil {
		t.Fatalf("FrameFromNode() error = %v", err)
	}
	p := Proof{frameLeft}
	ok := Verify(sha256.Sum256, leftLeafDigest, p, [32]byte(rootDigest))
	if !ok {
		t.Errorf("Verify() = false, want true for the correct left-leaf proof")
	}

	// A corrupted proof byte must fail to verify.
	corrupt := append(Proof{}, Frame{Right: p[0].Right, Cut: append([]byte(nil), p[0].Cut...)})
	corrupt[0].Cut[0] ^= 0xFF
	if Verify(sha256.Sum256, leftLeafDigest, corrupt, [32]byte(rootDigest)) {
		t.Errorf("Verify() = true for a corrupted proof, want false")
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	p := Proof{
		{Right: false, Cut: []byte{1, 2, 3}},
		{Right: true, Cut: []byte{4, 5, 6, 7}},
	}
	enc := Marshal(p)
	back, err := Unmarshal(enc)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(back) != len(p) {
		t.Fatalf("Unmarshal() len = %d, want %d", len(back), len(p))
	}
	for i := range p {
		if back[i].Right != p[i].Right {
			t.Errorf("frame %d Right mismatch", i)
		}
		if string(back[i].Cut) != string(p[i].Cut) {
			t.Errorf("frame %d Cut mismatch", i)
		}
	}
}

func TestUnmarshalInvalidFlag(t *testing.T) {
	if _, err := Unmarshal([]byte{0x02, 0x00, 0x00}); err == nil {
		t.Errorf("Unmarshal() error = nil, want error for invalid flag")
	}
}

func TestUnmarshalTruncated(t *testing.T) {
	if _, err := Unmarshal([]byte{0x00, 0x00}); err == nil {
		t.Errorf("Unmarshal() error = nil, want error for truncated header")
	}
}
