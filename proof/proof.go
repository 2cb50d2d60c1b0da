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

// Package proof implements monotree's Merkle inclusion proof frames and
// their stateless verifier. There is no non-inclusion proof format.
package proof

import (
	"encoding/binary"
	"fmt"

	"github.com/monotreedb/monotree/node"
)

// Frame is one step of a root-to-leaf proof. Cut is the serialized node
// with the pursued child's 32-byte digest excised; Right records whether
// the verifier's running hash must be reinserted on the right of Cut
// (i.e. the proof descended into a Hard node's right child at this level).
type Frame struct {
	Right bool
	Cut   []byte
}

// Proof is an ordered sequence of frames, root-to-leaf, as produced by a
// single descent through the tree.
type Proof []Frame

// FrameFromNode derives the single proof frame for n when the descent at
// this level pursued the child selected by bit.
func FrameFromNode(n node.Node, bit bool) (Frame, error) {
	enc, err := n.MarshalBinary()
	if err != nil {
		return Frame{}, err
	}
	if n.IsSoft() || !bit {
		// Soft, or Hard descending left: strip the leading 32-byte digest.
		if len(enc) < node.DigestLen {
			return Frame{}, fmt.Errorf("proof: node encoding too short to excise a digest")
		}
		return Frame{Right: false, Cut: enc[node.DigestLen:]}, nil
	}
	// Hard descending right: strip the trailing 32-byte digest, keep the tag.
	if len(enc) < node.DigestLen+1 {
		return Frame{}, fmt.Errorf("proof: node encoding too short to excise a digest")
	}
	tag := enc[len(enc)-1]
	cut := make([]byte, 0, len(enc)-node.DigestLen)
	cut = append(cut, enc[:len(enc)-node.DigestLen-1]...)
	cut = append(cut, tag)
	return Frame{Right: true, Cut: cut}, nil
}

// Verify replays frames leaf-to-root starting from leaf, using sum as the
// hash function, and reports whether the reconstructed root equals want.
// Frames are iterated in reverse: Proof is stored root-to-leaf (the order
// tree.Tree.Proof produces them in), but reconstruction must proceed bottom-up.
func Verify(sum func([]byte) [32]byte, leaf [32]byte, frames Proof, want [32]byte) bool {
	h := leaf
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		var reconstructed []byte
		if f.Right {
			l := len(f.Cut)
			if l == 0 {
				return false
			}
			reconstructed = make([]byte, 0, l+len(h))
			reconstructed = append(reconstructed, f.Cut[:l-1]...)
			reconstructed = append(reconstructed, h[:]...)
			reconstructed = append(reconstructed, f.Cut[l-1:]...)
		} else {
			reconstructed = make([]byte, 0, len(h)+len(f.Cut))
			reconstructed = append(reconstructed, h[:]...)
			reconstructed = append(reconstructed, f.Cut...)
		}
		h = sum(reconstructed)
	}
	return h == want
}

// Marshal encodes a Proof as a sequence of (u8 flag, u16 len, bytes[len])
// records, flag 0x00 or 0x01.
func Marshal(p Proof) []byte {
	var out []byte
	for _, f := range p {
		var flag byte
		if f.Right {
			flag = 0x01
		}
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(f.Cut)))
		out = append(out, flag)
		out = append(out, lenBuf[:]...)
		out = append(out, f.Cut...)
	}
	return out
}

// Unmarshal decodes the wire framing produced by Marshal.
func Unmarshal(data []byte) (Proof, error) {
	var p Proof
	for len(data) > 0 {
		if len(data) < 3 {
			return nil, fmt.Errorf("proof: truncated frame header")
		}
		flag := data[0]
		if flag != 0x00 && flag != 0x01 {
			return nil, fmt.Errorf("proof: invalid flag byte %#x", flag)
		}
		n := int(binary.BigEndian.Uint16(data[1:3]))
		if len(data)-3 < n {
			return nil, fmt.Errorf("proof: truncated frame body: need %d bytes, have %d", n, len(data)-3)
		}
		cut := make([]byte, n)
		copy(cut, data[3:3+n])
		p = append(p, Frame{Right: flag == 0x01, Cut: cut})
		data = data[3+n:]
	}
	return p, nil
}
