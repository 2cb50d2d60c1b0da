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

// Package node implements the on-disk record type of the monotree Sparse
// Merkle Tree: a one-child (Soft) or two-child (Hard) inner record, whose
// serialization is the tree's canonical node format.
package node

import (
	"errors"
	"fmt"

	"github.com/monotreedb/monotree/bits"
)

// DigestLen is the width, in bytes, of every digest stored in a Node.
const DigestLen = 32

// Digest is a 32-byte hash output and the address under which a Node is
// stored in the backend.
type Digest [DigestLen]byte

// ErrMalformed is returned when a byte buffer cannot be decoded as a Node:
// an impossible tag byte or a truncated buffer. It is always fatal to the
// caller's current operation; tree.readNode (tree/tree.go) wraps it when
// a stored node fails to decode.
var ErrMalformed = errors.New("node: malformed encoding")

// tag bytes, always the final byte of the encoding.
const (
	tagSoft byte = 0x00
	tagHard byte = 0x01
)

// Unit is a reference to a child subtree together with the bit-path from
// the current node down to that child.
type Unit struct {
	Digest Digest
	Path   bits.Bits
}

// Node is the tagged on-disk record: exactly one of Soft or Hard is
// populated. A Soft node collapses a run of single-child levels into one
// record with a multi-bit path; a Hard node is the two-child branch point
// where the tree actually forks.
type Node struct {
	soft *Unit
	hard *[2]Unit // hard[0] is the child whose path starts with bit 0.
}

// Soft constructs a one-child node.
func Soft(u Unit) Node {
	return Node{soft: &u}
}

// Hard constructs a two-child node, normalizing child order so that the
// child whose path starts with bit 0 is stored first. This emit-time swap
// is what makes the tree's root deterministic regardless of which child a
// caller happened to compute first.
func Hard(a, b Unit) Node {
	if a.Path.First() {
		a, b = b, a
	}
	return Node{hard: &[2]Unit{a, b}}
}

// IsSoft reports whether n is a one-child node.
func (n Node) IsSoft() bool { return n.soft != nil }

// IsHard reports whether n is a two-child node.
func (n Node) IsHard() bool { return n.hard != nil }

// SoftUnit returns the node's sole unit. Panics if !IsSoft().
func (n Node) SoftUnit() Unit {
	if n.soft == nil {
		panic("node: SoftUnit of a Hard node")
	}
	return *n.soft
}

// Children returns the Hard node's two units, left-first (left.Path starts
// with bit 0). Panics if !IsHard().
func (n Node) Children() (left, right Unit) {
	if n.hard == nil {
		panic("node: Children of a Soft node")
	}
	return n.hard[0], n.hard[1]
}

// Descend returns (pursued, sibling) for the child selected by the given
// bit: pursued is the child whose path begins with that bit, sibling is
// the other one (zero Unit, with Path.Len()==0, for a Soft node). This
// lets a caller descend without first checking which side it landed on.
func (n Node) Descend(bit bool) (pursued, sibling Unit) {
	if n.soft != nil {
		return *n.soft, Unit{}
	}
	left, right := n.hard[0], n.hard[1]
	if bit {
		return right, left
	}
	return left, right
}

// MarshalBinary implements the node's canonical wire encoding:
//
//	Soft: hash(32) || bits_bytes || 0x00
//	Hard: left.hash(32) || left.bits_bytes || right.bits_bytes || right.hash(32) || 0x01
func (n Node) MarshalBinary() ([]byte, error) {
	if n.soft != nil {
		pathBytes := n.soft.Path.Bytes()
		out := make([]byte, 0, DigestLen+len(pathBytes)+1)
		out = append(out, n.soft.Digest[:]...)
		out = append(out, pathBytes...)
		out = append(out, tagSoft)
		return out, nil
	}
	left, right := n.hard[0], n.hard[1]
	leftPath := left.Path.Bytes()
	rightPath := right.Path.Bytes()
	out := make([]byte, 0, DigestLen+len(leftPath)+len(rightPath)+DigestLen+1)
	out = append(out, left.Digest[:]...)
	out = append(out, leftPath...)
	out = append(out, rightPath...)
	out = append(out, right.Digest[:]...)
	out = append(out, tagHard)
	return out, nil
}

// UnmarshalBinary decodes the canonical encoding. The decoder dispatches
// on the final (tag) byte.
func (n *Node) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return fmt.Errorf("%w: empty buffer", ErrMalformed)
	}
	tag := data[len(data)-1]
	body := data[:len(data)-1]
	switch tag {
	case tagSoft:
		if len(body) < DigestLen {
			return fmt.Errorf("%w: soft node truncated digest", ErrMalformed)
		}
		var d Digest
		copy(d[:], body[:DigestLen])
		path, err := bits.FromBytes(body[DigestLen:])
		if err != nil {
			return fmt.Errorf("%w: soft node path: %v", ErrMalformed, err)
		}
		*n = Soft(Unit{Digest: d, Path: path})
		return nil
	case tagHard:
		if len(body) < 2*DigestLen {
			return fmt.Errorf("%w: hard node truncated digests", ErrMalformed)
		}
		var left, right Digest
		copy(left[:], body[:DigestLen])
		copy(right[:], body[len(body)-DigestLen:])
		pathBytes := body[DigestLen : len(body)-DigestLen]
		leftPath, rightPath, err := splitHardPaths(pathBytes)
		if err != nil {
			return fmt.Errorf("%w: hard node paths: %v", ErrMalformed, err)
		}
		*n = Hard(Unit{Digest: left, Path: leftPath}, Unit{Digest: right, Path: rightPath})
		return nil
	default:
		return fmt.Errorf("%w: unknown tag byte %#x", ErrMalformed, tag)
	}
}

// splitHardPaths splits the concatenated left||right Bits encodings out of
// a Hard node's body. Each encoding is self-describing (a 4-byte
// start/end header followed by its own path bytes), so the left encoding's
// length can be computed without a separate length prefix.
func splitHardPaths(buf []byte) (left, right bits.Bits, err error) {
	n, err := encodedLen(buf)
	if err != nil {
		return bits.Bits{}, bits.Bits{}, err
	}
	left, err = bits.FromBytes(buf[:n])
	if err != nil {
		return bits.Bits{}, bits.Bits{}, err
	}
	right, err = bits.FromBytes(buf[n:])
	if err != nil {
		return bits.Bits{}, bits.Bits{}, err
	}
	return left, right, nil
}

// encodedLen returns the length, in bytes, of the single Bits encoding at
// the front of buf, per the format in bits.Bits.Bytes: a 4-byte header
// (start, end as big-endian uint16) followed by ceil(end/8) path bytes.
func encodedLen(buf []byte) (int, error) {
	if len(buf) < 4 {
		return 0, fmt.Errorf("truncated bits header")
	}
	end := int(buf[2])<<8 | int(buf[3])
	n := 4 + (end+7)/8
	if n > len(buf) {
		return 0, fmt.Errorf("truncated bits path: need %d bytes, have %d", n, len(buf))
	}
	return n, nil
}

// Bytes hashes the canonical MarshalBinary encoding with the given hash
// function and returns both the digest and the serialized bytes, so the
// caller can write (digest -> bytes) to the backend in one step.
func (n Node) Bytes(sum func([]byte) [32]byte) (Digest, []byte, error) {
	enc, err := n.MarshalBinary()
	if err != nil {
		return Digest{}, nil, err
	}
	return Digest(sum(enc)), enc, nil
}
