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

// Package bits implements a zero-copy view over a byte buffer and a
// half-open bit range within it, used throughout monotree to label the
// compressed edges of the Sparse Merkle Tree.
package bits

import (
	"encoding/binary"
	"fmt"
)

// leftmask[i] has the leftmost i bits of a byte set (i in 0..8); leftmask[0]
// is all-ones since an 8-bit shift is undefined. Lifted from the NodeID
// bit-masking table in the storage layer this package generalizes.
var leftmask = [8]byte{0xFF, 0x80, 0xC0, 0xE0, 0xF0, 0xF8, 0xFC, 0xFE}

// Bits is a value-semantic view over path[start:end) counted in bits,
// MSB-first within each byte. Two Bits over different backing arrays
// compare equal iff their logical bit sequences are equal; Bits never
// copies path unless asked to via Bytes.
type Bits struct {
	path       []byte
	start, end uint16
}

// New returns the Bits view over the whole of path, i.e. range [0, 8*len(path)).
func New(path []byte) Bits {
	return Bits{path: path, end: uint16(8 * len(path))}
}

// Empty reports whether the bit range is empty.
func (b Bits) Empty() bool { return b.end <= b.start }

// Len returns the number of bits in the range.
func (b Bits) Len() int { return int(b.end) - int(b.start) }

// bitAt returns the bit at absolute bit-index i (0 = MSB of path[0]).
func (b Bits) bitAt(i uint16) bool {
	byteIdx := i / 8
	shift := 7 - (i % 8)
	return (b.path[byteIdx]>>shift)&1 == 1
}

// First returns the value of the first bit in the range. Panics if Empty.
func (b Bits) First() bool {
	if b.Empty() {
		panic("bits: First of empty range")
	}
	return b.bitAt(b.start)
}

// At returns the value of the i-th bit (0-indexed from the start of the range).
func (b Bits) At(i int) bool {
	if i < 0 || i >= b.Len() {
		panic(fmt.Sprintf("bits: At(%d) out of range [0,%d)", i, b.Len()))
	}
	return b.bitAt(b.start + uint16(i))
}

// Take returns the prefix of length n (n <= Len()); this is shift(n, tail=true).
func (b Bits) Take(n int) Bits {
	return b.shift(n, true)
}

// Drop returns the suffix after dropping the first n bits; this is shift(n, tail=false).
func (b Bits) Drop(n int) Bits {
	return b.shift(n, false)
}

// shift implements Take (tail=true, keep the first n bits starting at
// b.start) and Drop (tail=false, keep everything after the first n bits).
// The returned Bits always shares the backing array with b; Drop advances
// the conceptual start but keeps whole bytes, relying on start/end tracking
// the fractional bit offset within path[0].
func (b Bits) shift(n int, tail bool) Bits {
	if n < 0 || n > b.Len() {
		panic(fmt.Sprintf("bits: shift(%d) out of range [0,%d]", n, b.Len()))
	}
	if tail {
		return Bits{path: b.path, start: b.start, end: b.start + uint16(n)}
	}
	newStart := b.start + uint16(n)
	byteAdvance := newStart / 8
	return Bits{
		path:  b.path[byteAdvance:],
		start: newStart % 8,
		end:   b.end - byteAdvance*8,
	}
}

// LenCommonBits returns the length, in bits, of the longest common prefix
// of a and b: the largest n <= min(len(a), len(b)) such that a.At(i) ==
// b.At(i) for all i < n.
func LenCommonBits(a, b Bits) int {
	max := a.Len()
	if b.Len() < max {
		max = b.Len()
	}
	n := 0
	for n < max && a.At(n) == b.At(n) {
		n++
	}
	return n
}

// Equal reports whether a and b denote the same logical bit sequence.
func Equal(a, b Bits) bool {
	if a.Len() != b.Len() {
		return false
	}
	return LenCommonBits(a, b) == a.Len()
}

// Less orders a and b lexicographically MSB-to-LSB over the logical bit
// sequence, with shorter-is-less as the final tiebreak when one is a
// prefix of the other.
func Less(a, b Bits) bool {
	n := LenCommonBits(a, b)
	if n < a.Len() && n < b.Len() {
		return !a.At(n) && b.At(n)
	}
	return a.Len() < b.Len()
}

// Bytes returns the canonical byte encoding of b: two big-endian uint16s
// (start, end) relative to the returned path slice, followed by the
// minimal byte-aligned path prefix covering [0, end), with any bits at or
// beyond end in the final byte, and any bits before start in the first
// byte, masked to zero.
func (b Bits) Bytes() []byte {
	nBytes := (int(b.end) + 7) / 8
	out := make([]byte, 4+nBytes)
	binary.BigEndian.PutUint16(out[0:2], b.start)
	binary.BigEndian.PutUint16(out[2:4], b.end)
	copy(out[4:], b.path[:nBytes])

	if b.end%8 != 0 {
		out[4+nBytes-1] &= leftmask[b.end%8]
	}
	if b.start > 0 {
		// start is always < 8: Drop folds whole-byte advances into the path
		// slice itself, leaving only a fractional offset into path[0].
		out[4] &^= leftmask[b.start]
	}
	return out
}

// FromBytes decodes the canonical encoding produced by Bytes.
func FromBytes(data []byte) (Bits, error) {
	if len(data) < 4 {
		return Bits{}, fmt.Errorf("bits: truncated encoding: %d bytes", len(data))
	}
	start := binary.BigEndian.Uint16(data[0:2])
	end := binary.BigEndian.Uint16(data[2:4])
	if start > end {
		return Bits{}, fmt.Errorf("bits: start %d > end %d", start, end)
	}
	nBytes := (int(end) + 7) / 8
	if len(data)-4 < nBytes {
		return Bits{}, fmt.Errorf("bits: truncated path: need %d bytes, have %d", nBytes, len(data)-4)
	}
	path := make([]byte, nBytes)
	copy(path, data[4:4+nBytes])
	return Bits{path: path, start: start, end: end}, nil
}

// Path returns the raw backing bytes currently referenced by b. Callers
// must not mutate the returned slice.
func (b Bits) Path() []byte { return b.path }

// String renders the logical bit sequence as '0'/'1' characters, MSB
// first; intended for debugging and log output only.
func (b Bits) String() string {
	buf := make([]byte, b.Len())
	for i := range buf {
		if b.At(i) {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}
