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

package bits

import (
	"testing"
)

func TestNewAndLen(t *testing.T) {
	b := New([]byte{0xAB, 0xCD})
	if got, want := b.Len(), 16; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
}

func TestFirst(t *testing.T) {
	b := New([]byte{0x80})
	if !b.First() {
		t.Errorf("First() = false, want true for 0x80")
	}
	b2 := New([]byte{0x00})
	if b2.First() {
		t.Errorf("First() = true, want false for 0x00")
	}
}

func TestTakeDrop(t *testing.T) {
	b := New([]byte{0b10110000})
	head := b.Take(3)
	if got, want := head.String(), "101"; got != want {
		t.Errorf("Take(3).String() = %q, want %q", got, want)
	}
	tail := b.Drop(3)
	if got, want := tail.String(), "10000"; got != want {
		t.Errorf("Drop(3).String() = %q, want %q", got, want)
	}
}

func TestDropCrossesByteBoundary(t *testing.T) {
	b := New([]byte{0xFF, 0x0F})
	tail := b.Drop(10)
	if got, want := tail.Len(), 6; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if got, want := tail.String(), "001111"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestLenCommonBits(t *testing.T) {
	a := New([]byte{0b11001100})
	b := New([]byte{0b11001010})
	if got, want := LenCommonBits(a, b), 5; got != want {
		t.Errorf("LenCommonBits() = %d, want %d", got, want)
	}
}

func TestLenCommonBitsDifferentLengths(t *testing.T) {
	a := New([]byte{0xFF}).Take(3)
	b := New([]byte{0xE0})
	if got, want := LenCommonBits(a, b), 3; got != want {
		t.Errorf("LenCommonBits() = %d, want %d", got, want)
	}
}

func TestEqual(t *testing.T) {
	a := New([]byte{0xFF, 0x80}).Take(9)
	b := New([]byte{0xFF, 0xFF}).Take(9)
	if !Equal(a, b) {
		t.Errorf("Equal() = false, want true: both should be 9 leading 1 bits")
	}
}

func TestLess(t *testing.T) {
	zero := New([]byte{0x00})
	one := New([]byte{0x80})
	if !Less(zero, one) {
		t.Errorf("Less(0, 1) = false, want true")
	}
	if Less(one, zero) {
		t.Errorf("Less(1, 0) = true, want false")
	}
	short := New([]byte{0xFF}).Take(4)
	long := New([]byte{0xFF}).Take(5)
	if !Less(short, long) {
		t.Errorf("Less(shorter-prefix, longer) = false, want true")
	}
}

func TestBytesRoundTrip(t *testing.T) {
	orig := New([]byte{0xAB, 0xCD, 0xEF}).Drop(4).Take(11)
	enc := orig.Bytes()
	back, err := FromBytes(enc)
	if err != nil {
		t.Fatalf("FromBytes() error = %v", err)
	}
	if !Equal(orig, back) {
		t.Errorf("round-tripped Bits %q != original %q", back.String(), orig.String())
	}
}

func TestBytesMasksFractionalBits(t *testing.T) {
	b := New([]byte{0xFF}).Take(3)
	enc := b.Bytes()
	// Only the top 3 bits may be set; the rest of the final byte must be zero.
	if got, want := enc[len(enc)-1], byte(0xE0); got != want {
		t.Errorf("masked byte = %#x, want %#x", got, want)
	}
}

func TestFromBytesTruncated(t *testing.T) {
	if _, err := FromBytes([]byte{0, 1}); err == nil {
		t.Errorf("FromBytes(truncated) error = nil, want error")
	}
}
