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

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/monotreedb/monotree/hash"
	"github.com/monotreedb/monotree/tree"
)

// parseDigest accepts a 64-character hex string as a literal 32-byte
// digest, or hashes any other string with hasher so that a human can
// pass "alice" on the command line instead of a raw digest.
func parseDigest(hasher hash.Hasher, s string) ([32]byte, error) {
	if len(s) == 64 {
		if b, err := hex.DecodeString(s); err == nil {
			var d [32]byte
			copy(d[:], b)
			return d, nil
		}
	}
	return hasher.Sum([]byte(s)), nil
}

func parseRootFlag(s string) (*tree.Digest, error) {
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 32 {
		return nil, fmt.Errorf("--root must be 64 hex characters, got %q", s)
	}
	var d tree.Digest
	copy(d[:], b)
	return &d, nil
}
