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

package hash

import "lukechampine.com/blake3"

// Blake3 is a third hasher binding. lukechampine.com/blake3 is the Blake3
// package most commonly paired with Merkle/trie code across the retrieval
// pack.
var Blake3 Hasher = NewFunc("blake3-256", blake3.Sum256)
