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

import "golang.org/x/crypto/sha3"

// SHA3 is a secondary hasher binding: a real digest function distinct
// from SHA-256, so a tree's root is tied to whichever hasher built it and
// two hashers never agree on the same root for the same data.
var SHA3 Hasher = NewFunc("sha3-256", sha3.Sum256)
