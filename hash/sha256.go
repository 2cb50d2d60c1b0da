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

import "crypto/sha256"

// SHA256 is the default hasher: crypto/sha256 from the standard library.
// No third-party library in the retrieval pack supersedes the stdlib
// implementation of this one, most common, primitive; see DESIGN.md.
var SHA256 Hasher = NewFunc("sha256", sha256.Sum256)
