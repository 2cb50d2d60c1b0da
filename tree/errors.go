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

import "errors"

var (
	// ErrNotFound is returned by Get when the key is absent. Callers
	// should treat this as a normal "absent" result, not a failure.
	ErrNotFound = errors.New("tree: key not found")

	// ErrNoSuchRoot is returned when a digest referenced by a parent node,
	// or a root digest passed in directly, cannot be found in the backend:
	// a sign of backend corruption or a stale/foreign root.
	ErrNoSuchRoot = errors.New("tree: referenced node missing from backend")

	// ErrNoProof is returned by Proof when the key is absent: a caller
	// that needs to show absence should call Get against a trusted root
	// and observe ErrNotFound instead.
	ErrNoProof = errors.New("tree: no proof for absent key")
)
