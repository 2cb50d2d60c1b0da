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

// Package trace wraps tree.Tree's operations with OpenCensus spans. It
// implements tree.Hook so it attaches via tree.WithTracer without the
// tree package importing OpenCensus itself.
package trace

import (
	"context"
	"encoding/hex"

	"go.opencensus.io/trace"

	mtree "github.com/monotreedb/monotree/tree"
)

// Tracer is a tree.Hook that opens one OpenCensus span per operation,
// named "monotree.<Op>", carrying the operation's key as an attribute.
// The leaf value is never attached: it may be sensitive.
type Tracer struct{}

// Start implements tree.Hook.
func (Tracer) Start(ctx context.Context, op string, key []byte) (context.Context, mtree.End) {
	ctx, span := trace.StartSpan(ctx, "monotree."+op)
	if key != nil {
		span.AddAttributes(trace.StringAttribute("monotree.key", hex.EncodeToString(key)))
	}
	return ctx, func(err error) {
		if err != nil {
			span.SetStatus(trace.Status{Code: int32(trace.StatusCodeUnknown), Message: err.Error()})
		}
		span.End()
	}
}
