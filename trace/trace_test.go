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

package trace

import (
	"context"
	"errors"
	"sync"
	"testing"

	octrace "go.opencensus.io/trace"
)

// captureExporter records every span it's handed, guarded by a mutex since
// OpenCensus delivers spans from whatever goroutine ended them.
type captureExporter struct {
	mu    sync.Mutex
	spans []*octrace.SpanData
}

func (c *captureExporter) ExportSpan(s *octrace.SpanData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spans = append(c.spans, s)
}

func (c *captureExporter) take() []*octrace.SpanData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spans
}

func withCapture(t *testing.T) *captureExporter {
	t.Helper()
	octrace.ApplyConfig(octrace.Config{DefaultSampler: octrace.AlwaysSample()})
	c := &captureExporter{}
	octrace.RegisterExporter(c)
	t.Cleanup(func() { octrace.UnregisterExporter(c) })
	return c
}

func TestStartEndProducesNamedSpan(t *testing.T) {
	c := withCapture(t)

	_, end := Tracer{}.Start(context.Background(), "Put", []byte{0xAB, 0xCD})
	end(nil)

	spans := c.take()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "monotree.Put" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "monotree.Put")
	}
	if got := spans[0].Attributes["monotree.key"]; got != "abcd" {
		t.Errorf("monotree.key attribute = %v, want %q", got, "abcd")
	}
	if spans[0].Status.Code != 0 {
		t.Errorf("Status.Code = %d on a nil-error End, want 0", spans[0].Status.Code)
	}
}

func TestEndWithErrorSetsStatus(t *testing.T) {
	c := withCapture(t)

	_, end := Tracer{}.Start(context.Background(), "Get", nil)
	end(errors.New("not found"))

	spans := c.take()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code == 0 {
		t.Error("Status.Code = 0 on an errored End, want non-zero")
	}
	if spans[0].Status.Message != "not found" {
		t.Errorf("Status.Message = %q, want %q", spans[0].Status.Message, "not found")
	}
}
