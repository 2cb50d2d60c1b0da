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

package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStartEndRecordsOpsAndDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}

	_, end := r.Start(context.Background(), "Put", []byte("key"))
	end(nil)

	_, end = r.Start(context.Background(), "Put", []byte("key2"))
	end(errors.New("boom"))

	if got := testutil.ToFloat64(r.ops.WithLabelValues("Put", "ok")); got != 1 {
		t.Errorf("ops{Put,ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.ops.WithLabelValues("Put", "error")); got != 1 {
		t.Errorf("ops{Put,error} = %v, want 1", got)
	}

	count, err := testutil.GatherAndCount(reg, "monotree_op_duration_seconds")
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if count != 1 {
		t.Errorf("monotree_op_duration_seconds series count = %d, want 1", count)
	}
}

func TestObserveBatchSize(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}

	r.ObserveBatchSize("Inserts", 12)

	count, err := testutil.GatherAndCount(reg, "monotree_batch_size")
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if count != 1 {
		t.Errorf("monotree_batch_size series count = %d, want 1", count)
	}
}

func TestNewRecorderRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewRecorder(reg); err != nil {
		t.Fatalf("first NewRecorder() error = %v", err)
	}
	_, err := NewRecorder(reg)
	if err == nil {
		t.Fatal("second NewRecorder() on the same registry: want error, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate") && !strings.Contains(err.Error(), "already") {
		t.Errorf("error = %v, want a duplicate-registration complaint", err)
	}
}
