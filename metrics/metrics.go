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

// Package metrics wraps tree.Tree's operations with Prometheus counters
// and histograms. It implements tree.Hook so it attaches via
// tree.WithMetrics without the tree package importing Prometheus itself.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/monotreedb/monotree/tree"
)

// Recorder is a tree.Hook backed by Prometheus collectors, registered once
// and shared across every Tree it instruments.
type Recorder struct {
	ops       *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	batchSize *prometheus.HistogramVec
}

// NewRecorder constructs a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "monotree_ops_total",
			Help: "Tree operations by name and result.",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "monotree_op_duration_seconds",
			Help:    "Tree operation latency by name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		batchSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "monotree_batch_size",
			Help:    "Size of batch tree operations.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"op"}),
	}
	for _, c := range []prometheus.Collector{r.ops, r.duration, r.batchSize} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Start implements tree.Hook.
func (r *Recorder) Start(ctx context.Context, op string, _ []byte) (context.Context, tree.End) {
	started := time.Now()
	return ctx, func(err error) {
		result := "ok"
		if err != nil {
			result = "error"
		}
		r.ops.WithLabelValues(op, result).Inc()
		r.duration.WithLabelValues(op).Observe(time.Since(started).Seconds())
	}
}

// ObserveBatchSize records the size of a batch operation (Inserts, Gets,
// Removes); callers report this alongside Start/End since batch size isn't
// known until the caller assembles its KV/key slice.
func (r *Recorder) ObserveBatchSize(op string, n int) {
	r.batchSize.WithLabelValues(op).Observe(float64(n))
}
