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

// Command monotreectl is an interactive and batch-mode driver for a
// monotree store: put/get/remove/proof/verify/headroot, plus a REPL.
package main

import (
	"fmt"
	"os"

	stackdriver "contrib.go.opencensus.io/exporter/stackdriver"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opencensus.io/trace"

	"github.com/monotreedb/monotree/backend"
	"github.com/monotreedb/monotree/hash"
	mtrace "github.com/monotreedb/monotree/trace"
	"github.com/monotreedb/monotree/tree"
)

var cfg = viper.New()

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "monotreectl",
		Short: "Inspect and mutate a monotree authenticated key-value store",
	}
	flags := root.PersistentFlags()
	flags.String("backend", "memory", "backend adapter: memory, badger, bolt")
	flags.String("data-dir", "", "data directory for the badger/bolt backends")
	flags.String("hasher", "sha256", "hasher: sha256, sha3, blake3")
	flags.String("stackdriver-project", "", "if set, export OpenCensus traces to this Stackdriver project")
	cfg.BindPFlags(flags)

	root.AddCommand(putCmd(), getCmd(), removeCmd(), proofCmd(), verifyCmd(), headRootCmd(), replCmd())
	return root
}

func openStore() (backend.Store, error) {
	switch cfg.GetString("backend") {
	case "memory":
		return backend.NewMemory(), nil
	case "badger":
		dir := cfg.GetString("data-dir")
		if dir == "" {
			return nil, fmt.Errorf("--data-dir is required for the badger backend")
		}
		return backend.OpenBadger(dir)
	case "bolt":
		dir := cfg.GetString("data-dir")
		if dir == "" {
			return nil, fmt.Errorf("--data-dir is required for the bolt backend")
		}
		return backend.OpenBolt(dir + "/monotree.db")
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.GetString("backend"))
	}
}

func openHasher() (hash.Hasher, error) {
	switch cfg.GetString("hasher") {
	case "sha256":
		return hash.SHA256, nil
	case "sha3":
		return hash.SHA3, nil
	case "blake3":
		return hash.Blake3, nil
	default:
		return nil, fmt.Errorf("unknown hasher %q", cfg.GetString("hasher"))
	}
}

// maybeExportStackdriver registers a Stackdriver exporter when
// --stackdriver-project is set, wiring the trace package's spans to it for
// the lifetime of the process. The returned func flushes and must be
// deferred by the caller.
func maybeExportStackdriver() (func(), error) {
	project := cfg.GetString("stackdriver-project")
	if project == "" {
		return func() {}, nil
	}
	exporter, err := stackdriver.NewExporter(stackdriver.Options{ProjectID: project})
	if err != nil {
		return nil, fmt.Errorf("monotreectl: stackdriver exporter: %w", err)
	}
	trace.RegisterExporter(exporter)
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})
	glog.V(1).Infof("monotreectl: exporting traces to Stackdriver project %q", project)
	return exporter.Flush, nil
}

func buildTree() (*tree.Tree, func(), error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	hasher, err := openHasher()
	if err != nil {
		return nil, nil, err
	}
	flush, err := maybeExportStackdriver()
	if err != nil {
		return nil, nil, err
	}
	var opts []tree.Option
	if cfg.GetString("stackdriver-project") != "" {
		opts = append(opts, tree.WithTracer(mtrace.Tracer{}))
	}
	closer := func() {
		flush()
		if c, ok := store.(interface{ Close() error }); ok {
			c.Close()
		}
	}
	return tree.New(store, hasher, opts...), closer, nil
}
