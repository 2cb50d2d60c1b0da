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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"bitbucket.org/creachadair/shell"
	"github.com/spf13/cobra"
)

// replCmd runs an interactive loop that re-dispatches each line through the
// same cobra command tree as the batch-mode subcommands. Every line opens
// the configured backend anew and closes it when its command finishes, so
// nothing is kept in memory between lines: with the memory backend each
// line starts from an empty store.
func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Read commands from stdin, one root-level subcommand per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(os.Stdin, os.Stdout)
		},
	}
}

func runRepl(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "monotree> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		fields, ok := shell.Split(line)
		if !ok {
			fmt.Fprintln(out, "monotree: unbalanced quotes")
			continue
		}
		if len(fields) == 0 {
			continue
		}
		// Each line gets a fresh root command so cobra's own flag parsing
		// state can't leak between iterations.
		cmd := rootCmd()
		cmd.SetArgs(fields)
		cmd.SetOut(out)
		cmd.SetErr(out)
		if err := cmd.Execute(); err != nil {
			fmt.Fprintln(out, "monotree:", err)
		}
	}
}
