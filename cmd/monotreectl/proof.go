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
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/monotreedb/monotree/proof"
	"github.com/monotreedb/monotree/tree"
)

func proofCmd() *cobra.Command {
	var rootFlag string
	cmd := &cobra.Command{
		Use:   "proof <key>",
		Short: "Produce a hex-encoded inclusion proof for key under --root (fails if key is absent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, closer, err := buildTree()
			if err != nil {
				return err
			}
			defer closer()
			hasher, err := openHasher()
			if err != nil {
				return err
			}
			key, err := parseDigest(hasher, args[0])
			if err != nil {
				return err
			}
			root, err := parseRootFlag(rootFlag)
			if err != nil {
				return err
			}
			if root == nil {
				return fmt.Errorf("--root is required for proof")
			}
			p, err := tr.Proof(cmd.Context(), root, key)
			if err != nil {
				return err
			}
			fmt.Println(hex.EncodeToString(proof.Marshal(p)))
			return nil
		},
	}
	cmd.Flags().StringVar(&rootFlag, "root", "", "root digest to prove against (64 hex chars)")
	return cmd
}

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <root> <leaf> <proof>",
		Short: "Verify a hex-encoded proof against a root and leaf",
		Long: "Verify a hex-encoded proof against a root and leaf. The key isn't\n" +
			"a separate argument: each proof frame already carries the bit the\n" +
			"descent took, so the leaf position is implicit in the proof itself.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasher, err := openHasher()
			if err != nil {
				return err
			}
			root, err := decodeDigestArg(args[0])
			if err != nil {
				return fmt.Errorf("root: %w", err)
			}
			leaf, err := decodeDigestArg(args[1])
			if err != nil {
				return fmt.Errorf("leaf: %w", err)
			}
			raw, err := hex.DecodeString(args[2])
			if err != nil {
				return fmt.Errorf("proof: %w", err)
			}
			p, err := proof.Unmarshal(raw)
			if err != nil {
				return fmt.Errorf("proof: %w", err)
			}
			if !tree.Verify(hasher, root, leaf, p) {
				fmt.Println("invalid")
				return fmt.Errorf("proof does not verify")
			}
			fmt.Println("valid")
			return nil
		},
	}
	return cmd
}

func decodeDigestArg(s string) ([32]byte, error) {
	var d [32]byte
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 32 {
		return d, fmt.Errorf("want 64 hex characters, got %q", s)
	}
	copy(d[:], b)
	return d, nil
}
