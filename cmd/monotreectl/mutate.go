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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/monotreedb/monotree/backend"
)

func putCmd() *cobra.Command {
	var rootFlag string
	cmd := &cobra.Command{
		Use:   "put <key> <leaf>",
		Short: "Insert or replace a single key, printing the new root",
		Args:  cobra.ExactArgs(2),
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
			leaf, err := parseDigest(hasher, args[1])
			if err != nil {
				return err
			}
			root, err := parseRootFlag(rootFlag)
			if err != nil {
				return err
			}
			newRoot, err := tr.Put(cmd.Context(), root, key, leaf)
			if err != nil {
				return err
			}
			fmt.Println(hex.EncodeToString(newRoot[:]))
			return nil
		},
	}
	cmd.Flags().StringVar(&rootFlag, "root", "", "root digest to mutate (64 hex chars); empty for a brand new tree")
	return cmd
}

func getCmd() *cobra.Command {
	var rootFlag string
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Look up a single key under a root",
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
				return fmt.Errorf("--root is required for get")
			}
			leaf, err := tr.Get(cmd.Context(), root, key)
			if err != nil {
				return err
			}
			fmt.Println(hex.EncodeToString(leaf[:]))
			return nil
		},
	}
	cmd.Flags().StringVar(&rootFlag, "root", "", "root digest to read from (64 hex chars)")
	return cmd
}

func removeCmd() *cobra.Command {
	var rootFlag string
	cmd := &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove a single key, printing the new root (or \"empty\")",
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
			newRoot, err := tr.Remove(cmd.Context(), root, key)
			if err != nil {
				return err
			}
			if newRoot == nil {
				fmt.Println("empty")
				return nil
			}
			fmt.Println(hex.EncodeToString(newRoot[:]))
			return nil
		},
	}
	cmd.Flags().StringVar(&rootFlag, "root", "", "root digest to mutate (64 hex chars)")
	return cmd
}

func headRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "headroot",
		Short: "Read or write the backend's named head root pointer",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current head root, or \"empty\" if unset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, closer, err := buildTree()
			if err != nil {
				return err
			}
			defer closer()
			root, err := tr.GetHeadRoot(cmd.Context())
			if err != nil {
				if errors.Is(err, backend.ErrNotFound) {
					fmt.Println("empty")
					return nil
				}
				return err
			}
			if root == nil {
				fmt.Println("empty")
				return nil
			}
			fmt.Println(hex.EncodeToString(root[:]))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <root>",
		Short: "Set the head root pointer to a 64-hex-char digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, closer, err := buildTree()
			if err != nil {
				return err
			}
			defer closer()
			root, err := parseRootFlag(args[0])
			if err != nil {
				return err
			}
			return tr.SetHeadRoot(cmd.Context(), root)
		},
	})
	return cmd
}
