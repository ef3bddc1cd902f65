// Copyright 2025 Google LLC
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

package cmd

import (
	"fmt"

	"github.com/gx-org/setir/build/ir/irquery"
	"github.com/spf13/cobra"
)

func newCallTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calltree program",
		Short: "print the functions called by a program.",
		Long: `Print the functions reachable from the main function of a program,
including the kernels of map statements, in pre-order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := findProgram(args)
			if err != nil {
				return err
			}
			for _, fn := range irquery.CallTree(p.Main) {
				fmt.Fprintln(cmd.OutOrStdout(), fn)
			}
			return nil
		},
	}
}
