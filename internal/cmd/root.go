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

// Package cmd implements the setirc command line tool.
package cmd

import (
	"fmt"
	"os"

	"github.com/gx-org/setir/internal/programs"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd returns the root command with all its sub-commands.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "setirc",
		Short: "Lower tensor index programs to Set IR.",
		Long: `Lower the programs of the catalogue from tensor index expressions
to loops over sets and buffer accesses, and run them on sample inputs.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if getFlag(cmd, "verbose") {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	root.AddCommand(
		newListCmd(),
		newLowerCmd(),
		newRunCmd(),
		newCallTreeCmd(),
	)
	return root
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list the programs of the catalogue.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range programs.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", p.Name, p.Description)
			}
			return nil
		},
	}
}
