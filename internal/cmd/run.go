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

	"github.com/gx-org/setir/build/lower"
	"github.com/gx-org/setir/interp"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] program",
		Short: "lower a program and run it on its sample inputs.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRunCmd,
	}
	cmd.Flags().String("storage", "", "YAML file overriding the storage of tensors")
	cmd.Flags().Int("max-depth", interp.MaxCallDepth, "maximum number of nested calls")
	cmd.Flags().Int("limit", 16, "maximum number of values printed per output (0 for all)")
	return cmd
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	p, err := findProgram(args)
	if err != nil {
		return err
	}
	st, err := programStorage(p, getString(cmd, "storage"))
	if err != nil {
		return err
	}
	funcs, err := lower.LowerProgram(p.Main, st)
	if err != nil {
		return err
	}
	env := interp.NewEnv()
	p.Bind(env)
	itp := interp.New(funcs...).With(interp.WithMaxCallDepth(getInt(cmd, "max-depth")))
	if err := itp.Run(p.Main.Name, env); err != nil {
		return err
	}
	limit := getInt(cmd, "limit")
	for _, name := range p.Outputs {
		vals, ok := env.Buffer(name)
		if !ok {
			return fmt.Errorf("output %s has not been written", name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", name, formatValues(vals, limit))
	}
	return nil
}

func formatValues(vals []float64, limit int) string {
	if limit <= 0 || len(vals) <= limit {
		return fmt.Sprint(vals)
	}
	return fmt.Sprintf("%v ... (%d values)", vals[:limit], len(vals))
}
