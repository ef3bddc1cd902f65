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
	"io"
	"strings"

	irfmt "github.com/gx-org/setir/base/fmt"
	"github.com/gx-org/setir/build/handoff"
	"github.com/gx-org/setir/build/ir"
	"github.com/gx-org/setir/build/ir/sirstring"
	"github.com/gx-org/setir/build/lower"
	"github.com/gx-org/setir/build/storage"
	"github.com/spf13/cobra"
)

func newLowerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lower [flags] program",
		Short: "lower a program and print the result.",
		Long: `Lower a program of the catalogue up to a given stage and print
the functions of the program in Set IR.`,
		Args: cobra.ExactArgs(1),
		RunE: runLowerCmd,
	}
	cmd.Flags().String("stage", lower.TensorAccesses.String(), "last lowering stage")
	cmd.Flags().String("storage", "", "YAML file overriding the storage of tensors")
	cmd.Flags().Bool("show-storage", false, "print the storage of the tensors in YAML")
	cmd.Flags().Bool("params", false, "print the native parameters of the lowered functions")
	cmd.Flags().Bool("numbers", false, "prefix the lines of the functions with their number")
	return cmd
}

func runLowerCmd(cmd *cobra.Command, args []string) error {
	p, err := findProgram(args)
	if err != nil {
		return err
	}
	stage, err := lower.ParseStage(getString(cmd, "stage"))
	if err != nil {
		return err
	}
	st, err := programStorage(p, getString(cmd, "storage"))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if getFlag(cmd, "show-storage") {
		if err := storage.Encode(out, st); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	funcs, err := lower.LowerProgramTo(p.Main, st, stage)
	if err != nil {
		return err
	}
	for i, fn := range funcs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := printFunc(out, fn, getFlag(cmd, "numbers")); err != nil {
			return err
		}
		if !getFlag(cmd, "params") {
			continue
		}
		params, err := handoff.Params(fn)
		if err != nil {
			return err
		}
		for _, param := range params {
			fmt.Fprintf(out, "  // %s\n", param)
		}
	}
	return nil
}

func printFunc(w io.Writer, fn *ir.Func, numbers bool) error {
	if !numbers {
		return sirstring.Print(w, fn)
	}
	var s strings.Builder
	if err := sirstring.Print(&s, fn); err != nil {
		return err
	}
	_, err := io.WriteString(w, irfmt.Number(s.String()))
	return err
}
