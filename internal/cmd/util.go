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
	"os"

	"github.com/gx-org/setir/build/storage"
	"github.com/gx-org/setir/internal/programs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// getFlag returns the value of a boolean flag, or panics if the flag
// has not been declared.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		panic(err)
	}
	return r
}

func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		panic(err)
	}
	return r
}

func getInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		panic(err)
	}
	return r
}

// findProgram returns the program named by the first argument.
func findProgram(args []string) (*programs.Program, error) {
	p, err := programs.Find(args[0])
	if err != nil {
		return nil, errors.Errorf("%v (available: %v)", err, programs.Names())
	}
	return p, nil
}

// programStorage returns the default storage of a program, overridden by
// the storage read from a YAML file if a file name is given.
func programStorage(p *programs.Program, filename string) (*storage.Storage, error) {
	st := p.Storage()
	if filename == "" {
		return st, nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open storage file")
	}
	defer f.Close()
	overrides, err := storage.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return st.Override(overrides), nil
}
