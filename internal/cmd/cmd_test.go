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

package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gx-org/setir/internal/cmd"
)

func execute(args ...string) (string, error) {
	root := cmd.NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	storageFile := filepath.Join(t.TempDir(), "storage.yaml")
	const dense = `tensors:
  F:
    kind: dense
`
	if err := os.WriteFile(storageFile, []byte(dense), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		args []string
		want []string
	}{
		{
			args: []string{"list"},
			want: []string{"vector-add", "spmv", "calls"},
		},
		{
			args: []string{"run", "vector-add"},
			want: []string{"points.y = [84]\n"},
		},
		{
			args: []string{"run", "dot"},
			want: []string{"z = [14]\n"},
		},
		{
			args: []string{"run", "spring-force", "--storage", storageFile},
			want: []string{"F = [1 3 -4]\n"},
		},
		{
			args: []string{"run", "large-add", "--limit", "3"},
			want: []string{"points.y = [0 3 6] ... (2557 values)\n"},
		},
		{
			args: []string{"lower", "vector-add"},
			want: []string{"  foreach i in points:\n    points.y[i] = (points.x[i] + points.x[i])\n"},
		},
		{
			args: []string{"lower", "vector-add", "--numbers"},
			want: []string{"1 func main", "2   foreach i in points:\n", "3     points.y[i]"},
		},
		{
			args: []string{"lower", "dot", "--stage", "index-expressions"},
			want: []string{"z[] += (points.x[r] * points.x[r])"},
		},
		{
			args: []string{"lower", "spmv", "--show-storage"},
			want: []string{"kind: system-reduced", "springs.endpoints["},
		},
		{
			args: []string{"lower", "calls", "--params"},
			want: []string{"call scale(points)", "// points int\n", "// pts.x *float\n"},
		},
		{
			args: []string{"calltree", "calls"},
			want: []string{"func main", "func scale"},
		},
	}
	for _, test := range tests {
		got, err := execute(test.args...)
		if err != nil {
			t.Errorf("%v: %+v", test.args, err)
			continue
		}
		for _, want := range test.want {
			if !strings.Contains(got, want) {
				t.Errorf("%v: output does not contain %q:\n%s", test.args, want, got)
			}
		}
	}
}

func TestCommandErrors(t *testing.T) {
	tests := [][]string{
		{"run", "unknown"},
		{"lower", "dot", "--stage", "unknown"},
		{"lower", "dot", "--storage", "does-not-exist.yaml"},
		{"run", "dot", "--max-depth", "0", "extra"},
	}
	for _, args := range tests {
		if _, err := execute(args...); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}
