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

package programs_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/setir/build/ir/sirstring"
	"github.com/gx-org/setir/build/lower"
	"github.com/gx-org/setir/internal/programs"
	"github.com/gx-org/setir/interp"
)

func run(t *testing.T, p *programs.Program) *interp.Env {
	t.Helper()
	funcs, err := lower.LowerProgram(p.Main, p.Storage())
	if err != nil {
		t.Fatalf("%s: cannot lower:\n%+v", p.Name, err)
	}
	env := interp.NewEnv()
	p.Bind(env)
	if err := interp.New(funcs...).Run(p.Main.Name, env); err != nil {
		t.Fatalf("%s: cannot run:\n%+v", p.Name, err)
	}
	return env
}

func seq(n int, f func(int) float64) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = f(i)
	}
	return vals
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name string
		want map[string][]float64
	}{
		{
			name: "vector-add",
			want: map[string][]float64{"points.y": {84}},
		},
		{
			name: "dot",
			want: map[string][]float64{"z": {14}},
		},
		{
			name: "blocked-scale",
			want: map[string][]float64{"points.v": {2, 4, 6, 8, 10, 12}},
		},
		{
			name: "blocked-dot",
			want: map[string][]float64{"z": {285}},
		},
		{
			name: "blocked-assign",
			want: map[string][]float64{
				"points.b": {2, 4, 6, 8},
				"y":        {2, 4, 6, 8},
			},
		},
		{
			name: "large-add",
			want: map[string][]float64{
				"points.y": seq(programs.LargeSize, func(i int) float64 { return float64(3 * i) }),
			},
		},
		{
			name: "spring-force",
			want: map[string][]float64{
				"F":        {1, 3, -4},
				"points.y": {1, 3, -4},
			},
		},
		{
			name: "spmv",
			want: map[string][]float64{
				"points.y": {-1, -1, 2},
				"K":        {1, -1, -1, 1, 1, -1, -1, 1},
			},
		},
		{
			name: "calls",
			want: map[string][]float64{
				"points.y": {2, 4, 6},
				"z":        {12},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p, err := programs.Find(test.name)
			if err != nil {
				t.Fatal(err)
			}
			env := run(t, p)
			for name, want := range test.want {
				got, ok := env.Buffer(name)
				if !ok {
					t.Errorf("buffer %s not found", name)
					continue
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("incorrect values for %s (-want +got):\n%s", name, diff)
				}
			}
		})
	}
}

func TestOutputs(t *testing.T) {
	for _, p := range programs.All() {
		env := run(t, p)
		for _, out := range p.Outputs {
			if _, ok := env.Buffer(out); !ok {
				t.Errorf("%s: output %s not written", p.Name, out)
			}
		}
	}
}

func TestVectorAddLowered(t *testing.T) {
	p, err := programs.Find("vector-add")
	if err != nil {
		t.Fatal(err)
	}
	fn, err := lower.Lower(p.Main, p.Storage())
	if err != nil {
		t.Fatalf("%+v", err)
	}
	const want = `foreach i in points:
  points.y[i] = (points.x[i] + points.x[i])
`
	if got := sirstring.String(fn.Body); got != want {
		t.Errorf("incorrect lowered function:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFind(t *testing.T) {
	if _, err := programs.Find("unknown"); err == nil {
		t.Errorf("expected an error for an unknown program")
	}
	names := programs.Names()
	if len(names) != len(programs.All()) {
		t.Errorf("got %d names for %d programs", len(names), len(programs.All()))
	}
}
