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

package storage_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/setir/build/fmterr"
	"github.com/gx-org/setir/build/ir"
	irh "github.com/gx-org/setir/build/ir/irhelper"
	"github.com/gx-org/setir/build/storage"
)

func TestParseKind(t *testing.T) {
	for _, kind := range []storage.Kind{storage.Dense, storage.SetIndexed, storage.SystemReduced} {
		got, err := storage.ParseKind(kind.String())
		if err != nil {
			t.Errorf("cannot parse %s: %v", kind, err)
			continue
		}
		if got != kind {
			t.Errorf("got %s but want %s", got, kind)
		}
	}
	if _, err := storage.ParseKind("sparse"); !errors.Is(err, fmterr.ErrPrecondition) {
		t.Errorf("unknown kind returned %v but want a precondition error", err)
	}
}

func TestBuilder(t *testing.T) {
	b := storage.NewBuilder()
	b.Add("y", storage.NewDense()).Add("points.x", storage.NewSetIndexed("points"))
	st := b.Build()
	b.Add("z", storage.NewDense())
	if st.Size() != 2 {
		t.Errorf("descriptor has %d tensors after modifying its builder but want 2", st.Size())
	}
	if _, ok := st.Lookup("z"); ok {
		t.Errorf("descriptor has been modified by its builder")
	}
	override := storage.NewBuilder().Add("y", storage.NewSetIndexed("points")).Build()
	got := st.Override(override).String()
	want := "y: set-indexed(points)\npoints.x: set-indexed(points)\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if ts, _ := st.Lookup("y"); ts.Kind != storage.Dense {
		t.Errorf("override modified the original descriptor: y is %s", ts)
	}
}

func TestStorageCopies(t *testing.T) {
	ts := storage.NewSetIndexed("points")
	b := storage.NewBuilder().Add("y", ts)
	st := b.Build()
	ts.Set = "springs"
	looked, _ := st.Lookup("y")
	looked.Kind = storage.Dense
	for _, all := range st.All() {
		all.Card = 3
	}
	want := "y: set-indexed(points)\n"
	if got := st.String(); got != want {
		t.Errorf("descriptor modified through its storage:\ngot:\n%s\nwant:\n%s", got, want)
	}
	if got := b.Build().String(); got != want {
		t.Errorf("builder modified through its storage:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGet(t *testing.T) {
	point := irh.Element("Point", irh.Field("x", ir.Float()))
	points := irh.Var("points", irh.Set(point))
	y := irh.Var("y", irh.Tensor(ir.Float(), ir.SetDomain(points)))
	u := irh.Var("u", irh.Tensor(ir.Float(), ir.SetDomain(points)))
	st := storage.NewBuilder().
		Add("y", storage.NewSetIndexed("points")).
		Add("points.x", storage.NewSetIndexed("points")).
		Build()
	tests := []struct {
		expr    ir.Expr
		want    string
		wantErr error
	}{
		{expr: irh.Ref(y), want: "set-indexed(points)"},
		{expr: irh.FieldOf(irh.Ref(points), "x"), want: "set-indexed(points)"},
		{expr: irh.Ref(u), wantErr: fmterr.ErrPrecondition},
		{expr: irh.Add(irh.Ref(y), irh.Ref(y)), wantErr: fmterr.ErrPrecondition},
	}
	for ti, test := range tests {
		got, err := st.Get(test.expr)
		if test.wantErr != nil {
			if !errors.Is(err, test.wantErr) {
				t.Errorf("test %d: got error %v but want %v", ti, err, test.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("test %d: %+v", ti, err)
			continue
		}
		if got.String() != test.want {
			t.Errorf("test %d: got %s but want %s", ti, got, test.want)
		}
	}
}

func TestDefault(t *testing.T) {
	point := irh.Element("Point",
		irh.Field("x", ir.Float()),
		irh.Field("v", irh.Tensor(ir.Float(), ir.RangeDomain(3))),
	)
	points := irh.Var("points", irh.Set(point))
	spring := irh.Element("Spring", irh.Field("k", ir.Float()))
	springs := irh.Var("springs", irh.Set(spring, points, points))
	pdom := ir.SetDomain(points)
	kRes := irh.Var("K", irh.Tensor(ir.Float(), pdom, pdom))
	kernel := irh.Func("f",
		irh.Vars(irh.Var("s", spring), irh.Var("p", irh.Tuple(point, 2))),
		irh.Vars(kRes),
	)
	matK := irh.Var("K", irh.Tensor(ir.Float(), pdom, pdom))
	dense := irh.Var("D", irh.Tensor(ir.Float(), pdom, pdom))
	y := irh.Var("y", irh.Tensor(ir.Float(), pdom))
	m := irh.Var("m", irh.Tensor(ir.Float(), ir.RangeDomain(2), ir.RangeDomain(2)))
	z := irh.Var("z", ir.Float())
	fn := irh.Func("main",
		irh.Vars(points, springs),
		irh.Vars(y, z),
		irh.Map(irh.Vars(matK), kernel, irh.Ref(springs), irh.Ref(points)),
		irh.Assign(dense, irh.Ref(dense)),
		irh.Assign(m, irh.Ref(m)),
	)
	got := storage.Default(fn).String()
	want := strings.Join([]string{
		"points.x: set-indexed(points)",
		"points.v: set-indexed(points)",
		"springs.k: set-indexed(springs)",
		"y: set-indexed(points)",
		"K: system-reduced(springs,2)",
		"D: dense",
		"m: dense",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected storage (-want +got):\n%s", diff)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		src     string
		want    string
		wantErr bool
	}{
		{
			src:  "",
			want: "",
		},
		{
			src: `
tensors:
  K:
    kind: system-reduced
    set: springs
    card: 2
  points.x:
    kind: set-indexed
    set: points
  A:
    kind: dense
`,
			want: "K: system-reduced(springs,2)\npoints.x: set-indexed(points)\nA: dense\n",
		},
		{
			src: `
tensors:
  K:
    kind: sparse
`,
			wantErr: true,
		},
		{
			src: `
tensors:
  K:
    kind: system-reduced
    set: springs
`,
			wantErr: true,
		},
		{
			src:     "tensors: [a, b]",
			wantErr: true,
		},
		{
			src:     "storage: {}",
			wantErr: true,
		},
	}
	for ti, test := range tests {
		st, err := storage.Decode(strings.NewReader(test.src))
		if test.wantErr {
			if err == nil {
				t.Errorf("test %d: expected an error but got:\n%s", ti, st)
			}
			continue
		}
		if err != nil {
			t.Errorf("test %d: %+v", ti, err)
			continue
		}
		if got := st.String(); got != test.want {
			t.Errorf("test %d: got:\n%s\nwant:\n%s", ti, got, test.want)
		}
	}
}

func TestEncode(t *testing.T) {
	st := storage.NewBuilder().
		Add("K", storage.NewSystemReduced("springs", 2)).
		Add("y", storage.NewDense()).
		Build()
	var b strings.Builder
	if err := storage.Encode(&b, st); err != nil {
		t.Fatal(err)
	}
	want := `tensors:
  K:
    kind: system-reduced
    set: springs
    card: 2
  y:
    kind: dense
`
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Errorf("unexpected YAML (-want +got):\n%s", diff)
	}
	decoded, err := storage.Decode(strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.String() != st.String() {
		t.Errorf("got:\n%s\nwant:\n%s", decoded, st)
	}
}
