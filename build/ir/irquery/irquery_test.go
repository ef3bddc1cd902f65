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

package irquery_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/setir/build/ir"
	irh "github.com/gx-org/setir/build/ir/irhelper"
	"github.com/gx-org/setir/build/ir/irquery"
)

type fixture struct {
	points  *ir.Var
	x, v    *ir.FieldRead
	a       *ir.Var
	i, j, r *ir.IndexVar
}

func newFixture() *fixture {
	point := irh.Element("Point",
		irh.Field("x", ir.Float()),
		irh.Field("v", irh.Tensor(ir.Float(), ir.RangeDomain(3))),
	)
	points := irh.Var("points", irh.Set(point))
	dom := ir.SetDomain(points)
	return &fixture{
		points: points,
		x:      irh.FieldOf(irh.Ref(points), "x"),
		v:      irh.FieldOf(irh.Ref(points), "v"),
		a:      irh.Var("A", irh.Tensor(ir.Float(), dom, dom)),
		i:      irh.Free("i", dom),
		j:      irh.Free("j", dom),
		r:      irh.Sum("r", dom),
	}
}

func names(ivs []*ir.IndexVar) []string {
	ss := make([]string, len(ivs))
	for i, iv := range ivs {
		ss[i] = iv.Name
	}
	return ss
}

func TestIndexVars(t *testing.T) {
	f := newFixture()
	tests := []struct {
		expr          ir.Expr
		free, reduced []string
	}{
		{
			expr:    irh.Index(irh.Add(irh.At(f.x, f.i), irh.At(f.x, f.i)), f.i),
			free:    []string{"i"},
			reduced: []string{},
		},
		{
			expr:    irh.Index(irh.Mul(irh.At(irh.Ref(f.a), f.i, f.r), irh.At(f.x, f.r)), f.i),
			free:    []string{"i"},
			reduced: []string{"r"},
		},
		{
			expr:    irh.Index(irh.Mul(irh.At(f.x, f.j), irh.At(f.x, f.i)), f.i, f.j),
			free:    []string{"j", "i"},
			reduced: []string{},
		},
		{
			expr:    irh.Index(irh.Mul(irh.At(f.x, f.r), irh.At(f.x, f.r))),
			free:    []string{},
			reduced: []string{"r"},
		},
		{
			expr:    irh.Add(irh.Float(1), irh.Ref(f.a)),
			free:    []string{},
			reduced: []string{},
		},
		{
			// Same name and role: the first occurrence is kept.
			expr: irh.Index(irh.Add(
				irh.At(f.x, f.i),
				irh.At(f.x, irh.Free("i", ir.SetDomain(f.points))),
			), f.i),
			free:    []string{"i"},
			reduced: []string{},
		},
	}
	for ti, test := range tests {
		free := irquery.FreeVars(test.expr)
		if diff := cmp.Diff(test.free, names(free)); diff != "" {
			t.Errorf("test %d: unexpected free variables in %s (-want +got):\n%s", ti, test.expr, diff)
		}
		reduced := irquery.ReductionVars(test.expr)
		if diff := cmp.Diff(test.reduced, names(reduced)); diff != "" {
			t.Errorf("test %d: unexpected reduction variables in %s (-want +got):\n%s", ti, test.expr, diff)
		}
		if again := irquery.FreeVars(test.expr); !cmp.Equal(names(again), names(free)) {
			t.Errorf("test %d: free variables changed from %v to %v", ti, names(free), names(again))
		}
		if got, want := irquery.ContainsFreeVar(test.expr), len(free) > 0; got != want {
			t.Errorf("test %d: ContainsFreeVar(%s)=%v but want %v", ti, test.expr, got, want)
		}
		if got, want := irquery.ContainsReductionVar(test.expr), len(reduced) > 0; got != want {
			t.Errorf("test %d: ContainsReductionVar(%s)=%v but want %v", ti, test.expr, got, want)
		}
		for _, fv := range free {
			for _, rv := range reduced {
				if fv.Key() == rv.Key() {
					t.Errorf("test %d: %s is both free and reduced", ti, fv.Name)
				}
			}
		}
	}
}

func TestIsFlattened(t *testing.T) {
	f := newFixture()
	y := irh.Var("y", irh.Tensor(ir.Float(), ir.SetDomain(f.points)))
	inner := irh.Index(irh.At(f.x, f.i), f.i)
	tests := []struct {
		stmt ir.Stmt
		want bool
	}{
		{
			stmt: irh.Assign(y, irh.Ref(y)),
			want: true,
		},
		{
			stmt: irh.Assign(y, irh.Index(irh.Add(irh.At(f.x, f.i), irh.At(f.x, f.i)), f.i)),
			want: true,
		},
		{
			stmt: irh.Assign(y, irh.Index(irh.Add(irh.At(inner, f.i), irh.At(f.x, f.i)), f.i)),
			want: false,
		},
		{
			stmt: irh.Block(
				irh.Assign(y, inner),
				irh.Assign(y, inner),
			),
			want: false,
		},
	}
	for ti, test := range tests {
		if got := irquery.IsFlattened(test.stmt); got != test.want {
			t.Errorf("test %d: IsFlattened=%v but want %v", ti, got, test.want)
		}
	}
}

func TestIsBlocked(t *testing.T) {
	f := newFixture()
	y := irh.Var("y", irh.Tensor(ir.Float(), ir.SetDomain(f.points)))
	tests := []struct {
		stmt ir.Stmt
		want bool
	}{
		{
			stmt: irh.Assign(y, irh.Index(irh.Add(irh.At(f.x, f.i), irh.At(f.x, f.i)), f.i)),
			want: false,
		},
		{
			stmt: irh.WriteField(irh.Ref(f.points), "v", irh.Index(irh.Mul(irh.Float(2), irh.At(f.v, f.i)), f.i)),
			want: true,
		},
		{
			stmt: irh.Assign(y, irh.Ref(y)),
			want: false,
		},
	}
	for ti, test := range tests {
		if got := irquery.IsBlocked(test.stmt); got != test.want {
			t.Errorf("test %d: IsBlocked=%v but want %v", ti, got, test.want)
		}
	}
}

func TestWalkStopsEarly(t *testing.T) {
	f := newFixture()
	expr := irh.Index(irh.Add(irh.At(f.x, f.i), irh.At(f.x, f.i)), f.i)
	var visited []string
	irquery.Walk(expr, func(node ir.Node) bool {
		visited = append(visited, node.(ir.Expr).String())
		_, isIndexed := node.(*ir.IndexedTensor)
		return !isIndexed
	})
	want := []string{
		"(i) (points.x(i) + points.x(i))",
		"(points.x(i) + points.x(i))",
		"points.x(i)",
	}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Errorf("unexpected visit (-want +got):\n%s", diff)
	}
}

func TestCallTree(t *testing.T) {
	h := irh.Func("h", nil, nil)
	g := irh.Func("g", nil, nil, irh.Call(nil, h))
	f := irh.Func("f", nil, nil, irh.Call(nil, g))
	main := irh.Func("main", nil, nil, irh.Call(nil, f), irh.Call(nil, g))
	rec := &ir.Func{Name: "rec"}
	rec.Body = irh.Call(nil, rec)
	tests := []struct {
		fn   *ir.Func
		want []string
	}{
		{fn: h, want: []string{"h"}},
		{fn: main, want: []string{"main", "f", "g", "h"}},
		{fn: g, want: []string{"g", "h"}},
		{fn: rec, want: []string{"rec"}},
	}
	for ti, test := range tests {
		var got []string
		for _, fn := range irquery.CallTree(test.fn) {
			got = append(got, fn.Name)
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("test %d: unexpected call tree (-want +got):\n%s", ti, diff)
		}
	}
}
