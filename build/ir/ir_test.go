// Copyright 2024 Google LLC
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

package ir_test

import (
	"testing"

	"github.com/gx-org/setir/build/ir"
	irh "github.com/gx-org/setir/build/ir/irhelper"
)

func pointSet() (*ir.Var, *ir.Var) {
	point := irh.Element("Point",
		irh.Field("x", ir.Float()),
		irh.Field("v", irh.Tensor(ir.Float(), ir.RangeDomain(3))),
	)
	points := irh.Var("points", irh.Set(point))
	spring := irh.Element("Spring", irh.Field("k", ir.Float()))
	springs := irh.Var("springs", irh.Set(spring, points, points))
	return points, springs
}

func TestExprType(t *testing.T) {
	points, springs := pointSet()
	i := irh.Free("i", ir.SetDomain(points))
	j := irh.Free("j", ir.SetDomain(points))
	r := irh.Sum("r", ir.SetDomain(points))
	x := irh.FieldOf(irh.Ref(points), "x")
	v := irh.FieldOf(irh.Ref(points), "v")
	matrix := irh.Var("A", irh.Tensor(ir.Float(), ir.SetDomain(points), ir.SetDomain(points)))
	tests := []struct {
		expr ir.Expr
		want string
	}{
		{
			expr: x,
			want: "tensor[points](float)",
		},
		{
			expr: v,
			want: "tensor[points](tensor[3](float))",
		},
		{
			expr: irh.At(x, i),
			want: "float",
		},
		{
			expr: irh.At(v, i),
			want: "tensor[3](float)",
		},
		{
			expr: irh.Index(irh.Add(irh.At(x, i), irh.At(x, i)), i),
			want: "tensor[points](float)",
		},
		{
			expr: irh.Index(irh.Mul(irh.At(irh.Ref(matrix), i, r), irh.At(x, r)), i),
			want: "tensor[points](float)",
		},
		{
			expr: irh.Index(irh.Mul(irh.At(x, r), irh.At(x, r))),
			want: "float",
		},
		{
			expr: irh.Index(irh.Mul(irh.At(x, i), irh.At(x, j)), i, j),
			want: "tensor[points,points](float)",
		},
		{
			expr: irh.Index(irh.Mul(irh.Float(2), irh.At(v, i)), i),
			want: "tensor[points](tensor[3](float))",
		},
		{
			expr: irh.Add(irh.Int(1), irh.Float(2)),
			want: "float",
		},
		{
			expr: irh.Endpoint(irh.Ref(irh.Var("p", irh.Tuple(points.Typ.(*ir.SetType).Element, 2))), 1),
			want: "Point",
		},
		{
			expr: &ir.SetElement{Set: irh.Ref(springs), Index: irh.Int(0)},
			want: "Spring",
		},
		{
			expr: &ir.Load{Buffer: irh.Buffer("points.x", x.Type()), Index: irh.Int(0)},
			want: "float",
		},
	}
	for ti, test := range tests {
		got := test.expr.Type()
		if got == nil {
			t.Errorf("test %d: %s has no type", ti, test.expr)
			continue
		}
		if got.String() != test.want {
			t.Errorf("test %d: %s has type %s but want %s", ti, test.expr, got, test.want)
		}
	}
}

func TestExprString(t *testing.T) {
	points, _ := pointSet()
	i := irh.Free("i", ir.SetDomain(points))
	r := irh.Sum("r", ir.SetDomain(points))
	x := irh.FieldOf(irh.Ref(points), "x")
	tests := []struct {
		expr ir.Expr
		want string
	}{
		{
			expr: irh.Index(irh.Add(irh.At(x, i), irh.At(x, i)), i),
			want: "(i) (points.x(i) + points.x(i))",
		},
		{
			expr: irh.Index(irh.Mul(irh.At(x, r), irh.Neg(irh.At(x, r)))),
			want: "() (points.x(+r) * -points.x(+r))",
		},
		{
			expr: irh.Read(x, irh.Int(2)),
			want: "points.x[2]",
		},
		{
			expr: irh.Neg(irh.Neg(irh.Read(x, irh.Int(2)))),
			want: "-(-points.x[2])",
		},
		{
			expr: irh.Neg(irh.Int(-1)),
			want: "-(-1)",
		},
		{
			expr: irh.Neg(irh.Float(-1.5)),
			want: "-(-1.5)",
		},
		{
			expr: irh.Neg(irh.Int(1)),
			want: "-1",
		},
	}
	for ti, test := range tests {
		if got := test.expr.String(); got != test.want {
			t.Errorf("test %d: got %q but want %q", ti, got, test.want)
		}
	}
}

func TestNewBlock(t *testing.T) {
	a := irh.Var("a", ir.Float())
	assign := irh.Assign(a, irh.Float(1))
	tests := []struct {
		stmts []ir.Stmt
		want  int
	}{
		{stmts: nil, want: 0},
		{stmts: []ir.Stmt{&ir.Pass{}}, want: 0},
		{stmts: []ir.Stmt{assign}, want: 1},
		{stmts: []ir.Stmt{irh.Block(assign, assign), &ir.Pass{}, assign}, want: 3},
	}
	for ti, test := range tests {
		got := ir.NewBlock(test.stmts...)
		n := 0
		switch gotT := got.(type) {
		case *ir.Pass:
		case *ir.Block:
			n = len(gotT.Stmts)
		default:
			n = 1
		}
		if n != test.want {
			t.Errorf("test %d: got %d statements but want %d", ti, n, test.want)
		}
	}
}

func TestFuncString(t *testing.T) {
	points, _ := pointSet()
	z := irh.Var("z", ir.Float())
	fn := irh.Func("dot", irh.Vars(points), irh.Vars(z))
	if got, want := fn.String(), "func dot(points set{Point}) -> (z float)"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
}
