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

package sirstring_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/setir/build/ir"
	irh "github.com/gx-org/setir/build/ir/irhelper"
	"github.com/gx-org/setir/build/ir/sirstring"
)

func TestPrint(t *testing.T) {
	point := irh.Element("Point", irh.Field("x", ir.Float()))
	points := irh.Var("points", irh.Set(point))
	xType := irh.Tensor(ir.Float(), ir.SetDomain(points))
	x := irh.Buffer("points.x", xType)
	y := irh.Buffer("points.y", xType)
	z := irh.Buffer("z", ir.Float())
	i := irh.LoopVar("i")
	b := irh.LoopVar("b")
	callee := irh.Func("f", nil, nil)
	tests := []struct {
		node ir.Node
		want string
	}{
		{
			node: irh.Add(&ir.Load{Buffer: x, Index: i}, irh.Float(2.5)),
			want: "(points.x[i] + 2.5)",
		},
		{
			node: &ir.Foreach{
				Var:    i,
				Domain: ir.SetDomain(points),
				Body: &ir.Store{
					Buffer: y,
					Index:  i,
					Value:  irh.Add(&ir.Load{Buffer: x, Index: i}, &ir.Load{Buffer: x, Index: i}),
				},
			},
			want: `
foreach i in points:
  points.y[i] = (points.x[i] + points.x[i])
`,
		},
		{
			node: irh.Block(
				&ir.Store{Buffer: z, Index: irh.Int(0), Value: irh.Float(0)},
				&ir.Foreach{
					Var:    i,
					Domain: ir.SetDomain(points),
					Body: &ir.Foreach{
						Var:    b,
						Domain: ir.RangeDomain(3),
						Body: &ir.StoreMatrix{
							Buffer: z,
							Index:  irh.Int(0),
							Value:  irh.Neg(irh.Mul(&ir.Load{Buffer: x, Index: irh.Add(irh.Mul(i, irh.Int(3)), b)}, irh.Int(2))),
							Op:     ir.Sum,
						},
					},
				},
				&ir.Pass{},
				irh.Call(nil, callee, i, irh.Int(1)),
			),
			want: `
z[0] = 0
foreach i in points:
  foreach b in 0..3:
    z[0] += -(points.x[((i * 3) + b)] * 2)
pass
call f(i, 1)
`,
		},
		{
			node: irh.Func("main", irh.Vars(points), nil, &ir.Pass{}),
			want: `
func main(points set{Point}):
  pass
`,
		},
	}
	for ti, test := range tests {
		got := sirstring.String(test.node)
		want := strings.TrimPrefix(test.want, "\n")
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("test %d: unexpected output (-want +got):\n%s", ti, diff)
		}
		var b strings.Builder
		if err := sirstring.Print(&b, test.node); err != nil {
			t.Errorf("test %d: %+v", ti, err)
		}
		if b.String() != got {
			t.Errorf("test %d: Print and String differ", ti)
		}
	}
}
