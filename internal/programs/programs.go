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

// Package programs is a catalogue of tensor IR programs with sample inputs.
//
// Programs are built directly as IR trees: they cover vector and blocked
// index expressions, reductions, assemblies over sets with endpoints,
// products with assembled matrices, and calls between functions.
package programs

import (
	"slices"

	"github.com/gx-org/setir/build/fmterr"
	"github.com/gx-org/setir/build/ir"
	irh "github.com/gx-org/setir/build/ir/irhelper"
	"github.com/gx-org/setir/build/storage"
	"github.com/gx-org/setir/interp"
)

// Program is a function with sample inputs.
type Program struct {
	Name        string
	Description string
	Main        *ir.Func
	// Bind binds sample inputs to the parameters of the main function.
	Bind func(env *interp.Env)
	// Outputs are the names of the buffers written by the program.
	Outputs []string
}

// Storage returns the default storage of the program.
func (p *Program) Storage() *storage.Storage {
	return storage.Default(p.Main)
}

var builders = []func() *Program{
	VectorAdd,
	Dot,
	BlockedScale,
	BlockedDot,
	BlockedAssign,
	LargeAdd,
	SpringForce,
	SpMV,
	Calls,
}

// All returns all the programs of the catalogue.
func All() []*Program {
	progs := make([]*Program, len(builders))
	for i, build := range builders {
		progs[i] = build()
	}
	return progs
}

// Find returns a program given its name.
func Find(name string) (*Program, error) {
	i := slices.IndexFunc(All(), func(p *Program) bool { return p.Name == name })
	if i < 0 {
		return nil, fmterr.Preconditionf("unknown program %q", name)
	}
	return All()[i], nil
}

// Names returns the names of all the programs.
func Names() []string {
	var names []string
	for _, p := range All() {
		names = append(names, p.Name)
	}
	return names
}

func pointSet(fields ...*ir.Field) *ir.Var {
	return irh.Var("points", irh.Set(irh.Element("Point", fields...)))
}

func floats(n int, f func(int) float64) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = f(i)
	}
	return vals
}

// VectorAdd adds a field of each element to itself.
func VectorAdd() *Program {
	points := pointSet(irh.Field("x", ir.Float()), irh.Field("y", ir.Float()))
	i := irh.Free("i", ir.SetDomain(points))
	x := irh.FieldOf(irh.Ref(points), "x")
	return &Program{
		Name:        "vector-add",
		Description: "y(i) = x(i) + x(i) over a set of points",
		Main: irh.Func("main", irh.Vars(points), nil,
			irh.WriteField(irh.Ref(points), "y", irh.Index(irh.Add(irh.At(x, i), irh.At(x, i)), i)),
		),
		Bind: func(env *interp.Env) {
			env.BindSet("points", &interp.HostSet{
				Size: 1,
				Fields: map[string][]float64{
					"x": {42},
					"y": {0},
				},
			})
		},
		Outputs: []string{"points.y"},
	}
}

// Dot computes the dot product of a field with itself.
func Dot() *Program {
	points := pointSet(irh.Field("x", ir.Float()))
	z := irh.Var("z", ir.Float())
	r := irh.Sum("r", ir.SetDomain(points))
	x := irh.FieldOf(irh.Ref(points), "x")
	return &Program{
		Name:        "dot",
		Description: "z = x(+r) * x(+r)",
		Main: irh.Func("main", irh.Vars(points), irh.Vars(z),
			irh.Assign(z, irh.Index(irh.Mul(irh.At(x, r), irh.At(x, r)))),
		),
		Bind: func(env *interp.Env) {
			env.BindSet("points", &interp.HostSet{
				Size:   3,
				Fields: map[string][]float64{"x": {1, 2, 3}},
			})
		},
		Outputs: []string{"z"},
	}
}

func blockedPoints(size int, fields ...string) *ir.Var {
	var fs []*ir.Field
	for _, name := range fields {
		fs = append(fs, irh.Field(name, irh.Tensor(ir.Float(), ir.RangeDomain(size))))
	}
	return pointSet(fs...)
}

// BlockedScale scales every component of a blocked field.
func BlockedScale() *Program {
	points := blockedPoints(3, "v")
	i := irh.Free("i", ir.SetDomain(points))
	v := irh.FieldOf(irh.Ref(points), "v")
	return &Program{
		Name:        "blocked-scale",
		Description: "v(i) = 2 * v(i) with 3-vector blocks",
		Main: irh.Func("main", irh.Vars(points), nil,
			irh.WriteField(irh.Ref(points), "v", irh.Index(irh.Mul(irh.Float(2), irh.At(v, i)), i)),
		),
		Bind: func(env *interp.Env) {
			env.BindSet("points", &interp.HostSet{
				Size:   2,
				Fields: map[string][]float64{"v": {1, 2, 3, 4, 5, 6}},
			})
		},
		Outputs: []string{"points.v"},
	}
}

// BlockedDot computes the dot product of a blocked field with itself.
func BlockedDot() *Program {
	points := blockedPoints(3, "v")
	z := irh.Var("z", ir.Float())
	r := irh.Sum("r", ir.SetDomain(points))
	v := irh.FieldOf(irh.Ref(points), "v")
	return &Program{
		Name:        "blocked-dot",
		Description: "z = v(+r) . v(+r) with 3-vector blocks",
		Main: irh.Func("main", irh.Vars(points), irh.Vars(z),
			irh.Assign(z, irh.Index(irh.Mul(irh.At(v, r), irh.At(v, r)))),
		),
		Bind: func(env *interp.Env) {
			env.BindSet("points", &interp.HostSet{
				Size:   3,
				Fields: map[string][]float64{"v": floats(9, func(i int) float64 { return float64(i + 1) })},
			})
		},
		Outputs: []string{"z"},
	}
}

// BlockedAssign scales a blocked field into a local tensor
// and assigns the local tensor to another field.
func BlockedAssign() *Program {
	points := blockedPoints(2, "a", "b")
	dom := ir.SetDomain(points)
	block := irh.Tensor(ir.Float(), ir.RangeDomain(2))
	y := irh.Var("y", irh.BlockTensor(block, dom))
	i := irh.Free("i", dom)
	a := irh.FieldOf(irh.Ref(points), "a")
	return &Program{
		Name:        "blocked-assign",
		Description: "y(i) = 2 * a(i); b(i) = y(i) with 2-vector blocks",
		Main: irh.Func("main", irh.Vars(points), nil,
			irh.Assign(y, irh.Index(irh.Mul(irh.At(a, i), irh.Float(2)), i)),
			irh.WriteField(irh.Ref(points), "b", irh.Index(irh.At(irh.Ref(y), i), i)),
		),
		Bind: func(env *interp.Env) {
			env.BindSet("points", &interp.HostSet{
				Size: 2,
				Fields: map[string][]float64{
					"a": {1, 2, 3, 4},
					"b": {0, 0, 0, 0},
				},
			})
		},
		Outputs: []string{"points.b"},
	}
}

// LargeSize is the number of elements of the large vector addition.
const LargeSize = 2557

// LargeAdd adds two fields of a large set.
func LargeAdd() *Program {
	points := pointSet(irh.Field("x", ir.Float()), irh.Field("w", ir.Float()), irh.Field("y", ir.Float()))
	i := irh.Free("i", ir.SetDomain(points))
	x := irh.FieldOf(irh.Ref(points), "x")
	w := irh.FieldOf(irh.Ref(points), "w")
	return &Program{
		Name:        "large-add",
		Description: "y(i) = x(i) + w(i) over 2557 points",
		Main: irh.Func("main", irh.Vars(points), nil,
			irh.WriteField(irh.Ref(points), "y", irh.Index(irh.Add(irh.At(x, i), irh.At(w, i)), i)),
		),
		Bind: func(env *interp.Env) {
			env.BindSet("points", &interp.HostSet{
				Size: LargeSize,
				Fields: map[string][]float64{
					"x": floats(LargeSize, func(i int) float64 { return float64(i) }),
					"w": floats(LargeSize, func(i int) float64 { return float64(2 * i) }),
					"y": make([]float64, LargeSize),
				},
			})
		},
		Outputs: []string{"points.y"},
	}
}

// springChain binds a chain of three points connected by two springs.
func springChain(x []float64, k []float64) func(env *interp.Env) {
	return func(env *interp.Env) {
		env.BindSet("points", &interp.HostSet{
			Size: 3,
			Fields: map[string][]float64{
				"x": x,
				"y": make([]float64, 3),
			},
		})
		env.BindSet("springs", &interp.HostSet{
			Size:      2,
			Fields:    map[string][]float64{"k": k},
			Endpoints: []int32{0, 1, 1, 2},
		})
	}
}

type springSystem struct {
	point   *ir.ElementType
	spring  *ir.ElementType
	points  *ir.Var
	springs *ir.Var
	s, p    *ir.Var
}

func newSpringSystem() *springSystem {
	sys := &springSystem{
		point:  irh.Element("Point", irh.Field("x", ir.Float()), irh.Field("y", ir.Float())),
		spring: irh.Element("Spring", irh.Field("k", ir.Float())),
	}
	sys.points = irh.Var("points", irh.Set(sys.point))
	sys.springs = irh.Var("springs", irh.Set(sys.spring, sys.points, sys.points))
	sys.s = irh.Var("s", sys.spring)
	sys.p = irh.Var("p", irh.Tuple(sys.point, 2))
	return sys
}

// SpringForce assembles the forces of springs on their endpoints.
func SpringForce() *Program {
	sys := newSpringSystem()
	dom := ir.SetDomain(sys.points)
	kernelF := irh.Var("F", irh.Tensor(ir.Float(), dom))
	d := irh.Var("d", ir.Float())
	p0, p1 := irh.Endpoint(irh.Ref(sys.p), 0), irh.Endpoint(irh.Ref(sys.p), 1)
	force := irh.Mul(irh.FieldOf(irh.Ref(sys.s), "k"), irh.Ref(d))
	kernel := irh.Func("force", irh.Vars(sys.s, sys.p), irh.Vars(kernelF),
		irh.Assign(d, irh.Sub(irh.FieldOf(p1, "x"), irh.FieldOf(p0, "x"))),
		irh.Write(irh.Ref(kernelF), force, p0),
		irh.Write(irh.Ref(kernelF), irh.Neg(force), p1),
	)
	f := irh.Var("F", irh.Tensor(ir.Float(), dom))
	i := irh.Free("i", dom)
	return &Program{
		Name:        "spring-force",
		Description: "F = map force to springs reduce +; y(i) = F(i)",
		Main: irh.Func("main", irh.Vars(sys.points, sys.springs), irh.Vars(f),
			irh.Map(irh.Vars(f), kernel, irh.Ref(sys.springs), irh.Ref(sys.points)),
			irh.WriteField(irh.Ref(sys.points), "y", irh.Index(irh.At(irh.Ref(f), i), i)),
		),
		Bind:    springChain([]float64{0, 1, 3}, []float64{1, 2}),
		Outputs: []string{"F", "points.y"},
	}
}

// SpMV assembles the stiffness matrix of springs and multiplies it
// with a field of the points.
func SpMV() *Program {
	sys := newSpringSystem()
	dom := ir.SetDomain(sys.points)
	kernelK := irh.Var("K", irh.Tensor(ir.Float(), dom, dom))
	p0, p1 := irh.Endpoint(irh.Ref(sys.p), 0), irh.Endpoint(irh.Ref(sys.p), 1)
	k := irh.FieldOf(irh.Ref(sys.s), "k")
	kernel := irh.Func("stiffness", irh.Vars(sys.s, sys.p), irh.Vars(kernelK),
		irh.Write(irh.Ref(kernelK), k, p0, p0),
		irh.Write(irh.Ref(kernelK), irh.Neg(k), p0, p1),
		irh.Write(irh.Ref(kernelK), irh.Neg(k), p1, p0),
		irh.Write(irh.Ref(kernelK), k, p1, p1),
	)
	matK := irh.Var("K", irh.Tensor(ir.Float(), dom, dom))
	i := irh.Free("i", dom)
	j := irh.Sum("j", dom)
	x := irh.FieldOf(irh.Ref(sys.points), "x")
	return &Program{
		Name:        "spmv",
		Description: "K = map stiffness to springs reduce +; y(i) = K(i,+j) * x(j)",
		Main: irh.Func("main", irh.Vars(sys.points, sys.springs), nil,
			irh.Map(irh.Vars(matK), kernel, irh.Ref(sys.springs), irh.Ref(sys.points)),
			irh.WriteField(irh.Ref(sys.points), "y", irh.Index(irh.Mul(irh.At(irh.Ref(matK), i, j), irh.At(x, j)), i)),
		),
		Bind:    springChain([]float64{1, 2, 4}, []float64{1, 1}),
		Outputs: []string{"points.y"},
	}
}

// Calls calls a function scaling a field and sums the result.
func Calls() *Program {
	pts := pointSet(irh.Field("x", ir.Float()), irh.Field("y", ir.Float()))
	pts.Name = "pts"
	i := irh.Free("i", ir.SetDomain(pts))
	scale := irh.Func("scale", irh.Vars(pts), nil,
		irh.WriteField(irh.Ref(pts), "y", irh.Index(irh.Mul(irh.Float(2), irh.At(irh.FieldOf(irh.Ref(pts), "x"), i)), i)),
	)
	points := irh.Var("points", pts.Typ)
	z := irh.Var("z", ir.Float())
	r := irh.Sum("r", ir.SetDomain(points))
	return &Program{
		Name:        "calls",
		Description: "scale(points); z = y(+r)",
		Main: irh.Func("main", irh.Vars(points), irh.Vars(z),
			irh.Call(nil, scale, irh.Ref(points)),
			irh.Assign(z, irh.Index(irh.At(irh.FieldOf(irh.Ref(points), "y"), r))),
		),
		Bind: func(env *interp.Env) {
			env.BindSet("points", &interp.HostSet{
				Size: 3,
				Fields: map[string][]float64{
					"x": {1, 2, 3},
					"y": make([]float64, 3),
				},
			})
		},
		Outputs: []string{"points.y", "z"},
	}
}
