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

// Package irhelper provides helper functions to build IR programmatically.
package irhelper

import (
	"github.com/gx-org/setir/build/ir"
)

// Var returns a new variable given a name and a type.
func Var(name string, typ ir.Type) *ir.Var {
	return &ir.Var{Name: name, Typ: typ}
}

// Vars returns a list of variables.
func Vars(vars ...*ir.Var) []*ir.Var {
	return vars
}

// Ref returns an expression referencing a variable.
func Ref(v *ir.Var) *ir.VarExpr {
	return &ir.VarExpr{V: v}
}

// Field returns a field given a name and a type.
func Field(name string, typ ir.Type) *ir.Field {
	return &ir.Field{Name: name, Typ: typ}
}

// Element returns an element type.
func Element(name string, fields ...*ir.Field) *ir.ElementType {
	return &ir.ElementType{Name: name, Fields: fields}
}

// Set returns the type of a set of elements.
// The endpoints are the sets related by each element.
func Set(elem *ir.ElementType, endpoints ...*ir.Var) *ir.SetType {
	return &ir.SetType{Element: elem, Endpoints: endpoints}
}

// Tuple returns a tuple type.
func Tuple(elem *ir.ElementType, size int) *ir.TupleType {
	return &ir.TupleType{Element: elem, Size: size}
}

// Tensor returns a tensor of scalars given its dimensions.
func Tensor(comp *ir.ScalarType, dims ...ir.IndexDomain) *ir.TensorType {
	return &ir.TensorType{Component: comp, Dims: dims}
}

// BlockTensor returns a tensor of blocks given its dimensions.
func BlockTensor(block *ir.TensorType, dims ...ir.IndexDomain) *ir.TensorType {
	return &ir.TensorType{Component: block.Component, Dims: dims, Block: block}
}

// Free returns a free index variable.
func Free(name string, dom ir.IndexDomain) *ir.IndexVar {
	return ir.NewFreeVar(name, dom)
}

// Sum returns a reduction variable summing over its domain.
func Sum(name string, dom ir.IndexDomain) *ir.IndexVar {
	return ir.NewReductionVar(name, dom, ir.Sum)
}

// At returns a tensor indexed by index variables.
func At(tensor ir.Expr, ivs ...*ir.IndexVar) *ir.IndexedTensor {
	return &ir.IndexedTensor{Tensor: tensor, IndexVars: ivs}
}

// Index returns an index expression given its result variables.
func Index(value ir.Expr, results ...*ir.IndexVar) *ir.IndexExpr {
	return &ir.IndexExpr{ResultVars: results, Value: value}
}

// FieldOf returns an expression reading a field.
func FieldOf(elem ir.Expr, name string) *ir.FieldRead {
	return &ir.FieldRead{Elem: elem, Field: name}
}

// Endpoint returns an expression reading an element of a tuple.
func Endpoint(tuple ir.Expr, i int) *ir.TupleRead {
	return &ir.TupleRead{Tuple: tuple, Index: i}
}

// Read returns an expression reading a tensor at explicit indices.
func Read(tensor ir.Expr, indices ...ir.Expr) *ir.TensorRead {
	return &ir.TensorRead{Tensor: tensor, Indices: indices}
}

// Int returns an integer literal.
func Int(val int) *ir.IntLiteral {
	return &ir.IntLiteral{Val: val}
}

// Float returns a floating point literal.
func Float(val float64) *ir.FloatLiteral {
	return &ir.FloatLiteral{Val: val}
}

func binary(op ir.BinaryOp, x, y ir.Expr) *ir.Binary {
	return &ir.Binary{Op: op, X: x, Y: y}
}

// Add returns x+y.
func Add(x, y ir.Expr) *ir.Binary { return binary(ir.Add, x, y) }

// Sub returns x-y.
func Sub(x, y ir.Expr) *ir.Binary { return binary(ir.Sub, x, y) }

// Mul returns x*y.
func Mul(x, y ir.Expr) *ir.Binary { return binary(ir.Mul, x, y) }

// Div returns x/y.
func Div(x, y ir.Expr) *ir.Binary { return binary(ir.Div, x, y) }

// Neg returns -x.
func Neg(x ir.Expr) *ir.Neg { return &ir.Neg{X: x} }

// Assign returns a statement assigning a value to a variable.
func Assign(v *ir.Var, value ir.Expr) *ir.AssignStmt {
	return &ir.AssignStmt{Var: v, Value: value}
}

// WriteField returns a statement writing a field.
func WriteField(elem ir.Expr, name string, value ir.Expr) *ir.FieldWrite {
	return &ir.FieldWrite{Elem: elem, Field: name, Value: value}
}

// Write returns a statement writing a tensor at explicit indices.
func Write(tensor ir.Expr, value ir.Expr, indices ...ir.Expr) *ir.TensorWrite {
	return &ir.TensorWrite{Tensor: tensor, Indices: indices, Value: value}
}

// Block returns a block of statements.
func Block(stmts ...ir.Stmt) *ir.Block {
	return &ir.Block{Stmts: stmts}
}

// Call returns a statement calling a function.
func Call(results []*ir.Var, callee *ir.Func, args ...ir.Expr) *ir.CallStmt {
	return &ir.CallStmt{Results: results, Callee: callee, Args: args}
}

// Map returns a statement applying a kernel on all the elements of a set
// and summing its results. neighbors can be nil.
func Map(results []*ir.Var, kernel *ir.Func, target, neighbors ir.Expr) *ir.MapStmt {
	return &ir.MapStmt{
		Results:   results,
		Kernel:    kernel,
		Target:    target,
		Neighbors: neighbors,
		Op:        ir.Sum,
	}
}

// Func returns a function.
func Func(name string, args, results []*ir.Var, body ...ir.Stmt) *ir.Func {
	return &ir.Func{
		Name:    name,
		Args:    args,
		Results: results,
		Body:    Block(body...),
	}
}

// Buffer returns a buffer variable.
func Buffer(name string, typ ir.Type) *ir.Variable {
	return &ir.Variable{Name: name, Typ: typ}
}

// LoopVar returns a loop variable.
func LoopVar(name string) *ir.Variable {
	return &ir.Variable{Name: name}
}
