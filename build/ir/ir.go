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

// Package ir is the tensor Intermediate Representation (IR) tree.
//
// The tree is produced by a front end from tensor index notation, that is
// index expressions over tensors indexed by sets of a graph. The lowering
// passes in [github.com/gx-org/setir/build/lower] rewrite the tree until it
// only contains Set IR nodes: loops over sets, loads, and stores.
//
// Nodes are immutable once built. Sub-trees are shared between trees
// and passes always build new nodes instead of modifying existing ones.
package ir

import (
	"fmt"
	"strings"

	"github.com/gx-org/setir/base/stringseq"
)

// ----------------------------------------------------------------------------
// Types of node in the tree.
type (
	// Node in the tree.
	Node interface {
		// node marks a structure as a node structure.
		// It prevents external implementations of the interface.
		node()
	}

	// Expr is an expression computing a value.
	Expr interface {
		Node
		exprNode()

		// Type of the value computed by the expression.
		Type() Type

		// String representation of the expression.
		String() string
	}

	// Stmt is a statement.
	Stmt interface {
		Node
		stmtNode()
	}
)

// ----------------------------------------------------------------------------
// Variables and functions.
type (
	// Var is a variable of a function: an argument, a result, or a local.
	// Variables are identified by their pointer.
	Var struct {
		Name string
		Typ  Type
	}

	// Func is a function.
	Func struct {
		Name    string
		Args    []*Var
		Results []*Var
		Body    Stmt
	}
)

func (*Var) node() {}

// Type of the variable.
func (v *Var) Type() Type { return v.Typ }

// String representation of the variable.
func (v *Var) String() string { return v.Name }

func (*Func) node() {}

// WithBody returns a copy of the function with a different body.
func (f *Func) WithBody(body Stmt) *Func {
	return &Func{
		Name:    f.Name,
		Args:    f.Args,
		Results: f.Results,
		Body:    body,
	}
}

func varList(vars []*Var) string {
	ss := make([]string, len(vars))
	for i, v := range vars {
		ss[i] = fmt.Sprintf("%s %s", v.Name, v.Typ)
	}
	return strings.Join(ss, ", ")
}

// String returns the signature of the function.
func (f *Func) String() string {
	s := fmt.Sprintf("func %s(%s)", f.Name, varList(f.Args))
	if len(f.Results) > 0 {
		s += fmt.Sprintf(" -> (%s)", varList(f.Results))
	}
	return s
}

// ----------------------------------------------------------------------------
// Tensor IR expressions.
type (
	// VarExpr references a variable.
	VarExpr struct {
		V *Var
	}

	// FieldRead reads a field of an element or of all the elements of a set.
	// Reading a field of a set returns a tensor indexed by the set.
	FieldRead struct {
		Elem  Expr
		Field string
	}

	// TupleRead reads an element of a tuple.
	TupleRead struct {
		Tuple Expr
		Index int
	}

	// SetElement is the element of a set at a given position.
	SetElement struct {
		Set   Expr
		Index Expr
	}

	// IndexedTensor accesses a tensor with index variables, for example x(i).
	IndexedTensor struct {
		Tensor    Expr
		IndexVars []*IndexVar
	}

	// IndexExpr builds a tensor indexed by its result variables
	// from a combination of indexed tensors, for example (i) x(i)+y(i).
	// It is the only construct introducing reduction variables.
	IndexExpr struct {
		ResultVars []*IndexVar
		Value      Expr
	}

	// TensorRead reads a component of a tensor at explicit indices.
	// Indices of blocked tensors are followed by the indices within the block.
	TensorRead struct {
		Tensor  Expr
		Indices []Expr
	}

	// Neg negates a value.
	Neg struct {
		X Expr
	}

	// BinaryOp is an arithmetic operator.
	BinaryOp int

	// Binary is a binary arithmetic operation.
	Binary struct {
		Op   BinaryOp
		X, Y Expr
	}
)

// Arithmetic operators.
const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
)

var (
	_ Expr = (*VarExpr)(nil)
	_ Expr = (*FieldRead)(nil)
	_ Expr = (*TupleRead)(nil)
	_ Expr = (*SetElement)(nil)
	_ Expr = (*IndexedTensor)(nil)
	_ Expr = (*IndexExpr)(nil)
	_ Expr = (*TensorRead)(nil)
	_ Expr = (*Neg)(nil)
	_ Expr = (*Binary)(nil)
)

func (*VarExpr) node()     {}
func (*VarExpr) exprNode() {}

// Type of the variable.
func (s *VarExpr) Type() Type { return s.V.Typ }

// String representation of the expression.
func (s *VarExpr) String() string { return s.V.Name }

func (*FieldRead) node()     {}
func (*FieldRead) exprNode() {}

// Type of the field. If the field is read from a set, returns a tensor
// indexed by the set.
func (s *FieldRead) Type() Type {
	switch elemT := s.Elem.Type().(type) {
	case *SetType:
		field := elemT.Element.FieldByName(s.Field)
		set, ok := s.Elem.(*VarExpr)
		if field == nil || !ok {
			return nil
		}
		return FieldTensorType(set.V, field.Typ)
	case *ElementType:
		field := elemT.FieldByName(s.Field)
		if field == nil {
			return nil
		}
		return field.Typ
	}
	return nil
}

// String representation of the expression.
func (s *FieldRead) String() string { return s.Elem.String() + "." + s.Field }

func (*TupleRead) node()     {}
func (*TupleRead) exprNode() {}

// Type of the tuple element.
func (s *TupleRead) Type() Type {
	tuple, ok := s.Tuple.Type().(*TupleType)
	if !ok {
		return nil
	}
	return tuple.Element
}

// String representation of the expression.
func (s *TupleRead) String() string { return fmt.Sprintf("%s(%d)", s.Tuple, s.Index) }

func (*SetElement) node()     {}
func (*SetElement) exprNode() {}

// Type of the element.
func (s *SetElement) Type() Type {
	set, ok := s.Set.Type().(*SetType)
	if !ok {
		return nil
	}
	return set.Element
}

// String representation of the expression.
func (s *SetElement) String() string { return fmt.Sprintf("%s{%s}", s.Set, s.Index) }

func (*IndexedTensor) node()     {}
func (*IndexedTensor) exprNode() {}

// Type of one access: the block type of the tensor.
func (s *IndexedTensor) Type() Type {
	tensor, ok := s.Tensor.Type().(*TensorType)
	if !ok {
		return s.Tensor.Type()
	}
	return tensor.BlockType()
}

// String representation of the expression.
func (s *IndexedTensor) String() string {
	return fmt.Sprintf("%s(%s)", s.Tensor, stringseq.JoinStringers(s.IndexVars, ","))
}

func (*IndexExpr) node()     {}
func (*IndexExpr) exprNode() {}

// Type of the tensor built by the expression.
func (s *IndexExpr) Type() Type {
	valType := s.Value.Type()
	if len(s.ResultVars) == 0 && IsScalar(valType) {
		return ComponentType(valType)
	}
	tensor := &TensorType{Component: ComponentType(valType)}
	for _, rv := range s.ResultVars {
		tensor.Dims = append(tensor.Dims, rv.Domain)
	}
	if valT, ok := valType.(*TensorType); ok && !IsScalar(valT) {
		tensor.Block = valT
	}
	return tensor
}

// String representation of the expression.
func (s *IndexExpr) String() string {
	return fmt.Sprintf("(%s) %s", stringseq.JoinStringers(s.ResultVars, ","), s.Value)
}

func (*TensorRead) node()     {}
func (*TensorRead) exprNode() {}

// Type of a component of the tensor.
func (s *TensorRead) Type() Type { return ComponentType(s.Tensor.Type()) }

// String representation of the expression.
func (s *TensorRead) String() string { return s.Tensor.String() + indicesString(s.Indices) }

func (*Neg) node()     {}
func (*Neg) exprNode() {}

// Type of the result.
func (s *Neg) Type() Type { return s.X.Type() }

// String representation of the expression.
// The operand is in parentheses if it starts with a minus sign.
func (s *Neg) String() string {
	x := s.X.String()
	switch xT := s.X.(type) {
	case *Neg:
		x = "(" + x + ")"
	case *IntLiteral:
		if xT.Val < 0 {
			x = "(" + x + ")"
		}
	case *FloatLiteral:
		if xT.Val < 0 {
			x = "(" + x + ")"
		}
	}
	return "-" + x
}

// String returns the symbol of the operator.
func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	}
	return "?"
}

func (*Binary) node()     {}
func (*Binary) exprNode() {}

// Type of the result. A scalar operand is broadcast to the other operand.
// Integers are promoted to floats.
func (s *Binary) Type() Type {
	xt, yt := s.X.Type(), s.Y.Type()
	if IsScalar(xt) && !IsScalar(yt) {
		return yt
	}
	if !IsScalar(xt) {
		return xt
	}
	if xs := ComponentType(xt); xs != nil && xs.IsInt() {
		if ys := ComponentType(yt); ys != nil && !ys.IsInt() {
			return yt
		}
	}
	return xt
}

// String representation of the expression.
func (s *Binary) String() string { return fmt.Sprintf("(%s %s %s)", s.X, s.Op, s.Y) }

func indicesString(indices []Expr) string {
	return "[" + stringseq.JoinStringers(indices, ",") + "]"
}

// ----------------------------------------------------------------------------
// Tensor IR statements.
type (
	// AssignStmt assigns a value to a variable.
	AssignStmt struct {
		Var   *Var
		Value Expr
	}

	// FieldWrite writes a field of an element or of all the elements of a set.
	FieldWrite struct {
		Elem  Expr
		Field string
		Value Expr
	}

	// TensorWrite writes a component of a tensor at explicit indices.
	// If Op is not NoReduction, the value is combined with the current
	// value of the component instead of replacing it.
	TensorWrite struct {
		Tensor  Expr
		Indices []Expr
		Value   Expr
		Op      ReductionOp
	}

	// CallStmt calls a function and assigns its results.
	CallStmt struct {
		Results []*Var
		Callee  *Func
		Args    []Expr
	}

	// MapStmt assembles global tensors by applying a kernel to every element
	// of a target set. The kernel takes the element and, if Neighbors is
	// set, the tuple of its endpoints. Its results are combined into the
	// global results with the reduction operator.
	MapStmt struct {
		Results   []*Var
		Kernel    *Func
		Target    Expr
		Neighbors Expr
		Op        ReductionOp
	}

	// Block is a sequence of statements.
	Block struct {
		Stmts []Stmt
	}

	// Pass is a statement doing nothing.
	Pass struct{}
)

var (
	_ Stmt = (*AssignStmt)(nil)
	_ Stmt = (*FieldWrite)(nil)
	_ Stmt = (*TensorWrite)(nil)
	_ Stmt = (*CallStmt)(nil)
	_ Stmt = (*MapStmt)(nil)
	_ Stmt = (*Block)(nil)
	_ Stmt = (*Pass)(nil)
)

func (*AssignStmt) node()     {}
func (*AssignStmt) stmtNode() {}

func (*FieldWrite) node()     {}
func (*FieldWrite) stmtNode() {}

func (*TensorWrite) node()     {}
func (*TensorWrite) stmtNode() {}

// Accumulates returns true if the write combines values instead of overwriting.
func (s *TensorWrite) Accumulates() bool { return s.Op != NoReduction }

func (*CallStmt) node()     {}
func (*CallStmt) stmtNode() {}

func (*MapStmt) node()     {}
func (*MapStmt) stmtNode() {}

func (*Block) node()     {}
func (*Block) stmtNode() {}

// NewBlock returns a block from a list of statements.
// Nested blocks are inlined and a single statement is returned as is.
func NewBlock(stmts ...Stmt) Stmt {
	var list []Stmt
	for _, stmt := range stmts {
		switch stmtT := stmt.(type) {
		case nil:
		case *Block:
			list = append(list, stmtT.Stmts...)
		case *Pass:
		default:
			list = append(list, stmt)
		}
	}
	switch len(list) {
	case 0:
		return &Pass{}
	case 1:
		return list[0]
	}
	return &Block{Stmts: list}
}

func (*Pass) node()     {}
func (*Pass) stmtNode() {}
