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

package ir

import (
	"strconv"
)

// ----------------------------------------------------------------------------
// Set IR.
//
// Set IR nodes are the output of the lowering passes: loops over sets and
// ranges, and accesses to flat buffers. Literals are shared with the tensor IR.
type (
	// IntLiteral is an integer constant.
	IntLiteral struct {
		Val int
	}

	// FloatLiteral is a floating point constant.
	FloatLiteral struct {
		Val float64
	}

	// Variable is a named value: a loop variable or a buffer.
	// Buffers of set fields are named <set>.<field>.
	Variable struct {
		Name string
		Typ  Type
	}

	// Load reads a buffer at a flat offset.
	Load struct {
		Buffer *Variable
		Index  Expr
	}

	// Foreach loops over the elements of a set or a range.
	Foreach struct {
		Var    *Variable
		Domain IndexDomain
		Body   Stmt
	}

	// Store writes a value in a buffer at a flat offset.
	Store struct {
		Buffer *Variable
		Index  Expr
		Value  Expr
	}

	// StoreMatrix combines a value into a buffer at a flat offset
	// using a reduction operator.
	StoreMatrix struct {
		Buffer *Variable
		Index  Expr
		Value  Expr
		Op     ReductionOp
	}
)

var (
	_ Expr = (*IntLiteral)(nil)
	_ Expr = (*FloatLiteral)(nil)
	_ Expr = (*Variable)(nil)
	_ Expr = (*Load)(nil)
	_ Stmt = (*Foreach)(nil)
	_ Stmt = (*Store)(nil)
	_ Stmt = (*StoreMatrix)(nil)
)

func (*IntLiteral) node()     {}
func (*IntLiteral) exprNode() {}

// Type of the literal.
func (*IntLiteral) Type() Type { return Int() }

func (s *IntLiteral) String() string { return strconv.Itoa(s.Val) }

func (*FloatLiteral) node()     {}
func (*FloatLiteral) exprNode() {}

// Type of the literal.
func (*FloatLiteral) Type() Type { return Float() }

func (s *FloatLiteral) String() string { return strconv.FormatFloat(s.Val, 'g', -1, 64) }

func (*Variable) node()     {}
func (*Variable) exprNode() {}

// Type of the variable. Loop variables without a type are integers.
func (s *Variable) Type() Type {
	if s.Typ == nil {
		return Int()
	}
	return s.Typ
}

func (s *Variable) String() string { return s.Name }

func (*Load) node()     {}
func (*Load) exprNode() {}

// Type of a component of the buffer.
func (s *Load) Type() Type {
	if comp := ComponentType(s.Buffer.Type()); comp != nil {
		return comp
	}
	return Float()
}

func (s *Load) String() string { return s.Buffer.Name + "[" + s.Index.String() + "]" }

func (*Foreach) node()     {}
func (*Foreach) stmtNode() {}

func (*Store) node()     {}
func (*Store) stmtNode() {}

func (*StoreMatrix) node()     {}
func (*StoreMatrix) stmtNode() {}
