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

package lower

import (
	"github.com/gx-org/setir/build/fmterr"
	"github.com/gx-org/setir/build/ir"
	"github.com/gx-org/setir/build/storage"
)

// LowerTensorAccesses replaces reads of tensors with loads and writes to
// tensors with stores. Offsets in buffers are computed from the storage
// of each tensor. Writes combining values are lowered to StoreMatrix.
//
// Scalar variables are buffers with a single component.
func LowerTensorAccesses(fn *ir.Func, st *storage.Storage) (*ir.Func, error) {
	l := newLowerer(fn, st)
	body, err := mapStmt(fn.Body, l.accessStmt)
	if err != nil {
		return nil, err
	}
	return fn.WithBody(body), nil
}

// buffer returns the buffer storing the components of a tensor.
func buffer(tensor ir.Expr) (*ir.Variable, error) {
	key, ok := storage.KeyOf(tensor)
	if !ok {
		return nil, fmterr.Unsupportedf("cannot access %s: not a variable or a field of a set", tensor)
	}
	return &ir.Variable{Name: key, Typ: tensor.Type()}, nil
}

func store(buf *ir.Variable, index ir.Expr, value ir.Expr, op ir.ReductionOp) ir.Stmt {
	if op == ir.NoReduction {
		return &ir.Store{Buffer: buf, Index: index, Value: value}
	}
	return &ir.StoreMatrix{Buffer: buf, Index: index, Value: value, Op: op}
}

func (l *lowerer) accessStmt(stmt ir.Stmt) (ir.Stmt, error) {
	switch stmtT := stmt.(type) {
	case *ir.TensorWrite:
		buf, index, err := l.access(stmtT.Tensor, stmtT.Indices)
		if err != nil {
			return nil, err
		}
		value, err := l.accessExpr(stmtT.Value)
		if err != nil {
			return nil, err
		}
		return store(buf, index, value, stmtT.Op), nil
	case *ir.AssignStmt:
		if !ir.IsScalar(stmtT.Var.Typ) {
			return nil, fmterr.Preconditionf("assignment %q of a tensor left after lowering index expressions", stmtString(stmt))
		}
		value, err := l.accessExpr(stmtT.Value)
		if err != nil {
			return nil, err
		}
		return store(&ir.Variable{Name: stmtT.Var.Name, Typ: stmtT.Var.Typ}, intLit(0), value, ir.NoReduction), nil
	case *ir.FieldWrite:
		buf, index, err := l.elementField(stmtT.Elem, stmtT.Field)
		if err != nil {
			return nil, err
		}
		value, err := l.accessExpr(stmtT.Value)
		if err != nil {
			return nil, err
		}
		return store(buf, index, value, ir.NoReduction), nil
	case *ir.CallStmt:
		args := make([]ir.Expr, len(stmtT.Args))
		for i, arg := range stmtT.Args {
			ref, ok := arg.(*ir.VarExpr)
			if !ok {
				return nil, fmterr.Unsupportedf("argument %s of call to %s is not a variable", arg, stmtT.Callee.Name)
			}
			args[i] = &ir.Variable{Name: ref.V.Name, Typ: ref.V.Typ}
		}
		return &ir.CallStmt{Results: stmtT.Results, Callee: stmtT.Callee, Args: args}, nil
	case *ir.MapStmt:
		return nil, fmterr.Preconditionf("map statement %q left after lowering assemblies", stmtString(stmt))
	case *ir.Store, *ir.StoreMatrix, *ir.Pass:
		return stmt, nil
	}
	return nil, fmterr.Internalf("cannot lower accesses in statement %T", stmt)
}

// access returns the buffer and the offset of a tensor component.
func (l *lowerer) access(tensor ir.Expr, indices []ir.Expr) (*ir.Variable, ir.Expr, error) {
	buf, err := buffer(tensor)
	if err != nil {
		return nil, nil, err
	}
	typ := tensor.Type()
	if ir.IsScalar(typ) {
		if len(indices) > 0 {
			return nil, nil, fmterr.Preconditionf("scalar %s accessed with %d indices", tensor, len(indices))
		}
		return buf, intLit(0), nil
	}
	tensorType, ok := typ.(*ir.TensorType)
	if !ok {
		return nil, nil, fmterr.Preconditionf("cannot access %s of type %s", tensor, typ)
	}
	ts, err := l.st.Get(tensor)
	if err != nil {
		return nil, nil, err
	}
	lowered := make([]ir.Expr, len(indices))
	for i, index := range indices {
		if lowered[i], err = l.accessExpr(index); err != nil {
			return nil, nil, err
		}
	}
	index, err := offset(ts, tensorType, lowered)
	if err != nil {
		return nil, nil, err
	}
	return buf, index, nil
}

// elementField returns the buffer and the offset of the field of an element.
func (l *lowerer) elementField(elem ir.Expr, field string) (*ir.Variable, ir.Expr, error) {
	setElem, ok := elem.(*ir.SetElement)
	if !ok {
		return nil, nil, fmterr.Preconditionf("field %s of %s accessed without indices", field, elem)
	}
	fieldTensor := &ir.FieldRead{Elem: setElem.Set, Field: field}
	typ := fieldTensor.Type()
	if typ == nil {
		return nil, nil, fmterr.Preconditionf("%s has no field %s", setElem.Set, field)
	}
	if ir.IsBlocked(typ) {
		return nil, nil, fmterr.Unsupportedf("access to blocked field %s of an element", fieldTensor)
	}
	return l.access(fieldTensor, []ir.Expr{setElem.Index})
}

func (l *lowerer) accessExpr(expr ir.Expr) (ir.Expr, error) {
	switch exprT := expr.(type) {
	case *ir.IntLiteral, *ir.FloatLiteral, *ir.Variable, *ir.Load:
		return expr, nil
	case *ir.VarExpr:
		if !ir.IsScalar(exprT.V.Typ) {
			return nil, fmterr.Preconditionf("%s of type %s read without indices", exprT, exprT.V.Typ)
		}
		buf, index, err := l.access(exprT, nil)
		if err != nil {
			return nil, err
		}
		return &ir.Load{Buffer: buf, Index: index}, nil
	case *ir.TensorRead:
		buf, index, err := l.access(exprT.Tensor, exprT.Indices)
		if err != nil {
			return nil, err
		}
		return &ir.Load{Buffer: buf, Index: index}, nil
	case *ir.FieldRead:
		buf, index, err := l.elementField(exprT.Elem, exprT.Field)
		if err != nil {
			return nil, err
		}
		return &ir.Load{Buffer: buf, Index: index}, nil
	case *ir.Binary:
		x, err := l.accessExpr(exprT.X)
		if err != nil {
			return nil, err
		}
		y, err := l.accessExpr(exprT.Y)
		if err != nil {
			return nil, err
		}
		return &ir.Binary{Op: exprT.Op, X: x, Y: y}, nil
	case *ir.Neg:
		x, err := l.accessExpr(exprT.X)
		if err != nil {
			return nil, err
		}
		return &ir.Neg{X: x}, nil
	case *ir.IndexExpr, *ir.IndexedTensor:
		return nil, fmterr.Preconditionf("%s left after lowering index expressions", expr)
	}
	return nil, fmterr.Unsupportedf("cannot lower accesses in expression %s", expr)
}
