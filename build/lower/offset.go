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
	"github.com/gx-org/setir/base/uname"
	"github.com/gx-org/setir/build/fmterr"
	"github.com/gx-org/setir/build/ir"
	"github.com/gx-org/setir/build/storage"
)

func intLit(val int) *ir.IntLiteral {
	return &ir.IntLiteral{Val: val}
}

func isInt(expr ir.Expr, val int) bool {
	lit, ok := expr.(*ir.IntLiteral)
	return ok && lit.Val == val
}

// mul returns x*y, folding multiplications by 0 and 1.
func mul(x, y ir.Expr) ir.Expr {
	switch {
	case isInt(x, 0) || isInt(y, 0):
		return intLit(0)
	case isInt(x, 1):
		return y
	case isInt(y, 1):
		return x
	}
	xLit, xOk := x.(*ir.IntLiteral)
	yLit, yOk := y.(*ir.IntLiteral)
	if xOk && yOk {
		return intLit(xLit.Val * yLit.Val)
	}
	return &ir.Binary{Op: ir.Mul, X: x, Y: y}
}

// add returns x+y, folding additions of 0.
func add(x, y ir.Expr) ir.Expr {
	switch {
	case isInt(x, 0):
		return y
	case isInt(y, 0):
		return x
	}
	xLit, xOk := x.(*ir.IntLiteral)
	yLit, yOk := y.(*ir.IntLiteral)
	if xOk && yOk {
		return intLit(xLit.Val + yLit.Val)
	}
	return &ir.Binary{Op: ir.Add, X: x, Y: y}
}

// domainSize returns the number of values of a domain.
// The size of a set is read from its size handle.
func domainSize(dom ir.IndexDomain) ir.Expr {
	if dom.IsSet() {
		return &ir.Variable{Name: dom.Set.Name}
	}
	return intLit(dom.Size)
}

// rowMajor returns the offset of a component in a row-major layout.
func rowMajor(indices []ir.Expr, dims []ir.IndexDomain) ir.Expr {
	var offset ir.Expr = intLit(0)
	for i, index := range indices {
		offset = add(mul(offset, domainSize(dims[i])), index)
	}
	return offset
}

// endpointsBuffer returns the buffer storing, for each element of a set,
// the positions of its endpoints in their own sets.
func endpointsBuffer(set string) *ir.Variable {
	return &ir.Variable{Name: set + ".endpoints", Typ: ir.Int()}
}

// endpoint returns the position of the k-th endpoint of an element.
func endpoint(set string, card int, elem ir.Expr, k ir.Expr) ir.Expr {
	return &ir.Load{
		Buffer: endpointsBuffer(set),
		Index:  add(mul(elem, intLit(card)), k),
	}
}

// numOuterIndices returns the number of indices preceding the block indices
// in an access to a tensor with a given storage.
func numOuterIndices(ts *storage.TensorStorage, tensor *ir.TensorType) int {
	if ts.Kind == storage.SystemReduced {
		return 3
	}
	return len(tensor.Dims)
}

// offset returns the offset of a component of a tensor in its buffer.
// Indices of a system-reduced tensor are the element of the assembly set
// and the positions of the row and column endpoints within that element.
func offset(ts *storage.TensorStorage, tensor *ir.TensorType, indices []ir.Expr) (ir.Expr, error) {
	blockDims := tensor.BlockDims()
	numOuter := numOuterIndices(ts, tensor)
	if len(indices) != numOuter+len(blockDims) {
		return nil, fmterr.Preconditionf("tensor of type %s with %s storage accessed with %d indices but want %d", tensor, ts, len(indices), numOuter+len(blockDims))
	}
	outer, inner := indices[:numOuter], indices[numOuter:]
	switch ts.Kind {
	case storage.Dense:
		return rowMajor(indices, append(append([]ir.IndexDomain{}, tensor.Dims...), blockDims...)), nil
	case storage.SetIndexed:
		if len(tensor.Dims) != 1 {
			return nil, fmterr.Unsupportedf("%s storage of a tensor of type %s", ts, tensor)
		}
		return add(mul(outer[0], intLit(tensor.BlockSize())), rowMajor(inner, blockDims)), nil
	case storage.SystemReduced:
		if len(tensor.Dims) != 2 {
			return nil, fmterr.Unsupportedf("%s storage of a tensor of type %s", ts, tensor)
		}
		card := intLit(ts.Card)
		e, a, b := outer[0], outer[1], outer[2]
		pos := add(mul(add(mul(e, card), a), card), b)
		return add(mul(pos, intLit(tensor.BlockSize())), rowMajor(inner, blockDims)), nil
	}
	return nil, fmterr.Internalf("storage kind %s not supported", ts.Kind)
}

// loopNest builds nested loops. The first loop is the outermost.
func loopNest(vars []*ir.Variable, doms []ir.IndexDomain, body ir.Stmt) ir.Stmt {
	for i := len(vars) - 1; i >= 0; i-- {
		body = &ir.Foreach{Var: vars[i], Domain: doms[i], Body: body}
	}
	return body
}

func asExprs(vars []*ir.Variable) []ir.Expr {
	exprs := make([]ir.Expr, len(vars))
	for i, v := range vars {
		exprs[i] = v
	}
	return exprs
}

func (l *lowerer) newNames() *uname.Unique {
	names := uname.New()
	names.Register(l.names...)
	return names
}

// blockLoops returns loop variables and domains over the components of blocks.
func blockLoops(names *uname.Unique, blockDims []ir.IndexDomain) ([]*ir.Variable, []ir.IndexDomain, error) {
	vars := make([]*ir.Variable, len(blockDims))
	for i, dim := range blockDims {
		if dim.IsSet() {
			return nil, nil, fmterr.Unsupportedf("block dimension over set %s", dim.Set.Name)
		}
		vars[i] = &ir.Variable{Name: names.Name("b")}
	}
	return vars, blockDims, nil
}

// zeroInit returns a statement setting all the components of a tensor to zero.
func (l *lowerer) zeroInit(names *uname.Unique, target ir.Expr) (ir.Stmt, error) {
	zero := &ir.FloatLiteral{Val: 0}
	tensor, ok := target.Type().(*ir.TensorType)
	if !ok || ir.IsScalar(tensor) {
		return &ir.TensorWrite{Tensor: target, Value: zero}, nil
	}
	ts, err := l.st.Get(target)
	if err != nil {
		return nil, err
	}
	var vars []*ir.Variable
	var doms []ir.IndexDomain
	if ts.Kind == storage.SystemReduced {
		set, err := l.setVar(ts.Set)
		if err != nil {
			return nil, err
		}
		vars = []*ir.Variable{
			{Name: names.Name("e")},
			{Name: names.Name("a")},
			{Name: names.Name("b")},
		}
		doms = []ir.IndexDomain{ir.SetDomain(set), ir.RangeDomain(ts.Card), ir.RangeDomain(ts.Card)}
	} else {
		for _, dim := range tensor.Dims {
			root := "i"
			if !dim.IsSet() {
				root = "k"
			}
			vars = append(vars, &ir.Variable{Name: names.Name(root)})
			doms = append(doms, dim)
		}
	}
	blockVars, blockDoms, err := blockLoops(names, tensor.BlockDims())
	if err != nil {
		return nil, err
	}
	vars = append(vars, blockVars...)
	doms = append(doms, blockDoms...)
	write := &ir.TensorWrite{Tensor: target, Indices: asExprs(vars), Value: zero}
	return loopNest(vars, doms, write), nil
}
