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

// LowerAssemblies replaces map statements with a loop over the elements
// of their target set. The body of the loop is the kernel of the map where:
//   - the element argument is the current element of the loop,
//   - the endpoints of the element are found in the <set>.endpoints buffer,
//   - writes to the kernel results are combined into the results of the
//     map, at positions given by the storage of the results.
//
// Results of the map are set to zero before the loop.
func LowerAssemblies(fn *ir.Func, st *storage.Storage) (*ir.Func, error) {
	l := newLowerer(fn, st)
	body, err := mapStmt(fn.Body, l.assembly)
	if err != nil {
		return nil, err
	}
	return fn.WithBody(body), nil
}

func (l *lowerer) assembly(stmt ir.Stmt) (ir.Stmt, error) {
	m, ok := stmt.(*ir.MapStmt)
	if !ok {
		return stmt, nil
	}
	return l.inlineKernel(m)
}

// kernelInliner inlines the kernel of a map statement.
type kernelInliner struct {
	*lowerer
	names *uname.Unique
	m     *ir.MapStmt

	target    *ir.Var
	setType   *ir.SetType
	card      int
	neighbors ir.Expr
	elem      *ir.Variable

	elemArg, tupleArg *ir.Var
	results           map[*ir.Var]*ir.Var
	locals            map[*ir.Var]*ir.Var
}

func (l *lowerer) inlineKernel(m *ir.MapStmt) (ir.Stmt, error) {
	k := &kernelInliner{
		lowerer: l,
		names:   l.newNames(),
		m:       m,
		results: make(map[*ir.Var]*ir.Var),
		locals:  make(map[*ir.Var]*ir.Var),
	}
	if err := k.bind(); err != nil {
		return nil, fmterr.PrefixWith("map %s to %s: ", m.Kernel.Name, m.Target)(err)
	}
	body, err := mapStmt(m.Kernel.Body, k.stmt)
	if err != nil {
		return nil, fmterr.PrefixWith("map %s to %s: ", m.Kernel.Name, m.Target)(err)
	}
	var stmts []ir.Stmt
	if m.Op != ir.NoReduction {
		for _, res := range m.Results {
			zero, err := l.zeroInit(k.names, &ir.VarExpr{V: res})
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, zero)
		}
	}
	stmts = append(stmts, &ir.Foreach{
		Var:    k.elem,
		Domain: ir.SetDomain(k.target),
		Body:   body,
	})
	return ir.NewBlock(stmts...), nil
}

// bind checks the signature of the kernel against the map statement.
func (k *kernelInliner) bind() error {
	target, ok := k.m.Target.(*ir.VarExpr)
	if !ok {
		return fmterr.Unsupportedf("target %s is not a set variable", k.m.Target)
	}
	setType, ok := target.V.Typ.(*ir.SetType)
	if !ok {
		return fmterr.Preconditionf("target %s of type %s is not a set", target, target.V.Typ)
	}
	k.target, k.setType, k.card = target.V, setType, setType.Card()
	kernel := k.m.Kernel
	wantArgs := 1
	if k.m.Neighbors != nil {
		wantArgs = 2
	}
	if len(kernel.Args) != wantArgs {
		return fmterr.Preconditionf("kernel has %d arguments but want %d", len(kernel.Args), wantArgs)
	}
	k.elemArg = kernel.Args[0]
	if !setType.Element.Equal(k.elemArg.Typ) {
		return fmterr.Preconditionf("kernel argument %s of type %s does not match elements of %s", k.elemArg, k.elemArg.Typ, setType)
	}
	if k.m.Neighbors != nil {
		k.neighbors = k.m.Neighbors
		k.tupleArg = kernel.Args[1]
		tuple, ok := k.tupleArg.Typ.(*ir.TupleType)
		if !ok || tuple.Size != k.card {
			return fmterr.Preconditionf("kernel argument %s of type %s is not a tuple of %d endpoints", k.tupleArg, k.tupleArg.Typ, k.card)
		}
		neighbors, ok := k.neighbors.Type().(*ir.SetType)
		if !ok || !neighbors.Element.Equal(tuple.Element) {
			return fmterr.Preconditionf("neighbors %s do not match kernel argument %s of type %s", k.neighbors, k.tupleArg, tuple)
		}
	}
	if len(kernel.Results) != len(k.m.Results) {
		return fmterr.Preconditionf("kernel has %d results but map assigns %d", len(kernel.Results), len(k.m.Results))
	}
	for i, res := range kernel.Results {
		k.results[res] = k.m.Results[i]
	}
	k.elem = &ir.Variable{Name: k.names.Name("e")}
	return nil
}

func (k *kernelInliner) local(v *ir.Var) *ir.Var {
	if renamed, ok := k.locals[v]; ok {
		return renamed
	}
	renamed := &ir.Var{Name: k.names.Name(v.Name), Typ: v.Typ}
	k.locals[v] = renamed
	return renamed
}

func (k *kernelInliner) stmt(stmt ir.Stmt) (ir.Stmt, error) {
	switch stmtT := stmt.(type) {
	case *ir.AssignStmt:
		value, err := k.expr(stmtT.Value)
		if err != nil {
			return nil, err
		}
		global, isResult := k.results[stmtT.Var]
		if !isResult {
			return &ir.AssignStmt{Var: k.local(stmtT.Var), Value: value}, nil
		}
		if !ir.IsScalar(global.Typ) {
			return nil, fmterr.Unsupportedf("assigning result %s of type %s without indices", stmtT.Var, global.Typ)
		}
		return &ir.TensorWrite{Tensor: &ir.VarExpr{V: global}, Value: value, Op: k.m.Op}, nil
	case *ir.TensorWrite:
		return k.resultWrite(stmtT)
	case *ir.FieldWrite:
		elem, err := k.expr(stmtT.Elem)
		if err != nil {
			return nil, err
		}
		value, err := k.expr(stmtT.Value)
		if err != nil {
			return nil, err
		}
		return &ir.FieldWrite{Elem: elem, Field: stmtT.Field, Value: value}, nil
	case *ir.Pass:
		return stmt, nil
	}
	return nil, fmterr.Unsupportedf("statement %q in a kernel", stmtString(stmt))
}

// position returns the position of an element in its set. The second value
// is the endpoint number of the element or -1 if the element is the
// element of the map.
func (k *kernelInliner) position(expr ir.Expr) (ir.Expr, int, error) {
	switch exprT := expr.(type) {
	case *ir.VarExpr:
		if exprT.V == k.elemArg {
			return k.elem, -1, nil
		}
	case *ir.TupleRead:
		tuple, ok := exprT.Tuple.(*ir.VarExpr)
		if !ok || tuple.V != k.tupleArg {
			break
		}
		if exprT.Index < 0 || exprT.Index >= k.card {
			return nil, 0, fmterr.Preconditionf("endpoint %d out of range [0,%d)", exprT.Index, k.card)
		}
		return endpoint(k.target.Name, k.card, k.elem, intLit(exprT.Index)), exprT.Index, nil
	}
	return nil, 0, fmterr.Unsupportedf("index %s is not the element or one of its endpoints", expr)
}

// checkPositions checks that the element or endpoint indexing each
// dimension of a result is an element of the set of that dimension.
func (k *kernelInliner) checkPositions(global *ir.Var, endpoints []int) error {
	tensor, ok := global.Typ.(*ir.TensorType)
	if !ok {
		return fmterr.Preconditionf("result %s of type %s is not a tensor", global, global.Typ)
	}
	if len(tensor.Dims) != len(endpoints) {
		return fmterr.Preconditionf("result %s of type %s written with %d indices", global, global.Typ, len(endpoints))
	}
	for i, ep := range endpoints {
		want := k.target
		if ep >= 0 {
			if ep >= len(k.setType.Endpoints) {
				return fmterr.Preconditionf("set %s has no endpoint %d", k.target, ep)
			}
			want = k.setType.Endpoints[ep]
		}
		dim := tensor.Dims[i]
		if !dim.IsSet() || dim.Set.Name != want.Name {
			return fmterr.Preconditionf("dimension %d of %s ranges over %s but is indexed by an element of %s", i, global, dim, want.Name)
		}
	}
	return nil
}

func (k *kernelInliner) resultWrite(write *ir.TensorWrite) (ir.Stmt, error) {
	res, ok := write.Tensor.(*ir.VarExpr)
	if !ok {
		return nil, fmterr.Unsupportedf("write to %s in a kernel", write.Tensor)
	}
	global, isResult := k.results[res.V]
	if !isResult {
		return nil, fmterr.Unsupportedf("write to %s: not a result of the kernel", res)
	}
	if ir.IsBlocked(global.Typ) {
		return nil, fmterr.Unsupportedf("assembly of blocked result %s", global)
	}
	value, err := k.expr(write.Value)
	if err != nil {
		return nil, err
	}
	globalExpr := &ir.VarExpr{V: global}
	ts, err := k.st.Get(globalExpr)
	if err != nil {
		return nil, err
	}
	positions := make([]ir.Expr, len(write.Indices))
	endpoints := make([]int, len(write.Indices))
	for i, index := range write.Indices {
		if positions[i], endpoints[i], err = k.position(index); err != nil {
			return nil, err
		}
	}
	if err := k.checkPositions(global, endpoints); err != nil {
		return nil, err
	}
	indices := positions
	if ts.Kind == storage.SystemReduced {
		if ts.Set != k.target.Name || ts.Card != k.card {
			return nil, fmterr.Unsupportedf("%s is %s and cannot be assembled over %s", global, ts, k.target)
		}
		if len(endpoints) != 2 || endpoints[0] < 0 || endpoints[1] < 0 {
			return nil, fmterr.Preconditionf("%s is %s and must be indexed by two endpoints", global, ts)
		}
		indices = []ir.Expr{k.elem, intLit(endpoints[0]), intLit(endpoints[1])}
	}
	return &ir.TensorWrite{
		Tensor:  globalExpr,
		Indices: indices,
		Value:   value,
		Op:      k.m.Op,
	}, nil
}

func (k *kernelInliner) expr(expr ir.Expr) (ir.Expr, error) {
	switch exprT := expr.(type) {
	case *ir.VarExpr:
		switch {
		case exprT.V == k.elemArg:
			return &ir.SetElement{Set: &ir.VarExpr{V: k.target}, Index: k.elem}, nil
		case exprT.V == k.tupleArg:
			return nil, fmterr.Unsupportedf("endpoints %s used as a value", exprT)
		}
		if _, isResult := k.results[exprT.V]; isResult {
			return nil, fmterr.Unsupportedf("result %s read in a kernel", exprT)
		}
		return &ir.VarExpr{V: k.local(exprT.V)}, nil
	case *ir.TupleRead:
		pos, _, err := k.position(exprT)
		if err != nil {
			return nil, err
		}
		return &ir.SetElement{Set: k.neighbors, Index: pos}, nil
	case *ir.FieldRead:
		elem, err := k.expr(exprT.Elem)
		if err != nil {
			return nil, err
		}
		return &ir.FieldRead{Elem: elem, Field: exprT.Field}, nil
	case *ir.Binary:
		x, err := k.expr(exprT.X)
		if err != nil {
			return nil, err
		}
		y, err := k.expr(exprT.Y)
		if err != nil {
			return nil, err
		}
		return &ir.Binary{Op: exprT.Op, X: x, Y: y}, nil
	case *ir.Neg:
		x, err := k.expr(exprT.X)
		if err != nil {
			return nil, err
		}
		return &ir.Neg{X: x}, nil
	case *ir.IntLiteral, *ir.FloatLiteral:
		return expr, nil
	}
	return nil, fmterr.Unsupportedf("expression %s in a kernel", expr)
}
