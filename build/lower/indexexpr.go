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
	baseiter "github.com/gx-org/setir/base/iter"
	"github.com/gx-org/setir/base/uname"
	"github.com/gx-org/setir/build/fmterr"
	"github.com/gx-org/setir/build/ir"
	"github.com/gx-org/setir/build/ir/irquery"
	"github.com/gx-org/setir/build/storage"
)

// LowerIndexExpressions replaces statements assigning an index expression
// to a tensor with loops over the index variables of the expression.
//
// Loops over free variables are the outermost, in the order of
// irquery.FreeVars. Loops over reduction variables are nested inside,
// in the order of irquery.ReductionVars. Blocked operands add loops over
// the components of their blocks: free if the target is blocked,
// reduced otherwise.
//
// Statements must be flattened.
func LowerIndexExpressions(fn *ir.Func, st *storage.Storage) (*ir.Func, error) {
	l := newLowerer(fn, st)
	body, err := mapStmt(fn.Body, l.indexStmt)
	if err != nil {
		return nil, err
	}
	return fn.WithBody(body), nil
}

func (l *lowerer) indexStmt(stmt ir.Stmt) (ir.Stmt, error) {
	if !irquery.IsFlattened(stmt) {
		return nil, fmterr.Preconditionf("statement %q is not flattened", stmtString(stmt))
	}
	var target, value ir.Expr
	switch stmtT := stmt.(type) {
	case *ir.AssignStmt:
		target, value = &ir.VarExpr{V: stmtT.Var}, stmtT.Value
	case *ir.FieldWrite:
		target, value = &ir.FieldRead{Elem: stmtT.Elem, Field: stmtT.Field}, stmtT.Value
	}
	ie, ok := value.(*ir.IndexExpr)
	if !ok {
		if _, found := baseiter.First(irquery.IndexExprs(stmt)); found {
			return nil, fmterr.Unsupportedf("index expression in statement %q is not assigned to a tensor", stmtString(stmt))
		}
		return stmt, nil
	}
	return l.indexExpr(target, ie)
}

// indexLowering lowers one index expression.
type indexLowering struct {
	*lowerer
	target ir.Expr
	ie     *ir.IndexExpr
	names  *uname.Unique
	free   []*ir.IndexVar
	reduce []*ir.IndexVar
}

func (l *lowerer) indexExpr(target ir.Expr, ie *ir.IndexExpr) (ir.Stmt, error) {
	il := &indexLowering{
		lowerer: l,
		target:  target,
		ie:      ie,
		names:   l.newNames(),
		reduce:  irquery.ReductionVars(ie.Value),
	}
	if err := il.checkFreeVars(); err != nil {
		return nil, err
	}
	if system := il.systemOperands(); len(system) > 0 {
		return il.lowerSystem(system)
	}
	if ts, err := il.st.Get(il.target); err == nil && ts.Kind == storage.SystemReduced {
		return nil, fmterr.Unsupportedf("cannot assign %s to system-reduced matrix %s", il.ie, il.target)
	}
	return il.lowerLoops()
}

// checkFreeVars checks that free variables accessing tensors are result
// variables and computes the order of free loops.
func (il *indexLowering) checkFreeVars() error {
	results := make(map[ir.IndexVarKey]bool)
	for _, rv := range il.ie.ResultVars {
		if !rv.IsFree() {
			return fmterr.Preconditionf("result variable %s of %s is not free", rv, il.ie)
		}
		results[rv.Key()] = true
	}
	il.free = irquery.FreeVars(il.ie.Value)
	seen := make(map[ir.IndexVarKey]bool)
	for _, fv := range il.free {
		if !results[fv.Key()] {
			return fmterr.Preconditionf("free variable %s of %s is not a result variable", fv, il.ie)
		}
		seen[fv.Key()] = true
	}
	for _, rv := range il.ie.ResultVars {
		if !seen[rv.Key()] {
			il.free = append(il.free, rv)
		}
	}
	return nil
}

func (il *indexLowering) reductionOp() (ir.ReductionOp, error) {
	op := ir.Sum
	for i, rv := range il.reduce {
		if rv.Op != ir.Sum {
			return ir.NoReduction, fmterr.Internalf("unknown reduction operator %s for variable %s", rv.Op, rv.Name)
		}
		if i > 0 && rv.Op != op {
			return ir.NoReduction, fmterr.Unsupportedf("index expression %s combines different reduction operators", il.ie)
		}
		op = rv.Op
	}
	return op, nil
}

// operandBlockDims returns the block dimensions of the blocked operands.
func (il *indexLowering) operandBlockDims() ([]ir.IndexDomain, error) {
	var dims []ir.IndexDomain
	var first *ir.IndexedTensor
	for it := range irquery.IndexedTensors(il.ie.Value) {
		tensor, ok := it.Tensor.Type().(*ir.TensorType)
		if !ok || !ir.IsBlocked(tensor) {
			continue
		}
		if first == nil {
			first, dims = it, tensor.BlockDims()
			continue
		}
		if !sameDims(dims, tensor.BlockDims()) {
			return nil, fmterr.Unsupportedf("operands %s and %s have different block types", first, it)
		}
	}
	return dims, nil
}

func sameDims(x, y []ir.IndexDomain) bool {
	if len(x) != len(y) {
		return false
	}
	for i, d := range x {
		if !d.Equal(y[i]) {
			return false
		}
	}
	return true
}

// substitute replaces the indexed tensors of an expression.
func substitute(expr ir.Expr, access func(*ir.IndexedTensor) (ir.Expr, error)) (ir.Expr, error) {
	switch exprT := expr.(type) {
	case *ir.IndexedTensor:
		return access(exprT)
	case *ir.Binary:
		x, err := substitute(exprT.X, access)
		if err != nil {
			return nil, err
		}
		y, err := substitute(exprT.Y, access)
		if err != nil {
			return nil, err
		}
		return &ir.Binary{Op: exprT.Op, X: x, Y: y}, nil
	case *ir.Neg:
		x, err := substitute(exprT.X, access)
		if err != nil {
			return nil, err
		}
		return &ir.Neg{X: x}, nil
	case *ir.IndexExpr:
		return nil, fmterr.Preconditionf("nested index expression %s", exprT)
	}
	return expr, nil
}

// checkAccess checks that a tensor is accessed with one index variable per dimension.
// Returns nil if the tensor is a scalar.
func checkAccess(it *ir.IndexedTensor) (*ir.TensorType, error) {
	tensor, ok := it.Tensor.Type().(*ir.TensorType)
	if !ok || ir.IsScalar(tensor) {
		if len(it.IndexVars) > 0 {
			return nil, fmterr.Preconditionf("scalar %s accessed with index variables", it)
		}
		return nil, nil
	}
	if len(it.IndexVars) != tensor.Order() {
		return nil, fmterr.Preconditionf("tensor %s of type %s accessed with %d index variables", it.Tensor, tensor, len(it.IndexVars))
	}
	return tensor, nil
}

func (il *indexLowering) lowerLoops() (ir.Stmt, error) {
	op, err := il.reductionOp()
	if err != nil {
		return nil, err
	}
	blockDims, err := il.operandBlockDims()
	if err != nil {
		return nil, err
	}
	targetType := il.target.Type()
	targetBlocked := ir.IsBlocked(targetType)
	if targetBlocked {
		targetDims := targetType.(*ir.TensorType).BlockDims()
		if blockDims != nil && !sameDims(blockDims, targetDims) {
			return nil, fmterr.Unsupportedf("cannot assign %s to %s of type %s: block types differ", il.ie, il.target, targetType)
		}
		blockDims = targetDims
	}
	loopVars := make(map[ir.IndexVarKey]*ir.Variable)
	newLoops := func(ivs []*ir.IndexVar) ([]*ir.Variable, []ir.IndexDomain) {
		vars := make([]*ir.Variable, len(ivs))
		doms := make([]ir.IndexDomain, len(ivs))
		for i, iv := range ivs {
			vars[i] = &ir.Variable{Name: il.names.Name(iv.Name)}
			doms[i] = iv.Domain
			loopVars[iv.Key()] = vars[i]
		}
		return vars, doms
	}
	freeVars, freeDoms := newLoops(il.free)
	reduceVars, reduceDoms := newLoops(il.reduce)
	blockVars, blockDoms, err := blockLoops(il.names, blockDims)
	if err != nil {
		return nil, err
	}
	value, err := substitute(il.ie.Value, func(it *ir.IndexedTensor) (ir.Expr, error) {
		tensor, err := checkAccess(it)
		if err != nil || tensor == nil {
			return it.Tensor, err
		}
		indices := make([]ir.Expr, 0, len(it.IndexVars)+len(blockVars))
		for _, iv := range it.IndexVars {
			loopVar, ok := loopVars[iv.Key()]
			if !ok {
				return nil, fmterr.Internalf("no loop for index variable %s", iv)
			}
			indices = append(indices, loopVar)
		}
		if ir.IsBlocked(tensor) {
			indices = append(indices, asExprs(blockVars)...)
		}
		return &ir.TensorRead{Tensor: it.Tensor, Indices: indices}, nil
	})
	if err != nil {
		return nil, err
	}
	var targetIndices []ir.Expr
	for _, rv := range il.ie.ResultVars {
		targetIndices = append(targetIndices, loopVars[rv.Key()])
	}
	if targetBlocked {
		targetIndices = append(targetIndices, asExprs(blockVars)...)
	}
	reducing := len(il.reduce) > 0 || (len(blockDims) > 0 && !targetBlocked)
	write := &ir.TensorWrite{Tensor: il.target, Indices: targetIndices, Value: value}
	var body ir.Stmt = write
	if !reducing {
		if targetBlocked {
			body = loopNest(blockVars, blockDoms, body)
		}
		return loopNest(freeVars, freeDoms, body), nil
	}
	write.Op = op
	if !targetBlocked {
		body = loopNest(blockVars, blockDoms, body)
	}
	body = loopNest(reduceVars, reduceDoms, body)
	zero := &ir.TensorWrite{Tensor: il.target, Indices: targetIndices, Value: &ir.FloatLiteral{Val: 0}}
	body = ir.NewBlock(zero, body)
	if targetBlocked {
		body = loopNest(blockVars, blockDoms, body)
	}
	return loopNest(freeVars, freeDoms, body), nil
}

// systemOperands returns the operands stored as system-reduced matrices.
func (il *indexLowering) systemOperands() []*ir.IndexedTensor {
	var system []*ir.IndexedTensor
	for it := range irquery.IndexedTensors(il.ie.Value) {
		key, ok := storage.KeyOf(it.Tensor)
		if !ok {
			continue
		}
		ts, ok := il.st.Lookup(key)
		if !ok || ts.Kind != storage.SystemReduced {
			continue
		}
		system = append(system, it)
	}
	return system
}

// lowerSystem lowers an index expression with operands stored as
// system-reduced matrices. The loops iterate over the elements of the
// assembly set and over the pairs of their endpoints. Row and column
// index variables are mapped to the positions of the endpoints.
func (il *indexLowering) lowerSystem(system []*ir.IndexedTensor) (ir.Stmt, error) {
	first := system[0]
	ts, err := il.st.Get(first.Tensor)
	if err != nil {
		return nil, err
	}
	if len(first.IndexVars) != 2 {
		return nil, fmterr.Preconditionf("matrix %s accessed with %d index variables", first.Tensor, len(first.IndexVars))
	}
	row, col := first.IndexVars[0].Key(), first.IndexVars[1].Key()
	if row == col {
		return nil, fmterr.Unsupportedf("diagonal access %s of a system-reduced matrix", first)
	}
	for _, it := range system[1:] {
		other, err := il.st.Get(it.Tensor)
		if err != nil {
			return nil, err
		}
		if *other != *ts || len(it.IndexVars) != 2 || it.IndexVars[0].Key() != row || it.IndexVars[1].Key() != col {
			return nil, fmterr.Unsupportedf("system-reduced operands %s and %s are not accessed the same way", first, it)
		}
	}
	if blocked, err := il.operandBlockDims(); err != nil || blocked != nil || ir.IsBlocked(il.target.Type()) {
		if err != nil {
			return nil, err
		}
		return nil, fmterr.Unsupportedf("blocked operands in %s with system-reduced storage", il.ie)
	}
	set, err := il.setVar(ts.Set)
	if err != nil {
		return nil, err
	}
	e := &ir.Variable{Name: il.names.Name("e")}
	a := &ir.Variable{Name: il.names.Name("a")}
	b := &ir.Variable{Name: il.names.Name("b")}
	positions := map[ir.IndexVarKey]ir.Expr{
		row: endpoint(ts.Set, ts.Card, e, a),
		col: endpoint(ts.Set, ts.Card, e, b),
	}
	isSystem := make(map[*ir.IndexedTensor]bool)
	for _, it := range system {
		isSystem[it] = true
	}
	value, err := substitute(il.ie.Value, func(it *ir.IndexedTensor) (ir.Expr, error) {
		if isSystem[it] {
			return &ir.TensorRead{Tensor: it.Tensor, Indices: []ir.Expr{e, a, b}}, nil
		}
		tensor, err := checkAccess(it)
		if err != nil || tensor == nil {
			return it.Tensor, err
		}
		indices := make([]ir.Expr, len(it.IndexVars))
		for i, iv := range it.IndexVars {
			pos, ok := positions[iv.Key()]
			if !ok {
				return nil, fmterr.Unsupportedf("index variable %s of %s does not index the system-reduced matrix %s", iv, it, first)
			}
			indices[i] = pos
		}
		return &ir.TensorRead{Tensor: it.Tensor, Indices: indices}, nil
	})
	if err != nil {
		return nil, err
	}
	loops := func(body ir.Stmt) ir.Stmt {
		return loopNest(
			[]*ir.Variable{e, a, b},
			[]ir.IndexDomain{ir.SetDomain(set), ir.RangeDomain(ts.Card), ir.RangeDomain(ts.Card)},
			body,
		)
	}
	if targetTS, err := il.st.Get(il.target); err == nil && targetTS.Kind == storage.SystemReduced {
		if *targetTS != *ts || len(il.ie.ResultVars) != 2 || il.ie.ResultVars[0].Key() != row || il.ie.ResultVars[1].Key() != col {
			return nil, fmterr.Unsupportedf("cannot assign %s to system-reduced matrix %s", il.ie, il.target)
		}
		if len(il.reduce) > 0 {
			return nil, fmterr.Unsupportedf("reduction in %s assigned to a system-reduced matrix", il.ie)
		}
		return loops(&ir.TensorWrite{Tensor: il.target, Indices: []ir.Expr{e, a, b}, Value: value}), nil
	}
	op, err := il.reductionOp()
	if err != nil {
		return nil, err
	}
	indices := make([]ir.Expr, len(il.ie.ResultVars))
	for i, rv := range il.ie.ResultVars {
		pos, ok := positions[rv.Key()]
		if !ok {
			return nil, fmterr.Unsupportedf("result variable %s of %s does not index the system-reduced matrix %s", rv, il.ie, first)
		}
		indices[i] = pos
	}
	zero, err := il.zeroInit(il.names, il.target)
	if err != nil {
		return nil, err
	}
	write := &ir.TensorWrite{Tensor: il.target, Indices: indices, Value: value, Op: op}
	return ir.NewBlock(zero, loops(write)), nil
}
