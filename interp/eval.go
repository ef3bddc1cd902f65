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

package interp

import (
	"github.com/gx-org/setir/build/fmterr"
	"github.com/gx-org/setir/build/ir"
)

func (ctx *context) execStmt(fr *frame, stmt ir.Stmt) error {
	switch stmtT := stmt.(type) {
	case *ir.Block:
		for _, s := range stmtT.Stmts {
			if err := ctx.execStmt(fr, s); err != nil {
				return err
			}
		}
		return nil
	case *ir.Pass:
		return nil
	case *ir.Foreach:
		size, err := ctx.domainSize(fr, stmtT.Domain)
		if err != nil {
			return err
		}
		for i := range size {
			if err := ctx.execStmt(fr.newLoopFrame(stmtT.Var.Name, i), stmtT.Body); err != nil {
				return err
			}
		}
		return nil
	case *ir.Store:
		return ctx.store(fr, stmtT.Buffer, stmtT.Index, stmtT.Value, false)
	case *ir.StoreMatrix:
		if stmtT.Op != ir.Sum {
			return fmterr.Internalf("reduction operator %s not supported", stmtT.Op)
		}
		return ctx.store(fr, stmtT.Buffer, stmtT.Index, stmtT.Value, true)
	case *ir.CallStmt:
		return ctx.call(fr, stmtT)
	}
	return fmterr.Internalf("cannot execute statement %T: function has not been lowered", stmt)
}

func (ctx *context) domainSize(fr *frame, dom ir.IndexDomain) (int, error) {
	if !dom.IsSet() {
		return dom.Size, nil
	}
	b := fr.fn.resolveSize(ctx.env, dom.Set.Name)
	size, ok := b.env.Size(b.name)
	if !ok {
		return 0, fr.errorf("set %s not bound", b.name)
	}
	return size, nil
}

func (ctx *context) store(fr *frame, buf *ir.Variable, indexExpr, valueExpr ir.Expr, accumulate bool) error {
	index, err := ctx.evalIndex(fr, indexExpr)
	if err != nil {
		return err
	}
	val, err := ctx.evalExpr(fr, valueExpr)
	if err != nil {
		return err
	}
	b := fr.fn.resolve(ctx.env, buf.Name)
	if err := b.env.store(b.name, index, val, accumulate); err != nil {
		return fmterr.PrefixWith("%s: ", fr.fn.name)(err)
	}
	return nil
}

func (ctx *context) evalIndex(fr *frame, expr ir.Expr) (int, error) {
	val, err := ctx.evalExpr(fr, expr)
	if err != nil {
		return 0, err
	}
	return toInt[int](val)
}

func (ctx *context) evalExpr(fr *frame, expr ir.Expr) (float64, error) {
	switch exprT := expr.(type) {
	case *ir.IntLiteral:
		return float64(exprT.Val), nil
	case *ir.FloatLiteral:
		return exprT.Val, nil
	case *ir.Variable:
		if val, ok := fr.find(exprT.Name); ok {
			return float64(val), nil
		}
		b := fr.fn.resolveSize(ctx.env, exprT.Name)
		if size, ok := b.env.Size(b.name); ok {
			return float64(size), nil
		}
		return 0, fr.errorf("undefined variable %s", exprT.Name)
	case *ir.Load:
		index, err := ctx.evalIndex(fr, exprT.Index)
		if err != nil {
			return 0, err
		}
		b := fr.fn.resolve(ctx.env, exprT.Buffer.Name)
		val, err := b.env.load(b.name, index)
		if err != nil {
			return 0, fmterr.PrefixWith("%s: ", fr.fn.name)(err)
		}
		return val, nil
	case *ir.Neg:
		x, err := ctx.evalExpr(fr, exprT.X)
		return -x, err
	case *ir.Binary:
		x, err := ctx.evalExpr(fr, exprT.X)
		if err != nil {
			return 0, err
		}
		y, err := ctx.evalExpr(fr, exprT.Y)
		if err != nil {
			return 0, err
		}
		return binary(exprT.Op, x, y)
	}
	return 0, fmterr.Internalf("cannot evaluate expression %T: function has not been lowered", expr)
}

func binary(op ir.BinaryOp, x, y float64) (float64, error) {
	switch op {
	case ir.Add:
		return x + y, nil
	case ir.Sub:
		return x - y, nil
	case ir.Mul:
		return x * y, nil
	case ir.Div:
		return x / y, nil
	}
	return 0, fmterr.Internalf("unknown operator %s", op)
}
