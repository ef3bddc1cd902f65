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

// Package lower lowers tensor IR functions into Set IR functions.
//
// Lowering runs three passes in order:
//  1. LowerAssemblies inlines the kernels of map statements in loops over
//     their target set,
//  2. LowerIndexExpressions expands index expressions into nested loops
//     over their index variables,
//  3. LowerTensorAccesses replaces tensor reads and writes with loads and
//     stores at offsets computed from the storage of each tensor.
//
// Passes never modify their input: they return new functions sharing
// unmodified sub-trees with their input.
package lower

import (
	"strings"

	"github.com/gx-org/setir/base/ordered"
	"github.com/gx-org/setir/build/fmterr"
	"github.com/gx-org/setir/build/ir"
	"github.com/gx-org/setir/build/ir/irquery"
	"github.com/gx-org/setir/build/ir/sirstring"
	"github.com/gx-org/setir/build/storage"
	log "github.com/sirupsen/logrus"
)

// Stage of the lowering pipeline.
type Stage int

const (
	// Input is the input of the pipeline.
	Input Stage = iota
	// Assemblies is the stage after map statements have been lowered.
	Assemblies
	// IndexExpressions is the stage after index expressions have been lowered.
	IndexExpressions
	// TensorAccesses is the final stage: tensor accesses have been lowered.
	TensorAccesses
)

var stageNames = []string{
	Input:            "input",
	Assemblies:       "assemblies",
	IndexExpressions: "index-expressions",
	TensorAccesses:   "tensor-accesses",
}

// String returns the name of the stage.
func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "invalid"
	}
	return stageNames[s]
}

// ParseStage returns a stage given its name.
func ParseStage(name string) (Stage, error) {
	for i, stageName := range stageNames {
		if stageName == name {
			return Stage(i), nil
		}
	}
	return Input, fmterr.Preconditionf("unknown lowering stage %q (want one of %s)", name, strings.Join(stageNames, ", "))
}

type pass struct {
	stage Stage
	run   func(*ir.Func, *storage.Storage) (*ir.Func, error)
}

var passes = []pass{
	{stage: Assemblies, run: LowerAssemblies},
	{stage: IndexExpressions, run: LowerIndexExpressions},
	{stage: TensorAccesses, run: LowerTensorAccesses},
}

// Lower runs all the lowering passes on a function.
func Lower(fn *ir.Func, st *storage.Storage) (*ir.Func, error) {
	return LowerTo(fn, st, TensorAccesses)
}

// LowerTo runs the lowering passes on a function up to a given stage.
func LowerTo(fn *ir.Func, st *storage.Storage, last Stage) (*ir.Func, error) {
	prefix := fmterr.PrefixWith("lowering %s: ", fn.Name)
	for _, p := range passes {
		if p.stage > last {
			break
		}
		log.Debugf("lowering %s: %s", fn.Name, p.stage)
		var err error
		if fn, err = p.run(fn, st); err != nil {
			return nil, prefix(err)
		}
		if log.IsLevelEnabled(log.TraceLevel) {
			log.Tracef("%s after %s:\n%s", fn.Name, p.stage, sirstring.String(fn))
		}
	}
	if last == TensorAccesses {
		if err := checkSetIR(fn); err != nil {
			return nil, prefix(err)
		}
	}
	return fn, nil
}

// LowerProgram lowers all the functions reachable from a function,
// except for the functions only used as kernels of map statements
// since those are inlined by LowerAssemblies.
// Functions are returned in the order of irquery.CallTree.
func LowerProgram(fn *ir.Func, st *storage.Storage) ([]*ir.Func, error) {
	return LowerProgramTo(fn, st, TensorAccesses)
}

// LowerProgramTo lowers all the functions reachable from a function
// up to a given stage.
func LowerProgramTo(fn *ir.Func, st *storage.Storage, last Stage) ([]*ir.Func, error) {
	tree := irquery.CallTree(fn)
	kernels := kernelsOnly(tree)
	var lowered []*ir.Func
	for _, f := range tree {
		if f != fn && kernels[f] {
			log.Debugf("skipping kernel %s", f.Name)
			continue
		}
		low, err := LowerTo(f, st, last)
		if err != nil {
			return nil, err
		}
		lowered = append(lowered, low)
	}
	return lowered, nil
}

// kernelsOnly returns the functions used as kernels and never called directly.
func kernelsOnly(funcs []*ir.Func) map[*ir.Func]bool {
	kernels := make(map[*ir.Func]bool)
	called := make(map[*ir.Func]bool)
	for _, fn := range funcs {
		for node := range irquery.All(fn) {
			switch nodeT := node.(type) {
			case *ir.MapStmt:
				kernels[nodeT.Kernel] = true
			case *ir.CallStmt:
				called[nodeT.Callee] = true
			}
		}
	}
	for fn := range called {
		delete(kernels, fn)
	}
	return kernels
}

// checkSetIR checks that a function only contains Set IR nodes.
func checkSetIR(fn *ir.Func) error {
	for node := range irquery.All(fn) {
		switch node.(type) {
		case *ir.IntLiteral, *ir.FloatLiteral, *ir.Variable, *ir.Load,
			*ir.Neg, *ir.Binary,
			*ir.Block, *ir.Pass, *ir.Foreach, *ir.Store, *ir.StoreMatrix,
			*ir.CallStmt, *ir.Func:
		default:
			return fmterr.Internalf("node %T left after lowering", node)
		}
	}
	return nil
}

// lowerer holds the state shared by the passes to lower one function.
type lowerer struct {
	fn    *ir.Func
	st    *storage.Storage
	names []string
}

func newLowerer(fn *ir.Func, st *storage.Storage) *lowerer {
	return &lowerer{fn: fn, st: st, names: usedNames(fn)}
}

// usedNames returns the names of all the variables of a function.
func usedNames(fn *ir.Func) []string {
	names := ordered.NewSet[string, string]()
	add := func(vars ...*ir.Var) {
		for _, v := range vars {
			names.Add(v.Name, v.Name)
		}
	}
	add(fn.Args...)
	add(fn.Results...)
	for node := range irquery.All(fn) {
		switch nodeT := node.(type) {
		case *ir.VarExpr:
			add(nodeT.V)
		case *ir.AssignStmt:
			add(nodeT.Var)
		case *ir.MapStmt:
			add(nodeT.Results...)
		case *ir.CallStmt:
			add(nodeT.Results...)
		case *ir.Variable:
			names.Add(nodeT.Name, nodeT.Name)
		}
	}
	return names.Slice()
}

// setVar returns the set variable of the function given its name.
func (l *lowerer) setVar(name string) (*ir.Var, error) {
	for _, v := range l.fn.Args {
		if _, ok := v.Typ.(*ir.SetType); ok && v.Name == name {
			return v, nil
		}
	}
	return nil, fmterr.Preconditionf("function %s has no set argument %s", l.fn.Name, name)
}

// mapStmt rewrites the statements of a tree.
// Blocks and loops are rebuilt around the rewritten statements.
func mapStmt(stmt ir.Stmt, f func(ir.Stmt) (ir.Stmt, error)) (ir.Stmt, error) {
	switch stmtT := stmt.(type) {
	case *ir.Block:
		stmts := make([]ir.Stmt, len(stmtT.Stmts))
		for i, s := range stmtT.Stmts {
			var err error
			if stmts[i], err = mapStmt(s, f); err != nil {
				return nil, err
			}
		}
		return &ir.Block{Stmts: flatten(stmts)}, nil
	case *ir.Foreach:
		body, err := mapStmt(stmtT.Body, f)
		if err != nil {
			return nil, err
		}
		return &ir.Foreach{Var: stmtT.Var, Domain: stmtT.Domain, Body: body}, nil
	}
	return f(stmt)
}

// flatten inlines nested blocks.
func flatten(stmts []ir.Stmt) []ir.Stmt {
	var list []ir.Stmt
	for _, stmt := range stmts {
		if block, ok := stmt.(*ir.Block); ok {
			list = append(list, flatten(block.Stmts)...)
			continue
		}
		list = append(list, stmt)
	}
	return list
}

func stmtString(stmt ir.Stmt) string {
	return strings.TrimSpace(sirstring.String(stmt))
}
