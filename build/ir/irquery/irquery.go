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

// Package irquery answers structural questions about IR trees.
//
// All queries are built on a lazy pre-order traversal of the tree.
// Existence queries stop the traversal at the first match.
package irquery

import (
	"iter"

	baseiter "github.com/gx-org/setir/base/iter"
	"github.com/gx-org/setir/base/ordered"
	"github.com/gx-org/setir/build/fmterr"
	"github.com/gx-org/setir/build/ir"
)

func asNodes[T ir.Node](list ...T) []ir.Node {
	var children []ir.Node
	for _, node := range list {
		children = append(children, node)
	}
	return children
}

// children returns the children of a node in evaluation order.
// Types, variables, and callee bodies are not children.
func children(node ir.Node) []ir.Node {
	switch nodeT := node.(type) {
	case *ir.Func:
		return []ir.Node{nodeT.Body}
	case *ir.IntLiteral, *ir.FloatLiteral, *ir.Variable, *ir.VarExpr, *ir.Pass:
		return nil
	case *ir.FieldRead:
		return []ir.Node{nodeT.Elem}
	case *ir.TupleRead:
		return []ir.Node{nodeT.Tuple}
	case *ir.SetElement:
		return []ir.Node{nodeT.Set, nodeT.Index}
	case *ir.IndexedTensor:
		return []ir.Node{nodeT.Tensor}
	case *ir.IndexExpr:
		return []ir.Node{nodeT.Value}
	case *ir.TensorRead:
		return append([]ir.Node{nodeT.Tensor}, asNodes(nodeT.Indices...)...)
	case *ir.Neg:
		return []ir.Node{nodeT.X}
	case *ir.Binary:
		return []ir.Node{nodeT.X, nodeT.Y}
	case *ir.Load:
		return []ir.Node{nodeT.Buffer, nodeT.Index}
	case *ir.AssignStmt:
		return []ir.Node{nodeT.Value}
	case *ir.FieldWrite:
		return []ir.Node{nodeT.Elem, nodeT.Value}
	case *ir.TensorWrite:
		list := append([]ir.Node{nodeT.Tensor}, asNodes(nodeT.Indices...)...)
		return append(list, nodeT.Value)
	case *ir.CallStmt:
		return asNodes(nodeT.Args...)
	case *ir.MapStmt:
		if nodeT.Neighbors == nil {
			return []ir.Node{nodeT.Target}
		}
		return []ir.Node{nodeT.Target, nodeT.Neighbors}
	case *ir.Block:
		return asNodes(nodeT.Stmts...)
	case *ir.Foreach:
		return []ir.Node{nodeT.Var, nodeT.Body}
	case *ir.Store:
		return []ir.Node{nodeT.Buffer, nodeT.Index, nodeT.Value}
	case *ir.StoreMatrix:
		return []ir.Node{nodeT.Buffer, nodeT.Index, nodeT.Value}
	}
	panic(fmterr.Internalf("cannot traverse node type %T", node))
}

func walk(node ir.Node, yield func(ir.Node) bool) bool {
	if !yield(node) {
		return false
	}
	for _, child := range children(node) {
		if !walk(child, yield) {
			return false
		}
	}
	return true
}

// All returns a pre-order sequence of all the nodes of a tree,
// starting with the root.
func All(root ir.Node) iter.Seq[ir.Node] {
	return func(yield func(ir.Node) bool) {
		walk(root, yield)
	}
}

// Walk calls visit on every node of a tree in pre-order
// until visit returns false.
func Walk(root ir.Node, visit func(ir.Node) bool) {
	walk(root, visit)
}

// IndexedTensors returns all the indexed tensors of a tree.
func IndexedTensors(root ir.Node) iter.Seq[*ir.IndexedTensor] {
	return baseiter.OfType[*ir.IndexedTensor](All(root))
}

// IndexExprs returns all the index expressions of a tree.
func IndexExprs(root ir.Node) iter.Seq[*ir.IndexExpr] {
	return baseiter.OfType[*ir.IndexExpr](All(root))
}

func indexVars(root ir.Node, role ir.IndexRole) iter.Seq[*ir.IndexVar] {
	return func(yield func(*ir.IndexVar) bool) {
		for it := range IndexedTensors(root) {
			for _, iv := range it.IndexVars {
				if iv.Role != role {
					continue
				}
				if !yield(iv) {
					return
				}
			}
		}
	}
}

func dedup(seq iter.Seq[*ir.IndexVar]) []*ir.IndexVar {
	added := ordered.NewSet[ir.IndexVarKey, *ir.IndexVar]()
	for iv := range seq {
		added.Add(iv.Key(), iv)
	}
	return added.Slice()
}

// FreeVars returns the free index variables accessing tensors in a tree.
// Variables are returned once, in the order in which they are first encountered.
func FreeVars(root ir.Node) []*ir.IndexVar {
	return dedup(indexVars(root, ir.Free))
}

// ReductionVars returns the reduction index variables accessing tensors in a tree.
// Variables are returned once, in the order in which they are first encountered.
func ReductionVars(root ir.Node) []*ir.IndexVar {
	return dedup(indexVars(root, ir.Reduction))
}

// ContainsFreeVar returns true if a tensor is accessed with a free index variable.
func ContainsFreeVar(root ir.Node) bool {
	_, found := baseiter.First(indexVars(root, ir.Free))
	return found
}

// ContainsReductionVar returns true if a tensor is accessed with a reduction index variable.
func ContainsReductionVar(root ir.Node) bool {
	_, found := baseiter.First(indexVars(root, ir.Reduction))
	return found
}

// IsFlattened returns true if a tree contains at most one index expression.
func IsFlattened(root ir.Node) bool {
	n := 0
	for range IndexExprs(root) {
		n++
		if n > 1 {
			return false
		}
	}
	return true
}

// IsBlocked returns true if a tensor with non-scalar blocks is accessed in a tree.
func IsBlocked(root ir.Node) bool {
	_, found := baseiter.First(baseiter.Filter(IndexedTensors(root), func(it *ir.IndexedTensor) bool {
		return ir.IsBlocked(it.Tensor.Type())
	}))
	return found
}

func callees(fn *ir.Func) iter.Seq[*ir.Func] {
	return func(yield func(*ir.Func) bool) {
		for node := range All(fn) {
			var callee *ir.Func
			switch nodeT := node.(type) {
			case *ir.CallStmt:
				callee = nodeT.Callee
			case *ir.MapStmt:
				callee = nodeT.Kernel
			default:
				continue
			}
			if !yield(callee) {
				return
			}
		}
	}
}

// CallTree returns the functions reachable from a function, including itself.
//
// A function is listed before the functions it calls and each function
// is listed once. A function called by two functions is listed after the
// first caller only, so callees are not guaranteed to precede or follow
// all their callers.
func CallTree(fn *ir.Func) []*ir.Func {
	visited := ordered.NewSet[*ir.Func, *ir.Func]()
	var visit func(*ir.Func)
	visit = func(fn *ir.Func) {
		if !visited.Add(fn, fn) {
			return
		}
		for callee := range callees(fn) {
			visit(callee)
		}
	}
	visit(fn)
	return visited.Slice()
}
