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

package storage

import (
	"github.com/gx-org/setir/build/ir"
	"github.com/gx-org/setir/build/ir/irquery"
)

// Default returns a default storage for all the tensors of the functions
// reachable from a function:
//   - fields of sets are indexed by their set,
//   - vectors over a set are indexed by their set,
//   - matrices over two sets assembled by a map over a set with endpoints
//     are reduced over the system of that set,
//   - any other tensor is dense.
//
// Scalars have no storage.
// If the same name is used in several functions, the first storage is kept.
func Default(fn *ir.Func) *Storage {
	b := NewBuilder()
	for _, f := range irquery.CallTree(fn) {
		assembled := assemblies(f)
		for _, v := range variables(f) {
			addDefault(b, v, assembled[v])
		}
	}
	return b.Build()
}

// assemblies returns the map statements assembling each variable.
func assemblies(fn *ir.Func) map[*ir.Var]*ir.MapStmt {
	assembled := make(map[*ir.Var]*ir.MapStmt)
	for node := range irquery.All(fn) {
		mapStmt, ok := node.(*ir.MapStmt)
		if !ok {
			continue
		}
		for _, res := range mapStmt.Results {
			assembled[res] = mapStmt
		}
	}
	return assembled
}

// variables returns the arguments, results, and locals of a function.
func variables(fn *ir.Func) []*ir.Var {
	vars := append(append([]*ir.Var{}, fn.Args...), fn.Results...)
	for node := range irquery.All(fn) {
		switch nodeT := node.(type) {
		case *ir.AssignStmt:
			vars = append(vars, nodeT.Var)
		case *ir.MapStmt:
			vars = append(vars, nodeT.Results...)
		case *ir.CallStmt:
			vars = append(vars, nodeT.Results...)
		}
	}
	return vars
}

func setDims(tensor *ir.TensorType) []*ir.Var {
	var sets []*ir.Var
	for _, dim := range tensor.Dims {
		if dim.IsSet() {
			sets = append(sets, dim.Set)
		}
	}
	return sets
}

func addDefault(b *Builder, v *ir.Var, assembledBy *ir.MapStmt) {
	switch typT := v.Typ.(type) {
	case *ir.SetType:
		for _, field := range typT.Element.Fields {
			key := v.Name + "." + field.Name
			if !b.Has(key) {
				b.Add(key, NewSetIndexed(v.Name))
			}
		}
	case *ir.TensorType:
		if b.Has(v.Name) {
			return
		}
		b.Add(v.Name, defaultTensor(typT, assembledBy))
	}
}

func defaultTensor(tensor *ir.TensorType, assembledBy *ir.MapStmt) *TensorStorage {
	sets := setDims(tensor)
	switch {
	case len(tensor.Dims) == 1 && len(sets) == 1:
		return NewSetIndexed(sets[0].Name)
	case len(tensor.Dims) == 2 && len(sets) == 2 && assembledBy != nil:
		target, ok := assembledBy.Target.(*ir.VarExpr)
		if !ok {
			break
		}
		setType, ok := target.V.Typ.(*ir.SetType)
		if !ok || setType.Card() == 0 {
			break
		}
		return NewSystemReduced(target.V.Name, setType.Card())
	}
	return NewDense()
}
