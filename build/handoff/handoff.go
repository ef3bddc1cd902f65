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

// Package handoff computes the parameters of lowered functions
// as seen by a native code generator.
//
// Every scalar or tensor argument is passed as a pointer to its buffer.
// Every set argument is passed as its number of elements followed by one
// pointer per field, named <set>.<field>, and, for sets with endpoints,
// a pointer to the positions of the endpoints named <set>.endpoints.
// Elements and tuples cannot be passed to native code.
package handoff

import (
	"fmt"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/setir/build/fmterr"
	"github.com/gx-org/setir/build/ir"
	"github.com/gx-org/setir/build/ir/irkind"
	"go.uber.org/multierr"
)

// ParamKind is the kind of a native parameter.
type ParamKind int

const (
	// Size is a number of elements passed by value.
	Size ParamKind = iota
	// Pointer is a pointer to a buffer.
	Pointer
)

// IndexType is the data type of sizes and endpoint positions.
const IndexType = dtype.Int32

// Param is a parameter of a native function.
type Param struct {
	Name  string
	Kind  ParamKind
	DType dtype.DataType
	// Result is true if the parameter stores a result of the function.
	Result bool
}

// ElementSize returns the size in bytes of the value, or of one component
// of the buffer, passed by the parameter.
func (p Param) ElementSize() int {
	return dtype.Sizeof(p.DType)
}

// String representation of the parameter.
func (p Param) String() string {
	dt := irkind.DTypeString(p.DType)
	s := fmt.Sprintf("%s %s", p.Name, dt)
	if p.Kind == Pointer {
		s = fmt.Sprintf("%s *%s", p.Name, dt)
	}
	if p.Result {
		s += " (result)"
	}
	return s
}

// ScalarTypeOf returns the scalar type of a parameter data type.
func ScalarTypeOf(dt dtype.DataType) (*ir.ScalarType, error) {
	switch dt {
	case irkind.IntType:
		return ir.Int(), nil
	case irkind.FloatType:
		return ir.Float(), nil
	}
	return nil, fmterr.Internalf("data type %s has no scalar type", dt)
}

func varParams(v *ir.Var, result bool) ([]Param, error) {
	switch typT := v.Typ.(type) {
	case *ir.ScalarType:
		return []Param{{Name: v.Name, Kind: Pointer, DType: typT.DType, Result: result}}, nil
	case *ir.TensorType:
		return []Param{{Name: v.Name, Kind: Pointer, DType: typT.Component.DType, Result: result}}, nil
	case *ir.SetType:
		params := []Param{{Name: v.Name, Kind: Size, DType: IndexType, Result: result}}
		for _, field := range typT.Element.Fields {
			comp := ir.ComponentType(field.Typ)
			if comp == nil {
				return nil, fmterr.Unsupportedf("field %s.%s of type %s", v.Name, field.Name, field.Typ)
			}
			params = append(params, Param{
				Name:   v.Name + "." + field.Name,
				Kind:   Pointer,
				DType:  comp.DType,
				Result: result,
			})
		}
		if typT.Card() > 0 {
			params = append(params, Param{
				Name:   v.Name + ".endpoints",
				Kind:   Pointer,
				DType:  IndexType,
				Result: result,
			})
		}
		return params, nil
	case *ir.ElementType, *ir.TupleType:
		return nil, fmterr.Preconditionf("%s of type %s cannot be passed to native code", v.Name, v.Typ)
	}
	return nil, fmterr.Internalf("%s has type %T of unknown kind", v.Name, v.Typ)
}

// Params returns the native parameters of a function: the parameters of
// the arguments followed by the parameters of the results. Results with the
// same name as an argument share the parameters of the argument.
// All the arguments and results which cannot be passed are reported.
func Params(fn *ir.Func) ([]Param, error) {
	var params []Param
	var errs error
	args := make(map[string]bool)
	for _, arg := range fn.Args {
		args[arg.Name] = true
		argParams, err := varParams(arg, false)
		errs = multierr.Append(errs, err)
		params = append(params, argParams...)
	}
	for _, res := range fn.Results {
		if args[res.Name] {
			continue
		}
		resParams, err := varParams(res, true)
		errs = multierr.Append(errs, err)
		params = append(params, resParams...)
	}
	if errs != nil {
		return nil, fmterr.PrefixWith("parameters of %s: ", fn.Name)(errs)
	}
	return params, nil
}
