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
	"fmt"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/setir/base/stringseq"
	"github.com/gx-org/setir/build/ir/irkind"
)

// ----------------------------------------------------------------------------
// Types definition.
type (
	// Type of a value.
	Type interface {
		Node

		// Kind of the type.
		Kind() irkind.Kind

		// Equal returns true if other is the same type.
		Equal(Type) bool

		// String representation of the type.
		String() string
	}

	// ScalarType is the type of an integer or a floating point number.
	ScalarType struct {
		DType dtype.DataType
	}

	// TensorType is the type of a tensor.
	// Each dimension of a tensor is either a set or a fixed range.
	// The components of a tensor are either scalars of the component type
	// or blocks, that is tensors themselves.
	TensorType struct {
		Component *ScalarType
		Dims      []IndexDomain
		// Block is the type of the tensor components.
		// nil means that components are scalars.
		Block *TensorType
	}

	// Field of an element.
	Field struct {
		Name string
		Typ  Type
	}

	// ElementType is a record of named fields.
	ElementType struct {
		Name   string
		Fields []*Field
	}

	// SetType is the type of a collection of elements.
	// Elements of a set with endpoints relate elements of the endpoint sets,
	// for example a set of springs with two points each.
	SetType struct {
		Element   *ElementType
		Endpoints []*Var
	}

	// TupleType is a fixed-size collection of elements of the same type.
	TupleType struct {
		Element *ElementType
		Size    int
	}
)

var (
	_ Type = (*ScalarType)(nil)
	_ Type = (*TensorType)(nil)
	_ Type = (*ElementType)(nil)
	_ Type = (*SetType)(nil)
	_ Type = (*TupleType)(nil)
)

var (
	intType   = &ScalarType{DType: irkind.IntType}
	floatType = &ScalarType{DType: irkind.FloatType}
)

// Int returns the integer scalar type.
func Int() *ScalarType { return intType }

// Float returns the floating point scalar type.
func Float() *ScalarType { return floatType }

func (*ScalarType) node() {}

// Kind of the type.
func (s *ScalarType) Kind() irkind.Kind { return irkind.Scalar }

// Equal returns true if other is the same type.
func (s *ScalarType) Equal(other Type) bool {
	otherT, ok := other.(*ScalarType)
	return ok && s.DType == otherT.DType
}

// IsInt returns true if the scalar is an integer.
func (s *ScalarType) IsInt() bool { return s.DType == irkind.IntType }

// String representation of the type.
func (s *ScalarType) String() string { return irkind.DTypeString(s.DType) }

func (*TensorType) node() {}

// Kind of the type.
func (s *TensorType) Kind() irkind.Kind { return irkind.Tensor }

// Order returns the number of dimensions of the tensor, ignoring blocks.
func (s *TensorType) Order() int { return len(s.Dims) }

// BlockType returns the type of the tensor components:
// the block type if the tensor is blocked, the component type otherwise.
func (s *TensorType) BlockType() Type {
	if s.Block != nil {
		return s.Block
	}
	return s.Component
}

// BlockDims returns the dimensions of the blocks.
// Returns nil if the tensor is not blocked.
func (s *TensorType) BlockDims() []IndexDomain {
	if s.Block == nil {
		return nil
	}
	return s.Block.Dims
}

// BlockSize returns the number of scalars in one block.
// The block dimensions need to be fixed ranges.
func (s *TensorType) BlockSize() int {
	size := 1
	for _, dim := range s.BlockDims() {
		size *= dim.Size
	}
	return size
}

// Equal returns true if other is the same type.
func (s *TensorType) Equal(other Type) bool {
	otherT, ok := other.(*TensorType)
	if !ok {
		return false
	}
	if !s.Component.Equal(otherT.Component) {
		return false
	}
	if len(s.Dims) != len(otherT.Dims) {
		return false
	}
	for i, dim := range s.Dims {
		if !dim.Equal(otherT.Dims[i]) {
			return false
		}
	}
	if (s.Block == nil) != (otherT.Block == nil) {
		return false
	}
	return s.Block == nil || s.Block.Equal(otherT.Block)
}

// String representation of the type.
func (s *TensorType) String() string {
	return fmt.Sprintf("tensor[%s](%s)", stringseq.JoinStringers(s.Dims, ","), s.BlockType())
}

func (*ElementType) node() {}

// Kind of the type.
func (s *ElementType) Kind() irkind.Kind { return irkind.Element }

// Equal returns true if other is the same type.
// Element types are nominal.
func (s *ElementType) Equal(other Type) bool {
	otherT, ok := other.(*ElementType)
	return ok && s.Name == otherT.Name
}

// FieldByName returns a field given its name or nil if the field does not exist.
func (s *ElementType) FieldByName(name string) *Field {
	for _, field := range s.Fields {
		if field.Name == name {
			return field
		}
	}
	return nil
}

// String representation of the type.
func (s *ElementType) String() string { return s.Name }

func (*SetType) node() {}

// Kind of the type.
func (s *SetType) Kind() irkind.Kind { return irkind.Set }

// Card returns the number of endpoints of each element of the set.
func (s *SetType) Card() int { return len(s.Endpoints) }

// Equal returns true if other is the same type.
func (s *SetType) Equal(other Type) bool {
	otherT, ok := other.(*SetType)
	if !ok || !s.Element.Equal(otherT.Element) || len(s.Endpoints) != len(otherT.Endpoints) {
		return false
	}
	for i, ep := range s.Endpoints {
		if ep != otherT.Endpoints[i] {
			return false
		}
	}
	return true
}

// String representation of the type.
func (s *SetType) String() string {
	if len(s.Endpoints) == 0 {
		return fmt.Sprintf("set{%s}", s.Element)
	}
	return fmt.Sprintf("set{%s}(%s)", s.Element, stringseq.JoinStringers(s.Endpoints, ","))
}

func (*TupleType) node() {}

// Kind of the type.
func (s *TupleType) Kind() irkind.Kind { return irkind.Tuple }

// Equal returns true if other is the same type.
func (s *TupleType) Equal(other Type) bool {
	otherT, ok := other.(*TupleType)
	return ok && s.Size == otherT.Size && s.Element.Equal(otherT.Element)
}

// String representation of the type.
func (s *TupleType) String() string { return fmt.Sprintf("(%s*%d)", s.Element, s.Size) }

// IsScalar returns true if a type is a scalar or a tensor with no dimension
// and no block.
func IsScalar(typ Type) bool {
	switch typT := typ.(type) {
	case *ScalarType:
		return true
	case *TensorType:
		return len(typT.Dims) == 0 && (typT.Block == nil || IsScalar(typT.Block))
	}
	return false
}

// IsBlocked returns true if a type is a tensor whose components are not scalars.
func IsBlocked(typ Type) bool {
	tensor, ok := typ.(*TensorType)
	if !ok {
		return false
	}
	return !IsScalar(tensor.BlockType())
}

// ComponentType returns the scalar type of the values stored by a type.
// Returns nil if the type does not store scalars.
func ComponentType(typ Type) *ScalarType {
	switch typT := typ.(type) {
	case *ScalarType:
		return typT
	case *TensorType:
		return typT.Component
	}
	return nil
}

// FieldTensorType returns the type of a set field read as a tensor:
// a tensor indexed by the set whose components have the type of the field.
func FieldTensorType(set *Var, field Type) *TensorType {
	tensor := &TensorType{
		Component: ComponentType(field),
		Dims:      []IndexDomain{{Set: set}},
	}
	if fieldT, ok := field.(*TensorType); ok && len(fieldT.Dims) > 0 {
		tensor.Block = fieldT
	}
	return tensor
}
