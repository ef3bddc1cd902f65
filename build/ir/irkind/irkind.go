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

// Package irkind defines kinds for the tensor intermediate representation (IR).
package irkind

import "github.com/gx-org/backend/dtype"

// Kind of a type.
type Kind uint

// Kinds of types. The set is closed: analyses switching over a kind treat
// any other value as an internal error.
const (
	Invalid Kind = iota

	// Scalar is an integer or floating point number.
	Scalar
	// Tensor is a tensor of scalars, possibly made of blocks.
	Tensor
	// Element is a record of named fields.
	Element
	// Set is a collection of elements of the same type.
	Set
	// Tuple is a fixed-size collection of elements.
	Tuple

	// Max value for a Kind constant.
	Max
)

// String returns a string representation of a kind.
func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Tensor:
		return "tensor"
	case Element:
		return "element"
	case Set:
		return "set"
	case Tuple:
		return "tuple"
	}
	return "invalid"
}

// IsValid returns true if the kind belongs to the closed set of kinds.
func IsValid(k Kind) bool {
	return k > Invalid && k < Max
}

// Data types of scalars.
const (
	// IntType is the data type of integer scalars.
	IntType = dtype.Int32
	// FloatType is the data type of floating point scalars.
	FloatType = dtype.Float64
)

// DTypeFromString returns a scalar data type given an identifier.
// It returns dtype.Invalid if the identifier is not a scalar type.
func DTypeFromString(ident string) dtype.DataType {
	switch ident {
	case "int":
		return IntType
	case "float":
		return FloatType
	default:
		return dtype.Invalid
	}
}

// DTypeString returns the identifier of a scalar data type.
func DTypeString(dt dtype.DataType) string {
	switch dt {
	case IntType:
		return "int"
	case FloatType:
		return "float"
	default:
		return "invalid"
	}
}

// IsSupportedDType returns true if the data type can be used by a scalar.
func IsSupportedDType(dt dtype.DataType) bool {
	return dt == IntType || dt == FloatType
}
