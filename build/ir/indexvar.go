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

package ir

import (
	"fmt"
	"strconv"
)

type (
	// IndexDomain is the range of values an index takes:
	// either the elements of a set or a fixed range [0, Size).
	IndexDomain struct {
		Set  *Var
		Size int
	}

	// IndexRole is the role of an index variable in an index expression.
	IndexRole int

	// ReductionOp combines values mapped to the same destination.
	ReductionOp int

	// IndexVar is an index variable of an index expression.
	// A free variable contributes to the shape of the result.
	// A reduction variable is summed over (or combined with its operator)
	// and never escapes the index expression introducing it.
	IndexVar struct {
		Name   string
		Domain IndexDomain
		Role   IndexRole
		Op     ReductionOp
	}

	// IndexVarKey identifies an index variable.
	IndexVarKey struct {
		Name string
		Role IndexRole
	}
)

const (
	// Free index variable.
	Free IndexRole = iota
	// Reduction index variable.
	Reduction
)

const (
	// NoReduction means that values are overwritten.
	NoReduction ReductionOp = iota
	// Sum adds values together.
	Sum
)

// SetDomain returns the domain of the elements of a set.
func SetDomain(set *Var) IndexDomain {
	return IndexDomain{Set: set}
}

// RangeDomain returns the domain [0, size).
func RangeDomain(size int) IndexDomain {
	return IndexDomain{Size: size}
}

// IsSet returns true if the domain ranges over the elements of a set.
func (d IndexDomain) IsSet() bool { return d.Set != nil }

// Equal returns true if two domains range over the same values.
func (d IndexDomain) Equal(other IndexDomain) bool {
	return d.Set == other.Set && d.Size == other.Size
}

// String representation of the domain.
func (d IndexDomain) String() string {
	if d.Set != nil {
		return d.Set.Name
	}
	return strconv.Itoa(d.Size)
}

// String returns the name of the role.
func (r IndexRole) String() string {
	switch r {
	case Free:
		return "free"
	case Reduction:
		return "reduction"
	}
	return "invalid"
}

// String returns the symbol of the reduction operator.
func (op ReductionOp) String() string {
	switch op {
	case NoReduction:
		return "="
	case Sum:
		return "+"
	}
	return "invalid"
}

// NewFreeVar returns a new free index variable.
func NewFreeVar(name string, dom IndexDomain) *IndexVar {
	return &IndexVar{Name: name, Domain: dom, Role: Free}
}

// NewReductionVar returns a new reduction index variable
// combining values with op.
func NewReductionVar(name string, dom IndexDomain, op ReductionOp) *IndexVar {
	return &IndexVar{Name: name, Domain: dom, Role: Reduction, Op: op}
}

// Key returns the identity of the index variable.
func (iv *IndexVar) Key() IndexVarKey {
	return IndexVarKey{Name: iv.Name, Role: iv.Role}
}

// IsFree returns true if the variable is a free variable.
func (iv *IndexVar) IsFree() bool { return iv.Role == Free }

// IsReduction returns true if the variable is a reduction variable.
func (iv *IndexVar) IsReduction() bool { return iv.Role == Reduction }

// String representation of the index variable.
func (iv *IndexVar) String() string {
	if iv.Role == Reduction {
		return fmt.Sprintf("%s%s", iv.Op, iv.Name)
	}
	return iv.Name
}
