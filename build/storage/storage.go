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

// Package storage describes how tensors are laid out in memory.
//
// A storage descriptor maps every tensor-valued variable, and every field of
// a set, to a storage scheme. Lowering passes consult the descriptor to
// compute the offsets of tensor components in flat buffers.
package storage

import (
	"fmt"
	"iter"
	"strings"

	"github.com/gx-org/setir/base/ordered"
	"github.com/gx-org/setir/build/fmterr"
	"github.com/gx-org/setir/build/ir"
	"gopkg.in/yaml.v3"
)

// Kind of storage scheme.
type Kind int

const (
	// Undefined storage.
	Undefined Kind = iota
	// Dense stores components contiguously in row-major order.
	// Set dimensions are sized by the number of elements of the set.
	Dense
	// SetIndexed stores one block per element of a set.
	SetIndexed
	// SystemReduced stores a matrix assembled from the elements of a set:
	// one block per element and per pair of its endpoints.
	SystemReduced
)

var kindNames = map[Kind]string{
	Undefined:     "undefined",
	Dense:         "dense",
	SetIndexed:    "set-indexed",
	SystemReduced: "system-reduced",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns a storage kind given its name.
func ParseKind(s string) (Kind, error) {
	for kind, name := range kindNames {
		if kind != Undefined && name == s {
			return kind, nil
		}
	}
	return Undefined, fmterr.Preconditionf("unknown storage kind %q", s)
}

// UnmarshalYAML decodes a storage kind from its name.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	kind, err := ParseKind(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*k = kind
	return nil
}

// MarshalYAML encodes a storage kind as its name.
func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// TensorStorage is the storage scheme of a tensor.
type TensorStorage struct {
	Kind Kind `yaml:"kind"`
	// Set indexing a SetIndexed tensor,
	// or set assembling a SystemReduced tensor.
	Set string `yaml:"set,omitempty"`
	// Card is the number of endpoints of the elements assembling a
	// SystemReduced tensor.
	Card int `yaml:"card,omitempty"`
}

// NewDense returns a dense storage.
func NewDense() *TensorStorage {
	return &TensorStorage{Kind: Dense}
}

// NewSetIndexed returns a storage indexed by the elements of a set.
func NewSetIndexed(set string) *TensorStorage {
	return &TensorStorage{Kind: SetIndexed, Set: set}
}

// NewSystemReduced returns a storage of a matrix assembled over a set
// whose elements have card endpoints.
func NewSystemReduced(set string, card int) *TensorStorage {
	return &TensorStorage{Kind: SystemReduced, Set: set, Card: card}
}

// Validate checks that the fields required by the kind are set.
func (ts *TensorStorage) Validate() error {
	switch ts.Kind {
	case Dense:
		return nil
	case SetIndexed:
		if ts.Set == "" {
			return fmterr.Preconditionf("%s storage requires a set", ts.Kind)
		}
		return nil
	case SystemReduced:
		if ts.Set == "" || ts.Card <= 0 {
			return fmterr.Preconditionf("%s storage requires a set and a positive cardinality", ts.Kind)
		}
		return nil
	}
	return fmterr.Preconditionf("storage kind %s is not valid", ts.Kind)
}

// String representation of the storage.
func (ts *TensorStorage) String() string {
	switch ts.Kind {
	case SetIndexed:
		return fmt.Sprintf("%s(%s)", ts.Kind, ts.Set)
	case SystemReduced:
		return fmt.Sprintf("%s(%s,%d)", ts.Kind, ts.Set, ts.Card)
	}
	return ts.Kind.String()
}

// Builder adds storage schemes to a descriptor.
type Builder struct {
	tensors *ordered.Map[string, TensorStorage]
}

// NewBuilder returns a builder for an empty descriptor.
func NewBuilder() *Builder {
	return &Builder{tensors: ordered.NewMap[string, TensorStorage]()}
}

// Add the storage of a tensor. The key is the name of a variable or
// <set>.<field> for the field of a set. Adding an existing key replaces
// its storage. The builder stores a copy of ts.
func (b *Builder) Add(key string, ts *TensorStorage) *Builder {
	b.tensors.Store(key, *ts)
	return b
}

// Has returns true if the builder has a storage for a key.
func (b *Builder) Has(key string) bool {
	_, ok := b.tensors.Load(key)
	return ok
}

// Build returns the descriptor.
// Modifying the builder does not modify the descriptor.
func (b *Builder) Build() *Storage {
	return &Storage{tensors: b.tensors.Clone()}
}

// Storage maps tensors to their storage scheme.
// It is read-only: the storage it returns are copies.
type Storage struct {
	tensors *ordered.Map[string, TensorStorage]
}

// Lookup returns the storage given a key.
func (s *Storage) Lookup(key string) (*TensorStorage, bool) {
	ts, ok := s.tensors.Load(key)
	if !ok {
		return nil, false
	}
	return &ts, true
}

// All returns the keys and their storage in the order in which they were added.
func (s *Storage) All() iter.Seq2[string, *TensorStorage] {
	return func(yield func(string, *TensorStorage) bool) {
		for key, ts := range s.tensors.All() {
			if !yield(key, &ts) {
				return
			}
		}
	}
}

// Size returns the number of tensors in the descriptor.
func (s *Storage) Size() int {
	return s.tensors.Size()
}

// KeyOf returns the key of a tensor expression in a descriptor.
// Only variables and fields of set variables have a key.
func KeyOf(expr ir.Expr) (string, bool) {
	switch exprT := expr.(type) {
	case *ir.VarExpr:
		return exprT.V.Name, true
	case *ir.Variable:
		return exprT.Name, true
	case *ir.FieldRead:
		set, ok := exprT.Elem.(*ir.VarExpr)
		if !ok {
			return "", false
		}
		if _, isSet := set.V.Typ.(*ir.SetType); !isSet {
			return "", false
		}
		return set.V.Name + "." + exprT.Field, true
	}
	return "", false
}

// Get returns the storage of a tensor expression.
func (s *Storage) Get(expr ir.Expr) (*TensorStorage, error) {
	key, ok := KeyOf(expr)
	if !ok {
		return nil, fmterr.Preconditionf("expression %s is not a tensor variable or a set field", expr)
	}
	ts, ok := s.Lookup(key)
	if !ok {
		return nil, fmterr.Preconditionf("no storage for tensor %s", key)
	}
	return ts, nil
}

// Override returns a new descriptor with the storage of s replaced
// by the storage of other when both define a key.
func (s *Storage) Override(other *Storage) *Storage {
	b := &Builder{tensors: s.tensors.Clone()}
	for key, ts := range other.All() {
		b.Add(key, ts)
	}
	return b.Build()
}

// String representation of the descriptor: one tensor per line.
func (s *Storage) String() string {
	var b strings.Builder
	for key, ts := range s.All() {
		fmt.Fprintf(&b, "%s: %s\n", key, ts)
	}
	return b.String()
}
