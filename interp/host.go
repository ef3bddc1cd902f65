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
	"golang.org/x/exp/constraints"
)

// HostSet is a set of elements stored in host memory.
type HostSet struct {
	// Size is the number of elements in the set.
	Size int
	// Fields maps field names to the values of the field for all elements.
	// Blocked fields store the components of each element contiguously.
	Fields map[string][]float64
	// Endpoints stores, for each element, the positions of its endpoints
	// in their own set.
	Endpoints []int32
}

// Env binds the parameters of a function to host buffers.
//
// Buffers are keyed by the name of their parameter. A set binds one size
// and one buffer per field. Buffers written by a function grow as needed.
type Env struct {
	sizes   map[string]int
	buffers map[string][]float64
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{
		sizes:   make(map[string]int),
		buffers: make(map[string][]float64),
	}
}

// BindSet binds a set to a name.
// Buffers of the fields are shared with the set.
func (env *Env) BindSet(name string, set *HostSet) {
	env.sizes[name] = set.Size
	for field, vals := range set.Fields {
		env.buffers[name+"."+field] = vals
	}
	if len(set.Endpoints) > 0 {
		env.buffers[name+".endpoints"] = toFloats(set.Endpoints)
	}
}

// BindScalar binds a scalar to a name.
func (env *Env) BindScalar(name string, val float64) {
	env.buffers[name] = []float64{val}
}

// BindTensor binds the components of a tensor to a name.
// The buffer is shared with the caller.
func (env *Env) BindTensor(name string, vals []float64) {
	env.buffers[name] = vals
}

// Buffer returns the buffer bound to a name.
func (env *Env) Buffer(name string) ([]float64, bool) {
	buf, ok := env.buffers[name]
	return buf, ok
}

// Scalar returns the value of a scalar bound to a name.
func (env *Env) Scalar(name string) (float64, error) {
	buf, ok := env.buffers[name]
	if !ok || len(buf) == 0 {
		return 0, fmterr.Preconditionf("no scalar %s", name)
	}
	return buf[0], nil
}

// Size returns the number of elements of a set bound to a name.
func (env *Env) Size(name string) (int, bool) {
	size, ok := env.sizes[name]
	return size, ok
}

// Field returns the values of a field of a set.
func (env *Env) Field(set, field string) ([]float64, bool) {
	return env.Buffer(set + "." + field)
}

func (env *Env) load(name string, index int) (float64, error) {
	buf, ok := env.buffers[name]
	if !ok {
		return 0, fmterr.Preconditionf("buffer %s not bound", name)
	}
	if index < 0 || index >= len(buf) {
		return 0, fmterr.Preconditionf("index %d out of bounds [0,%d) in buffer %s", index, len(buf), name)
	}
	return buf[index], nil
}

func (env *Env) store(name string, index int, val float64, accumulate bool) error {
	if index < 0 {
		return fmterr.Preconditionf("negative index %d in buffer %s", index, name)
	}
	buf := env.buffers[name]
	if index >= len(buf) {
		buf = append(buf, make([]float64, index+1-len(buf))...)
		env.buffers[name] = buf
	}
	if accumulate {
		buf[index] += val
	} else {
		buf[index] = val
	}
	return nil
}

func toFloats[T constraints.Integer | constraints.Float](xs []T) []float64 {
	fs := make([]float64, len(xs))
	for i, x := range xs {
		fs[i] = float64(x)
	}
	return fs
}

// toInt converts a value computed by the interpreter to an integer.
func toInt[T constraints.Integer](x float64) (T, error) {
	i := T(x)
	if float64(i) != x {
		return 0, fmterr.Preconditionf("index %g is not an integer", x)
	}
	return i, nil
}
