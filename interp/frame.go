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
	"strings"

	"github.com/gx-org/setir/build/fmterr"
)

// frame stores the values of loop variables.
type frame struct {
	fn     *funcFrame
	parent *frame
	vars   map[string]int
}

// binding is a buffer or a size in an environment.
type binding struct {
	env  *Env
	name string
}

// funcFrame maps the parameters of a function to the names bound
// in the environment of its caller. Other buffers written by the
// function are stored in locals, which is nil for the function
// called from the host.
type funcFrame struct {
	name    string
	aliases map[string]binding
	locals  *Env
}

func newFuncFrame(name string, aliases map[string]binding, locals *Env) *frame {
	return &frame{
		fn:   &funcFrame{name: name, aliases: aliases, locals: locals},
		vars: make(map[string]int),
	}
}

func (fr *frame) newLoopFrame(name string, val int) *frame {
	return &frame{
		fn:     fr.fn,
		parent: fr,
		vars:   map[string]int{name: val},
	}
}

func (fr *frame) find(name string) (int, bool) {
	for f := fr; f != nil; f = f.parent {
		if val, ok := f.vars[name]; ok {
			return val, true
		}
	}
	return 0, false
}

// resolve returns the binding of a name of the function. Names of set
// fields are resolved using the binding of their set.
func (fn *funcFrame) resolve(global *Env, name string) binding {
	if b, ok := fn.aliases[name]; ok {
		return b
	}
	if set, field, found := strings.Cut(name, "."); found {
		if b, ok := fn.aliases[set]; ok {
			return binding{env: b.env, name: b.name + "." + field}
		}
	}
	if fn.locals != nil {
		return binding{env: fn.locals, name: name}
	}
	return binding{env: global, name: name}
}

// resolveSize returns the binding of a set size.
// Sizes are never local to a function.
func (fn *funcFrame) resolveSize(global *Env, name string) binding {
	if b, ok := fn.aliases[name]; ok {
		return b
	}
	return binding{env: global, name: name}
}

func (fr *frame) errorf(format string, a ...any) error {
	return fmterr.PrefixWith("%s: ", fr.fn.name)(fmterr.Preconditionf(format, a...))
}
