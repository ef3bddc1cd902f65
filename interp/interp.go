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

// Package interp evaluates lowered functions on host data.
//
// The interpreter executes Set IR trees
// (see [github.com/gx-org/setir/build/ir]) as a native function
// would: arguments are passed as the buffers described by
// [github.com/gx-org/setir/build/handoff]. All values are
// represented as float64, including sizes and positions.
package interp

import (
	"github.com/gx-org/setir/build/fmterr"
	"github.com/gx-org/setir/build/handoff"
	"github.com/gx-org/setir/build/ir"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// MaxCallDepth is the default maximum number of nested calls.
const MaxCallDepth = 256

// Interpreter runs lowered functions.
type Interpreter struct {
	funcs    map[string]*ir.Func
	maxDepth int
}

// New returns an interpreter running a set of lowered functions.
// Calls between functions are resolved by name.
func New(funcs ...*ir.Func) *Interpreter {
	itp := &Interpreter{
		funcs:    make(map[string]*ir.Func),
		maxDepth: MaxCallDepth,
	}
	for _, fn := range funcs {
		itp.funcs[fn.Name] = fn
	}
	return itp
}

// checkBindings checks that all the parameters of a function are bound.
// Results do not need to be bound.
func checkBindings(fn *ir.Func, env *Env) error {
	params, err := handoff.Params(fn)
	if err != nil {
		return err
	}
	var errs error
	for _, param := range params {
		switch {
		case param.Kind == handoff.Size:
			if _, ok := env.Size(param.Name); !ok {
				errs = multierr.Append(errs, fmterr.Preconditionf("set %s not bound", param.Name))
			}
		case !param.Result:
			if _, ok := env.Buffer(param.Name); !ok {
				errs = multierr.Append(errs, fmterr.Preconditionf("buffer %s not bound", param.Name))
			}
		}
	}
	return errs
}

// Run a function given its name.
// Results are written in the environment.
func (itp *Interpreter) Run(name string, env *Env) error {
	fn, ok := itp.funcs[name]
	if !ok {
		return fmterr.Preconditionf("function %s not found", name)
	}
	if err := checkBindings(fn, env); err != nil {
		return fmterr.PrefixWith("cannot run %s: ", name)(err)
	}
	log.Debugf("running %s", name)
	ctx := &context{itp: itp, env: env}
	return ctx.execStmt(newFuncFrame(name, nil, nil), fn.Body)
}

type context struct {
	itp   *Interpreter
	env   *Env
	depth int
}

func (ctx *context) call(fr *frame, call *ir.CallStmt) error {
	callee, ok := ctx.itp.funcs[call.Callee.Name]
	if !ok {
		return fr.errorf("function %s not found", call.Callee.Name)
	}
	if len(callee.Args) != len(call.Args) || len(callee.Results) != len(call.Results) {
		return fr.errorf("call to %s with %d arguments and %d results but want %d and %d", callee.Name, len(call.Args), len(call.Results), len(callee.Args), len(callee.Results))
	}
	if ctx.depth >= ctx.itp.maxDepth {
		return fr.errorf("maximum call depth %d reached", ctx.itp.maxDepth)
	}
	aliases := make(map[string]binding)
	for i, arg := range call.Args {
		ref, ok := arg.(*ir.Variable)
		if !ok {
			return fmterr.Internalf("argument %s of call to %s has not been lowered", arg, callee.Name)
		}
		aliases[callee.Args[i].Name] = ctx.resolveArg(fr, ref.Name)
	}
	for i, res := range call.Results {
		aliases[callee.Results[i].Name] = fr.fn.resolve(ctx.env, res.Name)
	}
	ctx.depth++
	defer func() { ctx.depth-- }()
	return ctx.execStmt(newFuncFrame(callee.Name, aliases, NewEnv()), callee.Body)
}

// resolveArg returns the binding of a call argument.
// Sets are bound to their size.
func (ctx *context) resolveArg(fr *frame, name string) binding {
	if b := fr.fn.resolveSize(ctx.env, name); ctx.isSet(b) {
		return b
	}
	return fr.fn.resolve(ctx.env, name)
}

func (ctx *context) isSet(b binding) bool {
	_, ok := b.env.Size(b.name)
	return ok
}
