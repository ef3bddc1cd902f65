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

// Package sirstring prints IR trees, and Set IR trees in particular,
// as indented text.
//
// The output only depends on the content of the tree. It is used to
// compare lowered functions against golden outputs.
package sirstring

import (
	"fmt"
	"io"
	"strings"

	"github.com/gx-org/setir/base/stringseq"
	"github.com/gx-org/setir/build/fmterr"
	"github.com/gx-org/setir/build/ir"

	irfmt "github.com/gx-org/setir/base/fmt"
)

// Indentation of the bodies of functions and loops.
const Indentation = "  "

type printer struct {
	b   strings.Builder
	err error
}

func (p *printer) line(format string, a ...any) {
	p.b.WriteString(fmt.Sprintf(format, a...))
	p.b.WriteString("\n")
}

func (p *printer) indented(stmt ir.Stmt) {
	sub := &printer{}
	sub.stmt(stmt)
	if sub.err != nil && p.err == nil {
		p.err = sub.err
	}
	p.b.WriteString(irfmt.IndentWith(Indentation, sub.b.String()))
}

func resultsPrefix(results []*ir.Var) string {
	if len(results) == 0 {
		return ""
	}
	return stringseq.JoinStringers(results, ", ") + " = "
}

func (p *printer) stmt(stmt ir.Stmt) {
	switch stmtT := stmt.(type) {
	case *ir.Block:
		for _, s := range stmtT.Stmts {
			p.stmt(s)
		}
	case *ir.Pass:
		p.line("pass")
	case *ir.Foreach:
		p.line("foreach %s in %s:", stmtT.Var.Name, domain(stmtT.Domain))
		p.indented(stmtT.Body)
	case *ir.Store:
		p.line("%s[%s] = %s", stmtT.Buffer.Name, stmtT.Index, stmtT.Value)
	case *ir.StoreMatrix:
		p.line("%s[%s] %s= %s", stmtT.Buffer.Name, stmtT.Index, stmtT.Op, stmtT.Value)
	case *ir.CallStmt:
		p.line("%scall %s(%s)", resultsPrefix(stmtT.Results), stmtT.Callee.Name, stringseq.JoinStringers(stmtT.Args, ", "))
	case *ir.AssignStmt:
		p.line("%s = %s", stmtT.Var.Name, stmtT.Value)
	case *ir.FieldWrite:
		p.line("%s.%s = %s", stmtT.Elem, stmtT.Field, stmtT.Value)
	case *ir.TensorWrite:
		op := "="
		if stmtT.Accumulates() {
			op = stmtT.Op.String() + "="
		}
		p.line("%s[%s] %s %s", stmtT.Tensor, stringseq.JoinStringers(stmtT.Indices, ","), op, stmtT.Value)
	case *ir.MapStmt:
		target := stmtT.Target.String()
		if stmtT.Neighbors != nil {
			target += fmt.Sprintf(" with %s", stmtT.Neighbors)
		}
		p.line("%smap %s to %s reduce %s", resultsPrefix(stmtT.Results), stmtT.Kernel.Name, target, stmtT.Op)
	default:
		if p.err == nil {
			p.err = fmterr.Internalf("cannot print statement %T", stmt)
		}
		p.line("<%T>", stmt)
	}
}

func domain(dom ir.IndexDomain) string {
	if dom.IsSet() {
		return dom.Set.Name
	}
	return fmt.Sprintf("0..%d", dom.Size)
}

func (p *printer) node(node ir.Node) {
	switch nodeT := node.(type) {
	case *ir.Func:
		p.line("%s:", nodeT)
		p.indented(nodeT.Body)
	case ir.Stmt:
		p.stmt(nodeT)
	case ir.Expr:
		p.b.WriteString(nodeT.String())
	default:
		p.err = fmterr.Internalf("cannot print node %T", node)
	}
}

// Print writes the text representation of a node.
func Print(w io.Writer, node ir.Node) error {
	p := &printer{}
	p.node(node)
	if p.err != nil {
		return p.err
	}
	_, err := io.WriteString(w, p.b.String())
	return err
}

// String returns the text representation of a node.
// Expressions are printed on a single line without a trailing newline.
func String(node ir.Node) string {
	p := &printer{}
	p.node(node)
	return p.b.String()
}
