// Copyright 2024 The x4c Authors
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

package checker

import (
	"x4c/diag"
	"x4c/build/ir"
	"x4c/internal/ast"
)

// checkHeaderFields enforces that a header type contains only bit-width
// fields and never nests another header or struct (spec.md §3 invariant 2).
func checkHeaderFields(h *ast.HeaderTypeDecl, sink *diag.Sink) {
	for _, f := range h.Fields {
		switch f.Type.(type) {
		case *ast.BitType, *ast.IntType, *ast.VarbitType:
			// A fixed- or variable-width scalar: permitted.
		default:
			sink.Errorf(f.Span, diag.E0007, "header %q field %q must be a bit-width type, not a nested header or struct", h.Name, f.Name)
		}
	}
}

// checkExtractCalls walks node looking for pkt.extract(arg)-shaped calls
// (any call whose callee's final path segment is "extract") and reports
// E0008 when the resolved argument type is not a header.
func checkExtractCalls(node ast.Node, prog *ir.Program, sink *diag.Sink) {
	ast.Walk(node, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		id, ok := call.Fun.(*ast.Ident)
		if !ok || len(id.Path) == 0 || id.Path[len(id.Path)-1] != "extract" {
			return true
		}
		if len(call.Args) == 0 {
			return true
		}
		t, ok := prog.TypeOf(call.Args[0])
		if !ok || t.Kind == ir.KindTypeVar {
			return true
		}
		if t.Kind != ir.KindHeader {
			sink.Errorf(call.Args[0].Pos(), diag.E0008, "extract argument must be a header, got %s", t)
		}
		return true
	})
}

// checkParserAssignmentDiscipline flags a read of an out parameter that
// occurs before any statement in the parser has written to it (E0011).
// Writes are recognized both as plain assignment targets and as arguments
// to calls shaped like pkt.extract(hdr), which write through their
// argument rather than returning a value.
func checkParserAssignmentDiscipline(p *ast.ParserDecl, sink *diag.Sink) {
	outs := make(map[string]bool)
	for i := range p.Params {
		if p.Params[i].Direction == ast.DirOut {
			outs[p.Params[i].Name] = true
		}
	}
	if len(outs) == 0 {
		return
	}
	written := make(map[string]bool)
	for _, l := range p.Locals {
		walkAssignmentDiscipline(l, outs, written, sink)
	}
	for i := range p.States {
		for _, s := range p.States[i].Stmts {
			walkAssignmentDiscipline(s, outs, written, sink)
		}
	}
}

func walkAssignmentDiscipline(s ast.Stmt, outs, written map[string]bool, sink *diag.Sink) {
	switch s := s.(type) {
	case *ast.AssignStmt:
		checkOutRead(s.RHS, outs, written, sink)
		markIfOut(s.LHS, outs, written)
	case *ast.VarDeclStmt:
		if s.Init != nil {
			checkOutRead(s.Init, outs, written, sink)
		}
	case *ast.ExprStmt:
		checkOutCallOrRead(s.X, outs, written, sink)
	case *ast.IfStmt:
		checkOutRead(s.Cond, outs, written, sink)
		walkAssignmentDiscipline(s.Then, outs, written, sink)
		if s.Else != nil {
			walkAssignmentDiscipline(s.Else, outs, written, sink)
		}
	case *ast.BlockStmt:
		for _, inner := range s.Stmts {
			walkAssignmentDiscipline(inner, outs, written, sink)
		}
	case *ast.ReturnStmt:
		if s.Value != nil {
			checkOutRead(s.Value, outs, written, sink)
		}
	}
}

func markIfOut(e ast.Expr, outs, written map[string]bool) {
	id, ok := e.(*ast.Ident)
	if !ok || len(id.Path) == 0 {
		return
	}
	if outs[id.Path[0]] {
		written[id.Path[0]] = true
	}
}

// checkOutCallOrRead treats a simple-identifier argument to a call as a
// write-through rather than a read, since P4 externs like pkt.extract
// populate their argument in place.
func checkOutCallOrRead(e ast.Expr, outs, written map[string]bool, sink *diag.Sink) {
	call, ok := e.(*ast.CallExpr)
	if !ok {
		checkOutRead(e, outs, written, sink)
		return
	}
	for _, a := range call.Args {
		if id, ok := a.(*ast.Ident); ok && len(id.Path) > 0 && outs[id.Path[0]] {
			written[id.Path[0]] = true
			continue
		}
		checkOutRead(a, outs, written, sink)
	}
}

func checkOutRead(e ast.Expr, outs, written map[string]bool, sink *diag.Sink) {
	switch e := e.(type) {
	case *ast.Ident:
		if len(e.Path) == 0 {
			return
		}
		if outs[e.Path[0]] && !written[e.Path[0]] {
			sink.Errorf(e.Span, diag.E0011, "out parameter %q read before write", e.Path[0])
		}
	case *ast.BinaryExpr:
		checkOutRead(e.X, outs, written, sink)
		checkOutRead(e.Y, outs, written, sink)
	case *ast.UnaryExpr:
		checkOutRead(e.X, outs, written, sink)
	case *ast.SliceExpr:
		checkOutRead(e.X, outs, written, sink)
	case *ast.IndexExpr:
		checkOutRead(e.X, outs, written, sink)
		checkOutRead(e.Index, outs, written, sink)
	case *ast.MaskExpr:
		checkOutRead(e.Value, outs, written, sink)
		checkOutRead(e.Mask, outs, written, sink)
	case *ast.CallExpr:
		checkOutCallOrRead(e, outs, written, sink)
	}
}
