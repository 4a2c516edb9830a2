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

package builder

import (
	"x4c/diag"
	"x4c/internal/ast"
)

// buildStmt resolves every identifier reached from s and, for a
// VarDeclStmt, declares its name in sc. Each BlockStmt opens a fresh nested
// scope (spec.md §4.4 point 1: "each state/action/apply block opens a
// nested scope").
func (b *Builder) buildStmt(sc *scope, typeParams map[string]bool, s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarDeclStmt:
		if s.Init != nil {
			b.elaborateExpr(sc, typeParams, s.Init)
		}
		if !sc.declare(s.Name, s) {
			b.sink.Errorf(s.Span, diag.E0003, "redeclaration of %q", s.Name)
		}
	case *ast.AssignStmt:
		b.elaborateExpr(sc, typeParams, s.LHS)
		b.elaborateExpr(sc, typeParams, s.RHS)
	case *ast.BlockStmt:
		inner := newScope(sc)
		for _, stmt := range s.Stmts {
			b.buildStmt(inner, typeParams, stmt)
		}
	case *ast.IfStmt:
		b.elaborateExpr(sc, typeParams, s.Cond)
		b.buildStmt(sc, typeParams, s.Then)
		if s.Else != nil {
			b.buildStmt(sc, typeParams, s.Else)
		}
	case *ast.ReturnStmt:
		if s.Value != nil {
			b.elaborateExpr(sc, typeParams, s.Value)
		}
	case *ast.ExprStmt:
		b.elaborateExpr(sc, typeParams, s.X)
	case *ast.TransitionStmt:
		b.buildTransition(sc, typeParams, s)
	}
}

func (b *Builder) buildTransition(sc *scope, typeParams map[string]bool, s *ast.TransitionStmt) {
	sel := s.Target.Select
	if sel == nil {
		return
	}
	for _, k := range sel.Keys {
		b.elaborateExpr(sc, typeParams, k)
	}
	for _, c := range sel.Cases {
		for _, p := range c.Patterns {
			b.elaborateExpr(sc, typeParams, p)
		}
	}
}
