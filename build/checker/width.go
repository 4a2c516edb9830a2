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
	"x4c/internal/token"
)

// checkWidths walks node applying the width law (spec.md §8 property 7) to
// every binary operation and the bounds rule to every slice.
func checkWidths(node ast.Node, prog *ir.Program, sink *diag.Sink) {
	ast.Walk(node, func(n ast.Node) bool {
		switch e := n.(type) {
		case *ast.BinaryExpr:
			checkBinaryWidth(e, prog, sink)
		case *ast.SliceExpr:
			checkSliceBounds(e, prog, sink)
		case *ast.VarDeclStmt:
			checkVarDeclWidth(e, prog, sink)
		case *ast.AssignStmt:
			checkAssignWidth(e, prog, sink)
		}
		return true
	})
}

// checkVarDeclWidth reports a declared bit<N>/int<N> local whose initializer
// elaborates to a different, non-polymorphic width (spec.md §8 scenario S4:
// "bit<8> x = 16w0" must be an error).
func checkVarDeclWidth(s *ast.VarDeclStmt, prog *ir.Program, sink *diag.Sink) {
	if s.Init == nil {
		return
	}
	declared, ok := declaredScalarType(prog, s.Type)
	if !ok {
		return
	}
	init, ok := prog.TypeOf(s.Init)
	if !ok || !init.IsIntegral() || init.IsPoly() {
		return
	}
	if declared.Kind != init.Kind || declared.Width != init.Width {
		sink.Errorf(s.Span, diag.E0005, "cannot initialize %q of type %s with a value of type %s", s.Name, declared, init)
	}
}

// checkAssignWidth applies the same rule to "lhs = rhs;" once both sides
// have resolved, non-polymorphic integral types.
func checkAssignWidth(s *ast.AssignStmt, prog *ir.Program, sink *diag.Sink) {
	lt, lok := prog.TypeOf(s.LHS)
	rt, rok := prog.TypeOf(s.RHS)
	if !lok || !rok || !lt.IsIntegral() || !rt.IsIntegral() || rt.IsPoly() {
		return
	}
	if lt.Kind != rt.Kind || lt.Width != rt.Width {
		sink.Errorf(s.Span, diag.E0005, "cannot assign value of type %s to a location of type %s", rt, lt)
	}
}

// declaredScalarType elaborates a bit<N>/int<N> type expression to its
// (kind, width), independent of the resolver's own elaboration, so the
// checker does not need a side-table entry for a Type node (only Exprs get
// one; see build/ir.Program.SetType).
func declaredScalarType(prog *ir.Program, t ast.Type) (*ir.Type, bool) {
	switch t := t.(type) {
	case *ast.BitType:
		w, ok := foldConstInt(prog, t.Width)
		if !ok {
			return nil, false
		}
		return ir.Bit(w), true
	case *ast.IntType:
		w, ok := foldConstInt(prog, t.Width)
		if !ok {
			return nil, false
		}
		return ir.Int(w), true
	default:
		return nil, false
	}
}

// isComparisonOrLogical reports whether op produces a bool result, and so
// falls outside the width law: its operands need not share a width.
func isComparisonOrLogical(op token.Kind) bool {
	switch op {
	case token.Eq, token.NotEq, token.Lt, token.LtEq, token.Gt, token.GtEq, token.AmpAmp, token.PipePipe:
		return true
	}
	return false
}

func checkBinaryWidth(e *ast.BinaryExpr, prog *ir.Program, sink *diag.Sink) {
	if isComparisonOrLogical(e.Op) {
		return
	}
	xt, xok := prog.TypeOf(e.X)
	yt, yok := prog.TypeOf(e.Y)
	if !xok || !yok || !xt.IsIntegral() || !yt.IsIntegral() {
		return
	}
	if xt.IsPoly() || yt.IsPoly() {
		return
	}
	if xt.Kind != yt.Kind || xt.Width != yt.Width {
		sink.Errorf(e.Span, diag.E0005, "operand width mismatch: %s vs %s", xt, yt)
	}
}

func checkSliceBounds(e *ast.SliceExpr, prog *ir.Program, sink *diag.Sink) {
	xt, ok := prog.TypeOf(e.X)
	if !ok || !xt.IsIntegral() || xt.Width < 0 {
		return
	}
	hi, hiOK := foldConstInt(prog, e.Hi)
	lo, loOK := foldConstInt(prog, e.Lo)
	if !hiOK || !loOK {
		return
	}
	if lo < 0 || hi < lo || hi >= xt.Width {
		sink.Errorf(e.Span, diag.E0006, "slice bounds [%d:%d] out of range for %s", hi, lo, xt)
	}
}

// foldConstInt evaluates a constant-integer expression using the same
// literal/const-reference/+-* rules the resolver uses to fold declared
// widths, so the checker can validate slice bounds without re-running type
// elaboration.
func foldConstInt(prog *ir.Program, e ast.Expr) (int, bool) {
	switch e := e.(type) {
	case *ast.IntLit:
		return int(e.Value), true
	case *ast.Ident:
		if len(e.Path) != 1 {
			return 0, false
		}
		decl, ok := prog.Decls[e.Path[0]]
		if !ok {
			return 0, false
		}
		c, ok := decl.(*ast.ConstDecl)
		if !ok {
			return 0, false
		}
		return foldConstInt(prog, c.Value)
	case *ast.BinaryExpr:
		x, xok := foldConstInt(prog, e.X)
		y, yok := foldConstInt(prog, e.Y)
		if !xok || !yok {
			return 0, false
		}
		switch e.Op {
		case token.Plus:
			return x + y, true
		case token.Minus:
			return x - y, true
		case token.Star:
			return x * y, true
		}
	}
	return 0, false
}
