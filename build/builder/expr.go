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
	"x4c/build/ir"
	"x4c/internal/ast"
	"x4c/internal/token"
)

// elaborateExpr computes and records e's fully-instantiated type in the
// HLIR side-table (spec.md §4.4 point 2 / §3 "HLIR side-table"), resolving
// every identifier it touches along the way. It always returns a non-nil
// type: unresolvable expressions get ir.Void so later passes never see a
// nil, per the resolution-totality invariant (spec.md §8 property 3) —
// whether the expression is actually well-typed is the checker's job, not
// the resolver's.
func (b *Builder) elaborateExpr(sc *scope, typeParams map[string]bool, e ast.Expr) *ir.Type {
	var t *ir.Type
	switch e := e.(type) {
	case *ast.IntLit:
		if e.HasWidth {
			t = ir.Bit(e.Width)
		} else {
			t = ir.Poly()
		}
	case *ast.Ident:
		t = b.elaborateIdent(sc, typeParams, e)
	case *ast.SliceExpr:
		b.elaborateExpr(sc, typeParams, e.X)
		b.elaborateExpr(sc, typeParams, e.Hi)
		b.elaborateExpr(sc, typeParams, e.Lo)
		hi, hiOK := b.foldConstInt(e.Hi)
		lo, loOK := b.foldConstInt(e.Lo)
		if hiOK && loOK {
			t = ir.Bit(hi - lo + 1)
		} else {
			t = ir.Poly()
		}
	case *ast.IndexExpr:
		t = b.elaborateExpr(sc, typeParams, e.X)
		b.elaborateExpr(sc, typeParams, e.Index)
	case *ast.CallExpr:
		t = b.elaborateCall(sc, typeParams, e)
	case *ast.BinaryExpr:
		t = b.elaborateBinary(sc, typeParams, e)
	case *ast.UnaryExpr:
		x := b.elaborateExpr(sc, typeParams, e.X)
		if e.Op == token.Bang {
			t = ir.Bool
		} else {
			t = x
		}
	case *ast.MaskExpr:
		t = b.elaborateExpr(sc, typeParams, e.Value)
		b.elaborateExpr(sc, typeParams, e.Mask)
	case *ast.RangeExpr:
		t = b.elaborateExpr(sc, typeParams, e.Lo)
		b.elaborateExpr(sc, typeParams, e.Hi)
	case *ast.Wildcard:
		t = ir.Poly()
	default:
		t = ir.Void
	}
	if t == nil {
		t = ir.Void
	}
	b.prog.SetType(e, t)
	return t
}

func (b *Builder) elaborateIdent(sc *scope, typeParams map[string]bool, id *ast.Ident) *ir.Type {
	if len(id.Path) == 0 {
		return ir.Void
	}
	name := id.Path[0]
	referent, ok := sc.lookup(name)
	if !ok {
		b.sink.Errorf(id.Span, diag.E0002, "undefined identifier %q", name)
		return ir.Void
	}
	b.prog.SetRef(id, referent)
	t := b.declType(typeParams, referent)
	for _, field := range id.Path[1:] {
		t = b.fieldType(typeParams, t, field, id.Span)
	}
	return t
}

func (b *Builder) elaborateBinary(sc *scope, typeParams map[string]bool, e *ast.BinaryExpr) *ir.Type {
	x := b.elaborateExpr(sc, typeParams, e.X)
	y := b.elaborateExpr(sc, typeParams, e.Y)
	switch e.Op {
	case token.Eq, token.NotEq, token.Lt, token.LtEq, token.Gt, token.GtEq, token.AmpAmp, token.PipePipe:
		return ir.Bool
	}
	if x.IsPoly() {
		return y
	}
	return x
}

// elaborateCall handles both a member-call ("pkt.extract(hdr)",
// "tbl.apply()") and a bare constructor call used only inside a package
// instantiation's argument list ("ParserImpl()").
func (b *Builder) elaborateCall(sc *scope, typeParams map[string]bool, e *ast.CallExpr) *ir.Type {
	for _, a := range e.Args {
		b.elaborateExpr(sc, typeParams, a)
	}
	if id, ok := e.Fun.(*ast.Ident); ok && len(id.Path) == 1 {
		if decl, ok := b.prog.Decls[id.Path[0]]; ok {
			var t *ir.Type
			switch decl.(type) {
			case *ast.ParserDecl:
				t = &ir.Type{Kind: ir.KindParser, Name: id.Path[0]}
			case *ast.ControlDecl:
				t = &ir.Type{Kind: ir.KindControl, Name: id.Path[0]}
			}
			if t != nil {
				b.prog.SetType(id, t)
				return t
			}
		}
	}
	return b.elaborateExpr(sc, typeParams, e.Fun)
}
