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

// elaborateType resolves a type expression as written in source to its
// canonical, concretely-widthed form (spec.md §4.4 point 2). typeParams
// names the type variables in scope for the declaration currently being
// elaborated (an extern method's own type parameters); a NamedType whose
// name is in typeParams elaborates to a type variable rather than an
// undefined-name error.
func (b *Builder) elaborateType(typeParams map[string]bool, t ast.Type) *ir.Type {
	switch t := t.(type) {
	case *ast.BitType:
		w, ok := b.foldConstInt(t.Width)
		if !ok {
			b.sink.Errorf(t.Width.Pos(), diag.E0022, "bit<N> width must be a compile-time constant")
			w = 0
		}
		return ir.Bit(w)
	case *ast.IntType:
		w, ok := b.foldConstInt(t.Width)
		if !ok {
			b.sink.Errorf(t.Width.Pos(), diag.E0022, "int<N> width must be a compile-time constant")
			w = 0
		}
		return ir.Int(w)
	case *ast.VarbitType:
		w, ok := b.foldConstInt(t.MaxWidth)
		if !ok {
			w = 0
		}
		return &ir.Type{Kind: ir.KindVarbit, Width: w}
	case *ast.BoolType:
		return ir.Bool
	case *ast.VoidType:
		return ir.Void
	case *ast.ErrorTypeRef:
		return ir.ErrorType
	case *ast.NamedType:
		return b.elaborateNamedType(typeParams, t)
	default:
		return ir.Void
	}
}

func (b *Builder) elaborateNamedType(typeParams map[string]bool, t *ast.NamedType) *ir.Type {
	if typeParams[t.Name] {
		return &ir.Type{Kind: ir.KindTypeVar, Name: t.Name}
	}
	decl, ok := b.prog.Decls[t.Name]
	if !ok {
		b.sink.Errorf(t.Span, diag.E0002, "undefined type %q", t.Name)
		return &ir.Type{Kind: ir.KindTypeVar, Name: t.Name}
	}
	var args []*ir.Type
	for _, a := range t.Params {
		args = append(args, b.elaborateType(typeParams, a))
	}
	switch decl.(type) {
	case *ast.HeaderTypeDecl:
		return &ir.Type{Kind: ir.KindHeader, Name: t.Name, TypeArgs: args}
	case *ast.StructTypeDecl:
		return &ir.Type{Kind: ir.KindStruct, Name: t.Name, TypeArgs: args}
	case *ast.TypedefDecl:
		// Flatten typedef chains: elaborate straight through to the
		// aliased type rather than leaving a level of indirection in the
		// canonical form (spec.md §4.4 point 2).
		return b.elaborateType(typeParams, decl.(*ast.TypedefDecl).Type)
	case *ast.ExternDecl:
		return &ir.Type{Kind: ir.KindExtern, Name: t.Name, TypeArgs: args}
	case *ast.ParserDecl:
		return &ir.Type{Kind: ir.KindParser, Name: t.Name}
	case *ast.ControlDecl:
		return &ir.Type{Kind: ir.KindControl, Name: t.Name}
	case *ast.PackageTypeDecl:
		return &ir.Type{Kind: ir.KindPackage, Name: t.Name}
	default:
		b.sink.Errorf(t.Span, diag.E0002, "%q does not name a type", t.Name)
		return &ir.Type{Kind: ir.KindTypeVar, Name: t.Name}
	}
}

// foldConstInt evaluates a compile-time-constant integer expression,
// following named constants and folding +, -, * (spec.md's supplemented
// constant-folding feature, used for widths written as arithmetic such as
// bit<8 + 8>).
func (b *Builder) foldConstInt(e ast.Expr) (int, bool) {
	switch e := e.(type) {
	case *ast.IntLit:
		return int(e.Value), true
	case *ast.Ident:
		if len(e.Path) != 1 {
			return 0, false
		}
		v, ok := b.prog.Decls[e.Path[0]]
		if !ok {
			return 0, false
		}
		cd, ok := v.(*ast.ConstDecl)
		if !ok {
			return 0, false
		}
		return b.foldConstInt(cd.Value)
	case *ast.BinaryExpr:
		x, ok := b.foldConstInt(e.X)
		if !ok {
			return 0, false
		}
		y, ok := b.foldConstInt(e.Y)
		if !ok {
			return 0, false
		}
		switch e.Op {
		case token.Plus:
			return x + y, true
		case token.Minus:
			return x - y, true
		case token.Star:
			return x * y, true
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}

// declType returns the elaborated type of whatever referent an identifier
// resolved to.
func (b *Builder) declType(typeParams map[string]bool, referent any) *ir.Type {
	switch r := referent.(type) {
	case *ast.Param:
		return b.elaborateType(typeParams, r.Type)
	case *ast.ConstDecl:
		return b.elaborateType(typeParams, r.Type)
	case *ast.VarDeclStmt:
		return b.elaborateType(typeParams, r.Type)
	case *ast.Instantiation:
		if decl, ok := b.prog.Decls[r.TypeName]; ok {
			switch decl.(type) {
			case *ast.ParserDecl:
				return &ir.Type{Kind: ir.KindParser, Name: r.TypeName}
			case *ast.ControlDecl:
				return &ir.Type{Kind: ir.KindControl, Name: r.TypeName}
			case *ast.ExternDecl:
				return &ir.Type{Kind: ir.KindExtern, Name: r.TypeName}
			}
		}
		return &ir.Type{Kind: ir.KindTypeVar, Name: r.TypeName}
	case *ast.ActionDecl:
		return &ir.Type{Kind: ir.KindAction, Name: r.Name}
	case *ast.TableDecl:
		return &ir.Type{Kind: ir.KindTable, Name: r.Name}
	case *ast.HeaderTypeDecl:
		return &ir.Type{Kind: ir.KindHeader, Name: r.Name}
	case *ast.StructTypeDecl:
		return &ir.Type{Kind: ir.KindStruct, Name: r.Name}
	default:
		return ir.Void
	}
}

// fieldType resolves member access ("x.field") against an already
// elaborated receiver type: a struct/header field, or an extern method
// (returning its declared return type).
func (b *Builder) fieldType(typeParams map[string]bool, recv *ir.Type, field string, span token.Span) *ir.Type {
	if recv == nil {
		return ir.Void
	}
	switch recv.Kind {
	case ir.KindHeader, ir.KindStruct:
		decl, ok := b.prog.Decls[recv.Name]
		if !ok {
			return ir.Void
		}
		var fields []ast.Field
		switch d := decl.(type) {
		case *ast.HeaderTypeDecl:
			fields = d.Fields
		case *ast.StructTypeDecl:
			fields = d.Fields
		}
		for _, f := range fields {
			if f.Name == field {
				return b.elaborateType(typeParams, f.Type)
			}
		}
		if field == "isValid" && recv.Kind == ir.KindHeader {
			return ir.Bool
		}
		b.sink.Errorf(span, diag.E0002, "%s has no field %q", recv, field)
		return ir.Void
	case ir.KindExtern:
		decl, ok := b.prog.Decls[recv.Name]
		if !ok {
			return ir.Void
		}
		ext, ok := decl.(*ast.ExternDecl)
		if !ok {
			return ir.Void
		}
		for _, m := range ext.Methods {
			if m.Name == field {
				mtp := map[string]bool{}
				for k := range typeParams {
					mtp[k] = true
				}
				for _, tp := range m.TypeParams {
					mtp[tp] = true
				}
				return b.elaborateType(mtp, m.Return)
			}
		}
		b.sink.Errorf(span, diag.E0002, "%s has no method %q", recv, field)
		return ir.Void
	case ir.KindTable, ir.KindControl, ir.KindParser:
		// "tbl.apply()", "sub_control.apply(...)": the single member every
		// table and every instantiated control or parser exposes to its
		// enclosing apply block. It always returns void, matching how
		// x4c models every other invocation with no HLIR-tracked result.
		if field == "apply" {
			return ir.Void
		}
		b.sink.Errorf(span, diag.E0002, "%s has no member %q", recv, field)
		return ir.Void
	default:
		b.sink.Errorf(span, diag.E0002, "%s has no member %q", recv, field)
		return ir.Void
	}
}
