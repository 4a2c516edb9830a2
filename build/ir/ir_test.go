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

package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"x4c/internal/ast"
	"x4c/internal/token"
)

func TestTypeString(t *testing.T) {
	cases := []struct {
		typ  *Type
		want string
	}{
		{Bit(8), "bit<8>"},
		{Int(16), "int<16>"},
		{Bool, "bool"},
		{Named(KindHeader, "ethernet_h"), "ethernet_h"},
		{&Type{Kind: KindExtern, Name: "Checksum", TypeArgs: []*Type{Bit(32)}}, "Checksum<bit<32>>"},
	}
	for _, c := range cases {
		if got := c.typ.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestTypeEqual(t *testing.T) {
	if !Bit(8).Equal(Bit(8)) {
		t.Error("Bit(8) should equal Bit(8)")
	}
	if Bit(8).Equal(Bit(16)) {
		t.Error("Bit(8) should not equal Bit(16)")
	}
	if Bit(8).Equal(Int(8)) {
		t.Error("Bit(8) should not equal Int(8)")
	}
}

func TestProgramSideTables(t *testing.T) {
	file := &ast.File{}
	prog := New(file)

	id := &ast.Ident{Span: token.Span{File: "t.p4", Line: 1, Column: 1}, Path: []string{"x"}}
	decl := &ast.ConstDecl{Name: "x"}
	prog.SetRef(id, decl)
	prog.SetType(id, Bit(8))

	got, ok := prog.RefOf(id)
	if !ok || got != decl {
		t.Fatalf("RefOf = %v, %v; want %v, true", got, ok, decl)
	}
	typ, ok := prog.TypeOf(id)
	if !ok || !typ.Equal(Bit(8)) {
		t.Fatalf("TypeOf = %v, %v; want bit<8>, true", typ, ok)
	}

	inst := &ast.Instantiation{Name: "csum"}
	prog.SetInstancePath(inst, "ingress.csum")
	if path, ok := prog.InstancePathOf(inst); !ok || path != "ingress.csum" {
		t.Fatalf("InstancePathOf = %q, %v", path, ok)
	}

	tbl := &ast.TableDecl{Name: "tbl"}
	prog.SetTablePath(tbl, "ingress.tbl")
	if path, ok := prog.TablePathOf(tbl); !ok || path != "ingress.tbl" {
		t.Fatalf("TablePathOf = %q, %v", path, ok)
	}

	act := &ast.ActionDecl{Name: "forward"}
	prog.SetTableActions(tbl, []*ast.ActionDecl{act})
	got2, ok := prog.TableActionsOf(tbl)
	if !ok || len(got2) != 1 || got2[0] != act {
		t.Fatalf("TableActionsOf = %v, %v", got2, ok)
	}
}

func TestEntryPointName(t *testing.T) {
	got := EntryPointName(OpAdd, "ingress.tbl")
	want := "add_ingress_tbl_entry"
	if got != want {
		t.Errorf("EntryPointName = %q, want %q", got, want)
	}
}

func TestReachableTables(t *testing.T) {
	tbl := ast.TableDecl{Name: "tbl"}
	ingress := &ast.ControlDecl{Name: "ingress", Tables: []ast.TableDecl{tbl}}
	unused := &ast.ControlDecl{Name: "egress", Tables: []ast.TableDecl{{Name: "dead"}}}
	parserImpl := &ast.ParserDecl{Name: "ParserImpl"}

	prog := New(&ast.File{})
	prog.Decls["ingress"] = ingress
	prog.Decls["egress"] = unused
	prog.Decls["ParserImpl"] = parserImpl

	pi := &ast.PackageInstanceDecl{
		Name: "main",
		Args: []ast.Expr{
			&ast.CallExpr{Fun: &ast.Ident{Path: []string{"ParserImpl"}}},
			&ast.CallExpr{Fun: &ast.Ident{Path: []string{"ingress"}}},
		},
	}

	got := ReachableTables(prog, pi)
	if len(got) != 1 || got[0].Name != "tbl" {
		t.Fatalf("ReachableTables = %v, want [tbl] (egress is never bound to main)", got)
	}
}

func TestTypeDiff(t *testing.T) {
	a := Bit(8)
	b := Bit(16)
	if diff := cmp.Diff(a, b); diff == "" {
		t.Fatal("expected a diff between bit<8> and bit<16>")
	}
}
