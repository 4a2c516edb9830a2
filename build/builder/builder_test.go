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
	"os"
	"path/filepath"
	"testing"

	"x4c/build/ir"
	"x4c/diag"
	"x4c/internal/ast"
	"x4c/internal/lexer"
	"x4c/internal/parser"
	"x4c/internal/preprocess"
)

// build runs the full front end up to and including resolution over src,
// returning the parsed file, the resolved program, and the sink every pass
// reported into. It never fails the test itself: callers assert on the
// sink and the returned program the way a resolver caller must.
func build(t *testing.T, src string) (*ast.File, *ir.Program, *diag.Sink) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.p4")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	sink := diag.NewSink()
	unit := preprocess.Run(path, nil, sink)
	lx := lexer.New(unit, sink)
	file := parser.Parse(lx, sink)
	prog := New(sink).Build(file)
	return file, prog, sink
}

func TestScopeShadowingAndRedeclaration(t *testing.T) {
	global := newScope(nil)
	if !global.declare("x", 1) {
		t.Fatal("expected first declaration of x to succeed")
	}
	if global.declare("x", 2) {
		t.Fatal("expected redeclaration of x in the same scope to fail")
	}

	inner := newScope(global)
	if !inner.declare("x", 3) {
		t.Fatal("expected shadowing declaration in a nested scope to succeed")
	}
	v, ok := inner.lookup("x")
	if !ok || v != 3 {
		t.Fatalf("expected inner lookup to find the shadowing value, got %v, %v", v, ok)
	}
	v, ok = global.lookup("x")
	if !ok || v != 1 {
		t.Fatalf("expected outer lookup unaffected by shadowing, got %v, %v", v, ok)
	}
	if _, ok := global.lookup("y"); ok {
		t.Fatal("expected lookup of an undeclared name to fail")
	}
}

func TestDeclareGlobalsRedeclaration(t *testing.T) {
	src := `
header h_t { bit<8> f; }
struct h_t { bit<8> g; }
`
	_, _, sink := build(t, src)
	if !hasCode(sink, diag.E0003) {
		t.Fatalf("expected E0003 for redeclared top-level name, got %s", sink.Format())
	}
}

func TestErrorMembersMergeAcrossDecls(t *testing.T) {
	src := `
error { Foo, Bar }
error { Bar, Baz }
`
	_, _, sink := build(t, src)
	if !hasCode(sink, diag.E0003) {
		t.Fatalf("expected E0003 for the repeated error member Bar, got %s", sink.Format())
	}
}

func TestTypedefFlattening(t *testing.T) {
	src := `
typedef bit<8> byte_t;
typedef byte_t alias_t;
header h_t { alias_t f; }
`
	_, prog, sink := build(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %s", sink.Format())
	}
	h, ok := prog.Decls["h_t"].(*ast.HeaderTypeDecl)
	if !ok {
		t.Fatal("expected h_t to resolve to a header declaration")
	}
	b := New(diag.NewSink())
	b.prog = prog
	got := b.elaborateType(nil, h.Fields[0].Type)
	want := ir.Bit(8)
	if !got.Equal(want) {
		t.Errorf("typedef chain did not flatten to bit<8>: got %s", got)
	}
}

func TestConstantFoldedWidth(t *testing.T) {
	src := `
const bit<32> BASE = 8;
header h_t { bit<BASE + 8> f; }
`
	_, prog, sink := build(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %s", sink.Format())
	}
	h := prog.Decls["h_t"].(*ast.HeaderTypeDecl)
	b := New(diag.NewSink())
	b.prog = prog
	got := b.elaborateType(nil, h.Fields[0].Type)
	if got.Width != 16 {
		t.Errorf("expected the folded width bit<8 + 8> to be 16, got %d", got.Width)
	}
}

func TestUndefinedTypeIsDiagnosed(t *testing.T) {
	// Type elaboration is on demand, not eager: an unreferenced field's
	// type is only checked once something actually elaborates it.
	src := `typedef nosuch alias_t;`
	_, prog, _ := build(t, src)
	td := prog.Decls["alias_t"].(*ast.TypedefDecl)
	sink := diag.NewSink()
	b := New(sink)
	b.prog = prog
	b.elaborateType(nil, td.Type)
	if !hasCode(sink, diag.E0002) {
		t.Fatalf("expected E0002 for undefined type %q, got %s", "nosuch", sink.Format())
	}
}

func TestResolutionTotalityInSliceBounds(t *testing.T) {
	// Every identifier expression, including one nested inside a slice
	// bound, must receive exactly one HLIR type-table entry.
	src := `
const bit<32> HI = 7;
header h_t { bit<8> f; }
parser p_t(packet_in pkt, out h_t hdr) {
	state start {
		bit<8> x = hdr.f[HI:0];
		transition accept;
	}
}
`
	file, prog, sink := build(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %s", sink.Format())
	}
	var found bool
	ast.Walk(file, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok && len(id.Path) == 1 && id.Path[0] == "HI" {
			if _, ok := prog.TypeOf(id); !ok {
				t.Errorf("identifier %v inside a slice bound has no HLIR type entry", id)
			}
			found = true
		}
		return true
	})
	if !found {
		t.Fatal("test fixture did not contain the expected HI identifier")
	}
}

func TestInstancePathAssignment(t *testing.T) {
	// Mirrors the "ingress.tbl" style scenario: a control instantiated as
	// the second argument of the package instance gets its own type name
	// as its root instance path, and everything nested under it (its
	// table) is joined onto that path.
	src := `
extern packet_in { void extract<T>(out T hdr); }
header h_t { bit<8> f; }
struct headers_t { h_t h; }
parser p_t(packet_in pkt, out headers_t hdr) {
	state start {
		transition accept;
	}
}
control ingress(inout headers_t hdr) {
	action noop() {}
	table tbl {
		key = { hdr.h.f : exact; }
		actions = { noop; }
	}
	apply {
		tbl.apply();
	}
}
package top(p_t p, ingress i);
top(p_t(), ingress()) main;
`
	_, prog, sink := build(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %s", sink.Format())
	}
	ctl := prog.Decls["ingress"].(*ast.ControlDecl)
	path, ok := prog.TablePathOf(&ctl.Tables[0])
	if !ok || path != "ingress.tbl" {
		t.Errorf("expected table path %q, got %q (ok=%v)", "ingress.tbl", path, ok)
	}
}

func TestTableActionBinding(t *testing.T) {
	src := `
header h_t { bit<8> f; }
control ingress(inout h_t hdr) {
	action drop() {}
	action forward(bit<8> port) {}
	table tbl {
		key = { hdr.f : exact; }
		actions = { drop; forward; }
		default_action = drop();
	}
	apply {
		tbl.apply();
	}
}
`
	_, prog, sink := build(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %s", sink.Format())
	}
	ctl := prog.Decls["ingress"].(*ast.ControlDecl)
	acts, ok := prog.TableActionsOf(&ctl.Tables[0])
	if !ok || len(acts) != 2 {
		t.Fatalf("expected 2 bound actions, got %v (ok=%v)", acts, ok)
	}
	if acts[0].Name != "drop" || acts[1].Name != "forward" {
		t.Errorf("expected bound actions in source order [drop, forward], got [%s, %s]", acts[0].Name, acts[1].Name)
	}
}

func TestTableUnknownActionIsDiagnosed(t *testing.T) {
	src := `
header h_t { bit<8> f; }
control ingress(inout h_t hdr) {
	action drop() {}
	table tbl {
		key = { hdr.f : exact; }
		actions = { nosuch; }
	}
	apply {
		tbl.apply();
	}
}
`
	_, _, sink := build(t, src)
	if !hasCode(sink, diag.E0014) {
		t.Fatalf("expected E0014 for a table action not visible in its control, got %s", sink.Format())
	}
}

func TestApplyBlockResolvesTableAndSubcontrolCalls(t *testing.T) {
	// The apply block is a control's defining body: it must be able to
	// call both its own tables and any control it instantiates, with no
	// spurious "undefined identifier" or "has no member" diagnostics.
	src := `
header h_t { bit<8> f; }
control Sub(inout h_t hdr) {
	apply { }
}
control ingress(inout h_t hdr) {
	action drop() {}
	table tbl {
		key = { hdr.f : exact; }
		actions = { drop; }
		default_action = drop();
	}
	Sub() sub;
	apply {
		tbl.apply();
		sub.apply(hdr);
	}
}
`
	_, _, sink := build(t, src)
	if sink.HasErrors() {
		t.Fatalf("expected a clean compile for tbl.apply() and sub.apply(), got %s", sink.Format())
	}
}

func hasCode(sink *diag.Sink, code diag.Code) bool {
	for _, d := range sink.Diagnostics() {
		if d.Code == code {
			return true
		}
	}
	return false
}
