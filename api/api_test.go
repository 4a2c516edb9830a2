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

package api

import (
	"os"
	"path/filepath"
	"testing"

	"x4c/build/ir"
	"x4c/internal/ast"
)

const helloWorldSrc = `
extern packet_in { void extract<T>(out T hdr); }

header ethernet_t {
	bit<48> dst;
	bit<48> src;
	bit<16> etherType;
}

struct headers_t {
	ethernet_t ethernet;
}

parser ParserImpl(packet_in pkt, out headers_t hdr) {
	state start {
		pkt.extract(hdr.ethernet);
		transition accept;
	}
}

control ingress(inout headers_t hdr) {
	action drop() { }
	action forward(bit<48> dst) {
		hdr.ethernet.dst = dst;
	}
	table tbl {
		key = { hdr.ethernet.etherType : exact; }
		actions = { drop; forward; }
		default_action = drop();
	}
	apply {
		tbl.apply();
	}
}

package top(ParserImpl p, ingress i);
top(ParserImpl(), ingress()) main;
`

func writeSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.p4")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompileRoundTrip(t *testing.T) {
	path := writeSource(t, helloWorldSrc)
	res, err := New().Compile(path, Options{})
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if res.AST == nil {
		t.Fatal("expected a parsed AST")
	}
	if res.Program == nil {
		t.Fatal("expected a resolved program")
	}

	ctl, ok := res.Program.Decls["ingress"].(*ast.ControlDecl)
	if !ok {
		t.Fatal("expected ingress to resolve to a control declaration")
	}
	tablePath, ok := res.Program.TablePathOf(&ctl.Tables[0])
	if !ok || tablePath != "ingress.tbl" {
		t.Fatalf("expected table path %q, got %q (ok=%v)", "ingress.tbl", tablePath, ok)
	}
	if got, want := ir.EntryPointName(ir.OpAdd, tablePath), "add_ingress_tbl_entry"; got != want {
		t.Errorf("expected entry point name %q, got %q", want, got)
	}
}

func TestCompileWithCheckReportsNoDiagnosticsForAValidProgram(t *testing.T) {
	path := writeSource(t, helloWorldSrc)
	res, err := New().Compile(path, Options{Check: true})
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("expected a well-formed program to check clean, got %v", res.Diagnostics)
	}
}

func TestCompileStopsAtFirstFailingPass(t *testing.T) {
	path := writeSource(t, "header h_t { bit<8> f\n") // missing semicolon
	res, err := New().Compile(path, Options{})
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if !res.HasErrors() {
		t.Fatal("expected a syntax error to be reported")
	}
	if res.Program != nil {
		t.Fatal("expected resolution to be skipped once parsing has fatal diagnostics")
	}
}

func TestCompileRejectsUnknownTarget(t *testing.T) {
	path := writeSource(t, helloWorldSrc)
	if _, err := New().Compile(path, Options{Target: "nosuch"}); err == nil {
		t.Fatal("expected an error for an unknown target")
	}
}

func TestCompileShowTokensDumpsTheTokenStream(t *testing.T) {
	path := writeSource(t, "const bit<8> X = 1;\n")
	res, err := New().Compile(path, Options{ShowTokens: true})
	if err != nil {
		t.Fatalf("unexpected fault: %v", err)
	}
	if len(res.Tokens) == 0 {
		t.Fatal("expected ShowTokens to populate the token dump")
	}
}
