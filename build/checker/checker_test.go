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
	"os"
	"path/filepath"
	"testing"

	"x4c/build/builder"
	"x4c/build/ir"
	"x4c/diag"
	"x4c/internal/ast"
	"x4c/internal/lexer"
	"x4c/internal/parser"
	"x4c/internal/preprocess"
)

// externPacketIn is spliced into every fixture that needs pkt.extract:
// checker rule groups are exercised over resolved HLIR, so the extern
// declaration has to be real enough for the resolver to bind against.
const externPacketIn = `extern packet_in { void extract<T>(out T hdr); }` + "\n"

// buildAndCheck runs preprocess, lex, parse, and resolve over src, then
// runs every checker rule group over the result. It fails the test only on
// an internal fault (a panic recovered inside a rule group); diagnostics
// are always left for the caller to inspect.
func buildAndCheck(t *testing.T, src string) (*ast.File, *ir.Program, *diag.Sink) {
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
	prog := builder.New(sink).Build(file)
	if err := Check(file, prog, sink); err != nil {
		t.Fatalf("checker returned a fault: %v", err)
	}
	return file, prog, sink
}

func hasCode(sink *diag.Sink, code diag.Code) bool {
	for _, d := range sink.Diagnostics() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestParserMissingStartState(t *testing.T) {
	src := externPacketIn + `
parser p_t(packet_in pkt) {
	state foo {
		transition accept;
	}
}
`
	_, _, sink := buildAndCheck(t, src)
	if !hasCode(sink, diag.E0013) {
		t.Fatalf("expected E0013 for a parser with no start state, got %s", sink.Format())
	}
}

func TestParserUnreachableState(t *testing.T) {
	src := externPacketIn + `
parser p_t(packet_in pkt) {
	state start {
		transition accept;
	}
	state dead {
		transition accept;
	}
}
`
	_, _, sink := buildAndCheck(t, src)
	if !hasCode(sink, diag.W0001) {
		t.Fatalf("expected W0001 for an unreachable state, got %s", sink.Format())
	}
}

func TestParserUndefinedTransitionTarget(t *testing.T) {
	src := externPacketIn + `
parser p_t(packet_in pkt) {
	state start {
		transition nosuch;
	}
}
`
	_, _, sink := buildAndCheck(t, src)
	if !hasCode(sink, diag.E0012) {
		t.Fatalf("expected E0012 for a transition to an undefined state, got %s", sink.Format())
	}
}

func TestParserSelectWithoutWildcardIsNotProvenTotal(t *testing.T) {
	src := externPacketIn + `
parser p_t(packet_in pkt) {
	state start {
		transition select(1) {
			1 : accept;
		}
	}
}
`
	_, _, sink := buildAndCheck(t, src)
	if !hasCode(sink, diag.W0002) {
		t.Fatalf("expected W0002 for a non-total select with no wildcard case, got %s", sink.Format())
	}
}

func TestHeaderCannotNestAnotherType(t *testing.T) {
	src := `
struct inner_t { bit<8> x; }
header h_t { inner_t nested; }
`
	_, _, sink := buildAndCheck(t, src)
	if !hasCode(sink, diag.E0007) {
		t.Fatalf("expected E0007 for a header field that is not a bit-width type, got %s", sink.Format())
	}
}

func TestExtractArgumentMustBeHeader(t *testing.T) {
	src := externPacketIn + `
struct headers_t { bit<8> f; }
parser p_t(packet_in pkt, out headers_t hdr) {
	state start {
		pkt.extract(hdr);
		transition accept;
	}
}
`
	_, _, sink := buildAndCheck(t, src)
	if !hasCode(sink, diag.E0008) {
		t.Fatalf("expected E0008 for pkt.extract of a non-header argument, got %s", sink.Format())
	}
}

func TestOutParamReadBeforeWrite(t *testing.T) {
	src := externPacketIn + `
header h_t { bit<8> f; }
parser p_t(packet_in pkt, out h_t hdr) {
	state start {
		bit<8> x = hdr.f;
		transition accept;
	}
}
`
	_, _, sink := buildAndCheck(t, src)
	if !hasCode(sink, diag.E0011) {
		t.Fatalf("expected E0011 for reading an out parameter before it is written, got %s", sink.Format())
	}
}

func TestOutParamWriteThroughExtractIsNotAViolation(t *testing.T) {
	src := externPacketIn + `
header h_t { bit<8> f; }
parser p_t(packet_in pkt, out h_t hdr) {
	state start {
		pkt.extract(hdr);
		bit<8> x = hdr.f;
		transition accept;
	}
}
`
	_, _, sink := buildAndCheck(t, src)
	if hasCode(sink, diag.E0011) {
		t.Fatalf("did not expect E0011 once hdr has been written by extract, got %s", sink.Format())
	}
}

func TestTableAtMostOneLPMKey(t *testing.T) {
	src := `
header h_t { bit<32> a; bit<32> b; }
control ingress(inout h_t hdr) {
	action act() { }
	table tbl {
		key = { hdr.a : lpm; hdr.b : lpm; }
		actions = { act; }
	}
	apply { }
}
`
	_, _, sink := buildAndCheck(t, src)
	if !hasCode(sink, diag.E0001) {
		t.Fatalf("expected E0001 for a table with two lpm keys, got %s", sink.Format())
	}
}

func TestEntryPatternsMatchingRangeKindAreAccepted(t *testing.T) {
	src := `
header h_t { bit<16> len; }
control ingress(inout h_t hdr) {
	action a() { }
	table tbl {
		key = { hdr.len : range; }
		actions = { a; }
		const entries = {
			10..20 : a();
			5 : a();
			_ : a();
		}
	}
	apply { }
}
`
	_, _, sink := buildAndCheck(t, src)
	if hasCode(sink, diag.E0009) {
		t.Fatalf("did not expect E0009 for range/value/wildcard patterns on a range key, got %s", sink.Format())
	}
}

func TestEntryPatternRangeOnExactKeyIsRejected(t *testing.T) {
	src := `
header h_t { bit<8> f; }
control ingress(inout h_t hdr) {
	action a() { }
	table tbl {
		key = { hdr.f : exact; }
		actions = { a; }
		const entries = {
			10..20 : a();
		}
	}
	apply { }
}
`
	_, _, sink := buildAndCheck(t, src)
	if !hasCode(sink, diag.E0009) {
		t.Fatalf("expected E0009 for a range pattern against an exact key, got %s", sink.Format())
	}
}

func TestBinaryOperandWidthMismatch(t *testing.T) {
	src := `
header h_t { bit<8> a; bit<16> b; }
control ingress(inout h_t hdr) {
	apply {
		bit<8> x = hdr.a + hdr.b;
	}
}
`
	_, _, sink := buildAndCheck(t, src)
	if !hasCode(sink, diag.E0005) {
		t.Fatalf("expected E0005 for a binary operation over mismatched widths, got %s", sink.Format())
	}
}

func TestVarDeclWidthMismatchOnWidthAnnotatedLiteral(t *testing.T) {
	// "bit<8> x = 16w0" must be an error: the literal's own declared width
	// disagrees with the variable's.
	src := `
control ingress(inout bit<8> hdr) {
	apply {
		bit<8> x = 16w0;
	}
}
`
	_, _, sink := buildAndCheck(t, src)
	if !hasCode(sink, diag.E0005) {
		t.Fatalf("expected E0005 for bit<8> x = 16w0, got %s", sink.Format())
	}
}

func TestUnannotatedLiteralIsWidthPolymorphic(t *testing.T) {
	src := `
control ingress(inout bit<8> hdr) {
	apply {
		bit<8> x = 0;
	}
}
`
	_, _, sink := buildAndCheck(t, src)
	if hasCode(sink, diag.E0005) {
		t.Fatalf("did not expect E0005 for an unannotated literal initializer, got %s", sink.Format())
	}
}

func TestSliceBoundsOutOfRange(t *testing.T) {
	src := `
header h_t { bit<8> f; }
control ingress(inout h_t hdr) {
	apply {
		bit<8> x = hdr.f[10:0];
	}
}
`
	_, _, sink := buildAndCheck(t, src)
	if !hasCode(sink, diag.E0006) {
		t.Fatalf("expected E0006 for a slice exceeding its operand's width, got %s", sink.Format())
	}
}

func TestApplyDirectionConformance(t *testing.T) {
	src := `
control Sub(out bit<8> x) {
	apply { }
}
control Top(inout bit<8> hdr) {
	Sub() s;
	apply {
		s.apply(5);
	}
}
`
	_, _, sink := buildAndCheck(t, src)
	if !hasCode(sink, diag.E0010) {
		t.Fatalf("expected E0010 for passing a non-assignable expression to an out parameter, got %s", sink.Format())
	}
}

func TestApplyDirectionConformanceAcceptsAnIdentifier(t *testing.T) {
	src := `
control Sub(out bit<8> x) {
	apply { }
}
control Top(inout bit<8> hdr) {
	Sub() s;
	apply {
		s.apply(hdr);
	}
}
`
	_, _, sink := buildAndCheck(t, src)
	if sink.HasErrors() {
		t.Fatalf("expected a clean compile for a valid apply call, got %s", sink.Format())
	}
}

func TestPackageInstanceArityMismatch(t *testing.T) {
	src := externPacketIn + `
parser p_t(packet_in pkt) {
	state start {
		transition accept;
	}
}
control ingress(inout bit<8> hdr) {
	apply { }
}
package top(p_t p, ingress i);
top(p_t()) main;
`
	_, _, sink := buildAndCheck(t, src)
	if !hasCode(sink, diag.E0015) {
		t.Fatalf("expected E0015 for a main instantiation with too few arguments, got %s", sink.Format())
	}
}

func TestPackageInstanceKindMismatch(t *testing.T) {
	// Mirrors the scenario where a control is passed where a parser is
	// expected: the error must be reported even though both names resolve
	// to a real declaration.
	src := externPacketIn + `
parser p_t(packet_in pkt) {
	state start {
		transition accept;
	}
}
control ingress(inout bit<8> hdr) {
	apply { }
}
package top(p_t p, ingress i);
top(ingress(), ingress()) main;
`
	_, _, sink := buildAndCheck(t, src)
	if !hasCode(sink, diag.E0015) {
		t.Fatalf("expected E0015 when a control is bound where a parser is expected, got %s", sink.Format())
	}
}
