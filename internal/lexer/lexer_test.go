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

package lexer

import (
	"testing"

	"x4c/diag"
	"x4c/internal/preprocess"
	"x4c/internal/token"
)

func lexAll(t *testing.T, src string) ([]token.Token, *diag.Sink) {
	t.Helper()
	unit := &preprocess.Unit{Lines: []preprocess.Line{{File: "t.p4", Number: 1, Text: src}}}
	sink := diag.NewSink()
	lx := New(unit, sink)
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks, sink
}

func kinds(toks []token.Token) []token.Kind {
	var ks []token.Kind
	for _, t := range toks {
		ks = append(ks, t.Kind)
	}
	return ks
}

func TestKeywordsAndIdents(t *testing.T) {
	toks, sink := lexAll(t, "parser Foo state accept")
	if sink.HasErrors() {
		t.Fatal(sink.Format())
	}
	want := []token.Kind{token.KwParser, token.Ident, token.KwState, token.KwAccept, token.EOF}
	if got := kinds(toks); !equalKinds(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestWidthLiterals(t *testing.T) {
	toks, sink := lexAll(t, "16w0x86dd 8w1 1701 0xA 0b10")
	if sink.HasErrors() {
		t.Fatal(sink.Format())
	}
	if toks[0].Value != 0x86dd || toks[0].Width != 16 || !toks[0].HasWidth {
		t.Fatalf("bad width literal: %+v", toks[0])
	}
	if toks[1].Value != 1 || toks[1].Width != 8 {
		t.Fatalf("bad width literal: %+v", toks[1])
	}
	if toks[2].Value != 1701 {
		t.Fatalf("bad decimal literal: %+v", toks[2])
	}
	if toks[3].Value != 0xA {
		t.Fatalf("bad hex literal: %+v", toks[3])
	}
	if toks[4].Value != 2 {
		t.Fatalf("bad binary literal: %+v", toks[4])
	}
}

func TestWidthTruncationWarns(t *testing.T) {
	_, sink := lexAll(t, "8w256")
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Code == diag.W0003 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a truncation warning, got %v", sink.Diagnostics())
	}
}

func TestWideWidthLiteralIsNotMalformed(t *testing.T) {
	// spec.md §4.2's IPv6-address constants need more than 64 bits of
	// precision; they must lex cleanly rather than being rejected as
	// malformed for overflowing a uint64.
	toks, sink := lexAll(t, "128w0xfd000000000000000000000000000001")
	if sink.HasErrors() {
		t.Fatalf("unexpected errors for a wide literal: %s", sink.Format())
	}
	if !toks[0].HasWidth || toks[0].Width != 128 {
		t.Fatalf("bad wide literal: %+v", toks[0])
	}
}

func TestLoneUnderscoreIsWildcard(t *testing.T) {
	toks, sink := lexAll(t, "_ _foo")
	if sink.HasErrors() {
		t.Fatal(sink.Format())
	}
	want := []token.Kind{token.Underscore, token.Ident, token.EOF}
	if got := kinds(toks); !equalKinds(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestMultiCharOperators(t *testing.T) {
	toks, sink := lexAll(t, "&&& == != <= >= << >> && || :: .. ->")
	if sink.HasErrors() {
		t.Fatal(sink.Format())
	}
	want := []token.Kind{
		token.AmpAmpAmp, token.Eq, token.NotEq, token.LtEq, token.GtEq,
		token.Shl, token.Shr, token.AmpAmp, token.PipePipe, token.ColonColon,
		token.DotDot, token.Arrow, token.EOF,
	}
	if got := kinds(toks); !equalKinds(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	toks, sink := lexAll(t, "a /* block */ b // trailing")
	if sink.HasErrors() {
		t.Fatal(sink.Format())
	}
	if len(toks) != 3 { // a, b, EOF
		t.Fatalf("unexpected tokens: %v", toks)
	}
}

func TestUnrecognizedCharacter(t *testing.T) {
	_, sink := lexAll(t, "a $ b")
	if !sink.HasErrors() {
		t.Fatal("expected an error for '$'")
	}
}

func equalKinds(a, b []token.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
