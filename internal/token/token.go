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

// Package token defines the lexical vocabulary of P4 source shared by the
// preprocessor, lexer, parser, and diagnostics sink: source spans and
// token kinds.
package token

import "fmt"

// Span locates a run of bytes in some input file. Spans propagate from the
// preprocessor so that tokens produced from an #include'd file continue to
// point at that file, not at the file that included it.
type Span struct {
	File   string
	Line   int
	Column int
	Length int
}

// String renders a span as "file:line:col".
func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// Kind classifies a token.
type Kind int

// The closed set of token kinds recognized by the lexer.
const (
	Illegal Kind = iota
	EOF

	Ident
	IntLiteral // decimal, hex, binary, or width-prefixed (16w0x86dd)

	// Punctuation and operators.
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semi
	Colon
	ColonColon
	Comma
	Dot
	DotDot
	Arrow
	Assign
	Plus
	Minus
	Star
	Amp
	AmpAmpAmp // &&& ternary mask operator
	AmpAmp
	Pipe
	PipePipe
	Caret
	Shl
	Shr
	Eq
	NotEq
	Lt
	LtEq
	Gt
	GtEq
	Bang
	Question
	Underscore

	// Keywords.
	KwParser
	KwState
	KwTransition
	KwSelect
	KwAccept
	KwReject
	KwControl
	KwAction
	KwTable
	KwKey
	KwActions
	KwDefaultAction
	KwConst
	KwEntries
	KwApply
	KwIf
	KwElse
	KwReturn
	KwStruct
	KwHeader
	KwTypedef
	KwExtern
	KwPackage
	KwBit
	KwInt
	KwVarbit
	KwBool
	KwTrue
	KwFalse
	KwIn
	KwOut
	KwInout
	KwError
	KwVoid
	KwSize
)

var keywords = map[string]Kind{
	"parser":         KwParser,
	"state":          KwState,
	"transition":     KwTransition,
	"select":         KwSelect,
	"accept":         KwAccept,
	"reject":         KwReject,
	"control":        KwControl,
	"action":         KwAction,
	"table":          KwTable,
	"key":            KwKey,
	"actions":        KwActions,
	"default_action": KwDefaultAction,
	"const":          KwConst,
	"entries":        KwEntries,
	"apply":          KwApply,
	"if":             KwIf,
	"else":           KwElse,
	"return":         KwReturn,
	"struct":         KwStruct,
	"header":         KwHeader,
	"typedef":        KwTypedef,
	"extern":         KwExtern,
	"package":        KwPackage,
	"bit":            KwBit,
	"int":            KwInt,
	"varbit":         KwVarbit,
	"bool":           KwBool,
	"true":           KwTrue,
	"false":          KwFalse,
	"in":             KwIn,
	"out":            KwOut,
	"inout":          KwInout,
	"error":          KwError,
	"void":           KwVoid,
	"size":           KwSize,
}

// Lookup returns the keyword kind for an identifier lexeme, or (Ident,
// false) if it is a plain identifier.
func Lookup(lexeme string) (Kind, bool) {
	if k, ok := keywords[lexeme]; ok {
		return k, true
	}
	return Ident, false
}

// Token is a single lexical unit: its kind, the exact source text it was
// lexed from, and the span it occupies.
type Token struct {
	Kind   Kind
	Lexeme string
	Span   Span

	// Value is populated for every IntLiteral token. HasWidth and Width
	// are set only when the literal carries an explicit width specifier,
	// e.g. 16w0x86dd -> Width=16, Value=0x86dd; HasWidth is false for bare
	// literals like 1701 or 0xA.
	HasWidth bool
	Width    int
	Value    uint64
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

var kindNames = map[Kind]string{
	Illegal: "illegal", EOF: "eof", Ident: "identifier", IntLiteral: "integer literal",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Semi: ";", Colon: ":", ColonColon: "::", Comma: ",", Dot: ".", DotDot: "..",
	Arrow: "->", Assign: "=", Plus: "+", Minus: "-", Star: "*", Amp: "&",
	AmpAmpAmp: "&&&", AmpAmp: "&&", Pipe: "|", PipePipe: "||", Caret: "^",
	Shl: "<<", Shr: ">>", Eq: "==", NotEq: "!=", Lt: "<", LtEq: "<=", Gt: ">",
	GtEq: ">=", Bang: "!", Question: "?", Underscore: "_",
}
