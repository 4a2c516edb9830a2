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

// Package lexer converts a preprocessed line stream into a token stream,
// classifying keywords, identifiers, width-annotated integer literals, and
// the multi-character operator forms P4 source uses.
package lexer

import (
	"math/big"
	"strconv"
	"strings"

	"x4c/diag"
	"x4c/internal/preprocess"
	"x4c/internal/token"
)

// Lexer scans a preprocess.Unit's line stream into tokens on demand.
type Lexer struct {
	lines []preprocess.Line
	li    int // index of the line currently being scanned
	col   int // 0-based byte offset into lines[li].Text
	sink  *diag.Sink
}

// New returns a lexer over unit, appending any lexical diagnostics to sink.
func New(unit *preprocess.Unit, sink *diag.Sink) *Lexer {
	return &Lexer{lines: unit.Lines, sink: sink}
}

func (lx *Lexer) atEnd() bool {
	return lx.li >= len(lx.lines)
}

func (lx *Lexer) curLine() string {
	return lx.lines[lx.li].Text
}

func (lx *Lexer) curSpan(length int) token.Span {
	return token.Span{
		File:   lx.lines[lx.li].File,
		Line:   lx.lines[lx.li].Number,
		Column: lx.col + 1,
		Length: length,
	}
}

func (lx *Lexer) advanceLine() {
	lx.li++
	lx.col = 0
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Next returns the next token, an Illegal token for unrecognized input (a
// diagnostic is also appended to the sink), or an EOF token once the input
// is exhausted.
func (lx *Lexer) Next() token.Token {
	for {
		if !lx.skipWhitespaceAndComments() {
			continue
		}
		break
	}
	if lx.atEnd() {
		return token.Token{Kind: token.EOF}
	}
	line := lx.curLine()
	b := line[lx.col]

	switch {
	case isIdentStart(b):
		return lx.scanIdent()
	case isDigit(b):
		return lx.scanNumber()
	default:
		return lx.scanOperator()
	}
}

// skipWhitespaceAndComments advances past whitespace and comments, looping
// until it is positioned at meaningful content or EOF; it then returns true
// (it never returns false).
func (lx *Lexer) skipWhitespaceAndComments() bool {
	for {
		if lx.atEnd() {
			return true
		}
		line := lx.curLine()
		if lx.col >= len(line) {
			lx.advanceLine()
			continue
		}
		b := line[lx.col]
		if b == ' ' || b == '\t' || b == '\r' {
			lx.col++
			continue
		}
		if strings.HasPrefix(line[lx.col:], "//") {
			lx.advanceLine()
			continue
		}
		if strings.HasPrefix(line[lx.col:], "/*") {
			lx.skipBlockComment()
			continue
		}
		return true
	}
}

func (lx *Lexer) skipBlockComment() {
	startSpan := lx.curSpan(2)
	lx.col += 2
	for {
		if lx.atEnd() {
			lx.sink.Errorf(startSpan, diag.E0021, "unterminated block comment")
			return
		}
		line := lx.curLine()
		if lx.col >= len(line) {
			lx.advanceLine()
			continue
		}
		if strings.HasPrefix(line[lx.col:], "*/") {
			lx.col += 2
			return
		}
		lx.col++
	}
}

func (lx *Lexer) scanIdent() token.Token {
	line := lx.curLine()
	start := lx.col
	for lx.col < len(line) && isIdentCont(line[lx.col]) {
		lx.col++
	}
	lexeme := line[start:lx.col]
	span := token.Span{File: lx.lines[lx.li].File, Line: lx.lines[lx.li].Number, Column: start + 1, Length: lx.col - start}
	if lexeme == "_" {
		return token.Token{Kind: token.Underscore, Lexeme: lexeme, Span: span}
	}
	if kw, ok := token.Lookup(lexeme); ok {
		return token.Token{Kind: kw, Lexeme: lexeme, Span: span}
	}
	return token.Token{Kind: token.Ident, Lexeme: lexeme, Span: span}
}

// scanNumber handles decimal, 0x, 0b literals and the WwV width form, e.g.
// 1701, 0xA, 0b10, 16w0x86dd, 8w1.
func (lx *Lexer) scanNumber() token.Token {
	line := lx.curLine()
	start := lx.col
	digits := lx.scanDigitRun(line, lx.col, 10)
	// Check for a width specifier: an unsigned decimal run followed by 'w'.
	if digits > lx.col && digits < len(line) && line[digits] == 'w' {
		widthStr := line[lx.col:digits]
		width, _ := strconv.Atoi(widthStr)
		lx.col = digits + 1 // consume the 'w'
		base, prefixLen := detectBase(line[lx.col:])
		lx.col += prefixLen
		valDigitsEnd := lx.scanDigitRun(line, lx.col, base)
		valStr := line[lx.col:valDigitsEnd]
		lx.col = valDigitsEnd
		lexeme := line[start:lx.col]
		span := token.Span{File: lx.lines[lx.li].File, Line: lx.lines[lx.li].Number, Column: start + 1, Length: lx.col - start}
		value, ok := parseBigUint(valStr, base)
		if !ok {
			lx.sink.Errorf(span, diag.E0020, "malformed integer literal %q", lexeme)
		}
		if width > 0 && width < 64 {
			max := uint64(1)<<uint(width) - 1
			if value > max {
				lx.sink.Warnf(span, diag.W0003, "value %d truncated to fit width %d", value, width)
				value &= max
			}
		}
		return token.Token{Kind: token.IntLiteral, Lexeme: lexeme, Span: span, HasWidth: true, Width: width, Value: value}
	}

	// No width specifier: a bare decimal, 0x, or 0b literal.
	base, prefixLen := detectBase(line[lx.col:])
	lx.col += prefixLen
	end := lx.scanDigitRun(line, lx.col, base)
	valStr := line[lx.col:end]
	lx.col = end
	lexeme := line[start:lx.col]
	span := token.Span{File: lx.lines[lx.li].File, Line: lx.lines[lx.li].Number, Column: start + 1, Length: lx.col - start}
	value, ok := parseBigUint(valStr, base)
	if !ok {
		lx.sink.Errorf(span, diag.E0020, "malformed integer literal %q", lexeme)
	}
	return token.Token{Kind: token.IntLiteral, Lexeme: lexeme, Span: span, Value: value}
}

// parseBigUint parses valStr in the given base without strconv's 64-bit
// range check, so a literal wider than 64 bits (spec.md §4.2's IPv6-address
// constants, e.g. 128w0xfd00...) is accepted rather than rejected as
// malformed. Only the low 64 bits are retained in Value, matching every
// other place x4c tracks a literal's width separately from its bit
// pattern; width-driven truncation of values that fit in fewer than 64
// bits is still checked by the caller.
func parseBigUint(valStr string, base int) (uint64, bool) {
	bi, ok := new(big.Int).SetString(valStr, base)
	if !ok {
		return 0, false
	}
	bi.And(bi, maxUint64)
	return bi.Uint64(), true
}

var maxUint64 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(1))

// detectBase inspects a 0x/0b prefix and returns the numeric base plus how
// many prefix bytes to skip; base 10 and 0 prefix bytes otherwise.
func detectBase(s string) (base int, prefixLen int) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return 16, 2
	}
	if strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B") {
		return 2, 2
	}
	return 10, 0
}

func (lx *Lexer) scanDigitRun(line string, from int, base int) int {
	i := from
	for i < len(line) && isBaseDigit(line[i], base) {
		i++
	}
	return i
}

func isBaseDigit(b byte, base int) bool {
	switch base {
	case 16:
		return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
	case 2:
		return b == '0' || b == '1'
	default:
		return isDigit(b)
	}
}

type opForm struct {
	text string
	kind token.Kind
}

// Ordered longest-match-first so that, e.g., "&&&" is not lexed as "&&"
// followed by "&".
var multiCharOps = []opForm{
	{"&&&", token.AmpAmpAmp},
	{"==", token.Eq},
	{"!=", token.NotEq},
	{"<=", token.LtEq},
	{">=", token.GtEq},
	{"<<", token.Shl},
	{">>", token.Shr},
	{"&&", token.AmpAmp},
	{"||", token.PipePipe},
	{"::", token.ColonColon},
	{"..", token.DotDot},
	{"->", token.Arrow},
}

var singleCharOps = map[byte]token.Kind{
	'(': token.LParen, ')': token.RParen,
	'{': token.LBrace, '}': token.RBrace,
	'[': token.LBracket, ']': token.RBracket,
	';': token.Semi, ':': token.Colon, ',': token.Comma, '.': token.Dot,
	'=': token.Assign, '+': token.Plus, '-': token.Minus, '*': token.Star,
	'&': token.Amp, '|': token.Pipe, '^': token.Caret,
	'<': token.Lt, '>': token.Gt, '!': token.Bang, '?': token.Question,
}

func (lx *Lexer) scanOperator() token.Token {
	line := lx.curLine()
	rest := line[lx.col:]
	for _, op := range multiCharOps {
		if strings.HasPrefix(rest, op.text) {
			span := lx.curSpan(len(op.text))
			lx.col += len(op.text)
			return token.Token{Kind: op.kind, Lexeme: op.text, Span: span}
		}
	}
	b := rest[0]
	if kind, ok := singleCharOps[b]; ok {
		span := lx.curSpan(1)
		lx.col++
		return token.Token{Kind: kind, Lexeme: string(b), Span: span}
	}
	span := lx.curSpan(1)
	lx.sink.Errorf(span, diag.E0019, "unrecognized character %q", b)
	lx.col++
	// Resynchronize to the next whitespace, per spec.md §4.2.
	line = lx.curLine()
	for lx.col < len(line) && line[lx.col] != ' ' && line[lx.col] != '\t' {
		lx.col++
	}
	return token.Token{Kind: token.Illegal, Lexeme: string(b), Span: span}
}
