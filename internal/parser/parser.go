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

// Package parser implements x4c's hand-written recursive-descent parser
// with one-token lookahead, extended with local backtracking for the small
// number of constructs P4's grammar does not make LL(1): disambiguating an
// instantiation ("Name(args) id;") from a type reference, and select-case
// patterns.
package parser

import (
	"x4c/diag"
	"x4c/internal/ast"
	"x4c/internal/lexer"
	"x4c/internal/token"
)

// Parser consumes a pre-lexed token buffer and builds the AST.
type Parser struct {
	toks []token.Token
	pos  int
	sink *diag.Sink
}

// Parse lexes the entirety of lx and parses it into a *ast.File. Syntax
// errors are appended to sink; the parser recovers at statement and brace
// boundaries so a single invocation can report more than one error.
func Parse(lx *lexer.Lexer, sink *diag.Sink) *ast.File {
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	p := &Parser{toks: toks, sink: sink}
	return p.parseFile()
}

// --- token stream helpers -------------------------------------------------

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) peekN(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}
func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}
func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) mark() int      { return p.pos }
func (p *Parser) reset(m int)    { p.pos = m }

func (p *Parser) expect(k token.Kind) token.Token {
	if p.cur().Kind != k {
		p.errorf(diag.E0022, "expected %s, found %s %q", k, p.cur().Kind, p.cur().Lexeme)
		return p.cur()
	}
	return p.advance()
}

func (p *Parser) errorf(code diag.Code, format string, a ...any) {
	p.sink.Errorf(p.cur().Span, code, format, a...)
}

// syncTo skips tokens until it finds one of the given kinds (consuming a
// terminating semicolon) or a closing brace at nesting depth zero, or EOF.
// This is the parser's error-recovery strategy from spec.md §4.3.
func (p *Parser) syncTo(kinds ...token.Kind) {
	depth := 0
	for {
		t := p.cur()
		if t.Kind == token.EOF {
			return
		}
		if depth == 0 {
			for _, k := range kinds {
				if t.Kind == k {
					if k == token.Semi {
						p.advance()
					}
					return
				}
			}
		}
		switch t.Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}

func (p *Parser) syncStmt() { p.syncTo(token.Semi, token.RBrace) }

// --- top level -------------------------------------------------------------

func (p *Parser) parseFile() *ast.File {
	f := &ast.File{}
	for !p.at(token.EOF) {
		start := p.pos
		d := p.parseTopDecl()
		if d != nil {
			f.Decls = append(f.Decls, d)
		}
		if p.pos == start {
			// No progress was made; avoid an infinite loop by skipping the
			// offending token.
			p.errorf(diag.E0022, "unexpected token %q", p.cur().Lexeme)
			p.advance()
		}
	}
	return f
}

func (p *Parser) parseTopDecl() ast.Decl {
	switch p.cur().Kind {
	case token.KwConst:
		return p.parseConstDecl()
	case token.KwHeader:
		return p.parseHeaderTypeDecl()
	case token.KwStruct:
		return p.parseStructTypeDecl()
	case token.KwTypedef:
		return p.parseTypedefDecl()
	case token.KwExtern:
		return p.parseExternDecl()
	case token.KwError:
		return p.parseErrorDecl()
	case token.KwParser:
		return p.parseParserDecl()
	case token.KwControl:
		return p.parseControlDecl()
	case token.KwPackage:
		return p.parsePackageTypeDecl()
	case token.Ident:
		// Only remaining top-level form: a package instantiation, "Name(args) main;".
		if d := p.tryParsePackageInstance(); d != nil {
			return d
		}
		p.errorf(diag.E0022, "unexpected identifier %q at top level", p.cur().Lexeme)
		p.syncTo(token.Semi)
		return nil
	default:
		p.errorf(diag.E0022, "unexpected token %q at top level", p.cur().Lexeme)
		p.syncTo(token.Semi)
		return nil
	}
}

// --- types -------------------------------------------------------------

func (p *Parser) parseType() ast.Type {
	start := p.cur().Span
	switch p.cur().Kind {
	case token.KwBit:
		p.advance()
		p.expect(token.Lt)
		// Widths are parsed above comparison precedence so the closing '>'
		// is not taken as a greater-than operator.
		w := p.parseBinary(binaryPrec(token.Pipe))
		p.expect(token.Gt)
		return &ast.BitType{Span: start, Width: w}
	case token.KwInt:
		p.advance()
		if p.at(token.Lt) {
			p.advance()
			w := p.parseBinary(binaryPrec(token.Pipe))
			p.expect(token.Gt)
			return &ast.IntType{Span: start, Width: w}
		}
		return &ast.IntType{Span: start, Width: &ast.IntLit{Span: start, Value: 32}}
	case token.KwVarbit:
		p.advance()
		p.expect(token.Lt)
		w := p.parseBinary(binaryPrec(token.Pipe))
		p.expect(token.Gt)
		return &ast.VarbitType{Span: start, MaxWidth: w}
	case token.KwBool:
		p.advance()
		return &ast.BoolType{Span: start}
	case token.KwVoid:
		p.advance()
		return &ast.VoidType{Span: start}
	case token.KwError:
		p.advance()
		return &ast.ErrorTypeRef{Span: start}
	case token.Ident:
		name := p.advance().Lexeme
		nt := &ast.NamedType{Span: start, Name: name}
		if p.at(token.Lt) {
			m := p.mark()
			p.advance()
			var params []ast.Type
			ok := true
			for !p.at(token.Gt) {
				params = append(params, p.parseType())
				if p.at(token.Comma) {
					p.advance()
					continue
				}
				break
			}
			if p.at(token.Gt) {
				p.advance()
				nt.Params = params
			} else {
				// Not actually a generic instantiation (e.g. "a < b"
				// elsewhere would never reach parseType, but be defensive).
				p.reset(m)
				ok = false
			}
			_ = ok
		}
		return nt
	default:
		p.errorf(diag.E0022, "expected a type, found %q", p.cur().Lexeme)
		return &ast.NamedType{Span: start, Name: "<error>"}
	}
}

func (p *Parser) parseDirection() ast.Direction {
	switch p.cur().Kind {
	case token.KwIn:
		p.advance()
		return ast.DirIn
	case token.KwOut:
		p.advance()
		return ast.DirOut
	case token.KwInout:
		p.advance()
		return ast.DirInout
	default:
		return ast.DirNone
	}
}

func (p *Parser) parseParam() ast.Param {
	start := p.cur().Span
	dir := p.parseDirection()
	typ := p.parseType()
	name := ""
	if p.at(token.Ident) {
		name = p.advance().Lexeme
	}
	return ast.Param{Span: start, Direction: dir, Type: typ, Name: name}
}

func (p *Parser) parseParamList() []ast.Param {
	p.expect(token.LParen)
	var params []ast.Param
	for !p.at(token.RParen) && !p.at(token.EOF) {
		params = append(params, p.parseParam())
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RParen)
	return params
}

func (p *Parser) parseFields() []ast.Field {
	p.expect(token.LBrace)
	var fields []ast.Field
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		start := p.cur().Span
		typ := p.parseType()
		name := p.expect(token.Ident).Lexeme
		p.expect(token.Semi)
		fields = append(fields, ast.Field{Span: start, Name: name, Type: typ})
	}
	p.expect(token.RBrace)
	return fields
}

// --- expressions -------------------------------------------------------

// binaryPrec gives each binary operator's precedence, lowest to highest,
// following the ordering spec.md §3 lists.
func binaryPrec(k token.Kind) int {
	switch k {
	case token.PipePipe:
		return 1
	case token.AmpAmp:
		return 2
	case token.Eq, token.NotEq:
		return 3
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return 4
	case token.Pipe:
		return 5
	case token.Caret:
		return 6
	case token.Amp:
		return 7
	case token.Shl, token.Shr:
		return 8
	case token.Plus, token.Minus:
		return 9
	case token.Star:
		return 10
	default:
		return 0
	}
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseMaskOrUnary()
	for {
		prec := binaryPrec(p.cur().Kind)
		if prec == 0 || prec < minPrec {
			return left
		}
		op := p.advance()
		right := p.parseBinary(prec + 1)
		left = &ast.BinaryExpr{Span: op.Span, Op: op.Kind, X: left, Y: right}
	}
}

// parseMaskOrUnary handles "value &&& mask" (which binds looser than the
// unary/postfix forms but is not a general binary operator: it only ever
// appears as a table-key or select-case pattern) alongside plain unary
// expressions.
func (p *Parser) parseMaskOrUnary() ast.Expr {
	x := p.parseUnary()
	if p.at(token.AmpAmpAmp) {
		op := p.advance()
		mask := p.parseUnary()
		return &ast.MaskExpr{Span: op.Span, Value: x, Mask: mask}
	}
	return x
}

func (p *Parser) parseUnary() ast.Expr {
	if p.at(token.Bang) || p.at(token.Minus) {
		op := p.advance()
		x := p.parseUnary()
		return &ast.UnaryExpr{Span: op.Span, Op: op.Kind, X: x}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case token.Dot:
			p.advance()
			var name string
			if p.at(token.KwApply) {
				// "tbl.apply()", "sub.apply(...)": apply is a keyword.
				name = p.advance().Lexeme
			} else {
				name = p.expect(token.Ident).Lexeme
			}
			id, ok := x.(*ast.Ident)
			if ok {
				id.Path = append(id.Path, name)
			} else {
				x = &ast.Ident{Span: x.Pos(), Path: []string{"", name}}
			}
		case token.LBracket:
			start := p.advance()
			hi := p.parseExpr()
			if p.at(token.Colon) {
				p.advance()
				lo := p.parseExpr()
				p.expect(token.RBracket)
				x = &ast.SliceExpr{Span: start.Span, X: x, Hi: hi, Lo: lo}
			} else {
				p.expect(token.RBracket)
				x = &ast.IndexExpr{Span: start.Span, X: x, Index: hi}
			}
		case token.LParen:
			start := p.advance()
			var args []ast.Expr
			for !p.at(token.RParen) && !p.at(token.EOF) {
				args = append(args, p.parseExpr())
				if p.at(token.Comma) {
					p.advance()
					continue
				}
				break
			}
			p.expect(token.RParen)
			x = &ast.CallExpr{Span: start.Span, Fun: x, Args: args}
		default:
			return x
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	t := p.cur()
	switch t.Kind {
	case token.IntLiteral:
		p.advance()
		return &ast.IntLit{Span: t.Span, Value: t.Value, HasWidth: t.HasWidth, Width: t.Width}
	case token.KwTrue:
		p.advance()
		return &ast.IntLit{Span: t.Span, Value: 1}
	case token.KwFalse:
		p.advance()
		return &ast.IntLit{Span: t.Span, Value: 0}
	case token.Ident:
		p.advance()
		return &ast.Ident{Span: t.Span, Path: []string{t.Lexeme}}
	case token.Underscore:
		p.advance()
		return &ast.Wildcard{Span: t.Span}
	case token.LParen:
		p.advance()
		x := p.parseExpr()
		p.expect(token.RParen)
		return x
	default:
		p.errorf(diag.E0022, "expected an expression, found %q", t.Lexeme)
		p.advance()
		return &ast.Ident{Span: t.Span, Path: []string{"<error>"}}
	}
}

// --- statements -------------------------------------------------------

func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.expect(token.LBrace)
	blk := &ast.BlockStmt{Span: start.Span}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		s := p.parseStmt()
		if s != nil {
			blk.Stmts = append(blk.Stmts, s)
		}
	}
	p.expect(token.RBrace)
	return blk
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur().Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwReturn:
		start := p.advance()
		var v ast.Expr
		if !p.at(token.Semi) {
			v = p.parseExpr()
		}
		p.expect(token.Semi)
		return &ast.ReturnStmt{Span: start.Span, Value: v}
	case token.KwTransition:
		return p.parseTransitionStmt()
	case token.KwBit, token.KwInt, token.KwBool, token.KwVarbit:
		return p.parseVarDeclStmt()
	case token.Ident:
		if decl := p.tryParseVarDeclFromIdentType(); decl != nil {
			return decl
		}
		return p.parseExprOrAssignStmt()
	default:
		p.errorf(diag.E0022, "unexpected token %q in statement", p.cur().Lexeme)
		p.syncStmt()
		return nil
	}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.advance()
	p.expect(token.LParen)
	cond := p.parseExpr()
	p.expect(token.RParen)
	then := p.parseBlock()
	var els ast.Stmt
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.KwIf) {
			els = p.parseIfStmt()
		} else {
			els = p.parseBlock()
		}
	}
	return &ast.IfStmt{Span: start.Span, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseVarDeclStmt() ast.Stmt {
	start := p.cur().Span
	typ := p.parseType()
	name := p.expect(token.Ident).Lexeme
	var init ast.Expr
	if p.at(token.Assign) {
		p.advance()
		init = p.parseExpr()
	}
	p.expect(token.Semi)
	return &ast.VarDeclStmt{Span: start, Type: typ, Name: name, Init: init}
}

// tryParseVarDeclFromIdentType disambiguates "TypeName ident [= expr];"
// (a local variable declaration whose type is a named/user type) from an
// assignment or call statement starting with an identifier, using
// backtracking as spec.md §4.3 calls for.
func (p *Parser) tryParseVarDeclFromIdentType() ast.Stmt {
	m := p.mark()
	typ := p.parseType()
	if p.at(token.Ident) && (p.peekN(1).Kind == token.Assign || p.peekN(1).Kind == token.Semi) {
		name := p.advance().Lexeme
		var init ast.Expr
		if p.at(token.Assign) {
			p.advance()
			init = p.parseExpr()
		}
		p.expect(token.Semi)
		return &ast.VarDeclStmt{Span: typ.Pos(), Type: typ, Name: name, Init: init}
	}
	p.reset(m)
	return nil
}

func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.cur().Span
	x := p.parseExpr()
	if p.at(token.Assign) {
		p.advance()
		rhs := p.parseExpr()
		p.expect(token.Semi)
		return &ast.AssignStmt{Span: start, LHS: x, RHS: rhs}
	}
	p.expect(token.Semi)
	return &ast.ExprStmt{Span: start, X: x}
}

func (p *Parser) parseTransitionStmt() *ast.TransitionStmt {
	start := p.advance()
	switch p.cur().Kind {
	case token.KwAccept:
		p.advance()
		p.expect(token.Semi)
		return &ast.TransitionStmt{Span: start.Span, Target: ast.TransitionTarget{Span: start.Span, Kind: ast.TransAccept}}
	case token.KwReject:
		p.advance()
		p.expect(token.Semi)
		return &ast.TransitionStmt{Span: start.Span, Target: ast.TransitionTarget{Span: start.Span, Kind: ast.TransReject}}
	case token.KwSelect:
		sel := p.parseSelectStmt()
		return &ast.TransitionStmt{Span: start.Span, Target: ast.TransitionTarget{Span: start.Span, Kind: ast.TransSelect, Select: sel}}
	case token.Ident:
		name := p.advance().Lexeme
		p.expect(token.Semi)
		return &ast.TransitionStmt{Span: start.Span, Target: ast.TransitionTarget{Span: start.Span, Kind: ast.TransState, State: name}}
	default:
		p.errorf(diag.E0022, "expected a transition target, found %q", p.cur().Lexeme)
		p.syncStmt()
		return &ast.TransitionStmt{Span: start.Span, Target: ast.TransitionTarget{Span: start.Span, Kind: ast.TransReject}}
	}
}

func (p *Parser) parseSelectStmt() *ast.SelectStmt {
	start := p.advance()
	p.expect(token.LParen)
	var keys []ast.Expr
	for !p.at(token.RParen) && !p.at(token.EOF) {
		keys = append(keys, p.parseExpr())
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RParen)
	p.expect(token.LBrace)
	sel := &ast.SelectStmt{Span: start.Span, Keys: keys}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		sel.Cases = append(sel.Cases, p.parseSelectCase())
	}
	p.expect(token.RBrace)
	return sel
}

func (p *Parser) parseSelectCase() ast.SelectCase {
	start := p.cur().Span
	var patterns []ast.Expr
	for {
		patterns = append(patterns, p.parseSelectPattern())
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.Colon)
	c := ast.SelectCase{Span: start, Patterns: patterns}
	switch p.cur().Kind {
	case token.KwAccept:
		p.advance()
		c.Accept = true
	case token.KwReject:
		p.advance()
		c.Reject = true
	case token.Ident:
		c.Target = p.advance().Lexeme
	default:
		p.errorf(diag.E0022, "expected a transition target in select case, found %q", p.cur().Lexeme)
	}
	p.expect(token.Semi)
	return c
}

// parseSelectPattern parses one select-case or table-entry pattern: a
// wildcard, a masked value, a range, or a plain value.
func (p *Parser) parseSelectPattern() ast.Expr {
	if p.at(token.Underscore) {
		t := p.advance()
		return &ast.Wildcard{Span: t.Span}
	}
	v := p.parseExpr()
	if p.at(token.DotDot) {
		op := p.advance()
		hi := p.parseExpr()
		return &ast.RangeExpr{Span: op.Span, Lo: v, Hi: hi}
	}
	return v
}

// --- declarations -------------------------------------------------------

func (p *Parser) parseConstDecl() *ast.ConstDecl {
	start := p.advance() // 'const'
	typ := p.parseType()
	name := p.expect(token.Ident).Lexeme
	p.expect(token.Assign)
	val := p.parseExpr()
	p.expect(token.Semi)
	return &ast.ConstDecl{Span: start.Span, Name: name, Type: typ, Value: val}
}

func (p *Parser) parseHeaderTypeDecl() *ast.HeaderTypeDecl {
	start := p.advance()
	name := p.expect(token.Ident).Lexeme
	fields := p.parseFields()
	return &ast.HeaderTypeDecl{Span: start.Span, Name: name, Fields: fields}
}

func (p *Parser) parseStructTypeDecl() *ast.StructTypeDecl {
	start := p.advance()
	name := p.expect(token.Ident).Lexeme
	fields := p.parseFields()
	return &ast.StructTypeDecl{Span: start.Span, Name: name, Fields: fields}
}

func (p *Parser) parseTypedefDecl() *ast.TypedefDecl {
	start := p.advance()
	typ := p.parseType()
	name := p.expect(token.Ident).Lexeme
	p.expect(token.Semi)
	return &ast.TypedefDecl{Span: start.Span, Name: name, Type: typ}
}

func (p *Parser) parseErrorDecl() *ast.ErrorDecl {
	start := p.advance()
	p.expect(token.LBrace)
	var members []string
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		members = append(members, p.expect(token.Ident).Lexeme)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBrace)
	return &ast.ErrorDecl{Span: start.Span, Members: members}
}

func (p *Parser) parseExternDecl() *ast.ExternDecl {
	start := p.advance()
	name := p.expect(token.Ident).Lexeme
	ext := &ast.ExternDecl{Span: start.Span, Name: name}
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		ext.Methods = append(ext.Methods, p.parseExternMethod())
	}
	p.expect(token.RBrace)
	return ext
}

func (p *Parser) parseExternMethod() ast.ExternMethod {
	start := p.cur().Span
	ret := p.parseType()
	name := p.expect(token.Ident).Lexeme
	m := ast.ExternMethod{Span: start, Name: name, Return: ret}
	if p.at(token.Lt) {
		p.advance()
		for !p.at(token.Gt) && !p.at(token.EOF) {
			m.TypeParams = append(m.TypeParams, p.expect(token.Ident).Lexeme)
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.Gt)
	}
	m.Params = p.parseParamList()
	p.expect(token.Semi)
	return m
}

// parseLocalOrInst parses one entry of a parser/control's local-declaration
// area: either a local variable declaration or an instantiation
// ("Type(args) name;"), disambiguated per spec.md §4.3 by backtracking.
func (p *Parser) parseLocalOrInst() (ast.Stmt, *ast.Instantiation) {
	if inst := p.tryParseInstantiation(); inst != nil {
		return nil, inst
	}
	return p.parseVarDeclStmt(), nil
}

func (p *Parser) tryParseInstantiation() *ast.Instantiation {
	if !p.at(token.Ident) {
		return nil
	}
	m := p.mark()
	start := p.cur().Span
	typeName := p.advance().Lexeme
	var typeArgs []ast.Type
	if p.at(token.Lt) {
		p.advance()
		for !p.at(token.Gt) && !p.at(token.EOF) {
			typeArgs = append(typeArgs, p.parseType())
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		if !p.at(token.Gt) {
			p.reset(m)
			return nil
		}
		p.advance()
	}
	if !p.at(token.LParen) {
		p.reset(m)
		return nil
	}
	p.advance()
	var args []ast.Expr
	for !p.at(token.RParen) && !p.at(token.EOF) {
		args = append(args, p.parseExpr())
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if !p.at(token.RParen) {
		p.reset(m)
		return nil
	}
	p.advance()
	if !p.at(token.Ident) {
		p.reset(m)
		return nil
	}
	name := p.advance().Lexeme
	if !p.at(token.Semi) {
		p.reset(m)
		return nil
	}
	p.advance()
	return &ast.Instantiation{Span: start, TypeName: typeName, TypeArgs: typeArgs, Args: args, Name: name}
}

func (p *Parser) parseParserDecl() *ast.ParserDecl {
	start := p.advance()
	name := p.expect(token.Ident).Lexeme
	params := p.parseParamList()
	prs := &ast.ParserDecl{Span: start.Span, Name: name, Params: params}
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.KwState) {
			prs.States = append(prs.States, p.parseState())
			continue
		}
		s, inst := p.parseLocalOrInst()
		if inst != nil {
			prs.Insts = append(prs.Insts, *inst)
		} else if s != nil {
			prs.Locals = append(prs.Locals, s)
		}
	}
	p.expect(token.RBrace)
	return prs
}

func (p *Parser) parseState() ast.State {
	start := p.advance()
	name := p.expect(token.Ident).Lexeme
	p.expect(token.LBrace)
	st := ast.State{Span: start.Span, Name: name}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.KwTransition) {
			st.Transition = p.parseTransitionStmt()
			continue
		}
		s := p.parseStmt()
		if s != nil {
			st.Stmts = append(st.Stmts, s)
		}
	}
	p.expect(token.RBrace)
	if st.Transition == nil {
		p.sink.Errorf(st.Span, diag.E0022, "state %q is missing a terminal transition", name)
	}
	return st
}

func (p *Parser) parseControlDecl() *ast.ControlDecl {
	start := p.advance()
	name := p.expect(token.Ident).Lexeme
	params := p.parseParamList()
	ctl := &ast.ControlDecl{Span: start.Span, Name: name, Params: params}
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.KwAction:
			ctl.Actions = append(ctl.Actions, p.parseActionDecl())
		case token.KwTable:
			ctl.Tables = append(ctl.Tables, p.parseTableDecl())
		case token.KwApply:
			p.advance()
			ctl.Apply = p.parseBlock()
		default:
			s, inst := p.parseLocalOrInst()
			if inst != nil {
				ctl.Insts = append(ctl.Insts, *inst)
			} else if s != nil {
				ctl.Locals = append(ctl.Locals, s)
			}
		}
	}
	p.expect(token.RBrace)
	return ctl
}

func (p *Parser) parseActionDecl() ast.ActionDecl {
	start := p.advance()
	name := p.expect(token.Ident).Lexeme
	params := p.parseParamList()
	body := p.parseBlock()
	return ast.ActionDecl{Span: start.Span, Name: name, Params: params, Body: body.Stmts}
}

func (p *Parser) parseActionInvocation() ast.ActionInvocation {
	start := p.cur().Span
	name := p.expect(token.Ident).Lexeme
	var args []ast.Expr
	if p.at(token.LParen) {
		p.advance()
		for !p.at(token.RParen) && !p.at(token.EOF) {
			args = append(args, p.parseExpr())
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RParen)
	}
	return ast.ActionInvocation{Span: start, Name: name, Args: args}
}

func (p *Parser) parseTableDecl() ast.TableDecl {
	start := p.advance()
	name := p.expect(token.Ident).Lexeme
	tbl := ast.TableDecl{Span: start.Span, Name: name}
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.KwKey:
			p.advance()
			p.expect(token.Assign)
			p.expect(token.LBrace)
			for !p.at(token.RBrace) && !p.at(token.EOF) {
				kstart := p.cur().Span
				keyExpr := p.parseExpr()
				p.expect(token.Colon)
				mk := p.parseMatchKind()
				p.expect(token.Semi)
				tbl.Keys = append(tbl.Keys, ast.TableKey{Span: kstart, Key: keyExpr, MatchKind: mk})
			}
			p.expect(token.RBrace)
		case token.KwActions:
			p.advance()
			p.expect(token.Assign)
			p.expect(token.LBrace)
			for !p.at(token.RBrace) && !p.at(token.EOF) {
				tbl.Actions = append(tbl.Actions, p.expect(token.Ident).Lexeme)
				p.expect(token.Semi)
			}
			p.expect(token.RBrace)
		case token.KwDefaultAction:
			p.advance()
			p.expect(token.Assign)
			inv := p.parseActionInvocation()
			p.expect(token.Semi)
			tbl.DefaultAction = &inv
		case token.KwConst:
			p.advance()
			p.expect(token.KwEntries)
			p.expect(token.Assign)
			p.expect(token.LBrace)
			tbl.HasEntries = true
			for !p.at(token.RBrace) && !p.at(token.EOF) {
				tbl.Entries = append(tbl.Entries, p.parseTableEntry())
			}
			p.expect(token.RBrace)
		case token.KwSize:
			p.advance()
			p.expect(token.Assign)
			tbl.Size = p.parseExpr()
			p.expect(token.Semi)
		default:
			p.errorf(diag.E0022, "unexpected token %q in table body", p.cur().Lexeme)
			p.syncStmt()
		}
	}
	p.expect(token.RBrace)
	return tbl
}

func (p *Parser) parseMatchKind() ast.MatchKind {
	name := p.expect(token.Ident).Lexeme
	switch name {
	case "exact":
		return ast.MatchExact
	case "ternary":
		return ast.MatchTernary
	case "lpm":
		return ast.MatchLPM
	case "range":
		return ast.MatchRange
	default:
		p.errorf(diag.E0022, "unknown match kind %q", name)
		return ast.MatchExact
	}
}

func (p *Parser) parseTableEntry() ast.TableEntry {
	start := p.cur()
	var patterns []ast.Expr
	if p.at(token.LParen) {
		p.advance()
		for !p.at(token.RParen) && !p.at(token.EOF) {
			patterns = append(patterns, p.parseSelectPattern())
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RParen)
	} else {
		// A single-key entry may omit the parentheses: "10..20 : a();".
		patterns = append(patterns, p.parseSelectPattern())
	}
	p.expect(token.Colon)
	inv := p.parseActionInvocation()
	p.expect(token.Semi)
	return ast.TableEntry{Span: start.Span, Patterns: patterns, Action: inv}
}

func (p *Parser) parsePackageTypeDecl() *ast.PackageTypeDecl {
	start := p.advance()
	name := p.expect(token.Ident).Lexeme
	p.expect(token.LParen)
	pt := &ast.PackageTypeDecl{Span: start.Span, Name: name}
	for !p.at(token.RParen) && !p.at(token.EOF) {
		pstart := p.cur().Span
		typeName := p.expect(token.Ident).Lexeme
		pname := p.expect(token.Ident).Lexeme
		pt.Params = append(pt.Params, ast.PackageParam{Span: pstart, Name: pname, TypeName: typeName})
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RParen)
	p.expect(token.Semi)
	return pt
}

// tryParsePackageInstance parses "PackageType(args...) main;". It never
// backtracks past consuming the leading identifier because, at top level,
// an identifier can only begin a package instantiation once every keyword
// -led declaration form has been ruled out by parseTopDecl's dispatch.
func (p *Parser) tryParsePackageInstance() *ast.PackageInstanceDecl {
	start := p.cur().Span
	pkgType := p.advance().Lexeme
	if !p.at(token.LParen) {
		return nil
	}
	p.advance()
	var args []ast.Expr
	for !p.at(token.RParen) && !p.at(token.EOF) {
		args = append(args, p.parseExpr())
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RParen)
	name := p.expect(token.Ident).Lexeme
	p.expect(token.Semi)
	return &ast.PackageInstanceDecl{Span: start, Name: name, PackageType: pkgType, Args: args}
}
