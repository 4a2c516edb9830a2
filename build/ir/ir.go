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

import "x4c/internal/ast"

// Program is the HLIR: every side-table the resolver produces over a single
// *ast.File. A Program never holds a mutable view into the AST — every
// table here is looked up by node identity, so the AST that produced it can
// be shared read-only with the checker and any backend.
type Program struct {
	File *ast.File

	// Decls is the global (top-level) name table: every constant, type,
	// extern, parser, control, package type and the main instantiation,
	// keyed by its declared name.
	Decls map[string]ast.Decl

	types map[ast.Expr]*Type

	// refs maps an identifier to whatever it resolves to. This is `any`
	// rather than ast.Decl because P4 identifiers can name things outside
	// the AST's top-level Decl sum: a parameter, a local variable, a
	// nested instantiation, an action declaration, or a table declaration,
	// none of which are themselves top-level declarations.
	refs map[*ast.Ident]any

	// instancePaths maps a nested instantiation ("Type() name;" inside a
	// parser or control body) to its dotted instance path.
	instancePaths map[*ast.Instantiation]string

	// rootInstancePaths maps one of PackageInstanceDecl's argument
	// expressions (each a *ast.CallExpr) to the root instance path it
	// establishes, e.g. "ingress" for the second argument of
	// "V1Switch(ParserImpl(), ingress()) main;".
	rootInstancePaths map[ast.Expr]string

	// tablePaths maps a table declaration to the instance path of the
	// control instance that owns it, joined with the table's own name
	// (e.g. "ingress.tbl" for a table named "tbl" inside the "ingress"
	// instance).
	tablePaths map[*ast.TableDecl]string

	// tableActions maps a table declaration to the resolved action
	// declarations named in its "actions" list, in source order.
	tableActions map[*ast.TableDecl][]*ast.ActionDecl
}

// New returns an empty Program over file, ready for a resolver to populate.
func New(file *ast.File) *Program {
	return &Program{
		File:              file,
		Decls:             make(map[string]ast.Decl),
		types:             make(map[ast.Expr]*Type),
		refs:              make(map[*ast.Ident]any),
		instancePaths:     make(map[*ast.Instantiation]string),
		rootInstancePaths: make(map[ast.Expr]string),
		tablePaths:        make(map[*ast.TableDecl]string),
		tableActions:      make(map[*ast.TableDecl][]*ast.ActionDecl),
	}
}

// SetType records e's fully elaborated type.
func (p *Program) SetType(e ast.Expr, t *Type) { p.types[e] = t }

// TypeOf returns e's elaborated type, if the resolver assigned one.
func (p *Program) TypeOf(e ast.Expr) (*Type, bool) {
	t, ok := p.types[e]
	return t, ok
}

// SetRef records that id resolves to referent (an ast.Decl, *ast.Param,
// *ast.VarDeclStmt, *ast.Instantiation, *ast.ActionDecl, or *ast.TableDecl).
func (p *Program) SetRef(id *ast.Ident, referent any) { p.refs[id] = referent }

// RefOf returns whatever id resolves to, if the resolver recorded it.
func (p *Program) RefOf(id *ast.Ident) (any, bool) {
	d, ok := p.refs[id]
	return d, ok
}

// SetInstancePath records inst's dotted instance path.
func (p *Program) SetInstancePath(inst *ast.Instantiation, path string) {
	p.instancePaths[inst] = path
}

// InstancePathOf returns inst's dotted instance path, if resolved.
func (p *Program) InstancePathOf(inst *ast.Instantiation) (string, bool) {
	path, ok := p.instancePaths[inst]
	return path, ok
}

// SetRootInstancePath records the instance path established by one of the
// main instantiation's argument expressions.
func (p *Program) SetRootInstancePath(call ast.Expr, path string) {
	p.rootInstancePaths[call] = path
}

// RootInstancePathOf returns the instance path established by call, if any.
func (p *Program) RootInstancePathOf(call ast.Expr) (string, bool) {
	path, ok := p.rootInstancePaths[call]
	return path, ok
}

// SetTablePath records the fully-qualified instance path of a table.
func (p *Program) SetTablePath(t *ast.TableDecl, path string) { p.tablePaths[t] = path }

// TablePathOf returns a table's fully-qualified instance path.
func (p *Program) TablePathOf(t *ast.TableDecl) (string, bool) {
	path, ok := p.tablePaths[t]
	return path, ok
}

// SetTableActions records the resolved action declarations for a table's
// "actions" list, in source order.
func (p *Program) SetTableActions(t *ast.TableDecl, actions []*ast.ActionDecl) {
	p.tableActions[t] = actions
}

// TableActionsOf returns the resolved action declarations for a table.
func (p *Program) TableActionsOf(t *ast.TableDecl) ([]*ast.ActionDecl, bool) {
	a, ok := p.tableActions[t]
	return a, ok
}
