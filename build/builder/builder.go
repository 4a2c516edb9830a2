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

// Package builder is the resolver (spec.md §4.4): a single pass over an
// *ast.File that builds the scope stack, elaborates every type expression
// to a concrete form, assigns instance paths to instantiations, and binds
// each table's actions — recording all of it in a build/ir.Program
// side-table rather than mutating the AST.
package builder

import (
	"x4c/diag"
	"x4c/build/ir"
	"x4c/internal/ast"
)

// Builder runs the resolver pass. A Builder is single-use: construct one
// with New per compilation and call Build once.
type Builder struct {
	sink   *diag.Sink
	prog   *ir.Program
	global *scope

	// errorMembers accumulates every member declared across every "error
	// { ... }" declaration in the file: spec.md's supplemented feature
	// treats the error type as an open, file-wide enumeration rather than
	// a single declaration.
	errorMembers map[string]bool
}

// New returns a resolver that reports diagnostics to sink.
func New(sink *diag.Sink) *Builder {
	return &Builder{sink: sink, errorMembers: make(map[string]bool)}
}

// Build resolves file, returning the HLIR side-table. Callers should check
// sink.HasErrors() before handing the result to the checker, per spec.md
// §7's abort-before-next-pass rule; Build itself always returns a Program,
// partially populated, so dumps remain possible even after fatal errors.
func (b *Builder) Build(file *ast.File) *ir.Program {
	b.prog = ir.New(file)
	b.global = newScope(nil)

	b.declareGlobals(file)

	for _, d := range file.Decls {
		switch d := d.(type) {
		case *ast.ConstDecl:
			b.elaborateExpr(b.global, nil, d.Value)
		case *ast.ParserDecl:
			b.buildParser(d)
		case *ast.ControlDecl:
			b.buildControl(d)
		case *ast.PackageInstanceDecl:
			b.buildPackageInstance(d)
		}
	}

	return b.prog
}

// declareGlobals populates the global scope and Program.Decls with every
// top-level declaration, diagnosing redeclarations (E0003). error decls are
// special: their members merge into a single open set instead of competing
// for one "error" name.
func (b *Builder) declareGlobals(file *ast.File) {
	for _, d := range file.Decls {
		if ed, ok := d.(*ast.ErrorDecl); ok {
			for _, m := range ed.Members {
				if b.errorMembers[m] {
					b.sink.Errorf(ed.Span, diag.E0003, "redeclaration of error member %q", m)
					continue
				}
				b.errorMembers[m] = true
			}
			continue
		}
		name := d.DeclName()
		if !b.global.declare(name, d) {
			b.sink.Errorf(d.Pos(), diag.E0003, "redeclaration of %q", name)
			continue
		}
		b.prog.Decls[name] = d
	}
}
