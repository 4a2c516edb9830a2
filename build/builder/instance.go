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
	"x4c/diag"
	"x4c/internal/ast"
)

// buildInstantiation resolves a nested instantiation's constructor
// arguments and type name. Its instance path is not known yet: that
// depends on the root instance name assigned once the package instantiation
// binds a concrete root path, so path assignment happens in a second walk
// from buildPackageInstance.
func (b *Builder) buildInstantiation(sc *scope, inst *ast.Instantiation) {
	for _, a := range inst.Args {
		b.elaborateExpr(sc, nil, a)
	}
	if _, ok := b.prog.Decls[inst.TypeName]; !ok {
		b.sink.Errorf(inst.Span, diag.E0002, "undefined type %q", inst.TypeName)
	}
}

// buildPackageInstance resolves the "main" entry point: each argument names
// a parser or control type directly (spec.md's package instantiation
// syntax uses inline constructor calls, not named instance variables), and
// that type name becomes the root segment of every instance path nested
// beneath it (spec.md §4.4 point 3).
func (b *Builder) buildPackageInstance(pi *ast.PackageInstanceDecl) {
	if _, ok := b.prog.Decls[pi.PackageType]; !ok {
		b.sink.Errorf(pi.Span, diag.E0002, "undefined package type %q", pi.PackageType)
	}

	for _, arg := range pi.Args {
		call, ok := arg.(*ast.CallExpr)
		if !ok {
			b.sink.Errorf(arg.Pos(), diag.E0022, "package instantiation argument must be a constructor call")
			continue
		}
		id, ok := call.Fun.(*ast.Ident)
		if !ok || len(id.Path) != 1 {
			b.sink.Errorf(call.Pos(), diag.E0022, "package instantiation argument must name a parser or control type")
			continue
		}
		b.elaborateExpr(b.global, nil, call)

		typeName := id.Path[0]
		if _, ok := b.prog.Decls[typeName]; !ok {
			b.sink.Errorf(call.Pos(), diag.E0002, "undefined type %q", typeName)
			continue
		}
		b.prog.SetRootInstancePath(call, typeName)
		b.assignInstancePaths(typeName, typeName, make(map[string]bool))
	}
}

// assignInstancePaths recursively assigns dotted instance paths to every
// instantiation and table transitively reachable from the type named
// typeName, given that it has been bound to rootPath. visiting guards
// against an instantiation cycle (P4 forbids one, but the resolver should
// terminate rather than loop if a malformed program has one).
func (b *Builder) assignInstancePaths(typeName, rootPath string, visiting map[string]bool) {
	if visiting[typeName] {
		return
	}
	visiting[typeName] = true
	defer delete(visiting, typeName)

	decl, ok := b.prog.Decls[typeName]
	if !ok {
		return
	}

	var insts []*ast.Instantiation
	switch d := decl.(type) {
	case *ast.ParserDecl:
		for i := range d.Insts {
			insts = append(insts, &d.Insts[i])
		}
	case *ast.ControlDecl:
		for i := range d.Insts {
			insts = append(insts, &d.Insts[i])
		}
		for i := range d.Tables {
			tbl := &d.Tables[i]
			b.prog.SetTablePath(tbl, rootPath+"."+tbl.Name)
		}
	}

	for _, inst := range insts {
		path := rootPath + "." + inst.Name
		b.prog.SetInstancePath(inst, path)
		b.assignInstancePaths(inst.TypeName, path, visiting)
	}
}
