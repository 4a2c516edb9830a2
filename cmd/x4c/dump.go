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

package main

import (
	"fmt"
	"io"
	"strings"

	"x4c/api"
	"x4c/build/ir"
	"x4c/internal/ast"
	"x4c/internal/preprocess"
)

// dumpPreprocessed prints the flattened, macro-expanded line stream
// (spec.md §6, "--show-pre"). Human-readable only; not bit-exact.
func dumpPreprocessed(w io.Writer, unit *preprocess.Unit) {
	fmt.Fprintln(w, "-- preprocessed source --")
	for _, l := range unit.Lines {
		fmt.Fprintf(w, "%s:%d: %s\n", l.File, l.Number, l.Text)
	}
}

// dumpTokens prints one lexed token per line (spec.md §6, "--show-tokens").
func dumpTokens(w io.Writer, toks []api.TokenDump) {
	fmt.Fprintln(w, "-- tokens --")
	for _, t := range toks {
		fmt.Fprintf(w, "%d:%d %s %q\n", t.Line, t.Column, t.Kind, t.Lexeme)
	}
}

// dumpAST prints one line per top-level declaration (spec.md §6,
// "--show-ast"). It does not attempt to reproduce source text: it names
// the declaration kind and its identifying fields, which is enough to spot
// a misparse without a full pretty-printer.
func dumpAST(w io.Writer, file *ast.File) {
	fmt.Fprintln(w, "-- ast --")
	for _, d := range file.Decls {
		fmt.Fprintln(w, describeDecl(d))
	}
}

func describeDecl(d ast.Decl) string {
	switch d := d.(type) {
	case *ast.ConstDecl:
		return fmt.Sprintf("const %s", d.Name)
	case *ast.HeaderTypeDecl:
		return fmt.Sprintf("header %s { %s }", d.Name, fieldNames(d.Fields))
	case *ast.StructTypeDecl:
		return fmt.Sprintf("struct %s { %s }", d.Name, fieldNames(d.Fields))
	case *ast.TypedefDecl:
		return fmt.Sprintf("typedef %s", d.Name)
	case *ast.ErrorDecl:
		return fmt.Sprintf("error { %s }", strings.Join(d.Members, ", "))
	case *ast.ExternDecl:
		return fmt.Sprintf("extern %s (%d methods)", d.Name, len(d.Methods))
	case *ast.ParserDecl:
		return fmt.Sprintf("parser %s (%d params, %d states)", d.Name, len(d.Params), len(d.States))
	case *ast.ControlDecl:
		return fmt.Sprintf("control %s (%d params, %d actions, %d tables)", d.Name, len(d.Params), len(d.Actions), len(d.Tables))
	case *ast.PackageTypeDecl:
		return fmt.Sprintf("package %s (%d params)", d.Name, len(d.Params))
	case *ast.PackageInstanceDecl:
		return fmt.Sprintf("%s main : %d args", d.PackageType, len(d.Args))
	default:
		return fmt.Sprintf("<unknown decl %T>", d)
	}
}

func fieldNames(fields []ast.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

// dumpHLIR prints the resolver's side-table contributions reachable from
// each top-level parser/control/package instance (spec.md §6,
// "--show-hlir"): instance paths, table paths, and bound table actions.
func dumpHLIR(w io.Writer, file *ast.File, prog *ir.Program) {
	fmt.Fprintln(w, "-- hlir --")
	for _, d := range file.Decls {
		switch d := d.(type) {
		case *ast.ParserDecl:
			for i := range d.Insts {
				dumpInstantiation(w, prog, &d.Insts[i])
			}
		case *ast.ControlDecl:
			for i := range d.Insts {
				dumpInstantiation(w, prog, &d.Insts[i])
			}
			for i := range d.Tables {
				tbl := &d.Tables[i]
				path, _ := prog.TablePathOf(tbl)
				actions, _ := prog.TableActionsOf(tbl)
				names := make([]string, len(actions))
				for i, a := range actions {
					names[i] = a.Name
				}
				fmt.Fprintf(w, "table %s -> path=%s actions=[%s]\n", tbl.Name, path, strings.Join(names, ", "))
			}
		case *ast.PackageInstanceDecl:
			for _, arg := range d.Args {
				if root, ok := prog.RootInstancePathOf(arg); ok {
					fmt.Fprintf(w, "main root instance -> %s\n", root)
				}
			}
			for _, tbl := range ir.ReachableTables(prog, d) {
				path, ok := prog.TablePathOf(tbl)
				if !ok {
					continue
				}
				fmt.Fprintf(w, "reachable table %s: %s %s %s\n", path,
					ir.EntryPointName(ir.OpAdd, path),
					ir.EntryPointName(ir.OpRemove, path),
					ir.EntryPointName(ir.OpGet, path))
			}
		}
	}
}

func dumpInstantiation(w io.Writer, prog *ir.Program, inst *ast.Instantiation) {
	path, _ := prog.InstancePathOf(inst)
	fmt.Fprintf(w, "instance %s : %s -> path=%s\n", inst.Name, inst.TypeName, path)
}
