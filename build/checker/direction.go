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
	"x4c/diag"
	"x4c/build/ir"
	"x4c/internal/ast"
)

// checkDirectionConformance finds every "instance.apply(args...)" call
// reachable from node and verifies that any argument bound to an out or
// inout parameter of the target control is an assignable expression
// (E0010): P4 writes results back through these parameters, so a literal
// or computed r-value there can never be observed by the caller.
func checkDirectionConformance(node ast.Node, prog *ir.Program, sink *diag.Sink) {
	ast.Walk(node, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		id, ok := call.Fun.(*ast.Ident)
		if !ok || len(id.Path) == 0 || id.Path[len(id.Path)-1] != "apply" {
			return true
		}
		referent, ok := prog.RefOf(id)
		if !ok {
			return true
		}
		inst, ok := referent.(*ast.Instantiation)
		if !ok {
			return true
		}
		decl, ok := prog.Decls[inst.TypeName]
		if !ok {
			return true
		}
		ctl, ok := decl.(*ast.ControlDecl)
		if !ok {
			return true
		}
		for i, param := range ctl.Params {
			if i >= len(call.Args) {
				break
			}
			if param.Direction != ast.DirOut && param.Direction != ast.DirInout {
				continue
			}
			if !isAssignable(call.Args[i]) {
				sink.Errorf(call.Args[i].Pos(), diag.E0010, "%s.apply argument %d must be assignable for %s parameter %q", inst.Name, i+1, param.Direction, param.Name)
			}
		}
		return true
	})
}

// isAssignable reports whether e could legally appear on the left of an
// AssignStmt: a plain, indexed, or sliced identifier path.
func isAssignable(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Ident:
		return true
	case *ast.IndexExpr:
		return isAssignable(e.X)
	case *ast.SliceExpr:
		return isAssignable(e.X)
	default:
		return false
	}
}
