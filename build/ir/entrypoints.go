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

import (
	"fmt"
	"strings"

	"x4c/internal/ast"
)

// TableOp is one of the externally callable table-management operations a
// backend must emit for every reachable table.
type TableOp string

const (
	OpAdd    TableOp = "add"
	OpRemove TableOp = "remove"
	OpGet    TableOp = "get"
)

// EntryPointName computes the externally callable name a backend must emit
// for the given operation on a table whose fully-qualified instance path
// (as recorded by Program.SetTablePath: the enclosing control's instance
// path joined with the table's own name, e.g. "ingress.tbl") is tablePath.
// The naming scheme "<op>_<instance_path>_<table_name>_entry" is part of
// the external contract: a control plane can compute this name from P4
// source structure alone, without consulting the compiled backend.
func EntryPointName(op TableOp, tablePath string) string {
	return fmt.Sprintf("%s_%s_entry", op, strings.ReplaceAll(tablePath, ".", "_"))
}

// ReachableTables returns, in argument order, the tables belonging to each
// control that pi's package instantiation binds directly — one entry per
// "ControlName()" argument of "top(ParserImpl(), ingress()) main;" that
// names a control rather than a parser. This is the set of tables a
// backend or a diagnostic dump must emit table-management entry points
// for: a table declared on a control that is never passed to main is dead
// weight no control plane can ever reach.
func ReachableTables(prog *Program, pi *ast.PackageInstanceDecl) []*ast.TableDecl {
	var tables []*ast.TableDecl
	for _, arg := range pi.Args {
		call, ok := arg.(*ast.CallExpr)
		if !ok {
			continue
		}
		id, ok := call.Fun.(*ast.Ident)
		if !ok || len(id.Path) != 1 {
			continue
		}
		ctl, ok := prog.Decls[id.Path[0]].(*ast.ControlDecl)
		if !ok {
			continue
		}
		for i := range ctl.Tables {
			tables = append(tables, &ctl.Tables[i])
		}
	}
	return tables
}
