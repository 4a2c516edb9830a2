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
	"x4c/internal/token"
)

// buildControl opens the control's scope, declares parameters, locals,
// instantiations and actions, binds every table's actions (spec.md §4.4
// point 4), and resolves the apply block.
func (b *Builder) buildControl(c *ast.ControlDecl) {
	sc := newScope(b.global)

	for i := range c.Params {
		param := &c.Params[i]
		if !sc.declare(param.Name, param) {
			b.sink.Errorf(param.Span, diag.E0003, "redeclaration of parameter %q", param.Name)
		}
	}
	for _, l := range c.Locals {
		b.buildStmt(sc, nil, l)
	}
	for i := range c.Insts {
		inst := &c.Insts[i]
		b.buildInstantiation(sc, inst)
		if !sc.declare(inst.Name, inst) {
			b.sink.Errorf(inst.Span, diag.E0003, "redeclaration of instance %q", inst.Name)
		}
	}

	actionsByName := make(map[string]*ast.ActionDecl)
	for i := range c.Actions {
		act := &c.Actions[i]
		if !sc.declare(act.Name, act) {
			b.sink.Errorf(act.Span, diag.E0003, "redeclaration of action %q", act.Name)
		}
		actionsByName[act.Name] = act

		actionScope := newScope(sc)
		for j := range act.Params {
			p := &act.Params[j]
			actionScope.declare(p.Name, p)
		}
		for _, stmt := range act.Body {
			b.buildStmt(actionScope, nil, stmt)
		}
	}

	for i := range c.Tables {
		tbl := &c.Tables[i]
		if !sc.declare(tbl.Name, tbl) {
			b.sink.Errorf(tbl.Span, diag.E0003, "redeclaration of table %q", tbl.Name)
		}
		b.buildTable(sc, c, tbl, actionsByName)
	}

	if c.Apply != nil {
		b.buildStmt(sc, nil, c.Apply)
	}
}

func (b *Builder) buildTable(sc *scope, c *ast.ControlDecl, tbl *ast.TableDecl, actionsByName map[string]*ast.ActionDecl) {
	tableScope := newScope(sc)
	for _, k := range tbl.Keys {
		b.elaborateExpr(tableScope, nil, k.Key)
	}

	var resolved []*ast.ActionDecl
	for _, name := range tbl.Actions {
		act, ok := actionsByName[name]
		if !ok {
			b.sink.Errorf(tbl.Span, diag.E0014, "table %q references action %q not visible in control %q", tbl.Name, name, c.Name)
			continue
		}
		resolved = append(resolved, act)
	}
	b.prog.SetTableActions(tbl, resolved)

	if tbl.DefaultAction != nil {
		b.resolveActionInvocation(sc, actionsByName, tbl.Span, *tbl.DefaultAction, tbl, c.Name)
	}
	for _, entry := range tbl.Entries {
		for _, p := range entry.Patterns {
			b.elaborateExpr(tableScope, nil, p)
		}
		b.resolveActionInvocation(sc, actionsByName, entry.Span, entry.Action, tbl, c.Name)
	}
}

func (b *Builder) resolveActionInvocation(sc *scope, actionsByName map[string]*ast.ActionDecl, span token.Span, inv ast.ActionInvocation, tbl *ast.TableDecl, ctlName string) {
	if _, ok := actionsByName[inv.Name]; !ok {
		b.sink.Errorf(span, diag.E0014, "table %q invokes action %q not visible in control %q", tbl.Name, inv.Name, ctlName)
	}
	for _, a := range inv.Args {
		b.elaborateExpr(sc, nil, a)
	}
}
