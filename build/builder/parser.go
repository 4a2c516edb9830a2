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

// buildParser opens the parser's own scope, declares its parameters,
// locals, and instantiations, then resolves every state body. Reachability
// and "has a start state" are checker rules (spec.md §4.5), not resolver
// ones; here we only bind names and elaborate types.
func (b *Builder) buildParser(p *ast.ParserDecl) {
	sc := newScope(b.global)

	for i := range p.Params {
		param := &p.Params[i]
		if !sc.declare(param.Name, param) {
			b.sink.Errorf(param.Span, diag.E0003, "redeclaration of parameter %q", param.Name)
		}
	}
	for _, l := range p.Locals {
		b.buildStmt(sc, nil, l)
	}
	for i := range p.Insts {
		inst := &p.Insts[i]
		b.buildInstantiation(sc, inst)
		if !sc.declare(inst.Name, inst) {
			b.sink.Errorf(inst.Span, diag.E0003, "redeclaration of instance %q", inst.Name)
		}
	}
	for i := range p.States {
		st := &p.States[i]
		stateScope := newScope(sc)
		for _, stmt := range st.Stmts {
			b.buildStmt(stateScope, nil, stmt)
		}
		if st.Transition != nil {
			b.buildTransition(stateScope, nil, st.Transition)
		}
	}
}
