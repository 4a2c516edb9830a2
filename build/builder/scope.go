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

import "x4c/base/ordered"

// scope is one level of the resolver's scope stack (spec.md §4.4 point 1):
// global, then one per parser/control, then one per state/action/apply
// block. Values are `any` because a name can resolve to a top-level
// ast.Decl, a *ast.Param, a *ast.VarDeclStmt, a *ast.Instantiation, a
// *ast.ActionDecl, or a *ast.TableDecl — none of those last five are members of the AST's
// closed Decl sum. Using an ordered map keeps symbol iteration
// deterministic, matching the compiler's determinism invariant.
type scope struct {
	parent *scope
	names  *ordered.Map[string, any]
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: ordered.NewMap[string, any]()}
}

// declare adds name to this scope only (never a parent), returning false if
// name is already bound in this exact scope. Shadowing a name from an
// enclosing scope is allowed; redeclaring within the same scope is not.
func (s *scope) declare(name string, v any) bool {
	if _, ok := s.names.Load(name); ok {
		return false
	}
	s.names.Store(name, v)
	return true
}

// lookup searches this scope and its ancestors, innermost first.
func (s *scope) lookup(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.names.Load(name); ok {
			return v, true
		}
	}
	return nil, false
}
