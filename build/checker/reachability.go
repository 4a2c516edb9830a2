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
	"x4c/internal/ast"
)

// checkParserReachability verifies that p has a start state (E0013), warns
// about states unreachable from it (W0001), flags transitions naming a
// state that does not exist (E0012), and warns when a select has no
// wildcard case to make it total or when no path from start reaches accept
// (both W0002).
func checkParserReachability(p *ast.ParserDecl, sink *diag.Sink) {
	byName := make(map[string]*ast.State, len(p.States))
	for i := range p.States {
		byName[p.States[i].Name] = &p.States[i]
	}

	start, ok := byName["start"]
	if !ok {
		sink.Errorf(p.Span, diag.E0013, "parser %q has no start state", p.Name)
		return
	}

	reached := make(map[string]bool)
	var reachesAccept bool
	var visit func(st *ast.State)
	visit = func(st *ast.State) {
		if reached[st.Name] {
			return
		}
		reached[st.Name] = true
		if st.Transition == nil {
			return
		}
		visitTarget(st.Transition.Target, byName, &reachesAccept, visit)
	}
	visit(start)

	for i := range p.States {
		st := &p.States[i]
		if !reached[st.Name] {
			sink.Warnf(st.Span, diag.W0001, "state %q in parser %q is unreachable from start", st.Name, p.Name)
		}
		if st.Transition != nil {
			checkTransitionTargets(st.Transition.Target, byName, sink)
		}
	}
	if !reachesAccept {
		sink.Warnf(p.Span, diag.W0002, "parser %q has no path from start to accept", p.Name)
	}
}

func visitTarget(t ast.TransitionTarget, byName map[string]*ast.State, reachesAccept *bool, visit func(*ast.State)) {
	switch t.Kind {
	case ast.TransAccept:
		*reachesAccept = true
	case ast.TransReject:
		// Terminal, nothing further reachable from here.
	case ast.TransState:
		if st, ok := byName[t.State]; ok {
			visit(st)
		}
	case ast.TransSelect:
		if t.Select == nil {
			return
		}
		for _, c := range t.Select.Cases {
			switch {
			case c.Accept:
				*reachesAccept = true
			case c.Reject:
				// Terminal.
			default:
				if st, ok := byName[c.Target]; ok {
					visit(st)
				}
			}
		}
	}
}

// checkTransitionTargets reports a transition (or select case) naming a
// state that was never declared (E0012), and a select with no wildcard
// case among its patterns (W0002: it cannot be proven total).
func checkTransitionTargets(t ast.TransitionTarget, byName map[string]*ast.State, sink *diag.Sink) {
	switch t.Kind {
	case ast.TransState:
		if _, ok := byName[t.State]; !ok {
			sink.Errorf(t.Span, diag.E0012, "transition targets undefined state %q", t.State)
		}
	case ast.TransSelect:
		if t.Select == nil {
			return
		}
		hasWildcard := false
		for _, c := range t.Select.Cases {
			for _, pat := range c.Patterns {
				if _, ok := pat.(*ast.Wildcard); ok {
					hasWildcard = true
				}
			}
			if c.Accept || c.Reject {
				continue
			}
			if _, ok := byName[c.Target]; !ok {
				sink.Errorf(c.Span, diag.E0012, "select case targets undefined state %q", c.Target)
			}
		}
		if !hasWildcard {
			sink.Warnf(t.Select.Span, diag.W0002, "select has no wildcard case and may not be total")
		}
	}
}
