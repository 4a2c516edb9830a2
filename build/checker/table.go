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

// checkTable enforces the match-kind combination rule (E0001: at most one
// lpm key) and that every const-entries pattern is shaped the way its
// key's match kind requires (E0009).
func checkTable(tbl *ast.TableDecl, sink *diag.Sink) {
	lpmCount := 0
	for _, k := range tbl.Keys {
		if k.MatchKind == ast.MatchLPM {
			lpmCount++
			if lpmCount > 1 {
				sink.Errorf(k.Span, diag.E0001, "table %q has more than one lpm match key", tbl.Name)
			}
		}
	}

	for _, entry := range tbl.Entries {
		for i, pat := range entry.Patterns {
			if i >= len(tbl.Keys) {
				break
			}
			checkPatternMatchesKind(pat, tbl.Keys[i].MatchKind, tbl.Name, sink)
		}
	}
}

func checkPatternMatchesKind(pat ast.Expr, mk ast.MatchKind, tblName string, sink *diag.Sink) {
	switch mk {
	case ast.MatchExact:
		switch pat.(type) {
		case *ast.IntLit, *ast.Wildcard:
		default:
			sink.Errorf(pat.Pos(), diag.E0009, "table %q: exact key requires a value or wildcard pattern", tblName)
		}
	case ast.MatchRange:
		switch pat.(type) {
		case *ast.RangeExpr, *ast.IntLit, *ast.Wildcard:
		default:
			sink.Errorf(pat.Pos(), diag.E0009, "table %q: range key requires a range, value, or wildcard pattern", tblName)
		}
	case ast.MatchTernary:
		switch pat.(type) {
		case *ast.IntLit, *ast.MaskExpr, *ast.Wildcard:
		default:
			sink.Errorf(pat.Pos(), diag.E0009, "table %q: ternary key requires a value or masked pattern", tblName)
		}
	case ast.MatchLPM:
		checkLPMPattern(pat, tblName, sink)
	}
}

func checkLPMPattern(pat ast.Expr, tblName string, sink *diag.Sink) {
	switch p := pat.(type) {
	case *ast.Wildcard, *ast.IntLit:
		// A bare value is a full-length prefix; both are permitted.
	case *ast.MaskExpr:
		lit, ok := p.Mask.(*ast.IntLit)
		if !ok {
			return
		}
		width := lit.Width
		if !lit.HasWidth {
			width = 64
		}
		if !isContiguousPrefixMask(lit.Value, width) {
			sink.Errorf(p.Span, diag.E0009, "table %q: lpm mask must be a contiguous run of ones from the most significant bit", tblName)
		}
	default:
		sink.Errorf(pat.Pos(), diag.E0009, "table %q: lpm key requires a value or masked-prefix pattern", tblName)
	}
}

// isContiguousPrefixMask reports whether v, read as a width-bit value, is a
// run of one-bits starting at the most significant bit followed by a run
// of zero-bits: the shape a longest-prefix-match mask must have.
func isContiguousPrefixMask(v uint64, width int) bool {
	if width <= 0 || width > 64 {
		width = 64
	}
	seenZero := false
	for i := width - 1; i >= 0; i-- {
		if (v>>uint(i))&1 == 1 {
			if seenZero {
				return false
			}
		} else {
			seenZero = true
		}
	}
	return true
}
