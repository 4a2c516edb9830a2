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

package ast

// Walk traverses the AST rooted at node, calling fn for every node reached.
// If fn returns false for a node, Walk does not descend into its children.
// This is how the checker's extract, width, and direction rules examine a
// parser or control without needing bespoke traversal code in each rule.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *File:
		for _, d := range n.Decls {
			Walk(d, fn)
		}
	case *HeaderTypeDecl, *StructTypeDecl, *TypedefDecl, *ErrorDecl, *ExternDecl, *PackageTypeDecl:
		// Leaf declarations: fields/types are not themselves walkable Nodes
		// in this closed sum (Type does not require walking for checker
		// purposes today).
	case *ConstDecl:
		Walk(n.Value, fn)
	case *ParserDecl:
		for _, p := range n.Locals {
			Walk(p, fn)
		}
		for _, st := range n.States {
			for _, s := range st.Stmts {
				Walk(s, fn)
			}
			if st.Transition != nil {
				Walk(st.Transition, fn)
			}
		}
	case *ControlDecl:
		for _, l := range n.Locals {
			Walk(l, fn)
		}
		for _, a := range n.Actions {
			for _, s := range a.Body {
				Walk(s, fn)
			}
		}
		for _, tbl := range n.Tables {
			for _, k := range tbl.Keys {
				Walk(k.Key, fn)
			}
		}
		if n.Apply != nil {
			Walk(n.Apply, fn)
		}
	case *PackageInstanceDecl:
		// Nothing further to walk; instantiation arguments are resolved by
		// the builder directly from n.Args.
	case *BlockStmt:
		for _, s := range n.Stmts {
			Walk(s, fn)
		}
	case *IfStmt:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		if n.Else != nil {
			Walk(n.Else, fn)
		}
	case *AssignStmt:
		Walk(n.LHS, fn)
		Walk(n.RHS, fn)
	case *VarDeclStmt:
		if n.Init != nil {
			Walk(n.Init, fn)
		}
	case *ReturnStmt:
		if n.Value != nil {
			Walk(n.Value, fn)
		}
	case *ExprStmt:
		Walk(n.X, fn)
	case *TransitionStmt:
		if n.Target.Select != nil {
			Walk(n.Target.Select, fn)
		}
	case *SelectStmt:
		for _, k := range n.Keys {
			Walk(k, fn)
		}
	case *CallExpr:
		Walk(n.Fun, fn)
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *BinaryExpr:
		Walk(n.X, fn)
		Walk(n.Y, fn)
	case *UnaryExpr:
		Walk(n.X, fn)
	case *SliceExpr:
		Walk(n.X, fn)
		Walk(n.Hi, fn)
		Walk(n.Lo, fn)
	case *IndexExpr:
		Walk(n.X, fn)
		Walk(n.Index, fn)
	case *MaskExpr:
		Walk(n.Value, fn)
		Walk(n.Mask, fn)
	case *RangeExpr:
		Walk(n.Lo, fn)
		Walk(n.Hi, fn)
	case *Ident, *IntLit, *Wildcard:
		// Leaves.
	}
}
