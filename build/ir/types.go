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

// Package ir holds the high-level intermediate representation: the
// resolved-type and resolved-name side-table the resolver produces over an
// immutable AST. Nothing in this package mutates the AST it describes; every
// piece of information here is reached by looking a node up by identity in
// a Program, never by a field on the node itself.
package ir

import "fmt"

// Kind discriminates an elaborated Type.
type Kind int

const (
	KindBit Kind = iota
	KindInt
	KindVarbit
	KindBool
	KindVoid
	KindError
	KindHeader
	KindStruct
	KindExtern
	KindTypeVar
	KindAction
	KindTable
	KindParser
	KindControl
	KindPackage
)

func (k Kind) String() string {
	switch k {
	case KindBit:
		return "bit"
	case KindInt:
		return "int"
	case KindVarbit:
		return "varbit"
	case KindBool:
		return "bool"
	case KindVoid:
		return "void"
	case KindError:
		return "error"
	case KindHeader:
		return "header"
	case KindStruct:
		return "struct"
	case KindExtern:
		return "extern"
	case KindTypeVar:
		return "typevar"
	case KindAction:
		return "action"
	case KindTable:
		return "table"
	case KindParser:
		return "parser"
	case KindControl:
		return "control"
	case KindPackage:
		return "package"
	default:
		return "unknown"
	}
}

// Type is a fully elaborated type: widths are concrete integers (constant
// folded from whatever expression declared them) and named types are
// resolved to the declaration they refer to, never left as a dangling name.
type Type struct {
	Kind Kind

	// Width is populated for KindBit/KindInt/KindVarbit.
	Width int

	// Name is the source name for KindHeader/KindStruct/KindExtern/
	// KindTypeVar/KindParser/KindControl/KindPackage/KindAction/KindTable.
	Name string

	// TypeArgs holds substituted generic type arguments, e.g. the T in a
	// resolved call to "Checksum.run<T>".
	TypeArgs []*Type
}

// Bit returns the elaborated type bit<width>.
func Bit(width int) *Type { return &Type{Kind: KindBit, Width: width} }

// Int returns the elaborated type int<width>.
func Int(width int) *Type { return &Type{Kind: KindInt, Width: width} }

// Bool is the singleton boolean type.
var Bool = &Type{Kind: KindBool}

// Void is the singleton void type.
var Void = &Type{Kind: KindVoid}

// ErrorType is the singleton built-in error type.
var ErrorType = &Type{Kind: KindError}

// Named returns an elaborated reference to a user-declared type.
func Named(kind Kind, name string) *Type { return &Type{Kind: kind, Name: name} }

// Poly returns the type of a width-unannotated integer literal: it is
// compatible with any concrete bit<N> or int<N> per the width law (spec's
// testable width property), rather than fixing a width of its own.
func Poly() *Type { return &Type{Kind: KindBit, Width: -1} }

// IsPoly reports whether t is the width-polymorphic literal type.
func (t *Type) IsPoly() bool { return t != nil && t.Width == -1 }

// Equal reports whether t and other describe the same elaborated type.
// Width-polymorphic comparisons (an untyped literal against a concrete
// width) are handled by the checker, not here: Equal is strict.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind || t.Width != other.Width || t.Name != other.Name {
		return false
	}
	if len(t.TypeArgs) != len(other.TypeArgs) {
		return false
	}
	for i := range t.TypeArgs {
		if !t.TypeArgs[i].Equal(other.TypeArgs[i]) {
			return false
		}
	}
	return true
}

// String renders a type the way P4 source would write it, for dumps and
// diagnostic messages.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindBit:
		if t.Width < 0 {
			return "<untyped integer>"
		}
		return fmt.Sprintf("bit<%d>", t.Width)
	case KindInt:
		return fmt.Sprintf("int<%d>", t.Width)
	case KindVarbit:
		return fmt.Sprintf("varbit<%d>", t.Width)
	case KindBool:
		return "bool"
	case KindVoid:
		return "void"
	case KindError:
		return "error"
	default:
		if len(t.TypeArgs) == 0 {
			return t.Name
		}
		s := t.Name + "<"
		for i, a := range t.TypeArgs {
			if i > 0 {
				s += ", "
			}
			s += a.String()
		}
		return s + ">"
	}
}

// IsIntegral reports whether values of t support the arithmetic and
// bitwise operators (bit<N> and int<N>).
func (t *Type) IsIntegral() bool {
	return t != nil && (t.Kind == KindBit || t.Kind == KindInt)
}
