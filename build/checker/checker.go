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

// Package checker implements x4c's static checkers (spec.md §4.5): a set
// of independent rule groups run over the AST plus the HLIR side-table the
// resolver produced. Every violation is reported to a diag.Sink; no rule
// group depends on another's diagnostics, so a single invocation surfaces
// every independent problem in the program.
package checker

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"x4c/diag"
	"x4c/build/ir"
	"x4c/internal/ast"
)

// Check runs every rule group over file, using prog for resolved types,
// references, and instance paths. Callers should have already verified
// that the resolver pass that produced prog reported no fatal diagnostics
// (spec.md §7's abort-before-next-pass rule).
//
// Each declaration's rule groups run to completion independently of every
// other declaration's: a panic inside one (an internal invariant
// violation, not a P4 source error) is recovered and reported as a fault
// rather than aborting the checks for the rest of the program. The
// resulting faults, if any, are combined with go.uber.org/multierr the way
// the ambient stack combines independent failures elsewhere (diag.Sink.Merge
// does the analogous job for diagnostics).
func Check(file *ast.File, prog *ir.Program, sink *diag.Sink) error {
	var faults []error
	for _, d := range file.Decls {
		if err := checkDecl(d, prog, sink); err != nil {
			faults = append(faults, err)
		}
	}
	return multierr.Combine(faults...)
}

func checkDecl(d ast.Decl, prog *ir.Program, sink *diag.Sink) (fault error) {
	defer func() {
		if r := recover(); r != nil {
			fault = errors.Errorf("checker: internal error checking %q: %v", d.DeclName(), r)
		}
	}()
	switch d := d.(type) {
	case *ast.HeaderTypeDecl:
		checkHeaderFields(d, sink)
	case *ast.ParserDecl:
		checkParserReachability(d, sink)
		checkParserAssignmentDiscipline(d, sink)
		checkExtractCalls(d, prog, sink)
		checkWidths(d, prog, sink)
	case *ast.ControlDecl:
		checkExtractCalls(d, prog, sink)
		checkWidths(d, prog, sink)
		checkDirectionConformance(d, prog, sink)
		for i := range d.Tables {
			checkTable(&d.Tables[i], sink)
		}
	case *ast.PackageInstanceDecl:
		checkPackageBinding(d, prog, sink)
	}
	return nil
}
