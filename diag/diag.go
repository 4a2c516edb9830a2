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

// Package diag accumulates and formats compiler diagnostics. It plays the
// role that build/fmterr plays for the GX compiler: every pass appends to a
// shared Sink instead of returning bare errors, so that a single invocation
// can report every independent problem it finds rather than stopping at the
// first one.
package diag

import (
	"fmt"
	"strings"

	"x4c/internal/token"
)

// Severity is how impactful a diagnostic is.
type Severity int

const (
	// Warning diagnostics do not abort compilation.
	Warning Severity = iota
	// Error diagnostics prevent the next pass from running.
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Code is a stable identifier for a diagnostic, e.g. "E0001". Codes are
// preserved across versions per spec.md's error-code registry.
type Code string

// The error-code registry. E0001 is reserved, as spec.md requires, for the
// match-kind compatibility rule; further codes extend the series without
// reusing or renumbering earlier ones.
const (
	NoCode Code = ""

	E0001 Code = "E0001" // table key list has more than one lpm match kind
	E0002 Code = "E0002" // undefined identifier
	E0003 Code = "E0003" // redeclaration in the same scope
	E0004 Code = "E0004" // wrong argument arity
	E0005 Code = "E0005" // width/type mismatch in a binary operation, initializer, or assignment
	E0006 Code = "E0006" // invalid slice bounds
	E0007 Code = "E0007" // header type contains a non-bit field
	E0008 Code = "E0008" // pkt.extract argument is not a header
	E0009 Code = "E0009" // entry pattern does not match its key's match kind
	E0010 Code = "E0010" // direction violation at a call site
	E0011 Code = "E0011" // out parameter read before write
	E0012 Code = "E0012" // undefined transition target state
	E0013 Code = "E0013" // parser has no start state
	E0014 Code = "E0014" // table action not visible in enclosing control
	E0015 Code = "E0015" // package instantiation argument mismatch
	E0016 Code = "E0016" // include cycle
	E0017 Code = "E0017" // file not found
	E0018 Code = "E0018" // malformed preprocessor directive
	E0019 Code = "E0019" // unrecognized character
	E0020 Code = "E0020" // malformed literal
	E0021 Code = "E0021" // unterminated comment
	E0022 Code = "E0022" // unexpected token / malformed construct

	W0001 Code = "W0001" // unreachable parser state
	W0002 Code = "W0002" // select has no wildcard case, or parser has no path from start to accept
	W0003 Code = "W0003" // integer literal truncated to its declared width
)

// Diagnostic is one reported problem, with everything needed to render it
// in the format spec.md §7 mandates:
// "<file>:<line>:<col>: <severity> [<code>]: <message>".
type Diagnostic struct {
	Span     token.Span
	Severity Severity
	Code     Code
	Message  string
}

func (d Diagnostic) String() string {
	if d.Code == NoCode {
		return fmt.Sprintf("%s: %s: %s", d.Span, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s [%s]: %s", d.Span, d.Severity, d.Code, d.Message)
}

// Sink accumulates diagnostics for a single compilation. No diagnostic is
// ever dropped: every pass appends here rather than returning early.
type Sink struct {
	diags []Diagnostic
	// lines, keyed by file, backs source-line-with-caret rendering.
	lines map[string][]string
}

// NewSink returns an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{lines: make(map[string][]string)}
}

// SetSource registers a file's content so diagnostics against it can render
// the offending source line with a caret underline.
func (s *Sink) SetSource(file string, content string) {
	s.lines[file] = strings.Split(content, "\n")
}

// Errorf appends an error diagnostic.
func (s *Sink) Errorf(span token.Span, code Code, format string, a ...any) {
	s.append(Diagnostic{Span: span, Severity: Error, Code: code, Message: fmt.Sprintf(format, a...)})
}

// Warnf appends a warning diagnostic.
func (s *Sink) Warnf(span token.Span, code Code, format string, a ...any) {
	s.append(Diagnostic{Span: span, Severity: Warning, Code: code, Message: fmt.Sprintf(format, a...)})
}

func (s *Sink) append(d Diagnostic) {
	s.diags = append(s.diags, d)
}

// Diagnostics returns every diagnostic appended so far, in emission order.
func (s *Sink) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), s.diags...)
}

// HasErrors reports whether any diagnostic at Error severity was appended.
// Per spec.md §7, a non-empty fatal set aborts the pipeline before the next
// pass runs.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Merge appends every diagnostic from other into s, preserving order. This
// is how independent sub-passes (e.g. per-file preprocessing) combine their
// results into a single ordered stream, in the spirit of the multierr
// combination the ambient stack uses for independent failures.
func (s *Sink) Merge(other *Sink) {
	if other == nil {
		return
	}
	s.diags = append(s.diags, other.diags...)
	for f, l := range other.lines {
		if _, ok := s.lines[f]; !ok {
			s.lines[f] = l
		}
	}
}

// Format renders every diagnostic in the user-visible form spec.md §7
// mandates, one per diagnostic, each followed by the offending source line
// and a caret underline when the source is known.
func (s *Sink) Format() string {
	var b strings.Builder
	for _, d := range s.diags {
		b.WriteString(d.String())
		b.WriteByte('\n')
		if line, ok := s.sourceLine(d.Span); ok {
			b.WriteString(line)
			b.WriteByte('\n')
			b.WriteString(caret(d.Span))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (s *Sink) sourceLine(span token.Span) (string, bool) {
	lines, ok := s.lines[span.File]
	if !ok || span.Line < 1 || span.Line > len(lines) {
		return "", false
	}
	return lines[span.Line-1], true
}

func caret(span token.Span) string {
	col := span.Column
	if col < 1 {
		col = 1
	}
	length := span.Length
	if length < 1 {
		length = 1
	}
	return strings.Repeat(" ", col-1) + strings.Repeat("^", length)
}
