// Copyright 2025 Supabase, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diagnostics collects the recoverable errors found while scanning
// and parsing a source document. A Log is append-only and keeps insertion
// order; a non-empty Log is the only way the front end reports failure.
package diagnostics

import (
	"fmt"
)

// Kind classifies a diagnostic.
type Kind int

const (
	// LexicalUnrecognizedCharacter is reported when the scanner falls back to
	// a one-character symbol token.
	LexicalUnrecognizedCharacter Kind = iota
	// SyntaxExpectationMismatch is reported when the current token does not
	// have the required classification or lexeme.
	SyntaxExpectationMismatch
	// SyntaxUnrecognizedStatement is reported when a statement does not start
	// with SELECT, INSERT, UPDATE or CREATE.
	SyntaxUnrecognizedStatement
	// SemanticLiteralInvalid is reported when a literal position holds neither
	// a number, a string nor NULL.
	SemanticLiteralInvalid
	// SemanticTypeInvalid is reported when a type position holds neither INT,
	// FLOAT nor VARCHAR(n).
	SemanticTypeInvalid
	// SemanticConditionInvalid is reported when the right side of a condition
	// is neither a literal nor an identifier.
	SemanticConditionInvalid
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case LexicalUnrecognizedCharacter:
		return "lexical-unrecognized-character"
	case SyntaxExpectationMismatch:
		return "syntax-expectation-mismatch"
	case SyntaxUnrecognizedStatement:
		return "syntax-unrecognized-statement"
	case SemanticLiteralInvalid:
		return "semantic-literal-invalid"
	case SemanticTypeInvalid:
		return "semantic-type-invalid"
	case SemanticConditionInvalid:
		return "semantic-condition-invalid"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Diagnostic is a single recoverable error anchored at a 1-based source position.
type Diagnostic struct {
	Kind    Kind
	Message string
	Line    int
	Column  int
}

// String renders the diagnostic as "L<line>:C<column> - <message>".
func (d Diagnostic) String() string {
	return fmt.Sprintf("L%d:C%d - %s", d.Line, d.Column, d.Message)
}

// Log is an ordered, append-only collection of diagnostics.
// A Log is not safe for concurrent use; create one per parse job.
type Log struct {
	items []Diagnostic
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Append adds d at the end of the log.
func (l *Log) Append(d Diagnostic) {
	l.items = append(l.items, d)
}

// Add formats a message and appends it as a diagnostic of the given kind.
func (l *Log) Add(kind Kind, line, column int, format string, args ...any) {
	l.Append(Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	})
}

// IsEmpty returns true if no diagnostics have been recorded.
func (l *Log) IsEmpty() bool {
	return len(l.items) == 0
}

// Len returns the number of recorded diagnostics.
func (l *Log) Len() int {
	return len(l.items)
}

// Items returns a copy of the recorded diagnostics in insertion order.
func (l *Log) Items() []Diagnostic {
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	return out
}

// Count returns how many diagnostics of the given kind were recorded.
func (l *Log) Count(kind Kind) int {
	n := 0
	for _, d := range l.items {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Render returns one formatted line per diagnostic, in insertion order.
func (l *Log) Render() []string {
	out := make([]string, len(l.items))
	for i, d := range l.items {
		out[i] = d.String()
	}
	return out
}
