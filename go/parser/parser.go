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

// Package parser validates a token sequence against the statement grammar of
// the SQL-like front end and classifies matched tokens into a symbol store.
//
// The parser is a single-lookahead recursive descent over four statement
// forms:
//
//	program           := statement (';')? ... until end of input
//	select            := SELECT column-list FROM identifier (WHERE condition)?
//	column-list       := '*' | identifier (',' identifier)*
//	condition         := identifier operator (number | string | identifier)
//	insert            := INSERT INTO identifier '(' identifier-list ')' VALUES '(' literal-list ')'
//	update            := UPDATE identifier SET assignment (',' assignment)* (WHERE condition)?
//	assignment        := identifier '=' literal
//	create            := CREATE TABLE identifier '(' column-definition (',' column-definition)* ')'
//	column-definition := identifier type (PRIMARY KEY)?
//	type              := INT | FLOAT | VARCHAR '(' number ')'
//	literal           := number | string | NULL
//
// Errors never stop the parse. Every mismatch is recorded as a diagnostic and
// the cursor moves one token forward, so each step consumes input and the
// parse always reaches the end.
package parser

import (
	"fmt"
	"strings"

	"github.com/multigres/sqlanalyzer/go/parser/diagnostics"
	"github.com/multigres/sqlanalyzer/go/parser/lexer"
	"github.com/multigres/sqlanalyzer/go/parser/symtab"
)

// SymbolRecorder receives tokens matched at a grammar position with meaning.
type SymbolRecorder interface {
	Add(tok lexer.Token, kind symtab.Kind)
}

// DiagnosticRecorder receives recoverable parse errors.
type DiagnosticRecorder interface {
	Append(d diagnostics.Diagnostic)
}

// ProgressSink receives human-readable milestones of a parse run.
type ProgressSink interface {
	Progress(msg string)
}

// ProgressFunc adapts a plain function to ProgressSink.
type ProgressFunc func(msg string)

// Progress calls f(msg).
func (f ProgressFunc) Progress(msg string) {
	f(msg)
}

// Trace is a ProgressSink that keeps every milestone in order.
type Trace struct {
	lines []string
}

// Progress appends msg to the trace.
func (t *Trace) Progress(msg string) {
	t.lines = append(t.lines, msg)
}

// Lines returns a copy of the recorded milestones.
func (t *Trace) Lines() []string {
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Parser drives the statement grammar over one token sequence.
// It is not safe for concurrent use.
type Parser struct {
	tokens []lexer.Token
	pos    int
	eof    lexer.Token

	symbols  SymbolRecorder
	diags    DiagnosticRecorder
	progress ProgressSink

	statements int
	reported   int
}

// New creates a parser over tokens. A nil progress sink discards milestones.
// The token sequence should end with an EOF token; if it does not, one is
// assumed after the last token.
func New(tokens []lexer.Token, symbols SymbolRecorder, diags DiagnosticRecorder, progress ProgressSink) *Parser {
	if progress == nil {
		progress = ProgressFunc(func(string) {})
	}
	return &Parser{
		tokens:   tokens,
		eof:      trailingEOF(tokens),
		symbols:  symbols,
		diags:    diags,
		progress: progress,
	}
}

// Parse runs a full program parse over tokens.
func Parse(tokens []lexer.Token, symbols SymbolRecorder, diags DiagnosticRecorder, progress ProgressSink) {
	New(tokens, symbols, diags, progress).Program()
}

func trailingEOF(tokens []lexer.Token) lexer.Token {
	if len(tokens) == 0 {
		return lexer.NewToken(lexer.EOF, "", 1, 1)
	}
	last := tokens[len(tokens)-1]
	if last.IsEOF() {
		return last
	}
	return lexer.NewToken(lexer.EOF, "", last.Line, last.Column+len([]rune(last.Value)))
}

// current returns the token under the cursor. Past the end of the sequence it
// is the EOF token.
func (p *Parser) current() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return p.eof
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

// Pos returns the index of the token under the cursor.
func (p *Parser) Pos() int {
	return p.pos
}

// AtEOF returns true once the cursor reached the end of input.
func (p *Parser) AtEOF() bool {
	return p.current().IsEOF()
}

// Statements returns how many statements were dispatched so far.
func (p *Parser) Statements() int {
	return p.statements
}

func (p *Parser) report(kind diagnostics.Kind, at lexer.Token, format string, args ...any) {
	p.reported++
	p.diags.Append(diagnostics.Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    at.Line,
		Column:  at.Column,
	})
}

// describe renders a token for use in a diagnostic message.
func describe(tok lexer.Token) string {
	if tok.IsEOF() {
		return "end of input"
	}
	return "'" + tok.Value + "'"
}

// expect consumes the current token if it has the given type and, when
// values are supplied, one of those values. On mismatch it records a
// diagnostic and still moves one token forward. The returned token is the
// one that was under the cursor.
func (p *Parser) expect(tokenType lexer.TokenType, values ...string) (lexer.Token, bool) {
	tok := p.current()
	p.advance()
	if tok.Is(tokenType, values...) {
		return tok, true
	}

	expected := tokenType.String()
	if len(values) > 0 {
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = "'" + v + "'"
		}
		expected += " " + strings.Join(quoted, " or ")
	}
	p.report(diagnostics.SyntaxExpectationMismatch, tok, "expected %s, found %s", expected, describe(tok))
	return tok, false
}

// expectSymbol is expect followed by registration of a successful match.
func (p *Parser) expectSymbol(kind symtab.Kind, tokenType lexer.TokenType, values ...string) {
	if tok, ok := p.expect(tokenType, values...); ok {
		p.symbols.Add(tok, kind)
	}
}

// record registers the current token under kind and moves past it.
func (p *Parser) record(kind symtab.Kind) {
	p.symbols.Add(p.current(), kind)
	p.advance()
}

func (p *Parser) at(tokenType lexer.TokenType, values ...string) bool {
	return p.current().Is(tokenType, values...)
}

// Program parses statements until the end of input, consuming an optional
// ';' after each one.
func (p *Parser) Program() {
	p.progress.Progress("parse started")
	for !p.AtEOF() {
		p.statement()
		if p.at(lexer.SYMBOL, ";") {
			p.expect(lexer.SYMBOL, ";")
		}
	}
	p.progress.Progress(fmt.Sprintf("parse finished: %d statement(s), %d diagnostic(s)", p.statements, p.reported))
}

func (p *Parser) statement() {
	tok := p.current()
	if tok.Type == lexer.RESWORD {
		var parse func()
		switch tok.Value {
		case "SELECT":
			parse = p.selectStmt
		case "INSERT":
			parse = p.insertStmt
		case "UPDATE":
			parse = p.updateStmt
		case "CREATE":
			parse = p.createStmt
		}
		if parse != nil {
			p.statements++
			p.progress.Progress(fmt.Sprintf("statement %d: %s at L%d:C%d", p.statements, tok.Value, tok.Line, tok.Column))
			parse()
			return
		}
	}

	p.report(diagnostics.SyntaxUnrecognizedStatement, tok, "unrecognized statement: %s", tok.Value)
	p.advance()
}

// selectStmt parses SELECT column-list FROM identifier (WHERE condition)?
func (p *Parser) selectStmt() {
	p.expectSymbol(symtab.RESWORD, lexer.RESWORD, "SELECT")
	p.columnList()
	p.expectSymbol(symtab.RESWORD, lexer.RESWORD, "FROM")
	p.expectSymbol(symtab.TABLE, lexer.IDENT)
	p.optionalWhere()
}

func (p *Parser) optionalWhere() {
	if p.at(lexer.RESWORD, "WHERE") {
		p.expectSymbol(symtab.RESWORD, lexer.RESWORD, "WHERE")
		p.condition()
	}
}

func (p *Parser) columnList() {
	if p.at(lexer.SYMBOL, "*") {
		p.expect(lexer.SYMBOL, "*")
		return
	}
	p.identifierList()
}

// identifierList parses identifier (',' identifier)* as column names.
func (p *Parser) identifierList() {
	p.expectSymbol(symtab.COLUMN, lexer.IDENT)
	for p.at(lexer.SYMBOL, ",") {
		p.expect(lexer.SYMBOL, ",")
		p.expectSymbol(symtab.COLUMN, lexer.IDENT)
	}
}

// condition parses identifier operator (number | string | identifier).
func (p *Parser) condition() {
	p.expectSymbol(symtab.COLUMN, lexer.IDENT)
	p.expectSymbol(symtab.OP, lexer.OP)

	tok := p.current()
	switch {
	case tok.IsLiteral():
		p.record(symtab.LITERAL)
	case tok.Type == lexer.IDENT:
		p.record(symtab.IDENT)
	default:
		p.report(diagnostics.SemanticConditionInvalid, tok, "expected literal or identifier in condition, found %s", describe(tok))
		p.advance()
	}
}

// insertStmt parses INSERT INTO identifier '(' identifier-list ')' VALUES '(' literal-list ')'
func (p *Parser) insertStmt() {
	p.expectSymbol(symtab.RESWORD, lexer.RESWORD, "INSERT")
	p.expectSymbol(symtab.RESWORD, lexer.RESWORD, "INTO")
	p.expectSymbol(symtab.TABLE, lexer.IDENT)
	p.expect(lexer.SYMBOL, "(")
	p.identifierList()
	p.expect(lexer.SYMBOL, ")")
	p.expectSymbol(symtab.RESWORD, lexer.RESWORD, "VALUES")
	p.expect(lexer.SYMBOL, "(")
	p.literalList()
	p.expect(lexer.SYMBOL, ")")
}

func (p *Parser) literalList() {
	p.literal()
	for p.at(lexer.SYMBOL, ",") {
		p.expect(lexer.SYMBOL, ",")
		p.literal()
	}
}

// literal parses number | string | NULL.
func (p *Parser) literal() {
	tok := p.current()
	if tok.IsLiteral() || tok.Is(lexer.RESWORD, "NULL") {
		p.record(symtab.LITERAL)
		return
	}
	p.report(diagnostics.SemanticLiteralInvalid, tok, "invalid literal (expected NUMBER, STRING or NULL), found %s", describe(tok))
	p.advance()
}

// updateStmt parses UPDATE identifier SET assignment (',' assignment)* (WHERE condition)?
func (p *Parser) updateStmt() {
	p.expectSymbol(symtab.RESWORD, lexer.RESWORD, "UPDATE")
	p.expectSymbol(symtab.TABLE, lexer.IDENT)
	p.expectSymbol(symtab.RESWORD, lexer.RESWORD, "SET")
	p.assignment()
	for p.at(lexer.SYMBOL, ",") {
		p.expect(lexer.SYMBOL, ",")
		p.assignment()
	}
	p.optionalWhere()
}

// assignment parses identifier '=' literal.
func (p *Parser) assignment() {
	p.expectSymbol(symtab.COLUMN, lexer.IDENT)
	p.expectSymbol(symtab.OP, lexer.OP, "=")
	p.literal()
}

// createStmt parses CREATE TABLE identifier '(' column-definition (',' column-definition)* ')'
func (p *Parser) createStmt() {
	p.expectSymbol(symtab.RESWORD, lexer.RESWORD, "CREATE")
	p.expectSymbol(symtab.RESWORD, lexer.RESWORD, "TABLE")
	p.expectSymbol(symtab.TABLE, lexer.IDENT)
	p.expect(lexer.SYMBOL, "(")
	p.columnDefinition()
	for p.at(lexer.SYMBOL, ",") {
		p.expect(lexer.SYMBOL, ",")
		p.columnDefinition()
	}
	p.expect(lexer.SYMBOL, ")")
}

// columnDefinition parses identifier type (PRIMARY KEY)?
func (p *Parser) columnDefinition() {
	p.expectSymbol(symtab.COLUMN, lexer.IDENT)
	p.typeSpec()
	if p.at(lexer.RESWORD, "PRIMARY") {
		p.expectSymbol(symtab.RESWORD, lexer.RESWORD, "PRIMARY")
		p.expectSymbol(symtab.RESWORD, lexer.RESWORD, "KEY")
	}
}

// typeSpec parses INT | FLOAT | VARCHAR '(' number ')'.
func (p *Parser) typeSpec() {
	tok := p.current()
	switch {
	case tok.Is(lexer.RESWORD, "INT", "FLOAT"):
		p.record(symtab.TYPE)
	case tok.Is(lexer.RESWORD, "VARCHAR"):
		p.record(symtab.TYPE)
		p.expect(lexer.SYMBOL, "(")
		p.expectSymbol(symtab.TYPEARG, lexer.NUMBER)
		p.expect(lexer.SYMBOL, ")")
	default:
		p.report(diagnostics.SemanticTypeInvalid, tok, "invalid data type (expected INT, FLOAT or VARCHAR(n)), found %s", describe(tok))
		p.advance()
	}
}
