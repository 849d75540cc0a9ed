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

// Package lexer implements the scanner of the SQL-like front end.
//
// Scanning is total: every input, including text with characters the language
// does not know, yields a complete token sequence terminated by one EOF token.
// At each position the scanner tries, in this fixed order: whitespace, a "--"
// line comment, an identifier or reserved word, a number, a single-quoted
// string, a relational operator (longest first) and a one-character symbol.
// When nothing matches, the current character becomes a one-character SYMBOL.
package lexer

import (
	"fmt"
	"unicode"

	"github.com/multigres/sqlanalyzer/go/parser/diagnostics"
	"github.com/multigres/sqlanalyzer/go/parser/keywords"
)

// DiagnosticRecorder receives lexical diagnostics.
type DiagnosticRecorder interface {
	Append(d diagnostics.Diagnostic)
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithDiagnostics reports every character that falls back to a one-character
// symbol token as a LexicalUnrecognizedCharacter diagnostic.
func WithDiagnostics(rec DiagnosticRecorder) Option {
	return func(l *Lexer) {
		l.diags = rec
	}
}

// Lexer scans one input. It is not safe for concurrent use.
type Lexer struct {
	context *LexerContext
	diags   DiagnosticRecorder
}

// NewLexer creates a lexer over input.
func NewLexer(input string, opts ...Option) *Lexer {
	l := &Lexer{
		context: NewLexerContext(input),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tokenize scans input to completion. The result always ends with exactly
// one EOF token.
func Tokenize(input string, opts ...Option) []Token {
	return NewLexer(input, opts...).Tokenize()
}

// Tokenize drains the lexer and returns every remaining token, EOF included.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.IsEOF() {
			return tokens
		}
	}
}

// NextToken returns the next token. Once the input is exhausted it keeps
// returning EOF at the final position.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	line, column := l.context.LineNumber, l.context.ColumnNumber
	startScanPos := l.context.ScanPos

	b, ok := l.context.CurrentByte()
	if !ok {
		return NewToken(EOF, "", line, column)
	}

	switch {
	case isIdentStart(b):
		return l.scanIdentifier(startScanPos, line, column)
	case isDigit(b):
		return l.scanNumber(startScanPos, line, column)
	case b == '\'':
		if tok, ok := l.scanStringLiteral(line, column); ok {
			return tok
		}
	}

	if isOpChar(b) {
		return l.scanOperator(startScanPos, line, column)
	}
	if isSelfChar(b) {
		l.context.NextByte()
		return NewToken(SYMBOL, string(b), line, column)
	}
	return l.scanUnrecognized(startScanPos, line, column)
}

// skipWhitespaceAndComments consumes white space and "--" comments. The
// comment stops before its newline, which is then consumed as white space.
func (l *Lexer) skipWhitespaceAndComments() {
	for !l.context.AtEOF() {
		if unicode.IsSpace(l.context.PeekRune()) {
			l.context.AdvanceRune()
			continue
		}

		if b, _ := l.context.CurrentByte(); b == '-' {
			if next, ok := l.context.PeekByteAt(1); ok && next == '-' {
				for {
					b, ok := l.context.CurrentByte()
					if !ok || b == '\n' {
						break
					}
					l.context.AdvanceRune()
				}
				continue
			}
		}
		return
	}
}

// scanIdentifier scans [A-Za-z_][A-Za-z0-9_]* and classifies it against the
// reserved-word set.
func (l *Lexer) scanIdentifier(startScanPos, line, column int) Token {
	l.context.NextByte()
	for {
		b, ok := l.context.CurrentByte()
		if !ok || !isIdentCont(b) {
			break
		}
		l.context.NextByte()
	}

	text := l.context.GetCurrentText(startScanPos)
	if kw := keywords.LookupKeyword(text); kw != nil {
		return NewToken(RESWORD, kw.Name, line, column)
	}
	return NewToken(IDENT, text, line, column)
}

// scanNumber scans digits optionally followed by '.' and more digits. A '.'
// without a digit after it is left for the symbol rule.
func (l *Lexer) scanNumber(startScanPos, line, column int) Token {
	l.consumeDigits()

	if b, ok := l.context.CurrentByte(); ok && b == '.' {
		if next, ok := l.context.PeekByteAt(1); ok && isDigit(next) {
			l.context.NextByte()
			l.consumeDigits()
		}
	}

	return NewToken(NUMBER, l.context.GetCurrentText(startScanPos), line, column)
}

func (l *Lexer) consumeDigits() {
	for {
		b, ok := l.context.CurrentByte()
		if !ok || !isDigit(b) {
			return
		}
		l.context.NextByte()
	}
}

// scanStringLiteral scans '...' with no escape handling. It reports false and
// consumes nothing when the closing quote is missing.
func (l *Lexer) scanStringLiteral(line, column int) (Token, bool) {
	end := l.context.IndexByteFrom(1, '\'')
	if end < 0 {
		return Token{}, false
	}

	l.context.NextByte() // opening quote
	contentStart := l.context.ScanPos
	l.context.AdvanceBy(end - 1)
	content := l.context.GetCurrentText(contentStart)
	l.context.NextByte() // closing quote

	return NewToken(STRING, content, line, column), true
}

// scanOperator scans <=, >=, <>, =, < or >, longest match first.
func (l *Lexer) scanOperator(startScanPos, line, column int) Token {
	first, _ := l.context.NextByte()
	if next, ok := l.context.CurrentByte(); ok {
		switch {
		case first == '<' && (next == '=' || next == '>'),
			first == '>' && next == '=':
			l.context.NextByte()
		}
	}
	return NewToken(OP, l.context.GetCurrentText(startScanPos), line, column)
}

// scanUnrecognized emits the current code point as a one-character symbol.
func (l *Lexer) scanUnrecognized(startScanPos, line, column int) Token {
	l.context.AdvanceRune()
	text := l.context.GetCurrentText(startScanPos)

	if l.diags != nil {
		l.diags.Append(diagnostics.Diagnostic{
			Kind:    diagnostics.LexicalUnrecognizedCharacter,
			Message: fmt.Sprintf("unrecognized character %q", text),
			Line:    line,
			Column:  column,
		})
	}
	return NewToken(SYMBOL, text, line, column)
}

// GetContext returns the lexer context (for testing and debugging)
func (l *Lexer) GetContext() *LexerContext {
	return l.context
}

// String returns a representation of the lexer for debugging
func (l *Lexer) String() string {
	return fmt.Sprintf("Lexer{%s}", l.context)
}
