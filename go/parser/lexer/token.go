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

package lexer

import "fmt"

// TokenType classifies a token produced by the scanner.
type TokenType int

const (
	EOF     TokenType = iota // end of input, always the last token
	RESWORD                  // reserved word, value is upper-cased
	IDENT                    // identifier, value keeps its original case
	NUMBER                   // integer or decimal number
	STRING                   // single-quoted string, value without quotes
	SYMBOL                   // punctuation or an unrecognized character
	OP                       // relational operator
)

var tokenTypeNames = map[TokenType]string{
	EOF:     "EOF",
	RESWORD: "RESWORD",
	IDENT:   "IDENT",
	NUMBER:  "NUMBER",
	STRING:  "STRING",
	SYMBOL:  "SYMBOL",
	OP:      "OP",
}

// String returns the string representation of a TokenType.
func (tt TokenType) String() string {
	if name, ok := tokenTypeNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is an immutable lexical unit. Line and Column are 1-based and point
// at the first character of the match.
type Token struct {
	Type   TokenType
	Value  string
	Line   int
	Column int
}

// NewToken creates a token of the given type at line:column.
func NewToken(tokenType TokenType, value string, line, column int) Token {
	return Token{
		Type:   tokenType,
		Value:  value,
		Line:   line,
		Column: column,
	}
}

// IsEOF returns true for the end-of-input token.
func (t Token) IsEOF() bool {
	return t.Type == EOF
}

// IsLiteral returns true for number and string tokens.
func (t Token) IsLiteral() bool {
	return t.Type == NUMBER || t.Type == STRING
}

// Is returns true if the token has the given type and, when values are
// supplied, one of those values.
func (t Token) Is(tokenType TokenType, values ...string) bool {
	if t.Type != tokenType {
		return false
	}
	if len(values) == 0 {
		return true
	}
	for _, v := range values {
		if t.Value == v {
			return true
		}
	}
	return false
}

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at L%d:C%d", t.Type, t.Value, t.Line, t.Column)
}
