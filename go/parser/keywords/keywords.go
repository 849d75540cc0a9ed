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

// Package keywords holds the closed set of reserved words recognized by the
// scanner. Lookups are case-insensitive; reserved words are reported in upper case.
package keywords

import (
	"sort"
	"strings"
)

// KeywordCategory groups reserved words by the grammar role they play.
type KeywordCategory int

const (
	// StatementKeyword starts one of the four statement forms.
	StatementKeyword KeywordCategory = iota
	// ClauseKeyword introduces a clause inside a statement.
	ClauseKeyword
	// TypeKeyword names a column data type.
	TypeKeyword
	// LiteralKeyword stands for a literal value.
	LiteralKeyword
)

// KeywordInfo describes a single reserved word.
type KeywordInfo struct {
	Name     string
	Category KeywordCategory
}

// Keywords is the complete reserved-word set. Anything not listed here scans
// as an identifier.
var Keywords = []KeywordInfo{
	{"SELECT", StatementKeyword},
	{"INSERT", StatementKeyword},
	{"UPDATE", StatementKeyword},
	{"CREATE", StatementKeyword},
	{"FROM", ClauseKeyword},
	{"WHERE", ClauseKeyword},
	{"INTO", ClauseKeyword},
	{"VALUES", ClauseKeyword},
	{"SET", ClauseKeyword},
	{"TABLE", ClauseKeyword},
	{"PRIMARY", ClauseKeyword},
	{"KEY", ClauseKeyword},
	{"INT", TypeKeyword},
	{"VARCHAR", TypeKeyword},
	{"FLOAT", TypeKeyword},
	{"NULL", LiteralKeyword},
}

var keywordLookupMap map[string]*KeywordInfo

func init() {
	keywordLookupMap = make(map[string]*KeywordInfo, len(Keywords))
	for i := range Keywords {
		keywordLookupMap[Keywords[i].Name] = &Keywords[i]
	}
}

// LookupKeyword searches for a reserved word by name (case-insensitive).
// Returns nil when name is not reserved.
func LookupKeyword(name string) *KeywordInfo {
	return keywordLookupMap[strings.ToUpper(name)]
}

// IsKeyword returns true if name is a reserved word in any letter case.
func IsKeyword(name string) bool {
	return LookupKeyword(name) != nil
}

// GetKeywordNames returns a sorted slice of all reserved words.
func GetKeywordNames() []string {
	names := make([]string, len(Keywords))
	for i, kw := range Keywords {
		names[i] = kw.Name
	}
	sort.Strings(names)
	return names
}

// GetKeywordsByCategory returns all reserved words in a specific category.
func GetKeywordsByCategory(category KeywordCategory) []KeywordInfo {
	var result []KeywordInfo
	for _, kw := range Keywords {
		if kw.Category == category {
			result = append(result, kw)
		}
	}
	return result
}

// String returns the string representation of a KeywordCategory.
func (kc KeywordCategory) String() string {
	switch kc {
	case StatementKeyword:
		return "STATEMENT"
	case ClauseKeyword:
		return "CLAUSE"
	case TypeKeyword:
		return "TYPE"
	case LiteralKeyword:
		return "LITERAL"
	default:
		return "UNKNOWN_KEYWORD_CATEGORY"
	}
}
