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

// CharClass represents character classification flags using bit fields.
type CharClass uint8

const (
	ClassDigit      CharClass = 1 << iota // 0-9
	ClassIdentStart                       // A-Z, a-z, _
	ClassIdentCont                        // A-Z, a-z, 0-9, _
	ClassSelfChar                         // , ; ( ) * . +
	ClassOpChar                           // < > =
)

// charClassTable covers ASCII only; every byte >= 0x80 has no class, so
// non-ASCII letters never start or continue an identifier.
var charClassTable [256]CharClass

func init() {
	for b := byte('0'); b <= '9'; b++ {
		charClassTable[b] |= ClassDigit | ClassIdentCont
	}
	for b := byte('a'); b <= 'z'; b++ {
		charClassTable[b] |= ClassIdentStart | ClassIdentCont
	}
	for b := byte('A'); b <= 'Z'; b++ {
		charClassTable[b] |= ClassIdentStart | ClassIdentCont
	}
	charClassTable['_'] |= ClassIdentStart | ClassIdentCont

	for _, b := range []byte(",;()*.+") {
		charClassTable[b] |= ClassSelfChar
	}
	for _, b := range []byte("<>=") {
		charClassTable[b] |= ClassOpChar
	}
}

func isDigit(b byte) bool      { return charClassTable[b]&ClassDigit != 0 }
func isIdentStart(b byte) bool { return charClassTable[b]&ClassIdentStart != 0 }
func isIdentCont(b byte) bool  { return charClassTable[b]&ClassIdentCont != 0 }
func isSelfChar(b byte) bool   { return charClassTable[b]&ClassSelfChar != 0 }
func isOpChar(b byte) bool     { return charClassTable[b]&ClassOpChar != 0 }
