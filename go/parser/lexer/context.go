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

import (
	"fmt"
	"unicode/utf8"
)

// LexerContext holds the complete scanning state for one input. It is owned by
// a single Lexer and never shared, so scanning needs no global state.
type LexerContext struct {
	// Input buffer management
	ScanBuf    []byte // The text being scanned
	ScanBufLen int    // Length of scan buffer
	ScanPos    int    // Current byte offset in ScanBuf

	// Position tracking, both 1-based. Columns count code points, not bytes.
	LineNumber   int
	ColumnNumber int
}

// NewLexerContext creates a context positioned at line 1, column 1.
func NewLexerContext(input string) *LexerContext {
	return &LexerContext{
		ScanBuf:      []byte(input),
		ScanBufLen:   len(input),
		ScanPos:      0,
		LineNumber:   1,
		ColumnNumber: 1,
	}
}

// getByteAt returns the byte at the specified offset from current position
func (ctx *LexerContext) getByteAt(offset int) (byte, bool) {
	pos := ctx.ScanPos + offset
	if pos >= ctx.ScanBufLen {
		return 0, false
	}
	return ctx.ScanBuf[pos], true
}

// CurrentByte returns the byte at the current position without advancing
func (ctx *LexerContext) CurrentByte() (byte, bool) {
	return ctx.getByteAt(0)
}

// PeekByteAt returns the byte offset bytes ahead of the current position
func (ctx *LexerContext) PeekByteAt(offset int) (byte, bool) {
	return ctx.getByteAt(offset)
}

// NextByte returns the current byte and advances past it. A non-ASCII byte
// advances past the whole code point it starts.
func (ctx *LexerContext) NextByte() (byte, bool) {
	b, ok := ctx.CurrentByte()
	if !ok {
		return 0, false
	}
	if b < utf8.RuneSelf {
		ctx.advancePosition(1)
	} else {
		ctx.AdvanceRune()
	}
	return b, true
}

// AdvanceBy moves the scan position forward by n bytes, one column per code
// point. Invalid bytes count one column each.
func (ctx *LexerContext) AdvanceBy(n int) {
	end := min(ctx.ScanPos+n, ctx.ScanBufLen)
	for ctx.ScanPos < end {
		_, size := utf8.DecodeRune(ctx.ScanBuf[ctx.ScanPos:end])
		ctx.advancePosition(size)
	}
}

// advancePosition consumes size bytes that form one column: a code point or a
// single invalid byte.
func (ctx *LexerContext) advancePosition(size int) {
	b := ctx.ScanBuf[ctx.ScanPos]
	ctx.ScanPos += size

	if b == '\n' {
		ctx.LineNumber++
		ctx.ColumnNumber = 1
	} else {
		ctx.ColumnNumber++
	}
}

// AdvanceRune moves forward by one code point and returns it. Invalid UTF-8
// advances a single byte, and one column, and yields utf8.RuneError.
func (ctx *LexerContext) AdvanceRune() rune {
	if ctx.AtEOF() {
		return 0
	}

	r, size := utf8.DecodeRune(ctx.ScanBuf[ctx.ScanPos:])
	ctx.advancePosition(size)
	return r
}

// PeekRune returns the next code point without advancing position
func (ctx *LexerContext) PeekRune() rune {
	if ctx.AtEOF() {
		return 0
	}

	r, _ := utf8.DecodeRune(ctx.ScanBuf[ctx.ScanPos:])
	return r
}

// IndexByteFrom returns the offset of the first c at or after the current
// position plus from, or -1 if there is none.
func (ctx *LexerContext) IndexByteFrom(from int, c byte) int {
	for i := ctx.ScanPos + from; i < ctx.ScanBufLen; i++ {
		if ctx.ScanBuf[i] == c {
			return i - ctx.ScanPos
		}
	}
	return -1
}

// AtEOF returns true if we're at the end of input
func (ctx *LexerContext) AtEOF() bool {
	return ctx.ScanPos >= ctx.ScanBufLen
}

// GetCurrentText returns the text from start position to current position
func (ctx *LexerContext) GetCurrentText(startPos int) string {
	if startPos < 0 || startPos > ctx.ScanPos {
		return ""
	}
	return string(ctx.ScanBuf[startPos:ctx.ScanPos])
}

// String returns a representation of the lexer context for debugging
func (ctx *LexerContext) String() string {
	return fmt.Sprintf("LexerContext{Position: %d/%d, Line: %d, Column: %d}",
		ctx.ScanPos, ctx.ScanBufLen, ctx.LineNumber, ctx.ColumnNumber)
}
