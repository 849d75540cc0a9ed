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

// Package symtab implements the hash-bucketed symbol store that deduplicates
// classified lexemes and counts their references.
package symtab

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/multigres/sqlanalyzer/go/parser/lexer"
)

// DefaultSize is the number of buckets used when none is configured.
const DefaultSize = 1024

// Kind is the role a registered lexeme plays.
type Kind int

const (
	RESWORD Kind = iota // reserved word
	TABLE               // table name
	COLUMN              // column name
	IDENT               // bare identifier on a condition's right side
	LITERAL             // number, string or NULL
	OP                  // operator
	TYPE                // type name
	TYPEARG             // type argument, e.g. the length of VARCHAR(n)
	EOF                 // end of input
)

var kindNames = [...]string{
	RESWORD: "RESWORD",
	TABLE:   "TABLE",
	COLUMN:  "COLUMN",
	IDENT:   "IDENT",
	LITERAL: "LITERAL",
	OP:      "OP",
	TYPE:    "TYPE",
	TYPEARG: "TYPEARG",
	EOF:     "EOF",
}

// String returns the string representation of a Kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Entry is one distinct (Kind, Value) pair. Line and Column are those of the
// first registration and never change afterwards.
type Entry struct {
	Hash   string
	Kind   Kind
	Value  string
	Line   int
	Column int
	Refs   int
}

// HashPrefix returns the first eight hex digits of the content hash.
func (e *Entry) HashPrefix() string {
	if len(e.Hash) < 8 {
		return e.Hash
	}
	return e.Hash[:8]
}

// Stats summarizes the table contents.
type Stats struct {
	Size         int
	TotalEntries int
	Collisions   int
	LoadFactor   float64
	ByKind       map[string]int
}

// Table is a fixed-size chained hash table of entries keyed by (Kind, Value).
// A Table is not safe for concurrent use; create one per parse job.
type Table struct {
	size    int
	buckets [][]*Entry
	total   int
}

// New creates a table with size buckets. A non-positive size selects DefaultSize.
func New(size int) *Table {
	if size <= 0 {
		size = DefaultSize
	}
	return &Table{
		size:    size,
		buckets: make([][]*Entry, size),
	}
}

// contentHash hashes "KIND:value". Positions are deliberately not part of the
// key, so repeated lexemes collapse into one entry.
func contentHash(kind Kind, value string) string {
	sum := md5.Sum([]byte(kind.String() + ":" + value))
	return hex.EncodeToString(sum[:])
}

// bucketIndex maps a hex digest to a bucket using its first 32 bits.
func (t *Table) bucketIndex(hash string) int {
	raw, err := hex.DecodeString(hash[:8])
	if err != nil {
		return 0
	}
	return int(binary.BigEndian.Uint32(raw) % uint32(t.size))
}

// Register records one occurrence of value under kind. A repeated pair only
// increments the reference count of the existing entry.
func (t *Table) Register(kind Kind, value string, line, column int) *Entry {
	h := contentHash(kind, value)
	idx := t.bucketIndex(h)
	for _, e := range t.buckets[idx] {
		if e.Hash == h && e.Kind == kind && e.Value == value {
			e.Refs++
			return e
		}
	}

	e := &Entry{
		Hash:   h,
		Kind:   kind,
		Value:  value,
		Line:   line,
		Column: column,
		Refs:   1,
	}
	t.buckets[idx] = append(t.buckets[idx], e)
	t.total++
	return e
}

// Add registers a token under kind using the token's lexeme and position.
func (t *Table) Add(tok lexer.Token, kind Kind) {
	t.Register(kind, tok.Value, tok.Line, tok.Column)
}

// Lookup returns the entry for (kind, value), or nil.
func (t *Table) Lookup(kind Kind, value string) *Entry {
	h := contentHash(kind, value)
	for _, e := range t.buckets[t.bucketIndex(h)] {
		if e.Hash == h && e.Kind == kind && e.Value == value {
			return e
		}
	}
	return nil
}

// Entries returns copies of all entries in bucket order, then insertion order
// within each bucket.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, t.total)
	for _, bucket := range t.buckets {
		for _, e := range bucket {
			out = append(out, *e)
		}
	}
	return out
}

// Len returns the number of distinct entries.
func (t *Table) Len() int {
	return t.total
}

// Size returns the number of buckets.
func (t *Table) Size() int {
	return t.size
}

// BucketLengths returns the chain length of every bucket.
func (t *Table) BucketLengths() []int {
	out := make([]int, t.size)
	for i, bucket := range t.buckets {
		out[i] = len(bucket)
	}
	return out
}

// Stats computes the table statistics. Collisions counts, per bucket, every
// entry beyond the first.
func (t *Table) Stats() Stats {
	collisions := 0
	byKind := make(map[string]int)
	for _, bucket := range t.buckets {
		if len(bucket) > 1 {
			collisions += len(bucket) - 1
		}
		for _, e := range bucket {
			byKind[e.Kind.String()]++
		}
	}
	return Stats{
		Size:         t.size,
		TotalEntries: t.total,
		Collisions:   collisions,
		LoadFactor:   math.Round(float64(t.total)/float64(t.size)*1e4) / 1e4,
		ByKind:       byKind,
	}
}
