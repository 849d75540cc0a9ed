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

package analyzer

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeSelect(t *testing.T) {
	res := New(Config{}, nil).Analyze("inline", "SELECT * FROM t;")

	require.True(t, res.OK(), "unexpected diagnostics: %v", res.Diagnostics)
	_, err := uuid.Parse(res.JobID)
	require.NoError(t, err)
	assert.Equal(t, "inline", res.Source)

	assert.Equal(t, []TokenRecord{
		{Type: "RESWORD", Value: "SELECT", Line: 1, Column: 1},
		{Type: "SYMBOL", Value: "*", Line: 1, Column: 8},
		{Type: "RESWORD", Value: "FROM", Line: 1, Column: 10},
		{Type: "IDENT", Value: "t", Line: 1, Column: 15},
		{Type: "SYMBOL", Value: ";", Line: 1, Column: 16},
		{Type: "EOF", Value: "", Line: 1, Column: 17},
	}, res.Tokens)

	assert.Equal(t, 1024, res.Stats.Size)
	assert.Equal(t, 4, res.Stats.TotalEntries)
	assert.Equal(t, map[string]int{"RESWORD": 2, "TABLE": 1, "EOF": 1}, res.Stats.ByKind)
	assert.Equal(t, 0.0039, res.Stats.LoadFactor)
	require.Len(t, res.Symbols, 4)
	for _, s := range res.Symbols {
		assert.Len(t, s.Hash, 8)
		assert.Equal(t, 1, s.Refs)
	}

	assert.Equal(t, []string{
		"file received, tokenizing",
		"tokenized: 6 token(s)",
		"starting grammar validation",
		"parse started",
		"statement 1: SELECT at L1:C1",
		"parse finished: 1 statement(s), 0 diagnostic(s)",
	}, res.Progress)
}

func TestAnalyzeReportsDiagnostics(t *testing.T) {
	res := New(Config{}, nil).Analyze("bad.sql", "SELEC * FROM t")
	require.False(t, res.OK())
	assert.Contains(t, res.Diagnostics[0], "SELEC")
	assert.Equal(t, "L1:C1 - unrecognized statement: SELEC", res.Diagnostics[0])
	// Partial artifacts are still produced.
	assert.Len(t, res.Tokens, 5)
	assert.Equal(t, 1, res.Stats.TotalEntries, "only the EOF entry")
}

func TestAnalyzeReplacesInvalidUTF8(t *testing.T) {
	res := New(Config{}, nil).Analyze("binary", "SELECT a FROM t WHERE a = \xff")
	var values []string
	for _, tok := range res.Tokens {
		values = append(values, tok.Value)
	}
	assert.Contains(t, values, "�")
	assert.Equal(t, []string{"L1:C27 - expected literal or identifier in condition, found '�'"}, res.Diagnostics)
}

func TestAnalyzeReportLexical(t *testing.T) {
	input := "SELECT * FROM t @"

	plain := New(Config{}, nil).Analyze("x", input)
	assert.Equal(t, []string{"L1:C17 - unrecognized statement: @"}, plain.Diagnostics)

	lexical := New(Config{ReportLexical: true}, nil).Analyze("x", input)
	assert.Equal(t, []string{
		`L1:C17 - unrecognized character "@"`,
		"L1:C17 - unrecognized statement: @",
	}, lexical.Diagnostics)
}

func TestAnalyzeBucketCount(t *testing.T) {
	res := New(Config{BucketCount: 1}, nil).Analyze("x", "CREATE TABLE t (id INT PRIMARY KEY, name VARCHAR(10));")
	assert.True(t, res.OK())
	assert.Equal(t, 1, res.Stats.Size)
	assert.Equal(t, 11, res.Stats.TotalEntries)
	assert.Equal(t, 10, res.Stats.Collisions)
	assert.Equal(t, 11.0, res.Stats.LoadFactor)
}

func TestAnalyzeFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/scripts/q.sql", []byte("UPDATE t SET a = 1"), 0o644))

	a := New(Config{}, nil)
	res, err := a.AnalyzeFile(fs, "/scripts/q.sql")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, "/scripts/q.sql", res.Source)

	_, err = a.AnalyzeFile(fs, "/scripts/missing.sql")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestAnalyzeReader(t *testing.T) {
	a := New(Config{}, nil)
	res, err := a.AnalyzeReader("stdin", strings.NewReader("INSERT INTO t (a) VALUES (NULL)"))
	require.NoError(t, err)
	assert.True(t, res.OK())

	boom := errors.New("boom")
	_, err = a.AnalyzeReader("stdin", iotest.ErrReader(boom))
	require.ErrorIs(t, err, boom)
}

func TestAnalyzeIsolatedPerJob(t *testing.T) {
	a := New(Config{}, nil)
	input := "SELECT a FROM t WHERE a = 'x'; INSERT INTO t (a) VALUES (1);"
	want := a.Analyze("x", input)

	var wg sync.WaitGroup
	results := make([]*Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = a.Analyze("x", input)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{want.JobID: true}
	for _, res := range results {
		assert.Equal(t, want.Tokens, res.Tokens)
		assert.Equal(t, want.Symbols, res.Symbols)
		assert.Equal(t, want.Stats, res.Stats)
		assert.Equal(t, want.Diagnostics, res.Diagnostics)
		assert.False(t, seen[res.JobID], "job ids are unique")
		seen[res.JobID] = true
	}
}

func TestAnalyzeLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	res := New(Config{}, logger).Analyze("q.sql", "SELECT * FROM t")
	out := buf.String()
	assert.Contains(t, out, `"msg":"analysis started"`)
	assert.Contains(t, out, `"msg":"analysis finished"`)
	assert.Contains(t, out, `"msg":"parse started"`)
	assert.Contains(t, out, `"job_id":"`+res.JobID+`"`)
	assert.Contains(t, out, `"source":"q.sql"`)
}
