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

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/multigres/sqlanalyzer/go/analyzer"
)

func analyze(t *testing.T, text string) *analyzer.Result {
	t.Helper()
	return analyzer.New(analyzer.Config{}, nil).Analyze("query.sql", text)
}

func TestFormatFlag(t *testing.T) {
	tests := []struct {
		arg     string
		want    Format
		wantErr bool
	}{
		{arg: "text", want: FormatText},
		{arg: "json", want: FormatJSON},
		{arg: "YAML", want: FormatYAML},
		{arg: "toml", want: FormatTOML},
		{arg: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			f, err := ParseFormat(tt.arg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "json, text, toml, yaml")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
			assert.Equal(t, strings.ToLower(tt.arg), f.String())
		})
	}

	var f Format
	assert.Equal(t, "format", f.Type())
	assert.Equal(t, []string{"json", "text", "toml", "yaml"}, FormatNames())
}

func TestWriteJSON(t *testing.T) {
	res := analyze(t, "SELECT a FROM t;")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res, Options{Format: FormatJSON}))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, res.JobID, doc["job_id"])
	assert.Equal(t, true, doc["ok"])
	assert.Equal(t, float64(6), doc["token_count"])
	assert.Len(t, doc["tokens"], 6)
	assert.Equal(t, []any{}, doc["errors"])

	first := doc["tokens"].([]any)[0].(map[string]any)
	assert.Equal(t, "RESWORD", first["type"])
	assert.Equal(t, "SELECT", first["value"])
	assert.Equal(t, float64(1), first["col"])
}

func TestWriteYAML(t *testing.T) {
	res := analyze(t, "SELECT FROM t")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res, Options{Format: FormatYAML}))

	var doc document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.False(t, doc.OK)
	assert.Equal(t, res.Diagnostics, doc.Diagnostics)
	assert.Equal(t, res.Symbols, doc.Symbols)
	assert.Equal(t, res.Stats, doc.Stats)
}

func TestWriteTOML(t *testing.T) {
	res := analyze(t, "INSERT INTO t (a, b) VALUES (1, 'x');")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res, Options{Format: FormatTOML}))

	var doc document
	_, err := toml.Decode(buf.String(), &doc)
	require.NoError(t, err)
	assert.True(t, doc.OK)
	assert.Equal(t, res.Tokens, doc.Tokens)
	assert.Equal(t, res.Progress, doc.Progress)
	assert.Equal(t, res.Stats.TotalEntries, doc.Stats.TotalEntries)
}

func TestWriteAllTOMLIsOneDocument(t *testing.T) {
	results := []*analyzer.Result{
		analyze(t, "SELECT a FROM t;"),
		analyze(t, "SELECT FROM t;"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAll(&buf, results, Options{Format: FormatTOML}))

	var got batch
	_, err := toml.Decode(buf.String(), &got)
	require.NoError(t, err)
	require.Len(t, got.Reports, 2)
	assert.True(t, got.Reports[0].OK)
	assert.False(t, got.Reports[1].OK)
	assert.Equal(t, results[1].Tokens, got.Reports[1].Tokens)
	assert.Equal(t, results[1].Diagnostics, got.Reports[1].Diagnostics)
}

func TestWriteAllSeparators(t *testing.T) {
	results := []*analyzer.Result{analyze(t, "SELECT a FROM t;"), analyze(t, "SELECT b FROM u;")}

	tests := []struct {
		format Format
		check  func(t *testing.T, out string)
	}{
		{format: FormatYAML, check: func(t *testing.T, out string) {
			assert.Equal(t, 1, strings.Count(out, "\n---\n"))
		}},
		{format: FormatJSON, check: func(t *testing.T, out string) {
			dec := json.NewDecoder(strings.NewReader(out))
			for range results {
				var doc map[string]any
				require.NoError(t, dec.Decode(&doc))
			}
			assert.False(t, dec.More())
		}},
		{format: FormatTOML, check: func(t *testing.T, out string) {
			assert.Equal(t, 2, strings.Count(out, "[[reports]]"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteAll(&buf, results, Options{Format: tt.format}))
			tt.check(t, buf.String())
		})
	}
}

func TestTokenLimitCapsRenderingOnly(t *testing.T) {
	res := analyze(t, "SELECT a FROM t;")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res, Options{Format: FormatJSON, TokenLimit: 2}))

	var doc document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Len(t, doc.Tokens, 2)
	assert.Equal(t, 6, doc.TokenCount)
	assert.Len(t, res.Tokens, 6)

	buf.Reset()
	require.NoError(t, Write(&buf, res, Options{Format: FormatText, TokenLimit: 2}))
	assert.Contains(t, buf.String(), "Tokens (first 2 of 6)")
}

func TestWriteText(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		res := analyze(t, "SELECT a FROM t;")

		var buf bytes.Buffer
		require.NoError(t, Write(&buf, res, Options{Format: FormatText, TokenLimit: DefaultTokenLimit}))
		out := buf.String()

		assert.Contains(t, out, "Analysis of query.sql")
		assert.Contains(t, out, "no errors found")
		assert.Contains(t, out, "Tokens (6)")
		assert.Contains(t, out, "parse started")
		assert.Contains(t, out, "SELECT")
		assert.Contains(t, out, "load factor:   0.0049")
		assert.Contains(t, out, "COLUMN:")
	})

	t.Run("with diagnostics", func(t *testing.T) {
		res := analyze(t, "SELEC a")

		var buf bytes.Buffer
		require.NoError(t, Write(&buf, res, Options{Format: FormatText}))
		out := buf.String()

		assert.NotContains(t, out, "no errors found")
		assert.Contains(t, out, "L1:C1 - unrecognized statement: SELEC")
	})
}

func TestWriteUnknownFormat(t *testing.T) {
	res := analyze(t, "")
	err := Write(&bytes.Buffer{}, res, Options{Format: Format(42)})
	require.Error(t, err)
}
