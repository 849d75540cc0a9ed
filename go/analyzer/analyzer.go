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

// Package analyzer runs one analysis job over a source document: it scans
// the text, validates it against the statement grammar and fills a fresh
// symbol table, then hands back the token list, rendered diagnostics, symbol
// entries, table statistics and the progress trace of the run.
package analyzer

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/multigres/sqlanalyzer/go/parser"
	"github.com/multigres/sqlanalyzer/go/parser/diagnostics"
	"github.com/multigres/sqlanalyzer/go/parser/lexer"
	"github.com/multigres/sqlanalyzer/go/parser/symtab"
)

// Config controls how jobs are run.
type Config struct {
	// BucketCount is the number of symbol table buckets; zero selects
	// symtab.DefaultSize.
	BucketCount int
	// ReportLexical adds a diagnostic for every character the scanner could
	// not classify.
	ReportLexical bool
}

// TokenRecord is one scanned token.
type TokenRecord struct {
	Type   string `json:"type" yaml:"type" toml:"type"`
	Value  string `json:"value" yaml:"value" toml:"value"`
	Line   int    `json:"line" yaml:"line" toml:"line"`
	Column int    `json:"col" yaml:"col" toml:"col"`
}

// SymbolRecord is one symbol table entry.
type SymbolRecord struct {
	Hash   string `json:"hash" yaml:"hash" toml:"hash"`
	Kind   string `json:"kind" yaml:"kind" toml:"kind"`
	Value  string `json:"value" yaml:"value" toml:"value"`
	Line   int    `json:"line" yaml:"line" toml:"line"`
	Column int    `json:"col" yaml:"col" toml:"col"`
	Refs   int    `json:"refs" yaml:"refs" toml:"refs"`
}

// Stats mirrors symtab.Stats for reporting.
type Stats struct {
	Size         int            `json:"size" yaml:"size" toml:"size"`
	TotalEntries int            `json:"total_entries" yaml:"total_entries" toml:"total_entries"`
	Collisions   int            `json:"collisions" yaml:"collisions" toml:"collisions"`
	LoadFactor   float64        `json:"load_factor" yaml:"load_factor" toml:"load_factor"`
	ByKind       map[string]int `json:"by_kind" yaml:"by_kind" toml:"by_kind"`
}

// Result holds every artifact of one job.
type Result struct {
	JobID       string         `json:"job_id" yaml:"job_id" toml:"job_id"`
	Source      string         `json:"source" yaml:"source" toml:"source"`
	Tokens      []TokenRecord  `json:"tokens" yaml:"tokens" toml:"tokens"`
	Diagnostics []string       `json:"errors" yaml:"errors" toml:"errors"`
	Symbols     []SymbolRecord `json:"symtab" yaml:"symtab" toml:"symtab"`
	Stats       Stats          `json:"stats" yaml:"stats" toml:"stats"`
	Progress    []string       `json:"log" yaml:"log" toml:"log"`
	Elapsed     time.Duration  `json:"-" yaml:"-" toml:"-"`
}

// OK returns true if the job produced no diagnostics.
func (r *Result) OK() bool {
	return len(r.Diagnostics) == 0
}

// Analyzer runs jobs. It keeps no per-job state, so one Analyzer may serve
// concurrent callers; every job builds its own symbol table and log.
type Analyzer struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Analyzer. A nil logger discards log output.
func New(cfg Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{cfg: cfg, logger: logger}
}

// progressLog records milestones in the trace and mirrors them to the log.
type progressLog struct {
	trace  *parser.Trace
	logger *slog.Logger
}

func (p progressLog) Progress(msg string) {
	p.trace.Progress(msg)
	p.logger.Debug(msg)
}

// Analyze runs a job over text. Invalid UTF-8 sequences are replaced with
// U+FFFD before scanning. Analyze never fails; problems in the input are
// reported through Result.Diagnostics.
func (a *Analyzer) Analyze(source, text string) *Result {
	start := time.Now()
	jobID := uuid.NewString()
	logger := a.logger.With("job_id", jobID, "source", source)
	logger.Info("analysis started", "bytes", len(text))

	trace := &parser.Trace{}
	progress := progressLog{trace: trace, logger: logger}
	progress.Progress("file received, tokenizing")

	text = strings.ToValidUTF8(text, "\uFFFD")
	diags := diagnostics.NewLog()
	var opts []lexer.Option
	if a.cfg.ReportLexical {
		opts = append(opts, lexer.WithDiagnostics(diags))
	}
	tokens := lexer.Tokenize(text, opts...)
	progress.Progress(fmt.Sprintf("tokenized: %d token(s)", len(tokens)))

	symbols := symtab.New(a.cfg.BucketCount)
	progress.Progress("starting grammar validation")
	parser.Parse(tokens, symbols, diags, progress)

	// The end-of-input token is registered too, after the parse.
	symbols.Add(tokens[len(tokens)-1], symtab.EOF)

	res := &Result{
		JobID:       jobID,
		Source:      source,
		Tokens:      tokenRecords(tokens),
		Diagnostics: diags.Render(),
		Symbols:     symbolRecords(symbols.Entries()),
		Stats:       statsRecord(symbols.Stats()),
		Progress:    trace.Lines(),
		Elapsed:     time.Since(start),
	}

	logger.Info("analysis finished",
		"tokens", len(res.Tokens),
		"diagnostics", len(res.Diagnostics),
		"symbols", res.Stats.TotalEntries,
		"collisions", res.Stats.Collisions,
		"elapsed", res.Elapsed,
	)
	return res
}

// AnalyzeReader reads r to the end and analyzes its contents.
func (a *Analyzer) AnalyzeReader(source string, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return a.Analyze(source, string(data)), nil
}

// AnalyzeFile reads path from fs and analyzes its contents.
func (a *Analyzer) AnalyzeFile(fs afero.Fs, path string) (*Result, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return a.Analyze(path, string(data)), nil
}

func tokenRecords(tokens []lexer.Token) []TokenRecord {
	out := make([]TokenRecord, len(tokens))
	for i, t := range tokens {
		out[i] = TokenRecord{
			Type:   t.Type.String(),
			Value:  t.Value,
			Line:   t.Line,
			Column: t.Column,
		}
	}
	return out
}

func symbolRecords(entries []symtab.Entry) []SymbolRecord {
	out := make([]SymbolRecord, len(entries))
	for i, e := range entries {
		out[i] = SymbolRecord{
			Hash:   e.HashPrefix(),
			Kind:   e.Kind.String(),
			Value:  e.Value,
			Line:   e.Line,
			Column: e.Column,
			Refs:   e.Refs,
		}
	}
	return out
}

func statsRecord(s symtab.Stats) Stats {
	return Stats{
		Size:         s.Size,
		TotalEntries: s.TotalEntries,
		Collisions:   s.Collisions,
		LoadFactor:   s.LoadFactor,
		ByKind:       s.ByKind,
	}
}
