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

// Package report encodes analysis results for people and for tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/multigres/sqlanalyzer/go/analyzer"
)

// DefaultTokenLimit caps how many tokens are rendered by default.
const DefaultTokenLimit = 2000

// Options controls rendering.
type Options struct {
	Format Format
	// TokenLimit caps the rendered tokens; zero or less renders all of them.
	TokenLimit int
	// Color enables terminal styling in text output, subject to what the
	// writer supports.
	Color bool
}

// document is the encoded shape of a result. Tokens may be truncated;
// TokenCount always holds the full length.
type document struct {
	JobID       string                  `json:"job_id" yaml:"job_id" toml:"job_id"`
	Source      string                  `json:"source" yaml:"source" toml:"source"`
	OK          bool                    `json:"ok" yaml:"ok" toml:"ok"`
	Progress    []string                `json:"log" yaml:"log" toml:"log"`
	Diagnostics []string                `json:"errors" yaml:"errors" toml:"errors"`
	TokenCount  int                     `json:"token_count" yaml:"token_count" toml:"token_count"`
	Stats       analyzer.Stats          `json:"stats" yaml:"stats" toml:"stats"`
	Tokens      []analyzer.TokenRecord  `json:"tokens" yaml:"tokens" toml:"tokens"`
	Symbols     []analyzer.SymbolRecord `json:"symtab" yaml:"symtab" toml:"symtab"`
}

func newDocument(res *analyzer.Result, limit int) document {
	tokens := res.Tokens
	if limit > 0 && len(tokens) > limit {
		tokens = tokens[:limit]
	}
	return document{
		JobID:       res.JobID,
		Source:      res.Source,
		OK:          res.OK(),
		Progress:    nonNil(res.Progress),
		Diagnostics: nonNil(res.Diagnostics),
		TokenCount:  len(res.Tokens),
		Stats:       res.Stats,
		Tokens:      tokens,
		Symbols:     res.Symbols,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Write encodes res to w.
func Write(w io.Writer, res *analyzer.Result, opts Options) error {
	doc := newDocument(res, opts.TokenLimit)

	switch opts.Format {
	case FormatText:
		return writeText(w, doc, newPalette(w, opts.Color))
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("failed to encode TOML: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %d", int(opts.Format))
	}
}

// batch wraps several TOML documents, which have no multi-document form.
type batch struct {
	Reports []document `toml:"reports"`
}

// WriteAll encodes results to w as one stream. Text reports are separated by
// a blank line, YAML reports by a document marker and JSON reports by the
// encoder's trailing newline. Several TOML reports are nested under a
// [[reports]] array so the output stays a single valid document.
func WriteAll(w io.Writer, results []*analyzer.Result, opts Options) error {
	if opts.Format == FormatTOML && len(results) > 1 {
		docs := make([]document, len(results))
		for i, res := range results {
			docs[i] = newDocument(res, opts.TokenLimit)
		}
		if err := toml.NewEncoder(w).Encode(batch{Reports: docs}); err != nil {
			return fmt.Errorf("failed to encode TOML: %w", err)
		}
		return nil
	}

	for i, res := range results {
		if i > 0 {
			if err := WriteSeparator(w, opts.Format); err != nil {
				return err
			}
		}
		if err := Write(w, res, opts); err != nil {
			return fmt.Errorf("failed to write report for %s: %w", res.Source, err)
		}
	}
	return nil
}

// WriteSeparator writes the marker that splits two consecutive reports in a
// stream. JSON and TOML get none.
func WriteSeparator(w io.Writer, format Format) error {
	var sep string
	switch format {
	case FormatText:
		sep = "\n"
	case FormatYAML:
		sep = "---\n"
	}
	_, err := io.WriteString(w, sep)
	return err
}

type palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	muted lipgloss.Style
}

func newPalette(w io.Writer, color bool) palette {
	if !color {
		plain := lipgloss.NewStyle()
		return palette{title: plain, ok: plain, err: plain, muted: plain}
	}
	r := lipgloss.NewRenderer(w)
	return palette{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("#10B981")),
		err:   r.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		muted: r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	}
}

func writeText(w io.Writer, doc document, p palette) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", p.title.Render("Analysis of"), doc.Source)
	fmt.Fprintf(&b, "%s\n\n", p.muted.Render("job "+doc.JobID))

	b.WriteString(p.title.Render("Progress") + "\n")
	for _, line := range doc.Progress {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	b.WriteString("\n")

	b.WriteString(p.title.Render("Diagnostics") + "\n")
	if len(doc.Diagnostics) == 0 {
		b.WriteString("  " + p.ok.Render("no errors found") + "\n")
	}
	for _, d := range doc.Diagnostics {
		b.WriteString("  " + p.err.Render(d) + "\n")
	}
	b.WriteString("\n")

	header := fmt.Sprintf("Tokens (%d)", doc.TokenCount)
	if len(doc.Tokens) < doc.TokenCount {
		header = fmt.Sprintf("Tokens (first %d of %d)", len(doc.Tokens), doc.TokenCount)
	}
	b.WriteString(p.title.Render(header) + "\n")
	tokenRows := make([][]string, len(doc.Tokens))
	for i, t := range doc.Tokens {
		tokenRows[i] = []string{t.Type, t.Value, strconv.Itoa(t.Line), strconv.Itoa(t.Column)}
	}
	b.WriteString(renderTable([]string{"TYPE", "VALUE", "LINE", "COL"}, tokenRows) + "\n\n")

	b.WriteString(p.title.Render("Symbol table") + "\n")
	symbolRows := make([][]string, len(doc.Symbols))
	for i, s := range doc.Symbols {
		symbolRows[i] = []string{s.Hash, s.Kind, s.Value, strconv.Itoa(s.Line), strconv.Itoa(s.Column), strconv.Itoa(s.Refs)}
	}
	b.WriteString(renderTable([]string{"HASH", "KIND", "VALUE", "LINE", "COL", "REFS"}, symbolRows) + "\n\n")

	b.WriteString(p.title.Render("Statistics") + "\n")
	fmt.Fprintf(&b, "  buckets:       %d\n", doc.Stats.Size)
	fmt.Fprintf(&b, "  entries:       %d\n", doc.Stats.TotalEntries)
	fmt.Fprintf(&b, "  collisions:    %d\n", doc.Stats.Collisions)
	fmt.Fprintf(&b, "  load factor:   %s\n", strconv.FormatFloat(doc.Stats.LoadFactor, 'f', 4, 64))
	kinds := make([]string, 0, len(doc.Stats.ByKind))
	for k := range doc.Stats.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&b, "  %-14s %d\n", k+":", doc.Stats.ByKind[k])
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		Render()
}
