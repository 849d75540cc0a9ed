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

package command

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/multigres/sqlanalyzer/go/parser/keywords"
)

// AddKeywordsCommand adds the keywords subcommand to root.
func AddKeywordsCommand(root *cobra.Command, ac *AnalyzerCommand) {
	root.AddCommand(&cobra.Command{
		Use:   "keywords",
		Short: "List the reserved words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeKeywords(cmd.OutOrStdout())
		},
	})
}

func writeKeywords(w io.Writer) error {
	names := keywords.GetKeywordNames()
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		kw := keywords.LookupKeyword(name)
		rows = append(rows, []string{kw.Name, kw.Category.String()})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("KEYWORD", "CATEGORY").
		Rows(rows...)
	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}
