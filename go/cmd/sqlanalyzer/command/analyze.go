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
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/multigres/sqlanalyzer/go/analyzer"
	"github.com/multigres/sqlanalyzer/go/report"
	"github.com/multigres/sqlanalyzer/go/tools/fileutil"
	"github.com/multigres/sqlanalyzer/go/viperutil"
)

const stdinName = "<stdin>"

// AddAnalyzeCommand adds the analyze subcommand to root.
func AddAnalyzeCommand(root *cobra.Command, ac *AnalyzerCommand) {
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Analyze SQL files",
		Long: `Analyze tokenizes and validates each input and prints its report.

With no arguments, or with "-", the statements are read from standard input.

Examples:
  # Analyze a file
  sqlanalyzer analyze schema.sql

  # Analyze from a pipe as JSON
  echo "SELECT * FROM t;" | sqlanalyzer analyze --format json

  # Use in CI
  sqlanalyzer analyze --fail-on-diagnostics queries/*.sql

  # Write the report to a file
  sqlanalyzer analyze --format yaml -o report.yaml schema.sql`,
		RunE: ac.runAnalyze,
	}
	cmd.Flags().StringP("output", "o", ac.output.Default(), "Write the reports to this file instead of standard output")
	viperutil.BindFlags(cmd.Flags(), ac.output)
	root.AddCommand(cmd)
}

func (ac *AnalyzerCommand) runAnalyze(cmd *cobra.Command, args []string) error {
	opts, err := ac.reportOptions()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}

	a := ac.newAnalyzer()
	var out io.Writer = cmd.OutOrStdout()
	outputPath := ac.output.Get()
	var buf bytes.Buffer
	if outputPath != "" {
		out = &buf
	}
	failed := 0
	results := make([]*analyzer.Result, 0, len(args))

	for _, arg := range args {
		var res *analyzer.Result
		if arg == "-" {
			res, err = a.AnalyzeReader(stdinName, cmd.InOrStdin())
		} else {
			res, err = a.AnalyzeFile(ac.fs, arg)
		}
		if err != nil {
			return err
		}
		if !res.OK() {
			failed++
		}
		results = append(results, res)
	}

	if err := report.WriteAll(out, results, opts); err != nil {
		return err
	}

	if outputPath != "" {
		if err := fileutil.AtomicWriteFile(ac.fs, outputPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outputPath, err)
		}
	}

	if failed > 0 && ac.failOnDiagnostics.Get() {
		return fmt.Errorf("%w: %d of %d input(s)", ErrDiagnostics, failed, len(args))
	}
	return nil
}
