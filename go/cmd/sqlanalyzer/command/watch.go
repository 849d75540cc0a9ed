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
	"github.com/spf13/cobra"

	"github.com/multigres/sqlanalyzer/go/analyzer"
	"github.com/multigres/sqlanalyzer/go/report"
	"github.com/multigres/sqlanalyzer/go/watch"
)

// AddWatchCommand adds the watch subcommand to root.
func AddWatchCommand(root *cobra.Command, ac *AnalyzerCommand) {
	root.AddCommand(&cobra.Command{
		Use:   "watch <file>",
		Short: "Re-analyze a file whenever it changes",
		Long: `Watch analyzes the file once and then again each time it is written or
replaced, printing a fresh report every time. Stop it with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: ac.runWatch,
	})
}

func (ac *AnalyzerCommand) runWatch(cmd *cobra.Command, args []string) error {
	opts, err := ac.reportOptions()
	if err != nil {
		return err
	}

	logger := ac.lg.GetLogger()
	out := cmd.OutOrStdout()
	first := true

	w := watch.New(args[0], ac.newAnalyzer(), func(res *analyzer.Result) {
		if !first {
			if err := report.WriteSeparator(out, opts.Format); err != nil {
				logger.Warn("failed to write report", "error", err)
			}
		}
		first = false
		if err := report.Write(out, res, opts); err != nil {
			logger.Warn("failed to write report", "source", res.Source, "error", err)
		}
	}, watch.WithFs(ac.fs), watch.WithLogger(logger))

	return w.Run(cmd.Context())
}
