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

	"github.com/multigres/sqlanalyzer/go/viperutil/debug"
)

// AddConfigCommand adds the config subcommand to root.
func AddConfigCommand(root *cobra.Command, ac *AnalyzerCommand) {
	root.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Config prints every setting after flags, SQLA_* environment variables and
the config file have been applied, in the format chosen by --format.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := debug.Collect(ac.reg, cmd.Flags())
			return debug.Write(cmd.OutOrStdout(), snap, ac.format.Get())
		},
	})
}
