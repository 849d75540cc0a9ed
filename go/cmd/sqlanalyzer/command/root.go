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
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/multigres/sqlanalyzer/go/analyzer"
	"github.com/multigres/sqlanalyzer/go/parser/symtab"
	"github.com/multigres/sqlanalyzer/go/report"
	"github.com/multigres/sqlanalyzer/go/servenv"
	"github.com/multigres/sqlanalyzer/go/viperutil"
)

// ErrDiagnostics is returned when --fail-on-diagnostics is set and at least
// one input produced diagnostics.
var ErrDiagnostics = errors.New("diagnostics reported")

// ExitCode maps a command error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrDiagnostics):
		return 2
	default:
		return 1
	}
}

// AnalyzerCommand holds the configuration shared by the sqlanalyzer commands.
type AnalyzerCommand struct {
	reg               *viperutil.Registry
	fs                afero.Fs
	format            viperutil.Value[string]
	tokenLimit        viperutil.Value[int]
	buckets           viperutil.Value[int]
	reportLexical     viperutil.Value[bool]
	failOnDiagnostics viperutil.Value[bool]
	color             viperutil.Value[bool]
	output            viperutil.Value[string]
	vc                *viperutil.ViperConfig
	lg                *servenv.Logger
	profiler          *servenv.Profiler
	stopProfile       func()
}

// Option customizes the command tree.
type Option func(*options)

type options struct {
	fs afero.Fs
}

// WithFs makes every command read inputs, config and log files from fs.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// GetRootCommand creates and returns the root command with all subcommands.
func GetRootCommand(opts ...Option) (*cobra.Command, *AnalyzerCommand) {
	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}

	reg := viperutil.NewRegistry(viperutil.WithFs(o.fs))
	ac := &AnalyzerCommand{
		reg: reg,
		fs:  o.fs,
		format: viperutil.Configure(reg, "format", viperutil.Options[string]{
			Default:  "text",
			FlagName: "format",
		}),
		tokenLimit: viperutil.Configure(reg, "token-limit", viperutil.Options[int]{
			Default:  report.DefaultTokenLimit,
			FlagName: "token-limit",
		}),
		buckets: viperutil.Configure(reg, "buckets", viperutil.Options[int]{
			Default:  symtab.DefaultSize,
			FlagName: "buckets",
		}),
		reportLexical: viperutil.Configure(reg, "report-lexical", viperutil.Options[bool]{
			FlagName: "report-lexical",
		}),
		failOnDiagnostics: viperutil.Configure(reg, "fail-on-diagnostics", viperutil.Options[bool]{
			FlagName: "fail-on-diagnostics",
		}),
		color: viperutil.Configure(reg, "color", viperutil.Options[bool]{
			Default:  true,
			FlagName: "color",
		}),
		output: viperutil.Configure(reg, "output", viperutil.Options[string]{
			FlagName: "output",
		}),
		vc:       viperutil.NewViperConfig(reg),
		lg:       servenv.NewLogger(reg, servenv.WithFs(o.fs)),
		profiler: servenv.NewProfiler(reg, o.fs),
	}

	root := &cobra.Command{
		Use:   "sqlanalyzer",
		Short: "Scan and validate SQL statements",
		Long: `sqlanalyzer tokenizes SQL text, validates it against a small grammar
(SELECT, INSERT, UPDATE and CREATE TABLE) and reports the tokens, the
diagnostics, a hashed symbol table and a progress trace for each input.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := ac.vc.LoadConfig(ac.reg); err != nil {
				return err
			}
			if err := ac.lg.SetupLogging(); err != nil {
				return err
			}
			stop, err := ac.profiler.Start()
			if err != nil {
				return err
			}
			ac.stopProfile = stop
			return nil
		},
	}

	format := report.FormatText
	root.PersistentFlags().Var(&format, "format", fmt.Sprintf("Output format (%s)", strings.Join(report.FormatNames(), ", ")))
	root.PersistentFlags().Int("token-limit", ac.tokenLimit.Default(), "Maximum number of tokens rendered per input (0 renders all)")
	root.PersistentFlags().Int("buckets", ac.buckets.Default(), "Number of symbol table buckets")
	root.PersistentFlags().Bool("report-lexical", ac.reportLexical.Default(), "Report unrecognized characters as diagnostics")
	root.PersistentFlags().Bool("fail-on-diagnostics", ac.failOnDiagnostics.Default(), "Exit with status 2 when any input has diagnostics")
	root.PersistentFlags().Bool("color", ac.color.Default(), "Style text output when the terminal supports it")
	ac.vc.RegisterFlags(root.PersistentFlags())
	ac.lg.RegisterFlags(root.PersistentFlags())
	ac.profiler.RegisterFlags(root.PersistentFlags())

	viperutil.BindFlags(root.PersistentFlags(),
		ac.format,
		ac.tokenLimit,
		ac.buckets,
		ac.reportLexical,
		ac.failOnDiagnostics,
		ac.color,
	)

	AddAnalyzeCommand(root, ac)
	AddWatchCommand(root, ac)
	AddKeywordsCommand(root, ac)
	AddConfigCommand(root, ac)

	return root, ac
}

// Close flushes the profile and closes the log file. It must run after the
// command returns, whether or not it failed.
func (ac *AnalyzerCommand) Close() error {
	if ac.stopProfile != nil {
		ac.stopProfile()
		ac.stopProfile = nil
	}
	return ac.lg.Close()
}

// newAnalyzer builds an Analyzer from the resolved settings.
func (ac *AnalyzerCommand) newAnalyzer() *analyzer.Analyzer {
	return analyzer.New(analyzer.Config{
		BucketCount:   ac.buckets.Get(),
		ReportLexical: ac.reportLexical.Get(),
	}, ac.lg.GetLogger())
}

// reportOptions resolves the rendering settings.
func (ac *AnalyzerCommand) reportOptions() (report.Options, error) {
	format, err := report.ParseFormat(ac.format.Get())
	if err != nil {
		return report.Options{}, err
	}
	return report.Options{
		Format:     format,
		TokenLimit: ac.tokenLimit.Get(),
		Color:      ac.color.Get(),
	}, nil
}
