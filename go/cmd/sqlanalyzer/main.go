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

// sqlanalyzer scans and validates SQL statements, reporting tokens,
// diagnostics and a symbol table for each input.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/multigres/sqlanalyzer/go/cmd/sqlanalyzer/command"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root, ac := command.GetRootCommand()

	err := root.ExecuteContext(ctx)
	stop()
	if cerr := ac.Close(); cerr != nil {
		slog.Error("Failed to close", "error", cerr)
	}
	if err != nil {
		if !errors.Is(err, command.ErrDiagnostics) {
			slog.Error("Command execution failed", "error", err)
		}
		os.Exit(command.ExitCode(err))
	}
}
