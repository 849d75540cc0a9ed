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

package servenv

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multigres/sqlanalyzer/go/viperutil"
)

func newTestLogger(t *testing.T, args []string, opts ...LoggerOption) *Logger {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	reg := viperutil.NewRegistry()
	lg := NewLogger(reg, opts...)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	lg.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return lg
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestSetupLoggingDefaults(t *testing.T) {
	var stdout, stderr bytes.Buffer
	lg := newTestLogger(t, nil, WithStreams(&stdout, &stderr))

	assert.Equal(t, "info", lg.GetLogLevel())
	assert.Equal(t, "json", lg.GetLogFormat())
	assert.Equal(t, "stderr", lg.GetLogOutput())

	require.NoError(t, lg.SetupLogging())
	lg.GetLogger().Debug("hidden")
	lg.GetLogger().Info("shown", "k", "v")
	assert.Same(t, lg.GetLogger(), slog.Default())

	assert.Empty(t, stdout.String())
	var rec map[string]any
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}

func TestSetupLoggingFromFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	lg := newTestLogger(t, []string{"--log-level=debug", "--log-format=text", "--log-output=stdout"}, WithStreams(&stdout, &stderr))

	var hooked *slog.Logger
	lg.OnLoggingSetup(func(l *slog.Logger) { hooked = l })

	require.NoError(t, lg.SetupLogging())
	assert.Same(t, lg.GetLogger(), hooked)

	out := stdout.String()
	assert.Contains(t, out, "level=DEBUG msg=\"logging initialized\"")
	assert.Contains(t, out, "format=text")
	assert.Empty(t, stderr.String())
}

func TestSetupLoggingToFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	lg := newTestLogger(t, []string{"--log-output=/var/log/sqla.log"}, WithFs(fs))

	require.NoError(t, lg.SetupLogging())
	lg.GetLogger().Warn("to file")
	require.NoError(t, lg.Close())
	require.NoError(t, lg.Close())

	data, err := afero.ReadFile(fs, "/var/log/sqla.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestSetupLoggingBadOutput(t *testing.T) {
	var stderr bytes.Buffer
	lg := newTestLogger(t, []string{"--log-output=/logs/app.log"},
		WithFs(afero.NewReadOnlyFs(afero.NewMemMapFs())),
		WithStreams(&bytes.Buffer{}, &stderr))

	err := lg.SetupLogging()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open log output /logs/app.log")

	// Falls back to stderr, and only the first call does any work.
	lg.GetLogger().Error("still logging")
	assert.Contains(t, stderr.String(), "still logging")
	assert.Equal(t, err, lg.SetupLogging())
}

func TestGetLoggerBeforeSetup(t *testing.T) {
	lg := newTestLogger(t, nil)
	assert.Same(t, slog.Default(), lg.GetLogger())
}
