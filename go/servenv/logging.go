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
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/multigres/sqlanalyzer/go/viperutil"
)

// Logger builds the process slog.Logger from the log-level, log-format and
// log-output settings.
type Logger struct {
	// Logging configuration flags
	logLevel  viperutil.Value[string]
	logFormat viperutil.Value[string]
	logOutput viperutil.Value[string]

	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer

	// Internal state
	loggerOnce sync.Once
	logger     *slog.Logger
	closer     io.Closer
	setupErr   error
	loggerMu   sync.Mutex

	// Hooks for customizing logging behavior
	loggingSetupHooks []func(*slog.Logger)
	loggingHooksMu    sync.Mutex
}

// LoggerOption customizes a Logger.
type LoggerOption func(*Logger)

// WithFs sets the filesystem log files are opened on.
func WithFs(fs afero.Fs) LoggerOption {
	return func(lg *Logger) { lg.fs = fs }
}

// WithStreams replaces the writers used for "stdout" and "stderr".
func WithStreams(stdout, stderr io.Writer) LoggerOption {
	return func(lg *Logger) {
		lg.stdout = stdout
		lg.stderr = stderr
	}
}

// NewLogger registers the logging keys in reg.
func NewLogger(reg *viperutil.Registry, opts ...LoggerOption) *Logger {
	lg := &Logger{
		logLevel: viperutil.Configure(reg, "log-level", viperutil.Options[string]{
			Default:  "info",
			FlagName: "log-level",
		}),
		logFormat: viperutil.Configure(reg, "log-format", viperutil.Options[string]{
			Default:  "json",
			FlagName: "log-format",
		}),
		logOutput: viperutil.Configure(reg, "log-output", viperutil.Options[string]{
			Default:  "stderr",
			FlagName: "log-output",
		}),
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// RegisterFlags registers logging-related command line flags.
// This must be called before ParseFlags if using the logging system.
func (lg *Logger) RegisterFlags(fs *pflag.FlagSet) {
	fs.String("log-level", lg.logLevel.Default(), "Log level (debug, info, warn, error)")
	fs.String("log-format", lg.logFormat.Default(), "Log format (json, text)")
	fs.String("log-output", lg.logOutput.Default(), "Log output (stdout, stderr, or file path)")
	viperutil.BindFlags(fs, lg.logLevel, lg.logFormat, lg.logOutput)
}

// OnLoggingSetup registers a callback function to be called after the logger is created.
func (lg *Logger) OnLoggingSetup(f func(*slog.Logger)) {
	lg.loggingHooksMu.Lock()
	defer lg.loggingHooksMu.Unlock()
	lg.loggingSetupHooks = append(lg.loggingSetupHooks, f)
}

// ParseLevel maps a level name to a slog.Level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogging initializes the logger based on the configured flags and
// makes it the slog default. Only the first call has any effect; later calls
// return the first call's error.
func (lg *Logger) SetupLogging() error {
	lg.loggerOnce.Do(func() {
		levelStr := lg.logLevel.Get()
		if levelStr == "" {
			levelStr = "info"
		}
		level := ParseLevel(levelStr)

		var output io.Writer
		outputStr := lg.logOutput.Get()
		if outputStr == "" {
			outputStr = "stderr"
		}
		switch strings.ToLower(outputStr) {
		case "stdout":
			output = lg.stdout
		case "stderr":
			output = lg.stderr
		default:
			// Treat as file path
			file, err := lg.fs.OpenFile(outputStr, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				lg.setupErr = fmt.Errorf("failed to open log output %s: %w", outputStr, err)
				output = lg.stderr
			} else {
				output = file
				lg.closer = file
			}
		}

		formatStr := lg.logFormat.Get()
		if formatStr == "" {
			formatStr = "json"
		}
		handlerOpts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler
		switch strings.ToLower(formatStr) {
		case "text":
			handler = slog.NewTextHandler(output, handlerOpts)
		default:
			handler = slog.NewJSONHandler(output, handlerOpts)
		}

		newLogger := slog.New(handler)
		slog.SetDefault(newLogger)

		lg.loggerMu.Lock()
		lg.logger = newLogger
		lg.loggerMu.Unlock()

		lg.fireLoggingSetupHooks(newLogger)

		newLogger.Debug("logging initialized",
			"level", levelStr,
			"format", formatStr,
			"output", outputStr,
		)
	})
	return lg.setupErr
}

// GetLogger returns the configured logger instance, or the slog default if
// SetupLogging has not run yet.
func (lg *Logger) GetLogger() *slog.Logger {
	lg.loggerMu.Lock()
	defer lg.loggerMu.Unlock()
	if lg.logger == nil {
		return slog.Default()
	}
	return lg.logger
}

// Close releases the log file, if one was opened.
func (lg *Logger) Close() error {
	lg.loggerMu.Lock()
	defer lg.loggerMu.Unlock()
	if lg.closer == nil {
		return nil
	}
	err := lg.closer.Close()
	lg.closer = nil
	return err
}

// fireLoggingSetupHooks calls all registered logging setup hooks.
func (lg *Logger) fireLoggingSetupHooks(l *slog.Logger) {
	lg.loggingHooksMu.Lock()
	hooks := make([]func(*slog.Logger), len(lg.loggingSetupHooks))
	copy(hooks, lg.loggingSetupHooks)
	lg.loggingHooksMu.Unlock()

	for _, hook := range hooks {
		hook(l)
	}
}

// GetLogLevel returns the current log level setting.
func (lg *Logger) GetLogLevel() string {
	return lg.logLevel.Get()
}

// GetLogFormat returns the current log format setting.
func (lg *Logger) GetLogFormat() string {
	return lg.logFormat.Get()
}

// GetLogOutput returns the current log output setting.
func (lg *Logger) GetLogOutput() string {
	return lg.logOutput.Get()
}
