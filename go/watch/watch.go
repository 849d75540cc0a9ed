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

// Package watch re-analyzes a SQL file every time it changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/multigres/sqlanalyzer/go/analyzer"
)

// DefaultDebounce collapses the burst of events editors emit for one save.
const DefaultDebounce = 100 * time.Millisecond

// Handler receives each new result. It runs on the watcher goroutine, so a
// slow handler delays the next analysis.
type Handler func(*analyzer.Result)

// Option customizes a Watcher.
type Option func(*Watcher)

// WithFs sets the filesystem the watched file is read from.
func WithFs(fs afero.Fs) Option {
	return func(w *Watcher) { w.fs = fs }
}

// WithLogger sets the logger for watcher events.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// WithDebounce sets how long the watcher waits for events to settle before
// analyzing. Zero analyzes on every event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// Watcher follows one file. fsnotify watches the parent directory, so the
// file may be replaced by rename, as many editors do, without losing it.
type Watcher struct {
	path     string
	fs       afero.Fs
	analyzer *analyzer.Analyzer
	onResult Handler
	logger   *slog.Logger
	debounce time.Duration
}

// New creates a Watcher for path.
func New(path string, a *analyzer.Analyzer, onResult Handler, opts ...Option) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		fs:       afero.NewOsFs(),
		analyzer: a,
		onResult: onResult,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run analyzes the file once, then again after every write or create, until
// ctx is cancelled. It returns nil on cancellation and an error if the file
// cannot be read at start or the directory cannot be watched.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	if err := w.analyze(); err != nil {
		return err
	}
	w.logger.Info("watching for changes", "path", w.path)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stopped watching", "path", w.path)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("file changed", "path", w.path, "op", event.Op.String())

			if w.debounce <= 0 {
				w.reanalyze()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			w.reanalyze()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) analyze() error {
	res, err := w.analyzer.AnalyzeFile(w.fs, w.path)
	if err != nil {
		return err
	}
	w.onResult(res)
	return nil
}

// reanalyze tolerates read failures; the file may be mid-replace and a
// following event will pick it up.
func (w *Watcher) reanalyze() {
	if err := w.analyze(); err != nil {
		w.logger.Warn("failed to re-analyze", "path", w.path, "error", err)
	}
}
