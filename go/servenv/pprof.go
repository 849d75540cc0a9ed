// Copyright 2019 The Vitess Authors.
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
//
// Modifications Copyright 2025 Supabase, Inc.

package servenv

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/multigres/sqlanalyzer/go/viperutil"
)

type profmode string

const (
	profileCPU       profmode = "cpu"
	profileMemHeap   profmode = "mem_heap"
	profileMemAllocs profmode = "mem_allocs"
	profileMutex     profmode = "mutex"
	profileBlock     profmode = "block"
	profileTrace     profmode = "trace"
	profileThreads   profmode = "threads"
	profileGoroutine profmode = "goroutine"
)

func (p profmode) filename() string {
	return fmt.Sprintf("%s.pprof", string(p))
}

type profile struct {
	mode    profmode
	rate    int
	path    string
	quiet   bool
	waitSig bool
}

// Profiler writes a runtime profile selected by the --pprof flag. Sending
// SIGUSR1 toggles the profile off and on again where signals are supported.
type Profiler struct {
	pprofFlag viperutil.Value[[]string]
	fs        afero.Fs
}

// NewProfiler registers the pprof key in reg. Profiles are written to fs.
func NewProfiler(reg *viperutil.Registry, fs afero.Fs) *Profiler {
	return &Profiler{
		pprofFlag: viperutil.Configure(reg, "pprof", viperutil.Options[[]string]{
			FlagName: "pprof",
		}),
		fs: fs,
	}
}

// RegisterFlags registers the --pprof flag.
func (p *Profiler) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringSlice("pprof", p.pprofFlag.Default(), "enable profiling: mode[,rate=N][,path=dir][,quiet][,waitSig] where mode is one of cpu, mem, mem=allocs, mutex, block, trace, threads, goroutine")
	viperutil.BindFlags(fs, p.pprofFlag)
}

// Start begins profiling as configured, or waits for SIGUSR1 when waitSig is
// set. The returned stop function flushes the profile and must be called
// before the process exits. Without --pprof, Start does nothing.
func (p *Profiler) Start() (stop func(), err error) {
	prof, err := parseProfileFlag(p.pprofFlag.Get())
	if err != nil {
		return nil, fmt.Errorf("parsing pprof flags: %w", err)
	}
	if prof == nil {
		return func() {}, nil
	}

	start, stopProfile := prof.init(p.fs)
	if !prof.waitSig {
		if err := start(); err != nil {
			return nil, err
		}
	}

	untoggle := toggleOnSignal(start, stopProfile)
	return func() {
		untoggle()
		stopProfile()
	}, nil
}

func parseProfileFlag(pf []string) (*profile, error) {
	if len(pf) == 0 {
		return nil, nil
	}

	var p profile

	switch pf[0] {
	case "cpu":
		p.mode = profileCPU
	case "mem", "mem=heap":
		p.mode = profileMemHeap
		p.rate = 4096
	case "mem=allocs":
		p.mode = profileMemAllocs
		p.rate = 4096
	case "mutex":
		p.mode = profileMutex
		p.rate = 1
	case "block":
		p.mode = profileBlock
		p.rate = 1
	case "trace":
		p.mode = profileTrace
	case "threads":
		p.mode = profileThreads
	case "goroutine":
		p.mode = profileGoroutine
	default:
		return nil, fmt.Errorf("unknown profile mode: %q", pf[0])
	}

	for _, kv := range pf[1:] {
		var err error
		fields := strings.SplitN(kv, "=", 2)

		switch fields[0] {
		case "rate":
			if len(fields) == 1 {
				return nil, fmt.Errorf("missing value for 'rate'")
			}
			p.rate, err = strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("invalid profile rate %q: %w", fields[1], err)
			}

		case "path":
			if len(fields) == 1 {
				return nil, fmt.Errorf("missing value for 'path'")
			}
			p.path = fields[1]

		case "quiet":
			if len(fields) == 1 {
				p.quiet = true
				continue
			}

			p.quiet, err = strconv.ParseBool(fields[1])
			if err != nil {
				return nil, fmt.Errorf("invalid quiet flag %q: %w", fields[1], err)
			}
		case "waitSig":
			if len(fields) == 1 {
				p.waitSig = true
				continue
			}
			p.waitSig, err = strconv.ParseBool(fields[1])
			if err != nil {
				return nil, fmt.Errorf("invalid waitSig flag %q: %w", fields[1], err)
			}
		default:
			return nil, fmt.Errorf("unknown flag: %q", fields[0])
		}
	}

	return &p, nil
}

// Runtime profiling is process-wide, so only one profile may run at a time.
var profileStarted uint32

func isProfileStarted() bool {
	return atomic.LoadUint32(&profileStarted) == 1
}

func startCallback(start func() error) func() error {
	return func() error {
		if atomic.CompareAndSwapUint32(&profileStarted, 0, 1) {
			if err := start(); err != nil {
				atomic.StoreUint32(&profileStarted, 0)
				return err
			}
			return nil
		}
		return fmt.Errorf("profile: Start() already called")
	}
}

func stopCallback(stop func()) func() {
	return func() {
		if atomic.CompareAndSwapUint32(&profileStarted, 1, 0) {
			stop()
		}
	}
}

func (prof *profile) mkprofile(fs afero.Fs) (io.WriteCloser, error) {
	var (
		path string
		err  error
	)

	if prof.path != "" {
		path = prof.path
		err = fs.MkdirAll(path, 0o777)
	} else {
		path, err = afero.TempDir(fs, "", "profile")
	}
	if err != nil {
		return nil, fmt.Errorf("pprof: could not create output directory: %w", err)
	}

	fn := filepath.Join(path, prof.mode.filename())
	f, err := fs.Create(fn)
	if err != nil {
		return nil, fmt.Errorf("pprof: could not create profile %q: %w", fn, err)
	}
	if !prof.quiet {
		slog.Info("pprof: profiling enabled", "mode", string(prof.mode), "file", fn)
	}

	return f, nil
}

// init returns a start function that begins the configured profiling process and
// returns a cleanup function that must be executed before process termination to
// flush the profile to disk.
// Based on the profiling code in github.com/pkg/profile
func (prof *profile) init(fs afero.Fs) (start func() error, stop func()) {
	var pf io.WriteCloser

	// lookupStop writes the named runtime profile on stop.
	lookupStop := func(name string, reset func()) func() {
		return stopCallback(func() {
			if mp := pprof.Lookup(name); mp != nil {
				if err := mp.WriteTo(pf, 0); err != nil {
					slog.Error("pprof: could not write profile", "profile", name, "err", err)
				}
			}
			pf.Close()
			if reset != nil {
				reset()
			}
		})
	}

	switch prof.mode {
	case profileCPU:
		start = startCallback(func() error {
			var err error
			pf, err = prof.mkprofile(fs)
			if err != nil {
				return err
			}
			if err := pprof.StartCPUProfile(pf); err != nil {
				pf.Close()
				return fmt.Errorf("pprof: could not start CPU profile: %w", err)
			}
			return nil
		})
		stop = stopCallback(func() {
			pprof.StopCPUProfile()
			pf.Close()
		})
		return start, stop

	case profileMemHeap, profileMemAllocs:
		old := runtime.MemProfileRate
		start = startCallback(func() error {
			var err error
			pf, err = prof.mkprofile(fs)
			if err != nil {
				return err
			}
			runtime.MemProfileRate = prof.rate
			return nil
		})
		name := "heap"
		if prof.mode == profileMemAllocs {
			name = "allocs"
		}
		return start, lookupStop(name, func() { runtime.MemProfileRate = old })

	case profileMutex:
		start = startCallback(func() error {
			var err error
			pf, err = prof.mkprofile(fs)
			if err != nil {
				return err
			}
			runtime.SetMutexProfileFraction(prof.rate)
			return nil
		})
		return start, lookupStop("mutex", func() { runtime.SetMutexProfileFraction(0) })

	case profileBlock:
		start = startCallback(func() error {
			var err error
			pf, err = prof.mkprofile(fs)
			if err != nil {
				return err
			}
			runtime.SetBlockProfileRate(prof.rate)
			return nil
		})
		return start, lookupStop("block", func() { runtime.SetBlockProfileRate(0) })

	case profileThreads, profileGoroutine:
		start = startCallback(func() error {
			var err error
			pf, err = prof.mkprofile(fs)
			return err
		})
		name := "goroutine"
		if prof.mode == profileThreads {
			name = "threadcreate"
		}
		return start, lookupStop(name, nil)

	case profileTrace:
		start = startCallback(func() error {
			var err error
			pf, err = prof.mkprofile(fs)
			if err != nil {
				return err
			}
			if err := trace.Start(pf); err != nil {
				pf.Close()
				return fmt.Errorf("pprof: could not start trace: %w", err)
			}
			return nil
		})
		stop = stopCallback(func() {
			trace.Stop()
			pf.Close()
		})
		return start, stop

	default:
		panic("unsupported profile mode")
	}
}
