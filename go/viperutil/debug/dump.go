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

// Package debug renders the effective configuration of a command.
package debug

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/multigres/sqlanalyzer/go/viperutil"
)

// Snapshot is the dumped configuration.
type Snapshot struct {
	ConfigFile string            `json:"config_file" yaml:"config_file" toml:"config_file"`
	Flags      map[string]string `json:"command_line_flags" yaml:"command_line_flags" toml:"command_line_flags"`
	Settings   map[string]any    `json:"settings" yaml:"settings" toml:"settings"`
}

// Collect gathers the resolved settings of reg and the flags of fs that were
// set on the command line. fs may be nil.
func Collect(reg *viperutil.Registry, fs *pflag.FlagSet) Snapshot {
	snap := Snapshot{
		ConfigFile: reg.ConfigFileUsed(),
		Flags:      make(map[string]string),
		Settings:   emptyNilSlices(reg.Settings()),
	}
	if fs != nil {
		fs.VisitAll(func(flag *pflag.Flag) {
			if flag.Changed {
				snap.Flags[flag.Name] = flag.Value.String()
			}
		})
	}
	return snap
}

// Write renders the snapshot as "json", "yaml", "toml" or, for "text" and
// the empty format, sorted key=value lines.
func Write(w io.Writer, snap Snapshot, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		lines := flatten("", snap.Settings)
		sort.Strings(lines)
		if snap.ConfigFile != "" {
			lines = append([]string{"# config file: " + snap.ConfigFile}, lines...)
		}
		_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
		return err
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(snap); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case "yaml":
		if err := yaml.NewEncoder(w).Encode(snap); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return nil
	case "toml":
		if err := toml.NewEncoder(w).Encode(snap); err != nil {
			return fmt.Errorf("failed to encode TOML: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported config format %q", format)
	}
}

// emptyNilSlices replaces nil slices with empty ones, recursing into nested
// maps. The TOML encoder omits nil values, which would hide keys the other
// formats print.
func emptyNilSlices(m map[string]any) map[string]any {
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			m[k] = emptyNilSlices(nested)
			continue
		}
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice && rv.IsNil() {
			m[k] = reflect.MakeSlice(rv.Type(), 0, 0).Interface()
		}
	}
	return m
}

func flatten(prefix string, m map[string]any) []string {
	var out []string
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			out = append(out, flatten(key, nested)...)
			continue
		}
		out = append(out, fmt.Sprintf("%s=%v", key, v))
	}
	return out
}
