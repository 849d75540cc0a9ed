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

package report

import (
	"fmt"
	"sort"
	"strings"
)

// Format selects how a result is encoded.
type Format int

const (
	// FormatText renders human-readable sections and tables.
	FormatText Format = iota
	// FormatJSON encodes the result as indented JSON.
	FormatJSON
	// FormatYAML encodes the result as YAML.
	FormatYAML
	// FormatTOML encodes the result as TOML.
	FormatTOML
)

var (
	formatNames         []string
	formatNamesToValues = map[string]Format{
		"text": FormatText,
		"json": FormatJSON,
		"yaml": FormatYAML,
		"toml": FormatTOML,
	}
	formatValuesToNames map[Format]string
)

func init() {
	formatNames = make([]string, 0, len(formatNamesToValues))
	formatValuesToNames = make(map[Format]string, len(formatNamesToValues))

	for name, val := range formatNamesToValues {
		formatValuesToNames[val] = name
		formatNames = append(formatNames, name)
	}
	sort.Strings(formatNames)
}

// FormatNames returns the accepted format names, sorted.
func FormatNames() []string {
	out := make([]string, len(formatNames))
	copy(out, formatNames)
	return out
}

// ParseFormat converts a name such as "json" into a Format.
func ParseFormat(name string) (Format, error) {
	var f Format
	err := f.Set(name)
	return f, err
}

// Set implements pflag.Value.
func (f *Format) Set(arg string) error {
	if v, ok := formatNamesToValues[strings.ToLower(arg)]; ok {
		*f = v
		return nil
	}
	return fmt.Errorf("unknown format %q (options: %s)", arg, strings.Join(formatNames, ", "))
}

// String implements pflag.Value.
func (f *Format) String() string {
	if name, ok := formatValuesToNames[*f]; ok {
		return name
	}
	return "<UNKNOWN>"
}

// Type implements pflag.Value.
func (f *Format) Type() string { return "format" }
