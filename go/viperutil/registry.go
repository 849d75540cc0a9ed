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

package viperutil

import (
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key when it is looked up in
// the environment, so "analyze.format" is read from SQLA_ANALYZE_FORMAT.
const EnvPrefix = "SQLA"

// Registry holds the viper instance backing a command's configuration.
// Each command builds its own, so tests never share state through globals.
//
// Values read from a Registry resolve in viper's usual order: explicit Set,
// flag, environment, config file, default.
type Registry struct {
	v  *viper.Viper
	fs afero.Fs
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithFs makes the registry read config files from fs instead of the OS.
func WithFs(fs afero.Fs) RegistryOption {
	return func(reg *Registry) {
		reg.fs = fs
	}
}

// NewRegistry creates a new isolated configuration registry.
//
// Example usage:
//
//	reg := viperutil.NewRegistry()
//	format := viperutil.Configure(reg, "analyze.format", viperutil.Options[string]{
//	    Default:  "text",
//	    FlagName: "format",
//	})
func NewRegistry(opts ...RegistryOption) *Registry {
	reg := &Registry{
		v:  viper.New(),
		fs: afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(reg)
	}

	reg.v.SetFs(reg.fs)
	reg.v.SetEnvPrefix(EnvPrefix)
	reg.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	reg.v.AutomaticEnv()
	return reg
}

// Settings returns every resolved key as a nested map.
func (reg *Registry) Settings() map[string]any {
	return reg.v.AllSettings()
}

// ConfigFileUsed returns the path of the config file that was read, if any.
func (reg *Registry) ConfigFileUsed() string {
	return reg.v.ConfigFileUsed()
}
