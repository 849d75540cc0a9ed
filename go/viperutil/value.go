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
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Options configures a Value.
type Options[T any] struct {
	// Default is returned when no other source sets the key.
	Default T
	// FlagName is the pflag bound to the key by BindFlags. Empty means the
	// key has no flag.
	FlagName string
	// EnvVars are extra environment variables, checked in order, on top of
	// the prefixed name derived from the key.
	EnvVars []string
	// GetFunc builds the accessor used by Get. Types viper cannot convert on
	// its own, such as flag enums, need one.
	GetFunc func(v *viper.Viper) func(key string) T
}

// Bindable is the part of a Value that BindFlags needs.
type Bindable interface {
	Key() string
	FlagName() string
	bind(fs *pflag.FlagSet) error
}

// Value is a typed handle on one configuration key.
type Value[T any] interface {
	Bindable
	// Get resolves the current value.
	Get() T
	// Default returns the configured default.
	Default() T
	// Set overrides every other source.
	Set(v T)
}

type value[T any] struct {
	reg      *Registry
	key      string
	flagName string
	def      T
	get      func(key string) T
}

// Configure registers key in reg and returns a typed handle on it.
func Configure[T any](reg *Registry, key string, opts Options[T]) Value[T] {
	reg.v.SetDefault(key, opts.Default)
	if len(opts.EnvVars) > 0 {
		_ = reg.v.BindEnv(append([]string{key}, opts.EnvVars...)...)
	}

	getFunc := opts.GetFunc
	if getFunc == nil {
		getFunc = defaultGetFunc[T]
	}

	return &value[T]{
		reg:      reg,
		key:      key,
		flagName: opts.FlagName,
		def:      opts.Default,
		get:      getFunc(reg.v),
	}
}

func (val *value[T]) Key() string      { return val.key }
func (val *value[T]) FlagName() string { return val.flagName }
func (val *value[T]) Default() T       { return val.def }
func (val *value[T]) Get() T           { return val.get(val.key) }
func (val *value[T]) Set(v T)          { val.reg.v.Set(val.key, v) }

func (val *value[T]) bind(fs *pflag.FlagSet) error {
	if val.flagName == "" {
		return nil
	}
	f := fs.Lookup(val.flagName)
	if f == nil {
		return fmt.Errorf("flag %q for key %q is not defined", val.flagName, val.key)
	}
	return val.reg.v.BindPFlag(val.key, f)
}

// BindFlags binds each value to its flag in fs. Flags must already be
// defined; a value whose flag is missing is logged and skipped.
func BindFlags(fs *pflag.FlagSet, values ...Bindable) {
	for _, val := range values {
		if err := val.bind(fs); err != nil {
			slog.Warn("failed to bind flag", "key", val.Key(), "err", err)
		}
	}
}

// defaultGetFunc covers the types the CLI registers. Anything else is
// decoded through viper's mapstructure-backed UnmarshalKey.
func defaultGetFunc[T any](v *viper.Viper) func(key string) T {
	var zero T
	var get func(key string) any

	switch any(zero).(type) {
	case string:
		get = func(key string) any { return v.GetString(key) }
	case bool:
		get = func(key string) any { return v.GetBool(key) }
	case int:
		get = func(key string) any { return v.GetInt(key) }
	case float64:
		get = func(key string) any { return v.GetFloat64(key) }
	case []string:
		get = func(key string) any { return v.GetStringSlice(key) }
	case time.Duration:
		get = func(key string) any { return v.GetDuration(key) }
	default:
		return func(key string) (out T) {
			if err := v.UnmarshalKey(key, &out); err != nil {
				slog.Warn("failed to unmarshal config value", "key", key, "err", err)
			}
			return out
		}
	}

	return func(key string) T {
		return get(key).(T)
	}
}
