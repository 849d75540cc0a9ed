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
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigHandlingValue(t *testing.T) {
	v := viper.New()
	v.SetDefault("default", ExitOnConfigFileNotFound)
	v.SetConfigType("yaml")

	cfg := `
foo: 2
bar: "2" # not valid, defaults to "ignore" (0)
baz: error
duration: 10h
`
	err := v.ReadConfig(strings.NewReader(cfg))
	require.NoError(t, err)

	getHandlingValueFunc := getHandlingValue(v)
	assert.Equal(t, ErrorOnConfigFileNotFound, getHandlingValueFunc("foo"), "failed to get int value")
	assert.Equal(t, IgnoreConfigFileNotFound, getHandlingValueFunc("bar"), "failed to get int-like string value")
	assert.Equal(t, ErrorOnConfigFileNotFound, getHandlingValueFunc("baz"), "failed to get string value")
	assert.Equal(t, IgnoreConfigFileNotFound, getHandlingValueFunc("notset"), "failed to get value on unset key")
	assert.Equal(t, IgnoreConfigFileNotFound, getHandlingValueFunc("duration"), "failed to get value on duration key")
	assert.Equal(t, ExitOnConfigFileNotFound, getHandlingValueFunc("default"), "failed to get value on default key")
}

func TestConfigFileNotFoundHandlingFlag(t *testing.T) {
	var h ConfigFileNotFoundHandling
	require.NoError(t, h.Set("ERROR"))
	assert.Equal(t, ErrorOnConfigFileNotFound, h)
	assert.Equal(t, "error", h.String())
	assert.Error(t, h.Set("panic"))

	bogus := ConfigFileNotFoundHandling(9)
	assert.Equal(t, "<UNKNOWN>", bogus.String())
	assert.Equal(t, []string{"error", "exit", "ignore", "warn"}, handlingNames)
}

// TestLoadConfig tests that LoadConfig behaves in the way expected when the config file doesn't exist.
func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		handling ConfigFileNotFoundHandling
		wantErr  bool
	}{
		{name: "ignore missing file", file: "notfound.yaml", handling: IgnoreConfigFileNotFound},
		{name: "ignore missing name", handling: IgnoreConfigFileNotFound},
		{name: "warn missing file", file: "notfound.yaml", handling: WarnOnConfigFileNotFound},
		{name: "warn missing name", handling: WarnOnConfigFileNotFound},
		{name: "error missing file", file: "notfound.yaml", handling: ErrorOnConfigFileNotFound, wantErr: true},
		{name: "error missing name", handling: ErrorOnConfigFileNotFound, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry(WithFs(afero.NewMemMapFs()))
			vc := NewViperConfig(reg)
			vc.configFile.Set(tt.file)
			vc.configName.Set("notfound")
			vc.configFileNotFoundHandling.Set(tt.handling)

			err := vc.LoadConfig(reg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrConfigFileNotFound))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/sqla/sqlanalyzer.yaml", []byte("analyze:\n  buckets: 64\n  format: json\n"), 0o644))

	t.Run("by path and name", func(t *testing.T) {
		reg := NewRegistry(WithFs(fs))
		vc := NewViperConfig(reg)
		vc.configPaths.Set([]string{"/missing", "/etc/sqla"})
		buckets := Configure(reg, "analyze.buckets", Options[int]{Default: 1024})

		require.NoError(t, vc.LoadConfig(reg))
		assert.Equal(t, 64, buckets.Get())
		assert.Equal(t, 1024, buckets.Default())
		assert.Equal(t, "/etc/sqla/sqlanalyzer.yaml", reg.ConfigFileUsed())
	})

	t.Run("explicit file", func(t *testing.T) {
		reg := NewRegistry(WithFs(fs))
		vc := NewViperConfig(reg)
		vc.configFile.Set("/etc/sqla/sqlanalyzer.yaml")
		format := Configure(reg, "analyze.format", Options[string]{Default: "text"})

		require.NoError(t, vc.LoadConfig(reg))
		assert.Equal(t, "json", format.Get())
	})

	t.Run("malformed file", func(t *testing.T) {
		bad := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(bad, "/bad.yaml", []byte("analyze: [unterminated\n"), 0o644))

		reg := NewRegistry(WithFs(bad))
		vc := NewViperConfig(reg)
		vc.configFile.Set("/bad.yaml")
		vc.configFileNotFoundHandling.Set(IgnoreConfigFileNotFound)

		err := vc.LoadConfig(reg)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrConfigFileNotFound))
	})
}

func TestRegisterFlags(t *testing.T) {
	reg := NewRegistry(WithFs(afero.NewMemMapFs()))
	vc := NewViperConfig(reg)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	vc.RegisterFlags(fs)

	require.NoError(t, fs.Parse([]string{"--config-file-not-found-handling=error", "--config-name=other"}))
	assert.Equal(t, ErrorOnConfigFileNotFound, vc.configFileNotFoundHandling.Get())
	assert.Equal(t, "other", vc.configName.Get())

	err := vc.LoadConfig(reg)
	assert.True(t, errors.Is(err, ErrConfigFileNotFound))
}
