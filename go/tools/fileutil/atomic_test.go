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

package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteFile(t *testing.T) {
	t.Run("creates and replaces", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/out", 0o755))

		require.NoError(t, AtomicWriteFile(fs, "/out/report.json", []byte("first"), 0o600))
		require.NoError(t, AtomicWriteFile(fs, "/out/report.json", []byte("second"), 0o644))

		data, err := afero.ReadFile(fs, "/out/report.json")
		require.NoError(t, err)
		assert.Equal(t, "second", string(data))

		info, err := fs.Stat("/out/report.json")
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

		entries, err := afero.ReadDir(fs, "/out")
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temp file must not be left behind")
	})

	t.Run("on disk", func(t *testing.T) {
		fs := afero.NewOsFs()
		path := filepath.Join(t.TempDir(), "report.txt")

		require.NoError(t, AtomicWriteFile(fs, path, []byte("ok"), 0o644))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "ok", string(data))
	})

	t.Run("read-only filesystem", func(t *testing.T) {
		fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

		err := AtomicWriteFile(fs, "/report.txt", []byte("x"), 0o644)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create temp file")
	})
}
