package utils

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceTree(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range []string{
		"/project/src/app/app.routes.ts",
		"/project/src/app/app.component.tsx",
		"/project/src/app/legacy.js",
		"/project/src/app/typings.d.ts",
		"/project/src/app/styles.css",
		"/project/src/app/lazy/lazy.module.ts",
		"/project/node_modules/lib/index.js",
		"/project/dist/main.js",
		"/project/.cache/x.ts",
	} {
		require.NoError(t, fs.MkdirAll(filepath.Dir(f), 0755))
		require.NoError(t, afero.WriteFile(fs, f, []byte(""), 0644))
	}
	return fs
}

func TestCollectSources(t *testing.T) {
	fp := NewFileProcessor(sourceTree(t))

	files, err := fp.CollectSources([]string{"/project"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/project/src/app/app.component.tsx",
		"/project/src/app/app.routes.ts",
		"/project/src/app/lazy/lazy.module.ts",
		"/project/src/app/legacy.js",
	}, files)
}

func TestCollectSourcesExplicitFilesAndDuplicates(t *testing.T) {
	fp := NewFileProcessor(sourceTree(t))

	files, err := fp.CollectSources([]string{
		"/project/src/app/lazy/...",
		"/project/src/app/lazy/lazy.module.ts",
		"/project/src/app/styles.css",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/project/src/app/lazy/lazy.module.ts",
		"/project/src/app/styles.css",
	}, files)

	_, err = fp.CollectSources([]string{"/project/missing"})
	assert.Error(t, err)
}

func TestWalkFilesWithoutFilters(t *testing.T) {
	fp := NewFileProcessor(sourceTree(t))

	files, err := fp.WalkFiles("/project/dist", FileWalkOptions{DirectoryFilter: DefaultDirectoryFilter()})
	require.NoError(t, err)
	assert.Equal(t, []string{"/project/dist/main.js"}, files)
}
