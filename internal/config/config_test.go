package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/routeloader/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "#", cfg.Delimiter)
	assert.False(t, cfg.AOT)
	assert.Equal(t, ".ngfactory", cfg.ModuleSuffix)
	assert.Equal(t, "NgFactory", cfg.FactorySuffix)
	assert.Equal(t, "async-require", cfg.Loader)
	assert.Equal(t, "", cfg.GenDir)
	assert.True(t, cfg.Inline)
	assert.True(t, cfg.BySymbol)
	assert.Nil(t, cfg.Debug)
	assert.NoError(t, cfg.Validate())
}

func TestFromQuery(t *testing.T) {
	t.Run("empty query loads defaults", func(t *testing.T) {
		cfg, err := FromQuery("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("supplied options override defaults", func(t *testing.T) {
		cfg, err := FromQuery("?delimiter=!&aot=true&moduleSuffix=test&genDir=compiled&-inline&debug=true")
		require.NoError(t, err)

		assert.Equal(t, "!", cfg.Delimiter)
		assert.True(t, cfg.AOT)
		assert.Equal(t, "test", cfg.ModuleSuffix)
		assert.Equal(t, DefaultFactorySuffix, cfg.FactorySuffix)
		assert.Equal(t, "compiled", cfg.GenDir)
		assert.False(t, cfg.Inline)
		require.NotNil(t, cfg.Debug)
		assert.True(t, *cfg.Debug)
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		cfg, err := FromQuery("whatever=1")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("bad boolean", func(t *testing.T) {
		_, err := FromQuery("aot=yes please")
		require.Error(t, err)
		assert.Equal(t, errors.ConfigurationErrorCode, errors.CodeOf(err))
	})

	t.Run("empty delimiter", func(t *testing.T) {
		_, err := FromQuery("delimiter=")
		require.Error(t, err)

		var cfgErr *errors.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, KeyDelimiter, cfgErr.Key)
	})
}

func TestDebugEnabled(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.DebugEnabled(true))
	assert.False(t, cfg.DebugEnabled(false))

	off := false
	cfg.Debug = &off
	assert.False(t, cfg.DebugEnabled(true))
}

func TestRoot(t *testing.T) {
	cfg := Default()
	wd, err := os.Getwd()
	require.NoError(t, err)

	root, err := cfg.Root()
	require.NoError(t, err)
	assert.Equal(t, wd, root)

	cfg.ProjectRoot = "project"
	root, err = cfg.Root()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "project"), root)
}

func TestLoadFromViper(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "routeloader.yaml")
	require.NoError(t, os.WriteFile(file, []byte("aot: true\ngenDir: codegen\nloader: sync\ndebug: false\n"), 0644))

	v := NewViper(file)
	require.NoError(t, ReadFile(v))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.True(t, cfg.AOT)
	assert.Equal(t, "codegen", cfg.GenDir)
	assert.Equal(t, "sync", cfg.Loader)
	assert.Equal(t, DefaultDelimiter, cfg.Delimiter)
	assert.True(t, cfg.BySymbol)
	require.NotNil(t, cfg.Debug)
	assert.False(t, *cfg.Debug)
}

func TestReadFileMissingIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	v := NewViper("")
	require.NoError(t, ReadFile(v))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultLoader, cfg.Loader)
	assert.Nil(t, cfg.Debug)
}

func TestMarshalRoundTrip(t *testing.T) {
	out, err := Default().Marshal()
	require.NoError(t, err)

	assert.Contains(t, string(out), "delimiter: '#'")
	assert.Contains(t, string(out), "loader: async-require")
	assert.NotContains(t, string(out), "debug")
}
