package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/app/app.routes.ts":       "export const ROUTES = [{ path: 'lazy', loadChildren: './lazy/lazy.module#LazyModule' }];\n",
		"src/app/lazy/lazy.module.ts": "export class LazyModule {}\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func TestCodegensCommand(t *testing.T) {
	out, err := execute(t, "codegens")
	require.NoError(t, err)

	assert.Contains(t, out, "async-import\n")
	assert.Contains(t, out, "async-require\n")
	assert.Contains(t, out, "sync\n")
	assert.Contains(t, out, "async-system")
	assert.Contains(t, out, "(deprecated)")
}

func TestConfigShowAppliesFlags(t *testing.T) {
	out, err := execute(t, "config", "show", "--aot", "--gen-dir", "compiled", "--loader", "sync")
	require.NoError(t, err)

	assert.Contains(t, out, "aot: true")
	assert.Contains(t, out, "genDir: compiled")
	assert.Contains(t, out, "loader: sync")
}

func TestConfigFileIsRead(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("loader: async-import\ninline: false\n"), 0644))

	out, err := execute(t, "config", "show", "--config", file)
	require.NoError(t, err)
	assert.Contains(t, out, "loader: async-import")
	assert.Contains(t, out, "inline: false")

	// flags win over the file
	out, err = execute(t, "config", "show", "--config", file, "--loader", "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "loader: sync")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routeloader.yaml")

	_, err := execute(t, "config", "init", path, "--aot")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "aot: true")

	_, err = execute(t, "config", "init", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "config", "init", path, "--force")
	require.NoError(t, err)
}

func TestTransformToStdout(t *testing.T) {
	root := writeProject(t)
	routes := filepath.Join(root, "src", "app", "app.routes.ts")

	out, err := execute(t, "transform", "--project-root", root, "--loader", "sync", routes)
	require.NoError(t, err)

	expected := "function() { return require('" + filepath.Join(root, "src", "app", "lazy", "lazy.module") + "')['LazyModule']; }"
	assert.Contains(t, out, "loadChildren: "+expected+" }")
}

func TestTransformToOutDir(t *testing.T) {
	root := writeProject(t)
	outDir := filepath.Join(t.TempDir(), "out")

	_, err := execute(t, "transform", "--quiet", "--project-root", root, "--out", outDir, filepath.Join(root, "src"))
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(outDir, "src", "app", "app.routes.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "['LazyModule']")
	assert.NotContains(t, string(content), "#LazyModule")
}

func TestTransformRejectsWriteWithOut(t *testing.T) {
	_, err := execute(t, "transform", "--write", "--out", "x", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestTransformFailureIsReported(t *testing.T) {
	root := writeProject(t)
	broken := filepath.Join(root, "src", "broken.ts")
	require.NoError(t, os.WriteFile(broken, []byte(`[{ loadChildren: './nowhere#Nowhere' }]`), 0644))

	_, err := execute(t, "transform", "--quiet", "--project-root", root, "--write", broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 files failed")
}

func TestWatchRequiresOutput(t *testing.T) {
	_, err := execute(t, "watch", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs an --out directory")

	_, err = execute(t, "watch", "--write", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not rewrite in place")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "routeloader dev")
}
