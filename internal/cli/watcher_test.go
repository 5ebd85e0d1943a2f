package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/routeloader/internal/config"
	"github.com/toyz/routeloader/internal/utils"
	"github.com/toyz/routeloader/pkg/routeloader"
)

func TestWatcherTransformsChangedFiles(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	outDir := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "lazy"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "lazy", "lazy.module.ts"), []byte("export class LazyModule {}\n"), 0644))

	cfg := config.Default()
	cfg.ProjectRoot = root
	cfg.Loader = "sync"
	engine, err := routeloader.New(routeloader.WithConfig(cfg))
	require.NoError(t, err)

	diagnostics := utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	var out, errOut bytes.Buffer
	diagnostics.SetOutput(&out, &errOut)

	reporter, _ := newBufferedReporter(false)
	runner := NewRunner(engine, afero.NewOsFs(), diagnostics, reporter, RunOptions{OutDir: outDir, Root: root})
	watcher := NewWatcher(runner, diagnostics, 20*time.Millisecond, outDir)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Watch(ctx, []string{src}) }()

	select {
	case <-watcher.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not start")
	}

	routes := filepath.Join(src, "app.routes.ts")
	require.NoError(t, os.WriteFile(routes, []byte(`[{ loadChildren: './lazy/lazy.module#LazyModule' }]`), 0644))

	target := filepath.Join(outDir, "src", "app.routes.ts")
	assert.Eventually(t, func() bool {
		got, err := os.ReadFile(target)
		return err == nil && strings.Contains(string(got), "['LazyModule']")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherIgnored(t *testing.T) {
	w := NewWatcher(nil, utils.NewQuietDiagnostics(), 0, "/project/out", "")

	assert.Equal(t, DefaultDebounce, w.debounce)
	assert.True(t, w.ignored("/project/out"))
	assert.True(t, w.ignored("/project/out/src/a.ts"))
	assert.False(t, w.ignored("/project/outside/a.ts"))
	assert.False(t, w.ignored("/project/src/a.ts"))
}
