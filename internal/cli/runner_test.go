package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/routeloader/internal/config"
	"github.com/toyz/routeloader/internal/errors"
	"github.com/toyz/routeloader/internal/utils"
	"github.com/toyz/routeloader/pkg/routeloader"
)

const appRoutes = `export const ROUTES = [
  { path: 'lazy', loadChildren: './lazy/lazy.module#LazyModule?loader=sync' },
];
`

const syncReplacement = "function() { return require('/project/src/app/lazy/lazy.module')['LazyModule']; }"

type runnerFixture struct {
	fs     afero.Fs
	runner *Runner
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	out    *bytes.Buffer
}

func newRunnerFixture(t *testing.T, cfg config.Config, opts RunOptions) *runnerFixture {
	t.Helper()

	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/project/src/app/app.routes.ts":          appRoutes,
		"/project/src/app/lazy/lazy.module.ts":    "export class LazyModule {}\n",
		"/project/src/app/home/home.component.ts": "export class HomeComponent {}\n",
		"/project/src/app/app.d.ts":               "declare const x: { loadChildren: './nope#Nope' };\n",
	}
	for path, content := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}

	engine, err := routeloader.New(routeloader.WithConfig(cfg), routeloader.WithFs(fs))
	require.NoError(t, err)

	diagnostics := utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	var out, errOut bytes.Buffer
	diagnostics.SetOutput(&out, &errOut)
	diagnostics.SetShowTime(false)

	reporter, stderr := newBufferedReporter(false)

	runner := NewRunner(engine, fs, diagnostics, reporter, opts)
	var stdout bytes.Buffer
	runner.SetStdout(&stdout)

	return &runnerFixture{fs: fs, runner: runner, stdout: &stdout, stderr: stderr, out: &out}
}

func projectConfig() config.Config {
	cfg := config.Default()
	cfg.ProjectRoot = "/project"
	return cfg
}

func TestRunnerWritesInPlace(t *testing.T) {
	f := newRunnerFixture(t, projectConfig(), RunOptions{Write: true})

	summary, err := f.runner.Run(context.Background(), []string{"/project/src"})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.FilesScanned)
	assert.Equal(t, 1, summary.FilesChanged)
	assert.Equal(t, 1, summary.RoutesRewritten)
	assert.Empty(t, summary.Failed)

	got, err := afero.ReadFile(f.fs, "/project/src/app/app.routes.ts")
	require.NoError(t, err)
	assert.Contains(t, string(got), "loadChildren: "+syncReplacement+" }")

	untouched, err := afero.ReadFile(f.fs, "/project/src/app/home/home.component.ts")
	require.NoError(t, err)
	assert.Equal(t, "export class HomeComponent {}\n", string(untouched))
	assert.Empty(t, f.stdout.String())
}

func TestRunnerMirrorsIntoOutDir(t *testing.T) {
	f := newRunnerFixture(t, projectConfig(), RunOptions{OutDir: "/out", Root: "/project"})

	_, err := f.runner.Run(context.Background(), []string{"/project/src/app/app.routes.ts"})
	require.NoError(t, err)

	got, err := afero.ReadFile(f.fs, "/out/src/app/app.routes.ts")
	require.NoError(t, err)
	assert.Contains(t, string(got), syncReplacement)

	original, err := afero.ReadFile(f.fs, "/project/src/app/app.routes.ts")
	require.NoError(t, err)
	assert.Equal(t, appRoutes, string(original))
}

func TestRunnerPrintsToStdout(t *testing.T) {
	f := newRunnerFixture(t, projectConfig(), RunOptions{})

	result, err := f.runner.TransformFile(context.Background(), "/project/src/app/app.routes.ts")
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, string(result.Source), f.stdout.String())
}

func TestRunnerReportsFailuresAndContinues(t *testing.T) {
	f := newRunnerFixture(t, projectConfig(), RunOptions{Write: true})
	require.NoError(t, afero.WriteFile(f.fs, "/project/src/app/broken.routes.ts",
		[]byte(`[{ loadChildren: './missing#Missing' }]`), 0644))

	summary, err := f.runner.Run(context.Background(), []string{"/project/src"})
	require.Error(t, err)
	assert.Equal(t, []string{"/project/src/app/broken.routes.ts"}, summary.Failed)
	assert.Equal(t, 1, summary.FilesChanged)

	var failures *errors.MultipleErrors
	require.ErrorAs(t, err, &failures)
	assert.Equal(t, 1, failures.Count())
	assert.True(t, failures.HasCode(errors.ResolutionErrorCode))
	assert.Equal(t, "/project/src/app/broken.routes.ts", failures.Errors[0].Location().File)
	assert.Contains(t, err.Error(), "/project/src/app/broken.routes.ts")

	assert.Contains(t, f.stderr.String(), "File: /project/src/app/broken.routes.ts")
	assert.Contains(t, f.stderr.String(), "Type: Module Resolution Error")
}

func TestRunnerStdoutHeadersPerFile(t *testing.T) {
	f := newRunnerFixture(t, projectConfig(), RunOptions{})
	require.NoError(t, afero.WriteFile(f.fs, "/project/src/app/other.routes.ts",
		[]byte(`[{ loadChildren: './lazy/lazy.module#LazyModule?loader=sync' }]`), 0644))

	summary, err := f.runner.Run(context.Background(), []string{"/project/src"})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.FilesChanged)

	out := f.stdout.String()
	assert.Contains(t, out, "// /project/src/app/app.routes.ts\n")
	assert.Contains(t, out, "// /project/src/app/other.routes.ts\n")
	assert.Equal(t, 2, strings.Count(out, syncReplacement))
	assert.NotContains(t, out, "HomeComponent")
	assert.NotContains(t, out, "// /project/src/app/home/home.component.ts")
}

func TestRunnerDebugBannerAndWarningsOnce(t *testing.T) {
	cfg := projectConfig()
	debug := true
	cfg.Debug = &debug
	cfg.Loader = "async-system"
	f := newRunnerFixture(t, cfg, RunOptions{Write: true})

	require.NoError(t, afero.WriteFile(f.fs, "/project/src/app/other.routes.ts",
		[]byte(`[{ loadChildren: './lazy/lazy.module#LazyModule' }]`), 0644))

	_, err := f.runner.Run(context.Background(), []string{"/project/src"})
	require.NoError(t, err)

	assert.Contains(t, f.out.String(), "Importer:    /project/src/app/app.routes.ts")
	assert.Contains(t, f.out.String(), "Importer:    /project/src/app/other.routes.ts")
	assert.Equal(t, 1, bytes.Count(f.stderr.Bytes(), []byte("! ")))
}

func TestSummaryStats(t *testing.T) {
	s := Summary{FilesScanned: 4, FilesChanged: 2, RoutesRewritten: 3, Failed: []string{"a.ts"}}
	stats := s.Stats()

	assert.Equal(t, 4, stats["Files scanned"])
	assert.Equal(t, 2, stats["Files changed"])
	assert.Equal(t, 3, stats["Routes rewritten"])
	assert.Equal(t, 1, stats["Files failed"])
}
