// Package routeloader rewrites string based lazy route declarations
// (loadChildren: './path#Symbol') into code that loads the module.
//
// An Engine is built once per set of options and is safe for concurrent use:
//
//	engine, err := routeloader.New(routeloader.WithConfig(cfg))
//	if err != nil {
//		return err
//	}
//	result, err := engine.Transform(ctx, "/project/src/app/app.routes.ts", source)
package routeloader

import (
	"context"
	"log/slog"
	"sort"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/toyz/routeloader/internal/codegen"
	"github.com/toyz/routeloader/internal/config"
	"github.com/toyz/routeloader/internal/errors"
	"github.com/toyz/routeloader/internal/extract"
	"github.com/toyz/routeloader/internal/resolve"
	"github.com/toyz/routeloader/internal/route"
)

// Engine rewrites lazy route declarations
type Engine struct {
	cfg         config.Config
	registry    *codegen.Registry
	modules     resolve.ModuleResolver
	moduleRoots []string
	fs          afero.Fs
	extractor   extract.Extractor
	logger      *slog.Logger
	hostDebug   bool
	maxDepth    int

	resolver *resolve.Resolver
	tracker  *resolve.SymbolTracker
}

// New builds an Engine. The configuration is validated once here.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:       config.Default(),
		registry:  codegen.NewRegistry(),
		fs:        afero.NewOsFs(),
		extractor: extract.NewScanExtractor(),
		logger:    slog.New(slog.DiscardHandler),
		maxDepth:  resolve.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	root, err := e.cfg.Root()
	if err != nil {
		return nil, err
	}

	if e.modules == nil {
		roots := e.moduleRoots
		if len(roots) == 0 {
			roots = resolve.DefaultRoots(root)
		}
		e.modules = resolve.NewNodeResolver(e.fs, roots...)
	}

	mapper := resolve.TreeMapper{Root: root, GenDir: e.cfg.GenDir}
	if err := mapper.Validate(); err != nil {
		return nil, err
	}
	if e.cfg.AOT {
		e.tracker = resolve.NewSymbolTracker(e.fs, mapper, e.cfg.ModuleSuffix,
			resolve.WithMaxDepth(e.maxDepth),
			resolve.WithTrackerLogger(e.logger))
	}
	e.resolver = resolve.NewResolver(e.cfg, mapper, e.modules, e.tracker)

	e.logger.Debug("routeloader engine ready",
		slog.String("root", root),
		slog.Bool("aot", e.cfg.AOT),
		slog.String("gen_dir", e.cfg.GenDir),
		slog.String("loader", e.cfg.Loader))

	return e, nil
}

// Config returns the engine's options
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Registry returns the code generator registry
func (e *Engine) Registry() *codegen.Registry {
	return e.registry
}

// RegisterCodeGen makes a custom generator available to routes
func (e *Engine) RegisterCodeGen(name string, def codegen.Definition) error {
	return e.registry.Register(name, def)
}

// Transform rewrites every lazy route declaration in source, the content of
// the file at resourcePath. Declarations are resolved concurrently; the
// first failure aborts the whole transform and no partial source is returned.
func (e *Engine) Transform(ctx context.Context, resourcePath string, source []byte) (*Result, error) {
	matches, err := e.extractor.Extract(ctx, resourcePath, source)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return &Result{Source: source}, nil
	}

	routes := make([]ReplaceResult, len(matches))
	deprecations := make([]string, len(matches))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range matches {
		g.Go(func() error {
			r, deprecation, err := e.replace(gctx, resourcePath, m)
			if err != nil {
				return err
			}
			routes[i] = r
			deprecations[i] = deprecation
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.Debug("transform failed",
			slog.String("file", resourcePath),
			slog.String("error", err.Error()))
		return nil, err
	}

	if e.tracker != nil {
		stats := e.tracker.CacheStats()
		e.logger.Debug("summary cache",
			slog.String("file", resourcePath),
			slog.Int("size", stats.Size),
			slog.Int("hits", stats.Hits),
			slog.Int("misses", stats.Misses))
	}

	return &Result{
		Source:   substitute(source, routes),
		Changed:  true,
		Routes:   routes,
		Warnings: uniqueWarnings(deprecations),
	}, nil
}

func (e *Engine) replace(ctx context.Context, resourcePath string, m extract.Match) (ReplaceResult, string, error) {
	d, err := route.Parse(m.Destination, resourcePath, e.cfg)
	if err != nil {
		return ReplaceResult{}, "", err
	}

	loader := d.Options.EffectiveLoader(e.cfg)
	def, err := e.registry.Lookup(loader)
	if err != nil {
		return ReplaceResult{}, "", err
	}

	resolved, err := e.resolver.Resolve(ctx, d, resourcePath)
	if err != nil {
		return ReplaceResult{}, "", err
	}

	code, err := def.Generate(codegen.Request{
		File:    resolved.FilePath,
		Symbol:  resolved.ModuleName,
		Config:  e.cfg,
		Options: d.Options,
	})
	if err != nil {
		return ReplaceResult{}, "", errors.WrapGenerationError(loader, err)
	}

	e.logger.Debug("lazy route resolved",
		slog.String("file", resourcePath),
		slog.Int("line", m.Line),
		slog.String("destination", m.Destination),
		slog.String("module", resolved.FilePath),
		slog.String("symbol", resolved.ModuleName),
		slog.String("loader", loader))

	return ReplaceResult{
		Match:       m,
		Replacement: code,
		Loader:      loader,
		FilePath:    resolved.FilePath,
		ModuleName:  resolved.ModuleName,
		Options:     d.Options,
		Debug:       e.cfg.DebugEnabled(e.hostDebug),
		Line:        m.Line,
		Column:      m.Column,
	}, def.Deprecation, nil
}

// substitute replaces every value span, last span first so earlier offsets
// stay valid
func substitute(source []byte, routes []ReplaceResult) []byte {
	order := make([]int, len(routes))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return routes[order[a]].Match.ValueStart > routes[order[b]].Match.ValueStart
	})

	out := append([]byte(nil), source...)
	for _, i := range order {
		m := routes[i].Match
		tail := append([]byte(routes[i].Replacement), out[m.ValueEnd:]...)
		out = append(out[:m.ValueStart], tail...)
	}
	return out
}

func uniqueWarnings(notices []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, n := range notices {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
