// Package resolve turns parsed route descriptors into the generated module
// path and export name the code generators reference.
package resolve

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/toyz/routeloader/internal/config"
	"github.com/toyz/routeloader/internal/errors"
	"github.com/toyz/routeloader/internal/route"
)

// Resolved is the final module reference for one route
type Resolved struct {
	FilePath   string // extension-less module path, escaped for embedding
	ModuleName string // exported symbol
}

// Resolver resolves route descriptors
type Resolver struct {
	cfg     config.Config
	mapper  TreeMapper
	modules ModuleResolver
	tracker *SymbolTracker
}

// NewResolver creates a Resolver. tracker may be nil when AOT is off.
func NewResolver(cfg config.Config, mapper TreeMapper, modules ModuleResolver, tracker *SymbolTracker) *Resolver {
	return &Resolver{
		cfg:     cfg,
		mapper:  mapper,
		modules: modules,
		tracker: tracker,
	}
}

// Resolve resolves d, found in the file at resourcePath
func (r *Resolver) Resolve(ctx context.Context, d *route.Descriptor, resourcePath string) (Resolved, error) {
	contextDir := filepath.Dir(resourcePath)
	if d.IsRelative && d.SourceIsGenerated {
		// relative references in generated code are written against the source layout
		contextDir = filepath.Dir(r.mapper.GenToSource(resourcePath))
	}

	resolved, err := r.modules.Resolve(ctx, contextDir, d.RawDestination)
	if err != nil {
		return Resolved{}, errors.NewResolutionError(contextDir, d.RawDestination, err)
	}

	if !r.cfg.AOT {
		return Resolved{
			FilePath:   Normalize(stripExt(resolved)),
			ModuleName: d.SymbolName,
		}, nil
	}

	modulePath := stripExt(r.mapper.SourceToGen(resolved))
	if d.Options.EffectiveBySymbol(r.cfg) && r.tracker != nil {
		modulePath, err = r.tracker.Track(ctx, modulePath, d.SymbolName)
		if err != nil {
			return Resolved{}, err
		}
	}

	return Resolved{
		FilePath:   Normalize(modulePath + r.cfg.ModuleSuffix),
		ModuleName: d.SymbolName + r.cfg.FactorySuffix,
	}, nil
}

// Normalize cleans p and, on Windows, doubles the separators so the path
// survives being embedded in a string literal
func Normalize(p string) string {
	p = filepath.Clean(p)
	if runtime.GOOS == "windows" {
		p = strings.ReplaceAll(p, `\`, `\\`)
	}
	return p
}

func stripExt(p string) string {
	return strings.TrimSuffix(p, filepath.Ext(p))
}
