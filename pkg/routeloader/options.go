package routeloader

import (
	"log/slog"

	"github.com/spf13/afero"

	"github.com/toyz/routeloader/internal/codegen"
	"github.com/toyz/routeloader/internal/config"
	"github.com/toyz/routeloader/internal/extract"
	"github.com/toyz/routeloader/internal/resolve"
)

// Option configures an Engine
type Option func(*Engine)

// WithConfig sets the global loader options
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithRegistry seeds the engine's code generators from registry. The engine
// keeps its own copy; later registrations on registry do not reach it.
func WithRegistry(registry *codegen.Registry) Option {
	return func(e *Engine) {
		if registry != nil {
			e.registry = registry.Clone()
		}
	}
}

// WithModuleResolver sets the collaborator resolving module specifiers.
// Defaults to a NodeResolver over the engine's file system.
func WithModuleResolver(modules resolve.ModuleResolver) Option {
	return func(e *Engine) {
		e.modules = modules
	}
}

// WithModuleRoots sets the roots bare specifiers are resolved against by the
// default module resolver
func WithModuleRoots(roots ...string) Option {
	return func(e *Engine) {
		e.moduleRoots = roots
	}
}

// WithFs sets the file system used for module resolution and symbol tracking
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) {
		if fs != nil {
			e.fs = fs
		}
	}
}

// WithExtractor sets how declarations are found. Defaults to the regular
// expression scanner.
func WithExtractor(extractor extract.Extractor) Option {
	return func(e *Engine) {
		if extractor != nil {
			e.extractor = extractor
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHostDebug sets the host's debug flag, used when the configuration
// leaves debug unset
func WithHostDebug(debug bool) Option {
	return func(e *Engine) {
		e.hostDebug = debug
	}
}

// WithMaxSymbolDepth bounds symbol tracking
func WithMaxSymbolDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}
