package resolve

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ModuleResolver resolves a module specifier, as written in source, to an
// absolute file path
type ModuleResolver interface {
	Resolve(ctx context.Context, contextDir, specifier string) (string, error)
}

// ModuleResolverFunc adapts a function to ModuleResolver
type ModuleResolverFunc func(ctx context.Context, contextDir, specifier string) (string, error)

// Resolve implements ModuleResolver
func (f ModuleResolverFunc) Resolve(ctx context.Context, contextDir, specifier string) (string, error) {
	return f(ctx, contextDir, specifier)
}

// DefaultExtensions are tried, in order, when a specifier has no file of its own
var DefaultExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs"}

// NodeResolver resolves specifiers the way bundlers do for TypeScript
// projects: relative specifiers against the importing directory, bare
// specifiers against a list of module roots (baseUrl style).
type NodeResolver struct {
	fs         afero.Fs
	roots      []string
	extensions []string
}

// NewNodeResolver creates a resolver probing fs. Bare specifiers are looked up
// under each root in order.
func NewNodeResolver(fs afero.Fs, roots ...string) *NodeResolver {
	return &NodeResolver{
		fs:         fs,
		roots:      roots,
		extensions: DefaultExtensions,
	}
}

// DefaultRoots returns the module roots used when none are configured
func DefaultRoots(projectRoot string) []string {
	return []string{filepath.Join(projectRoot, "src"), projectRoot}
}

// Resolve implements ModuleResolver
func (r *NodeResolver) Resolve(ctx context.Context, contextDir, specifier string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var bases []string
	switch {
	case filepath.IsAbs(specifier):
		bases = []string{specifier}
	case isRelativeSpecifier(specifier):
		bases = []string{filepath.Join(contextDir, specifier)}
	default:
		for _, root := range r.roots {
			bases = append(bases, filepath.Join(root, specifier))
		}
	}

	for _, base := range bases {
		if resolved, ok := r.lookup(base); ok {
			return resolved, nil
		}
	}

	return "", fmt.Errorf("can't resolve '%s' in '%s'", specifier, contextDir)
}

func (r *NodeResolver) lookup(base string) (string, bool) {
	if r.isFile(base) {
		return base, true
	}
	for _, ext := range r.extensions {
		if r.isFile(base + ext) {
			return base + ext, true
		}
	}
	if info, err := r.fs.Stat(base); err == nil && info.IsDir() {
		for _, ext := range r.extensions {
			index := filepath.Join(base, "index"+ext)
			if r.isFile(index) {
				return index, true
			}
		}
	}
	return "", false
}

func (r *NodeResolver) isFile(path string) bool {
	info, err := r.fs.Stat(path)
	return err == nil && !info.IsDir()
}

func isRelativeSpecifier(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}
