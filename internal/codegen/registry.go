// Package codegen holds the named code generators that render the
// replacement for a lazy route declaration.
package codegen

import (
	"github.com/toyz/routeloader/internal/config"
	"github.com/toyz/routeloader/internal/errors"
	"github.com/toyz/routeloader/internal/route"
	"github.com/toyz/routeloader/internal/utils"
)

// Request carries the resolved module reference handed to a generator
type Request struct {
	File    string        // resolved module path, extension-less
	Symbol  string        // exported symbol
	Config  config.Config // global options
	Options route.Options // per-route overrides
}

// ChunkName returns the route's chunk name or ""
func (r Request) ChunkName() string {
	return r.Options.Chunk()
}

// Func renders the replacement code for one route
type Func func(Request) (string, error)

// Definition is a registered code generator
type Definition struct {
	Generate Func

	// Deprecation, when set, is reported once per transform that uses the generator
	Deprecation string
}

// Registry maps generator names to definitions. A Registry is safe for
// concurrent use.
type Registry struct {
	defs *utils.BaseRegistry[string, Definition]
}

// NewRegistry returns a registry holding the built-in generators
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	for name, def := range builtins() {
		if err := r.Register(name, def); err != nil {
			panic(err)
		}
	}
	return r
}

// NewEmptyRegistry returns a registry without any generator
func NewEmptyRegistry() *Registry {
	defs := utils.NewBaseRegistry[string, Definition]("code generator", "code generator")
	defs.SetValidator(utils.ChainValidators(
		utils.NotEmptyKeyValidator[Definition]("code generator name"),
		func(name string, def Definition, _ map[string]Definition) error {
			if def.Generate == nil {
				return errors.NewRegistrationError(name, "generate function is nil")
			}
			return nil
		},
	))
	return &Registry{defs: defs}
}

// Register adds a generator. Registering an existing name replaces it.
func (r *Registry) Register(name string, def Definition) error {
	return r.defs.Register(name, def)
}

// Lookup returns the generator registered under name
func (r *Registry) Lookup(name string) (Definition, error) {
	def, ok := r.defs.Get(name)
	if !ok {
		return Definition{}, errors.NewUnknownCodeGenError(name, r.Names())
	}
	return def, nil
}

// Names returns the registered generator names, sorted
func (r *Registry) Names() []string {
	return utils.SortedKeys(r.defs)
}

// Deprecated returns the names of generators carrying a deprecation notice
func (r *Registry) Deprecated() map[string]string {
	out := make(map[string]string)
	for name, def := range r.defs.Filter(func(_ string, d Definition) bool { return d.Deprecation != "" }) {
		out[name] = def.Deprecation
	}
	return out
}

// Clone returns an independent copy of the registry
func (r *Registry) Clone() *Registry {
	return &Registry{defs: r.defs.Clone()}
}
