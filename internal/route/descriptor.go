// Package route parses loadChildren destination references into descriptors.
//
// A destination reference has the form
//
//	<path>[<delimiter><Symbol>][?loader=<name>&chunkName=<name>&bySymbol=<bool>]
package route

import (
	"path/filepath"
	"strings"

	"github.com/toyz/routeloader/internal/config"
	"github.com/toyz/routeloader/internal/query"
)

// DefaultSymbol is the symbol used when the reference names none
const DefaultSymbol = "default"

// Options are the per-route overrides. A nil field falls back to the
// matching global Config field.
type Options struct {
	Loader    *string `json:"loader,omitempty"`
	ChunkName *string `json:"chunkName,omitempty"`
	BySymbol  *bool   `json:"bySymbol,omitempty"`
}

// EffectiveLoader returns the code generator name for the route
func (o Options) EffectiveLoader(cfg config.Config) string {
	if o.Loader != nil {
		return *o.Loader
	}
	return cfg.Loader
}

// EffectiveBySymbol reports whether symbol tracking applies to the route
func (o Options) EffectiveBySymbol(cfg config.Config) bool {
	if o.BySymbol != nil {
		return *o.BySymbol
	}
	return cfg.BySymbol
}

// Chunk returns the chunk name or "" when none was given
func (o Options) Chunk() string {
	if o.ChunkName == nil {
		return ""
	}
	return *o.ChunkName
}

// Descriptor is one parsed loadChildren destination
type Descriptor struct {
	Raw               string  // destination as written
	RawDestination    string  // module path before the delimiter
	SymbolName        string  // exported symbol, DefaultSymbol when omitted
	Options           Options // per-route overrides
	IsRelative        bool    // RawDestination starts with '.'
	SourceIsGenerated bool    // the importing file is itself a generated module
}

// Parse parses raw, the destination found in the file at resourcePath
func Parse(raw, resourcePath string, cfg config.Config) (*Descriptor, error) {
	pathPart, queryPart, _ := strings.Cut(raw, "?")

	opts, err := parseOptions(queryPart)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(pathPart, cfg.Delimiter)
	destination := parts[0]
	symbol := DefaultSymbol
	if len(parts) > 1 && parts[1] != "" {
		symbol = parts[1]
	}

	return &Descriptor{
		Raw:               raw,
		RawDestination:    destination,
		SymbolName:        symbol,
		Options:           opts,
		IsRelative:        strings.HasPrefix(destination, "."),
		SourceIsGenerated: IsGenerated(resourcePath, cfg.ModuleSuffix),
	}, nil
}

// IsGenerated reports whether the file name, without its extension, carries
// the generated module suffix
func IsGenerated(resourcePath, moduleSuffix string) bool {
	if moduleSuffix == "" {
		return false
	}
	base := filepath.Base(resourcePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.HasSuffix(name, moduleSuffix)
}

func parseOptions(raw string) (Options, error) {
	var opts Options
	if raw == "" {
		return opts, nil
	}

	values, err := query.Parse(raw)
	if err != nil {
		return opts, err
	}

	opts.Loader = values.String(config.KeyLoader)
	opts.ChunkName = values.String(config.KeyChunkName)
	opts.BySymbol, err = values.Bool(config.KeyBySymbol)
	if err != nil {
		return opts, err
	}

	return opts, nil
}
