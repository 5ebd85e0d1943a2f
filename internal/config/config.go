package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/toyz/routeloader/internal/errors"
	"github.com/toyz/routeloader/internal/query"
)

// Built-in option defaults
const (
	DefaultDelimiter     = "#"
	DefaultModuleSuffix  = ".ngfactory"
	DefaultFactorySuffix = "NgFactory"
	DefaultLoader        = "async-require"
)

// Option keys, shared by loader queries, route queries and config files
const (
	KeyDelimiter     = "delimiter"
	KeyAOT           = "aot"
	KeyModuleSuffix  = "moduleSuffix"
	KeyFactorySuffix = "factorySuffix"
	KeyLoader        = "loader"
	KeyGenDir        = "genDir"
	KeyInline        = "inline"
	KeyBySymbol      = "bySymbol"
	KeyDebug         = "debug"
	KeyProjectRoot   = "projectRoot"
	KeyChunkName     = "chunkName"
)

// Config holds the loader options for one transform invocation.
//
// Values are resolved with a single precedence rule: a route override wins
// over the global Config, which wins over the built-in default.
type Config struct {
	// Delimiter separates the module path from the exported symbol name
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`

	// AOT enables resolution against compiler generated factories
	AOT bool `yaml:"aot" mapstructure:"aot"`

	// ModuleSuffix marks generated module files (AOT only)
	ModuleSuffix string `yaml:"moduleSuffix" mapstructure:"moduleSuffix"`

	// FactorySuffix is appended to the symbol name (AOT only)
	FactorySuffix string `yaml:"factorySuffix" mapstructure:"factorySuffix"`

	// Loader is the default code generator name
	Loader string `yaml:"loader" mapstructure:"loader"`

	// GenDir is the generated tree root relative to ProjectRoot.
	// Empty or "." means generated files live next to the sources.
	GenDir string `yaml:"genDir" mapstructure:"genDir"`

	// Inline emits generated code on a single line
	Inline bool `yaml:"inline" mapstructure:"inline"`

	// BySymbol enables summary based symbol tracking (AOT only)
	BySymbol bool `yaml:"bySymbol" mapstructure:"bySymbol"`

	// Debug overrides the host debug flag when set
	Debug *bool `yaml:"debug,omitempty" mapstructure:"debug"`

	// ProjectRoot is the fixed root both trees are mapped against.
	// Empty means the process working directory.
	ProjectRoot string `yaml:"projectRoot,omitempty" mapstructure:"projectRoot"`
}

// Default returns the built-in defaults
func Default() Config {
	return Config{
		Delimiter:     DefaultDelimiter,
		AOT:           false,
		ModuleSuffix:  DefaultModuleSuffix,
		FactorySuffix: DefaultFactorySuffix,
		Loader:        DefaultLoader,
		GenDir:        "",
		Inline:        true,
		BySymbol:      true,
	}
}

// FromQuery builds a Config from a loader query string such as
// "?aot=true&genDir=codegen", layered over the defaults
func FromQuery(raw string) (Config, error) {
	values, err := query.Parse(raw)
	if err != nil {
		return Config{}, err
	}
	return Default().Apply(values)
}

// Apply returns a copy of c with every option present in values applied.
// Unknown keys are ignored.
func (c Config) Apply(values query.Values) (Config, error) {
	out := c

	stringOpts := map[string]*string{
		KeyDelimiter:     &out.Delimiter,
		KeyModuleSuffix:  &out.ModuleSuffix,
		KeyFactorySuffix: &out.FactorySuffix,
		KeyLoader:        &out.Loader,
		KeyGenDir:        &out.GenDir,
		KeyProjectRoot:   &out.ProjectRoot,
	}
	for key, target := range stringOpts {
		if v := values.String(key); v != nil {
			*target = *v
		}
	}

	boolOpts := map[string]*bool{
		KeyAOT:      &out.AOT,
		KeyInline:   &out.Inline,
		KeyBySymbol: &out.BySymbol,
	}
	for key, target := range boolOpts {
		v, err := values.Bool(key)
		if err != nil {
			return c, err
		}
		if v != nil {
			*target = *v
		}
	}

	debug, err := values.Bool(KeyDebug)
	if err != nil {
		return c, err
	}
	if debug != nil {
		out.Debug = debug
	}

	return out, out.Validate()
}

// Validate checks that the options can drive a transform
func (c Config) Validate() error {
	if c.Delimiter == "" {
		return errors.NewConfigurationError(KeyDelimiter, "must not be empty")
	}
	if c.Loader == "" {
		return errors.NewConfigurationError(KeyLoader, "must not be empty")
	}
	if c.AOT {
		if c.ModuleSuffix == "" {
			return errors.NewConfigurationError(KeyModuleSuffix, "must not be empty in AOT mode")
		}
		if c.FactorySuffix == "" {
			return errors.NewConfigurationError(KeyFactorySuffix, "must not be empty in AOT mode")
		}
	}
	return nil
}

// DebugEnabled resolves the debug flag, falling back to the host's flag
func (c Config) DebugEnabled(hostDebug bool) bool {
	if c.Debug != nil {
		return *c.Debug
	}
	return hostDebug
}

// Root returns the absolute project root
func (c Config) Root() (string, error) {
	if c.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.WrapFileSystemError("get", "working directory", err)
		}
		return wd, nil
	}
	root, err := filepath.Abs(c.ProjectRoot)
	if err != nil {
		return "", errors.WrapFileSystemError("resolve", c.ProjectRoot, err)
	}
	return root, nil
}

// Marshal renders the config as YAML
func (c Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}
