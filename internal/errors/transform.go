package errors

import "fmt"

// StaticStringError is returned when a loadChildren value cannot be
// evaluated to a string at build time
type StaticStringError struct {
	*BaseError
	NodeKind string // syntax node kind that could not be evaluated
}

// NewStaticStringError creates a StaticStringError naming the unsupported node kind
func NewStaticStringError(nodeKind string) *StaticStringError {
	return &StaticStringError{
		BaseError: Newf(StaticStringErrorCode, "cannot resolve static string: node type %q is not allowed", nodeKind).
			WithContext("node_kind", nodeKind).
			WithSuggestions(
				"Use a string literal, a '+' concatenation of literals or a template string",
				"Move dynamic route references out of loadChildren",
			),
		NodeKind: nodeKind,
	}
}

// WithLocation sets the location of the offending expression
func (e *StaticStringError) WithLocation(loc SourceLocation) *StaticStringError {
	e.BaseError.WithLocation(loc)
	return e
}

// ResolutionError wraps a failure reported by the module resolver. The
// resolver's error is kept verbatim as the cause.
type ResolutionError struct {
	*BaseError
	ContextDir string // directory the specifier was resolved from
	Specifier  string // raw module specifier
}

// NewResolutionError creates a ResolutionError around the resolver failure
func NewResolutionError(contextDir, specifier string, cause error) *ResolutionError {
	return &ResolutionError{
		BaseError: Wrap(ResolutionErrorCode, cause.Error(), cause).
			WithContext("context", contextDir).
			WithContext("specifier", specifier).
			WithSuggestion(fmt.Sprintf("Check that %q exists relative to %s", specifier, contextDir)),
		ContextDir: contextDir,
		Specifier:  specifier,
	}
}

// UnknownCodeGenError is returned when a route asks for a code generator
// that is not registered
type UnknownCodeGenError struct {
	*BaseError
	Name string
}

// NewUnknownCodeGenError creates an UnknownCodeGenError for the given generator name
func NewUnknownCodeGenError(name string, known []string) *UnknownCodeGenError {
	err := &UnknownCodeGenError{
		BaseError: Newf(UnknownCodeGenErrorCode, "unknown code generator `%s`", name).
			WithContext("loader", name),
		Name: name,
	}
	if len(known) > 0 {
		err.WithContext("registered", known)
		err.WithSuggestion(fmt.Sprintf("Use one of the registered code generators: %v", known))
	}
	return err
}

// SymbolNotFoundError is returned when symbol tracking gives up without
// finding a generated module declaring the symbol
type SymbolNotFoundError struct {
	*BaseError
	Symbol string
	Path   string // last candidate visited
	Depth  int    // number of candidates visited
}

// NewSymbolNotFoundError creates a SymbolNotFoundError
func NewSymbolNotFoundError(symbol, path string, depth int, reason string) *SymbolNotFoundError {
	return &SymbolNotFoundError{
		BaseError: Newf(SymbolNotFoundErrorCode, "symbol %q not found: %s (last candidate %s)", symbol, reason, path).
			WithContext("symbol", symbol).
			WithContext("candidate", path).
			WithContext("depth", depth).
			WithSuggestions(
				"Make sure the AOT compiler ran and emitted .ngsummary.json files",
				"Disable symbol tracking for this route with ?bySymbol=false",
			),
		Symbol: symbol,
		Path:   path,
		Depth:  depth,
	}
}

// ConfigurationError reports an invalid option value
type ConfigurationError struct {
	*BaseError
	Key string
}

// NewConfigurationError creates a ConfigurationError for the option key
func NewConfigurationError(key, message string) *ConfigurationError {
	return &ConfigurationError{
		BaseError: Newf(ConfigurationErrorCode, "invalid option %q: %s", key, message).
			WithContext("option", key),
		Key: key,
	}
}

// SyntaxError reports malformed input such as a route option query
type SyntaxError struct {
	*BaseError
	Input string
}

// WrapSyntaxError wraps a parser failure for the given input
func WrapSyntaxError(input string, cause error) *SyntaxError {
	return &SyntaxError{
		BaseError: Wrapf(SyntaxErrorCode, cause, "failed to parse %q: %v", input, cause).
			WithContext("input", input),
		Input: input,
	}
}

// FileSystemError represents a file system operation failure
type FileSystemError struct {
	*BaseError
	Operation string
	Path      string
}

// WrapFileSystemError wraps a file system failure with the operation and path
func WrapFileSystemError(operation, path string, cause error) *FileSystemError {
	return &FileSystemError{
		BaseError: Wrapf(FileSystemErrorCode, cause, "failed to %s %s: %v", operation, path, cause).
			WithContext("operation", operation).
			WithContext("path", path),
		Operation: operation,
		Path:      path,
	}
}

// GenerationError reports a code generator failure
type GenerationError struct {
	*BaseError
	Generator string
}

// WrapGenerationError wraps an error returned by a code generator
func WrapGenerationError(generator string, cause error) *GenerationError {
	return &GenerationError{
		BaseError: Wrapf(GenerationErrorCode, cause, "code generator %q failed: %v", generator, cause).
			WithContext("loader", generator),
		Generator: generator,
	}
}

// RegistrationError reports an invalid code generator registration
type RegistrationError struct {
	*BaseError
	Name string
}

// NewRegistrationError creates a RegistrationError
func NewRegistrationError(name, reason string) *RegistrationError {
	return &RegistrationError{
		BaseError: Newf(RegistrationErrorCode, "cannot register code generator %q: %s", name, reason),
		Name:      name,
	}
}
