package codegen

import (
	"fmt"
	"strings"
	"text/template"
)

// Built-in generator names
const (
	Sync         = "sync"
	AsyncRequire = "async-require"
	AsyncImport  = "async-import"
	AsyncSystem  = "async-system"
)

// SystemDeprecation is reported when async-system is used
const SystemDeprecation = `DEPRECATED: the "async-system" loader uses the System.import construct which is deprecated in webpack 2 and removed in webpack 3, please use "async-import" instead. (https://github.com/webpack/webpack/releases/tag/v2.1.0-beta.28)`

// Each template line is one line of output; inline mode joins them.
var templateSources = map[string]string{
	Sync: `function() { return require('{{.File}}')['{{.Symbol}}']; }`,

	AsyncRequire: `function() { return new Promise(function (resolve) {
  require.ensure([], function (require) {
    resolve(require('{{.File}}')['{{.Symbol}}']);
  }{{with .ChunkName}}, '{{.}}'{{end}});
})}`,

	AsyncImport: `function() { return import('{{.File}}'{{with .ChunkName}} /* webpackChunkName: "{{.}}" */{{end}})
  .then( function(module) { return module['{{.Symbol}}']; } ); }`,

	AsyncSystem: `function() { return System.import('{{.File}}')
.then( function(module) { return module['{{.Symbol}}']; } ); }`,
}

var templates = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(templateSources))
	for name, src := range templateSources {
		out[name] = template.Must(template.New(name).Option("missingkey=error").Parse(src))
	}
	return out
}()

func builtins() map[string]Definition {
	return map[string]Definition{
		Sync:         {Generate: TemplateFunc(templates[Sync])},
		AsyncRequire: {Generate: TemplateFunc(templates[AsyncRequire])},
		AsyncImport:  {Generate: TemplateFunc(templates[AsyncImport])},
		AsyncSystem:  {Generate: TemplateFunc(templates[AsyncSystem]), Deprecation: SystemDeprecation},
	}
}

// TemplateFunc turns a text/template executed against the Request into a
// generator. Output lines are joined when the configuration asks for inline code.
func TemplateFunc(tmpl *template.Template) Func {
	return func(req Request) (string, error) {
		var buf strings.Builder
		if err := tmpl.Execute(&buf, req); err != nil {
			return "", fmt.Errorf("failed to execute template %s: %w", tmpl.Name(), err)
		}
		return Render(strings.Split(buf.String(), "\n"), req.Config.Inline), nil
	}
}

// Render joins generated lines, without separator when inline
func Render(lines []string, inline bool) string {
	if inline {
		return strings.Join(lines, "")
	}
	return strings.Join(lines, "\n")
}
