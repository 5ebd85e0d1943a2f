package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/routeloader/internal/errors"
)

// DiagnosticReporter renders transform failures and warnings for humans
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{verbose: verbose, out: os.Stderr}
}

// SetOutput redirects the reporter
func (r *DiagnosticReporter) SetOutput(w io.Writer) {
	r.out = w
}

// ReportWarning prints a single warning line
func (r *DiagnosticReporter) ReportWarning(message string) {
	color.New(color.FgYellow, color.Bold).Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints err with its type, location, context and suggestions
// when it carries them
func (r *DiagnosticReporter) ReportError(file string, err error) {
	fmt.Fprintf(r.out, "\nERROR: Transform Failed\n")
	fmt.Fprintf(r.out, "=======================\n\n")
	if file != "" {
		fmt.Fprintf(r.out, "File: %s\n", file)
	}

	var loaderErr errors.LoaderError
	if stderrors.As(err, &loaderErr) {
		r.reportLoaderError(loaderErr)
	} else {
		fmt.Fprintf(r.out, "Message: %s\n", err.Error())
	}

	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) reportLoaderError(err errors.LoaderError) {
	title := errorTitle(err.ErrorCode())
	fmt.Fprintf(r.out, "Type: %s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(title)+6))

	fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())

	if r.verbose {
		if cause := stderrors.Unwrap(err); cause != nil {
			fmt.Fprintf(r.out, "Underlying cause: %s\n\n", cause.Error())
		}
	}

	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc.String())
	}

	if ctx := err.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}

	if suggestions := err.Suggestions(); len(suggestions) > 0 {
		fmt.Fprintf(r.out, "Suggestions:\n")
		for i, suggestion := range suggestions {
			fmt.Fprintf(r.out, "   %d. %s\n", i+1, suggestion)
		}
	}
}

func (r *DiagnosticReporter) printContext(ctx map[string]interface{}) {
	keys := make([]string, 0, len(ctx))
	for key := range ctx {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), ctx[key])
	}
	fmt.Fprintf(r.out, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func errorTitle(code errors.ErrorCode) string {
	switch code {
	case errors.StaticStringErrorCode:
		return "Unresolvable Static String"
	case errors.ResolutionErrorCode:
		return "Module Resolution Error"
	case errors.UnknownCodeGenErrorCode:
		return "Unknown Code Generator"
	case errors.SymbolNotFoundErrorCode:
		return "Symbol Not Found"
	case errors.ConfigurationErrorCode:
		return "Configuration Error"
	case errors.SyntaxErrorCode:
		return "Syntax Error"
	case errors.FileSystemErrorCode:
		return "File System Error"
	case errors.GenerationErrorCode:
		return "Code Generation Error"
	case errors.RegistrationErrorCode:
		return "Registration Error"
	default:
		return "Unknown Error"
	}
}
