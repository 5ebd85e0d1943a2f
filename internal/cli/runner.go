// Package cli wires the transform engine to files on disk for the
// routeloader command.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/toyz/routeloader/internal/errors"
	"github.com/toyz/routeloader/internal/utils"
	"github.com/toyz/routeloader/pkg/routeloader"
)

// RunOptions controls where transformed sources go
type RunOptions struct {
	Write  bool   // rewrite files in place
	OutDir string // mirror results under OutDir, relative to Root
	Root   string // project root used to mirror paths into OutDir
}

// Summary collects statistics over one run
type Summary struct {
	FilesScanned    int
	FilesChanged    int
	RoutesRewritten int
	Failed          []string
}

// Stats returns the summary as printable statistics
func (s Summary) Stats() map[string]interface{} {
	return map[string]interface{}{
		"Files scanned":    s.FilesScanned,
		"Files changed":    s.FilesChanged,
		"Routes rewritten": s.RoutesRewritten,
		"Files failed":     len(s.Failed),
	}
}

// Runner transforms source files with an engine
type Runner struct {
	engine      *routeloader.Engine
	fs          afero.Fs
	files       *utils.FileProcessor
	diagnostics *utils.DiagnosticSystem
	reporter    *DiagnosticReporter
	stdout      io.Writer
	opts        RunOptions

	headers bool

	mu     sync.Mutex
	warned map[string]bool
}

// NewRunner creates a Runner
func NewRunner(engine *routeloader.Engine, fs afero.Fs, diagnostics *utils.DiagnosticSystem, reporter *DiagnosticReporter, opts RunOptions) *Runner {
	return &Runner{
		engine:      engine,
		fs:          fs,
		files:       utils.NewFileProcessor(fs),
		diagnostics: diagnostics,
		reporter:    reporter,
		stdout:      os.Stdout,
		opts:        opts,
		warned:      make(map[string]bool),
	}
}

// SetStdout redirects transformed sources printed when neither Write nor
// OutDir is set
func (r *Runner) SetStdout(w io.Writer) {
	r.stdout = w
}

// Run transforms every source file found under paths. Failures are reported
// per file and collected into an *errors.MultipleErrors, one entry per failed
// file located at that file.
//
// When several files are printed to stdout, only changed files are printed,
// each after a "// <path>" header line.
func (r *Runner) Run(ctx context.Context, paths []string) (Summary, error) {
	var summary Summary

	files, err := r.files.CollectSources(paths)
	if err != nil {
		return summary, err
	}

	r.headers = len(files) > 1
	defer func() { r.headers = false }()

	failures := errors.NewMultipleErrors()
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.FilesScanned++
		result, err := r.TransformFile(ctx, file)
		if err != nil {
			summary.Failed = append(summary.Failed, file)
			r.reporter.ReportError(file, err)
			failures.Add(errors.Wrap(errors.CodeOf(err), err.Error(), err).
				WithLocation(errors.SourceLocation{File: file}))
			continue
		}
		if result.Changed {
			summary.FilesChanged++
			summary.RoutesRewritten += len(result.Routes)
		}
	}

	if !failures.IsEmpty() {
		return summary, failures
	}
	return summary, nil
}

// TransformFile transforms one file and writes the result
func (r *Runner) TransformFile(ctx context.Context, file string) (*routeloader.Result, error) {
	path, err := filepath.Abs(file)
	if err != nil {
		return nil, errors.WrapFileSystemError("resolve", file, err)
	}

	source, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}

	result, err := r.engine.Transform(ctx, path, source)
	if err != nil {
		return nil, err
	}

	for _, route := range result.Routes {
		r.diagnostics.Verbose("%s:%d: %s -> %s#%s (%s)", path, route.Line, route.Match.Destination, route.FilePath, route.ModuleName, route.Loader)
		if route.Debug {
			r.diagnostics.Block(routeloader.FormatDebug(path, route))
		}
	}
	r.warnOnce(result.Warnings)

	if err := r.emit(path, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Runner) emit(path string, result *routeloader.Result) error {
	switch {
	case r.opts.OutDir != "":
		target, err := r.mirror(path)
		if err != nil {
			return err
		}
		if err := r.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return errors.WrapFileSystemError("create", filepath.Dir(target), err)
		}
		if err := afero.WriteFile(r.fs, target, result.Source, 0644); err != nil {
			return errors.WrapFileSystemError("write", target, err)
		}
		r.diagnostics.Verbose("wrote %s", target)

	case r.opts.Write:
		if !result.Changed {
			return nil
		}
		mode := os.FileMode(0644)
		if info, err := r.fs.Stat(path); err == nil {
			mode = info.Mode().Perm()
		}
		if err := afero.WriteFile(r.fs, path, result.Source, mode); err != nil {
			return errors.WrapFileSystemError("write", path, err)
		}
		r.diagnostics.Verbose("rewrote %s", path)

	default:
		if r.headers {
			if !result.Changed {
				return nil
			}
			fmt.Fprintf(r.stdout, "// %s\n", path)
		}
		if _, err := r.stdout.Write(result.Source); err != nil {
			return errors.WrapFileSystemError("write", "stdout", err)
		}
	}
	return nil
}

// mirror maps path into OutDir
func (r *Runner) mirror(path string) (string, error) {
	root := r.opts.Root
	if root == "" {
		root = filepath.Dir(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", errors.WrapFileSystemError("relativize", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(path)
	}
	return filepath.Join(r.opts.OutDir, rel), nil
}

func (r *Runner) warnOnce(warnings []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range warnings {
		if r.warned[w] {
			continue
		}
		r.warned[w] = true
		r.reporter.ReportWarning(w)
	}
}
