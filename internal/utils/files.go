package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// FileFilter decides whether a file should be processed
type FileFilter func(path string, info os.FileInfo) bool

// DirectoryFilter decides whether a directory should be descended into
type DirectoryFilter func(path string, info os.FileInfo) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// SourceExtensions are the file types that may declare lazy routes
var SourceExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs"}

// DefaultSourceFileFilter accepts TypeScript and JavaScript sources,
// excluding declaration files
func DefaultSourceFileFilter() FileFilter {
	return func(path string, info os.FileInfo) bool {
		if info.IsDir() {
			return false
		}

		name := info.Name()
		if strings.HasSuffix(name, ".d.ts") {
			return false
		}
		ext := filepath.Ext(name)
		for _, accepted := range SourceExtensions {
			if ext == accepted {
				return true
			}
		}
		return false
	}
}

// DefaultDirectoryFilter skips directories that never hold project sources
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":           true,
		"node_modules":     true,
		"bower_components": true,
		"testdata":         true,
		"build":            true,
		"dist":             true,
		"coverage":         true,
	}

	return func(path string, info os.FileInfo) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}
		return !skipDirs[name]
	}
}

// FileProcessor collects source files from files and directory trees
type FileProcessor struct {
	fs afero.Fs
}

// NewFileProcessor creates a file processor over fs
func NewFileProcessor(fs afero.Fs) *FileProcessor {
	return &FileProcessor{fs: fs}
}

// WalkFiles walks a directory tree and returns the files accepted by the filters
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string

	err := afero.Walk(fp.fs, rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		if info.IsDir() {
			// the root itself is always walked
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, info) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, info) {
			matchedFiles = append(matchedFiles, path)
		}
		return nil
	})

	return matchedFiles, err
}

// CollectSources expands paths into a sorted, de-duplicated list of source
// files. Files named explicitly are accepted regardless of extension.
func (fp *FileProcessor) CollectSources(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	options := FileWalkOptions{
		FileFilter:      DefaultSourceFileFilter(),
		DirectoryFilter: DefaultDirectoryFilter(),
	}

	for _, p := range paths {
		p = filepath.Clean(strings.TrimSuffix(p, "/..."))

		info, err := fp.fs.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}

		var found []string
		if info.IsDir() {
			found, err = fp.WalkFiles(p, options)
			if err != nil {
				return nil, fmt.Errorf("failed to walk %s: %w", p, err)
			}
		} else {
			found = []string{p}
		}

		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}
