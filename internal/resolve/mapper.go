package resolve

import (
	"path/filepath"
	"strings"

	"github.com/toyz/routeloader/internal/config"
	"github.com/toyz/routeloader/internal/errors"
)

// TreeMapper maps paths between the source tree and the generated tree.
//
// Both trees hang off Root. When GenDir is empty or "." the generated files
// live next to their sources and both mappings are the identity.
//
// GenToSource(SourceToGen(p)) == p for every p below Root. Outside Root it
// holds as long as the path does not walk back through the generated root's
// ancestry (with GenDir "compiled", /compiled/x and /project/x share an image).
type TreeMapper struct {
	Root   string // absolute project root
	GenDir string // generated tree, relative to Root or absolute
}

// Active reports whether a separate generated tree is configured
func (m TreeMapper) Active() bool {
	return m.GenDir != "" && m.GenDir != "."
}

// GenRoot returns the absolute root of the generated tree
func (m TreeMapper) GenRoot() string {
	if !m.Active() {
		return m.Root
	}
	if filepath.IsAbs(m.GenDir) {
		return filepath.Clean(m.GenDir)
	}
	return filepath.Join(m.Root, m.GenDir)
}

// Validate rejects a generated root that sits above the project root.
// Paths outside Root would be clamped at the file system root by SourceToGen
// and could not be mapped back.
func (m TreeMapper) Validate() error {
	if !m.Active() {
		return nil
	}
	if depth(m.GenRoot()) < depth(m.Root) {
		return errors.NewConfigurationError(config.KeyGenDir,
			"generated root "+m.GenRoot()+" must not be shallower than the project root "+m.Root)
	}
	return nil
}

// SourceToGen re-roots a source tree path onto the generated tree
func (m TreeMapper) SourceToGen(p string) string {
	if !m.Active() {
		return p
	}
	rel, err := filepath.Rel(m.Root, p)
	if err != nil {
		return p
	}
	return filepath.Join(m.GenRoot(), rel)
}

// GenToSource is the inverse of SourceToGen
func (m TreeMapper) GenToSource(p string) string {
	if !m.Active() {
		return p
	}
	rel, err := filepath.Rel(m.GenRoot(), p)
	if err != nil {
		return p
	}
	return filepath.Join(m.Root, rel)
}

// depth counts the path elements below the volume root
func depth(p string) int {
	p = filepath.Clean(p)
	p = strings.TrimPrefix(p, filepath.VolumeName(p))
	p = strings.Trim(filepath.ToSlash(p), "/")
	if p == "" || p == "." {
		return 0
	}
	return strings.Count(p, "/") + 1
}
