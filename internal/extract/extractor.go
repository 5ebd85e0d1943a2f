// Package extract finds lazy route declarations (loadChildren properties)
// in TypeScript and JavaScript sources.
package extract

import (
	"context"
	"path/filepath"
	"strings"
)

// HookName is the property key that marks a lazy route declaration
const HookName = "loadChildren"

// Match is one lazy route declaration found in a source unit.
//
// Offsets are byte offsets into the scanned source. The value span covers the
// whole value expression, quotes included, and is what gets substituted.
type Match struct {
	Text        string // whole declaration, e.g. loadChildren: './a#A'
	Destination string // statically evaluated value
	Start       int
	End         int
	ValueStart  int
	ValueEnd    int
	Line        int // 1-based line of the declaration
	Column      int // 1-based column of the declaration
}

// Value returns the value expression as written in the source
func (m Match) Value(source []byte) string {
	return string(source[m.ValueStart:m.ValueEnd])
}

// Extractor yields lazy route declarations in left-to-right source order
type Extractor interface {
	Extract(ctx context.Context, filename string, source []byte) ([]Match, error)
}

// Language identifies the grammar a source unit is parsed with
type Language int

const (
	TypeScript Language = iota
	TSX
	JavaScript
)

func (l Language) String() string {
	switch l {
	case TSX:
		return "tsx"
	case JavaScript:
		return "javascript"
	default:
		return "typescript"
	}
}

// LanguageFor picks the grammar from the file extension. Unknown extensions
// are treated as TypeScript, which is a superset of the JavaScript grammar.
func LanguageFor(filename string) Language {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tsx":
		return TSX
	case ".js", ".jsx", ".mjs", ".cjs":
		return JavaScript
	default:
		return TypeScript
	}
}

// position converts a byte offset to a 1-based line and column
func position(source []byte, offset int) (int, int) {
	line, col := 1, 1
	for _, b := range source[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
