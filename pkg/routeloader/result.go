package routeloader

import (
	"fmt"
	"strings"

	"github.com/toyz/routeloader/internal/extract"
	"github.com/toyz/routeloader/internal/route"
)

// ReplaceResult describes one rewritten lazy route
type ReplaceResult struct {
	Match       extract.Match
	Replacement string        // code substituted for the value span
	Loader      string        // code generator used
	FilePath    string        // resolved module path
	ModuleName  string        // resolved export name
	Options     route.Options // per-route overrides
	Debug       bool          // host should print a debug banner
	Line        int
	Column      int
}

// Result is the outcome of one Transform call
type Result struct {
	Source   []byte
	Changed  bool
	Routes   []ReplaceResult
	Warnings []string // deprecation notices, each reported once
}

const bannerWidth = 86

// FormatDebug renders the banner hosts print for routes with debug enabled
func FormatDebug(resourcePath string, r ReplaceResult) string {
	title := " routeloader "
	pad := (bannerWidth - len(title)) / 2
	header := strings.Repeat("=", pad) + title + strings.Repeat("=", bannerWidth-pad-len(title))

	lines := []string{
		header,
		fmt.Sprintf("Importer:    %s", resourcePath),
		fmt.Sprintf("Raw Request: %s", r.Match.Text),
		fmt.Sprintf("Replacement: %s", r.Replacement),
		strings.Repeat("=", bannerWidth),
	}
	return strings.Join(lines, "\n")
}
