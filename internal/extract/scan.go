package extract

import (
	"context"
	"regexp"
)

var declarationPattern = regexp.MustCompile(`\b` + HookName + `\s*:\s*('([^'\n]*)'|"([^"\n]*)")`)

// ScanExtractor matches quoted string literals with a regular expression.
// Concatenations, template strings and references are not matched.
type ScanExtractor struct{}

// NewScanExtractor creates a ScanExtractor
func NewScanExtractor() *ScanExtractor {
	return &ScanExtractor{}
}

// Extract implements Extractor
func (s *ScanExtractor) Extract(ctx context.Context, filename string, source []byte) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var matches []Match
	for _, loc := range declarationPattern.FindAllSubmatchIndex(source, -1) {
		// loc: whole, quoted value, single quoted body, double quoted body
		bodyStart, bodyEnd := loc[4], loc[5]
		if bodyStart < 0 {
			bodyStart, bodyEnd = loc[6], loc[7]
		}

		line, col := position(source, loc[0])
		matches = append(matches, Match{
			Text:        string(source[loc[0]:loc[1]]),
			Destination: string(source[bodyStart:bodyEnd]),
			Start:       loc[0],
			End:         loc[1],
			ValueStart:  loc[2],
			ValueEnd:    loc[3],
			Line:        line,
			Column:      col,
		})
	}

	return matches, nil
}
