package resolve

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/spf13/afero"

	"github.com/toyz/routeloader/internal/errors"
)

// SummarySuffix marks the compiler's per-module summary files
const SummarySuffix = ".ngsummary.json"

// SymbolID is the compiler's opaque symbol reference. Depending on the
// compiler version it is serialized as a number or as a string.
type SymbolID string

// UnmarshalJSON implements json.Unmarshaler
func (id *SymbolID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = SymbolID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = SymbolID(n.String())
	return nil
}

type symbolRef struct {
	Symbol   SymbolID `json:"__symbol"`
	OpaqueID SymbolID `json:"opaqueId"`
}

func (r symbolRef) id() SymbolID {
	if r.Symbol != "" {
		return r.Symbol
	}
	return r.OpaqueID
}

// SummarySymbol is one entry of a summary's symbol table
type SummarySymbol struct {
	symbolRef
	Name     string `json:"name"`
	FilePath string `json:"filePath"`
}

// ID returns the symbol's opaque id
func (s SummarySymbol) ID() SymbolID {
	return s.id()
}

// SummaryEntry is one summarized declaration
type SummaryEntry struct {
	Metadata json.RawMessage `json:"metadata"`
}

// ID returns the opaque id of the entry's metadata, or "" when the metadata
// carries none
func (e SummaryEntry) ID() SymbolID {
	var ref symbolRef
	if len(e.Metadata) == 0 || json.Unmarshal(e.Metadata, &ref) != nil {
		return ""
	}
	return ref.id()
}

// Summary is the decoded content of a .ngsummary.json file
type Summary struct {
	Symbols   []SummarySymbol `json:"symbols"`
	Summaries []SummaryEntry  `json:"summaries"`
}

// Locate returns the file declaring name: the first symbol with that name
// whose id is among the summarized declarations
func (s *Summary) Locate(name string) (string, bool) {
	declared := make(map[SymbolID]struct{}, len(s.Summaries))
	for _, entry := range s.Summaries {
		if id := entry.ID(); id != "" {
			declared[id] = struct{}{}
		}
	}

	for _, sym := range s.Symbols {
		if sym.Name != name || sym.FilePath == "" {
			continue
		}
		if _, ok := declared[sym.ID()]; ok {
			return stripDeclaration(sym.FilePath), true
		}
	}
	return "", false
}

// ReadSummary decodes the summary file at path
func ReadSummary(fs afero.Fs, path string) (*Summary, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}

	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, errors.WrapSyntaxError(path, err)
	}
	return &summary, nil
}

// stripDeclaration removes a trailing .d.ts or .ts
func stripDeclaration(p string) string {
	if trimmed, ok := strings.CutSuffix(p, ".d.ts"); ok {
		return trimmed
	}
	return strings.TrimSuffix(p, ".ts")
}
