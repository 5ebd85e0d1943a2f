package resolve

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/toyz/routeloader/internal/errors"
	"github.com/toyz/routeloader/internal/utils"
)

// DefaultMaxDepth bounds the number of candidates the tracker visits
const DefaultMaxDepth = 16

// SymbolTracker follows barrel modules through the compiler's summary files
// until it reaches the generated module that declares a symbol.
//
// SymbolTracker is safe for concurrent use.
type SymbolTracker struct {
	fs           afero.Fs
	mapper       TreeMapper
	moduleSuffix string
	maxDepth     int
	summaries    *utils.FileCache[*Summary]
	logger       *slog.Logger
}

// TrackerOption configures a SymbolTracker
type TrackerOption func(*SymbolTracker)

// WithMaxDepth sets the maximum number of candidates visited. Non-positive
// values keep the default.
func WithMaxDepth(depth int) TrackerOption {
	return func(t *SymbolTracker) {
		if depth > 0 {
			t.maxDepth = depth
		}
	}
}

// WithTrackerLogger sets the logger used for debug output
func WithTrackerLogger(logger *slog.Logger) TrackerOption {
	return func(t *SymbolTracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewSymbolTracker creates a tracker looking for generated modules named
// <candidate><moduleSuffix>.ts
func NewSymbolTracker(fs afero.Fs, mapper TreeMapper, moduleSuffix string, opts ...TrackerOption) *SymbolTracker {
	t := &SymbolTracker{
		fs:           fs,
		mapper:       mapper,
		moduleSuffix: moduleSuffix,
		maxDepth:     DefaultMaxDepth,
		summaries:    utils.NewFileCache[*Summary](fs),
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track returns the extension-less path of the generated module declaring
// symbol, starting from candidate
func (t *SymbolTracker) Track(ctx context.Context, candidate, symbol string) (string, error) {
	visited := make(map[string]struct{}, t.maxDepth)

	for depth := 1; depth <= t.maxDepth; depth++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if _, seen := visited[candidate]; seen {
			return "", errors.NewSymbolNotFoundError(symbol, candidate, depth-1, "candidate visited twice")
		}
		visited[candidate] = struct{}{}

		t.logger.Debug("tracking symbol",
			slog.String("symbol", symbol),
			slog.String("candidate", candidate),
			slog.Int("depth", depth))

		if strings.HasSuffix(candidate, SummarySuffix) {
			if !t.isFile(candidate) {
				return "", errors.NewSymbolNotFoundError(symbol, candidate, depth, "no summary file")
			}

			summary, err := t.summaries.GetOrLoad(candidate, ReadSummary)
			if err != nil {
				return "", err
			}

			declaring, ok := summary.Locate(symbol)
			if !ok {
				return "", errors.NewSymbolNotFoundError(symbol, candidate, depth, "summary does not declare the symbol")
			}
			if !filepath.IsAbs(declaring) {
				declaring = filepath.Join(t.mapper.Root, declaring)
			}
			candidate = t.mapper.SourceToGen(declaring)
			continue
		}

		if t.isFile(candidate + t.moduleSuffix + ".ts") {
			return candidate, nil
		}
		candidate += SummarySuffix
	}

	return "", errors.NewSymbolNotFoundError(symbol, candidate, t.maxDepth, "maximum depth exceeded")
}

// CacheStats exposes the summary cache statistics
func (t *SymbolTracker) CacheStats() utils.CacheStats {
	return t.summaries.GetStats()
}

func (t *SymbolTracker) isFile(path string) bool {
	info, err := t.fs.Stat(path)
	return err == nil && !info.IsDir()
}
