package extract

import (
	"context"
	"fmt"
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/toyz/routeloader/internal/errors"
)

// maxStaticDepth bounds recursion while evaluating nested concatenations
const maxStaticDepth = 64

// SyntaxExtractor parses the unit with tree-sitter and evaluates every
// loadChildren value statically. Values that are functions are already lazy
// loaders and are skipped; any other non-static value is an error.
//
// SyntaxExtractor is safe for concurrent use; each call creates its own parser.
type SyntaxExtractor struct {
	logger *slog.Logger
}

// NewSyntaxExtractor creates a SyntaxExtractor. A nil logger discards output.
func NewSyntaxExtractor(logger *slog.Logger) *SyntaxExtractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SyntaxExtractor{logger: logger}
}

// Extract implements Extractor
func (s *SyntaxExtractor) Extract(ctx context.Context, filename string, source []byte) ([]Match, error) {
	lang := LanguageFor(filename)

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar(lang))

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.WrapSyntaxError(filename, err)
	}
	if tree == nil {
		return nil, errors.WrapSyntaxError(filename, fmt.Errorf("parser returned no tree"))
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		s.logger.Debug("source contains syntax errors, continuing with partial tree",
			slog.String("file", filename),
			slog.String("language", lang.String()))
	}

	var matches []Match
	if err := s.walk(root, filename, source, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *SyntaxExtractor) walk(node *sitter.Node, filename string, source []byte, out *[]Match) error {
	if node.Type() == "pair" {
		match, ok, err := s.visitPair(node, filename, source)
		if err != nil {
			return err
		}
		if ok {
			*out = append(*out, match)
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		if err := s.walk(node.NamedChild(i), filename, source, out); err != nil {
			return err
		}
	}
	return nil
}

func (s *SyntaxExtractor) visitPair(node *sitter.Node, filename string, source []byte) (Match, bool, error) {
	key := node.ChildByFieldName("key")
	value := node.ChildByFieldName("value")
	if key == nil || value == nil || !isHookKey(key, source) {
		return Match{}, false, nil
	}

	switch value.Type() {
	case "arrow_function", "function", "function_expression":
		s.logger.Debug("skipping function valued loadChildren",
			slog.String("file", filename),
			slog.Int("line", int(node.StartPoint().Row)+1))
		return Match{}, false, nil
	}

	destination, err := evaluate(value, source, 0)
	if err != nil {
		if staticErr, ok := err.(*errors.StaticStringError); ok {
			point := value.StartPoint()
			staticErr.WithLocation(errors.SourceLocation{
				File:   filename,
				Line:   int(point.Row) + 1,
				Column: int(point.Column) + 1,
			})
		}
		return Match{}, false, err
	}

	start, end := int(node.StartByte()), int(node.EndByte())
	point := node.StartPoint()
	return Match{
		Text:        string(source[start:end]),
		Destination: destination,
		Start:       start,
		End:         end,
		ValueStart:  int(value.StartByte()),
		ValueEnd:    int(value.EndByte()),
		Line:        int(point.Row) + 1,
		Column:      int(point.Column) + 1,
	}, true, nil
}

func isHookKey(key *sitter.Node, source []byte) bool {
	switch key.Type() {
	case "property_identifier", "identifier":
		return key.Content(source) == HookName
	case "string":
		name, err := unquote(key.Content(source))
		return err == nil && name == HookName
	}
	return false
}

// evaluate resolves an expression node to a string at build time
func evaluate(node *sitter.Node, source []byte, depth int) (string, error) {
	if depth > maxStaticDepth {
		return "", errors.NewStaticStringError(node.Type())
	}

	switch node.Type() {
	case "string":
		s, err := unquote(node.Content(source))
		if err != nil {
			return "", errors.WrapSyntaxError(node.Content(source), err)
		}
		return s, nil

	case "template_string":
		return evaluateTemplate(node, source, depth)

	case "parenthesized_expression":
		if node.NamedChildCount() != 1 {
			return "", errors.NewStaticStringError(node.Type())
		}
		return evaluate(node.NamedChild(0), source, depth+1)

	case "binary_expression":
		operator := node.ChildByFieldName("operator")
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		if operator == nil || operator.Type() != "+" || left == nil || right == nil {
			return "", errors.NewStaticStringError(node.Type())
		}
		l, err := evaluate(left, source, depth+1)
		if err != nil {
			return "", err
		}
		r, err := evaluate(right, source, depth+1)
		if err != nil {
			return "", err
		}
		return l + r, nil
	}

	return "", errors.NewStaticStringError(node.Type())
}

// evaluateTemplate joins the literal segments of a template string with its
// evaluated substitutions
func evaluateTemplate(node *sitter.Node, source []byte, depth int) (string, error) {
	var out []byte
	pos := int(node.StartByte()) + 1 // opening backtick
	end := int(node.EndByte()) - 1   // closing backtick

	appendRaw := func(raw string) error {
		s, err := unescape(raw)
		if err != nil {
			return errors.WrapSyntaxError(raw, err)
		}
		out = append(out, s...)
		return nil
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "template_substitution" {
			continue
		}
		if err := appendRaw(string(source[pos:child.StartByte()])); err != nil {
			return "", err
		}
		if child.NamedChildCount() != 1 {
			return "", errors.NewStaticStringError(child.Type())
		}
		value, err := evaluate(child.NamedChild(0), source, depth+1)
		if err != nil {
			return "", err
		}
		out = append(out, value...)
		pos = int(child.EndByte())
	}

	if err := appendRaw(string(source[pos:end])); err != nil {
		return "", err
	}
	return string(out), nil
}

func grammar(lang Language) *sitter.Language {
	switch lang {
	case TSX:
		return tsx.GetLanguage()
	case JavaScript:
		return javascript.GetLanguage()
	default:
		return typescript.GetLanguage()
	}
}
