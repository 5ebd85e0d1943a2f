// Package query parses loader style query strings such as
// "loader=sync&chunkName=admin&-bySymbol".
//
// The same grammar serves two places: per-route overrides appended to a
// loadChildren destination and global loader options handed over by the host.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/routeloader/internal/errors"
)

// Query is the root of a parsed query string
type Query struct {
	Items []*Item `parser:"( @@ ( '&' @@ )* )?"`
}

// Item is a single key, key= or key=value entry
type Item struct {
	Key    string  `parser:"@Text"`
	Assign *Assign `parser:"@@?"`
}

// Assign is the optional '=' value part of an item
type Assign struct {
	Equals bool   `parser:"@'='"`
	Value  string `parser:"@Text?"`
}

// Param is a decoded query parameter
type Param struct {
	Key   string
	Value string
	Flag  bool // true when the key was given without '='
}

// Values holds decoded parameters, last occurrence wins
type Values struct {
	params []Param
	index  map[string]int
}

var queryParser = participle.MustBuild[Query](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Amp", Pattern: `&`},
		{Name: "Equals", Pattern: `=`},
		{Name: "Text", Pattern: `[^&=]+`},
	})),
)

// Parse parses a query string. A leading '?' is optional.
func Parse(input string) (Values, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(input), "?")
	values := Values{index: make(map[string]int)}
	if raw == "" {
		return values, nil
	}

	parsed, err := queryParser.ParseString("", raw)
	if err != nil {
		return values, errors.WrapSyntaxError(input, err)
	}

	for _, item := range parsed.Items {
		param, err := decodeItem(item)
		if err != nil {
			return values, errors.WrapSyntaxError(input, err)
		}
		values.set(param)
	}

	return values, nil
}

// decodeItem applies URL unescaping and the +key / -key flag shorthand
func decodeItem(item *Item) (Param, error) {
	key, err := url.PathUnescape(strings.TrimSpace(item.Key))
	if err != nil {
		return Param{}, fmt.Errorf("invalid key %q: %w", item.Key, err)
	}

	if item.Assign == nil {
		value := "true"
		switch {
		case strings.HasPrefix(key, "-"):
			key, value = key[1:], "false"
		case strings.HasPrefix(key, "+"):
			key = key[1:]
		}
		if key == "" {
			return Param{}, fmt.Errorf("empty flag name")
		}
		return Param{Key: key, Value: value, Flag: true}, nil
	}

	value, err := url.PathUnescape(item.Assign.Value)
	if err != nil {
		return Param{}, fmt.Errorf("invalid value for %q: %w", key, err)
	}
	if key == "" {
		return Param{}, fmt.Errorf("empty key for value %q", value)
	}

	return Param{Key: key, Value: value}, nil
}

func (v *Values) set(p Param) {
	if i, ok := v.index[p.Key]; ok {
		v.params[i] = p
		return
	}
	v.index[p.Key] = len(v.params)
	v.params = append(v.params, p)
}

// Params returns the decoded parameters in first-seen order
func (v Values) Params() []Param {
	out := make([]Param, len(v.params))
	copy(out, v.params)
	return out
}

// Get returns the raw value of key
func (v Values) Get(key string) (string, bool) {
	i, ok := v.index[key]
	if !ok {
		return "", false
	}
	return v.params[i].Value, true
}

// String returns a pointer to the value of key, or nil when absent
func (v Values) String(key string) *string {
	value, ok := v.Get(key)
	if !ok {
		return nil
	}
	return &value
}

// Bool returns the boolean value of key, or nil when absent
func (v Values) Bool(key string) (*bool, error) {
	value, ok := v.Get(key)
	if !ok {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, errors.NewConfigurationError(key, fmt.Sprintf("expected true or false, got %q", value))
	}
	return &b, nil
}
