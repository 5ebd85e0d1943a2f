package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/routeloader/internal/errors"
)

const routesSource = `import { Routes } from '@angular/router';

export const routes: Routes = [
  { path: '', component: HomeComponent },
  { path: 'lazy', loadChildren: './lazy/lazy.module#LazyModule' },
  { path: "admin", loadChildren : "../admin/admin.module#AdminModule?loader=sync" },
];
`

func TestScanExtractor(t *testing.T) {
	source := []byte(routesSource)

	matches, err := NewScanExtractor().Extract(context.Background(), "app.routes.ts", source)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	first := matches[0]
	assert.Equal(t, "loadChildren: './lazy/lazy.module#LazyModule'", first.Text)
	assert.Equal(t, "./lazy/lazy.module#LazyModule", first.Destination)
	assert.Equal(t, "'./lazy/lazy.module#LazyModule'", first.Value(source))
	assert.Equal(t, first.Text, string(source[first.Start:first.End]))
	assert.Equal(t, 5, first.Line)
	assert.Equal(t, 19, first.Column)

	second := matches[1]
	assert.Equal(t, "../admin/admin.module#AdminModule?loader=sync", second.Destination)
	assert.Equal(t, `"../admin/admin.module#AdminModule?loader=sync"`, second.Value(source))
	assert.Greater(t, second.Start, first.End)
}

func TestScanExtractorIgnoresNonLiterals(t *testing.T) {
	source := []byte(`
const routes = [
  { path: 'a', loadChildren: getDetail },
  { path: 'b', loadChildren: './b' + '#B' },
  { path: 'c', loadChildren: () => import('./c').then(m => m.C) },
  { path: 'd', reloadChildren: './d#D' },
];`)

	matches, err := NewScanExtractor().Extract(context.Background(), "routes.ts", source)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSyntaxExtractor(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		source   string
		expected []string
	}{
		{
			name:     "string literals",
			filename: "app.routes.ts",
			source:   routesSource,
			expected: []string{"./lazy/lazy.module#LazyModule", "../admin/admin.module#AdminModule?loader=sync"},
		},
		{
			name:     "concatenation",
			filename: "routes.ts",
			source:   "const r = [{ loadChildren: './lazy/' + 'lazy.module' + '#' + 'LazyModule' }];",
			expected: []string{"./lazy/lazy.module#LazyModule"},
		},
		{
			name:     "parenthesized concatenation",
			filename: "routes.ts",
			source:   "const r = [{ loadChildren: ('./a' + ('/b' + '#B')) }];",
			expected: []string{"./a/b#B"},
		},
		{
			name:     "template string with static substitution",
			filename: "routes.ts",
			source:   "const r = [{ loadChildren: `./feature/${'feature' + '.module'}#FeatureModule` }];",
			expected: []string{"./feature/feature.module#FeatureModule"},
		},
		{
			name:     "quoted key and escapes",
			filename: "routes.js",
			source:   `module.exports = [{ "loadChildren": './it\'s\x2fhere#Here' }];`,
			expected: []string{"./it's/here#Here"},
		},
		{
			name:     "tsx source",
			filename: "routes.tsx",
			source:   "const el = <Router routes={[{ loadChildren: './tsx#Tsx' }]} />;",
			expected: []string{"./tsx#Tsx"},
		},
		{
			name:     "function valued loaders are skipped",
			filename: "routes.ts",
			source:   "const r = [{ loadChildren: () => import('./a').then(m => m.A) }, { loadChildren: function () { return B; } }, { loadChildren: './c#C' }];",
			expected: []string{"./c#C"},
		},
		{
			name:     "no declarations",
			filename: "routes.ts",
			source:   "export const routes = [{ path: '', component: HomeComponent }];",
			expected: nil,
		},
	}

	extractor := NewSyntaxExtractor(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := []byte(tt.source)
			matches, err := extractor.Extract(context.Background(), tt.filename, source)
			require.NoError(t, err)

			var got []string
			for _, m := range matches {
				got = append(got, m.Destination)
				assert.Equal(t, m.Text, string(source[m.Start:m.End]))
				assert.True(t, m.Start <= m.ValueStart && m.ValueEnd <= m.End)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSyntaxExtractorRejectsDynamicValues(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		nodeKind string
	}{
		{"identifier", "const r = [{ loadChildren: getDetail2 }];", "identifier"},
		{"call", "const r = [{ loadChildren: pick('a') }];", "call_expression"},
		{"dynamic template", "const r = [{ loadChildren: `./${name}#A` }];", "identifier"},
		{"non plus operator", "const r = [{ loadChildren: './a' - 1 }];", "binary_expression"},
		{"concatenation with reference", "const r = [{ loadChildren: './a' + suffix }];", "identifier"},
		{"concatenation with number", "const r = [{ loadChildren: 'a' + 1 }];", "number"},
	}

	extractor := NewSyntaxExtractor(nil)

	// function values are lazy already and never reach evaluation
	for _, source := range []string{
		"const r = [{ loadChildren: async () => (await import('./a')).A }];",
		"const r = [{ loadChildren: function load() { return getDetail2; } }];",
	} {
		matches, err := extractor.Extract(context.Background(), "routes.ts", []byte(source))
		require.NoError(t, err, source)
		assert.Empty(t, matches, source)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractor.Extract(context.Background(), "routes.ts", []byte(tt.source))
			require.Error(t, err)

			var staticErr *errors.StaticStringError
			require.ErrorAs(t, err, &staticErr)
			assert.Equal(t, tt.nodeKind, staticErr.NodeKind)
			assert.Contains(t, err.Error(), "cannot resolve static string")
			assert.Equal(t, "routes.ts", staticErr.Location().File)
			assert.Equal(t, 1, staticErr.Location().Line)
		})
	}
}

func TestLanguageFor(t *testing.T) {
	assert.Equal(t, TypeScript, LanguageFor("a.ts"))
	assert.Equal(t, TypeScript, LanguageFor("a.d.ts"))
	assert.Equal(t, TSX, LanguageFor("a.TSX"))
	assert.Equal(t, JavaScript, LanguageFor("a.mjs"))
	assert.Equal(t, JavaScript, LanguageFor("a.jsx"))
	assert.Equal(t, TypeScript, LanguageFor("a"))
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`\'\"\\`, `'"\`},
		{`\x41B\u{43}`, "ABC"},
		{"a\\\nb", "ab"},
		{`\d`, "d"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := unescape(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	for _, bad := range []string{`abc\`, `\x4`, `\u{41`, `\uZZZZ`} {
		_, err := unescape(bad)
		assert.Error(t, err, bad)
	}
}
