package imports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisegam/codesleuth/pkg/parser"
)

func extract(t *testing.T, code string) []string {
	t.Helper()
	p := parser.New()
	defer p.Close()
	result, err := p.Parse(context.Background(), []byte(code), "test.py")
	require.NoError(t, err)
	defer result.Close()
	return New().AnalyzeParsed(result)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []string
	}{
		{"plain import", "import os\n", []string{"os"}},
		{"dotted import", "import os.path\n", []string{"os.path"}},
		{"aliased import", "import numpy as np\n", []string{"numpy"}},
		{"multiple modules", "import os, sys as system, json\n", []string{"os", "sys", "json"}},
		{"from import members", "from pkg.mod import x, y as z\n", []string{"x", "y"}},
		{"parenthesized members", "from m import (\n    a,\n    b,\n)\n", []string{"a", "b"}},
		{"relative import", "from . import sibling\nfrom ..parent import thing\n", []string{"sibling", "thing"}},
		{"wildcard", "from m import *\n", []string{Wildcard}},
		{"future import", "from __future__ import annotations\n", []string{"annotations"}},
		{"no imports", "x = 1\n", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extract(t, tt.code))
		})
	}
}

func TestExtract_NestedAndDuplicates(t *testing.T) {
	code := `
import module_b

def load():
    import json
    if True:
        from module_b import helper
    return json

try:
    import ujson as json
except ImportError:
    import json

import module_b
`
	assert.Equal(t,
		[]string{"module_b", "json", "helper", "ujson", "json", "module_b"},
		extract(t, code),
		"occurrence order, nested statements included, duplicates kept")
}

func TestExtract_ModuleNotEmittedForFromImport(t *testing.T) {
	names := extract(t, "from module_a import module_a_func\n")
	assert.Equal(t, []string{"module_a_func"}, names)
	assert.NotContains(t, names, "module_a")
}

func TestExtract_Whitespace(t *testing.T) {
	names := extract(t, "import a . b\nfrom m import (x ,\n    y)\n")
	assert.Equal(t, []string{"a.b", "x", "y"}, names)
}

func TestAnalyzeParsed(t *testing.T) {
	p := parser.New()
	defer p.Close()

	result, err := p.Parse(context.Background(), []byte("import a\nfrom b import c\n"), "x.py")
	require.NoError(t, err)
	defer result.Close()

	a := New()
	assert.Equal(t, []string{"a", "c"}, a.AnalyzeParsed(result))
	assert.Equal(t, Extract(result), a.AnalyzeParsed(result))
}
