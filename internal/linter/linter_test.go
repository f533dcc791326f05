package linter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	is "github.com/syntax-tree/unist-util-is"
	"github.com/syntax-tree/unist-util-is/internal/rules"
)

func TestLint_NilSlice(t *testing.T) {
	code := []byte(`package main

var names []string
var ids = []int{1}
var count int

func main() {
	var local []byte
	_ = local
}
`)

	diags, err := Lint(context.Background(), code, "go", DefaultRules("go"))
	require.NoError(t, err)
	require.Len(t, diags, 2)

	assert.Equal(t, "nil-slice", diags[0].Rule)
	assert.Equal(t, uint32(2), diags[0].Line)
	assert.Equal(t, uint32(7), diags[1].Line)
	assert.Contains(t, diags[0].String(), "3:5: nil-slice: Nil slice declaration")
}

func TestLint_CustomRules(t *testing.T) {
	code := []byte(`def hello():
    print("world")

def add(a, b):
    return a + b
`)
	rs := []rules.Rule{
		{Name: "functions", Test: is.Type("function_definition")},
		{Name: "add", Test: is.Props{"type": "identifier", "text": "add"}, Message: "found add", Selector: `(function_definition name: (identifier) @name)`},
	}

	diags, err := Lint(context.Background(), code, "python", rs)
	require.NoError(t, err)
	require.Len(t, diags, 3)

	assert.Equal(t, "functions", diags[0].Rule)
	assert.Equal(t, "matches function_definition", diags[0].Message)
	assert.Equal(t, uint32(3), diags[1].Line)
	assert.Equal(t, "functions", diags[1].Rule)
	assert.Equal(t, "add", diags[2].Rule)
	assert.Equal(t, "found add", diags[2].Message)
}

func TestLint_SyntaxErrorsAreReported(t *testing.T) {
	diags, err := Lint(context.Background(), []byte("package main\n\nvar x []int\nfunc broken( {\n"), "go", DefaultRules("go"))
	require.NoError(t, err)

	var rulesSeen []string
	for _, d := range diags {
		rulesSeen = append(rulesSeen, d.Rule)
	}
	assert.Contains(t, rulesSeen, SyntaxRule)
	assert.Contains(t, rulesSeen, "nil-slice")
}

func TestLint_Errors(t *testing.T) {
	_, err := Lint(context.Background(), []byte("x"), "cobol", nil)
	assert.Error(t, err)

	_, err = Lint(context.Background(), []byte("package main\n"), "go", []rules.Rule{{Name: "bad", Selector: "(unclosed"}})
	assert.Error(t, err)

	_, err = Lint(context.Background(), []byte("package main\n"), "go", []rules.Rule{{Name: "bad", Test: is.AnyOf{is.AnyOf{}}}})
	assert.ErrorIs(t, err, is.ErrMalformedTest)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Lint(ctx, []byte("package main\n"), "go", DefaultRules("go"))
	assert.Error(t, err)
}

func TestDefaultRules(t *testing.T) {
	assert.Len(t, DefaultRules("go"), 1)
	assert.Empty(t, DefaultRules("python"))
}
