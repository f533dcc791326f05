package rules

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	is "github.com/syntax-tree/unist-util-is"
	"github.com/syntax-tree/unist-util-is/api"
)

const hclRules = `
version = "1"

rule "top-heading" {
  test     = { type = "heading", depth = 1 }
  message  = "top level heading"
  selector = "$..children[*]"
}

rule "inline" {
  test = ["strong", "emphasis"]
}

rule "any" {}
`

const jsonRules = `{
  "version": "1",
  "rules": [
    {"name": "top-heading", "test": {"type": "heading", "depth": 1}, "message": "top level heading", "selector": "$..children[*]"},
    {"name": "inline", "test": ["strong", "emphasis"]},
    {"name": "any"}
  ]
}`

const yamlRules = `
version: "1"
rules:
  - name: top-heading
    test: {type: heading, depth: 1}
    message: top level heading
    selector: $..children[*]
  - name: inline
    test: [strong, emphasis]
  - name: any
`

func TestLoad(t *testing.T) {
	fs := memfs.New()
	files := map[string]string{
		"rules.hcl":  hclRules,
		"rules.json": jsonRules,
		"rules.yaml": yamlRules,
	}
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
	}

	heading := map[string]any{"type": "heading", "depth": 1}
	subheading := map[string]any{"type": "heading", "depth": 2}
	strong := map[string]any{"type": "strong"}

	for name := range files {
		t.Run(name, func(t *testing.T) {
			rules, err := Load(fs, name)
			require.NoError(t, err)
			require.Len(t, rules, 3)

			assert.Equal(t, "top-heading", rules[0].Name)
			assert.Equal(t, "top level heading", rules[0].Message)
			assert.Equal(t, "$..children[*]", rules[0].Selector)
			assertMatch(t, rules[0], heading, true)
			assertMatch(t, rules[0], subheading, false)

			assertMatch(t, rules[1], strong, true)
			assertMatch(t, rules[1], heading, false)

			assert.Nil(t, rules[2].Test)
			assertMatch(t, rules[2], subheading, true)
		})
	}
}

func assertMatch(t *testing.T, r Rule, node any, want bool) {
	t.Helper()
	got, err := is.Is(node, r.Test)
	require.NoError(t, err)
	assert.Equal(t, want, got, "rule %s on %v", r.Name, node)
}

func TestLoad_Errors(t *testing.T) {
	fs := memfs.New()

	_, err := Load(fs, "missing.hcl")
	assert.Error(t, err)

	require.NoError(t, util.WriteFile(fs, "rules.txt", []byte("x"), 0o644))
	_, err = Load(fs, "rules.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	require.NoError(t, util.WriteFile(fs, "broken.json", []byte(`{"rules": [`), 0o644))
	_, err = Load(fs, "broken.json")
	assert.Error(t, err)

	require.NoError(t, util.WriteFile(fs, "broken.hcl", []byte(`rule "x" {`), 0o644))
	_, err = Load(fs, "broken.hcl")
	assert.Error(t, err)
}

func TestParse_BadTest(t *testing.T) {
	_, err := Parse("rules.yaml", []byte("rules:\n  - name: bad\n    test: 42\n"))

	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "bad", derr.Rule)
	assert.ErrorIs(t, err, is.ErrMalformedTest)

	_, err = Parse("rules.hcl", []byte(`rule "nested" { test = ["a", ["b"]] }`))
	assert.ErrorIs(t, err, is.ErrMalformedTest)
}

func TestCompile(t *testing.T) {
	_, err := Compile([]api.Rule{{Name: "a"}, {Name: "a"}})
	assert.ErrorIs(t, err, ErrDuplicateRule)

	_, err = Compile([]api.Rule{{Test: "x"}})
	var derr *DecodeError
	assert.ErrorAs(t, err, &derr)

	rules, err := Compile([]api.Rule{{Name: "a", Test: "x"}, {Name: "b"}})
	require.NoError(t, err)

	picked, err := Select(rules, "b", "a")
	require.NoError(t, err)
	assert.Equal(t, "b", picked[0].Name)
	assert.Equal(t, "a", picked[1].Name)

	_, err = Select(rules, "c")
	assert.Error(t, err)
}
