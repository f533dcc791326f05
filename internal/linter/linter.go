// Package linter reports the syntax nodes of source files that match rules.
package linter

import (
	"context"
	"fmt"
	"sort"

	is "github.com/syntax-tree/unist-util-is"
	"github.com/syntax-tree/unist-util-is/internal/ingest"
	"github.com/syntax-tree/unist-util-is/internal/rules"
)

// SyntaxRule is the rule name of diagnostics for unparsable source.
const SyntaxRule = "syntax"

type Diagnostic struct {
	Rule    string
	Message string
	Line    uint32 // 0-indexed
	Column  uint32 // 0-indexed
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Line+1, d.Column+1, d.Rule, d.Message)
}

// Lint parses content as lang and reports every candidate matched by a
// rule. Syntax errors do not stop linting; they are reported under
// SyntaxRule.
func Lint(ctx context.Context, content []byte, lang string, rs []rules.Rule) ([]Diagnostic, error) {
	tree, err := ingest.ParseSource(ctx, content, lang)
	if err != nil {
		return nil, err
	}

	var diags []Diagnostic
	for _, pe := range tree.Errors() {
		diags = append(diags, Diagnostic{
			Rule:    SyntaxRule,
			Message: pe.Message,
			Line:    pe.Line,
			Column:  pe.Column,
		})
	}

	// Rules often share a selector.
	bySelector := make(map[string][]ingest.Candidate)

	for _, r := range rs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidates, ok := bySelector[r.Selector]
		if !ok {
			if candidates, err = tree.Candidates(r.Selector); err != nil {
				return nil, fmt.Errorf("rule %s: %w", r.Name, err)
			}
			bySelector[r.Selector] = candidates
		}

		for _, c := range candidates {
			match, err := is.Is(c.Node, r.Test, c.Options()...)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", r.Name, err)
			}
			if !match {
				continue
			}
			diags = append(diags, diagnostic(r, c))
		}
	}

	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		return diags[i].Column < diags[j].Column
	})
	return diags, nil
}

func diagnostic(r rules.Rule, c ingest.Candidate) Diagnostic {
	d := Diagnostic{Rule: r.Name, Message: r.Message}
	if d.Message == "" {
		d.Message = fmt.Sprintf("matches %s", c.NodeType())
	}
	if sn, ok := c.Node.(*ingest.SyntaxNode); ok {
		p := sn.Node().StartPoint()
		d.Line, d.Column = p.Row, p.Column
	}
	return d
}

// DefaultRules returns the built-in rules for lang.
func DefaultRules(lang string) []rules.Rule {
	switch lang {
	case "go", "golang":
		return []rules.Rule{{
			Name:     "nil-slice",
			Test:     is.Func(nilSliceDecl),
			Message:  "Nil slice declaration. Consider 'make([]T, 0)' for JSON compatibility.",
			Selector: `(var_declaration (var_spec) @decl)`,
		}}
	default:
		return nil
	}
}

// nilSliceDecl matches var specs with a slice type and no value, such as
// `var x []T`.
func nilSliceDecl(node any, _ int, _ any, _ any) bool {
	if typ, _ := is.Attr(node, "type"); typ != "var_spec" {
		return false
	}
	children, _ := is.Attr(node, "children")
	list, _ := children.([]any)

	sliceType := false
	for _, child := range list {
		field, _ := is.Attr(child, "field")
		switch field {
		case "value":
			return false
		case "type":
			typ, _ := is.Attr(child, "type")
			sliceType = typ == "slice_type"
		}
	}
	return sliceType
}
