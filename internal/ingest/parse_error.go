package ingest

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// ParseError locates a syntax error in parsed source. Tree-sitter recovers
// from errors, so a tree with ParseErrors is still usable.
type ParseError struct {
	File    string
	Line    uint32 // 0-indexed
	Column  uint32 // 0-indexed
	Message string
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line+1, e.Column+1, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line+1, e.Column+1, e.Message)
}

// collectErrors gathers all ERROR/MISSING nodes in the tree.
func collectErrors(node *sitter.Node, errs *[]ParseError) {
	if node.IsError() || node.IsMissing() {
		msg := "syntax error"
		if node.IsMissing() {
			msg = fmt.Sprintf("missing %s", node.Type())
		}
		*errs = append(*errs, ParseError{
			Line:    node.StartPoint().Row,
			Column:  node.StartPoint().Column,
			Message: msg,
		})
		return // don't recurse into error children
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.HasError() || child.IsError() || child.IsMissing() {
			collectErrors(child, errs)
		}
	}
}
