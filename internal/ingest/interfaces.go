package ingest

import (
	"fmt"

	is "github.com/syntax-tree/unist-util-is"
)

// Walker abstracts over JSON documents (ojg) and syntax trees (Tree-sitter).
// It lists the nodes of a tree that a selector picks, each with the
// position is.Is needs to validate it.
type Walker interface {
	// Candidates returns the values picked by selector in pre-order. An
	// empty selector picks every value of the tree. The selector syntax is
	// the walker's own: JSONPath for JSON, a Tree-sitter query for code.
	Candidates(selector string) ([]Candidate, error)
}

// Candidate is a value from a tree together with its position.
type Candidate struct {
	// Ordinal numbers the candidates of one Candidates call from 0.
	Ordinal int
	// Path locates the value for humans, e.g. "$.children[0]".
	Path string
	// Node is the value itself; it may or may not be a node.
	Node any
	// Index is the offset of Node in Parent's children, or is.NoIndex.
	Index int
	// Parent is the node whose children hold Node, or nil.
	Parent any
	// Line is the 1-based source line, 0 when unknown.
	Line int
}

// Options returns the is options that describe the candidate's position.
func (c Candidate) Options() []is.Option {
	if c.Parent == nil || c.Index == is.NoIndex {
		return nil
	}
	return []is.Option{is.At(c.Index, c.Parent)}
}

// NodeType returns the type of the candidate, or "" when it is not a node.
func (c Candidate) NodeType() string {
	if !is.IsNode(c.Node) {
		return ""
	}
	typ, _ := is.Attr(c.Node, "type")
	return fmt.Sprint(typ)
}
