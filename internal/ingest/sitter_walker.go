package ingest

import (
	"context"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	is "github.com/syntax-tree/unist-util-is"
)

// SyntaxTree implements Walker for Tree-sitter parsed code. Its nodes are
// exposed as *SyntaxNode values, which is.Is reads through is.Attributer.
type SyntaxTree struct {
	tree   *sitter.Tree
	source []byte
	lang   *sitter.Language
	errs   []ParseError
}

// ParseSource parses src with the grammar registered for langName.
func ParseSource(ctx context.Context, src []byte, langName string) (*SyntaxTree, error) {
	lang, ok := LanguageByName(langName)
	if !ok {
		return nil, fmt.Errorf("unsupported language %q", langName)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("tree-sitter returned nil root")
	}

	st := &SyntaxTree{tree: tree, source: src, lang: lang}
	if root.HasError() {
		collectErrors(root, &st.errs)
	}
	return st, nil
}

// Root returns the root node.
func (t *SyntaxTree) Root() *SyntaxNode {
	return &SyntaxNode{node: t.tree.RootNode(), tree: t}
}

// Errors returns the syntax errors found while parsing.
func (t *SyntaxTree) Errors() []ParseError {
	return t.errs
}

// Err returns the first syntax error, or nil.
func (t *SyntaxTree) Err() error {
	if len(t.errs) == 0 {
		return nil
	}
	return &t.errs[0]
}

// Candidates implements Walker. The selector is a Tree-sitter query; every
// captured node becomes a candidate. An empty selector picks every named
// node.
func (t *SyntaxTree) Candidates(selector string) ([]Candidate, error) {
	var nodes []*sitter.Node
	if selector == "" {
		collectNamed(t.tree.RootNode(), &nodes)
	} else {
		var err error
		if nodes, err = t.query(selector); err != nil {
			return nil, err
		}
	}

	candidates := make([]Candidate, 0, len(nodes))
	for _, n := range nodes {
		sn := t.wrap(n)
		c := Candidate{
			Ordinal: len(candidates),
			Path:    fmt.Sprintf("%s@%d:%d", n.Type(), n.StartPoint().Row+1, n.StartPoint().Column+1),
			Node:    sn,
			Index:   is.NoIndex,
			Line:    int(n.StartPoint().Row) + 1,
		}
		if parent := n.Parent(); parent != nil && sn.index >= 0 {
			c.Index = sn.index
			c.Parent = t.wrap(parent)
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (t *SyntaxTree) query(selector string) ([]*sitter.Node, error) {
	q, err := sitter.NewQuery([]byte(selector), t.lang)
	if err != nil {
		return nil, fmt.Errorf("invalid query '%s': %w", selector, err)
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, t.tree.RootNode())

	type span struct {
		start, end uint32
		typ        string
	}
	seen := make(map[span]bool)

	var nodes []*sitter.Node
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			key := span{c.Node.StartByte(), c.Node.EndByte(), c.Node.Type()}
			if seen[key] {
				continue
			}
			seen[key] = true
			nodes = append(nodes, c.Node)
		}
	}

	// Outer nodes before the nodes they contain.
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].StartByte() != nodes[j].StartByte() {
			return nodes[i].StartByte() < nodes[j].StartByte()
		}
		return nodes[i].EndByte() > nodes[j].EndByte()
	})
	return nodes, nil
}

func collectNamed(n *sitter.Node, nodes *[]*sitter.Node) {
	if n == nil {
		return
	}
	if n.IsNamed() {
		*nodes = append(*nodes, n)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectNamed(n.Child(i), nodes)
	}
}

// wrap resolves the field name and named-child index of n in its parent.
func (t *SyntaxTree) wrap(n *sitter.Node) *SyntaxNode {
	sn := &SyntaxNode{node: n, tree: t, index: is.NoIndex}
	parent := n.Parent()
	if parent == nil {
		return sn
	}

	named := 0
	for i := 0; i < int(parent.ChildCount()); i++ {
		child := parent.Child(i)
		if child == nil {
			continue
		}
		if sameNode(child, n) {
			sn.field = parent.FieldNameForChild(i)
			if child.IsNamed() {
				sn.index = named
			}
			break
		}
		if child.IsNamed() {
			named++
		}
	}
	return sn
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() &&
		a.EndByte() == b.EndByte() &&
		a.Symbol() == b.Symbol()
}

// SyntaxNode adapts a Tree-sitter node to is.Attributer.
//
// Attributes: type, named, field (when the parent names it), text, line and
// column (1-based), and children (the named children, absent on leaves).
type SyntaxNode struct {
	node  *sitter.Node
	tree  *SyntaxTree
	field string
	index int
}

var _ is.Attributer = (*SyntaxNode)(nil)

// Attr implements is.Attributer.
func (n *SyntaxNode) Attr(key string) (any, bool) {
	if n == nil || n.node == nil {
		return nil, false
	}
	switch key {
	case "type":
		return n.node.Type(), true
	case "named":
		return n.node.IsNamed(), true
	case "field":
		if n.field == "" {
			return nil, false
		}
		return n.field, true
	case "text":
		return n.node.Content(n.tree.source), true
	case "line":
		return int(n.node.StartPoint().Row) + 1, true
	case "column":
		return int(n.node.StartPoint().Column) + 1, true
	case "children":
		count := int(n.node.NamedChildCount())
		if count == 0 {
			return nil, false
		}
		children := make([]any, 0, count)
		for i := 0; i < count; i++ {
			if child := n.node.NamedChild(i); child != nil {
				children = append(children, n.tree.wrap(child))
			}
		}
		return children, true
	default:
		return nil, false
	}
}

// Node returns the underlying Tree-sitter node.
func (n *SyntaxNode) Node() *sitter.Node {
	return n.node
}

func (n *SyntaxNode) String() string {
	return n.node.Type()
}
