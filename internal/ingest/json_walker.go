package ingest

import (
	"fmt"
	"sort"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	is "github.com/syntax-tree/unist-util-is"
)

// childrenKey is the attribute holding the children of a parent node.
const childrenKey = "children"

// JSONTree implements Walker for JSON documents such as serialized unist
// trees.
type JSONTree struct {
	root any
}

// ParseJSON parses a JSON document.
func ParseJSON(data []byte) (*JSONTree, error) {
	root, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return NewJSONTree(root), nil
}

// NewJSONTree wraps already decoded JSON-like data (maps, slices and
// scalars).
func NewJSONTree(root any) *JSONTree {
	return &JSONTree{root: root}
}

// Root returns the decoded document.
func (t *JSONTree) Root() any {
	return t.root
}

// Candidates implements Walker. The selector is a JSONPath expression.
func (t *JSONTree) Candidates(selector string) ([]Candidate, error) {
	var paths []jp.Expr

	if selector == "" {
		jp.Walk(t.root, func(path jp.Expr, _ any) {
			// The path is reused between calls.
			paths = append(paths, append(jp.Expr{}, path...))
		})
		if !hasRoot(paths) {
			paths = append(paths, jp.R())
		}
	} else {
		x, err := jp.ParseString(selector)
		if err != nil {
			return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
		}
		paths = x.Locate(t.root, 0)
	}

	sort.SliceStable(paths, func(i, j int) bool {
		return comparePaths(paths[i], paths[j]) < 0
	})

	candidates := make([]Candidate, 0, len(paths))
	for _, path := range paths {
		steps := normalize(path)
		value, ok := resolve(t.root, steps)
		if !ok {
			continue
		}

		c := Candidate{
			Ordinal: len(candidates),
			Path:    formatPath(steps),
			Node:    value,
			Index:   is.NoIndex,
		}
		if n := len(steps); n >= 2 {
			if nth, isNth := steps[n-1].(jp.Nth); isNth && nth >= 0 && steps[n-2] == jp.Child(childrenKey) {
				if parent, found := resolve(t.root, steps[:n-2]); found {
					c.Index = int(nth)
					c.Parent = parent
				}
			}
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}

// normalize keeps the child and index steps of a located path, dropping the
// root marker.
func normalize(path jp.Expr) []jp.Frag {
	steps := make([]jp.Frag, 0, len(path))
	for _, frag := range path {
		switch frag.(type) {
		case jp.Child, jp.Nth:
			steps = append(steps, frag)
		}
	}
	return steps
}

// resolve follows steps from root. Negative indexes count from the end, as
// in JSONPath.
func resolve(root any, steps []jp.Frag) (any, bool) {
	cur := root
	for _, step := range steps {
		switch s := step.(type) {
		case jp.Child:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			if cur, ok = m[string(s)]; !ok {
				return nil, false
			}
		case jp.Nth:
			list, ok := cur.([]any)
			if !ok {
				return nil, false
			}
			i := int(s)
			if i < 0 {
				i += len(list)
			}
			if i < 0 || i >= len(list) {
				return nil, false
			}
			cur = list[i]
		}
	}
	return cur, true
}

func hasRoot(paths []jp.Expr) bool {
	for _, path := range paths {
		if len(normalize(path)) == 0 {
			return true
		}
	}
	return false
}

func formatPath(steps []jp.Frag) string {
	return append(jp.Expr{jp.Root('$')}, steps...).String()
}

// comparePaths orders paths in document pre-order: a parent before its
// descendants, list items by index and object keys alphabetically.
func comparePaths(a, b jp.Expr) int {
	sa, sb := normalize(a), normalize(b)
	for i := 0; i < len(sa) && i < len(sb); i++ {
		if c := compareFrags(sa[i], sb[i]); c != 0 {
			return c
		}
	}
	return len(sa) - len(sb)
}

func compareFrags(a, b jp.Frag) int {
	switch fa := a.(type) {
	case jp.Nth:
		if fb, ok := b.(jp.Nth); ok {
			return int(fa) - int(fb)
		}
		return -1
	case jp.Child:
		fb, ok := b.(jp.Child)
		if !ok {
			return 1
		}
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
	}
	return 0
}
