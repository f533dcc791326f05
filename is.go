package is

import "fmt"

// Option sets the position or context of the node passed to Is.
type Option func(*position)

type position struct {
	index    int
	hasIndex bool
	parent   any
	context  any
}

// WithIndex sets the index of the node in the children of its parent. It
// must be combined with WithParent.
func WithIndex(index int) Option {
	return func(p *position) {
		p.index = index
		p.hasIndex = true
	}
}

// WithParent sets the parent of the node. It must be combined with
// WithIndex. A nil parent counts as not given.
func WithParent(parent any) Option {
	return func(p *position) {
		p.parent = parent
	}
}

// At sets both the index and the parent of the node.
func At(index int, parent any) Option {
	return func(p *position) {
		WithIndex(index)(p)
		WithParent(parent)(p)
	}
}

// WithContext sets the value passed as context to Func and Cast tests.
func WithContext(context any) Option {
	return func(p *position) {
		p.context = context
	}
}

// Is reports whether node is a node that passes test.
//
// Input is validated in a fixed order, so that a call with several
// problems always reports the same one: a malformed test
// (ErrMalformedTest), a negative index (ErrInvalidIndex), a parent that is
// not a node with children (ErrInvalidParent), then an index without a
// parent or the reverse (ErrMissingPairing). A node that is not a node is
// not an error: Is returns false without running the test.
func Is(node any, test Test, opts ...Option) (bool, error) {
	check, err := Convert(test)
	if err != nil {
		return false, err
	}

	pos := position{index: NoIndex}
	for _, opt := range opts {
		opt(&pos)
	}

	return run(node, check, pos)
}

// run validates pos and applies check to node.
func run(node any, check Check, pos position) (bool, error) {
	if pos.hasIndex && pos.index < 0 {
		return false, fmt.Errorf("%w: got %d", ErrInvalidIndex, pos.index)
	}

	hasParent := pos.parent != nil
	if hasParent && !isParent(pos.parent) {
		return false, fmt.Errorf("%w: got %T", ErrInvalidParent, pos.parent)
	}

	if hasParent != pos.hasIndex {
		return false, ErrMissingPairing
	}

	if !IsNode(node) {
		return false, nil
	}

	return check(node, pos.index, pos.parent, pos.context), nil
}

func isParent(v any) bool {
	if node, _ := Is(v, nil); !node {
		return false
	}
	children, _ := Attr(v, "children")
	return Truthy(children)
}
