package is

import (
	"fmt"
	"sort"
)

// NoIndex is the index passed to a Check or predicate when the position of
// the node is unknown. The parent is nil in that case.
const NoIndex = -1

// Check is a compiled test. It reports whether node passes; index and
// parent locate node in its tree (NoIndex and nil when unknown), and
// context is handed to predicate tests unchanged.
//
// A Check does not validate its input; use Is for that.
type Check func(node any, index int, parent any, context any) bool

// Test is a node test: nil, Type, Props, Func, Cast or AnyOf.
type Test interface {
	convert() (Check, error)
}

// Type passes for nodes whose type equals the string.
type Type string

// Props passes for nodes that have every listed attribute with a strictly
// equal value. Attributes the node has but Props does not list are
// ignored; an empty Props passes for any node.
type Props map[string]any

// Func is a caller predicate.
type Func func(node any, index int, parent any, context any) bool

// Cast is a caller predicate returning any value; the result passes when it
// is truthy (see Truthy). It suits predicates written for dynamically
// typed hosts, such as scripts.
type Cast func(node any, index int, parent any, context any) any

// AnyOf passes when one of its tests passes. Tests run in order and
// evaluation stops at the first pass. An empty AnyOf passes for nothing.
// AnyOf cannot contain another AnyOf.
type AnyOf []Test

func always(any, int, any, any) bool { return true }

func (t Type) convert() (Check, error) {
	want := string(t)
	return func(node any, _ int, _ any, _ any) bool {
		if !Truthy(node) {
			return false
		}
		typ, found := Attr(node, "type")
		if !found {
			return false
		}
		s, isString := stringValue(typ)
		return isString && s == want
	}, nil
}

type prop struct {
	key   string
	value any
}

func (p Props) convert() (Check, error) {
	props := make([]prop, 0, len(p))
	for key, value := range p {
		props = append(props, prop{key: key, value: value})
	}
	sort.Slice(props, func(i, j int) bool { return props[i].key < props[j].key })

	return func(node any, _ int, _ any, _ any) bool {
		for _, want := range props {
			got, _ := Attr(node, want.key)
			if !strictEqual(got, want.value) {
				return false
			}
		}
		return true
	}, nil
}

func (f Func) convert() (Check, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil Func", ErrMalformedTest)
	}
	return Check(f), nil
}

func (c Cast) convert() (Check, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil Cast", ErrMalformedTest)
	}
	return func(node any, index int, parent any, context any) bool {
		return Truthy(c(node, index, parent, context))
	}, nil
}

func (a AnyOf) convert() (Check, error) {
	checks := make([]Check, len(a))
	for i, test := range a {
		if _, nested := test.(AnyOf); nested {
			return nil, fmt.Errorf("%w: AnyOf nested at element %d", ErrMalformedTest, i)
		}
		check, err := Convert(test)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		checks[i] = check
	}

	return func(node any, index int, parent any, context any) bool {
		for _, check := range checks {
			if check(node, index, parent, context) {
				return true
			}
		}
		return false
	}, nil
}

// Convert compiles test into a Check. The Check can be kept and called
// for many nodes; it assumes the caller already knows the node is a node
// and its position is consistent.
func Convert(test Test) (Check, error) {
	if test == nil {
		return always, nil
	}
	return test.convert()
}

// MustConvert is like Convert but panics if test is malformed. It simplifies
// initialization of package-level checks.
func MustConvert(test Test) Check {
	check, err := Convert(test)
	if err != nil {
		panic(err)
	}
	return check
}
