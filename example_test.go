package is_test

import (
	"fmt"

	is "github.com/syntax-tree/unist-util-is"
)

func ExampleIs() {
	node := map[string]any{"type": "strong"}
	parent := map[string]any{"type": "paragraph", "children": []any{node}}

	ok, _ := is.Is(node, is.Type("strong"))
	fmt.Println(ok)

	ok, _ = is.Is(node, is.AnyOf{is.Type("emphasis"), is.Props{"type": "strong"}}, is.At(0, parent))
	fmt.Println(ok)

	_, err := is.Is(node, nil, is.WithIndex(0))
	fmt.Println(err)
	// Output:
	// true
	// true
	// expected both parent and index
}

func ExampleConvert() {
	heading := is.MustConvert(is.Props{"type": "heading", "depth": 1})

	for _, node := range []map[string]any{
		{"type": "heading", "depth": 1.0},
		{"type": "heading", "depth": 2.0},
		{"type": "paragraph"},
	} {
		fmt.Println(heading(node, is.NoIndex, nil, nil))
	}
	// Output:
	// true
	// false
	// false
}
