package is

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type attrNode struct {
	attrs map[string]any
}

func (n attrNode) Attr(key string) (any, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

func TestAttr(t *testing.T) {
	type named string
	type tagged struct {
		Kind    string `json:"type"`
		Ignored string `json:"-"`
		Value   int    `json:"value,omitempty"`
		Line    int
		private string
	}

	tests := []struct {
		name  string
		value any
		key   string
		want  any
		found bool
	}{
		{"nil", nil, "type", nil, false},
		{"map", map[string]any{"type": "a"}, "type", "a", true},
		{"map missing", map[string]any{"type": "a"}, "value", nil, false},
		{"named map", map[named]string{"type": "b"}, "type", "b", true},
		{"int keyed map", map[int]string{1: "c"}, "type", nil, false},
		{"attributer", attrNode{attrs: map[string]any{"type": "d"}}, "type", "d", true},
		{"json tag", tagged{Kind: "e"}, "type", "e", true},
		{"json tag hides field name", tagged{Kind: "e"}, "kind", nil, false},
		{"json dash", tagged{Ignored: "x"}, "ignored", nil, false},
		{"json tag with options", tagged{Value: 3}, "value", 3, true},
		{"field name", tagged{Line: 7}, "line", 7, true},
		{"unexported", tagged{private: "p"}, "private", nil, false},
		{"pointer", &tagged{Kind: "f"}, "type", "f", true},
		{"nil pointer", (*tagged)(nil), "type", nil, false},
		{"string", "type", "type", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Attr(tt.value, tt.key)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruthy(t *testing.T) {
	var nilMap map[string]any
	var nilSlice []any
	var nilPtr *int

	falsy := []any{nil, false, 0, int8(0), uint(0), 0.0, float32(0), math.NaN(), "", nilMap, nilSlice, nilPtr}
	for _, v := range falsy {
		assert.False(t, Truthy(v), "%#v", v)
	}

	one := 1
	truthy := []any{true, 1, -1, uint8(2), 0.5, math.Inf(1), "0", []any{}, map[string]any{}, &one, struct{}{}}
	for _, v := range truthy {
		assert.True(t, Truthy(v), "%#v", v)
	}
}

func TestIsNode(t *testing.T) {
	assert.True(t, IsNode(map[string]any{"type": "x"}))
	assert.True(t, IsNode(attrNode{attrs: map[string]any{"type": "x"}}))
	assert.False(t, IsNode(map[string]any{"type": ""}))
	assert.False(t, IsNode(map[string]any{"type": []byte("x")}))
	assert.False(t, IsNode(map[string]any{"value": "x"}))
	assert.False(t, IsNode(nil))
}
