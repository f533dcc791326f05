package is

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromValue(t *testing.T) {
	node := map[string]any{"type": "strong", "value": "x"}

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, true},
		{"nil pointer", (*struct{})(nil), true},
		{"string", "strong", true},
		{"other string", "emphasis", false},
		{"map", map[string]any{"value": "x"}, true},
		{"string map", map[string]string{"value": "y"}, false},
		{"struct", struct {
			Type string `json:"type"`
		}{"strong"}, true},
		{"list", []any{"emphasis", "strong"}, true},
		{"string list", []string{"a", "b"}, false},
		{"func", func(n any) bool { return n != nil }, true},
		{"full func", func(any, int, any, any) bool { return false }, false},
		{"cast func", func(any, int, any, any) any { return 1 }, true},
		{"test", Type("strong"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test, err := FromValue(tt.value)
			require.NoError(t, err)

			got, err := Is(node, test)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromValue_Malformed(t *testing.T) {
	for _, v := range []any{false, 1, 2.5, []any{"a", []any{"b"}}, []any{"a", 3}, map[int]any{}, func() {}} {
		_, err := FromValue(v)
		assert.ErrorIs(t, err, ErrMalformedTest, "%#v", v)
	}
}

func TestIsValue(t *testing.T) {
	node := map[string]any{"type": "strong"}
	parent := map[string]any{"type": "paragraph", "children": []any{}}

	t.Run("invalid test", func(t *testing.T) {
		_, err := IsValue(nil, false, nil, nil, nil)
		assert.ErrorIs(t, err, ErrMalformedTest)
	})

	for name, index := range map[string]any{
		"negative":   -1,
		"infinity":   math.Inf(1),
		"nan":        math.NaN(),
		"fraction":   1.5,
		"bool":       false,
		"string":     "0",
		"negative 0": -0.5,
	} {
		t.Run("invalid index "+name, func(t *testing.T) {
			_, err := IsValue(node, nil, index, parent, nil)
			assert.ErrorIs(t, err, ErrInvalidIndex)
		})
	}

	t.Run("invalid parent", func(t *testing.T) {
		_, err := IsValue(node, nil, 0, map[string]any{}, nil)
		assert.ErrorIs(t, err, ErrInvalidParent)

		_, err = IsValue(node, nil, 0, map[string]any{"type": "paragraph"}, nil)
		assert.ErrorIs(t, err, ErrInvalidParent)
	})

	t.Run("missing pairing", func(t *testing.T) {
		_, err := IsValue(node, nil, 0, nil, nil)
		assert.ErrorIs(t, err, ErrMissingPairing)

		_, err = IsValue(node, nil, nil, parent, nil)
		assert.ErrorIs(t, err, ErrMissingPairing)
	})

	t.Run("malformed test wins over bad index", func(t *testing.T) {
		_, err := IsValue(node, 42, -1, nil, nil)
		assert.ErrorIs(t, err, ErrMalformedTest)
	})

	t.Run("no arguments", func(t *testing.T) {
		got, err := IsValue(nil, nil, nil, nil, nil)
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("decoded index", func(t *testing.T) {
		test := func(_ any, index int, _ any, context any) bool {
			return index == 5 && context == "ctx"
		}
		got, err := IsValue(node, test, float64(5), parent, "ctx")
		require.NoError(t, err)
		assert.True(t, got)

		got, err = IsValue(node, test, uint8(5), parent, "ctx")
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("node as its own test", func(t *testing.T) {
		got, err := IsValue(parent, parent, nil, nil, nil)
		require.NoError(t, err)
		assert.True(t, got)
	})
}
