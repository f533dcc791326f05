package is

import (
	"encoding/json"
	"testing"
)

func FuzzIsNode(f *testing.F) {
	f.Add("strong")
	f.Add("a")
	f.Add("é")

	f.Fuzz(func(t *testing.T, typ string) {
		if typ == "" {
			return
		}
		node := map[string]any{"type": typ}

		got, err := Is(node, nil)
		if err != nil || !got {
			t.Fatalf("Is(%v) = %v, %v; want true", node, got, err)
		}

		got, err = Is(node, Type(typ))
		if err != nil || !got {
			t.Fatalf("Is(%v, %q) = %v, %v; want true", node, typ, got, err)
		}

		got, err = Is(node, Type(typ+"x"))
		if err != nil || got {
			t.Fatalf("Is(%v, %q) = %v, %v; want false", node, typ+"x", got, err)
		}
	})
}

func FuzzIsWithoutType(f *testing.F) {
	f.Add(`{"value": "x"}`)
	f.Add(`{"children": []}`)
	f.Add(`{"type": 1}`)
	f.Add(`[]`)
	f.Add(`"text"`)

	f.Fuzz(func(t *testing.T, data string) {
		var v any
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return
		}
		if m, ok := v.(map[string]any); ok {
			if _, isString := m["type"].(string); isString {
				return
			}
		}

		got, err := Is(v, nil)
		if err != nil || got {
			t.Fatalf("Is(%v) = %v, %v; want false", v, got, err)
		}
	})
}

func FuzzIsProps(f *testing.F) {
	f.Add(`{"value": "x", "depth": 1, "ok": true}`, "heading")
	f.Add(`{"lang": "go", "meta": null}`, "code")

	f.Fuzz(func(t *testing.T, data, typ string) {
		var props map[string]any
		if err := json.Unmarshal([]byte(data), &props); err != nil || typ == "" {
			return
		}

		node := map[string]any{}
		subset := Props{}
		for key, value := range props {
			node[key] = value
			if key == "type" {
				continue
			}
			switch value.(type) {
			case map[string]any, []any:
			default:
				subset[key] = value
			}
		}
		node["type"] = typ
		if len(subset) == 0 {
			return
		}

		got, err := Is(node, subset)
		if err != nil || !got {
			t.Fatalf("Is(%v, %v) = %v, %v; want true", node, subset, got, err)
		}

		for key := range subset {
			subset[key] = []any{"changed"}
			break
		}

		got, err = Is(node, subset)
		if err != nil || got {
			t.Fatalf("Is(%v, %v) = %v, %v; want false after change", node, subset, got, err)
		}
	})
}
