package is

import (
	"math"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Attributer is implemented by nodes that resolve their own attributes,
// such as adapters over syntax trees that are not plain Go values.
type Attributer interface {
	// Attr returns the value of the attribute named key and whether the
	// node has it.
	Attr(key string) (any, bool)
}

// Attr returns the attribute key of v.
//
// Lookup order: Attributer, maps with string keys, then struct fields
// (through any number of pointers) matched first by json tag name and then
// by case-insensitive field name. Fields promoted from embedded structs are
// found as encoding/json finds them. Any other value has no attributes.
func Attr(v any, key string) (any, bool) {
	switch node := v.(type) {
	case nil:
		return nil, false
	case Attributer:
		return node.Attr(key)
	case map[string]any:
		val, ok := node[key]
		return val, ok
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Struct:
		f, ok := fieldFor(rv.Type(), key)
		if !ok {
			return nil, false
		}
		val, err := rv.FieldByIndexErr(f.index)
		if err != nil {
			// Promoted through a nil embedded pointer.
			return nil, false
		}
		return val.Interface(), true
	default:
		return nil, false
	}
}

// structField is an attribute of a struct type: a field named by its json
// tag, or by its Go name when untagged. Fields promoted from embedded
// structs count as the struct's own.
type structField struct {
	name   string
	index  []int
	tagged bool
}

// fieldCache maps a struct type to its []structField.
var fieldCache sync.Map

func structFields(typ reflect.Type) []structField {
	if cached, ok := fieldCache.Load(typ); ok {
		return cached.([]structField)
	}
	fields, _ := fieldCache.LoadOrStore(typ, visibleFields(typ))
	return fields.([]structField)
}

// visibleFields resolves struct fields much as encoding/json does: untagged
// embedded structs are flattened, a json name on an embedded struct keeps
// it as a single field, and among fields sharing a name the shallowest wins,
// a tagged one breaking ties. Remaining conflicts hide the name. Fields Go
// itself hides by name stay hidden.
func visibleFields(typ reflect.Type) []structField {
	var (
		named  [][]int // embedded structs kept whole or dropped by their tag
		byName = make(map[string][]structField)
		order  []string
	)

	for _, f := range reflect.VisibleFields(typ) {
		if underNamed(f.Index, named) {
			continue
		}

		name, tagged := f.Name, false
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				if f.Anonymous {
					named = append(named, f.Index)
				}
				continue
			}
			if tagName != "" {
				name, tagged = tagName, true
			}
		}

		if f.Anonymous {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if !tagged {
					continue
				}
				named = append(named, f.Index)
			}
			if !f.IsExported() {
				continue
			}
		} else if !f.IsExported() {
			continue
		}

		if _, seen := byName[name]; !seen {
			order = append(order, name)
		}
		byName[name] = append(byName[name], structField{name: name, index: f.Index, tagged: tagged})
	}

	fields := make([]structField, 0, len(order))
	for _, name := range order {
		if f, ok := dominantField(byName[name]); ok {
			fields = append(fields, f)
		}
	}
	return fields
}

func underNamed(index []int, named [][]int) bool {
	for _, prefix := range named {
		if len(index) > len(prefix) && slices.Equal(index[:len(prefix)], prefix) {
			return true
		}
	}
	return false
}

func dominantField(candidates []structField) (structField, bool) {
	depth := len(candidates[0].index)
	for _, f := range candidates[1:] {
		depth = min(depth, len(f.index))
	}

	var shallow []structField
	for _, f := range candidates {
		if len(f.index) == depth {
			shallow = append(shallow, f)
		}
	}
	if len(shallow) == 1 {
		return shallow[0], true
	}

	var tagged []structField
	for _, f := range shallow {
		if f.tagged {
			tagged = append(tagged, f)
		}
	}
	if len(tagged) == 1 {
		return tagged[0], true
	}
	return structField{}, false
}

// fieldFor matches key against the json name first and then, for untagged
// fields, against the Go name ignoring case.
func fieldFor(typ reflect.Type, key string) (structField, bool) {
	fields := structFields(typ)
	for _, f := range fields {
		if f.name == key {
			return f, true
		}
	}
	for _, f := range fields {
		if !f.tagged && strings.EqualFold(f.name, key) {
			return f, true
		}
	}
	return structField{}, false
}

// Truthy reports whether v would pass an if-condition in a dynamically
// typed language: nil, false, zero numbers, NaN, the empty string and nil
// pointers, maps, slices, funcs and channels are falsy. Everything else,
// including empty non-nil slices and maps, is truthy.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case float64:
		return val != 0 && !math.IsNaN(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}

// stringValue returns v as a string when its kind is string.
func stringValue(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

// IsNode reports whether v looks like a node: it is truthy and has a "type"
// attribute that is a non-empty string.
func IsNode(v any) bool {
	if !Truthy(v) {
		return false
	}
	typ, ok := Attr(v, "type")
	if !ok {
		return false
	}
	s, ok := stringValue(typ)
	return ok && s != ""
}
