package is

import (
	"fmt"
	"math"
	"reflect"
)

// FromValue builds a Test from a dynamically typed value, such as a test
// decoded from JSON, YAML or HCL:
//
//   - nil (or a nil pointer) is the nil Test;
//   - a Test is returned as is;
//   - a string is a Type;
//   - a map with string keys, or a struct, is Props;
//   - a slice or array is AnyOf of its converted elements, which must not
//     themselves be slices or arrays;
//   - a func with the signature of Func or Cast, or func(any) bool, is a
//     predicate.
//
// Anything else, such as a number or a bool, is ErrMalformedTest.
func FromValue(v any) (Test, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case Test:
		return val, nil
	case string:
		return Type(val), nil
	case map[string]any:
		return Props(val), nil
	case []any:
		return anyOfValues(reflect.ValueOf(val))
	case func(any, int, any, any) bool:
		return Func(val), nil
	case func(any, int, any, any) any:
		return Cast(val), nil
	case func(any) bool:
		if val == nil {
			return nil, fmt.Errorf("%w: nil func", ErrMalformedTest)
		}
		return Func(func(node any, _ int, _ any, _ any) bool { return val(node) }), nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		return Type(rv.String()), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map keyed by %s", ErrMalformedTest, rv.Type().Key())
		}
		props := make(Props, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			props[iter.Key().String()] = iter.Value().Interface()
		}
		return props, nil
	case reflect.Struct:
		return propsFromStruct(rv), nil
	case reflect.Slice, reflect.Array:
		return anyOfValues(rv)
	default:
		return nil, fmt.Errorf("%w: got %T", ErrMalformedTest, v)
	}
}

func anyOfValues(rv reflect.Value) (Test, error) {
	tests := make(AnyOf, rv.Len())
	for i := range tests {
		elem := rv.Index(i).Interface()
		if isSequence(elem) {
			return nil, fmt.Errorf("%w: nested list at element %d", ErrMalformedTest, i)
		}
		test, err := FromValue(elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		tests[i] = test
	}
	return tests, nil
}

func isSequence(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(AnyOf); ok {
		return true
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func propsFromStruct(rv reflect.Value) Props {
	fields := structFields(rv.Type())
	props := make(Props, len(fields))
	for _, f := range fields {
		val, err := rv.FieldByIndexErr(f.index)
		if err != nil {
			continue
		}
		props[f.name] = val.Interface()
	}
	return props
}

// IsValue is Is for dynamically typed input. test is converted with
// FromValue; index may be nil (not given) or any Go number, and must be a
// finite non-negative integer; parent may be nil (not given).
//
// Validation order is the same as for Is.
func IsValue(node, test, index, parent, context any) (bool, error) {
	t, err := FromValue(test)
	if err != nil {
		return false, err
	}
	check, err := Convert(t)
	if err != nil {
		return false, err
	}

	pos := position{index: NoIndex, parent: parent, context: context}
	if index != nil {
		i, err := indexValue(index)
		if err != nil {
			return false, err
		}
		pos.index = i
		pos.hasIndex = true
	}

	return run(node, check, pos)
}

func indexValue(v any) (int, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i := rv.Int(); i >= 0 && i <= math.MaxInt {
			return int(i), nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := rv.Uint(); u <= math.MaxInt {
			return int(u), nil
		}
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f >= 0 && f < math.MaxInt && f == math.Trunc(f) {
			return int(f), nil
		}
	}
	return 0, fmt.Errorf("%w: got %v", ErrInvalidIndex, v)
}
