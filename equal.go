package is

import (
	"math"
	"reflect"
)

// strictEqual compares two attribute values the way a Props test does.
//
// Numbers are equal when they denote the same number, whatever their Go
// kind, so a JSON-decoded float64(1) matches an int 1; NaN equals nothing.
// Strings and bools compare by value, named types included. Maps, slices,
// funcs, channels and pointers compare by identity; non-nil slices without
// capacity never compare equal. Other comparable values
// must have the same dynamic type and be ==.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	ka, kb := ra.Kind(), rb.Kind()

	if isNumber(ka) && isNumber(kb) {
		return numbersEqual(ra, rb)
	}

	switch {
	case ka == reflect.String && kb == reflect.String:
		return ra.String() == rb.String()
	case ka == reflect.Bool && kb == reflect.Bool:
		return ra.Bool() == rb.Bool()
	}

	if ra.Type() != rb.Type() {
		return false
	}

	switch ka {
	case reflect.Map, reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		if ra.IsNil() || rb.IsNil() {
			return ra.IsNil() && rb.IsNil()
		}
		// Empty allocations share one base address, so a slice without
		// capacity has no identity to compare.
		if ra.Cap() == 0 || rb.Cap() == 0 {
			return false
		}
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len() && ra.Cap() == rb.Cap()
	}

	if !ra.Type().Comparable() {
		return false
	}
	// Structs and arrays may still hold uncomparable interface values.
	defer func() { _ = recover() }()
	return a == b
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func numbersEqual(a, b reflect.Value) bool {
	ka, kb := a.Kind(), b.Kind()

	if isFloat(ka) || isFloat(kb) {
		fa, fb := toFloat(a), toFloat(b)
		return !math.IsNaN(fa) && fa == fb
	}

	switch {
	case isUnsigned(ka) && isUnsigned(kb):
		return a.Uint() == b.Uint()
	case isUnsigned(ka):
		return b.Int() >= 0 && a.Uint() == uint64(b.Int())
	case isUnsigned(kb):
		return a.Int() >= 0 && uint64(a.Int()) == b.Uint()
	default:
		return a.Int() == b.Int()
	}
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isFloat(v.Kind()):
		return v.Float()
	case isUnsigned(v.Kind()):
		return float64(v.Uint())
	default:
		return float64(v.Int())
	}
}
