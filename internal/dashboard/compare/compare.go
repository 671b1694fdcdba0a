// Package compare holds the equality predicates the change-detection
// engine uses to decide whether a fetched payload is really new.
package compare

import (
	"math"
	"reflect"
)

// PriceTolerance is the absolute difference below which two prices are
// considered equal. Absorbs floating-point noise from upstream
// serialization without treating genuinely-equal prices as changed.
const PriceTolerance = 1e-4

// PricesEqual reports whether a and b are within PriceTolerance of each other.
func PricesEqual(a, b float64) bool {
	return math.Abs(a-b) < PriceTolerance
}

// DeepEqual reports recursive structural equality over nested containers
// and primitives. Two maps are equal iff their key sets match
// (order-independent) and values are pairwise equal; slices and arrays
// compare by length and element order; structs compare field by field.
// Inputs are expected to be freshly decoded payloads, so no cycle guard
// is needed.
func DeepEqual(x, y any) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	return deepValueEqual(reflect.ValueOf(x), reflect.ValueOf(y))
}

func deepValueEqual(vx, vy reflect.Value) bool {
	if !vx.IsValid() || !vy.IsValid() {
		return vx.IsValid() == vy.IsValid()
	}

	// Unwrap interface values so a map[string]any's elements compare by
	// their dynamic types.
	for vx.Kind() == reflect.Interface {
		if vx.IsNil() {
			return vy.Kind() == reflect.Interface && vy.IsNil()
		}
		vx = vx.Elem()
	}
	for vy.Kind() == reflect.Interface {
		if vy.IsNil() {
			return false
		}
		vy = vy.Elem()
	}

	if vx.Type() != vy.Type() {
		return false
	}

	switch vx.Kind() {
	case reflect.Pointer:
		if vx.IsNil() || vy.IsNil() {
			return vx.IsNil() == vy.IsNil()
		}
		return deepValueEqual(vx.Elem(), vy.Elem())

	case reflect.Slice, reflect.Array:
		// A nil slice and an empty slice carry the same content.
		if vx.Len() != vy.Len() {
			return false
		}
		for i := 0; i < vx.Len(); i++ {
			if !deepValueEqual(vx.Index(i), vy.Index(i)) {
				return false
			}
		}
		return true

	case reflect.Map:
		if vx.Len() != vy.Len() {
			return false
		}
		for _, key := range vx.MapKeys() {
			wy := vy.MapIndex(key)
			if !wy.IsValid() {
				return false
			}
			if !deepValueEqual(vx.MapIndex(key), wy) {
				return false
			}
		}
		return true

	case reflect.Struct:
		for i := 0; i < vx.NumField(); i++ {
			if !deepValueEqual(vx.Field(i), vy.Field(i)) {
				return false
			}
		}
		return true

	case reflect.String:
		return vx.String() == vy.String()
	case reflect.Bool:
		return vx.Bool() == vy.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return vx.Int() == vy.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return vx.Uint() == vy.Uint()
	case reflect.Float32, reflect.Float64:
		return vx.Float() == vy.Float()
	default:
		return false
	}
}
