package series

import (
	"strconv"
)

// Value is a point of a derived series. Points that cannot be computed,
// like the delta of the first day, are not Valid.
type Value struct {
	Float float64
	Valid bool
}

// Of returns a valid point
func Of(f float64) Value {
	return Value{Float: f, Valid: true}
}

// MarshalJSON writes absent points as null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v.Float, 'f', -1, 64)), nil
}

// Interface returns nil for absent points, for chart payloads
func (v Value) Interface() interface{} {
	if !v.Valid {
		return nil
	}
	return v.Float
}

// Floats converts a counter column into floats
func Floats(counter []int64) []Value {
	out := make([]Value, len(counter))
	for i, c := range counter {
		out[i] = Of(float64(c))
	}
	return out
}
