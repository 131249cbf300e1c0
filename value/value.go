// Package value defines the in-memory representation of a JSON document
// that is being materialized from a stream.
//
// A Value is one of
//
//	Null, Bool, Number, String, *Object, *Array
//
// Objects and arrays are mutable and are shared by reference: a consumer
// that holds on to a *Object while a document is still streaming will see it
// change.  Use Clone to get a point-in-time copy.
package value

import (
	"fmt"
	"strconv"
)

// Value is the closed set of JSON value types.  Only types from this package
// implement it.
type Value interface {
	fmt.Stringer
	isValue()
}

// Null is the JSON null value.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number is a JSON number kept in its literal form, e.g. "-1.5e3".
type Number string

// String is a decoded JSON string.
type String string

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Number) isValue() {}
func (String) isValue() {}

func (Null) String() string { return "null" }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (n Number) String() string { return string(n) }

// String returns s as a JSON string literal.
func (s String) String() string { return quote(string(s)) }

// Float64 returns the number as a float64.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Int64 returns the number as an int64, failing if it is not an integer
// literal.
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// Clone returns a deep copy of v.  Scalars are returned as is.
func Clone(v Value) Value {
	switch x := v.(type) {
	case *Object:
		return x.Clone()
	case *Array:
		return x.Clone()
	default:
		return v
	}
}

// Equal reports whether a and b represent the same JSON value.  Numbers are
// compared numerically and object key order is ignored.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Number:
		y, ok := b.(Number)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		fx, errx := x.Float64()
		fy, erry := y.Float64()
		return errx == nil && erry == nil && fx == fy
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, k := range x.keys {
			yv, ok := y.Get(k)
			if !ok || !Equal(x.items[k], yv) {
				return false
			}
		}
		return true
	case *Array:
		y, ok := b.(*Array)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i, xv := range x.items {
			if !Equal(xv, y.items[i]) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("invalid value: %#v", a))
	}
}

// ToGo converts v to the types encoding/json uses when decoding into an
// interface{}: map[string]any, []any, float64, string, bool and nil.
func ToGo(v Value) any {
	switch x := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(x)
	case String:
		return string(x)
	case Number:
		f, err := x.Float64()
		if err != nil {
			return string(x)
		}
		return f
	case *Object:
		m := make(map[string]any, x.Len())
		for _, k := range x.keys {
			m[k] = ToGo(x.items[k])
		}
		return m
	case *Array:
		s := make([]any, len(x.items))
		for i, item := range x.items {
			s[i] = ToGo(item)
		}
		return s
	default:
		panic(fmt.Sprintf("invalid value: %#v", v))
	}
}

// FromGo is the inverse of ToGo.  It accepts the types produced by
// encoding/json when decoding into an interface{}, plus int and int64.
func FromGo(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case float64:
		return Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case int:
		return Number(strconv.Itoa(v)), nil
	case int64:
		return Number(strconv.FormatInt(v, 10)), nil
	case map[string]any:
		obj := NewObject()
		for k, item := range v {
			iv, err := FromGo(item)
			if err != nil {
				return nil, err
			}
			obj.Set(k, iv)
		}
		return obj, nil
	case []any:
		arr := NewArray()
		for _, item := range v {
			iv, err := FromGo(item)
			if err != nil {
				return nil, err
			}
			arr.Append(iv)
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", x)
	}
}
