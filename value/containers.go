package value

import "strings"

// Object is a JSON object which remembers the order in which keys were first
// inserted.
type Object struct {
	keys  []string
	items map[string]Value
}

var _ Value = &Object{}

func NewObject() *Object {
	return &Object{items: map[string]Value{}}
}

func (*Object) isValue() {}

// Set inserts or replaces the value for key.  A replaced key keeps its
// original position.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.items[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.items[key] = v
}

func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.items[key]
	return v, ok
}

func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order.  The returned slice must not be
// modified.
func (o *Object) Keys() []string {
	return o.keys
}

// Range calls f for each key/value pair in insertion order until f returns
// false.
func (o *Object) Range(f func(key string, v Value) bool) {
	for _, k := range o.keys {
		if !f(k, o.items[k]) {
			return
		}
	}
}

func (o *Object) Clone() *Object {
	c := &Object{
		keys:  make([]string, len(o.keys)),
		items: make(map[string]Value, len(o.items)),
	}
	copy(c.keys, o.keys)
	for k, v := range o.items {
		c.items[k] = Clone(v)
	}
	return c
}

func (o *Object) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(String(k).String())
		b.WriteString(": ")
		writeString(&b, o.items[k])
	}
	b.WriteByte('}')
	return b.String()
}

// Array is a JSON array.
type Array struct {
	items []Value
}

var _ Value = &Array{}

func NewArray() *Array {
	return &Array{}
}

func (*Array) isValue() {}

func (a *Array) Append(v Value) {
	a.items = append(a.items, v)
}

func (a *Array) At(i int) Value {
	return a.items[i]
}

func (a *Array) Len() int {
	return len(a.items)
}

func (a *Array) Range(f func(i int, v Value) bool) {
	for i, v := range a.items {
		if !f(i, v) {
			return
		}
	}
}

func (a *Array) Clone() *Array {
	c := &Array{items: make([]Value, len(a.items))}
	for i, v := range a.items {
		c.items[i] = Clone(v)
	}
	return c
}

func (a *Array) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range a.items {
		if i > 0 {
			b.WriteString(", ")
		}
		writeString(&b, v)
	}
	b.WriteByte(']')
	return b.String()
}

// An object value may still be nil while its key is pending.
func writeString(b *strings.Builder, v Value) {
	if v == nil {
		b.WriteString("<nil>")
		return
	}
	b.WriteString(v.String())
}
