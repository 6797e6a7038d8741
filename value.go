package jamcodec

import (
	"bytes"
	"iter"
	"math"
)

// MaxSafeInteger is the largest magnitude a float64 holds without losing
// integer precision. Whole floats inside ±MaxSafeInteger are written as Int.
const MaxSafeInteger = 1<<53 - 1

// Term is anything Encode accepts and Decode returns: a Value or a Variant.
// The set of implementations is closed.
type Term interface {
	term()
}

// Value is the recursive value kind: Null, Bool, Int, Float, Text, Bytes,
// Array or *Object.
type Value interface {
	Term
	value()
}

type (
	// Null is the absent value.
	Null struct{}
	// Bool is a boolean.
	Bool bool
	// Int is a signed integer.
	Int int64
	// Float is an IEEE-754 double. Whole values inside ±MaxSafeInteger
	// are encoded with the INT tag and decode as Int.
	Float float64
	// Text is a UTF-8 string.
	Text string
	// Bytes is an opaque byte sequence.
	Bytes []byte
	// Array is an ordered sequence of values.
	Array []Value
)

func (Null) term()   {}
func (Bool) term()   {}
func (Int) term()    {}
func (Float) term()  {}
func (Text) term()   {}
func (Bytes) term()  {}
func (Array) term()  {}
func (*Object) term() {}

func (Null) value()    {}
func (Bool) value()    {}
func (Int) value()     {}
func (Float) value()   {}
func (Text) value()    {}
func (Bytes) value()   {}
func (Array) value()   {}
func (*Object) value() {}

// Number returns Int when f is a whole number inside ±MaxSafeInteger and
// Float otherwise. This is the same rule the encoder applies to Float.
func Number(f float64) Value {
	if i, ok := wholeNumber(f); ok {
		return Int(i)
	}
	return Float(f)
}

func wholeNumber(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > MaxSafeInteger || f < -MaxSafeInteger {
		return 0, false
	}
	return int64(f), true
}

// Member is one key/value entry of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object is a mapping from text keys to values. Keys are unique and keep
// insertion order, which is part of the wire representation.
// The zero value is an empty object ready to use.
type Object struct {
	members []Member
	index   map[string]int
}

// NewObject builds an object from members in order. A repeated key replaces
// the earlier value and keeps the earlier position.
func NewObject(members ...Member) *Object {
	o := &Object{}
	for _, m := range members {
		o.Set(m.Key, m.Value)
	}
	return o
}

// Set stores v under key. An existing key keeps its position.
func (o *Object) Set(key string, v Value) {
	if i, ok := o.lookup(key); ok {
		o.members[i].Value = v
		return
	}
	if o.index == nil {
		o.index = make(map[string]int)
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: v})
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	i, ok := o.lookup(key)
	if !ok {
		return nil, false
	}
	return o.members[i].Value, true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.lookup(key)
	return ok
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	for k := range o.All() {
		keys = append(keys, k)
	}
	return keys
}

// Members returns a copy of the members in insertion order.
func (o *Object) Members() []Member {
	if o == nil {
		return nil
	}
	return append([]Member(nil), o.members...)
}

// All iterates the members in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if o == nil {
			return
		}
		for _, m := range o.members {
			if !yield(m.Key, m.Value) {
				return
			}
		}
	}
}

// Equal reports whether both objects hold equal members in the same order.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for i := 0; i < o.Len(); i++ {
		a, b := o.members[i], other.members[i]
		if a.Key != b.Key || !Equal(a.Value, b.Value) {
			return false
		}
	}
	return true
}

func (o *Object) lookup(key string) (int, bool) {
	if o == nil || o.index == nil {
		return 0, false
	}
	i, ok := o.index[key]
	return i, ok
}

// Equal reports whether a and b are structurally equal. Floats compare by
// bit pattern so NaN payloads survive a round trip check; nil and Null are
// equal, as are nil and empty Bytes or Array.
func Equal(a, b Term) bool {
	a, b = normalize(a), normalize(b)
	switch x := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		return ok && math.Float64bits(float64(x)) == math.Float64bits(float64(y))
	case Text:
		y, ok := b.(Text)
		return ok && x == y
	case Bytes:
		y, ok := b.(Bytes)
		return ok && bytes.Equal(x, y)
	case Array:
		y, ok := b.(Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Object:
		y, ok := b.(*Object)
		return ok && x.Equal(y)
	case VariantA:
		_, ok := b.(VariantA)
		return ok
	case VariantB:
		y, ok := b.(VariantB)
		return ok && x == y
	case VariantC:
		y, ok := b.(VariantC)
		return ok && x == y
	}
	return false
}

func normalize(t Term) Term {
	if t == nil {
		return Null{}
	}
	return t
}
