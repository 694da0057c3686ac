// Package reply derives display text from the loosely shaped JSON replies
// returned by workflow webhooks.
package reply

import (
	"sort"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Field is a single object member. Objects keep their fields in document order.
type Field struct {
	Name  string
	Value Value
}

// Value is a decoded JSON value. Only the members matching Kind are set.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Str    string
	Items  []Value
	Fields []Field
}

func Null() Value                { return Value{Kind: KindNull} }
func Bool(b bool) Value          { return Value{Kind: KindBool, Bool: b} }
func Number(n float64) Value     { return Value{Kind: KindNumber, Number: n} }
func String(s string) Value      { return Value{Kind: KindString, Str: s} }
func Array(items ...Value) Value { return Value{Kind: KindArray, Items: items} }
func Object(fields ...Field) Value {
	return Value{Kind: KindObject, Fields: fields}
}

// Field returns the value of the named member of an object.
func (v Value) Field(name string) (Value, bool) {
	if v.Kind != KindObject {
		return Value{}, false
	}
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// stringField returns the named member only when it holds a string.
func (v Value) stringField(name string) (string, bool) {
	f, ok := v.Field(name)
	if !ok || f.Kind != KindString {
		return "", false
	}
	return f.Str, true
}

// children returns the items of an array, or the member values of an object in
// enumeration order: array-index keys first in ascending order, then the
// remaining keys in document order.
func (v Value) children() []Value {
	switch v.Kind {
	case KindArray:
		return v.Items
	case KindObject:
		type indexed struct {
			index uint64
			value Value
		}
		indices := make([]indexed, 0)
		rest := make([]Value, 0, len(v.Fields))
		for _, f := range v.Fields {
			if n, ok := arrayIndex(f.Name); ok {
				indices = append(indices, indexed{index: n, value: f.Value})
				continue
			}
			rest = append(rest, f.Value)
		}
		sort.Slice(indices, func(i, j int) bool { return indices[i].index < indices[j].index })
		out := make([]Value, 0, len(v.Fields))
		for _, iv := range indices {
			out = append(out, iv.value)
		}
		return append(out, rest...)
	default:
		return nil
	}
}

// maxArrayIndex is the largest key treated as an array index (2^32 - 2).
const maxArrayIndex = 1<<32 - 2

// arrayIndex reports whether name is a canonical array index: decimal digits,
// no leading zero unless the key is "0", at most maxArrayIndex.
func arrayIndex(name string) (uint64, bool) {
	if name == "" || len(name) > 10 || (len(name) > 1 && name[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(name, 10, 64)
	if err != nil || n > maxArrayIndex {
		return 0, false
	}
	return n, true
}
