package reply

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned by Parse for input that is not well-formed JSON.
var ErrInvalidJSON = errors.New("reply: invalid JSON")

// Parse decodes raw JSON into a Value, keeping object members in the order
// they appear. A repeated key keeps its first position and its last value.
func Parse(raw []byte) (Value, error) {
	if !gjson.ValidBytes(raw) {
		return Value{}, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(raw)), nil
}

// Text parses raw JSON and extracts its display text.
func Text(raw []byte) (string, error) {
	v, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return ExtractText(v), nil
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null()
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		return Number(r.Num)
	case gjson.String:
		return String(r.Str)
	}

	if r.IsArray() {
		items := make([]Value, 0)
		r.ForEach(func(_, item gjson.Result) bool {
			items = append(items, fromResult(item))
			return true
		})
		return Array(items...)
	}

	fields := make([]Field, 0)
	seen := make(map[string]int)
	r.ForEach(func(key, member gjson.Result) bool {
		name := key.String()
		if i, ok := seen[name]; ok {
			fields[i].Value = fromResult(member)
			return true
		}
		seen[name] = len(fields)
		fields = append(fields, Field{Name: name, Value: fromResult(member)})
		return true
	})
	return Object(fields...)
}
