package reply

import "strings"

// paragraphSeparator joins the texts found in the elements of an array.
const paragraphSeparator = "\n\n"

// priorityKeys short-circuit extraction when they hold a string.
var priorityKeys = []string{"reply", "output"}

// preferredKeys are probed, in order, before falling back to every member.
var preferredKeys = []string{"message", "text", "content", "result", "data", "value"}

// ExtractText returns the best-effort display text of a webhook reply.
//
// Strings are returned as-is. Objects yield their string "reply" or "output"
// member, then the first non-empty text found under one of the preferred keys,
// then the first non-empty text found in any member. Arrays yield the
// non-blank texts of their elements separated by a blank line. Everything else
// yields "". Recursion depth is bounded by the nesting depth of v.
func ExtractText(v Value) string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindArray:
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			if s := ExtractText(item); strings.TrimSpace(s) != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, paragraphSeparator)
		}
		return firstText(v.Items)
	case KindObject:
		for _, key := range priorityKeys {
			if s, ok := v.stringField(key); ok {
				return s
			}
		}
		for _, key := range preferredKeys {
			member, ok := v.Field(key)
			if !ok {
				continue
			}
			if s := ExtractText(member); s != "" {
				return s
			}
		}
		return firstText(v.children())
	default:
		return ""
	}
}

func firstText(values []Value) string {
	for _, v := range values {
		if s := ExtractText(v); s != "" {
			return s
		}
	}
	return ""
}
