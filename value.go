package jsonschema

import "math/big"

// jsonType reports the json-schema primitive type name of v. Numbers
// usually arrive as jsonNumber (loader.UnmarshalJSON, via UseNumber) or
// float64 (schema literals parsed straight out of a Go map[string]any), but
// a YAML-sourced document (cmd/jv's -ns/.yaml support) hands back plain
// int/int64/uint64 for integer scalars, so those count as numbers too.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case jsonNumber:
		return "number"
	case float64:
		return "number"
	case int, int64, uint64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}

// isInteger reports whether v (already known to be jsonType "number")
// has no fractional part.
func isInteger(v any) bool {
	r, ok := jsonRat(v)
	return ok && r.IsInt()
}

// matchesType reports whether v satisfies the single type name t,
// special-casing "integer" against a whole-valued number.
func matchesType(v any, t string) bool {
	got := jsonType(v)
	if t == "integer" {
		return got == "number" && isInteger(v)
	}
	return got == t
}

// jsonEqual compares two decoded json values for equality per the
// json-schema definition used by const/enum/uniqueItems: numbers compare by
// value (not representation), objects compare by key set ignoring order,
// arrays compare element-wise in order.
func jsonEqual(a, b any) bool {
	an, aIsNum := asRat(a)
	bn, bIsNum := asRat(b)
	if aIsNum || bIsNum {
		return aIsNum && bIsNum && an.Cmp(bn) == 0
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !jsonEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !jsonEqual(v, bvv) {
				return false
			}
		}
		return true
	}
	return false
}

func asRat(v any) (*big.Rat, bool) {
	return jsonRat(v)
}
