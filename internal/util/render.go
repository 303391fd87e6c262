package util

import (
	"github.com/loykin/occaccept/internal/env"
)

// SubstituteAny walks arbitrary structures (map[string]any, []any) and
// replaces %code% inline codes in every string value. Maps and slices are
// copied; other scalars are returned unchanged.
func SubstituteAny(in interface{}, e *env.Env) interface{} {
	var fn func(v interface{}) interface{}
	fn = func(v interface{}) interface{} {
		switch t := v.(type) {
		case map[string]interface{}:
			m := make(map[string]interface{}, len(t))
			for k, vv := range t {
				m[k] = fn(vv)
			}
			return m
		case []interface{}:
			arr := make([]interface{}, len(t))
			for i := range t {
				arr[i] = fn(t[i])
			}
			return arr
		case string:
			if e == nil {
				return t
			}
			return e.Substitute(t)
		default:
			return v
		}
	}
	return fn(in)
}
