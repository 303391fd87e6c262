package util

import (
	"encoding/json"
	"testing"

	"github.com/loykin/occaccept/internal/env"
)

// FuzzSubstituteAny ensures SubstituteAny never panics on arbitrary JSON-like
// inputs and arbitrary environments.
func FuzzSubstituteAny(f *testing.F) {
	f.Add([]byte(`{"a":"%x%","b":["%y%",1,true],"c":{"d":"z"}}`), "x", "1")
	f.Add([]byte(`not json`), "x", "1")
	f.Fuzz(func(t *testing.T, data []byte, k, v string) {
		if len(data) > 1<<16 {
			data = data[:1<<16]
		}
		var in interface{}
		_ = json.Unmarshal(data, &in)
		e := env.New()
		e.Global[k] = v
		_ = SubstituteAny(in, e)
	})
}
